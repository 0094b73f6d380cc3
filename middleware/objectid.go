package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CheckObjectID answers 400 before any lookup when a path id is not a
// 24 character hex ObjectID.
func CheckObjectID(params ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		for _, p := range params {
			if !primitive.IsValidObjectID(c.Param(p)) {
				c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"msg": "Invalid ID"})
				return
			}
		}
		c.Next()
	}
}
