package middleware

import (
	"errors"
	"net/http"

	"socialapi/token"

	"github.com/gin-gonic/gin"
)

const (
	TokenHeader = "x-auth-token"
	UserIDKey   = "userId"
)

type TokenVerifier interface {
	Verify(token string) (string, error)
}

// Auth rejects requests without a valid x-auth-token and stores the caller's
// id under UserIDKey.
func Auth(tokens TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method == http.MethodOptions {
			c.Next()
			return
		}

		userID, err := tokens.Verify(c.GetHeader(TokenHeader))
		if errors.Is(err, token.ErrMissingToken) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"msg": "No token. Authorization denied"})
			return
		}
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"msg": "Invalid token"})
			return
		}

		c.Set(UserIDKey, userID)
		c.Next()
	}
}
