package handlers

import (
	"context"
	"net/http"

	"socialapi/middleware"
	"socialapi/push"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func (h *Handler) requestContext(c *gin.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request.Context(), h.timeout)
}

// currentUser reads the id stored by the auth middleware.
func currentUser(c *gin.Context) (primitive.ObjectID, bool) {
	userID, err := primitive.ObjectIDFromHex(c.GetString(middleware.UserIDKey))
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"msg": "Invalid token"})
		return primitive.NilObjectID, false
	}
	return userID, true
}

func pathID(c *gin.Context, name string) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(c.Param(name))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"msg": "Invalid ID"})
		return primitive.NilObjectID, false
	}
	return id, true
}

func message(c *gin.Context, status int, msg string) {
	c.JSON(status, gin.H{"msg": msg})
}

func (h *Handler) serverError(c *gin.Context, handler string, err error) {
	h.log.WithFields(logrus.Fields{
		"handler":    handler,
		"request_id": c.GetString(middleware.RequestIDKey),
	}).WithError(err).Error("unexpected error")
	c.String(http.StatusInternalServerError, "Server Error")
}

func (h *Handler) broadcast(eventType string, payload interface{}) {
	if h.feed != nil {
		h.feed.Broadcast(eventType, payload)
	}
}

func (h *Handler) notify(userID primitive.ObjectID, msg push.Notification) {
	if h.notifier != nil {
		h.notifier.Notify(userID, msg)
	}
}
