package handlers

import (
	"net/http"
	"time"

	"socialapi/models"

	"github.com/gin-gonic/gin"
)

type subscribeRequest struct {
	Endpoint string `json:"endpoint" binding:"required,url" msg:"Valid endpoint is required"`
	Keys     struct {
		P256dh string `json:"p256dh" binding:"required" msg:"p256dh key is required"`
		Auth   string `json:"auth" binding:"required" msg:"auth key is required"`
	} `json:"keys"`
}

// VapidPublicKey handles GET /api/push/vapid-public-key.
func (h *Handler) VapidPublicKey(c *gin.Context) {
	if h.notifier == nil || h.notifier.PublicKey() == "" {
		message(c, http.StatusServiceUnavailable, "Push notifications are not configured")
		return
	}
	c.JSON(http.StatusOK, gin.H{"publicKey": h.notifier.PublicKey()})
}

// SubscribePush handles POST /api/push/subscribe. A user keeps one
// subscription; subscribing again replaces it.
func (h *Handler) SubscribePush(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	if h.subscriptions == nil || h.notifier == nil {
		message(c, http.StatusServiceUnavailable, "Push notifications are not configured")
		return
	}

	var req subscribeRequest
	if !bindJSON(c, &req) {
		return
	}

	ctx, cancel := h.requestContext(c)
	defer cancel()

	err := h.subscriptions.Upsert(ctx, models.PushSubscription{
		User:     userID,
		Endpoint: req.Endpoint,
		Keys: models.PushKeys{
			P256dh: req.Keys.P256dh,
			Auth:   req.Keys.Auth,
		},
		Date: time.Now(),
	})
	if err != nil {
		h.serverError(c, "SubscribePush", err)
		return
	}

	message(c, http.StatusOK, "Push subscription saved")
}
