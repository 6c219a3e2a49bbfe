package handler

import (
	"crypto/subtle"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/promptpal/promptpal-server/internal/model"
	"github.com/promptpal/promptpal-server/internal/pkg/queue"
)

// BillingHandler receives payment provider webhooks. It does the minimum
// inline: verify the shared secret, parse, enqueue. Reconciliation happens
// in the worker so a slow database never makes the provider time out and
// re-deliver.
type BillingHandler struct {
	queue         *queue.Queue
	webhookSecret string
}

func NewBillingHandler(q *queue.Queue, webhookSecret string) *BillingHandler {
	return &BillingHandler{
		queue:         q,
		webhookSecret: webhookSecret,
	}
}

// Webhook accepts a provider event
// POST /api/v1/billing/webhook
func (h *BillingHandler) Webhook(c *gin.Context) {
	secret := c.GetHeader("X-Webhook-Secret")
	if h.webhookSecret == "" ||
		subtle.ConstantTimeCompare([]byte(secret), []byte(h.webhookSecret)) != 1 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid webhook secret"})
		return
	}

	var event model.BillingEvent
	if err := c.ShouldBindJSON(&event); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "malformed payload"})
		return
	}

	if event.Seq <= 0 || event.Type == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing type or seq"})
		return
	}

	msg := &queue.EventMessage{
		Event:      event,
		ReceivedAt: time.Now().UTC(),
	}
	if err := h.queue.Push(c.Request.Context(), msg); err != nil {
		log.Printf("billing webhook: enqueue failed for seq=%d: %v", event.Seq, err)
		// 500 makes the provider retry later.
		c.JSON(http.StatusInternalServerError, gin.H{"error": "enqueue failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"received": true})
}
