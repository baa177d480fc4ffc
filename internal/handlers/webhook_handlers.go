package handlers

import (
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mwarren02/storefront-api/internal/stripe"
)

// maxWebhookBody caps how much of an event payload we are willing to
// read before verifying anything about it.
const maxWebhookBody = 64 << 10

// StripeWebhook receives payment events from the processor.
//
// The signature check is the trust boundary: a bad or missing signature
// is rejected with 400 and nothing in the payload is acted on. Once the
// signature verifies, business failures (duplicate delivery, unknown
// order) are logged and acknowledged with 200 so the processor stops
// redelivering an event we can never process differently.
func (h *Handlers) StripeWebhook(c *gin.Context) {
	payload, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBody))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read request body"})
		return
	}

	event, err := stripe.ConstructEvent(payload, c.GetHeader("Stripe-Signature"), h.WebhookSecret)
	if err != nil {
		h.Logger.Warn("webhook signature verification failed", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid signature"})
		return
	}

	switch event.Type {
	case stripe.EventTypePaymentSucceeded:
		h.handlePaymentSucceeded(c, event)
	default:
		// Unhandled event types are acknowledged so the processor does
		// not keep retrying them.
		h.Logger.Info("ignoring webhook event", zap.String("type", event.Type))
		c.JSON(http.StatusOK, gin.H{"received": true})
	}
}

func (h *Handlers) handlePaymentSucceeded(c *gin.Context, event stripe.Event) {
	orderIDStr := event.Data.Object.Metadata["orderId"]
	orderID, err := strconv.ParseInt(orderIDStr, 10, 64)
	if err != nil {
		h.Logger.Error("webhook event missing usable orderId metadata",
			zap.String("event_id", event.ID), zap.String("orderId", orderIDStr))
		c.JSON(http.StatusOK, gin.H{"received": true})
		return
	}

	if err := h.Orders.MarkOrderAsPaid(c.Request.Context(), orderID); err != nil {
		// Signature already verified: ack anyway. A redelivery would hit
		// the same guard, so retrying serves nothing.
		h.Logger.Error("failed to mark order as paid from webhook",
			zap.Int64("order_id", orderID), zap.String("event_id", event.ID), zap.Error(err))
		c.JSON(http.StatusOK, gin.H{"received": true})
		return
	}

	h.Logger.Info("order marked as paid", zap.Int64("order_id", orderID),
		zap.String("event_id", event.ID))
	c.JSON(http.StatusOK, gin.H{"received": true})
}
