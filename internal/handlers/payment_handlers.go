package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mwarren02/storefront-api/internal/middleware"
	"github.com/mwarren02/storefront-api/internal/models"
)

// CreatePaymentIntent asks the payment processor for an intent covering
// one of the caller's PENDING orders and returns its client secret.
func (h *Handlers) CreatePaymentIntent(c *gin.Context) {
	userID, _ := middleware.UserID(c)

	var input models.CreateIntentInput
	if err := c.ShouldBindJSON(&input); err != nil {
		h.respondBindingError(c, err)
		return
	}

	intent, err := h.Payments.CreateIntent(c.Request.Context(), userID, input.OrderID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, intent)
}
