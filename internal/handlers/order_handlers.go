package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mwarren02/storefront-api/internal/middleware"
)

// PlaceOrder converts the caller's cart into a PENDING order and empties
// the cart, all in one transaction.
func (h *Handlers) PlaceOrder(c *gin.Context) {
	userID, _ := middleware.UserID(c)

	order, err := h.Orders.PlaceOrder(c.Request.Context(), userID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, order)
}

// GetMyOrders lists the caller's orders, newest first: ?page=0&size=10
func (h *Handlers) GetMyOrders(c *gin.Context) {
	userID, _ := middleware.UserID(c)

	page := queryInt(c, "page", 0)
	size := queryInt(c, "size", 10)
	if page < 0 {
		page = 0
	}
	if size < 1 || size > 100 {
		size = 10
	}

	orders, err := h.Orders.ListOrders(c.Request.Context(), userID, page, size)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, orders)
}

// GetOrder returns one of the caller's orders. Another user's order
// reads as not found.
func (h *Handlers) GetOrder(c *gin.Context) {
	userID, _ := middleware.UserID(c)

	orderID, ok := pathID(c, "id")
	if !ok {
		return
	}

	order, err := h.Orders.GetOrder(c.Request.Context(), userID, orderID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

// CancelOrder cancels a PENDING order. Any other status is a conflict.
func (h *Handlers) CancelOrder(c *gin.Context) {
	userID, _ := middleware.UserID(c)

	orderID, ok := pathID(c, "id")
	if !ok {
		return
	}

	order, err := h.Orders.CancelOrder(c.Request.Context(), userID, orderID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}
