package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mwarren02/storefront-api/internal/middleware"
	"github.com/mwarren02/storefront-api/internal/models"
)

// GetCart returns the caller's cart, creating an empty one on first use.
func (h *Handlers) GetCart(c *gin.Context) {
	userID, _ := middleware.UserID(c)

	cart, err := h.Cart.GetCart(c.Request.Context(), userID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, cart)
}

// AddCartItem adds a product to the cart. Adding the same product again
// accumulates the quantity on the existing line.
func (h *Handlers) AddCartItem(c *gin.Context) {
	userID, _ := middleware.UserID(c)

	var input models.AddToCartInput
	if err := c.ShouldBindJSON(&input); err != nil {
		h.respondBindingError(c, err)
		return
	}

	cart, err := h.Cart.AddItem(c.Request.Context(), userID, input.ProductID, input.Quantity)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, cart)
}

// UpdateCartItem sets the quantity of one cart line.
func (h *Handlers) UpdateCartItem(c *gin.Context) {
	userID, _ := middleware.UserID(c)

	itemID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var input models.UpdateCartItemInput
	if err := c.ShouldBindJSON(&input); err != nil {
		h.respondBindingError(c, err)
		return
	}

	cart, err := h.Cart.UpdateItemQuantity(c.Request.Context(), userID, itemID, input.Quantity)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, cart)
}

// RemoveCartItem deletes one cart line.
func (h *Handlers) RemoveCartItem(c *gin.Context) {
	userID, _ := middleware.UserID(c)

	itemID, ok := pathID(c, "id")
	if !ok {
		return
	}

	cart, err := h.Cart.RemoveItem(c.Request.Context(), userID, itemID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, cart)
}

// ClearCart empties the cart. Clearing an already empty cart succeeds.
func (h *Handlers) ClearCart(c *gin.Context) {
	userID, _ := middleware.UserID(c)

	if err := h.Cart.ClearCart(c.Request.Context(), userID); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Cart cleared successfully"})
}
