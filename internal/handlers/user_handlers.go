package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mwarren02/storefront-api/internal/models"
)

// Register creates a new user account.
func (h *Handlers) Register(c *gin.Context) {
	// 1. Bind and validate the input.
	var input models.RegisterInput
	if err := c.ShouldBindJSON(&input); err != nil {
		h.respondBindingError(c, err)
		return
	}

	// 2. Create the user.
	user, err := h.Auth.Register(c.Request.Context(), input)
	if err != nil {
		h.respondError(c, err)
		return
	}

	// 3. Respond. The password hash never leaves the server.
	c.JSON(http.StatusCreated, gin.H{
		"id":       user.ID,
		"username": user.Username,
		"email":    user.Email,
	})
}

// Login verifies credentials and returns a bearer token.
func (h *Handlers) Login(c *gin.Context) {
	var input models.LoginInput
	if err := c.ShouldBindJSON(&input); err != nil {
		h.respondBindingError(c, err)
		return
	}

	token, user, err := h.Auth.Login(c.Request.Context(), input)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token": token,
		"user": gin.H{
			"id":       user.ID,
			"username": user.Username,
			"email":    user.Email,
		},
	})
}
