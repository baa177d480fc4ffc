// Package handlers contains the gin HTTP handlers. Handlers bind and
// validate input, call a service, and render the result; all business
// rules live in the service layer.
package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mwarren02/storefront-api/internal/service"
)

// Handlers bundles every dependency the HTTP layer needs so the routes
// package can wire the whole surface from one value.
type Handlers struct {
	Auth     *service.AuthService
	Catalog  *service.CatalogService
	Cart     *service.CartService
	Orders   *service.OrderService
	Payments *service.PaymentService

	// WebhookSecret verifies inbound payment event signatures.
	WebhookSecret string

	Logger *zap.Logger
}

// pathID parses the named int64 path parameter. A malformed value is
// reported and the handler should return immediately.
func pathID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id < 1 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid " + name + " parameter"})
		return 0, false
	}
	return id, true
}

// queryInt parses an optional integer query parameter with a fallback.
func queryInt(c *gin.Context, name string, fallback int) int {
	v := c.Query(name)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}
