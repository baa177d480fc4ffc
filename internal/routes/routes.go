// Package routes assembles the gin engine: middleware, route groups and
// the metrics endpoint.
package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mwarren02/storefront-api/internal/auth"
	"github.com/mwarren02/storefront-api/internal/handlers"
	"github.com/mwarren02/storefront-api/internal/metrics"
	"github.com/mwarren02/storefront-api/internal/middleware"
)

// CORSMiddleware allows the browser frontend to call the API with the
// Authorization header attached.
func CORSMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")

		// Preflight OPTIONS requests get an empty 204.
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

func SetupRouter(h *handlers.Handlers, tokens *auth.TokenManager, reg *prometheus.Registry) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(CORSMiddleware())
	router.Use(metrics.New(reg).Handler())

	router.GET("/metrics", gin.WrapH(
		promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))

	api := router.Group("/api")
	{
		// --- Ping Route (Public) ---
		api.GET("/ping", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"message": "pong!"})
		})

		// --- Auth Routes (Public) ---
		api.POST("/auth/register", h.Register)
		api.POST("/auth/login", h.Login)

		// --- Public Catalog Routes ---
		api.GET("/categories", h.GetAllCategories)
		api.GET("/categories/:id", h.GetCategory)
		api.GET("/products", h.GetAllProducts)
		api.GET("/products/:id", h.GetProduct)

		// --- Webhook Route (Public; authenticated by signature) ---
		api.POST("/webhooks/stripe", h.StripeWebhook)

		// --- Protected Routes (Login Required) ---
		authed := api.Group("/")
		authed.Use(middleware.Auth(tokens))
		{
			// --- Catalog Administration ---
			authed.POST("/categories", h.CreateCategory)
			authed.PUT("/categories/:id", h.UpdateCategory)
			authed.DELETE("/categories/:id", h.DeleteCategory)
			authed.POST("/products", h.CreateProduct)
			authed.DELETE("/products/:id", h.DeleteProduct)

			// --- Cart Routes ---
			authed.GET("/cart", h.GetCart)
			authed.POST("/cart/items", h.AddCartItem)
			authed.PUT("/cart/items/:id", h.UpdateCartItem)
			authed.DELETE("/cart/items/:id", h.RemoveCartItem)
			authed.DELETE("/cart", h.ClearCart)

			// --- Order Routes ---
			authed.POST("/orders", h.PlaceOrder)
			authed.GET("/orders", h.GetMyOrders)
			authed.GET("/orders/:id", h.GetOrder)
			authed.POST("/orders/:id/cancel", h.CancelOrder)

			// --- Payment Routes ---
			authed.POST("/payment/create-intent", h.CreatePaymentIntent)
		}
	}

	return router
}
