package app

import (
	"github.com/gin-gonic/gin"
	"github.com/newrelic/go-agent/v3/integrations/nrgin"
	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/redis/go-redis/v9"

	"payflow/internal/handler"
	"payflow/internal/middleware"
)

// RouterDeps contains all dependencies needed for the router.
type RouterDeps struct {
	PaymentHandler  *handler.PaymentHandler
	CallbackHandler *handler.CallbackHandler
	RedisClient     *redis.Client
	NewRelicApp     *newrelic.Application
}

// NewRouter creates a new Gin router with all routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	router := gin.New()

	// Global middleware.
	router.Use(gin.Recovery())
	router.Use(gin.Logger())
	router.Use(middleware.CORSMiddleware())

	// Add New Relic middleware if enabled.
	if deps.NewRelicApp != nil {
		router.Use(nrgin.Middleware(deps.NewRelicApp))
	}

	router.Use(middleware.IdempotencyMiddleware(deps.RedisClient))

	// Health check.
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// Redirect-completion entry point. The path is a fixed contract with
	// the checkout page.
	router.GET("/payment/callback", deps.CallbackHandler.PaymentCallback)

	// API v1 routes.
	v1 := router.Group("/v1")
	{
		payments := v1.Group("/payments")
		{
			payments.POST("", deps.PaymentHandler.SubmitPayment)
			payments.GET("", deps.PaymentHandler.ListPayments)
			payments.GET("/:order_id", deps.PaymentHandler.GetPayment)
			payments.POST("/:order_id/verify", deps.PaymentHandler.VerifyPayment)
			payments.POST("/:order_id/checkout-result", deps.PaymentHandler.CompleteCheckout)
		}
	}

	return router
}
