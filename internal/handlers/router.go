// Package handlers contains the HTTP handlers and routing.
package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

// SetupRouter configures the Gin router with all routes.
func SetupRouter(handler *PaymentHandler, ginMode string, logger *zerolog.Logger, allowedOrigins []string) *gin.Engine {
	gin.SetMode(ginMode)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(RequestIDMiddleware(logger))
	router.Use(AccessLogMiddleware())
	router.Use(CORSMiddleware(allowedOrigins))

	// Health check and metrics (public)
	router.GET("/health", handler.Health)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Checkout handshake, called by the browsing client
	router.POST("/create-order", handler.CreateOrder)
	router.POST("/confirm", handler.ConfirmPayment)

	return router
}
