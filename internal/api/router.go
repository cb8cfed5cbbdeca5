package api

import (
	"github.com/gin-gonic/gin"

	v1 "github.com/finbridge/escalator/internal/api/v1"
	"github.com/finbridge/escalator/internal/rest/middleware"
)

type Handlers struct {
	Webhook *v1.WebhookHandler
}

func NewRouter(handlers Handlers) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestIDMiddleware)
	router.Use(middleware.ErrorHandler())

	router.GET("/health", handlers.Webhook.Health)

	webhooks := router.Group("/webhooks")
	{
		webhooks.POST("/billwerk/payment-escalated", handlers.Webhook.PaymentEscalated)
	}

	return router
}
