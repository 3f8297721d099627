package routes

import (
	"github.com/balasin/balasin/internal/api/handlers"
	"github.com/balasin/balasin/internal/api/middleware"
	"github.com/gin-gonic/gin"
)

type Deps struct {
	Webhook *handlers.WebhookHandler
	Send    *handlers.SendHandler
	RagTest *handlers.RagTestHandler
}

func RegisterRoutes(r *gin.Engine, d Deps) {
	// Health-ish
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{"message": "pong"})
	})

	// Transport webhook (shared-secret auth inside the handler).
	r.POST("/webhook/wa", d.Webhook.Receive)

	// Operator endpoints (dashboard JWT).
	admin := r.Group("/admin")
	admin.Use(middleware.JWTAuth(), middleware.RequireAdmin())

	admin.POST("/messages/send", d.Send.Send)
	admin.POST("/rag/test", d.RagTest.Test)
}
