package handlers

import (
	"net/http"

	"github.com/balasin/balasin/internal/providers/transport"
	"github.com/balasin/balasin/internal/services"
	"github.com/balasin/balasin/internal/utils"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// WebhookHandler is the transport webhook entry point. The caller only needs
// delivery confirmation, so unsupported shapes are acknowledged as no-ops;
// only a bad shared secret is rejected.
type WebhookHandler struct {
	svc    services.InboundService
	secret string
	log    *logrus.Logger
}

func NewWebhookHandler(svc services.InboundService, secret string, log *logrus.Logger) *WebhookHandler {
	return &WebhookHandler{svc: svc, secret: secret, log: log}
}

func (h *WebhookHandler) Receive(c *gin.Context) {
	received := c.GetHeader("X-Webhook-Secret")
	if received == "" {
		received = c.Query("secret")
	}
	if h.secret != "" && received != h.secret {
		writeError(c, utils.E(utils.CodeForbidden, "WebhookHandler.Receive", "invalid webhook secret", nil))
		return
	}

	var evt transport.WebhookEvent
	if err := c.ShouldBindJSON(&evt); err != nil {
		// Malformed payloads are acknowledged, never failed back to the
		// transport.
		c.JSON(http.StatusOK, gin.H{"status": "invalid_payload"})
		return
	}

	res, err := h.svc.HandleEvent(c.Request.Context(), &evt)
	if err != nil {
		h.log.WithError(err).WithField("event", evt.Kind()).Error("webhook processing failed")
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, res)
}
