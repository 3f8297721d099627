package handlers

import (
	"net/http"

	"github.com/balasin/balasin/internal/models"
	"github.com/balasin/balasin/internal/services"
	"github.com/balasin/balasin/internal/utils"
	"github.com/gin-gonic/gin"
)

type SendHandler struct {
	svc services.OperatorService
}

func NewSendHandler(svc services.OperatorService) *SendHandler {
	return &SendHandler{svc: svc}
}

type sendRequest struct {
	Instance       string `json:"instance"`
	PhoneNumber    string `json:"phone_number"`
	Message        string `json:"message"`
	ConversationID string `json:"conversation_id"`
	Sender         string `json:"sender"` // USER|AI|ADMIN; defaults to ADMIN
}

func (h *SendHandler) Send(c *gin.Context) {
	var req sendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, utils.E(utils.CodeInvalidArgument, "SendHandler.Send", "invalid request body", err))
		return
	}

	err := h.svc.SendManual(
		c.Request.Context(),
		req.Instance,
		req.PhoneNumber,
		req.Message,
		req.ConversationID,
		models.MessageSender(req.Sender),
	)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "sent"})
}
