package handlers

import (
	"net/http"

	"github.com/balasin/balasin/internal/providers/completion"
	"github.com/balasin/balasin/internal/services"
	"github.com/balasin/balasin/internal/utils"
	"github.com/gin-gonic/gin"
	pgrepo "github.com/balasin/balasin/internal/repositories/postgres"
)

// RagTestHandler lets an operator dry-run retrieval + completion for a
// merchant without touching any conversation.
type RagTestHandler struct {
	knowledge  services.KnowledgeService
	settings   services.SettingsService
	merchants  pgrepo.MerchantRepo
	completion completion.Provider
}

func NewRagTestHandler(
	knowledge services.KnowledgeService,
	settings services.SettingsService,
	merchants pgrepo.MerchantRepo,
	comp completion.Provider,
) *RagTestHandler {
	return &RagTestHandler{
		knowledge:  knowledge,
		settings:   settings,
		merchants:  merchants,
		completion: comp,
	}
}

type ragTestRequest struct {
	MerchantID string `json:"merchant_id"`
	Question   string `json:"question"`
}

type ragTestSource struct {
	ID         string `json:"id"`
	FileName   string `json:"file_name"`
	ChunkIndex int    `json:"chunk_index"`
}

const noKnowledgeAnswer = "Maaf kak, belum ada informasi yang tersedia untuk pertanyaan ini. Silakan hubungi admin kami langsung ya."

func (h *RagTestHandler) Test(c *gin.Context) {
	const op = "RagTestHandler.Test"

	var req ragTestRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.MerchantID == "" || req.Question == "" {
		writeError(c, utils.E(utils.CodeInvalidArgument, op, "merchant_id and question are required", err))
		return
	}

	ctx := c.Request.Context()

	merchant, err := h.merchants.GetByID(ctx, req.MerchantID)
	if err != nil {
		writeError(c, utils.E(utils.CodeNotFound, op, "merchant not found", err))
		return
	}

	sector := services.DetectSector(req.Question)
	chunks, err := h.knowledge.Retrieve(ctx, merchant.ID, req.Question, sector)
	if err != nil {
		writeError(c, err)
		return
	}

	if len(chunks) == 0 {
		c.JSON(http.StatusOK, gin.H{
			"answer":      noKnowledgeAnswer,
			"sources":     []ragTestSource{},
			"has_context": false,
		})
		return
	}

	settings, err := h.settings.Snapshot(ctx)
	if err != nil {
		writeError(c, err)
		return
	}

	result, err := h.completion.Complete(ctx, completion.Request{
		Model: settings.Model,
		Messages: []completion.Message{
			completion.Text(completion.RoleSystem,
				services.RenderSystemPrompt(settings.SystemPrompt, merchant.Name, services.JoinContext(chunks))),
			completion.Text(completion.RoleUser, req.Question),
		},
		Temperature: settings.Temperature,
		MaxTokens:   settings.MaxTokens,
	})
	if err != nil {
		writeError(c, err)
		return
	}

	sources := make([]ragTestSource, 0, len(chunks))
	for _, ch := range chunks {
		sources = append(sources, ragTestSource{ID: ch.ID, FileName: ch.FileName, ChunkIndex: ch.ChunkIndex})
	}

	c.JSON(http.StatusOK, gin.H{
		"answer":      result.Text,
		"sources":     sources,
		"has_context": true,
		"sector_tag":  sector,
	})
}
