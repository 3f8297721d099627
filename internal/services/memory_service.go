package services

import (
	"context"

	"github.com/balasin/balasin/internal/models"
	"github.com/balasin/balasin/internal/providers/completion"
	pgrepo "github.com/balasin/balasin/internal/repositories/postgres"
	"github.com/balasin/balasin/internal/utils"
)

// memoryWindow is N: how many recent turns the model sees.
const memoryWindow = 10

// operatorMarker prefixes human-operator turns in the transcript so the model
// knows a human intervened.
const operatorMarker = "[Admin]"

// mediaPlaceholderCaption stands in for media sent without a caption.
const mediaPlaceholderCaption = "(pelanggan mengirim lampiran)"

// MemoryService turns the recent conversation history into a prompt
// transcript.
type MemoryService interface {
	Build(ctx context.Context, conversationID string) ([]completion.Message, error)
}

type memoryService struct {
	messages pgrepo.MessageRepo
}

func NewMemoryService(messages pgrepo.MessageRepo) MemoryService {
	return &memoryService{messages: messages}
}

func (s *memoryService) Build(ctx context.Context, conversationID string) ([]completion.Message, error) {
	const op = "MemoryService.Build"

	if conversationID == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "conversation_id is required", nil)
	}

	rows, err := s.messages.LatestN(ctx, conversationID, memoryWindow)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to load messages", err)
	}

	// Repo returns newest first; the transcript must be chronological.
	for i, j := 0, len(rows)-1; i < j; i, j = i+1, j-1 {
		rows[i], rows[j] = rows[j], rows[i]
	}

	out := make([]completion.Message, 0, len(rows))
	for _, m := range rows {
		out = append(out, toTranscript(m))
	}
	return out, nil
}

func toTranscript(m models.Message) completion.Message {
	switch m.Sender {
	case models.SenderUser:
		return userTurn(m)
	case models.SenderAdmin:
		// Operator note: assistant role with a visible marker.
		return completion.Text(completion.RoleAssistant, operatorMarker+" "+m.Content)
	default: // models.SenderAI
		return completion.Text(completion.RoleAssistant, m.Content)
	}
}

func userTurn(m models.Message) completion.Message {
	if m.MediaURL == nil {
		return completion.Text(completion.RoleUser, m.Content)
	}

	caption := m.Content
	if caption == "" {
		caption = mediaPlaceholderCaption
	}

	if m.MediaType != nil && *m.MediaType == models.MediaImage {
		return completion.Message{
			Role: completion.RoleUser,
			Parts: []completion.Part{
				{Type: "image_url", ImageURL: &completion.ImageURL{URL: *m.MediaURL}},
				{Type: "text", Text: caption},
			},
		}
	}

	// Non-image media: reference it textually.
	kind := "media"
	if m.MediaType != nil {
		kind = string(*m.MediaType)
	}
	return completion.Text(completion.RoleUser, "["+kind+"] "+caption)
}
