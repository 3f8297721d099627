package services

import (
	"context"
	"time"

	"github.com/balasin/balasin/internal/models"
	pgrepo "github.com/balasin/balasin/internal/repositories/postgres"
	"github.com/balasin/balasin/internal/utils"

	"github.com/google/uuid"
)

// OperatorService is the human-operator reply path: manual sends go through
// the same pacing as automated ones and are optionally recorded on the
// conversation.
type OperatorService interface {
	SendManual(ctx context.Context, instance, phone, text, conversationID string, sender models.MessageSender) error
}

type operatorService struct {
	settings      SettingsService
	delivery      DeliveryService
	messages      pgrepo.MessageRepo
	conversations pgrepo.ConversationRepo
}

func NewOperatorService(
	settings SettingsService,
	delivery DeliveryService,
	messages pgrepo.MessageRepo,
	conversations pgrepo.ConversationRepo,
) OperatorService {
	return &operatorService{
		settings:      settings,
		delivery:      delivery,
		messages:      messages,
		conversations: conversations,
	}
}

func (s *operatorService) SendManual(ctx context.Context, instance, phone, text, conversationID string, sender models.MessageSender) error {
	const op = "OperatorService.SendManual"

	if instance == "" || phone == "" || text == "" {
		return utils.E(utils.CodeInvalidArgument, op, "instance, phone_number, and message are required", nil)
	}
	if sender == "" {
		sender = models.SenderAdmin
	}

	settings, err := s.settings.Snapshot(ctx)
	if err != nil {
		return err
	}

	if err := s.delivery.SendText(ctx, instance, phone, text, Pacing{
		MinMs: settings.DelayMinMs,
		MaxMs: settings.DelayMaxMs,
	}); err != nil {
		return err
	}

	if conversationID == "" {
		return nil
	}

	now := time.Now().UTC()
	msg := &models.Message{
		ID:             uuid.NewString(),
		ConversationID: conversationID,
		Sender:         sender,
		Content:        text,
		CreatedAt:      now,
	}
	if err := s.messages.Insert(ctx, msg); err != nil {
		return utils.E(utils.CodeInternal, op, "failed to persist message", err)
	}
	if err := s.conversations.Touch(ctx, conversationID, now); err != nil {
		return utils.E(utils.CodeInternal, op, "failed to touch conversation", err)
	}
	return nil
}
