package services

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/balasin/balasin/internal/models"
	"github.com/balasin/balasin/internal/providers/completion"
	"github.com/balasin/balasin/internal/providers/transport"
	pgrepo "github.com/balasin/balasin/internal/repositories/postgres"
	"github.com/balasin/balasin/internal/utils"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/datatypes"
)

// EscalationMarker is the reserved token a model reply uses to request human
// handling. It must never reach the customer verbatim.
const EscalationMarker = "ESKALASI_HUMAN"

// HandoverMessage is the fixed text sent to the customer on escalation.
const HandoverMessage = "Mohon tunggu kak, saya sedang menyambungkan dengan Admin kami. 🙏"

// Pipeline outcome statuses acknowledged to the webhook sender.
const (
	StatusIgnored           = "ignored"
	StatusMerchantInactive  = "merchant_inactive"
	StatusDailyLimitReached = "daily_limit_reached"
	StatusSavedForHuman     = "saved_for_human"
	StatusEscalatedNoKnow   = "escalated_no_knowledge"
	StatusEscalatedAIError  = "escalated_ai_error"
	StatusEscalated         = "escalated"
	StatusReplied           = "replied"
)

type InboundResult struct {
	Status         string `json:"status"`
	ConversationID string `json:"conversation_id,omitempty"`
}

// InboundService is the inbound-message routing and AI-escalation pipeline.
type InboundService interface {
	HandleEvent(ctx context.Context, evt *transport.WebhookEvent) (*InboundResult, error)
}

type inboundService struct {
	settings      SettingsService
	identity      IdentityService
	usage         UsageService
	knowledge     KnowledgeService
	memory        MemoryService
	media         MediaService
	delivery      DeliveryService
	completion    completion.Provider
	messages      pgrepo.MessageRepo
	conversations pgrepo.ConversationRepo
	log           *logrus.Logger
}

type InboundDeps struct {
	Settings      SettingsService
	Identity      IdentityService
	Usage         UsageService
	Knowledge     KnowledgeService
	Memory        MemoryService
	Media         MediaService
	Delivery      DeliveryService
	Completion    completion.Provider
	Messages      pgrepo.MessageRepo
	Conversations pgrepo.ConversationRepo
	Logger        *logrus.Logger
}

func NewInboundService(d InboundDeps) InboundService {
	return &inboundService{
		settings:      d.Settings,
		identity:      d.Identity,
		usage:         d.Usage,
		knowledge:     d.Knowledge,
		memory:        d.Memory,
		media:         d.Media,
		delivery:      d.Delivery,
		completion:    d.Completion,
		messages:      d.Messages,
		conversations: d.Conversations,
		log:           d.Logger,
	}
}

func (s *inboundService) HandleEvent(ctx context.Context, evt *transport.WebhookEvent) (*InboundResult, error) {
	if evt == nil || evt.Kind() != transport.EventMessagesUpsert {
		return &InboundResult{Status: StatusIgnored}, nil
	}

	in, skip := transport.ExtractInbound(evt)
	if skip != "" {
		return &InboundResult{Status: skip}, nil
	}

	// Once the event is accepted, a sender that times out and disconnects
	// must not abandon work mid-flight: the completion call, the paced send,
	// and the persists all run to completion.
	ctx = context.WithoutCancel(ctx)

	log := s.log.WithFields(logrus.Fields{
		"instance": in.Instance,
		"phone":    in.PhoneNumber,
	})

	merchant, err := s.identity.ResolveMerchant(ctx, in.Instance)
	if err != nil {
		return nil, err
	}
	if merchant.Status != models.MerchantActive {
		log.WithField("merchant_id", merchant.ID).Warn("inbound for inactive merchant dropped")
		return &InboundResult{Status: StatusMerchantInactive}, nil
	}

	settings, err := s.settings.Snapshot(ctx)
	if err != nil {
		return nil, err
	}

	// Hard daily ceiling: checked before any write, dropped silently.
	allowed, err := s.usage.AllowToday(ctx, merchant)
	if err != nil {
		return nil, err
	}
	if !allowed {
		log.WithField("merchant_id", merchant.ID).Warn("daily message limit reached")
		return &InboundResult{Status: StatusDailyLimitReached}, nil
	}

	customer, err := s.identity.ResolveCustomer(ctx, merchant.ID, in.PhoneNumber, in.PushName)
	if err != nil {
		return nil, err
	}
	conv, err := s.identity.ResolveConversation(ctx, merchant.ID, customer.ID)
	if err != nil {
		return nil, err
	}

	if err := s.persistInbound(ctx, merchant.ID, conv.ID, in); err != nil {
		return nil, err
	}

	if conv.HandledBy == models.HandledByHuman {
		return &InboundResult{Status: StatusSavedForHuman, ConversationID: conv.ID}, nil
	}

	pacing := Pacing{MinMs: settings.DelayMinMs, MaxMs: settings.DelayMaxMs}

	sector := DetectSector(in.Text)
	chunks, err := s.knowledge.Retrieve(ctx, merchant.ID, in.Text, sector)
	if err != nil {
		return nil, err
	}
	if len(chunks) == 0 {
		// No grounding at all: never answer from an empty context.
		if err := s.escalate(ctx, conv.ID, in.Instance, in.PhoneNumber, pacing); err != nil {
			return nil, err
		}
		return &InboundResult{Status: StatusEscalatedNoKnow, ConversationID: conv.ID}, nil
	}

	transcript, err := s.memory.Build(ctx, conv.ID)
	if err != nil {
		return nil, err
	}

	msgs := make([]completion.Message, 0, len(transcript)+1)
	msgs = append(msgs, completion.Text(completion.RoleSystem,
		RenderSystemPrompt(settings.SystemPrompt, merchant.Name, JoinContext(chunks))))
	msgs = append(msgs, transcript...)

	result, err := s.completion.Complete(ctx, completion.Request{
		Model:       settings.Model,
		Messages:    msgs,
		Temperature: settings.Temperature,
		MaxTokens:   settings.MaxTokens,
	})
	if err != nil {
		log.WithError(err).Error("completion call failed")
		if eerr := s.escalate(ctx, conv.ID, in.Instance, in.PhoneNumber, pacing); eerr != nil {
			return nil, eerr
		}
		return &InboundResult{Status: StatusEscalatedAIError, ConversationID: conv.ID}, nil
	}

	// A successful call is metered even when the reply asks for escalation.
	if err := s.usage.RecordReply(ctx, merchant.ID, result.TokenUsage); err != nil {
		log.WithError(err).Error("usage bookkeeping failed")
	}

	if strings.Contains(result.Text, EscalationMarker) {
		if err := s.escalate(ctx, conv.ID, in.Instance, in.PhoneNumber, pacing); err != nil {
			return nil, err
		}
		return &InboundResult{Status: StatusEscalated, ConversationID: conv.ID}, nil
	}

	// A send failure never rolls back persisted state; the reply row is
	// written either way.
	if err := s.delivery.SendText(ctx, in.Instance, in.PhoneNumber, result.Text, pacing); err != nil {
		log.WithError(err).Error("reply delivery failed")
	}
	if err := s.persistOutbound(ctx, conv.ID, models.SenderAI, result.Text); err != nil {
		return nil, err
	}

	return &InboundResult{Status: StatusReplied, ConversationID: conv.ID}, nil
}

// escalate flips the conversation to human handling, notifies the customer,
// and records the handover as an assistant turn.
func (s *inboundService) escalate(ctx context.Context, conversationID, instance, phone string, pacing Pacing) error {
	const op = "InboundService.escalate"

	if err := s.conversations.SetHandledBy(ctx, conversationID, models.HandledByHuman, time.Now().UTC()); err != nil {
		return utils.E(utils.CodeInternal, op, "failed to mark conversation human-handled", err)
	}

	if err := s.delivery.SendText(ctx, instance, phone, HandoverMessage, pacing); err != nil {
		s.log.WithError(err).WithField("conversation_id", conversationID).Error("handover delivery failed")
	}

	return s.persistOutbound(ctx, conversationID, models.SenderAI, HandoverMessage)
}

func (s *inboundService) persistInbound(ctx context.Context, merchantID, conversationID string, in *transport.Inbound) error {
	const op = "InboundService.persistInbound"

	msg := &models.Message{
		ID:             uuid.NewString(),
		ConversationID: conversationID,
		Sender:         models.SenderUser,
		Content:        in.Text,
		CreatedAt:      time.Now().UTC(),
	}

	meta := map[string]string{}
	if in.PushName != "" {
		meta["push_name"] = in.PushName
	}

	if in.Media != nil {
		kind := models.MediaType(in.Media.Kind)
		msg.MediaType = &kind
		meta["media_message_id"] = in.Media.MessageID
		if in.Media.Mimetype != "" {
			meta["media_mimetype"] = in.Media.Mimetype
		}

		// Media persistence is best-effort: the text/caption still flows
		// through the pipeline when storage is unavailable.
		url, err := s.media.Persist(ctx, in.Instance, merchantID, in.Media)
		if err != nil {
			s.log.WithError(err).Warn("media persistence failed")
		} else {
			msg.MediaURL = &url
		}
	}

	if len(meta) > 0 {
		raw, err := json.Marshal(meta)
		if err == nil {
			msg.Metadata = datatypes.JSON(raw)
		}
	}

	if err := s.messages.Insert(ctx, msg); err != nil {
		return utils.E(utils.CodeInternal, op, "failed to persist inbound message", err)
	}
	if err := s.conversations.Touch(ctx, conversationID, msg.CreatedAt); err != nil {
		return utils.E(utils.CodeInternal, op, "failed to touch conversation", err)
	}
	return nil
}

func (s *inboundService) persistOutbound(ctx context.Context, conversationID string, sender models.MessageSender, content string) error {
	const op = "InboundService.persistOutbound"

	msg := &models.Message{
		ID:             uuid.NewString(),
		ConversationID: conversationID,
		Sender:         sender,
		Content:        content,
		CreatedAt:      time.Now().UTC(),
	}
	if err := s.messages.Insert(ctx, msg); err != nil {
		return utils.E(utils.CodeInternal, op, "failed to persist outbound message", err)
	}
	if err := s.conversations.Touch(ctx, conversationID, msg.CreatedAt); err != nil {
		return utils.E(utils.CodeInternal, op, "failed to touch conversation", err)
	}
	return nil
}

// RenderSystemPrompt substitutes the template placeholders and appends the
// explicit business-name/context block the assistant grounds on.
func RenderSystemPrompt(tpl, businessName, context string) string {
	if businessName == "" {
		businessName = "Bisnis Kami"
	}
	out := strings.ReplaceAll(tpl, "{{business_name}}", businessName)
	out = strings.ReplaceAll(out, "{{context}}", context)
	return out + "\n\nNama bisnis: " + businessName + "\n\nINFORMASI:\n" + context
}
