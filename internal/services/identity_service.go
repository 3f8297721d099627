package services

import (
	"context"
	"errors"
	"time"

	"github.com/balasin/balasin/internal/models"
	mongorepo "github.com/balasin/balasin/internal/repositories/mongo"
	pgrepo "github.com/balasin/balasin/internal/repositories/postgres"
	"github.com/balasin/balasin/internal/utils"

	"github.com/google/uuid"
)

// IdentityService maps transport-level identifiers onto the durable
// (merchant, customer, conversation) triple.
type IdentityService interface {
	// ResolveMerchant requires an exact connected-session match for the
	// instance id. A miss is NOT_FOUND; routing a customer to an arbitrary
	// connected merchant is never acceptable.
	ResolveMerchant(ctx context.Context, instanceID string) (*models.Merchant, error)
	ResolveCustomer(ctx context.Context, merchantID, phone, pushName string) (*models.Customer, error)
	ResolveConversation(ctx context.Context, merchantID, customerID string) (*models.Conversation, error)
}

type identityService struct {
	sessions      mongorepo.WaSessionRepository
	merchants     pgrepo.MerchantRepo
	customers     pgrepo.CustomerRepo
	conversations pgrepo.ConversationRepo
}

func NewIdentityService(
	sessions mongorepo.WaSessionRepository,
	merchants pgrepo.MerchantRepo,
	customers pgrepo.CustomerRepo,
	conversations pgrepo.ConversationRepo,
) IdentityService {
	return &identityService{
		sessions:      sessions,
		merchants:     merchants,
		customers:     customers,
		conversations: conversations,
	}
}

func (s *identityService) ResolveMerchant(ctx context.Context, instanceID string) (*models.Merchant, error) {
	const op = "IdentityService.ResolveMerchant"

	if instanceID == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "instance id is required", nil)
	}

	sess, err := s.sessions.GetConnected(ctx, instanceID)
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return nil, utils.E(utils.CodeNotFound, op, "no connected session for instance", err)
		}
		return nil, utils.E(utils.CodeInternal, op, "failed to look up session", err)
	}

	m, err := s.merchants.GetByID(ctx, sess.MerchantID)
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return nil, utils.E(utils.CodeNotFound, op, "merchant not found for session", err)
		}
		return nil, utils.E(utils.CodeInternal, op, "failed to load merchant", err)
	}
	return m, nil
}

func (s *identityService) ResolveCustomer(ctx context.Context, merchantID, phone, pushName string) (*models.Customer, error) {
	const op = "IdentityService.ResolveCustomer"

	if merchantID == "" || phone == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "merchant_id and phone are required", nil)
	}

	c, err := s.customers.FindByPhone(ctx, merchantID, phone)
	if err == nil {
		// Backfill the display name once known.
		if c.Name == nil && pushName != "" {
			if err := s.customers.SetName(ctx, c.ID, pushName); err == nil {
				c.Name = &pushName
			}
		}
		return c, nil
	}
	if !errors.Is(err, utils.ErrNotFound) {
		return nil, utils.E(utils.CodeInternal, op, "failed to look up customer", err)
	}

	c = &models.Customer{
		ID:          uuid.NewString(),
		MerchantID:  merchantID,
		PhoneNumber: phone,
		CreatedAt:   time.Now().UTC(),
	}
	if pushName != "" {
		c.Name = &pushName
	}
	if err := s.customers.Create(ctx, c); err != nil {
		// Concurrent create for the same new customer: take the winner's row.
		if existing, ferr := s.customers.FindByPhone(ctx, merchantID, phone); ferr == nil {
			return existing, nil
		}
		return nil, utils.E(utils.CodeInternal, op, "failed to create customer", err)
	}
	return c, nil
}

func (s *identityService) ResolveConversation(ctx context.Context, merchantID, customerID string) (*models.Conversation, error) {
	const op = "IdentityService.ResolveConversation"

	conv, err := s.conversations.FindActive(ctx, merchantID, customerID)
	if err == nil {
		return conv, nil
	}
	if !errors.Is(err, utils.ErrNotFound) {
		return nil, utils.E(utils.CodeInternal, op, "failed to look up conversation", err)
	}

	now := time.Now().UTC()
	conv = &models.Conversation{
		ID:         uuid.NewString(),
		MerchantID: merchantID,
		CustomerID: customerID,
		Status:     models.ConversationActive,
		HandledBy:  models.HandledByAI,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.conversations.Create(ctx, conv); err != nil {
		// The partial unique index rejects a second active row; reuse the one
		// that won the race.
		if existing, ferr := s.conversations.FindActive(ctx, merchantID, customerID); ferr == nil {
			return existing, nil
		}
		return nil, utils.E(utils.CodeInternal, op, "failed to create conversation", err)
	}
	return conv, nil
}
