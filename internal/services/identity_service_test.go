package services

import (
	"context"
	"errors"
	"testing"

	"github.com/balasin/balasin/internal/models"
	"github.com/balasin/balasin/internal/utils"

	"github.com/stretchr/testify/require"
)

type stubSessionRepo struct {
	session *models.WaSession
}

func (r *stubSessionRepo) GetConnected(_ context.Context, instanceID string) (*models.WaSession, error) {
	if r.session == nil || r.session.InstanceID != instanceID {
		return nil, utils.ErrNotFound
	}
	return r.session, nil
}

type stubCustomerRepo struct {
	byPhone   map[string]*models.Customer
	createErr error

	created  []*models.Customer
	setNames map[string]string
}

func (r *stubCustomerRepo) FindByPhone(_ context.Context, _, phone string) (*models.Customer, error) {
	if c, ok := r.byPhone[phone]; ok {
		return c, nil
	}
	return nil, utils.ErrNotFound
}

func (r *stubCustomerRepo) Create(_ context.Context, c *models.Customer) error {
	if r.createErr != nil {
		return r.createErr
	}
	r.created = append(r.created, c)
	return nil
}

func (r *stubCustomerRepo) SetName(_ context.Context, id, name string) error {
	if r.setNames == nil {
		r.setNames = map[string]string{}
	}
	r.setNames[id] = name
	return nil
}

func TestResolveMerchant_ExactConnectedSession(t *testing.T) {
	sessions := &stubSessionRepo{session: &models.WaSession{
		InstanceID: "inst-1",
		MerchantID: "m1",
		Status:     models.WaSessionConnected,
	}}
	merchants := &stubMerchantRepo{merchant: &models.Merchant{ID: "m1", Status: models.MerchantActive}}
	svc := NewIdentityService(sessions, merchants, &stubCustomerRepo{}, &recordConvRepo{})

	m, err := svc.ResolveMerchant(context.Background(), "inst-1")
	require.NoError(t, err)
	require.Equal(t, "m1", m.ID)
}

func TestResolveMerchant_UnknownInstanceIsNotFound(t *testing.T) {
	sessions := &stubSessionRepo{session: &models.WaSession{InstanceID: "inst-1", MerchantID: "m1"}}
	svc := NewIdentityService(sessions, &stubMerchantRepo{}, &stubCustomerRepo{}, &recordConvRepo{})

	// A near-miss instance id must never route to another merchant.
	_, err := svc.ResolveMerchant(context.Background(), "inst-2")
	require.True(t, utils.IsCode(err, utils.CodeNotFound))
}

func TestResolveCustomer_BackfillsPushName(t *testing.T) {
	existing := &models.Customer{ID: "c1", MerchantID: "m1", PhoneNumber: "628123"}
	customers := &stubCustomerRepo{byPhone: map[string]*models.Customer{"628123": existing}}
	svc := NewIdentityService(&stubSessionRepo{}, &stubMerchantRepo{}, customers, &recordConvRepo{})

	c, err := svc.ResolveCustomer(context.Background(), "m1", "628123", "Budi")
	require.NoError(t, err)
	require.Equal(t, "c1", c.ID)
	require.NotNil(t, c.Name)
	require.Equal(t, "Budi", *c.Name)
	require.Equal(t, "Budi", customers.setNames["c1"])
}

func TestResolveCustomer_CreatesWhenUnknown(t *testing.T) {
	customers := &stubCustomerRepo{}
	svc := NewIdentityService(&stubSessionRepo{}, &stubMerchantRepo{}, customers, &recordConvRepo{})

	c, err := svc.ResolveCustomer(context.Background(), "m1", "628999", "Sari")
	require.NoError(t, err)
	require.NotEmpty(t, c.ID)
	require.Equal(t, "628999", c.PhoneNumber)
	require.Len(t, customers.created, 1)
}

func TestResolveCustomer_CreateRaceTakesWinnerRow(t *testing.T) {
	winner := &models.Customer{ID: "winner", MerchantID: "m1", PhoneNumber: "628999"}
	customers := &raceCustomerRepo{winner: winner}
	svc := NewIdentityService(&stubSessionRepo{}, &stubMerchantRepo{}, customers, &recordConvRepo{})

	// First lookup misses, create conflicts, re-fetch returns the winner.
	c, err := svc.ResolveCustomer(context.Background(), "m1", "628999", "")
	require.NoError(t, err)
	require.Equal(t, "winner", c.ID)
	require.Equal(t, 2, customers.looked)
}

// raceCustomerRepo misses the first lookup, rejects the create, then returns
// the winner on re-fetch.
type raceCustomerRepo struct {
	winner *models.Customer
	looked int
}

func (r *raceCustomerRepo) FindByPhone(_ context.Context, _, _ string) (*models.Customer, error) {
	r.looked++
	if r.looked == 1 {
		return nil, utils.ErrNotFound
	}
	return r.winner, nil
}

func (r *raceCustomerRepo) Create(_ context.Context, _ *models.Customer) error {
	return errors.New("duplicate key value violates unique constraint")
}

func (r *raceCustomerRepo) SetName(_ context.Context, _, _ string) error { return nil }

func TestResolveConversation_ReusesActive(t *testing.T) {
	conv := &models.Conversation{ID: "conv-1", Status: models.ConversationActive}
	convs := &recordConvRepo{active: conv}
	svc := NewIdentityService(&stubSessionRepo{}, &stubMerchantRepo{}, &stubCustomerRepo{}, convs)

	got, err := svc.ResolveConversation(context.Background(), "m1", "c1")
	require.NoError(t, err)
	require.Equal(t, "conv-1", got.ID)
	require.Empty(t, convs.created)
}

func TestResolveConversation_CreatesAIHandledWhenNoneActive(t *testing.T) {
	convs := &recordConvRepo{}
	svc := NewIdentityService(&stubSessionRepo{}, &stubMerchantRepo{}, &stubCustomerRepo{}, convs)

	got, err := svc.ResolveConversation(context.Background(), "m1", "c1")
	require.NoError(t, err)
	require.Equal(t, models.HandledByAI, got.HandledBy)
	require.Equal(t, models.ConversationActive, got.Status)
	require.Len(t, convs.created, 1)
}
