package services

import (
	"context"
	"math/rand/v2"
	"time"

	"github.com/balasin/balasin/internal/providers/transport"
	"github.com/balasin/balasin/internal/utils"

	"github.com/sirupsen/logrus"
)

// Pacing is the randomized delay window applied before a text send.
type Pacing struct {
	MinMs int
	MaxMs int
}

// DeliveryService sends text through the transport with humanlike pacing:
// a best-effort composing presence, a randomized wait, then the send.
type DeliveryService interface {
	SendText(ctx context.Context, instance, phone, text string, pacing Pacing) error
}

type deliveryService struct {
	gateway transport.Gateway
	log     *logrus.Logger
	sleep   func(ctx context.Context, d time.Duration) error
}

func NewDeliveryService(gateway transport.Gateway, log *logrus.Logger) DeliveryService {
	return &deliveryService{
		gateway: gateway,
		log:     log,
		sleep:   sleepCtx,
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func (p Pacing) pick() time.Duration {
	min, max := p.MinMs, p.MaxMs
	if min < 0 {
		min = 0
	}
	if max <= min {
		return time.Duration(min) * time.Millisecond
	}
	return time.Duration(min+rand.IntN(max-min)) * time.Millisecond
}

func (s *deliveryService) SendText(ctx context.Context, instance, phone, text string, pacing Pacing) error {
	const op = "DeliveryService.SendText"

	if instance == "" || phone == "" || text == "" {
		return utils.E(utils.CodeInvalidArgument, op, "instance, phone, and text are required", nil)
	}

	// Presence is best-effort; a failure is logged and swallowed.
	if err := s.gateway.SendPresence(ctx, instance, phone, transport.PresenceComposing); err != nil {
		s.log.WithError(err).WithFields(logrus.Fields{
			"instance": instance,
		}).Warn("presence signal failed")
	}

	if err := s.sleep(ctx, pacing.pick()); err != nil {
		return utils.E(utils.CodeTimeout, op, "cancelled while pacing", err)
	}

	if err := s.gateway.SendText(ctx, instance, phone, text); err != nil {
		return utils.E(utils.CodeUnavailable, op, "failed to send message", err)
	}
	return nil
}
