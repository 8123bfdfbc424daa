// internal/notify/dispatcher.go
package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Default burst control. A class-wide approval fans out one notification per
// affected student; the limiter keeps that fan-out from flooding the
// delivery collaborator.
const (
	DefaultRatePerSecond = 20
	DefaultBurst         = 50
)

// Dispatcher wraps a Sender with burst control. Notifications over the limit
// are dropped, not queued: boundary decisions must never block on delivery.
type Dispatcher struct {
	sender  Sender
	limiter *rate.Limiter
	logger  *zap.Logger
	now     func() time.Time
}

// NewDispatcher creates a dispatcher with the default limits.
func NewDispatcher(sender Sender, logger *zap.Logger) *Dispatcher {
	return NewDispatcherWithLimit(sender, logger, DefaultRatePerSecond, DefaultBurst)
}

// NewDispatcherWithLimit creates a dispatcher with explicit limits.
func NewDispatcherWithLimit(sender Sender, logger *zap.Logger, perSecond, burst int) *Dispatcher {
	return &Dispatcher{
		sender:  sender,
		limiter: rate.NewLimiter(rate.Limit(perSecond), burst),
		logger:  logger,
		now:     time.Now,
	}
}

// Dispatch assigns an ID and timestamp, then hands the notification to the
// sender. Over-limit notifications are dropped with a warning and a nil
// error; sender failures come back to the caller, who decides whether they
// matter.
func (d *Dispatcher) Dispatch(ctx context.Context, n Notification) error {
	if n.ID == "" {
		n.ID = uuid.New().String()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = d.now()
	}

	if !d.limiter.Allow() {
		d.logger.Warn("notification dropped over rate limit",
			zap.String("recipient_id", n.RecipientID),
			zap.String("type", n.Type))
		return nil
	}

	if err := d.sender.Send(ctx, n); err != nil {
		return fmt.Errorf("sending notification to %s: %w", n.RecipientID, err)
	}
	return nil
}
