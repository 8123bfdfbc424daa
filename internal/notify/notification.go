// internal/notify/notification.go
package notify

import (
	"context"
	"time"
)

// Priorities
const (
	PriorityLow    = "low"
	PriorityNormal = "normal"
	PriorityHigh   = "high"
)

// Notification types
const (
	TypeProposalCreated  = "adjustment_proposal_created"
	TypeBoundaryAdjusted = "boundary_adjusted"
)

// Notification is one message for one recipient. Delivery is best effort
// everywhere in this system: callers log failures and move on.
type Notification struct {
	ID          string            `json:"id"`
	RecipientID string            `json:"recipient_id"`
	Type        string            `json:"type"`
	Title       string            `json:"title"`
	Message     string            `json:"message"`
	Priority    string            `json:"priority"`
	Metadata    map[string]string `json:"metadata,omitempty"`
	CreatedAt   time.Time         `json:"created_at"`
}

// Sender delivers a notification to its recipient.
type Sender interface {
	Send(ctx context.Context, n Notification) error
}
