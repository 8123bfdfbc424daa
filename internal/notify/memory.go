// internal/notify/memory.go
package notify

import (
	"context"
	"errors"
	"sync"
)

// MemorySender records notifications in memory. Tests use it to assert
// delivery counts and to inject delivery failures.
type MemorySender struct {
	mu   sync.Mutex
	sent []Notification
	fail error
}

// NewMemorySender creates an empty recording sender.
func NewMemorySender() *MemorySender {
	return &MemorySender{}
}

// FailWith makes every subsequent Send return err; nil restores delivery.
func (m *MemorySender) FailWith(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fail = err
}

// Send records the notification, or fails when a failure is injected.
func (m *MemorySender) Send(_ context.Context, n Notification) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.fail != nil {
		return m.fail
	}
	m.sent = append(m.sent, n)
	return nil
}

// Sent returns a copy of every recorded notification.
func (m *MemorySender) Sent() []Notification {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Notification(nil), m.sent...)
}

// SentTo returns the notifications recorded for one recipient.
func (m *MemorySender) SentTo(recipientID string) []Notification {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []Notification
	for _, n := range m.sent {
		if n.RecipientID == recipientID {
			out = append(out, n)
		}
	}
	return out
}

// ErrDeliveryFailed is a convenience error for failure injection in tests.
var ErrDeliveryFailed = errors.New("notify: delivery failed")
