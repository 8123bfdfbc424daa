// internal/notify/log.go
package notify

import (
	"context"

	"go.uber.org/zap"
)

// LogSender writes notifications to the log. Deployments that have not wired
// the platform's delivery service run with this; nothing upstream can tell
// the difference.
type LogSender struct {
	logger *zap.Logger
}

// NewLogSender creates a sender that logs instead of delivering.
func NewLogSender(logger *zap.Logger) *LogSender {
	return &LogSender{logger: logger}
}

// Send logs the notification and reports success.
func (s *LogSender) Send(_ context.Context, n Notification) error {
	s.logger.Info("notification",
		zap.String("recipient_id", n.RecipientID),
		zap.String("type", n.Type),
		zap.String("priority", n.Priority),
		zap.String("title", n.Title))
	return nil
}
