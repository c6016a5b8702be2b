package infrastructure

import (
	"context"

	"go.uber.org/zap"
)

// LogNotifier implements activities.Notifier by logging the notification.
// Used in local environments without an SNS topic.
type LogNotifier struct {
	logger *zap.Logger
}

// NewLogNotifier creates a log-backed notifier
func NewLogNotifier(logger *zap.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

// Send logs the notification
func (n *LogNotifier) Send(_ context.Context, email, subject, message string) error {
	n.logger.Info("Email notification",
		zap.String("email", email),
		zap.String("subject", subject),
		zap.String("message", message))
	return nil
}
