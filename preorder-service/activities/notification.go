package activities

import (
	"context"

	"github.com/draftea/preorder-system/preorder-service/domain"
	"github.com/pkg/errors"
	"go.temporal.io/sdk/activity"
)

// Notifier delivers a notification to a recipient
type Notifier interface {
	Send(ctx context.Context, email, subject, message string) error
}

// NotificationActivities wraps the notification channel collaborator
type NotificationActivities struct {
	notifier Notifier
}

// NewNotificationActivities creates notification activities
func NewNotificationActivities(notifier Notifier) *NotificationActivities {
	return &NotificationActivities{notifier: notifier}
}

// SendNotification sends an email notification. The workflow treats
// notification failures as best-effort.
func (a *NotificationActivities) SendNotification(ctx context.Context, email, subject, message string) (*domain.NotificationResult, error) {
	if err := a.notifier.Send(ctx, email, subject, message); err != nil {
		return nil, errors.Wrap(err, "failed to send notification")
	}

	activity.GetLogger(ctx).Info("Sent notification", "email", email, "subject", subject)
	return &domain.NotificationResult{Sent: true}, nil
}
