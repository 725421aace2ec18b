// Package notify dispatches reservation notifications. The default notifier
// is a stub that always reports success; SNS/SES delivery is available when
// enabled in configuration.
package notify

import (
	"context"

	"reservation-agent/internal/common/logger"
	"reservation-agent/internal/models"
)

// Notifier sends a message to a destination over the given method
// ("sms" or "email").
type Notifier interface {
	Send(ctx context.Context, method, dest, message string) (models.NotificationReceipt, error)
}

// StubNotifier performs no delivery and always reports success.
type StubNotifier struct {
	logger logger.Logger
}

func NewStubNotifier(log logger.Logger) *StubNotifier {
	return &StubNotifier{
		logger: log.WithFields(map[string]interface{}{"component": "notify"}),
	}
}

func (n *StubNotifier) Send(_ context.Context, method, dest, message string) (models.NotificationReceipt, error) {
	n.logger.Info("notification (stub)", map[string]interface{}{
		"method":  method,
		"dest":    dest,
		"message": message,
	})
	return models.NotificationReceipt{Sent: true, Method: method, Dest: dest}, nil
}
