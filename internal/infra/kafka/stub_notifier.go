package kafka

import (
	"context"

	"go.uber.org/zap"

	"github.com/arklim/social-platform-accounts/internal/core/domain"
	"github.com/arklim/social-platform-accounts/internal/core/port"
	"github.com/arklim/social-platform-accounts/internal/infra/logger"
)

// StubNotifier logs notification events instead of publishing them to Kafka.
// Used when no brokers are configured.
type StubNotifier struct {
	logger *zap.Logger
}

// NewStubNotifier constructs a development-friendly notifier.
func NewStubNotifier(logger *zap.Logger) *StubNotifier {
	return &StubNotifier{logger: logger}
}

// SendVerification logs the verification notification.
func (n *StubNotifier) SendVerification(_ context.Context, account domain.Account) error {
	n.logger.Info("stub notification published",
		zap.String("event_type", eventTypeVerification),
		zap.String("username", account.Username),
		zap.String("email", logger.MaskEmail(account.Email)),
	)
	return nil
}

// SendPasswordReset logs the password reset notification.
func (n *StubNotifier) SendPasswordReset(_ context.Context, account domain.Account) error {
	n.logger.Info("stub notification published",
		zap.String("event_type", eventTypePasswordReset),
		zap.String("username", account.Username),
		zap.String("email", logger.MaskEmail(account.Email)),
	)
	return nil
}

var _ port.Notifier = (*StubNotifier)(nil)
