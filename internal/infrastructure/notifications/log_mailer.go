package notifications

import (
	"context"

	"go.uber.org/zap"

	"github.com/you/campusauth/domain"
)

// LogMailer writes outbound mail to the log instead of sending it.
// Used in development and when no provider is configured.
type LogMailer struct {
	logger *zap.Logger
}

// NewLogMailer creates a mailer that only logs
func NewLogMailer(logger *zap.Logger) *LogMailer {
	return &LogMailer{logger: logger.Named("mailer")}
}

// Send implements domain.Mailer
func (m *LogMailer) Send(_ context.Context, msg domain.EmailMessage) error {
	m.logger.Info("email not sent, log provider",
		zap.String("to", msg.To),
		zap.String("subject", msg.Subject),
		zap.String("body", msg.TextBody),
	)
	return nil
}
