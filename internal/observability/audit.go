package observability

import (
	"context"

	"go.uber.org/zap"

	"github.com/you/campusauth/domain"
)

// ZapAuditLogger writes audit events as structured log lines
type ZapAuditLogger struct {
	logger *zap.Logger
}

// NewAuditLogger creates an audit logger on a named child of logger
func NewAuditLogger(logger *zap.Logger) domain.AuditLogger {
	return &ZapAuditLogger{logger: logger.Named("audit")}
}

// LogEvent implements domain.AuditLogger
func (a *ZapAuditLogger) LogEvent(_ context.Context, event *domain.AuditEvent) {
	fields := []zap.Field{
		zap.String("event_type", string(event.EventType)),
		zap.Time("timestamp", event.Timestamp),
		zap.Bool("success", event.Success),
	}
	if event.IdentityID != "" {
		fields = append(fields, zap.String("identity_id", event.IdentityID))
	}
	if event.TenantID != "" {
		fields = append(fields, zap.String("tenant_id", event.TenantID))
	}
	if event.Email != "" {
		fields = append(fields, zap.String("email", event.Email))
	}
	if len(event.Metadata) > 0 {
		fields = append(fields, zap.Any("metadata", event.Metadata))
	}

	if event.Success {
		a.logger.Info("audit", fields...)
		return
	}
	fields = append(fields, zap.String("error", event.ErrorMsg))
	a.logger.Warn("audit", fields...)
}
