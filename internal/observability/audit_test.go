package observability

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/you/campusauth/domain"
)

func TestZapAuditLogger_LogEvent(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	audit := NewAuditLogger(zap.New(core))

	audit.LogEvent(context.Background(), domain.NewAuditEvent(domain.OTPRequestEvent).
		WithEmail("alice@lpu.in").
		WithTenant("t1"))
	audit.LogEvent(context.Background(), domain.NewAuditEvent(domain.OTPFailureEvent).
		WithEmail("alice@lpu.in").
		WithError(errors.New("invalid or expired code")))

	entries := logs.All()
	require.Len(t, entries, 2)

	assert.Equal(t, zapcore.InfoLevel, entries[0].Level)
	assert.Equal(t, "audit", entries[0].LoggerName)
	ctx := entries[0].ContextMap()
	assert.Equal(t, "OTP_REQUESTED", ctx["event_type"])
	assert.Equal(t, "t1", ctx["tenant_id"])

	assert.Equal(t, zapcore.WarnLevel, entries[1].Level)
	assert.Equal(t, "invalid or expired code", entries[1].ContextMap()["error"])
}

func TestNewLogger_FallsBackToInfo(t *testing.T) {
	logger, err := NewLogger("not-a-level", false)
	require.NoError(t, err)
	assert.True(t, logger.Core().Enabled(zapcore.InfoLevel))
	assert.False(t, logger.Core().Enabled(zapcore.DebugLevel))
}
