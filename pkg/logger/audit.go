package logger

import (
	"context"

	"go.uber.org/zap"
)

// Level is the severity vocabulary of audit messages.
type Level string

const (
	LevelInfo    Level = "info"
	LevelSuccess Level = "success"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
)

// AuditSink receives a line for every authentication attempt, validation
// failure, permission denial and mutation. It is informational only.
type AuditSink interface {
	Log(ctx context.Context, level Level, message string)
}

type zapSink struct {
	logger *zap.Logger
}

// NewAuditSink routes audit lines to logger under the "audit" name, tagging
// each with its outcome.
func NewAuditSink(logger *zap.Logger) AuditSink {
	if logger == nil {
		logger = zap.NewNop()
	}
	return zapSink{logger: logger.Named("audit")}
}

func (s zapSink) Log(ctx context.Context, level Level, message string) {
	l := WithRequestID(ctx, s.logger)
	outcome := zap.String("outcome", string(level))
	switch level {
	case LevelError:
		l.Error(message, outcome)
	case LevelWarning:
		l.Warn(message, outcome)
	default:
		l.Info(message, outcome)
	}
}

// NopAuditSink discards everything.
type NopAuditSink struct{}

func (NopAuditSink) Log(context.Context, Level, string) {}
