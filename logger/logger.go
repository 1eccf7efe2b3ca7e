package logger

import (
	"context"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// RequestIDKey is the key used to store request ID in context
const RequestIDKey = "request_id"

type ctxKey struct{}

// New builds a JSON logger for production and a console logger otherwise.
func New(env string) (*zap.Logger, error) {
	var config zap.Config

	if env == "production" {
		config = zap.NewProductionConfig()
		config.EncoderConfig.TimeKey = "timestamp"
		config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	} else {
		config = zap.NewDevelopmentConfig()
		config.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	return config.Build(zap.AddStacktrace(zapcore.ErrorLevel))
}

// WithRequestID returns a context carrying the request ID.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, ctxKey{}, requestID)
}

// RequestID extracts the request ID from ctx, or "unknown".
func RequestID(ctx context.Context) string {
	if v, ok := ctx.Value(ctxKey{}).(string); ok && v != "" {
		return v
	}
	return "unknown"
}

// For returns base annotated with the request ID of ctx.
func For(ctx context.Context, base *zap.Logger) *zap.Logger {
	return base.With(zap.String(RequestIDKey, RequestID(ctx)))
}
