package logger_test

import (
	"context"
	"testing"

	"github.com/Saroj9823Dangol/event-management-sub001/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestNew(t *testing.T) {
	for _, env := range []string{"production", "development", ""} {
		l, err := logger.New(env)
		require.NoError(t, err, env)
		assert.NotNil(t, l)
	}
}

func TestRequestID(t *testing.T) {
	assert.Equal(t, "unknown", logger.RequestID(context.Background()))

	ctx := logger.WithRequestID(context.Background(), "req-1")
	assert.Equal(t, "req-1", logger.RequestID(ctx))

	core, logs := observer.New(zap.InfoLevel)
	logger.For(ctx, zap.New(core)).Info("hello")

	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "req-1", logs.All()[0].ContextMap()[logger.RequestIDKey])
}
