package logging

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTestLoggerCapture(t *testing.T) {
	tl := NewTestLogger(t)

	tl.Logger.Info().Str("recipient", "a@co.com").Msg("Delivery accepted")
	tl.Logger.Warn().Msg("Ignore address refused, not logged")

	assert.True(t, tl.Contains("Delivery accepted"))
	assert.True(t, tl.Contains("a@co.com"))
	require.Len(t, tl.Lines(), 2)

	tl.Clear()
	assert.Empty(t, tl.Lines())
}

func TestContextRoundTrip(t *testing.T) {
	tl := NewTestLogger(t)
	ctx := WithLogger(context.Background(), tl.Logger)

	FromContext(ctx).Info().Msg("from context")
	assert.True(t, tl.Contains("from context"))
}

func TestFromContextFallsBackToDefault(t *testing.T) {
	logger := FromContext(context.Background())
	assert.NotNil(t, logger)
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want zerolog.Level
	}{
		{"debug", zerolog.DebugLevel},
		{"INFO", zerolog.InfoLevel},
		{"warn", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
		{"", zerolog.InfoLevel},
		{"nonsense", zerolog.InfoLevel},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, parseLevel(tt.in), tt.in)
	}
}
