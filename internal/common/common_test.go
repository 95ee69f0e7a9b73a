package common

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserError(t *testing.T) {
	inner := errors.New("disk full")
	err := NewUserError("Could not save transaction", inner)

	assert.Equal(t, "Could not save transaction: disk full", err.Error())
	assert.ErrorIs(t, err, inner)
	assert.Equal(t, "Could not save transaction", UserMessage(err, "fallback"))
	assert.Equal(t, "fallback", UserMessage(inner, "fallback"))
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    slog.Level
		wantErr bool
	}{
		{in: "debug", want: slog.LevelDebug},
		{in: "INFO", want: slog.LevelInfo},
		{in: "", want: slog.LevelInfo},
		{in: "warning", want: slog.LevelWarn},
		{in: "error", want: slog.LevelError},
		{in: "verbose", want: slog.LevelInfo, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLevel(tt.in)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrInvalidConfig)
			} else {
				require.NoError(t, err)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestContextLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, slog.LevelDebug, "json")
	ctx := WithLogger(context.Background(), logger)

	LogInfo(ctx, "saved", Fields{"count": 3})
	LogDebug(ctx, "details", nil)
	LogError(ctx, errors.New("boom"), "failed", Fields{"id": "x"})

	out := buf.String()
	assert.Contains(t, out, `"msg":"saved"`)
	assert.Contains(t, out, `"count":3`)
	assert.Contains(t, out, `"msg":"details"`)
	assert.Contains(t, out, `"error":"boom"`)

	assert.Same(t, slog.Default(), Logger(context.Background()))
}
