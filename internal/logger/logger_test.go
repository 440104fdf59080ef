package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_Defaults(t *testing.T) {
	log, err := New(Options{})
	require.NoError(t, err)
	assert.Equal(t, zerolog.InfoLevel, log.GetLevel())
}

func TestNew_JSON(t *testing.T) {
	buf := &bytes.Buffer{}
	log, err := New(Options{Level: "DEBUG", Format: FormatJSON, Out: buf})
	require.NoError(t, err)

	log.Debug().Str("id", "txn_1").Msg("unknown transaction")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "debug", entry["level"])
	assert.Equal(t, "txn_1", entry["id"])
	assert.Equal(t, "unknown transaction", entry["message"])
	assert.Contains(t, entry, "time")
}

func TestNew_Console(t *testing.T) {
	buf := &bytes.Buffer{}
	log, err := New(Options{Out: buf})
	require.NoError(t, err)

	log.Debug().Msg("hidden")
	log.Info().Msg("shown")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
}

func TestNew_Invalid(t *testing.T) {
	_, err := New(Options{Level: "loud"})
	assert.ErrorContains(t, err, "invalid log level")

	_, err = New(Options{Format: "xml"})
	assert.ErrorContains(t, err, "invalid log format")
}

func TestNewWithWriter(t *testing.T) {
	buf := &bytes.Buffer{}
	log := NewWithWriter(buf)

	log.Info().Msg("test message")
	assert.Contains(t, buf.String(), "test message")
}

func TestFromContext(t *testing.T) {
	buf := &bytes.Buffer{}
	ctx := WithContext(context.Background(), NewWithWriter(buf))

	log := FromContext(ctx)
	log.Info().Msg("test")
	assert.Contains(t, buf.String(), "test")
}

func TestFromContext_Default(t *testing.T) {
	log := FromContext(context.Background())
	assert.Equal(t, zerolog.InfoLevel, log.GetLevel())
}

func TestWithFields(t *testing.T) {
	buf := &bytes.Buffer{}
	log := WithFields(NewWithWriter(buf), map[string]interface{}{
		"tag":      "2024-04-01T09:30:00",
		"category": "sale",
	})

	log.Info().Msg("wrote batch")
	assert.Contains(t, buf.String(), `"tag":"2024-04-01T09:30:00"`)
	assert.Contains(t, buf.String(), `"category":"sale"`)
}
