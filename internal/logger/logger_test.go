package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWithWriter_EmitsStructuredFields(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter(&buf)

	log.Info().Str("category", "dividends").Int("count", 3).Msg("collected transfers")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "dividends", entry["category"])
	assert.Equal(t, float64(3), entry["count"])
	assert.Equal(t, "collected transfers", entry["message"])
	assert.NotEmpty(t, entry["time"])
}

func TestNew_VerboseTogglesLevel(t *testing.T) {
	assert.Equal(t, zerolog.InfoLevel, New(false).GetLevel())
	assert.Equal(t, zerolog.DebugLevel, New(true).GetLevel())
}
