package logtrace

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zerolog.DebugLevel, ParseLevel("debug"))
	assert.Equal(t, zerolog.WarnLevel, ParseLevel(" WARN "))
	assert.Equal(t, zerolog.InfoLevel, ParseLevel(""))
	assert.Equal(t, zerolog.InfoLevel, ParseLevel("chatty"))
}

func TestInitLoggerJSON(t *testing.T) {
	defer zerolog.SetGlobalLevel(zerolog.InfoLevel)

	var buf bytes.Buffer
	InitLogger(Options{Level: "warn", Format: FormatJSON, Out: &buf})

	log.Info().Msg("dropped")
	log.Warn().Str("upstream", "gear").Msg("kept")

	var m map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &m))
	assert.Equal(t, "kept", m["message"])
	assert.Equal(t, "gear", m["upstream"])
	assert.Equal(t, "warn", m["level"])
}

func TestInitLoggerConsole(t *testing.T) {
	defer zerolog.SetGlobalLevel(zerolog.InfoLevel)

	var buf bytes.Buffer
	InitLogger(Options{Out: &buf})
	log.Info().Str("file", "Cargo.toml").Msg("patched")

	assert.Contains(t, buf.String(), "patched")
	assert.Contains(t, buf.String(), "file=Cargo.toml")
	assert.NotContains(t, buf.String(), "\x1b[")
}
