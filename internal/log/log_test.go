package log

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComponentField(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf, "debug")
	defer SetOutput(&bytes.Buffer{}, "info")

	Program.Info().Str("kind", "initMint").Msg("instruction")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "program", line["component"])
	assert.Equal(t, "initMint", line["kind"])
	assert.Equal(t, "instruction", line["message"])
}

func TestLevelFilter(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf, "warn")
	defer SetOutput(&bytes.Buffer{}, "info")

	Ledger.Info().Msg("hidden")
	assert.Zero(t, buf.Len())
	Ledger.Warn().Msg("shown")
	assert.NotZero(t, buf.Len())
}

func TestValidLevel(t *testing.T) {
	assert.True(t, ValidLevel("DEBUG"))
	assert.True(t, ValidLevel("error"))
	assert.False(t, ValidLevel("trace"))
}
