package logging

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWritesJSONToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "reminder.log")

	logger, closer, err := New("info", path)
	require.NoError(t, err)

	logger.Debug().Msg("hidden")
	logger.Info().Str("todo", "1").Msg("inserted")
	closer()

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"message":"inserted"`)
	assert.Contains(t, string(raw), `"todo":"1"`)
	assert.NotContains(t, string(raw), "hidden")
}

func TestNewRejectsUnknownLevel(t *testing.T) {
	_, _, err := New("loud", "")
	require.Error(t, err)
}
