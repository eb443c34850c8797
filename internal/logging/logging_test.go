package logging

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLevelFor(t *testing.T) {
	assert.Equal(t, zerolog.WarnLevel, LevelFor(0))
	assert.Equal(t, zerolog.InfoLevel, LevelFor(1))
	assert.Equal(t, zerolog.DebugLevel, LevelFor(2))
	assert.Equal(t, zerolog.TraceLevel, LevelFor(3))
	assert.Equal(t, zerolog.TraceLevel, LevelFor(10))
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, 0, ParseLevel("warn"))
	assert.Equal(t, 0, ParseLevel("error"))
	assert.Equal(t, 1, ParseLevel("info"))
	assert.Equal(t, 2, ParseLevel("debug"))
	assert.Equal(t, 3, ParseLevel("trace"))
	assert.Equal(t, 0, ParseLevel("loud"))
}

func TestSetupWritesLogFile(t *testing.T) {
	previous := log.Logger
	previousLevel := zerolog.GlobalLevel()
	t.Cleanup(func() {
		log.Logger = previous
		zerolog.SetGlobalLevel(previousLevel)
	})

	logFile := filepath.Join(t.TempDir(), "nested", "test.log")
	Setup(1, logFile)

	logger := GetLogger("test")
	logger.Info().Msg("hello from test")

	data, err := os.ReadFile(logFile)
	require.NoError(t, err)
	assert.Contains(t, string(data), "hello from test")
	assert.Contains(t, string(data), `"component":"test"`)
}
