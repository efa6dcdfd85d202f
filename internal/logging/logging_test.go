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

func TestSetup_LevelAndFile(t *testing.T) {
	defer zerolog.SetGlobalLevel(zerolog.TraceLevel)

	path := filepath.Join(t.TempDir(), "bot.log")
	closer := Setup(Options{Level: "WARN", File: path})
	assert.Equal(t, zerolog.WarnLevel, zerolog.GlobalLevel())

	log.Warn().Msg("written")
	require.NoError(t, closer.Close())

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(b), "written")
}

func TestSetup_UnknownLevelFallsBack(t *testing.T) {
	defer zerolog.SetGlobalLevel(zerolog.TraceLevel)

	closer := Setup(Options{Level: "loud"})
	assert.Equal(t, zerolog.InfoLevel, zerolog.GlobalLevel())
	assert.NoError(t, closer.Close())
}
