package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	zlog "github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitWithoutFileDiscards(t *testing.T) {
	closer, err := Init(Config{Level: "info"})
	require.NoError(t, err)
	assert.Nil(t, closer)

	// Must not panic or write anywhere visible.
	zlog.Info().Msg("dropped")
}

func TestInitWritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")
	closer, err := Init(Config{Level: "debug", File: path})
	require.NoError(t, err)
	require.NotNil(t, closer)
	defer closer.Close()

	zlog.Info().Str("track", "a.mp3").Msg("playing")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"track":"a.mp3"`)
	assert.Contains(t, string(data), `"message":"playing"`)
}

func TestInitBadPath(t *testing.T) {
	_, err := Init(Config{File: filepath.Join(t.TempDir(), "missing", "app.log")})
	assert.Error(t, err)
}

func TestParseLevel(t *testing.T) {
	cases := []struct {
		in   string
		want zerolog.Level
	}{
		{"debug", zerolog.DebugLevel},
		{"info", zerolog.InfoLevel},
		{"", zerolog.InfoLevel},
		{"WARN", zerolog.WarnLevel},
		{"warning", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
		{"nonsense", zerolog.InfoLevel},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, parseLevel(tc.in), "level %q", tc.in)
	}
}
