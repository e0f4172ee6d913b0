package logger

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestLevelForMode(t *testing.T) {
	assert.Equal(t, zerolog.DebugLevel, LevelForMode("debug"))
	assert.Equal(t, zerolog.InfoLevel, LevelForMode("release"))
	assert.Equal(t, zerolog.InfoLevel, LevelForMode(""))
	assert.Equal(t, zerolog.WarnLevel, LevelForMode("TEST"))
	assert.Equal(t, zerolog.ErrorLevel, LevelForMode("error"))
	assert.Equal(t, zerolog.InfoLevel, LevelForMode("loud"))
}
