// backend-go/pkg/logger/logger.go
package logger

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/rs/zerolog/pkgerrors"
)

var (
	// Log is the global logger instance
	Log zerolog.Logger
)

func init() {
	zerolog.ErrorStackMarshaler = pkgerrors.MarshalStack
	zerolog.TimeFieldFormat = time.RFC3339Nano

	Log = newLogger(consoleWriter(os.Stdout), zerolog.InfoLevel)
	log.Logger = Log
}

func consoleWriter(out io.Writer) io.Writer {
	return zerolog.ConsoleWriter{
		Out:        out,
		TimeFormat: "2006-01-02 15:04:05",
	}
}

func newLogger(out io.Writer, level zerolog.Level) zerolog.Logger {
	return zerolog.New(out).
		Level(level).
		With().
		Timestamp().
		Caller().
		Logger()
}

// Configure sets the level from the server mode and switches to JSON output
// outside debug mode.
func Configure(mode string) {
	level := LevelForMode(mode)
	zerolog.SetGlobalLevel(level)

	var out io.Writer = os.Stdout
	if level <= zerolog.DebugLevel {
		out = consoleWriter(os.Stdout)
	}

	Log = newLogger(out, level)
	log.Logger = Log
}

// LevelForMode maps a server mode ("debug", "release", "test") or an explicit
// zerolog level name to a level.
func LevelForMode(mode string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case "debug":
		return zerolog.DebugLevel
	case "release", "":
		return zerolog.InfoLevel
	case "test":
		return zerolog.WarnLevel
	}

	level, err := zerolog.ParseLevel(mode)
	if err != nil {
		Log.Warn().Str("level", mode).Msg("invalid log level, defaulting to info")
		return zerolog.InfoLevel
	}
	return level
}
