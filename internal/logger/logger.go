package logger

import (
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"payvault/internal/config"
)

// New builds the service logger from the Log config section. Format
// "console" is for local development; everything else emits JSON.
func New(cfg config.Log, service string) zerolog.Logger {
	var out = zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: "15:04:05"}

	zerolog.TimeFieldFormat = time.RFC3339Nano

	base := zerolog.New(os.Stdout)
	if strings.EqualFold(cfg.Format, "console") {
		base = zerolog.New(out)
	}

	return base.
		With().
		Timestamp().
		Str("service", service).
		Logger().
		Level(parseLevel(cfg.Level))
}

func parseLevel(value string) zerolog.Level {
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(value)))
	if err != nil || lvl == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return lvl
}
