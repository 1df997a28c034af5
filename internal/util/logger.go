package util

import (
	"fmt"
	"os"
	"time"

	"github.com/mxcd/go-config/config"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func InitLogger() error {
	return SetupLogger(config.Get().String("LOG_LEVEL"), config.Get().Bool("DEV"))
}

// SetupLogger sets the global zerolog level and, in dev mode, switches to
// human readable console output.
func SetupLogger(level string, devMode bool) error {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("invalid LOG_LEVEL %q: %w", level, err)
	}
	zerolog.SetGlobalLevel(lvl)
	zerolog.TimeFieldFormat = time.RFC3339

	if devMode {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly})
	}
	return nil
}
