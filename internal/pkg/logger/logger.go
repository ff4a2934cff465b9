package logger

import (
	"os"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Setup installs the global zerolog logger.
// Dev mode writes human readable console lines, prod writes JSON.
func Setup(mode string) zerolog.Logger {
	level := zerolog.InfoLevel
	var l zerolog.Logger

	if mode == "prod" {
		l = zerolog.New(os.Stdout).With().Timestamp().Logger()
	} else {
		level = zerolog.DebugLevel
		l = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}).
			With().Timestamp().Logger()
	}

	zerolog.SetGlobalLevel(level)
	log.Logger = l
	return l
}

// CronLogger routes robfig/cron scheduler events through the global zerolog logger
type CronLogger struct{}

// Cron returns the scheduler logger used by cron.Recover and cron.SkipIfStillRunning
func Cron() cron.Logger {
	return CronLogger{}
}

// Info logs scheduler events at debug level
func (CronLogger) Info(msg string, keysAndValues ...interface{}) {
	log.Debug().Str("component", "cron").Fields(keysAndValues).Msg(msg)
}

func (CronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	log.Error().Err(err).Str("component", "cron").Fields(keysAndValues).Msg("❌ " + msg)
}
