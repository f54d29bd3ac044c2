package logger

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
)

var log = zerolog.New(zerolog.NewConsoleWriter()).With().Timestamp().Logger()

// Init switches between a console logger for development and JSON output
// at info level for production.
func Init(environment string) {
	if environment == "production" {
		log = zerolog.New(os.Stdout).With().Timestamp().Logger().Level(zerolog.InfoLevel)
		return
	}
	log = zerolog.New(zerolog.NewConsoleWriter()).
		With().Timestamp().CallerWithSkipFrameCount(3).Logger().
		Level(zerolog.DebugLevel)
}

func Info(format string, v ...interface{}) {
	log.Info().Msgf(format, v...)
}

func Error(format string, v ...interface{}) {
	log.Error().Msgf(format, v...)
}

func Debug(format string, v ...interface{}) {
	log.Debug().Msgf(format, v...)
}

func Warn(format string, v ...interface{}) {
	log.Warn().Msgf(format, v...)
}

func Fatal(format string, v ...interface{}) {
	log.Fatal().Msgf(format, v...)
}

// LogJobError records a background job failure without aborting the job.
func LogJobError(job, docID string, err error) {
	log.Warn().Str("job", job).Str("doc", docID).Err(err).Msg(fmt.Sprintf("%s failed", job))
}
