package logger

import (
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Init configures the global zerolog logger. Outside of production the output is meant for
// humans, in production every line is a JSON object.
func Init(env string) {
	InitWithWriter(env, os.Stderr)
}

// InitWithWriter is like Init but writes to w.
func InitWithWriter(env string, w io.Writer) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	if env == "production" {
		log.Logger = zerolog.New(w).With().Timestamp().Logger()
	} else {
		log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: w}).With().Timestamp().Logger()
	}
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
}
