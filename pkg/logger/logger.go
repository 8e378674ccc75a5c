package logx

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type Config struct {
	Debug        bool `split_words:"true" default:"false"`
	PrettyFormat bool `split_words:"true" default:"false"`
}

var DefaultConfig = &Config{
	Debug:        false,
	PrettyFormat: false,
}

func safe(opts ...Config) *Config {
	if len(opts) == 0 {
		return DefaultConfig
	}
	return &opts[0]
}

// New builds a logger writing to w with the level and format from conf.
func New(w io.Writer, conf Config) zerolog.Logger {
	if w == nil {
		w = os.Stdout
	}
	if conf.PrettyFormat {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}

	level := zerolog.InfoLevel
	if conf.Debug {
		level = zerolog.DebugLevel
	}

	return zerolog.New(w).
		Level(level).
		With().
		Timestamp().
		Str("service", "hcp-interaction-logger").
		Caller().
		Logger()
}

// Init replaces the global logger.
func Init(opts ...Config) {
	conf := safe(opts...)
	zerolog.TimeFieldFormat = time.RFC3339Nano
	log.Logger = New(os.Stdout, *conf)
}
