// Package logging builds the zerolog logger shared by commands, the pipeline and the server.
package logging

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/muesli/termenv"
	"github.com/rs/zerolog"

	"github.com/theirongolddev/ipcsim/internal/config"
)

// New returns a logger writing to w at the configured level. Format "json"
// emits one JSON object per line; anything else is human-readable console output.
func New(cfg config.LoggingConfig, w io.Writer) (zerolog.Logger, error) {
	level, err := ParseLevel(cfg.Level)
	if err != nil {
		return zerolog.Nop(), err
	}

	out := w
	if cfg.Format != "json" {
		out = zerolog.ConsoleWriter{Out: w, TimeFormat: time.Kitchen, NoColor: termenv.NewOutput(w).EnvColorProfile() == termenv.Ascii}
	}
	return zerolog.New(out).Level(level).With().Timestamp().Logger(), nil
}

// ParseLevel maps a config level name to a zerolog level. Empty means warn.
func ParseLevel(s string) (zerolog.Level, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	switch name {
	case "":
		return zerolog.WarnLevel, nil
	case "disabled", "off":
		return zerolog.Disabled, nil
	}
	level, err := zerolog.ParseLevel(name)
	if err != nil {
		return zerolog.NoLevel, fmt.Errorf("unknown log level %q", s)
	}
	return level, nil
}
