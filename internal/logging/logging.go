// Package logging builds the zerolog logger used across the run.
package logging

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/ppiankov/mentions/internal/model"
	"github.com/rs/zerolog"
)

// New creates a logger writing to w. Format "json" writes raw events,
// anything else a human readable console line.
func New(cfg model.LogConfig, w io.Writer) (zerolog.Logger, error) {
	level := zerolog.InfoLevel
	if cfg.Level != "" {
		l, err := zerolog.ParseLevel(strings.ToLower(cfg.Level))
		if err != nil {
			return zerolog.Nop(), fmt.Errorf("parse log level: %w", err)
		}
		level = l
	}

	out := w
	switch cfg.Format {
	case "json":
	case "console", "":
		out = zerolog.ConsoleWriter{Out: w, TimeFormat: time.TimeOnly, NoColor: true}
	default:
		return zerolog.Nop(), fmt.Errorf("unknown log format: %s", cfg.Format)
	}

	return zerolog.New(out).Level(level).With().Timestamp().Logger(), nil
}
