// Vibecatalog - Media Catalog Consolidation and Vibe Search
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vibecatalog

// Package logging provides centralized zerolog-based logging for Vibecatalog.
//
// Every component logs through the global logger configured here:
//
//	logging.Init(logging.Config{Level: "info", Format: "json"})
//	logging.Info().Int("records", n).Msg("Catalog consolidated")
//	logging.Ctx(ctx).Warn().Err(err).Msg("Reload failed")
//
// Libraries that expect other logger types are bridged onto the same
// zerolog backend: NewSlogLogger for suture's event hook and
// NewWatermillLogger for the event bus.
//
// Always terminate log chains with .Msg() or .Send(), and prefer structured
// fields over Msgf.
package logging

import (
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Config selects the level, encoding and destination of the global logger.
type Config struct {
	Level  string // trace, debug, info, warn, error or disabled
	Format string // json or console
	Caller bool
	Output io.Writer // os.Stderr when nil
}

var (
	mu     sync.RWMutex
	global = newLogger(Config{})
)

// Init replaces the global logger. An unrecognised level falls back to info
// and is reported once through the new logger.
func Init(cfg Config) {
	logger := newLogger(cfg)

	mu.Lock()
	global = logger
	mu.Unlock()

	if _, ok := parseLevel(cfg.Level); !ok && cfg.Level != "" {
		logger.Warn().Str("configured_level", cfg.Level).Msg("Unknown log level, using info")
	}
}

func newLogger(cfg Config) zerolog.Logger {
	out := cfg.Output
	if out == nil {
		out = os.Stderr
	}
	if strings.EqualFold(cfg.Format, "console") {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: "15:04:05"}
	}

	level, _ := parseLevel(cfg.Level)
	zerolog.TimeFieldFormat = time.RFC3339

	ctx := zerolog.New(out).Level(level).With().Timestamp().Str("service", "vibecatalog")
	if cfg.Caller {
		ctx = ctx.Caller()
	}
	return ctx.Logger()
}

// parseLevel maps a configured level name; ok is false for unknown names.
func parseLevel(name string) (zerolog.Level, bool) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "info":
		return zerolog.InfoLevel, true
	case "trace":
		return zerolog.TraceLevel, true
	case "debug":
		return zerolog.DebugLevel, true
	case "warn", "warning":
		return zerolog.WarnLevel, true
	case "error":
		return zerolog.ErrorLevel, true
	case "disabled", "off":
		return zerolog.Disabled, true
	default:
		return zerolog.InfoLevel, false
	}
}

// Logger returns the global logger. Components derive their own child
// loggers from it.
func Logger() zerolog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return global
}

func componentLogger(name string) zerolog.Logger {
	l := Logger()
	return l.With().Str("component", name).Logger()
}

// Info starts an info event on the global logger.
func Info() *zerolog.Event {
	l := Logger()
	return l.Info()
}

// Warn starts a warning event on the global logger.
func Warn() *zerolog.Event {
	l := Logger()
	return l.Warn()
}

// Error starts an error event on the global logger.
func Error() *zerolog.Event {
	l := Logger()
	return l.Error()
}

// Fatal starts a fatal event; the process exits after it is written.
func Fatal() *zerolog.Event {
	l := Logger()
	return l.Fatal()
}
