// Package logging builds the structured loggers used across strata.
//
// Components receive a *slog.Logger through their options and tag it
// with a "component" attribute. Whole components can be silenced by name
// without touching their call sites.
package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

// ComponentKey is the attribute key that names the emitting component.
const ComponentKey = "component"

// Format selects the handler encoding.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
)

// Config holds logger settings.
type Config struct {
	// Level is the minimum level to log: debug, info, warn or error.
	Level string

	// Format is "text" (default) or "json".
	Format Format

	// File is the output log file. Empty or "-" means stderr.
	File string

	// DisabledComponents drops records from these components.
	DisabledComponents []string
}

// Logger is a configured logger together with the resources it holds.
type Logger struct {
	*slog.Logger
	level  *slog.LevelVar
	closer io.Closer
}

// ParseLevel converts a level name to a slog.Level.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error", "err":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level %q", s)
	}
}

// New builds a logger from cfg.
func New(cfg Config) (*Logger, error) {
	lvl, err := ParseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}
	var out io.Writer = os.Stderr
	var closer io.Closer
	if cfg.File != "" && cfg.File != "-" {
		f, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, fmt.Errorf("open log file: %w", err)
		}
		out, closer = f, f
	}
	l, lv, err := build(out, cfg, lvl)
	if err != nil {
		if closer != nil {
			closer.Close()
		}
		return nil, err
	}
	return &Logger{Logger: l, level: lv, closer: closer}, nil
}

// NewWriter builds a logger writing to w. It is mostly useful in tests.
func NewWriter(w io.Writer, cfg Config) (*Logger, error) {
	lvl, err := ParseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}
	l, lv, err := build(w, cfg, lvl)
	if err != nil {
		return nil, err
	}
	return &Logger{Logger: l, level: lv}, nil
}

func build(w io.Writer, cfg Config, lvl slog.Level) (*slog.Logger, *slog.LevelVar, error) {
	lv := new(slog.LevelVar)
	lv.Set(lvl)
	opts := &slog.HandlerOptions{Level: lv}
	var h slog.Handler
	switch cfg.Format {
	case "", FormatText:
		h = slog.NewTextHandler(w, opts)
	case FormatJSON:
		h = slog.NewJSONHandler(w, opts)
	default:
		return nil, nil, fmt.Errorf("unknown log format %q", cfg.Format)
	}
	if len(cfg.DisabledComponents) > 0 {
		disabled := make(map[string]struct{}, len(cfg.DisabledComponents))
		for _, c := range cfg.DisabledComponents {
			disabled[strings.ToLower(c)] = struct{}{}
		}
		h = &componentFilter{base: h, disabled: disabled}
	}
	return slog.New(h), lv, nil
}

// SetLevel changes the minimum level of a running logger.
func (l *Logger) SetLevel(level string) error {
	lvl, err := ParseLevel(level)
	if err != nil {
		return err
	}
	l.level.Set(lvl)
	return nil
}

// Level returns the current minimum level.
func (l *Logger) Level() slog.Level { return l.level.Level() }

// Close releases the log file, if any.
func (l *Logger) Close() error {
	if l.closer == nil {
		return nil
	}
	return l.closer.Close()
}

// Discard returns a logger that drops every record.
func Discard() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// componentFilter drops records whose component attribute is disabled.
type componentFilter struct {
	base      slog.Handler
	disabled  map[string]struct{}
	component string
}

func (h *componentFilter) Enabled(ctx context.Context, level slog.Level) bool {
	if _, off := h.disabled[h.component]; off && h.component != "" {
		return false
	}
	return h.base.Enabled(ctx, level)
}

func (h *componentFilter) Handle(ctx context.Context, r slog.Record) error {
	if _, off := h.disabled[h.component]; off && h.component != "" {
		return nil
	}
	return h.base.Handle(ctx, r)
}

func (h *componentFilter) WithAttrs(attrs []slog.Attr) slog.Handler {
	comp := h.component
	for _, a := range attrs {
		if a.Key == ComponentKey {
			comp = strings.ToLower(a.Value.String())
		}
	}
	return &componentFilter{base: h.base.WithAttrs(attrs), disabled: h.disabled, component: comp}
}

func (h *componentFilter) WithGroup(name string) slog.Handler {
	return &componentFilter{base: h.base.WithGroup(name), disabled: h.disabled, component: h.component}
}
