package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/dshills/strata/internal/engine"
	"github.com/dshills/strata/internal/layer"
	"github.com/dshills/strata/internal/logging"
	"github.com/dshills/strata/internal/timeline"
)

// Default values.
const (
	DefaultMaxSignificant = 30
	DefaultScriptTimeout  = 5 * time.Second
	DefaultDebounce       = 100 * time.Millisecond
)

// Config is the full settings tree.
type Config struct {
	History   HistoryConfig   `toml:"history" yaml:"history"`
	Logging   LoggingConfig   `toml:"logging" yaml:"logging"`
	Document  DocumentConfig  `toml:"document" yaml:"document"`
	Animation AnimationConfig `toml:"animation" yaml:"animation"`
	Script    ScriptConfig    `toml:"script" yaml:"script"`
	Watch     WatchConfig     `toml:"watch" yaml:"watch"`
}

// HistoryConfig configures the undo stack.
type HistoryConfig struct {
	// MaxSignificant is the number of non-automatic commands kept.
	MaxSignificant int `toml:"max_significant" yaml:"max_significant"`
}

// LoggingConfig configures the process logger.
type LoggingConfig struct {
	Level    string   `toml:"level" yaml:"level"`
	Format   string   `toml:"format" yaml:"format"`
	File     string   `toml:"file" yaml:"file"`
	Disabled []string `toml:"disabled_components" yaml:"disabled_components"`
}

// DocumentConfig configures a new document.
type DocumentConfig struct {
	// Background is "#rrggbb" or "#rrggbbaa". Empty keeps the white default.
	Background         string  `toml:"background" yaml:"background"`
	OpacityStep        float64 `toml:"opacity_step" yaml:"opacity_step"`
	PickAlphaThreshold float64 `toml:"pick_alpha_threshold" yaml:"pick_alpha_threshold"`
}

// AnimationConfig configures the timeline.
type AnimationConfig struct {
	Enabled   bool            `toml:"enabled" yaml:"enabled"`
	Frames    int             `toml:"frames" yaml:"frames"`
	Opacities OpacitiesConfig `toml:"opacities" yaml:"opacities"`
}

// OpacitiesConfig is the onion-skin table.
type OpacitiesConfig struct {
	Current   float64 `toml:"current" yaml:"current"`
	NextPrev  float64 `toml:"next_prev" yaml:"next_prev"`
	Key       float64 `toml:"key" yaml:"key"`
	Inbetween float64 `toml:"inbetween" yaml:"inbetween"`
	Other     float64 `toml:"other" yaml:"other"`
}

// ScriptConfig configures the Lua runner.
type ScriptConfig struct {
	// Timeout bounds a single script run. Zero disables the limit.
	Timeout Duration `toml:"timeout" yaml:"timeout"`
}

// WatchConfig configures file watching.
type WatchConfig struct {
	Debounce Duration `toml:"debounce" yaml:"debounce"`
}

// Duration is a time.Duration written as a string such as "250ms".
type Duration time.Duration

// Std returns d as a time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// String returns the duration in time.Duration notation.
func (d Duration) String() string { return time.Duration(d).String() }

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(strings.TrimSpace(string(text)))
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

// Default returns the built-in settings.
func Default() *Config {
	o := timeline.DefaultOpacities()
	return &Config{
		History: HistoryConfig{MaxSignificant: DefaultMaxSignificant},
		Logging: LoggingConfig{Level: "info", Format: string(logging.FormatText)},
		Document: DocumentConfig{
			OpacityStep:        engine.DefaultOpacityStep,
			PickAlphaThreshold: engine.DefaultPickAlphaThreshold,
		},
		Animation: AnimationConfig{
			Frames: timeline.DefaultFrames,
			Opacities: OpacitiesConfig{
				Current:   o.Current,
				NextPrev:  o.NextPrev,
				Key:       o.Key,
				Inbetween: o.Inbetween,
				Other:     o.Other,
			},
		},
		Script: ScriptConfig{Timeout: Duration(DefaultScriptTimeout)},
		Watch:  WatchConfig{Debounce: Duration(DefaultDebounce)},
	}
}

// Validate reports every out of range setting. The returned error wraps
// ErrValidationFailed.
func (c *Config) Validate() error {
	var errs []error
	bad := func(field, format string, args ...any) {
		errs = append(errs, &FieldError{Field: field, Message: fmt.Sprintf(format, args...)})
	}

	if c.History.MaxSignificant < 1 {
		bad("history.max_significant", "must be at least 1, got %d", c.History.MaxSignificant)
	}
	if _, err := logging.ParseLevel(c.Logging.Level); err != nil {
		bad("logging.level", "%v", err)
	}
	switch logging.Format(c.Logging.Format) {
	case "", logging.FormatText, logging.FormatJSON:
	default:
		bad("logging.format", "must be text or json, got %q", c.Logging.Format)
	}
	if _, err := layer.ParseColor(c.Document.Background); err != nil {
		bad("document.background", "%v", err)
	}
	if c.Document.OpacityStep <= 0 || c.Document.OpacityStep > 1 {
		bad("document.opacity_step", "must be in (0, 1], got %g", c.Document.OpacityStep)
	}
	if c.Document.PickAlphaThreshold < 0 || c.Document.PickAlphaThreshold >= 1 {
		bad("document.pick_alpha_threshold", "must be in [0, 1), got %g", c.Document.PickAlphaThreshold)
	}
	if c.Animation.Frames < 1 {
		bad("animation.frames", "must be at least 1, got %d", c.Animation.Frames)
	}
	o := c.Animation.Opacities
	for _, v := range []struct {
		name string
		val  float64
	}{
		{"current", o.Current},
		{"next_prev", o.NextPrev},
		{"key", o.Key},
		{"inbetween", o.Inbetween},
		{"other", o.Other},
	} {
		if v.val < 0 || v.val > 1 {
			bad("animation.opacities."+v.name, "must be in [0, 1], got %g", v.val)
		}
	}
	if c.Script.Timeout < 0 {
		bad("script.timeout", "must not be negative, got %s", c.Script.Timeout)
	}
	if c.Watch.Debounce < 0 {
		bad("watch.debounce", "must not be negative, got %s", c.Watch.Debounce)
	}
	return errors.Join(errs...)
}

// LoggerConfig converts the logging section for logging.New.
func (c *Config) LoggerConfig() logging.Config {
	return logging.Config{
		Level:              c.Logging.Level,
		Format:             logging.Format(c.Logging.Format),
		File:               c.Logging.File,
		DisabledComponents: c.Logging.Disabled,
	}
}

// TimelineOptions converts the animation section.
func (c *Config) TimelineOptions() []timeline.Option {
	o := c.Animation.Opacities
	return []timeline.Option{
		timeline.WithFrames(c.Animation.Frames),
		timeline.WithOpacities(timeline.Opacities{
			Current:   o.Current,
			NextPrev:  o.NextPrev,
			Key:       o.Key,
			Inbetween: o.Inbetween,
			Other:     o.Other,
		}),
	}
}

// EngineOptions converts the settings into engine options. The config is
// expected to have passed Validate; an unparsable background is skipped.
func (c *Config) EngineOptions(log *slog.Logger) []engine.Option {
	opts := []engine.Option{
		engine.WithMaxSignificant(c.History.MaxSignificant),
		engine.WithOpacityStep(c.Document.OpacityStep),
		engine.WithPickThreshold(c.Document.PickAlphaThreshold),
	}
	if p, err := layer.ParseColor(c.Document.Background); err == nil && !p.IsTransparent() {
		opts = append(opts, engine.WithBackground(p))
	}
	if c.Animation.Enabled {
		opts = append(opts, engine.WithAnimation(c.TimelineOptions()...))
	}
	if log != nil {
		opts = append(opts, engine.WithLogger(log))
	}
	return opts
}
