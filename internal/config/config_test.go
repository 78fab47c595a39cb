package config

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/dshills/strata/internal/engine"
	"github.com/dshills/strata/internal/layer"
)

func noEnv(string) (string, bool) { return "", false }

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}

func TestDefaultValidates(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Default().Validate() = %v", err)
	}
	if cfg.History.MaxSignificant != 30 {
		t.Errorf("MaxSignificant = %d, want 30", cfg.History.MaxSignificant)
	}
	if cfg.Document.OpacityStep != 0.08 {
		t.Errorf("OpacityStep = %g, want 0.08", cfg.Document.OpacityStep)
	}
	if cfg.Animation.Frames != 24 {
		t.Errorf("Frames = %d, want 24", cfg.Animation.Frames)
	}
}

func TestLoadMissingFile(t *testing.T) {
	cfg, err := LoadWithEnv(filepath.Join(t.TempDir(), "missing.toml"), noEnv)
	if err != nil {
		t.Fatalf("LoadWithEnv: %v", err)
	}
	if cfg.History.MaxSignificant != DefaultMaxSignificant {
		t.Errorf("MaxSignificant = %d, want default", cfg.History.MaxSignificant)
	}
}

func TestLoadEmptyPath(t *testing.T) {
	cfg, err := LoadWithEnv("", noEnv)
	if err != nil {
		t.Fatalf("LoadWithEnv: %v", err)
	}
	if cfg.Script.Timeout.Std() != DefaultScriptTimeout {
		t.Errorf("Timeout = %s, want %s", cfg.Script.Timeout, DefaultScriptTimeout)
	}
}

func TestLoadTOML(t *testing.T) {
	path := writeFile(t, "strata.toml", `
[history]
max_significant = 50

[logging]
level = "debug"
format = "json"

[document]
background = "#ff0000"

[animation]
enabled = true
frames = 12

[animation.opacities]
next_prev = 0.6

[script]
timeout = "250ms"
`)
	cfg, err := LoadWithEnv(path, noEnv)
	if err != nil {
		t.Fatalf("LoadWithEnv: %v", err)
	}
	if cfg.History.MaxSignificant != 50 {
		t.Errorf("MaxSignificant = %d, want 50", cfg.History.MaxSignificant)
	}
	if cfg.Logging.Level != "debug" || cfg.Logging.Format != "json" {
		t.Errorf("Logging = %+v", cfg.Logging)
	}
	if !cfg.Animation.Enabled || cfg.Animation.Frames != 12 {
		t.Errorf("Animation = %+v", cfg.Animation)
	}
	if cfg.Animation.Opacities.NextPrev != 0.6 {
		t.Errorf("NextPrev = %g, want 0.6", cfg.Animation.Opacities.NextPrev)
	}
	if cfg.Animation.Opacities.Key != 0.4 {
		t.Errorf("Key = %g, want default 0.4", cfg.Animation.Opacities.Key)
	}
	if cfg.Script.Timeout.Std() != 250*time.Millisecond {
		t.Errorf("Timeout = %s, want 250ms", cfg.Script.Timeout)
	}
	if cfg.Document.OpacityStep != 0.08 {
		t.Errorf("OpacityStep = %g, want default", cfg.Document.OpacityStep)
	}
}

func TestLoadYAML(t *testing.T) {
	path := writeFile(t, "strata.yaml", `
history:
  max_significant: 5
document:
  opacity_step: 0.25
watch:
  debounce: 1s
`)
	cfg, err := LoadWithEnv(path, noEnv)
	if err != nil {
		t.Fatalf("LoadWithEnv: %v", err)
	}
	if cfg.History.MaxSignificant != 5 {
		t.Errorf("MaxSignificant = %d, want 5", cfg.History.MaxSignificant)
	}
	if cfg.Document.OpacityStep != 0.25 {
		t.Errorf("OpacityStep = %g, want 0.25", cfg.Document.OpacityStep)
	}
	if cfg.Watch.Debounce.Std() != time.Second {
		t.Errorf("Debounce = %s, want 1s", cfg.Watch.Debounce)
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("Level = %q, want default", cfg.Logging.Level)
	}
}

func TestLoadEmptyYAML(t *testing.T) {
	path := writeFile(t, "strata.yml", "")
	if _, err := LoadWithEnv(path, noEnv); err != nil {
		t.Fatalf("LoadWithEnv: %v", err)
	}
}

func TestLoadParseErrors(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
	}{
		{"toml syntax", "a.toml", "[history\nmax_significant = 3\n"},
		{"toml unknown key", "b.toml", "[history]\nmax_sig = 3\n"},
		{"toml wrong type", "c.toml", "[history]\nmax_significant = \"many\"\n"},
		{"yaml unknown key", "d.yaml", "history:\n  max_sig: 3\n"},
		{"yaml bad duration", "e.yaml", "script:\n  timeout: soon\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, tt.file, tt.content)
			_, err := LoadWithEnv(path, noEnv)
			var pe *ParseError
			if !errors.As(err, &pe) {
				t.Fatalf("err = %v, want *ParseError", err)
			}
			if pe.Path != path {
				t.Errorf("Path = %q, want %q", pe.Path, path)
			}
		})
	}
}

func TestUnknownTOMLKeyNamed(t *testing.T) {
	_, err := Parse([]byte("[history]\nmax_sig = 3\n"), FormatTOML)
	if err == nil || !strings.Contains(err.Error(), "history.max_sig") {
		t.Fatalf("err = %v, want mention of history.max_sig", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		field  string
		mutate func(*Config)
	}{
		{"history.max_significant", func(c *Config) { c.History.MaxSignificant = 0 }},
		{"logging.level", func(c *Config) { c.Logging.Level = "loud" }},
		{"logging.format", func(c *Config) { c.Logging.Format = "xml" }},
		{"document.background", func(c *Config) { c.Document.Background = "red" }},
		{"document.opacity_step", func(c *Config) { c.Document.OpacityStep = 0 }},
		{"document.opacity_step", func(c *Config) { c.Document.OpacityStep = 1.5 }},
		{"document.pick_alpha_threshold", func(c *Config) { c.Document.PickAlphaThreshold = 1 }},
		{"animation.frames", func(c *Config) { c.Animation.Frames = 0 }},
		{"animation.opacities.key", func(c *Config) { c.Animation.Opacities.Key = -0.1 }},
		{"script.timeout", func(c *Config) { c.Script.Timeout = Duration(-time.Second) }},
		{"watch.debounce", func(c *Config) { c.Watch.Debounce = Duration(-time.Second) }},
	}
	for _, tt := range tests {
		t.Run(tt.field, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if !errors.Is(err, ErrValidationFailed) {
				t.Fatalf("err = %v, want ErrValidationFailed", err)
			}
			var fe *FieldError
			if !errors.As(err, &fe) || fe.Field != tt.field {
				t.Errorf("field error = %v, want field %s", err, tt.field)
			}
		})
	}
}

func TestValidateReportsAll(t *testing.T) {
	cfg := Default()
	cfg.History.MaxSignificant = 0
	cfg.Animation.Frames = 0
	err := cfg.Validate()
	for _, field := range []string{"history.max_significant", "animation.frames"} {
		if !strings.Contains(err.Error(), field) {
			t.Errorf("error %q does not mention %s", err, field)
		}
	}
}

func TestEngineOptions(t *testing.T) {
	cfg := Default()
	cfg.History.MaxSignificant = 7
	cfg.Document.OpacityStep = 0.2
	cfg.Document.Background = "#000000"
	cfg.Animation.Enabled = true

	e := engine.New(cfg.EngineOptions(nil)...)
	if got := e.Stack().MaxSignificant(); got != 7 {
		t.Errorf("MaxSignificant = %d, want 7", got)
	}
	if got := e.OpacityStep(); got != 0.2 {
		t.Errorf("OpacityStep = %g, want 0.2", got)
	}
	if got := e.Document().Background(); got != layer.RGB(0, 0, 0) {
		t.Errorf("Background = %+v, want black", got)
	}
	if e.Timeline() == nil {
		t.Error("Timeline() = nil with animation enabled")
	}
}

func TestEngineOptionsWithoutAnimation(t *testing.T) {
	e := engine.New(Default().EngineOptions(nil)...)
	if e.Timeline() != nil {
		t.Error("Timeline() != nil with animation disabled")
	}
	if got := e.Document().Background(); got != layer.RGB(1, 1, 1) {
		t.Errorf("Background = %+v, want white default", got)
	}
}

func TestEncodeTOML(t *testing.T) {
	cfg := Default()
	cfg.History.MaxSignificant = 12
	cfg.Script.Timeout = Duration(2 * time.Second)

	var buf bytes.Buffer
	if err := Encode(&buf, cfg, FormatTOML); err != nil {
		t.Fatalf("Encode: %v", err)
	}
	got, err := Parse(buf.Bytes(), FormatTOML)
	if err != nil {
		t.Fatalf("Parse encoded config: %v\n%s", err, buf.String())
	}
	if got.History.MaxSignificant != 12 || got.Script.Timeout.Std() != 2*time.Second {
		t.Errorf("decoded = %+v", got)
	}
}

func TestFormatFor(t *testing.T) {
	tests := map[string]Format{
		"strata.toml": FormatTOML,
		"strata.yaml": FormatYAML,
		"strata.YML":  FormatYAML,
		"strata":      FormatTOML,
	}
	for path, want := range tests {
		if got := FormatFor(path); got != want {
			t.Errorf("FormatFor(%q) = %d, want %d", path, got, want)
		}
	}
}
