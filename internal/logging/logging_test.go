package logging

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    slog.Level
		wantErr bool
	}{
		{"debug", slog.LevelDebug, false},
		{"INFO", slog.LevelInfo, false},
		{"", slog.LevelInfo, false},
		{"warning", slog.LevelWarn, false},
		{"err", slog.LevelError, false},
		{"loud", slog.LevelInfo, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLevel(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseLevel(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	l, err := NewWriter(&buf, Config{Level: "warn"})
	if err != nil {
		t.Fatal(err)
	}
	l.Info("hidden")
	l.Warn("shown")
	if strings.Contains(buf.String(), "hidden") || !strings.Contains(buf.String(), "shown") {
		t.Fatalf("unexpected output: %q", buf.String())
	}

	if err := l.SetLevel("debug"); err != nil {
		t.Fatal(err)
	}
	l.Debug("now visible")
	if !strings.Contains(buf.String(), "now visible") {
		t.Errorf("debug record missing after SetLevel: %q", buf.String())
	}
	if l.Level() != slog.LevelDebug {
		t.Errorf("Level() = %v", l.Level())
	}
}

func TestDisabledComponents(t *testing.T) {
	var buf bytes.Buffer
	l, err := NewWriter(&buf, Config{Level: "debug", Format: FormatJSON, DisabledComponents: []string{"History"}})
	if err != nil {
		t.Fatal(err)
	}
	l.With(ComponentKey, "history").Info("trimmed")
	l.With(ComponentKey, "engine").Info("merged")
	out := buf.String()
	if strings.Contains(out, "trimmed") {
		t.Errorf("disabled component logged: %q", out)
	}
	if !strings.Contains(out, `"merged"`) {
		t.Errorf("enabled component missing: %q", out)
	}
}

func TestNewWithFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "strata.log")
	l, err := New(Config{Level: "info", File: path})
	if err != nil {
		t.Fatal(err)
	}
	l.Info("to file")
	if err := l.Close(); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "to file") {
		t.Errorf("log file content = %q", data)
	}
}

func TestUnknownFormat(t *testing.T) {
	if _, err := NewWriter(&bytes.Buffer{}, Config{Format: "xml"}); err == nil {
		t.Error("expected error for unknown format")
	}
}
