package config

import (
	"errors"
	"fmt"
	"slices"
	"sort"
	"strconv"
	"strings"
	"time"
)

// EnvPrefix starts every environment setting.
const EnvPrefix = "STRATA_"

type envSetter func(c *Config, v string) error

// envMapping maps environment variables to the setting they override.
var envMapping = map[string]envSetter{
	"STRATA_HISTORY_MAX_SIGNIFICANT": intSetter(func(c *Config) *int { return &c.History.MaxSignificant }),

	"STRATA_LOG_LEVEL":  stringSetter(func(c *Config) *string { return &c.Logging.Level }),
	"STRATA_LOG_FORMAT": stringSetter(func(c *Config) *string { return &c.Logging.Format }),
	"STRATA_LOG_FILE":   stringSetter(func(c *Config) *string { return &c.Logging.File }),

	"STRATA_LOG_DISABLED_COMPONENTS": func(c *Config, v string) error {
		c.Logging.Disabled = splitList(v)
		return nil
	},

	"STRATA_DOCUMENT_BACKGROUND":           stringSetter(func(c *Config) *string { return &c.Document.Background }),
	"STRATA_DOCUMENT_OPACITY_STEP":         floatSetter(func(c *Config) *float64 { return &c.Document.OpacityStep }),
	"STRATA_DOCUMENT_PICK_ALPHA_THRESHOLD": floatSetter(func(c *Config) *float64 { return &c.Document.PickAlphaThreshold }),

	"STRATA_ANIMATION_ENABLED": boolSetter(func(c *Config) *bool { return &c.Animation.Enabled }),
	"STRATA_ANIMATION_FRAMES":  intSetter(func(c *Config) *int { return &c.Animation.Frames }),

	"STRATA_SCRIPT_TIMEOUT": durationSetter(func(c *Config) *Duration { return &c.Script.Timeout }),
	"STRATA_WATCH_DEBOUNCE": durationSetter(func(c *Config) *Duration { return &c.Watch.Debounce }),
}

// EnvNames returns the recognized environment variables, sorted.
func EnvNames() []string {
	names := make([]string, 0, len(envMapping))
	for name := range envMapping {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ApplyEnv overrides settings from environment variables. An empty value
// is a valid value, not an unset variable.
func ApplyEnv(c *Config, lookup func(string) (string, bool)) error {
	if lookup == nil {
		return nil
	}
	var errs []error
	for _, name := range EnvNames() {
		v, ok := lookup(name)
		if !ok {
			continue
		}
		if err := envMapping[name](c, v); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", name, err))
		}
	}
	return errors.Join(errs...)
}

// CheckEnv reports STRATA_ variables in environ that map to no setting.
// Reserved names used by the command line, such as STRATA_CONFIG, are
// passed in allow.
func CheckEnv(environ []string, allow ...string) error {
	var unknown []string
	for _, kv := range environ {
		name, _, ok := strings.Cut(kv, "=")
		if !ok || !strings.HasPrefix(name, EnvPrefix) {
			continue
		}
		if _, known := envMapping[name]; known || slices.Contains(allow, name) {
			continue
		}
		unknown = append(unknown, name)
	}
	if len(unknown) == 0 {
		return nil
	}
	sort.Strings(unknown)
	return fmt.Errorf("%w: %s", ErrUnknownEnv, strings.Join(unknown, ", "))
}

func stringSetter(field func(*Config) *string) envSetter {
	return func(c *Config, v string) error {
		*field(c) = v
		return nil
	}
}

func intSetter(field func(*Config) *int) envSetter {
	return func(c *Config, v string) error {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("invalid integer %q", v)
		}
		*field(c) = n
		return nil
	}
}

func floatSetter(field func(*Config) *float64) envSetter {
	return func(c *Config, v string) error {
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return fmt.Errorf("invalid number %q", v)
		}
		*field(c) = f
		return nil
	}
}

func boolSetter(field func(*Config) *bool) envSetter {
	return func(c *Config, v string) error {
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("invalid boolean %q", v)
		}
		*field(c) = b
		return nil
	}
}

func durationSetter(field func(*Config) *Duration) envSetter {
	return func(c *Config, v string) error {
		d, err := time.ParseDuration(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("invalid duration %q", v)
		}
		*field(c) = Duration(d)
		return nil
	}
}

func splitList(v string) []string {
	var out []string
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
