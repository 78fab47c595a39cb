package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Format is a config file encoding.
type Format int

const (
	FormatTOML Format = iota
	FormatYAML
)

// FormatFor picks the encoding from the file extension.
func FormatFor(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatTOML
	}
}

// Load reads the config file at path over the defaults, applies STRATA_
// environment variables and validates the result. An empty path or a
// missing file yields the defaults.
func Load(path string) (*Config, error) {
	return LoadWithEnv(path, os.LookupEnv)
}

// LoadWithEnv is Load with an explicit environment lookup.
func LoadWithEnv(path string, lookup func(string) (string, bool)) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		default:
			if err := decode(path, data, FormatFor(path), cfg); err != nil {
				return nil, err
			}
		}
	}
	if err := ApplyEnv(cfg, lookup); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Parse decodes data over the defaults without consulting the
// environment.
func Parse(data []byte, format Format) (*Config, error) {
	cfg := Default()
	if err := decode("<input>", data, format, cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func decode(source string, data []byte, format Format, cfg *Config) error {
	if format == FormatYAML {
		return decodeYAML(source, data, cfg)
	}
	return decodeTOML(source, data, cfg)
}

func decodeTOML(source string, data []byte, cfg *Config) error {
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	err := dec.Decode(cfg)
	if err == nil {
		return nil
	}
	pe := &ParseError{Path: source, Message: err.Error(), Err: err}
	var derr *toml.DecodeError
	if errors.As(err, &derr) {
		pe.Line, pe.Column = derr.Position()
	}
	var serr *toml.StrictMissingError
	if errors.As(err, &serr) {
		pe.Message = "unknown setting"
		if len(serr.Errors) > 0 {
			keys := make([]string, 0, len(serr.Errors))
			for i := range serr.Errors {
				keys = append(keys, strings.Join(serr.Errors[i].Key(), "."))
			}
			pe.Message = "unknown setting " + strings.Join(keys, ", ")
			pe.Line, pe.Column = serr.Errors[0].Position()
		}
	}
	return pe
}

var yamlLine = regexp.MustCompile(`line (\d+)`)

func decodeYAML(source string, data []byte, cfg *Config) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	err := dec.Decode(cfg)
	if err == nil || errors.Is(err, io.EOF) {
		return nil
	}
	pe := &ParseError{Path: source, Message: strings.TrimPrefix(err.Error(), "yaml: "), Err: err}
	if m := yamlLine.FindStringSubmatch(err.Error()); m != nil {
		pe.Line, _ = strconv.Atoi(m[1])
	}
	return pe
}

// Encode writes cfg in the given format.
func Encode(w io.Writer, cfg *Config, format Format) error {
	if format == FormatYAML {
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(cfg); err != nil {
			return err
		}
		return enc.Close()
	}
	return toml.NewEncoder(w).Encode(cfg)
}
