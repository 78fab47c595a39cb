// Package config loads strata settings.
//
// Settings come from three sources, each overriding the one before it:
//
//	┌──────────────────────────────┐
//	│  3. Environment (STRATA_*)   │  ← Highest priority
//	├──────────────────────────────┤
//	│  2. Config file (TOML/YAML)  │  ← strata.toml, strata.yaml
//	├──────────────────────────────┤
//	│  1. Built-in defaults        │  ← Lowest priority
//	└──────────────────────────────┘
//
// Command line flags are applied by the caller on top of the result.
//
// # Basic Usage
//
//	cfg, err := config.Load("strata.toml")
//	if err != nil {
//	    return err
//	}
//	eng := engine.New(cfg.EngineOptions()...)
//
// A missing file is not an error: Load returns the defaults with the
// environment applied. The file format is chosen by extension; ".yaml"
// and ".yml" select YAML, anything else is read as TOML.
//
// # Example TOML
//
//	[history]
//	max_significant = 50
//
//	[logging]
//	level = "debug"
//	format = "json"
//
//	[document]
//	background = "#ffffff"
//	opacity_step = 0.1
//
//	[animation]
//	enabled = true
//	frames = 12
//
//	[animation.opacities]
//	next_prev = 0.6
//
// # Live Reload
//
// The watcher subpackage reports changes to the config file so a running
// process can re-read it.
package config
