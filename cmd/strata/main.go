// Package main is the entry point for the strata command.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/dshills/strata/internal/config"
	"github.com/dshills/strata/internal/logging"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// configEnv names the configuration file when -config is not given.
const configEnv = "STRATA_CONFIG"

type options struct {
	ConfigPath string
	LogLevel   string
	LogFile    string
	Command    string
	Args       []string
}

func main() {
	os.Exit(run())
}

func run() int {
	opts, code, ok := parseFlags(os.Args[1:])
	if !ok {
		return code
	}

	if opts.ConfigPath == "" {
		opts.ConfigPath = os.Getenv(configEnv)
	}
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	if opts.LogLevel != "" {
		cfg.Logging.Level = opts.LogLevel
	}
	if opts.LogFile != "" {
		cfg.Logging.File = opts.LogFile
	}

	log, err := logging.New(cfg.LoggerConfig())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to initialize logging: %v\n", err)
		return 1
	}
	defer log.Close()

	if err := config.CheckEnv(os.Environ(), configEnv); err != nil {
		log.Warn("ignoring environment", "error", err)
	}

	// Handle signals for graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a := &app{cfg: cfg, configPath: opts.ConfigPath, log: log, out: os.Stdout}
	switch opts.Command {
	case "run":
		if len(opts.Args) != 1 {
			fmt.Fprintln(os.Stderr, "Usage: strata run script.lua")
			return 2
		}
		err = a.runScript(ctx, opts.Args[0])
	case "watch":
		if len(opts.Args) != 1 {
			fmt.Fprintln(os.Stderr, "Usage: strata watch script.lua")
			return 2
		}
		err = a.watch(ctx, opts.Args[0])
	case "inspect":
		if len(opts.Args) > 1 {
			fmt.Fprintln(os.Stderr, "Usage: strata inspect [script.lua]")
			return 2
		}
		err = a.inspect(ctx, opts.Args)
	default:
		fmt.Fprintf(os.Stderr, "Error: unknown command %q\n", opts.Command)
		return 2
	}

	if err != nil && !errors.Is(err, context.Canceled) {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

// parseFlags returns the options, or ok=false with the exit code when
// the program should stop.
func parseFlags(args []string) (opts options, code int, ok bool) {
	fs := flag.NewFlagSet("strata", flag.ContinueOnError)
	var showVersion bool
	var showHelp bool

	fs.StringVar(&opts.ConfigPath, "config", "", "Path to configuration file (TOML or YAML)")
	fs.StringVar(&opts.ConfigPath, "c", "", "Path to configuration file (shorthand)")
	fs.StringVar(&opts.LogLevel, "log-level", "", "Log level (debug, info, warn, error)")
	fs.StringVar(&opts.LogFile, "log-file", "", "Write logs to this file instead of stderr")
	fs.BoolVar(&showVersion, "version", false, "Show version information")
	fs.BoolVar(&showVersion, "v", false, "Show version information (shorthand)")
	fs.BoolVar(&showHelp, "help", false, "Show help message")
	fs.BoolVar(&showHelp, "h", false, "Show help message (shorthand)")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "strata - layered document engine with undo history\n\n")
		fmt.Fprintf(os.Stderr, "Usage: strata [options] <command> [args]\n\n")
		fmt.Fprintf(os.Stderr, "Commands:\n")
		fmt.Fprintf(os.Stderr, "  run script.lua        Run a script and print the layers and history\n")
		fmt.Fprintf(os.Stderr, "  watch script.lua      Re-run a script whenever it or the config changes\n")
		fmt.Fprintf(os.Stderr, "  inspect [script.lua]  Browse and edit the document in the terminal\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nEnvironment:\n")
		fmt.Fprintf(os.Stderr, "  %s names the config file; ", configEnv)
		fmt.Fprintf(os.Stderr, "settings can be overridden with %s* variables.\n", config.EnvPrefix)
	}

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return opts, 0, false
		}
		return opts, 2, false
	}

	if showHelp {
		fs.Usage()
		return opts, 0, false
	}

	if showVersion {
		fmt.Printf("strata %s\n", version)
		fmt.Printf("Commit: %s\n", commit)
		fmt.Printf("Built: %s\n", date)
		return opts, 0, false
	}

	if opts.LogLevel != "" {
		if _, err := logging.ParseLevel(opts.LogLevel); err != nil {
			fmt.Fprintf(os.Stderr, "Error: invalid log level %q (must be debug, info, warn, or error)\n", opts.LogLevel)
			return opts, 2, false
		}
	}

	if fs.NArg() == 0 {
		fs.Usage()
		return opts, 2, false
	}
	opts.Command = fs.Arg(0)
	opts.Args = fs.Args()[1:]
	return opts, 0, true
}
