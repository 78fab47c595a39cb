package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math"
	"path/filepath"
	"strings"

	"github.com/gdamore/tcell/v2"

	"github.com/dshills/strata/internal/config"
	"github.com/dshills/strata/internal/config/watcher"
	"github.com/dshills/strata/internal/engine"
	"github.com/dshills/strata/internal/inspector"
	"github.com/dshills/strata/internal/layer"
	"github.com/dshills/strata/internal/logging"
	"github.com/dshills/strata/internal/script"
)

type app struct {
	cfg        *config.Config
	configPath string
	log        *logging.Logger
	out        io.Writer
}

func (a *app) newEngine(log *slog.Logger) *engine.Engine {
	return engine.New(a.cfg.EngineOptions(log)...)
}

// execute runs the script at path against eng.
func (a *app) execute(ctx context.Context, eng *engine.Engine, path string) error {
	r := script.New(eng,
		script.WithTimeout(a.cfg.Script.Timeout.Std()),
		script.WithOutput(a.out),
		script.WithLogger(a.log.Logger),
	)
	defer r.Close()
	return r.RunFile(ctx, path)
}

func (a *app) runScript(ctx context.Context, path string) error {
	eng := a.newEngine(a.log.Logger)
	if err := a.execute(ctx, eng, path); err != nil {
		return err
	}
	printSummary(a.out, eng)
	return nil
}

// watch re-runs the script on a fresh engine whenever the script or the
// config file changes. Config changes also apply the new log level.
func (a *app) watch(ctx context.Context, path string) error {
	changed := make(chan string, 1)
	w, err := watcher.New(func(p string) {
		select {
		case changed <- p:
		default:
		}
	}, watcher.WithDebounce(a.cfg.Watch.Debounce.Std()), watcher.WithLogger(a.log.Logger))
	if err != nil {
		return fmt.Errorf("starting watcher: %w", err)
	}
	defer w.Close()

	if err := w.Add(path); err != nil {
		return fmt.Errorf("watching %s: %w", path, err)
	}
	var configAbs string
	if a.configPath != "" {
		if err := w.Add(a.configPath); err != nil {
			return fmt.Errorf("watching %s: %w", a.configPath, err)
		}
		configAbs, _ = filepath.Abs(a.configPath)
	}

	a.rerun(ctx, path)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case p := <-changed:
			if p == configAbs {
				a.reloadConfig()
			}
			a.rerun(ctx, path)
		}
	}
}

func (a *app) rerun(ctx context.Context, path string) {
	fmt.Fprintf(a.out, "== %s\n", path)
	if err := a.runScript(ctx, path); err != nil {
		fmt.Fprintf(a.out, "error: %v\n", err)
	}
}

func (a *app) reloadConfig() {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		a.log.Error("config reload failed", "path", a.configPath, "error", err)
		return
	}
	if err := a.log.SetLevel(cfg.Logging.Level); err != nil {
		a.log.Warn("keeping log level", "error", err)
	}
	a.cfg = cfg
	a.log.Info("config reloaded", "path", a.configPath)
}

// inspect opens the terminal inspector, optionally after running a
// script to set up the document.
func (a *app) inspect(ctx context.Context, args []string) error {
	// Log records written to stderr would corrupt the screen.
	log := a.log.Logger
	if a.cfg.Logging.File == "" || a.cfg.Logging.File == "-" {
		log = logging.Discard()
	}
	eng := a.newEngine(log)
	if len(args) == 1 {
		if err := a.execute(ctx, eng, args[0]); err != nil {
			return err
		}
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("failed to create terminal: %w", err)
	}
	if err := screen.Init(); err != nil {
		return fmt.Errorf("failed to initialize terminal: %w", err)
	}
	defer screen.Fini()
	screen.EnableMouse()

	insp := inspector.New(screen, eng, inspector.WithLogger(log))
	defer insp.Close()
	return insp.Run(ctx)
}

// printSummary writes the layer stack top first, then the history.
func printSummary(w io.Writer, eng *engine.Engine) {
	doc := eng.Document()
	fmt.Fprintln(w, "layers:")
	eng.Tree().Walk(func(n layer.Node, depth int) bool {
		marker := " "
		if n == eng.Current() {
			marker = "*"
		}
		kind := "group"
		if l, ok := n.(*layer.Leaf); ok {
			kind = l.BlendMode().DisplayName()
		}
		var flags []string
		if !n.Visible() {
			flags = append(flags, "hidden")
		}
		if n.Locked() {
			flags = append(flags, "locked")
		}
		line := fmt.Sprintf("%s %s%s  %d%% %s", marker, strings.Repeat("  ", depth),
			doc.DisplayName(n), int(math.Round(n.Opacity()*100)), kind)
		if len(flags) > 0 {
			line += " [" + strings.Join(flags, ",") + "]"
		}
		fmt.Fprintln(w, line)
		return true
	})

	fmt.Fprintln(w, "history:")
	for _, ac := range eng.Stack().History() {
		fmt.Fprintf(w, "  %s\n", ac.Description())
	}
	if future := eng.Stack().Future(); len(future) > 0 {
		fmt.Fprintln(w, "redo:")
		for i := len(future) - 1; i >= 0; i-- {
			fmt.Fprintf(w, "  %s\n", future[i].Description())
		}
	}
	if tl := eng.Timeline(); tl != nil {
		for _, tr := range tl.Tracks() {
			fmt.Fprintf(w, "track %s: %d frames, frame %d\n", tr.Name(), tr.Len(), tr.Idx())
		}
	}
}
