package script

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/strata/internal/engine"
	"github.com/dshills/strata/internal/layer"
	"github.com/dshills/strata/internal/logging"
)

// DefaultTimeout bounds a single Run.
const DefaultTimeout = 5 * time.Second

// Option configures a Runner.
type Option func(*Runner)

// WithTimeout bounds each Run. Zero removes the bound.
func WithTimeout(d time.Duration) Option {
	return func(r *Runner) {
		if d >= 0 {
			r.timeout = d
		}
	}
}

// WithOutput redirects print.
func WithOutput(w io.Writer) Option {
	return func(r *Runner) {
		if w != nil {
			r.out = w
		}
	}
}

// WithLogger sets the runner's logger.
func WithLogger(l *slog.Logger) Option {
	return func(r *Runner) {
		if l != nil {
			r.log = l
		}
	}
}

// Runner executes Lua scripts against an engine.
//
// gopher-lua states are not goroutine-safe and neither is the engine, so
// a Runner must be used from one goroutine.
type Runner struct {
	L   *lua.LState
	eng *engine.Engine

	timeout time.Duration
	out     io.Writer
	log     *slog.Logger

	// userdata per node, so that the same layer compares equal in Lua
	nodes map[layer.Node]*lua.LUserData

	// last engine error raised into Lua during the current run
	failure error

	closed bool
}

// New creates a runner bound to eng.
func New(eng *engine.Engine, opts ...Option) *Runner {
	r := &Runner{
		eng:     eng,
		timeout: DefaultTimeout,
		out:     os.Stdout,
		log:     logging.Discard(),
		nodes:   make(map[layer.Node]*lua.LUserData),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.log = r.log.With(logging.ComponentKey, "script")

	r.L = lua.NewState(lua.Options{SkipOpenLibs: true})
	openSafeLibraries(r.L)
	installSandbox(r.L)
	r.installProtectedCalls()
	r.installPrint()
	r.registerLayerType()
	r.registerModule()
	return r
}

// Engine returns the engine scripts operate on.
func (r *Runner) Engine() *engine.Engine { return r.eng }

// RunFile executes the Lua file at path.
func (r *Runner) RunFile(ctx context.Context, path string) error {
	src, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading script: %w", err)
	}
	return r.Run(ctx, path, string(src))
}

// Run executes src. name identifies the chunk in error messages.
func (r *Runner) Run(ctx context.Context, name, src string) error {
	if r.closed {
		return ErrClosed
	}
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	fn, err := r.L.Load(strings.NewReader(src), name)
	if err != nil {
		return &Error{Script: name, Message: err.Error(), Err: err}
	}

	r.failure = nil
	r.L.SetContext(ctx)
	defer r.L.RemoveContext()

	start := time.Now()
	r.L.Push(fn)
	err = r.L.PCall(0, 0, nil)
	r.log.Debug("script finished", "script", name, "elapsed", time.Since(start), "error", err)
	if err == nil {
		return nil
	}
	return r.wrap(ctx, name, err)
}

// wrap attributes a Lua failure to its cause.
func (r *Runner) wrap(ctx context.Context, name string, err error) error {
	msg := err.Error()
	var apiErr *lua.ApiError
	if errors.As(err, &apiErr) && apiErr.Object != nil {
		msg = apiErr.Object.String()
	}
	e := &Error{Script: name, Message: msg, Err: err}
	switch {
	case ctx.Err() != nil:
		e.Err = ctx.Err()
	case r.failure != nil && strings.Contains(msg, r.failure.Error()):
		e.Err = r.failure
	}
	return e
}

// Close releases the Lua state.
func (r *Runner) Close() {
	if r.closed {
		return
	}
	r.closed = true
	r.L.Close()
}

// raise turns an engine error into a Lua error.
func (r *Runner) raise(L *lua.LState, err error) {
	r.failure = err
	L.RaiseError("%s", err.Error())
}

// check raises err if it is not nil.
func (r *Runner) check(L *lua.LState, err error) {
	if err != nil {
		r.raise(L, err)
	}
}

// installProtectedCalls wraps pcall and xpcall. A failure they catch is
// handled by the script and must not be blamed for a later error.
func (r *Runner) installProtectedCalls() {
	for _, name := range []string{"pcall", "xpcall"} {
		orig := r.L.GetGlobal(name)
		if orig == lua.LNil {
			continue
		}
		r.L.SetGlobal(name, r.L.NewFunction(func(L *lua.LState) int {
			top := L.GetTop()
			L.Push(orig)
			for i := 1; i <= top; i++ {
				L.Push(L.Get(i))
			}
			L.Call(top, lua.MultRet)
			r.failure = nil
			return L.GetTop() - top
		}))
	}
}

func (r *Runner) installPrint() {
	r.L.SetGlobal("print", r.L.NewFunction(func(L *lua.LState) int {
		n := L.GetTop()
		parts := make([]string, n)
		for i := 1; i <= n; i++ {
			parts[i-1] = L.ToStringMeta(L.Get(i)).String()
		}
		fmt.Fprintln(r.out, strings.Join(parts, "\t"))
		return 0
	}))
}
