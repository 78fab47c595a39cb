package engine

import (
	"log/slog"

	"github.com/dshills/strata/internal/layer"
	"github.com/dshills/strata/internal/timeline"
)

// Default configuration values.
const (
	DefaultOpacityStep        = 0.08
	DefaultPickAlphaThreshold = 0.1
)

// Option configures an Engine during creation.
type Option func(*Engine)

// WithMaxSignificant sets how many non-automatic actions the undo
// history keeps.
func WithMaxSignificant(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.maxSignificant = n
		}
	}
}

// WithOpacityStep sets the step used by IncreaseOpacity and DecreaseOpacity.
func WithOpacityStep(step float64) Option {
	return func(e *Engine) {
		if step > 0 && step <= 1 {
			e.opacityStep = step
		}
	}
}

// WithPickThreshold sets the minimum visible alpha PickLayer accepts.
func WithPickThreshold(v float64) Option {
	return func(e *Engine) {
		if v >= 0 && v < 1 {
			e.pickThreshold = v
		}
	}
}

// WithBackground sets the document background color.
func WithBackground(p layer.Pixel) Option {
	return func(e *Engine) {
		e.background = &p
	}
}

// WithAnimation enables the animation timeline.
func WithAnimation(opts ...timeline.Option) Option {
	return func(e *Engine) {
		e.animation = true
		e.timelineOpts = opts
	}
}

// WithLogger sets the logger shared by the engine, its document and its
// command stack.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.log = l
		}
	}
}
