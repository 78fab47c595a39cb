package history

import "log/slog"

// DefaultMaxSignificant is the number of non-automatic actions kept.
const DefaultMaxSignificant = 30

// Option configures a Stack during creation.
type Option func(*Stack)

// WithMaxSignificant sets how many non-automatic actions are retained.
func WithMaxSignificant(n int) Option {
	return func(s *Stack) {
		if n > 0 {
			s.maxSignificant = n
		}
	}
}

// WithLogger sets the logger used for debug traces.
func WithLogger(l *slog.Logger) Option {
	return func(s *Stack) {
		if l != nil {
			s.log = l
		}
	}
}
