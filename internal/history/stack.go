package history

import (
	"fmt"
	"log/slog"

	"github.com/dshills/strata/internal/event"
	"github.com/dshills/strata/internal/logging"
)

// Stack records applied and undone actions.
type Stack struct {
	history []Action
	future  []Action

	hooks     event.List[*Stack]
	observers event.List[*Stack]

	maxSignificant int
	running        bool
	log            *slog.Logger
}

// NewStack creates an empty command stack.
func NewStack(opts ...Option) *Stack {
	s := &Stack{
		maxSignificant: DefaultMaxSignificant,
		log:            logging.Discard(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.log = s.log.With("component", "history")
	return s
}

// OnBeforeAction registers a hook run before every Do, Undo and Redo.
// Hooks typically flush pending interactive state and may themselves
// call Do.
func (s *Stack) OnBeforeAction(fn func(*Stack)) event.Subscription {
	return s.hooks.Subscribe(fn)
}

// Observe registers fn to be called whenever the history or future
// sequences change, or the label of the top entry may have changed.
func (s *Stack) Observe(fn func(*Stack)) event.Subscription {
	return s.observers.Subscribe(fn)
}

// Do applies a and records it, discarding the future sequence.
// If a fails to apply, nothing is recorded and the future is kept.
func (s *Stack) Do(a Action) error {
	if a == nil {
		return ErrNilAction
	}
	if s.running {
		return fmt.Errorf("do '%s': %w", a.Description(), ErrReentrant)
	}
	s.hooks.Notify(s)

	s.running = true
	future := s.future
	s.future = nil
	if err := a.Redo(); err != nil {
		s.future = future
		s.running = false
		return fmt.Errorf("do '%s': %w", a.Description(), err)
	}
	s.history = append(s.history, a)
	s.trim()
	s.running = false

	s.log.Debug("do", "action", a.Description(), "history", len(s.history))
	s.observers.Notify(s)
	return nil
}

// Undo reverses the most recent action and returns it. It returns
// (nil, nil) when there is nothing to undo.
func (s *Stack) Undo() (Action, error) {
	if s.running {
		return nil, fmt.Errorf("undo: %w", ErrReentrant)
	}
	if len(s.history) == 0 {
		return nil, nil
	}
	s.hooks.Notify(s)
	if len(s.history) == 0 {
		return nil, nil
	}

	s.running = true
	a := s.history[len(s.history)-1]
	s.history = s.history[:len(s.history)-1]
	if err := a.Undo(); err != nil {
		s.history = append(s.history, a)
		s.running = false
		return nil, fmt.Errorf("undo '%s': %w", a.Description(), err)
	}
	s.future = append(s.future, a)
	s.running = false

	s.log.Debug("undo", "action", a.Description(), "future", len(s.future))
	s.observers.Notify(s)
	return a, nil
}

// Redo re-applies the most recently undone action and returns it. It
// returns (nil, nil) when there is nothing to redo.
func (s *Stack) Redo() (Action, error) {
	if s.running {
		return nil, fmt.Errorf("redo: %w", ErrReentrant)
	}
	if len(s.future) == 0 {
		return nil, nil
	}
	s.hooks.Notify(s)
	if len(s.future) == 0 {
		return nil, nil
	}

	s.running = true
	a := s.future[len(s.future)-1]
	s.future = s.future[:len(s.future)-1]
	if err := a.Redo(); err != nil {
		s.future = append(s.future, a)
		s.running = false
		return nil, fmt.Errorf("redo '%s': %w", a.Description(), err)
	}
	s.history = append(s.history, a)
	s.running = false

	s.log.Debug("redo", "action", a.Description(), "history", len(s.history))
	s.observers.Notify(s)
	return a, nil
}

// Clear empties both sequences. It is meant for document resets.
func (s *Stack) Clear() {
	s.history = nil
	s.future = nil
	s.log.Debug("clear")
	s.observers.Notify(s)
}

// Last returns the most recent history entry, or nil.
func (s *Stack) Last() Action {
	if len(s.history) == 0 {
		return nil
	}
	return s.history[len(s.history)-1]
}

// UpdateLast amends the most recent history entry in place. It returns
// (nil, nil) when the history is empty.
func (s *Stack) UpdateLast(patch any) (Action, error) {
	if s.running {
		return nil, fmt.Errorf("update last: %w", ErrReentrant)
	}
	a := s.Last()
	if a == nil {
		return nil, nil
	}
	am, ok := a.(Amender)
	if !ok {
		return nil, fmt.Errorf("update '%s': %w", a.Description(), ErrNotAmendable)
	}
	s.running = true
	err := am.Amend(patch)
	s.running = false
	if err != nil {
		return nil, fmt.Errorf("update '%s': %w", a.Description(), err)
	}
	s.observers.Notify(s)
	return a, nil
}

// CanUndo returns true if undo is available.
func (s *Stack) CanUndo() bool { return len(s.history) > 0 }

// CanRedo returns true if redo is available.
func (s *Stack) CanRedo() bool { return len(s.future) > 0 }

// UndoCount returns the number of history entries.
func (s *Stack) UndoCount() int { return len(s.history) }

// RedoCount returns the number of future entries.
func (s *Stack) RedoCount() int { return len(s.future) }

// History returns the applied actions, oldest first.
func (s *Stack) History() []Action {
	out := make([]Action, len(s.history))
	copy(out, s.history)
	return out
}

// Future returns the undone actions, the next one to redo last.
func (s *Stack) Future() []Action {
	out := make([]Action, len(s.future))
	copy(out, s.future)
	return out
}

// PeekRedo returns the action the next Redo would apply, or nil.
func (s *Stack) PeekRedo() Action {
	if len(s.future) == 0 {
		return nil
	}
	return s.future[len(s.future)-1]
}

// MaxSignificant returns the current history cap.
func (s *Stack) MaxSignificant() int { return s.maxSignificant }

// SetMaxSignificant changes the history cap and trims immediately.
func (s *Stack) SetMaxSignificant(n int) {
	if n <= 0 || n == s.maxSignificant {
		return
	}
	s.maxSignificant = n
	before := len(s.history)
	s.trim()
	if len(s.history) != before {
		s.observers.Notify(s)
	}
}

// trim drops everything older than the maxSignificant-th most recent
// non-automatic action.
func (s *Stack) trim() {
	steps := 0
	for i := len(s.history) - 1; i >= 0; i-- {
		if !s.history[i].Automatic() {
			steps++
		}
		if steps == s.maxSignificant {
			if i > 0 {
				s.log.Debug("trim", "dropped", i, "kept", len(s.history)-i)
				s.history = append([]Action(nil), s.history[i:]...)
			}
			return
		}
	}
}
