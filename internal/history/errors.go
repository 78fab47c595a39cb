package history

import "errors"

// Errors returned by history operations.
var (
	// ErrReentrant indicates Do, Undo or Redo was called while an action was running.
	ErrReentrant = errors.New("command stack is already running an action")

	// ErrNilAction indicates a nil action was passed to Do.
	ErrNilAction = errors.New("action cannot be nil")

	// ErrNotAmendable indicates the top action does not support amendment.
	ErrNotAmendable = errors.New("action does not support amend")

	// ErrPatchMismatch indicates a patch of the wrong type was passed to Amend.
	ErrPatchMismatch = errors.New("patch does not apply to this action")
)
