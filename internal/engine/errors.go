package engine

import "errors"

// Errors returned by engine operations.
var (
	// ErrNoMove indicates EndMove or DragMove without a BeginMove.
	ErrNoMove = errors.New("no move in progress")

	// ErrMoveInProgress indicates BeginMove while another move is active.
	ErrMoveInProgress = errors.New("a move is already in progress")
)
