package event

import "errors"

// ErrNilHandler is returned when a nil handler is provided.
var ErrNilHandler = errors.New("handler cannot be nil")
