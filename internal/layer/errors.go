package layer

import "errors"

// Errors returned by tree operations.
var (
	// ErrNotInTree indicates the node is not attached to the tree.
	ErrNotInTree = errors.New("layer not in tree")

	// ErrAlreadyInTree indicates the node (or one of its descendants) is already attached.
	ErrAlreadyInTree = errors.New("layer already in tree")

	// ErrCycle indicates an insertion would make a group its own descendant.
	ErrCycle = errors.New("insertion would create a cycle")

	// ErrRoot indicates an operation that is not permitted on the root group.
	ErrRoot = errors.New("operation not permitted on root")

	// ErrIndexOutOfRange indicates a child index outside the group.
	ErrIndexOutOfRange = errors.New("index out of range")

	// ErrNotPermutation indicates a new child order is not a permutation of the old one.
	ErrNotPermutation = errors.New("order is not a permutation of the children")

	// ErrUnknownBlendMode indicates a blend mode name that is not recognized.
	ErrUnknownBlendMode = errors.New("unknown blend mode")
)
