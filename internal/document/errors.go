package document

import "errors"

// Errors returned by document operations.
var (
	// ErrNotInTree indicates the layer is not attached to the document's tree.
	ErrNotInTree = errors.New("layer is not in the document")

	// ErrNoLayer indicates a nil layer was passed where one is required.
	ErrNoLayer = errors.New("no layer given")

	// ErrNoTimeline indicates an animation operation on a document without a timeline.
	ErrNoTimeline = errors.New("document has no timeline")

	// ErrNotLeaf indicates a content operation on a group.
	ErrNotLeaf = errors.New("layer is not a paint layer")
)
