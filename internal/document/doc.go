// Package document provides the aggregate root that commands mutate.
//
// A Document owns the layer tree, the current-layer selection, the
// background color and, once enabled, an animation timeline. It exposes
// three observer lists that UI collaborators subscribe to:
//
//   - Changes: document events (Changed, Inserted, BeforeDelete,
//     Cleared, TrackInserted, TrackRemoved)
//   - Canvas: the bounding rectangle a mutation touched
//   - Strokes: completed free-hand strokes with their brush
//
// The document guarantees two invariants: the tree always holds at least
// one layer, and the current layer is always attached to the tree.
// Mutations that could break them (removal, reset) are expressed as
// commands in package command; the document only offers the primitive
// operations and rejects selections of detached layers.
package document
