// Package layer provides the layer hierarchy of a document.
//
// A document's layers form a tree of Leaf and Group nodes owned by a Tree.
// Ownership runs strictly top-down: a Group holds its ordered children,
// while the Tree keeps a relation table from node ID to parent Group for
// index computation. Nodes never point back at their parents, so
// detaching a subtree never leaves a cycle behind.
//
// # Content
//
// Leaf content lives in a tiled Surface of premultiplied RGBA pixels.
// Tiles captured by a Snapshot are frozen and copied on first write, so
// saving and loading snapshots is cheap and a Snapshot is immutable once
// taken.
//
// # Ordering
//
// Index 0 within a Group is the bottom of the stack. Leaves returns the
// flattened stack bottom to top, which is the compositing order.
//
// # Blending
//
// Leaves composite with one of the separable BlendMode values. Backdrop
// flattens the layers beneath a node onto an opaque background, which
// ConvertToNormalMode uses to bake a blend effect into plain pixels.
package layer
