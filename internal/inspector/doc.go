// Package inspector is a terminal view of an engine: the layer stack on
// the left, undo and redo history on the right and a status line at the
// bottom.
//
// The view never holds document state of its own beyond a cursor row. It
// re-reads the document whenever the document or history stack reports a
// change, and key bindings call straight into the engine so that every
// edit made from the keyboard is undoable like any other.
//
// Key bindings:
//
//	u, ctrl-z      undo
//	r, ctrl-y      redo
//	a              add a layer above the current one
//	g              wrap the current layer in a group
//	x, delete      remove the current layer
//	d              duplicate
//	m              merge down
//	n              convert to normal blend mode
//	c              clear
//	+, -           opacity up or down one step
//	v              toggle visibility
//	l              toggle lock
//	k, j, up, down select the layer above or below
//	K, J           raise or lower the current layer
//	q, esc         quit
package inspector
