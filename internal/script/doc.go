// Package script drives an engine from Lua.
//
// A Runner owns a sandboxed gopher-lua state with only the base, table,
// string and math libraries. Files, processes and module loading are not
// reachable from a script. The engine is exposed as the global module
// "doc"; layers are userdata values that compare equal when they refer
// to the same node.
//
// # Example
//
//	local bg = doc.current()
//	local ink = doc.add_layer()
//	doc.rename(ink, "ink")
//	doc.stroke(ink, {color = "#ff0000", radius = 3, points = {{10, 10}, {40, 40}}})
//	doc.set_opacity(ink, 0.5)
//	doc.merge_down()
//	print(doc.undo_label())
//
// Functions that take a layer accept nil for the current layer. Frame
// indices are zero-based positions in the current track, as the timeline
// numbers them.
//
// Engine errors are raised as Lua errors. When a script fails because of
// one, the *Error returned by Run unwraps to the engine's error value.
//
// # Limits
//
// Each Run is bounded by a context; the Runner's timeout, when set, is
// applied on top of the caller's context. gopher-lua checks the context
// between instructions, so a busy loop is interrupted too.
package script
