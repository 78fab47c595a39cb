// Package engine is the facade a user interface or script drives. It
// binds a document.Document to a history.Stack and exposes every
// document mutation as a method that builds the matching command and
// runs it through the stack.
//
// # Basic Usage
//
//	e := engine.New()
//	e.AddLayer(nil, 1)          // new layer above the first, selected
//	e.SetLayerOpacity(nil, 0.5) // on the current layer
//	e.SetLayerOpacity(nil, 0.4) // amends the previous entry
//	e.Undo()                    // opacity back to 1
//	e.Undo()                    // layer removed again
//
// # Coalescing
//
// Repeated opacity or blend mode changes of the same layer amend the top
// history entry instead of pushing new ones, so a slider drag produces a
// single undo step.
//
// # Interactive Moves
//
// BeginMove, DragMove and EndMove translate a layer while the user drags
// and record one MoveLayer command at the end. Any other command issued
// during a drag ends the move first.
//
// # Concurrency
//
// An Engine is not safe for concurrent use. Observers run synchronously
// inside the call that triggered them and may read engine state, but
// must not issue further commands.
package engine
