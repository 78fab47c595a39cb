// Package command implements every undoable change to a document.
//
// Each type satisfies history.Action. Constructors validate their
// arguments against the current document and return an error before
// touching anything, so a command that was built successfully applies
// cleanly when handed to a history.Stack.
//
// # Catalog
//
// Structural: AddLayer, AddGroup, RemoveLayer, DuplicateLayer,
// ReorderSingleLayer, ReorderLayers, MoveLayer, SelectLayer.
//
// Properties: RenameLayer, SetLayerVisibility, SetLayerLocked,
// SetLayerOpacity, SetLayerCompositeOp. The last four implement
// history.Amender.
//
// Content: Stroke, ClearLayer, LoadLayer, ConvertLayerToNormalMode,
// MergeLayer.
//
// Animation: CreateTrack, SelectTrack, SelectFrame, ToggleKey,
// ToggleSkipVisible, ChangeDescription, AddCel, RemoveCel,
// AppendFrames, InsertFrames, RemoveFrames, PasteCel.
//
// # Composite commands
//
// Some commands own private child commands. Children whose target and
// prior state are known up front are built by the constructor; children
// whose prior state is only known when the parent runs are built on every
// Redo and dropped after the matching Undo. Children are never exposed, so
// a parent and its children are released together when the parent leaves
// the history.
package command
