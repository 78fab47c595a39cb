package engine

import (
	"fmt"
	"log/slog"

	"github.com/dshills/strata/internal/command"
	"github.com/dshills/strata/internal/document"
	"github.com/dshills/strata/internal/history"
	"github.com/dshills/strata/internal/layer"
	"github.com/dshills/strata/internal/logging"
	"github.com/dshills/strata/internal/timeline"
)

// pendingMove is an interactive drag not yet recorded in the history.
type pendingMove struct {
	layer  layer.Node
	dx, dy int
}

// Engine binds a document to its command stack.
type Engine struct {
	doc   *document.Document
	stack *history.Stack
	log   *slog.Logger

	// Configuration
	maxSignificant int
	opacityStep    float64
	pickThreshold  float64
	background     *layer.Pixel
	animation      bool
	timelineOpts   []timeline.Option

	move *pendingMove
}

// New creates an Engine holding a fresh document.
func New(opts ...Option) *Engine {
	e := &Engine{
		maxSignificant: history.DefaultMaxSignificant,
		opacityStep:    DefaultOpacityStep,
		pickThreshold:  DefaultPickAlphaThreshold,
		log:            logging.Discard(),
	}
	for _, opt := range opts {
		opt(e)
	}

	docOpts := []document.Option{document.WithLogger(e.log)}
	if e.background != nil {
		docOpts = append(docOpts, document.WithBackground(*e.background))
	}
	if e.animation {
		docOpts = append(docOpts, document.WithTimeline(e.timelineOpts...))
	}
	e.doc = document.New(docOpts...)
	e.stack = history.NewStack(
		history.WithMaxSignificant(e.maxSignificant),
		history.WithLogger(e.log),
	)
	e.stack.OnBeforeAction(func(*history.Stack) { e.flushMove() })
	e.log = e.log.With("component", "engine")
	return e
}

// ============================================================================
// Accessors
// ============================================================================

// Document returns the engine's document.
func (e *Engine) Document() *document.Document { return e.doc }

// Stack returns the command stack.
func (e *Engine) Stack() *history.Stack { return e.stack }

// Tree returns the layer tree.
func (e *Engine) Tree() *layer.Tree { return e.doc.Tree() }

// Current returns the current layer.
func (e *Engine) Current() layer.Node { return e.doc.Current() }

// Timeline returns the animation timeline, or nil.
func (e *Engine) Timeline() *timeline.Timeline { return e.doc.Timeline() }

// OpacityStep returns the IncreaseOpacity/DecreaseOpacity step.
func (e *Engine) OpacityStep() float64 { return e.opacityStep }

// SetMaxSignificant changes the history cap, trimming if needed.
func (e *Engine) SetMaxSignificant(n int) {
	e.maxSignificant = n
	e.stack.SetMaxSignificant(n)
}

// run records a built command, or reports why it could not be built.
func (e *Engine) run(a history.Action, err error) error {
	if err != nil {
		e.log.Warn("command rejected", "error", err)
		return err
	}
	if err := e.stack.Do(a); err != nil {
		e.log.Warn("command failed", "action", a.Description(), "error", err)
		return err
	}
	return nil
}

// resolve returns n, or the current layer when n is nil.
func (e *Engine) resolve(n layer.Node) layer.Node {
	if n == nil {
		return e.doc.Current()
	}
	return n
}

// ============================================================================
// History
// ============================================================================

// Undo reverses the last action and returns it, or nil if there was none.
func (e *Engine) Undo() (history.Action, error) { return e.stack.Undo() }

// Redo re-applies the last undone action and returns it, or nil.
func (e *Engine) Redo() (history.Action, error) { return e.stack.Redo() }

// CanUndo returns true if undo is available.
func (e *Engine) CanUndo() bool { return e.stack.CanUndo() }

// CanRedo returns true if redo is available.
func (e *Engine) CanRedo() bool { return e.stack.CanRedo() }

// UndoLabel returns the menu label for Undo, e.g. "Undo Add Layer".
func (e *Engine) UndoLabel() string {
	if a := e.stack.Last(); a != nil {
		return "Undo " + a.Description()
	}
	return "Undo"
}

// RedoLabel returns the menu label for Redo.
func (e *Engine) RedoLabel() string {
	if a := e.stack.PeekRedo(); a != nil {
		return "Redo " + a.Description()
	}
	return "Redo"
}

// Reset replaces the document content with a single empty layer and
// forgets the history.
func (e *Engine) Reset() {
	e.move = nil
	e.doc.Reset()
	e.stack.Clear()
}

// ============================================================================
// Layer structure
// ============================================================================

// AddLayer inserts an empty layer into parent (nil for the root) at index
// and selects it.
func (e *Engine) AddLayer(parent *layer.Group, index int) (*layer.Leaf, error) {
	c, err := command.NewAddLayer(e.doc, parent, index, "")
	if err := e.run(c, err); err != nil {
		return nil, err
	}
	return c.Layer(), nil
}

// AddLayerAbove inserts an empty layer directly above the current one.
func (e *Engine) AddLayerAbove() (*layer.Leaf, error) {
	c, err := command.NewAddLayerAbove(e.doc, nil, "")
	if err := e.run(c, err); err != nil {
		return nil, err
	}
	return c.Layer(), nil
}

// AddGroup wraps n (nil for the current layer) in a new group.
func (e *Engine) AddGroup(n layer.Node) (*layer.Group, error) {
	c, err := command.NewAddGroup(e.doc, n, "")
	if err := e.run(c, err); err != nil {
		return nil, err
	}
	return c.Group(), nil
}

// AddEmptyGroup inserts an empty group into parent at index.
func (e *Engine) AddEmptyGroup(parent *layer.Group, index int) (*layer.Group, error) {
	c, err := command.NewAddEmptyGroup(e.doc, parent, index, "")
	if err := e.run(c, err); err != nil {
		return nil, err
	}
	return c.Group(), nil
}

// RemoveLayer removes n (nil for the current layer).
func (e *Engine) RemoveLayer(n layer.Node) error {
	return e.run(command.NewRemoveLayer(e.doc, n))
}

// DuplicateLayer copies the leaf n directly above itself. The copy is
// named "Copy of" plus the source's display name.
func (e *Engine) DuplicateLayer(n layer.Node) (*layer.Leaf, error) {
	n = e.resolve(n)
	c, err := command.NewDuplicateLayer(e.doc, n, "Copy of "+e.doc.DisplayName(n))
	if err := e.run(c, err); err != nil {
		return nil, err
	}
	return c.Copy(), nil
}

// RenameLayer renames n.
func (e *Engine) RenameLayer(n layer.Node, name string) error {
	return e.run(command.NewRenameLayer(e.doc, n, name))
}

// SelectLayer makes n current.
func (e *Engine) SelectLayer(n layer.Node) error {
	if n == e.doc.Current() {
		return nil
	}
	return e.run(command.NewSelectLayer(e.doc, n))
}

// displayOrder lists every node top first, as a layer list shows them.
func (e *Engine) displayOrder() []layer.Node {
	var out []layer.Node
	e.doc.Tree().Walk(func(n layer.Node, _ int) bool {
		out = append(out, n)
		return true
	})
	return out
}

func (e *Engine) selectOffset(delta int) error {
	order := e.displayOrder()
	for i, n := range order {
		if n != e.doc.Current() {
			continue
		}
		j := i + delta
		if j < 0 || j >= len(order) {
			return nil
		}
		return e.SelectLayer(order[j])
	}
	return nil
}

// SelectLayerAbove selects the node listed above the current one. It does
// nothing at the top.
func (e *Engine) SelectLayerAbove() error { return e.selectOffset(-1) }

// SelectLayerBelow selects the node listed below the current one. It does
// nothing at the bottom.
func (e *Engine) SelectLayerBelow() error { return e.selectOffset(1) }

// RaiseLayer moves n one step up within its group and selects it.
func (e *Engine) RaiseLayer(n layer.Node) error {
	n = e.resolve(n)
	tr := e.doc.Tree()
	p := tr.Parent(n)
	if p == nil {
		return fmt.Errorf("raise %q: %w", n.Name(), document.ErrNotInTree)
	}
	i := tr.Index(n)
	if i >= p.Len()-1 {
		return nil
	}
	return e.run(command.NewReorderSingleLayer(e.doc, n, i+1, true, nil))
}

// LowerLayer moves n one step down within its group and selects it.
func (e *Engine) LowerLayer(n layer.Node) error {
	n = e.resolve(n)
	tr := e.doc.Tree()
	if tr.Parent(n) == nil {
		return fmt.Errorf("lower %q: %w", n.Name(), document.ErrNotInTree)
	}
	i := tr.Index(n)
	if i <= 0 {
		return nil
	}
	return e.run(command.NewReorderSingleLayer(e.doc, n, i-1, true, nil))
}

// MoveLayerInStack moves n into parent (nil keeps its group) at index.
func (e *Engine) MoveLayerInStack(n layer.Node, parent *layer.Group, index int) error {
	return e.run(command.NewReorderSingleLayer(e.doc, n, index, false, parent))
}

// ReorderLayers gives group's children a new order, bottom first.
func (e *Engine) ReorderLayers(group *layer.Group, order []layer.Node) error {
	return e.run(command.NewReorderLayers(e.doc, group, order))
}

// ============================================================================
// Translation
// ============================================================================

// MoveLayer translates n's content by (dx, dy).
func (e *Engine) MoveLayer(n layer.Node, dx, dy int) error {
	return e.run(command.NewMoveLayer(e.doc, n, dx, dy, false))
}

// BeginMove starts an interactive move of n.
func (e *Engine) BeginMove(n layer.Node) error {
	if e.move != nil {
		return ErrMoveInProgress
	}
	n = e.resolve(n)
	if !e.doc.Tree().Contains(n) || layer.Node(e.doc.Root()) == n {
		return fmt.Errorf("move %q: %w", n.Name(), document.ErrNotInTree)
	}
	e.move = &pendingMove{layer: n}
	return nil
}

// DragMove translates the layer being moved by a further (dx, dy).
func (e *Engine) DragMove(dx, dy int) error {
	m := e.move
	if m == nil {
		return ErrNoMove
	}
	before := m.layer.Bounds()
	command.Translate(m.layer, dx, dy)
	m.dx += dx
	m.dy += dy
	e.doc.NotifyRect(before.Union(m.layer.Bounds()))
	return nil
}

// Moving reports whether an interactive move is in progress.
func (e *Engine) Moving() bool { return e.move != nil }

// EndMove records the interactive move as one undoable command.
func (e *Engine) EndMove() error {
	if e.move == nil {
		return ErrNoMove
	}
	return e.recordMove()
}

func (e *Engine) recordMove() error {
	m := e.move
	e.move = nil
	if m.dx == 0 && m.dy == 0 {
		return nil
	}
	return e.run(command.NewMoveLayer(e.doc, m.layer, m.dx, m.dy, true))
}

// flushMove runs before every stack operation so that a drag still in
// progress is recorded ahead of whatever comes next.
func (e *Engine) flushMove() {
	if e.move == nil {
		return
	}
	if err := e.recordMove(); err != nil {
		e.log.Warn("flush move", "error", err)
	}
}

// ============================================================================
// Content
// ============================================================================

// MergeLayerDown merges the current layer into the one below it in the
// same group. It returns false if there is no layer below.
func (e *Engine) MergeLayerDown() (bool, error) {
	cur := e.doc.Current()
	tr := e.doc.Tree()
	p := tr.Parent(cur)
	i := tr.Index(cur)
	if p == nil || i <= 0 {
		return false, nil
	}
	if err := e.run(command.NewMergeLayer(e.doc, cur, p.At(i-1))); err != nil {
		return false, err
	}
	return true, nil
}

// ConvertLayerToNormalMode bakes n's blend mode and opacity into its pixels.
func (e *Engine) ConvertLayerToNormalMode(n layer.Node) error {
	return e.run(command.NewConvertLayerToNormalMode(e.doc, n))
}

// ClearLayer erases n.
func (e *Engine) ClearLayer(n layer.Node) error {
	return e.run(command.NewClearLayer(e.doc, n))
}

// LoadLayer replaces n's content with a copy of surf.
func (e *Engine) LoadLayer(n layer.Node, surf *layer.Surface) error {
	return e.run(command.NewLoadLayer(e.doc, n, surf))
}

// Stroke paints s onto n and records it.
func (e *Engine) Stroke(n layer.Node, s *layer.Stroke) error {
	c, err := command.PaintStroke(e.doc, n, s)
	if err != nil {
		e.log.Warn("command rejected", "error", err)
		return err
	}
	if err := e.stack.Do(c); err != nil {
		// The stroke is already on the layer; take it off again.
		if uerr := c.Undo(); uerr != nil {
			err = fmt.Errorf("%w (rollback: %v)", err, uerr)
		}
		e.log.Warn("command failed", "action", c.Description(), "error", err)
		return err
	}
	return nil
}

// ============================================================================
// Layer properties
// ============================================================================

// SetLayerOpacity sets n's opacity. Repeated calls for the same layer
// amend the top history entry.
func (e *Engine) SetLayerOpacity(n layer.Node, opacity float64) error {
	n = e.resolve(n)
	if last, ok := e.stack.Last().(*command.SetLayerOpacity); ok && last.Layer() == n {
		_, err := e.stack.UpdateLast(opacity)
		return err
	}
	return e.run(command.NewSetLayerOpacity(e.doc, n, opacity))
}

// IncreaseOpacity raises n's opacity by the configured step.
func (e *Engine) IncreaseOpacity(n layer.Node) error {
	n = e.resolve(n)
	return e.SetLayerOpacity(n, n.Opacity()+e.opacityStep)
}

// DecreaseOpacity lowers n's opacity by the configured step.
func (e *Engine) DecreaseOpacity(n layer.Node) error {
	n = e.resolve(n)
	return e.SetLayerOpacity(n, n.Opacity()-e.opacityStep)
}

// SetLayerCompositeOp sets the blend mode of the leaf n. Repeated calls
// for the same layer amend the top history entry.
func (e *Engine) SetLayerCompositeOp(n layer.Node, mode layer.BlendMode) error {
	n = e.resolve(n)
	if last, ok := e.stack.Last().(*command.SetLayerCompositeOp); ok && last.Layer() == n {
		_, err := e.stack.UpdateLast(mode)
		return err
	}
	return e.run(command.NewSetLayerCompositeOp(e.doc, n, mode))
}

// SetLayerVisibility shows or hides n.
func (e *Engine) SetLayerVisibility(n layer.Node, visible bool) error {
	return e.run(command.NewSetLayerVisibility(e.doc, n, visible))
}

// SetLayerLocked locks or unlocks n.
func (e *Engine) SetLayerLocked(n layer.Node, locked bool) error {
	return e.run(command.NewSetLayerLocked(e.doc, n, locked))
}

// PickLayer selects the topmost visible, unlocked leaf showing enough
// paint at (x, y), or the bottom layer if none does, and returns it.
func (e *Engine) PickLayer(x, y int) (layer.Node, error) {
	tr := e.doc.Tree()
	leaves := tr.Leaves()
	var picked layer.Node = e.doc.Root().At(0)
	for i := len(leaves) - 1; i >= 0; i-- {
		l := leaves[i]
		if l.Locked() {
			continue
		}
		op := tr.EffectiveOpacity(l)
		if op > 0 && float64(l.Surface().At(x, y).A)*op > e.pickThreshold {
			picked = l
			break
		}
	}
	if err := e.SelectLayer(picked); err != nil {
		return nil, err
	}
	return picked, nil
}

// PickBrush returns the brush of the most recent stroke on the current
// leaf that touched (x, y).
func (e *Engine) PickBrush(x, y int) (layer.Brush, bool) {
	l, ok := e.doc.Current().(*layer.Leaf)
	if !ok {
		return layer.Brush{}, false
	}
	s := l.StrokeAt(x, y)
	if s == nil {
		return layer.Brush{}, false
	}
	return s.Brush, true
}
