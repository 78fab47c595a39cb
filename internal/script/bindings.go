package script

import (
	"fmt"

	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/strata/internal/command"
	"github.com/dshills/strata/internal/document"
	"github.com/dshills/strata/internal/layer"
	"github.com/dshills/strata/internal/timeline"
)

// ModuleName is the global the engine is exposed as.
const ModuleName = "doc"

func (r *Runner) registerModule() {
	funcs := map[string]lua.LGFunction{
		// history
		"undo":       r.undo,
		"redo":       r.redo,
		"can_undo":   r.canUndo,
		"can_redo":   r.canRedo,
		"undo_label": r.undoLabel,
		"redo_label": r.redoLabel,
		"history":    r.history,
		"reset":      r.reset,

		// queries
		"current": r.current,
		"root":    r.root,
		"layers":  r.layers,
		"find":    r.find,

		// structure
		"add_layer":       r.addLayer,
		"add_group":       r.addGroup,
		"add_empty_group": r.addEmptyGroup,
		"remove":          r.remove,
		"duplicate":       r.duplicate,
		"rename":          r.rename,
		"select":          r.selectLayer,
		"select_above":    r.selectAbove,
		"select_below":    r.selectBelow,
		"raise":           r.raiseLayer,
		"lower":           r.lower,
		"move_to":         r.moveTo,
		"reorder":         r.reorder,

		// translation
		"move":       r.move,
		"begin_move": r.beginMove,
		"drag":       r.drag,
		"end_move":   r.endMove,

		// content
		"merge_down": r.mergeDown,
		"normalize":  r.normalize,
		"clear":      r.clear,
		"fill":       r.fill,
		"stroke":     r.stroke,
		"pick":       r.pick,
		"pick_brush": r.pickBrush,

		// properties
		"set_opacity":  r.setOpacity,
		"opacity_up":   r.opacityUp,
		"opacity_down": r.opacityDown,
		"set_mode":     r.setMode,
		"set_visible":  r.setVisible,
		"set_locked":   r.setLocked,

		// animation
		"enable_animation": r.enableAnimation,
		"create_track":     r.createTrack,
		"select_track":     r.selectTrack,
		"tracks":           r.tracks,
		"select_frame":     r.selectFrame,
		"frame":            r.frame,
		"frames":           r.frameCount,
		"toggle_key":       r.toggleKey,
		"toggle_skip":      r.toggleSkip,
		"describe":         r.describe,
		"add_cel":          r.addCel,
		"remove_cel":       r.removeCel,
		"append_frames":    r.appendFrames,
		"insert_frames":    r.insertFrames,
		"remove_frames":    r.removeFrames,
		"copy_cel":         r.copyCel,
		"cut_cel":          r.cutCel,
		"paste_cel":        r.pasteCel,
	}
	for name, fn := range funcs {
		funcs[name] = r.tracked(fn)
	}
	r.L.SetGlobal(ModuleName, r.L.SetFuncs(r.L.NewTable(), funcs))
}

// tracked clears the recorded failure before fn runs, so a binding that
// returns normally never leaves one behind.
func (r *Runner) tracked(fn lua.LGFunction) lua.LGFunction {
	return func(L *lua.LState) int {
		r.failure = nil
		return fn(L)
	}
}

// ============================================================================
// History
// ============================================================================

// undo returns the label of the undone action, or nil.
func (r *Runner) undo(L *lua.LState) int {
	a, err := r.eng.Undo()
	r.check(L, err)
	if a == nil {
		L.Push(lua.LNil)
		return 1
	}
	L.Push(lua.LString(a.Description()))
	return 1
}

func (r *Runner) redo(L *lua.LState) int {
	a, err := r.eng.Redo()
	r.check(L, err)
	if a == nil {
		L.Push(lua.LNil)
		return 1
	}
	L.Push(lua.LString(a.Description()))
	return 1
}

func (r *Runner) canUndo(L *lua.LState) int {
	L.Push(lua.LBool(r.eng.CanUndo()))
	return 1
}

func (r *Runner) canRedo(L *lua.LState) int {
	L.Push(lua.LBool(r.eng.CanRedo()))
	return 1
}

func (r *Runner) undoLabel(L *lua.LState) int {
	L.Push(lua.LString(r.eng.UndoLabel()))
	return 1
}

func (r *Runner) redoLabel(L *lua.LState) int {
	L.Push(lua.LString(r.eng.RedoLabel()))
	return 1
}

// history returns {undo = {...}, redo = {...}}, both oldest first.
func (r *Runner) history(L *lua.LState) int {
	undo := L.NewTable()
	for _, a := range r.eng.Stack().History() {
		undo.Append(lua.LString(a.Description()))
	}
	redo := L.NewTable()
	future := r.eng.Stack().Future()
	for i := len(future) - 1; i >= 0; i-- {
		redo.Append(lua.LString(future[i].Description()))
	}
	t := L.NewTable()
	t.RawSetString("undo", undo)
	t.RawSetString("redo", redo)
	L.Push(t)
	return 1
}

func (r *Runner) reset(L *lua.LState) int {
	r.eng.Reset()
	return 0
}

// ============================================================================
// Queries
// ============================================================================

func (r *Runner) current(L *lua.LState) int {
	L.Push(r.pushNode(r.eng.Current()))
	return 1
}

func (r *Runner) root(L *lua.LState) int {
	L.Push(r.pushNode(r.eng.Tree().Root()))
	return 1
}

// layers lists every node top first, as a layer list displays them.
func (r *Runner) layers(L *lua.LState) int {
	t := L.NewTable()
	r.eng.Tree().Walk(func(n layer.Node, _ int) bool {
		t.Append(r.pushNode(n))
		return true
	})
	L.Push(t)
	return 1
}

func (r *Runner) find(L *lua.LState) int {
	n, ok := r.eng.Tree().Find(L.CheckString(1))
	if !ok {
		L.Push(lua.LNil)
		return 1
	}
	L.Push(r.pushNode(n))
	return 1
}

// ============================================================================
// Structure
// ============================================================================

// add_layer() adds above the current layer; add_layer(group, index)
// inserts at a position, group nil meaning the root.
func (r *Runner) addLayer(L *lua.LState) int {
	var (
		l   *layer.Leaf
		err error
	)
	if L.GetTop() == 0 {
		l, err = r.eng.AddLayerAbove()
	} else {
		parent := r.optGroup(L, 1)
		l, err = r.eng.AddLayer(parent, L.CheckInt(2))
	}
	r.check(L, err)
	L.Push(r.pushNode(l))
	return 1
}

func (r *Runner) addGroup(L *lua.LState) int {
	g, err := r.eng.AddGroup(r.optNode(L, 1))
	r.check(L, err)
	L.Push(r.pushNode(g))
	return 1
}

func (r *Runner) addEmptyGroup(L *lua.LState) int {
	g, err := r.eng.AddEmptyGroup(r.optGroup(L, 1), L.CheckInt(2))
	r.check(L, err)
	L.Push(r.pushNode(g))
	return 1
}

func (r *Runner) remove(L *lua.LState) int {
	r.check(L, r.eng.RemoveLayer(r.optNode(L, 1)))
	return 0
}

func (r *Runner) duplicate(L *lua.LState) int {
	l, err := r.eng.DuplicateLayer(r.optNode(L, 1))
	r.check(L, err)
	L.Push(r.pushNode(l))
	return 1
}

func (r *Runner) rename(L *lua.LState) int {
	r.check(L, r.eng.RenameLayer(r.optNode(L, 1), L.CheckString(2)))
	return 0
}

func (r *Runner) selectLayer(L *lua.LState) int {
	r.check(L, r.eng.SelectLayer(r.checkNode(L, 1)))
	return 0
}

func (r *Runner) selectAbove(L *lua.LState) int {
	r.check(L, r.eng.SelectLayerAbove())
	return 0
}

func (r *Runner) selectBelow(L *lua.LState) int {
	r.check(L, r.eng.SelectLayerBelow())
	return 0
}

func (r *Runner) raiseLayer(L *lua.LState) int {
	r.check(L, r.eng.RaiseLayer(r.optNode(L, 1)))
	return 0
}

func (r *Runner) lower(L *lua.LState) int {
	r.check(L, r.eng.LowerLayer(r.optNode(L, 1)))
	return 0
}

// move_to(layer, group, index) moves a layer to a new position.
func (r *Runner) moveTo(L *lua.LState) int {
	n := r.optNode(L, 1)
	r.check(L, r.eng.MoveLayerInStack(n, r.optGroup(L, 2), L.CheckInt(3)))
	return 0
}

// reorder(group, {layers}) sets a group's child order, bottom first.
func (r *Runner) reorder(L *lua.LState) int {
	g := r.optGroup(L, 1)
	t := L.CheckTable(2)
	var order []layer.Node
	for i := 1; i <= t.Len(); i++ {
		ud, ok := t.RawGetInt(i).(*lua.LUserData)
		if !ok {
			L.ArgError(2, fmt.Sprintf("entry %d is not a layer", i))
			return 0
		}
		n, ok := ud.Value.(layer.Node)
		if !ok {
			L.ArgError(2, fmt.Sprintf("entry %d is not a layer", i))
			return 0
		}
		order = append(order, n)
	}
	r.check(L, r.eng.ReorderLayers(g, order))
	return 0
}

// ============================================================================
// Translation
// ============================================================================

func (r *Runner) move(L *lua.LState) int {
	r.check(L, r.eng.MoveLayer(r.optNode(L, 1), L.CheckInt(2), L.CheckInt(3)))
	return 0
}

func (r *Runner) beginMove(L *lua.LState) int {
	r.check(L, r.eng.BeginMove(r.optNode(L, 1)))
	return 0
}

func (r *Runner) drag(L *lua.LState) int {
	r.check(L, r.eng.DragMove(L.CheckInt(1), L.CheckInt(2)))
	return 0
}

func (r *Runner) endMove(L *lua.LState) int {
	r.check(L, r.eng.EndMove())
	return 0
}

// ============================================================================
// Content
// ============================================================================

// merge_down returns true if a merge happened.
func (r *Runner) mergeDown(L *lua.LState) int {
	ok, err := r.eng.MergeLayerDown()
	r.check(L, err)
	L.Push(lua.LBool(ok))
	return 1
}

func (r *Runner) normalize(L *lua.LState) int {
	r.check(L, r.eng.ConvertLayerToNormalMode(r.optNode(L, 1)))
	return 0
}

func (r *Runner) clear(L *lua.LState) int {
	r.check(L, r.eng.ClearLayer(r.optNode(L, 1)))
	return 0
}

// fill(layer, x, y, w, h, color) paints a solid rectangle over the
// layer's content as one undoable load.
func (r *Runner) fill(L *lua.LState) int {
	n := r.optNode(L, 1)
	if n == nil {
		n = r.eng.Current()
	}
	l, ok := n.(*layer.Leaf)
	if !ok {
		r.raise(L, fmt.Errorf("fill %q: %w", n.Name(), document.ErrNotLeaf))
		return 0
	}
	rect := layer.Rect{X: L.CheckInt(2), Y: L.CheckInt(3), W: L.CheckInt(4), H: L.CheckInt(5)}
	p := r.checkColor(L, 6)
	surf := l.Surface().Clone()
	surf.Fill(rect, p)
	r.check(L, r.eng.LoadLayer(l, surf))
	return 0
}

// stroke(layer, {points = {{x, y, pressure}, ...}, color, radius,
// opacity, hardness}) paints a stroke.
func (r *Runner) stroke(L *lua.LState) int {
	n := r.optNode(L, 1)
	desc := L.CheckTable(2)

	brush := layer.DefaultBrush()
	if v := desc.RawGetString("color"); v != lua.LNil {
		p, err := layer.ParseColor(lua.LVAsString(v))
		if err != nil {
			L.ArgError(2, err.Error())
			return 0
		}
		brush.Color = p
	}
	brush.Radius = optNumber(desc, "radius", brush.Radius)
	brush.Opacity = optNumber(desc, "opacity", brush.Opacity)
	brush.Hardness = optNumber(desc, "hardness", brush.Hardness)

	pts, ok := desc.RawGetString("points").(*lua.LTable)
	if !ok || pts.Len() == 0 {
		L.ArgError(2, "points expected")
		return 0
	}
	s := layer.NewStroke(brush)
	for i := 1; i <= pts.Len(); i++ {
		pt, ok := pts.RawGetInt(i).(*lua.LTable)
		if !ok {
			L.ArgError(2, fmt.Sprintf("point %d is not a table", i))
			return 0
		}
		x := pointField(pt, 1, "x", 0)
		y := pointField(pt, 2, "y", 0)
		pressure := pointField(pt, 3, "pressure", 1)
		s.Add(x, y, pressure)
	}
	r.check(L, r.eng.Stroke(n, s))
	return 0
}

func (r *Runner) pick(L *lua.LState) int {
	n, err := r.eng.PickLayer(L.CheckInt(1), L.CheckInt(2))
	r.check(L, err)
	L.Push(r.pushNode(n))
	return 1
}

// pick_brush returns the brush of the topmost stroke under the point on
// the current layer, or nil.
func (r *Runner) pickBrush(L *lua.LState) int {
	b, ok := r.eng.PickBrush(L.CheckInt(1), L.CheckInt(2))
	if !ok {
		L.Push(lua.LNil)
		return 1
	}
	t := L.NewTable()
	t.RawSetString("color", lua.LString(b.Color.Hex()))
	t.RawSetString("radius", lua.LNumber(b.Radius))
	t.RawSetString("opacity", lua.LNumber(b.Opacity))
	t.RawSetString("hardness", lua.LNumber(b.Hardness))
	L.Push(t)
	return 1
}

// ============================================================================
// Properties
// ============================================================================

func (r *Runner) setOpacity(L *lua.LState) int {
	r.check(L, r.eng.SetLayerOpacity(r.optNode(L, 1), float64(L.CheckNumber(2))))
	return 0
}

func (r *Runner) opacityUp(L *lua.LState) int {
	r.check(L, r.eng.IncreaseOpacity(r.optNode(L, 1)))
	return 0
}

func (r *Runner) opacityDown(L *lua.LState) int {
	r.check(L, r.eng.DecreaseOpacity(r.optNode(L, 1)))
	return 0
}

func (r *Runner) setMode(L *lua.LState) int {
	n := r.optNode(L, 1)
	mode, err := layer.ParseBlendMode(L.CheckString(2))
	if err != nil {
		L.ArgError(2, err.Error())
		return 0
	}
	r.check(L, r.eng.SetLayerCompositeOp(n, mode))
	return 0
}

func (r *Runner) setVisible(L *lua.LState) int {
	r.check(L, r.eng.SetLayerVisibility(r.optNode(L, 1), L.CheckBool(2)))
	return 0
}

func (r *Runner) setLocked(L *lua.LState) int {
	r.check(L, r.eng.SetLayerLocked(r.optNode(L, 1), L.CheckBool(2)))
	return 0
}

// ============================================================================
// Animation
// ============================================================================

func (r *Runner) enableAnimation(L *lua.LState) int {
	r.eng.EnableAnimation()
	return 0
}

func (r *Runner) createTrack(L *lua.LState) int {
	tr, err := r.eng.CreateTrack(L.OptString(1, ""))
	r.check(L, err)
	L.Push(lua.LString(tr.Name()))
	return 1
}

// select_track accepts a track name or a zero-based index.
func (r *Runner) selectTrack(L *lua.LState) int {
	tl := r.timeline(L)
	var found *timeline.Track
	switch v := L.CheckAny(1).(type) {
	case lua.LNumber:
		tracks := tl.Tracks()
		if i := int(v); i >= 0 && i < len(tracks) {
			found = tracks[i]
		}
	case lua.LString:
		for _, tr := range tl.Tracks() {
			if tr.Name() == string(v) {
				found = tr
				break
			}
		}
	default:
		L.ArgError(1, "track name or index expected")
		return 0
	}
	if found == nil {
		r.raise(L, fmt.Errorf("track %s: %w", L.Get(1).String(), command.ErrNoTrack))
		return 0
	}
	r.check(L, r.eng.SelectTrack(found))
	return 0
}

func (r *Runner) tracks(L *lua.LState) int {
	t := L.NewTable()
	if tl := r.eng.Timeline(); tl != nil {
		for _, tr := range tl.Tracks() {
			t.Append(lua.LString(tr.Name()))
		}
	}
	L.Push(t)
	return 1
}

func (r *Runner) selectFrame(L *lua.LState) int {
	r.check(L, r.eng.SelectFrame(L.CheckInt(1)))
	return 0
}

// frame returns {index, key, skip, description, cel} for a frame of the
// current track, the current frame by default.
func (r *Runner) frame(L *lua.LState) int {
	f := r.optFrame(L, 1)
	t := L.NewTable()
	t.RawSetString("index", lua.LNumber(f.Index()))
	t.RawSetString("key", lua.LBool(f.IsKey()))
	t.RawSetString("skip", lua.LBool(f.SkipVisible()))
	t.RawSetString("description", lua.LString(f.Description()))
	if c := f.Cel(); c != nil {
		t.RawSetString("cel", r.pushNode(c))
	}
	L.Push(t)
	return 1
}

func (r *Runner) frameCount(L *lua.LState) int {
	L.Push(lua.LNumber(r.track(L).Len()))
	return 1
}

func (r *Runner) toggleKey(L *lua.LState) int {
	r.check(L, r.eng.ToggleKey(r.optFrame(L, 1)))
	return 0
}

func (r *Runner) toggleSkip(L *lua.LState) int {
	r.check(L, r.eng.ToggleSkipVisible(r.optFrame(L, 1)))
	return 0
}

// describe(frame, text) sets a frame's description.
func (r *Runner) describe(L *lua.LState) int {
	f := r.optFrame(L, 1)
	r.check(L, r.eng.ChangeDescription(f, L.CheckString(2)))
	return 0
}

func (r *Runner) addCel(L *lua.LState) int {
	l, err := r.eng.AddCel(r.optFrame(L, 1))
	r.check(L, err)
	L.Push(r.pushNode(l))
	return 1
}

func (r *Runner) removeCel(L *lua.LState) int {
	r.check(L, r.eng.RemoveCel(r.optFrame(L, 1)))
	return 0
}

func (r *Runner) appendFrames(L *lua.LState) int {
	r.check(L, r.eng.AppendFrames(L.OptInt(1, 1)))
	return 0
}

func (r *Runner) insertFrames(L *lua.LState) int {
	r.check(L, r.eng.InsertFrames(L.OptInt(1, 1)))
	return 0
}

func (r *Runner) removeFrames(L *lua.LState) int {
	r.check(L, r.eng.RemoveFrames(L.OptInt(1, 1)))
	return 0
}

func (r *Runner) copyCel(L *lua.LState) int {
	r.check(L, r.eng.CopyCel(r.optFrame(L, 1)))
	return 0
}

func (r *Runner) cutCel(L *lua.LState) int {
	r.check(L, r.eng.CutCel(r.optFrame(L, 1)))
	return 0
}

func (r *Runner) pasteCel(L *lua.LState) int {
	r.check(L, r.eng.PasteCel(r.optFrame(L, 1)))
	return 0
}

// ============================================================================
// Helpers
// ============================================================================

func (r *Runner) timeline(L *lua.LState) *timeline.Timeline {
	tl, err := r.eng.Document().RequireTimeline()
	r.check(L, err)
	return tl
}

func (r *Runner) track(L *lua.LState) *timeline.Track {
	tr := r.timeline(L).Current()
	if tr == nil {
		r.raise(L, command.ErrNoTrack)
	}
	return tr
}

// optFrame returns the frame at the index in argument i, or the current
// frame when the argument is absent.
func (r *Runner) optFrame(L *lua.LState, i int) *timeline.Frame {
	tr := r.track(L)
	if L.Get(i) == lua.LNil {
		if f := tr.Current(); f != nil {
			return f
		}
		L.ArgError(i, "track has no frames")
		return nil
	}
	idx := L.CheckInt(i)
	f := tr.Frame(idx)
	if f == nil {
		L.ArgError(i, fmt.Sprintf("frame %d out of range [0, %d)", idx, tr.Len()))
		return nil
	}
	return f
}

func (r *Runner) checkColor(L *lua.LState, i int) layer.Pixel {
	p, err := layer.ParseColor(L.CheckString(i))
	if err != nil {
		L.ArgError(i, err.Error())
	}
	return p
}

func optNumber(t *lua.LTable, key string, def float64) float64 {
	if n, ok := t.RawGetString(key).(lua.LNumber); ok {
		return float64(n)
	}
	return def
}

// pointField reads a point coordinate given either positionally or by name.
func pointField(t *lua.LTable, pos int, key string, def float64) float64 {
	if n, ok := t.RawGetInt(pos).(lua.LNumber); ok {
		return float64(n)
	}
	return optNumber(t, key, def)
}
