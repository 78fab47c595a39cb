package script

import (
	"fmt"

	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/strata/internal/layer"
)

const layerTypeName = "strata.layer"

func (r *Runner) registerLayerType() {
	mt := r.L.NewTypeMetatable(layerTypeName)
	r.L.SetField(mt, "__index", r.L.SetFuncs(r.L.NewTable(), map[string]lua.LGFunction{
		"name":         r.layerName,
		"display_name": r.layerDisplayName,
		"id":           r.layerID,
		"kind":         r.layerKind,
		"opacity":      r.layerOpacity,
		"visible":      r.layerVisible,
		"locked":       r.layerLocked,
		"mode":         r.layerMode,
		"parent":       r.layerParent,
		"children":     r.layerChildren,
		"index":        r.layerIndex,
		"depth":        r.layerDepth,
		"bounds":       r.layerBounds,
		"is_empty":     r.layerIsEmpty,
		"attached":     r.layerAttached,
	}))
	r.L.SetField(mt, "__tostring", r.L.NewFunction(r.layerToString))
}

// pushNode returns the userdata for n, or nil.
func (r *Runner) pushNode(n layer.Node) lua.LValue {
	if n == nil {
		return lua.LNil
	}
	if ud, ok := r.nodes[n]; ok {
		return ud
	}
	ud := r.L.NewUserData()
	ud.Value = n
	r.L.SetMetatable(ud, r.L.GetTypeMetatable(layerTypeName))
	r.nodes[n] = ud
	return ud
}

// checkNode returns the node at argument i.
func (r *Runner) checkNode(L *lua.LState, i int) layer.Node {
	ud := L.CheckUserData(i)
	n, ok := ud.Value.(layer.Node)
	if !ok {
		L.ArgError(i, "layer expected")
		return nil
	}
	return n
}

// optNode returns the node at argument i, or nil when absent.
func (r *Runner) optNode(L *lua.LState, i int) layer.Node {
	if L.Get(i) == lua.LNil {
		return nil
	}
	return r.checkNode(L, i)
}

// optGroup returns the group at argument i, or nil for the root.
func (r *Runner) optGroup(L *lua.LState, i int) *layer.Group {
	n := r.optNode(L, i)
	if n == nil {
		return nil
	}
	g, ok := n.(*layer.Group)
	if !ok {
		L.ArgError(i, "group expected")
		return nil
	}
	return g
}

func (r *Runner) layerName(L *lua.LState) int {
	L.Push(lua.LString(r.checkNode(L, 1).Name()))
	return 1
}

func (r *Runner) layerDisplayName(L *lua.LState) int {
	L.Push(lua.LString(r.eng.Document().DisplayName(r.checkNode(L, 1))))
	return 1
}

func (r *Runner) layerID(L *lua.LState) int {
	L.Push(lua.LString(r.checkNode(L, 1).ID().String()))
	return 1
}

func (r *Runner) layerKind(L *lua.LState) int {
	kind := "group"
	if layer.IsLeaf(r.checkNode(L, 1)) {
		kind = "layer"
	}
	L.Push(lua.LString(kind))
	return 1
}

func (r *Runner) layerOpacity(L *lua.LState) int {
	L.Push(lua.LNumber(r.checkNode(L, 1).Opacity()))
	return 1
}

func (r *Runner) layerVisible(L *lua.LState) int {
	L.Push(lua.LBool(r.checkNode(L, 1).Visible()))
	return 1
}

func (r *Runner) layerLocked(L *lua.LState) int {
	L.Push(lua.LBool(r.checkNode(L, 1).Locked()))
	return 1
}

// mode returns the blend mode name; groups have none.
func (r *Runner) layerMode(L *lua.LState) int {
	if l, ok := r.checkNode(L, 1).(*layer.Leaf); ok {
		L.Push(lua.LString(l.BlendMode().String()))
		return 1
	}
	L.Push(lua.LNil)
	return 1
}

func (r *Runner) layerParent(L *lua.LState) int {
	n := r.checkNode(L, 1)
	p := r.eng.Tree().Parent(n)
	if p == nil || p == r.eng.Tree().Root() {
		L.Push(lua.LNil)
		return 1
	}
	L.Push(r.pushNode(p))
	return 1
}

// children lists a group's children bottom first; leaves have none.
func (r *Runner) layerChildren(L *lua.LState) int {
	t := L.NewTable()
	if g, ok := r.checkNode(L, 1).(*layer.Group); ok {
		for _, c := range g.Children() {
			t.Append(r.pushNode(c))
		}
	}
	L.Push(t)
	return 1
}

func (r *Runner) layerIndex(L *lua.LState) int {
	L.Push(lua.LNumber(r.eng.Tree().Index(r.checkNode(L, 1))))
	return 1
}

func (r *Runner) layerDepth(L *lua.LState) int {
	L.Push(lua.LNumber(len(r.eng.Tree().Path(r.checkNode(L, 1))) - 1))
	return 1
}

func (r *Runner) layerBounds(L *lua.LState) int {
	b := r.checkNode(L, 1).Bounds()
	L.Push(lua.LNumber(b.X))
	L.Push(lua.LNumber(b.Y))
	L.Push(lua.LNumber(b.W))
	L.Push(lua.LNumber(b.H))
	return 4
}

func (r *Runner) layerIsEmpty(L *lua.LState) int {
	L.Push(lua.LBool(r.checkNode(L, 1).IsEmpty()))
	return 1
}

func (r *Runner) layerAttached(L *lua.LState) int {
	L.Push(lua.LBool(r.eng.Tree().Contains(r.checkNode(L, 1))))
	return 1
}

func (r *Runner) layerToString(L *lua.LState) int {
	n := r.checkNode(L, 1)
	kind := "group"
	if layer.IsLeaf(n) {
		kind = "layer"
	}
	L.Push(lua.LString(fmt.Sprintf("%s(%q)", kind, r.eng.Document().DisplayName(n))))
	return 1
}
