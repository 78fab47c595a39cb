package layer

// Node is a member of the layer tree: either a *Leaf or a *Group.
type Node interface {
	ID() ID
	Name() string
	SetName(name string)
	Opacity() float64
	SetOpacity(opacity float64)
	Visible() bool
	SetVisible(visible bool)
	Locked() bool
	SetLocked(locked bool)

	// Bounds returns the tile-granular area the node's content covers.
	Bounds() Rect

	// IsEmpty returns true if the node holds no painted content.
	IsEmpty() bool

	isNode()
}

// props holds the attributes shared by leaves and groups.
type props struct {
	id      ID
	name    string
	opacity float64
	visible bool
	locked  bool
}

func newProps(name string) props {
	return props{id: newID(), name: name, opacity: 1, visible: true}
}

func (p *props) ID() ID                     { return p.id }
func (p *props) Name() string               { return p.name }
func (p *props) SetName(name string)        { p.name = name }
func (p *props) Opacity() float64           { return p.opacity }
func (p *props) Visible() bool              { return p.visible }
func (p *props) SetVisible(visible bool)    { p.visible = visible }
func (p *props) Locked() bool               { return p.locked }
func (p *props) SetLocked(locked bool)      { p.locked = locked }
func (p *props) SetOpacity(opacity float64) { p.opacity = clampOpacity(opacity) }

func clampOpacity(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// Leaf is a content-bearing layer.
type Leaf struct {
	props
	mode    BlendMode
	surface *Surface
	strokes []*Stroke
}

// NewLeaf creates an empty, visible, fully opaque leaf in normal mode.
func NewLeaf(name string) *Leaf {
	return &Leaf{props: newProps(name), surface: NewSurface()}
}

func (*Leaf) isNode() {}

// BlendMode returns the mode used to composite the leaf.
func (l *Leaf) BlendMode() BlendMode { return l.mode }

// SetBlendMode changes the compositing mode.
func (l *Leaf) SetBlendMode(m BlendMode) { l.mode = m }

// Surface returns the leaf's pixel content. Writes through it bypass the
// stroke record and should be wrapped in snapshot-backed commands.
func (l *Leaf) Surface() *Surface { return l.surface }

// Strokes returns the strokes recorded on the leaf, oldest first.
func (l *Leaf) Strokes() []*Stroke {
	out := make([]*Stroke, len(l.strokes))
	copy(out, l.strokes)
	return out
}

// Bounds implements Node.
func (l *Leaf) Bounds() Rect { return l.surface.Bounds() }

// IsEmpty implements Node.
func (l *Leaf) IsEmpty() bool { return l.surface.IsEmpty() }

// SaveSnapshot captures the leaf's content and stroke record.
func (l *Leaf) SaveSnapshot() *Snapshot {
	strokes := make([]*Stroke, len(l.strokes))
	copy(strokes, l.strokes)
	return &Snapshot{tiles: l.surface.freeze(), strokes: strokes}
}

// LoadSnapshot replaces the leaf's content with the captured state.
// The snapshot itself is left untouched.
func (l *Leaf) LoadSnapshot(s *Snapshot) {
	tiles := make(map[TileKey]*tile, len(s.tiles))
	for k, t := range s.tiles {
		tiles[k] = t
	}
	l.surface = &Surface{tiles: tiles}
	l.strokes = make([]*Stroke, len(s.strokes))
	copy(l.strokes, s.strokes)
}

// AddStroke renders s and appends it to the stroke record. It returns the
// area touched.
func (l *Leaf) AddStroke(s *Stroke) Rect {
	s.render(l.surface)
	l.strokes = append(l.strokes, s)
	return s.Bounds()
}

// Clear removes all content and strokes.
func (l *Leaf) Clear() {
	l.surface.Clear()
	l.strokes = nil
}

// LoadFromSurface replaces the content with a copy of surf.
func (l *Leaf) LoadFromSurface(surf *Surface) {
	l.surface = surf.Clone()
	l.strokes = nil
}

// Translate shifts the content by (dx, dy) pixels.
func (l *Leaf) Translate(dx, dy int) {
	l.surface.Translate(dx, dy)
}

// MergeInto composites l onto dst using l's opacity and blend mode, and
// appends l's strokes to dst's record. l is left unchanged.
func (l *Leaf) MergeInto(dst *Leaf) {
	dst.surface.Composite(l.surface, l.mode, float32(l.opacity))
	dst.strokes = append(dst.strokes, l.strokes...)
}

// ConvertToNormalMode rewrites the content so that, composited in normal
// mode at full opacity over bg, it looks the way it currently does with
// its own mode and opacity. Mode and opacity themselves are not changed.
func (l *Leaf) ConvertToNormalMode(bg *Backdrop) {
	if l.mode == BlendNormal && l.opacity == 1 {
		return
	}
	out := NewSurface()
	op := float32(l.opacity)
	for k, t := range l.surface.tiles {
		if t.isEmpty() {
			continue
		}
		back := bg.Tile(k)
		nt := out.writable(k)
		for i, p := range t.px {
			d := l.mode.Composite(back[i], p, op)
			nt.px[i] = unflatten(d, back[i])
		}
	}
	l.surface = out
}

// Copy returns a detached leaf holding the same content and attributes
// under a new ID and the given name.
func (l *Leaf) Copy(name string) *Leaf {
	c := NewLeaf(name)
	c.LoadSnapshot(l.SaveSnapshot())
	c.opacity = l.opacity
	c.visible = l.visible
	c.locked = l.locked
	c.mode = l.mode
	return c
}

// Group is an ordered composite of child nodes. Children are attached
// and detached only through the owning Tree.
type Group struct {
	props
	children []Node
}

// NewGroup creates an empty visible group.
func NewGroup(name string) *Group {
	return &Group{props: newProps(name)}
}

func (*Group) isNode() {}

// Len returns the number of direct children.
func (g *Group) Len() int { return len(g.children) }

// At returns the child at index i, bottom first.
func (g *Group) At(i int) Node { return g.children[i] }

// Children returns a copy of the direct children, bottom first.
func (g *Group) Children() []Node {
	out := make([]Node, len(g.children))
	copy(out, g.children)
	return out
}

// IndexOf returns the index of child n, or -1.
func (g *Group) IndexOf(n Node) int {
	for i, c := range g.children {
		if c == n {
			return i
		}
	}
	return -1
}

// Bounds implements Node.
func (g *Group) Bounds() Rect {
	var r Rect
	for _, c := range g.children {
		r = r.Union(c.Bounds())
	}
	return r
}

// IsEmpty implements Node.
func (g *Group) IsEmpty() bool {
	for _, c := range g.children {
		if !c.IsEmpty() {
			return false
		}
	}
	return true
}

func (g *Group) insertAt(i int, n Node) {
	g.children = append(g.children, nil)
	copy(g.children[i+1:], g.children[i:])
	g.children[i] = n
}

func (g *Group) removeAt(i int) {
	copy(g.children[i:], g.children[i+1:])
	g.children[len(g.children)-1] = nil
	g.children = g.children[:len(g.children)-1]
}

// IsLeaf reports whether n is a *Leaf.
func IsLeaf(n Node) bool {
	_, ok := n.(*Leaf)
	return ok
}

// StrokeAt returns the most recent stroke whose area contains (x, y).
func (l *Leaf) StrokeAt(x, y int) *Stroke {
	for i := len(l.strokes) - 1; i >= 0; i-- {
		if l.strokes[i].Bounds().Contains(x, y) {
			return l.strokes[i]
		}
	}
	return nil
}
