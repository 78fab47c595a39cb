package layer

import "fmt"

// Tree owns a root Group and maintains the parent relation for every
// attached node. The root itself has no parent and cannot be detached.
type Tree struct {
	root    *Group
	parents map[ID]*Group
	nodes   map[ID]Node
}

// NewTree creates a tree holding an empty root group.
func NewTree() *Tree {
	root := NewGroup("")
	return &Tree{
		root:    root,
		parents: make(map[ID]*Group),
		nodes:   map[ID]Node{root.id: root},
	}
}

// Root returns the root group.
func (t *Tree) Root() *Group { return t.root }

// IsEmpty returns true if the root has no children.
func (t *Tree) IsEmpty() bool { return t.root.Len() == 0 }

// Len returns the number of attached nodes, excluding the root.
func (t *Tree) Len() int { return len(t.nodes) - 1 }

// Contains returns true if n is attached to the tree (the root included).
func (t *Tree) Contains(n Node) bool {
	if n == nil {
		return false
	}
	got, ok := t.nodes[n.ID()]
	return ok && got == n
}

// Lookup returns the attached node with the given ID.
func (t *Tree) Lookup(id ID) (Node, bool) {
	n, ok := t.nodes[id]
	return n, ok
}

// Parent returns the group holding n, or nil for the root and for
// detached nodes.
func (t *Tree) Parent(n Node) *Group {
	return t.parents[n.ID()]
}

// Index returns the position of n among its siblings, or -1 if n is the
// root or detached.
func (t *Tree) Index(n Node) int {
	p := t.Parent(n)
	if p == nil {
		return -1
	}
	return p.IndexOf(n)
}

// Path returns the child indices leading from the root to n. The root's
// path is empty; a detached node yields nil.
func (t *Tree) Path(n Node) []int {
	if !t.Contains(n) {
		return nil
	}
	var path []int
	for cur := n; cur != Node(t.root); {
		p := t.parents[cur.ID()]
		path = append(path, p.IndexOf(cur))
		cur = p
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	if path == nil {
		path = []int{}
	}
	return path
}

// NodeAt resolves a path produced by Path.
func (t *Tree) NodeAt(path []int) (Node, error) {
	var cur Node = t.root
	for depth, i := range path {
		g, ok := cur.(*Group)
		if !ok || i < 0 || i >= g.Len() {
			return nil, fmt.Errorf("path %v at depth %d: %w", path, depth, ErrIndexOutOfRange)
		}
		cur = g.At(i)
	}
	return cur, nil
}

// IsAncestor returns true if a is a proper ancestor of n.
func (t *Tree) IsAncestor(a, n Node) bool {
	for p := t.Parent(n); p != nil; p = t.Parent(p) {
		if Node(p) == a {
			return true
		}
	}
	return false
}

// Insert attaches n under parent at index. An index outside [0, Len]
// appends. The whole subtree under n is registered.
func (t *Tree) Insert(parent *Group, index int, n Node) error {
	if !t.Contains(parent) {
		return fmt.Errorf("insert into %q: %w", parent.Name(), ErrNotInTree)
	}
	var dup error
	walk(n, func(c Node, _ int) bool {
		if _, ok := t.nodes[c.ID()]; ok {
			dup = fmt.Errorf("insert %q: %w", c.Name(), ErrAlreadyInTree)
			return false
		}
		return true
	})
	if dup != nil {
		return dup
	}
	if g, ok := n.(*Group); ok && (g == parent || t.IsAncestor(g, parent)) {
		return fmt.Errorf("insert %q: %w", g.Name(), ErrCycle)
	}
	if index < 0 || index > parent.Len() {
		index = parent.Len()
	}
	parent.insertAt(index, n)
	t.register(parent, n)
	return nil
}

func (t *Tree) register(parent *Group, n Node) {
	t.parents[n.ID()] = parent
	t.nodes[n.ID()] = n
	if g, ok := n.(*Group); ok {
		for _, c := range g.children {
			t.register(g, c)
		}
	}
}

func (t *Tree) unregister(n Node) {
	delete(t.parents, n.ID())
	delete(t.nodes, n.ID())
	if g, ok := n.(*Group); ok {
		for _, c := range g.children {
			t.unregister(c)
		}
	}
}

// Remove detaches n together with its subtree and reports where it was.
func (t *Tree) Remove(n Node) (*Group, int, error) {
	if Node(t.root) == n {
		return nil, -1, ErrRoot
	}
	if !t.Contains(n) {
		return nil, -1, fmt.Errorf("remove %q: %w", n.Name(), ErrNotInTree)
	}
	parent := t.parents[n.ID()]
	idx := parent.IndexOf(n)
	parent.removeAt(idx)
	t.unregister(n)
	return parent, idx, nil
}

// Reorder replaces the children of g with order, which must be a
// permutation of the current children.
func (t *Tree) Reorder(g *Group, order []Node) error {
	if !t.Contains(g) {
		return fmt.Errorf("reorder %q: %w", g.Name(), ErrNotInTree)
	}
	if len(order) != g.Len() {
		return fmt.Errorf("reorder %q: %w", g.Name(), ErrNotPermutation)
	}
	seen := make(map[ID]bool, len(order))
	for _, n := range order {
		if n == nil || g.IndexOf(n) < 0 || seen[n.ID()] {
			return fmt.Errorf("reorder %q: %w", g.Name(), ErrNotPermutation)
		}
		seen[n.ID()] = true
	}
	copy(g.children, order)
	return nil
}

// Walk visits every attached node below the root depth-first, top of the
// stack first, which matches how a layer list is displayed. Returning
// false from fn skips the node's children.
func (t *Tree) Walk(fn func(n Node, depth int) bool) {
	for i := t.root.Len() - 1; i >= 0; i-- {
		walkTopDown(t.root.At(i), 0, fn)
	}
}

func walkTopDown(n Node, depth int, fn func(Node, int) bool) {
	if !fn(n, depth) {
		return
	}
	if g, ok := n.(*Group); ok {
		for i := g.Len() - 1; i >= 0; i-- {
			walkTopDown(g.At(i), depth+1, fn)
		}
	}
}

// walk visits n and its descendants bottom first.
func walk(n Node, fn func(Node, int) bool) {
	var rec func(Node, int) bool
	rec = func(n Node, depth int) bool {
		if !fn(n, depth) {
			return false
		}
		if g, ok := n.(*Group); ok {
			for _, c := range g.children {
				if !rec(c, depth+1) {
					return false
				}
			}
		}
		return true
	}
	rec(n, 0)
}

// Leaves returns every attached leaf in compositing order, bottom first.
func (t *Tree) Leaves() []*Leaf {
	var out []*Leaf
	walk(t.root, func(n Node, _ int) bool {
		if l, ok := n.(*Leaf); ok {
			out = append(out, l)
		}
		return true
	})
	return out
}

// Find returns the topmost attached node named name.
func (t *Tree) Find(name string) (Node, bool) {
	var found Node
	t.Walk(func(n Node, _ int) bool {
		if found == nil && n.Name() == name {
			found = n
		}
		return found == nil
	})
	return found, found != nil
}

// EffectiveOpacity returns n's opacity multiplied by every ancestor's,
// or 0 if n or any ancestor is hidden.
func (t *Tree) EffectiveOpacity(n Node) float64 {
	op := 1.0
	for cur := n; cur != nil; {
		if !cur.Visible() {
			return 0
		}
		op *= cur.Opacity()
		p := t.Parent(cur)
		if p == nil {
			break
		}
		cur = p
	}
	return op
}

// Below returns the leaves that composite beneath n, bottom first, with
// groups treated as pass-through.
func (t *Tree) Below(n Node) []*Leaf {
	first := n
	if g, ok := n.(*Group); ok {
		first = nil
		walk(g, func(c Node, _ int) bool {
			if l, ok := c.(*Leaf); ok && first == nil {
				first = l
			}
			return first == nil
		})
	}
	var out []*Leaf
	for _, l := range t.Leaves() {
		if Node(l) == first {
			return out
		}
		if !t.IsAncestor(n, l) {
			out = append(out, l)
		}
	}
	return out
}
