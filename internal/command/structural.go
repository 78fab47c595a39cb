package command

import (
	"fmt"

	"github.com/dshills/strata/internal/document"
	"github.com/dshills/strata/internal/layer"
)

// AddLayer inserts a new empty leaf and selects it.
type AddLayer struct {
	base
	parent *layer.Group
	index  int
	layer  *layer.Leaf
	prev   layer.Node
}

// NewAddLayer creates a command inserting a leaf named name into parent
// (nil for the root) at index. An out-of-range index appends.
func NewAddLayer(doc *document.Document, parent *layer.Group, index int, name string) (*AddLayer, error) {
	parent, err := groupOrRoot(doc, parent)
	if err != nil {
		return nil, err
	}
	return &AddLayer{
		base:   base{doc: doc, label: "Add Layer"},
		parent: parent,
		index:  index,
		layer:  layer.NewLeaf(name),
	}, nil
}

// NewAddLayerAbove creates a command inserting a leaf directly above ref.
func NewAddLayerAbove(doc *document.Document, ref layer.Node, name string) (*AddLayer, error) {
	ref, err := attached(doc, ref)
	if err != nil {
		return nil, err
	}
	tr := doc.Tree()
	return NewAddLayer(doc, tr.Parent(ref), tr.Index(ref)+1, name)
}

// Layer returns the leaf this command inserts.
func (c *AddLayer) Layer() *layer.Leaf { return c.layer }

func (c *AddLayer) Redo() error {
	if err := c.doc.Insert(c.parent, c.index, c.layer); err != nil {
		return err
	}
	c.prev = c.doc.Current()
	if err := c.doc.SetCurrent(c.layer); err != nil {
		return err
	}
	c.doc.NotifyChanged()
	return nil
}

func (c *AddLayer) Undo() error {
	if _, _, err := c.doc.Remove(c.layer); err != nil {
		return err
	}
	if err := c.doc.SetCurrent(c.prev); err != nil {
		return err
	}
	c.prev = nil
	c.doc.NotifyChanged()
	return nil
}

// AddGroup inserts a new group, either empty or wrapping an existing
// layer at that layer's position. The selection is left unchanged.
type AddGroup struct {
	base
	parent *layer.Group
	index  int
	wrap   layer.Node
	group  *layer.Group
	prev   layer.Node
}

// NewAddGroup creates a command wrapping n in a new group named name.
func NewAddGroup(doc *document.Document, n layer.Node, name string) (*AddGroup, error) {
	n, err := attached(doc, n)
	if err != nil {
		return nil, err
	}
	return &AddGroup{
		base:  base{doc: doc, label: "Add Group"},
		wrap:  n,
		group: layer.NewGroup(name),
	}, nil
}

// NewAddEmptyGroup creates a command inserting an empty group into
// parent (nil for the root) at index.
func NewAddEmptyGroup(doc *document.Document, parent *layer.Group, index int, name string) (*AddGroup, error) {
	parent, err := groupOrRoot(doc, parent)
	if err != nil {
		return nil, err
	}
	return &AddGroup{
		base:   base{doc: doc, label: "Add Group"},
		parent: parent,
		index:  index,
		group:  layer.NewGroup(name),
	}, nil
}

// Group returns the group this command inserts.
func (c *AddGroup) Group() *layer.Group { return c.group }

func (c *AddGroup) Redo() error {
	tr := c.doc.Tree()
	c.prev = c.doc.Current()
	if c.wrap == nil {
		if err := c.doc.Insert(c.parent, c.index, c.group); err != nil {
			return err
		}
		c.doc.NotifyChanged()
		return nil
	}
	c.parent = tr.Parent(c.wrap)
	c.index = tr.Index(c.wrap)
	if _, _, err := tr.Remove(c.wrap); err != nil {
		return err
	}
	if err := c.doc.Insert(c.parent, c.index, c.group); err != nil {
		return err
	}
	if err := tr.Insert(c.group, 0, c.wrap); err != nil {
		return err
	}
	c.doc.NotifyCanvas(c.group)
	c.doc.NotifyChanged()
	return nil
}

func (c *AddGroup) Undo() error {
	tr := c.doc.Tree()
	if c.wrap != nil {
		if _, _, err := tr.Remove(c.wrap); err != nil {
			return err
		}
	}
	if _, _, err := c.doc.Remove(c.group); err != nil {
		return err
	}
	if c.wrap != nil {
		if err := tr.Insert(c.parent, c.index, c.wrap); err != nil {
			return err
		}
		c.doc.NotifyCanvas(c.wrap)
	}
	if err := c.doc.SetCurrent(c.prev); err != nil {
		return err
	}
	c.prev = nil
	c.doc.NotifyChanged()
	return nil
}

// RemoveLayer detaches a layer. If that would leave the tree empty, a
// placeholder leaf is inserted and selected; the same placeholder is
// reused by every redo of the command.
type RemoveLayer struct {
	base
	layer       layer.Node
	parent      *layer.Group
	index       int
	prev        layer.Node
	placeholder *layer.Leaf
}

// NewRemoveLayer creates a command removing n (nil for the current layer).
// A cel that frames still bind, or a group holding one, is rejected with
// ErrCelBound.
func NewRemoveLayer(doc *document.Document, n layer.Node) (*RemoveLayer, error) {
	n, err := attached(doc, n)
	if err != nil {
		return nil, err
	}
	if cel := boundCel(doc, n); cel != nil {
		return nil, fmt.Errorf("remove %q: %w", doc.DisplayName(cel), ErrCelBound)
	}
	return &RemoveLayer{base: base{doc: doc, label: "Remove Layer"}, layer: n}, nil
}

// boundCel returns n, or a leaf inside n, if some frame binds it.
func boundCel(doc *document.Document, n layer.Node) *layer.Leaf {
	tl := doc.Timeline()
	if tl == nil {
		return nil
	}
	if l, ok := n.(*layer.Leaf); ok {
		if tl.CountCel(l) > 0 {
			return l
		}
		return nil
	}
	tr := doc.Tree()
	for _, l := range tr.Leaves() {
		if tr.IsAncestor(n, l) && tl.CountCel(l) > 0 {
			return l
		}
	}
	return nil
}

// Layer returns the node this command removes.
func (c *RemoveLayer) Layer() layer.Node { return c.layer }

func (c *RemoveLayer) Redo() error {
	tr := c.doc.Tree()
	c.prev = c.doc.Current()
	bounds := c.layer.Bounds()
	parent, index, err := c.doc.Remove(c.layer)
	if err != nil {
		return err
	}
	c.parent, c.index = parent, index
	if tr.IsEmpty() {
		if c.placeholder == nil {
			c.placeholder = layer.NewLeaf("")
		}
		if err := c.doc.Insert(tr.Root(), 0, c.placeholder); err != nil {
			return err
		}
		if err := c.doc.SetCurrent(c.placeholder); err != nil {
			return err
		}
	} else if err := reselect(c.doc, parent, index); err != nil {
		return err
	}
	c.doc.NotifyRect(bounds)
	c.doc.NotifyChanged()
	return nil
}

func (c *RemoveLayer) Undo() error {
	tr := c.doc.Tree()
	if c.placeholder != nil && tr.Contains(c.placeholder) {
		if _, _, err := c.doc.Remove(c.placeholder); err != nil {
			return err
		}
	}
	if err := c.doc.Insert(c.parent, c.index, c.layer); err != nil {
		return err
	}
	if err := c.doc.SetCurrent(c.prev); err != nil {
		return err
	}
	c.prev = nil
	c.doc.NotifyCanvas(c.layer)
	c.doc.NotifyChanged()
	return nil
}

// DuplicateLayer inserts a copy of a leaf directly above it.
type DuplicateLayer struct {
	base
	source *layer.Leaf
	copy   *layer.Leaf
}

// NewDuplicateLayer creates a command duplicating src (nil for the
// current layer) under the given name. The copy is taken immediately.
func NewDuplicateLayer(doc *document.Document, src layer.Node, name string) (*DuplicateLayer, error) {
	l, err := attachedLeaf(doc, src)
	if err != nil {
		return nil, err
	}
	return &DuplicateLayer{
		base:   base{doc: doc, label: "Duplicate Layer"},
		source: l,
		copy:   l.Copy(name),
	}, nil
}

// Copy returns the duplicate leaf.
func (c *DuplicateLayer) Copy() *layer.Leaf { return c.copy }

func (c *DuplicateLayer) Redo() error {
	tr := c.doc.Tree()
	if err := c.doc.Insert(tr.Parent(c.source), tr.Index(c.source)+1, c.copy); err != nil {
		return err
	}
	c.doc.NotifyCanvas(c.copy)
	c.doc.NotifyChanged()
	return nil
}

func (c *DuplicateLayer) Undo() error {
	parent, index, err := c.doc.Remove(c.copy)
	if err != nil {
		return err
	}
	if err := reselect(c.doc, parent, index); err != nil {
		return err
	}
	c.doc.NotifyCanvas(c.source)
	c.doc.NotifyChanged()
	return nil
}

// ReorderSingleLayer moves one layer to a new index, optionally into
// another group, optionally selecting it.
type ReorderSingleLayer struct {
	base
	layer     layer.Node
	newParent *layer.Group
	newIndex  int
	selectNew bool

	oldParent *layer.Group
	oldIndex  int
	prev      layer.Node
}

// NewReorderSingleLayer creates a command moving n to index within
// newParent (nil keeps the current parent).
func NewReorderSingleLayer(doc *document.Document, n layer.Node, index int, selectNew bool, newParent *layer.Group) (*ReorderSingleLayer, error) {
	n, err := attached(doc, n)
	if err != nil {
		return nil, err
	}
	if newParent != nil {
		if _, err := groupOrRoot(doc, newParent); err != nil {
			return nil, err
		}
		if layer.Node(newParent) == n || doc.Tree().IsAncestor(n, newParent) {
			return nil, fmt.Errorf("move %q into %q: %w", n.Name(), newParent.Name(), layer.ErrCycle)
		}
	}
	return &ReorderSingleLayer{
		base:      base{doc: doc, label: "Reorder Layer in Stack"},
		layer:     n,
		newParent: newParent,
		newIndex:  index,
		selectNew: selectNew,
	}, nil
}

func (c *ReorderSingleLayer) Redo() error {
	tr := c.doc.Tree()
	oldParent, oldIndex, err := tr.Remove(c.layer)
	if err != nil {
		return err
	}
	c.oldParent, c.oldIndex = oldParent, oldIndex
	dst := c.newParent
	if dst == nil {
		dst = oldParent
	}
	if err := tr.Insert(dst, c.newIndex, c.layer); err != nil {
		if rerr := tr.Insert(oldParent, oldIndex, c.layer); rerr != nil {
			return fmt.Errorf("%w (restore: %v)", err, rerr)
		}
		return err
	}
	if c.selectNew {
		c.prev = c.doc.Current()
		if err := c.doc.SetCurrent(c.layer); err != nil {
			return err
		}
	}
	c.doc.NotifyCanvas(c.layer)
	c.doc.NotifyChanged()
	return nil
}

func (c *ReorderSingleLayer) Undo() error {
	tr := c.doc.Tree()
	if _, _, err := tr.Remove(c.layer); err != nil {
		return err
	}
	if err := tr.Insert(c.oldParent, c.oldIndex, c.layer); err != nil {
		return err
	}
	if c.selectNew {
		if err := c.doc.SetCurrent(c.prev); err != nil {
			return err
		}
		c.prev = nil
	}
	c.doc.NotifyCanvas(c.layer)
	c.doc.NotifyChanged()
	return nil
}

// ReorderLayers replaces the child order of a group with a permutation
// of the same children.
type ReorderLayers struct {
	base
	group    *layer.Group
	oldOrder []layer.Node
	newOrder []layer.Node
}

// NewReorderLayers creates a command reordering the children of group
// (nil for the root).
func NewReorderLayers(doc *document.Document, group *layer.Group, order []layer.Node) (*ReorderLayers, error) {
	group, err := groupOrRoot(doc, group)
	if err != nil {
		return nil, err
	}
	if err := isPermutation(group, order); err != nil {
		return nil, err
	}
	newOrder := make([]layer.Node, len(order))
	copy(newOrder, order)
	return &ReorderLayers{
		base:     base{doc: doc, label: "Reorder Layer Stack"},
		group:    group,
		oldOrder: group.Children(),
		newOrder: newOrder,
	}, nil
}

func isPermutation(g *layer.Group, order []layer.Node) error {
	if len(order) != g.Len() {
		return fmt.Errorf("reorder %d layers of %d: %w", len(order), g.Len(), layer.ErrNotPermutation)
	}
	seen := make(map[layer.ID]bool, len(order))
	for _, n := range order {
		if n == nil || g.IndexOf(n) < 0 || seen[n.ID()] {
			return fmt.Errorf("reorder: %w", layer.ErrNotPermutation)
		}
		seen[n.ID()] = true
	}
	return nil
}

func (c *ReorderLayers) apply(order []layer.Node) error {
	if err := c.doc.Tree().Reorder(c.group, order); err != nil {
		return err
	}
	c.doc.NotifyCanvas(order...)
	c.doc.NotifyChanged()
	return nil
}

func (c *ReorderLayers) Redo() error { return c.apply(c.newOrder) }
func (c *ReorderLayers) Undo() error { return c.apply(c.oldOrder) }

// MoveLayer translates a layer's content. Commands created after an
// interactive drag skip their first redo, since the content was already
// moved while dragging.
type MoveLayer struct {
	base
	layer           layer.Node
	dx, dy          int
	ignoreFirstRedo bool
}

// NewMoveLayer creates a command translating n (nil for the current
// layer) by (dx, dy). Groups translate every leaf they contain.
func NewMoveLayer(doc *document.Document, n layer.Node, dx, dy int, ignoreFirstRedo bool) (*MoveLayer, error) {
	n, err := attached(doc, n)
	if err != nil {
		return nil, err
	}
	return &MoveLayer{
		base:            base{doc: doc, label: "Move Layer on Canvas"},
		layer:           n,
		dx:              dx,
		dy:              dy,
		ignoreFirstRedo: ignoreFirstRedo,
	}, nil
}

// Translate shifts every leaf in n by (dx, dy).
func Translate(n layer.Node, dx, dy int) {
	switch v := n.(type) {
	case *layer.Leaf:
		v.Translate(dx, dy)
	case *layer.Group:
		for _, c := range v.Children() {
			Translate(c, dx, dy)
		}
	}
}

func (c *MoveLayer) move(dx, dy int) {
	before := c.layer.Bounds()
	Translate(c.layer, dx, dy)
	c.doc.NotifyRect(before.Union(c.layer.Bounds()))
	c.doc.NotifyChanged()
}

func (c *MoveLayer) Redo() error {
	if c.ignoreFirstRedo {
		c.ignoreFirstRedo = false
		c.doc.NotifyCanvas(c.layer)
		c.doc.NotifyChanged()
		return nil
	}
	c.move(c.dx, c.dy)
	return nil
}

func (c *MoveLayer) Undo() error {
	c.move(-c.dx, -c.dy)
	return nil
}

// SelectLayer changes the current layer. It is automatic: selections do
// not count toward the history cap.
type SelectLayer struct {
	base
	layer layer.Node
	prev  layer.Node
}

// NewSelectLayer creates a command selecting n.
func NewSelectLayer(doc *document.Document, n layer.Node) (*SelectLayer, error) {
	if n == nil {
		return nil, document.ErrNoLayer
	}
	n, err := attached(doc, n)
	if err != nil {
		return nil, err
	}
	return &SelectLayer{base: base{doc: doc, label: "Select Layer", automatic: true}, layer: n}, nil
}

func (c *SelectLayer) Redo() error {
	c.prev = c.doc.Current()
	if err := c.doc.SetCurrent(c.layer); err != nil {
		return err
	}
	c.doc.NotifyChanged()
	return nil
}

func (c *SelectLayer) Undo() error {
	if err := c.doc.SetCurrent(c.prev); err != nil {
		return err
	}
	c.prev = nil
	c.doc.NotifyChanged()
	return nil
}
