package command

import (
	"github.com/dshills/strata/internal/document"
	"github.com/dshills/strata/internal/layer"
)

// Stroke records a free-hand stroke that has already been rendered onto
// its leaf. Redo and undo swap between the after and before snapshots.
type Stroke struct {
	base
	layer  *layer.Leaf
	stroke *layer.Stroke
	before *layer.Snapshot
	after  *layer.Snapshot
}

// NewStroke creates a command for a stroke already painted onto l.
// before must be the snapshot taken before painting started.
func NewStroke(doc *document.Document, l *layer.Leaf, s *layer.Stroke, before *layer.Snapshot) (*Stroke, error) {
	l, err := attachedLeaf(doc, l)
	if err != nil {
		return nil, err
	}
	return &Stroke{
		base:   base{doc: doc, label: "Painting"},
		layer:  l,
		stroke: s,
		before: before,
		after:  l.SaveSnapshot(),
	}, nil
}

// PaintStroke renders s onto n (nil for the current layer) and returns
// the command recording it. The command has not been executed on a
// history stack yet; its first redo reports the stroke.
func PaintStroke(doc *document.Document, n layer.Node, s *layer.Stroke) (*Stroke, error) {
	l, err := editableLeaf(doc, n)
	if err != nil {
		return nil, err
	}
	before := l.SaveSnapshot()
	l.AddStroke(s)
	return NewStroke(doc, l, s, before)
}

// Layer returns the painted leaf.
func (c *Stroke) Layer() *layer.Leaf { return c.layer }

func (c *Stroke) dirty() layer.Rect {
	return c.before.Bounds().Union(c.after.Bounds())
}

func (c *Stroke) Redo() error {
	c.layer.LoadSnapshot(c.after)
	c.doc.NotifyRect(c.dirty())
	if c.stroke != nil {
		c.doc.NotifyStroke(c.layer, c.stroke)
	}
	return nil
}

func (c *Stroke) Undo() error {
	c.layer.LoadSnapshot(c.before)
	c.doc.NotifyRect(c.dirty())
	return nil
}

// ClearLayer erases a leaf's content.
type ClearLayer struct {
	base
	layer  *layer.Leaf
	before *layer.Snapshot
}

// NewClearLayer creates a command clearing n (nil for the current layer).
func NewClearLayer(doc *document.Document, n layer.Node) (*ClearLayer, error) {
	l, err := editableLeaf(doc, n)
	if err != nil {
		return nil, err
	}
	return &ClearLayer{base: base{doc: doc, label: "Clear Layer"}, layer: l}, nil
}

func (c *ClearLayer) Redo() error {
	c.before = c.layer.SaveSnapshot()
	c.layer.Clear()
	c.doc.NotifyRect(c.before.Bounds())
	return nil
}

func (c *ClearLayer) Undo() error {
	c.layer.LoadSnapshot(c.before)
	c.doc.NotifyRect(c.before.Bounds())
	c.before = nil
	return nil
}

// LoadLayer replaces a leaf's content with a copy of an external surface.
type LoadLayer struct {
	base
	layer   *layer.Leaf
	surface *layer.Surface
	before  *layer.Snapshot
}

// NewLoadLayer creates a command loading surf into n (nil for the
// current layer). surf is copied at construction.
func NewLoadLayer(doc *document.Document, n layer.Node, surf *layer.Surface) (*LoadLayer, error) {
	l, err := editableLeaf(doc, n)
	if err != nil {
		return nil, err
	}
	return &LoadLayer{base: base{doc: doc, label: "Load Layer"}, layer: l, surface: surf.Clone()}, nil
}

func (c *LoadLayer) dirty() layer.Rect {
	return c.before.Bounds().Union(c.surface.Bounds())
}

func (c *LoadLayer) Redo() error {
	c.before = c.layer.SaveSnapshot()
	c.layer.LoadFromSurface(c.surface)
	c.doc.NotifyRect(c.dirty())
	return nil
}

func (c *LoadLayer) Undo() error {
	c.layer.LoadSnapshot(c.before)
	c.doc.NotifyRect(c.dirty())
	c.before = nil
	return nil
}
