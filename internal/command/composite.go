package command

import (
	"fmt"

	"github.com/dshills/strata/internal/document"
	"github.com/dshills/strata/internal/layer"
)

// ConvertLayerToNormalMode bakes a leaf's blend mode and opacity into its
// pixels, then sets the mode to normal and the opacity to 1.
type ConvertLayerToNormalMode struct {
	base
	layer   *layer.Leaf
	mode    *SetLayerCompositeOp
	opacity *SetLayerOpacity
	before  *layer.Snapshot
}

// NewConvertLayerToNormalMode creates a conversion of n (nil for the
// current layer).
func NewConvertLayerToNormalMode(doc *document.Document, n layer.Node) (*ConvertLayerToNormalMode, error) {
	l, err := editableLeaf(doc, n)
	if err != nil {
		return nil, err
	}
	mode, err := NewSetLayerCompositeOp(doc, l, layer.BlendNormal)
	if err != nil {
		return nil, err
	}
	opacity, err := NewSetLayerOpacity(doc, l, 1)
	if err != nil {
		return nil, err
	}
	return &ConvertLayerToNormalMode{
		base:    base{doc: doc, label: "Convert to Normal Mode"},
		layer:   l,
		mode:    mode,
		opacity: opacity,
	}, nil
}

func (c *ConvertLayerToNormalMode) Redo() error {
	c.before = c.layer.SaveSnapshot()
	c.layer.ConvertToNormalMode(c.doc.RenderBehind(c.layer))
	if err := c.mode.Redo(); err != nil {
		c.layer.LoadSnapshot(c.before)
		return err
	}
	if err := c.opacity.Redo(); err != nil {
		if uerr := c.mode.Undo(); uerr != nil {
			err = fmt.Errorf("%w (rollback: %v)", err, uerr)
		}
		c.layer.LoadSnapshot(c.before)
		return err
	}
	c.doc.NotifyCanvas(c.layer)
	return nil
}

func (c *ConvertLayerToNormalMode) Undo() error {
	if err := c.opacity.Undo(); err != nil {
		return err
	}
	if err := c.mode.Undo(); err != nil {
		return err
	}
	c.layer.LoadSnapshot(c.before)
	c.before = nil
	c.doc.NotifyCanvas(c.layer)
	return nil
}

// MergeLayer merges a source leaf into a destination leaf and removes the
// source. Both are normalized first so the result keeps its appearance.
type MergeLayer struct {
	base
	src, dst  *layer.Leaf
	normSrc   *ConvertLayerToNormalMode
	normDst   *ConvertLayerToNormalMode
	remove    *RemoveLayer
	selectDst *SelectLayer
	dstBefore *layer.Snapshot
	steps     sequence
}

// NewMergeLayer creates a merge of src into dst.
func NewMergeLayer(doc *document.Document, src, dst layer.Node) (*MergeLayer, error) {
	if src == nil || dst == nil {
		return nil, document.ErrNoLayer
	}
	if src == dst {
		return nil, fmt.Errorf("merge %q: %w", src.Name(), ErrMergeIntoSelf)
	}
	s, err := attachedLeaf(doc, src)
	if err != nil {
		return nil, err
	}
	d, err := editableLeaf(doc, dst)
	if err != nil {
		return nil, err
	}
	c := &MergeLayer{base: base{doc: doc, label: "Merge Layers"}, src: s, dst: d}
	if c.normSrc, err = NewConvertLayerToNormalMode(doc, s); err != nil {
		return nil, err
	}
	if c.normDst, err = NewConvertLayerToNormalMode(doc, d); err != nil {
		return nil, err
	}
	if c.remove, err = NewRemoveLayer(doc, s); err != nil {
		return nil, err
	}
	c.steps = sequence{
		{redo: c.normSrc.Redo, undo: c.normSrc.Undo},
		{redo: c.normDst.Redo, undo: c.normDst.Undo},
		{redo: c.merge, undo: c.unmerge},
		{redo: c.remove.Redo, undo: c.remove.Undo},
		{redo: c.selectRedo, undo: c.selectUndo},
	}
	return c, nil
}

// Source returns the merged-away leaf.
func (c *MergeLayer) Source() *layer.Leaf { return c.src }

// Destination returns the leaf that receives the merge.
func (c *MergeLayer) Destination() *layer.Leaf { return c.dst }

func (c *MergeLayer) merge() error {
	c.dstBefore = c.dst.SaveSnapshot()
	c.src.MergeInto(c.dst)
	c.doc.NotifyCanvas(c.dst, c.src)
	return nil
}

func (c *MergeLayer) unmerge() error {
	c.dst.LoadSnapshot(c.dstBefore)
	c.dstBefore = nil
	c.doc.NotifyCanvas(c.dst, c.src)
	return nil
}

func (c *MergeLayer) selectRedo() error {
	sel, err := NewSelectLayer(c.doc, c.dst)
	if err != nil {
		return err
	}
	if err := sel.Redo(); err != nil {
		return err
	}
	c.selectDst = sel
	return nil
}

func (c *MergeLayer) selectUndo() error {
	if c.selectDst == nil {
		return nil
	}
	if err := c.selectDst.Undo(); err != nil {
		return err
	}
	c.selectDst = nil
	return nil
}

func (c *MergeLayer) Redo() error {
	if err := c.steps.redo(); err != nil {
		return err
	}
	c.doc.NotifyChanged()
	return nil
}

func (c *MergeLayer) Undo() error {
	if err := c.steps.undo(); err != nil {
		return err
	}
	c.doc.NotifyChanged()
	return nil
}
