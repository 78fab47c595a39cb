package command

import (
	"fmt"

	"github.com/dshills/strata/internal/document"
	"github.com/dshills/strata/internal/history"
	"github.com/dshills/strata/internal/layer"
)

// RenameLayer changes a layer's name.
type RenameLayer struct {
	base
	layer   layer.Node
	newName string
	oldName string
}

// NewRenameLayer creates a command renaming n (nil for the current layer).
func NewRenameLayer(doc *document.Document, n layer.Node, name string) (*RenameLayer, error) {
	n, err := attached(doc, n)
	if err != nil {
		return nil, err
	}
	return &RenameLayer{base: base{doc: doc, label: "Rename Layer"}, layer: n, newName: name}, nil
}

func (c *RenameLayer) Redo() error {
	c.oldName = c.layer.Name()
	c.layer.SetName(c.newName)
	c.doc.NotifyChanged()
	return nil
}

func (c *RenameLayer) Undo() error {
	c.layer.SetName(c.oldName)
	c.doc.NotifyChanged()
	return nil
}

// SetLayerVisibility shows or hides a layer.
type SetLayerVisibility struct {
	base
	layer  layer.Node
	newVal bool
	oldVal bool
}

// NewSetLayerVisibility creates a command setting n's visibility.
func NewSetLayerVisibility(doc *document.Document, n layer.Node, visible bool) (*SetLayerVisibility, error) {
	n, err := attached(doc, n)
	if err != nil {
		return nil, err
	}
	return &SetLayerVisibility{base: base{doc: doc}, layer: n, newVal: visible}, nil
}

// Layer returns the target layer.
func (c *SetLayerVisibility) Layer() layer.Node { return c.layer }

// Description implements history.Action.
func (c *SetLayerVisibility) Description() string {
	if c.newVal {
		return "Make Layer Visible"
	}
	return "Make Layer Invisible"
}

func (c *SetLayerVisibility) set(v bool) {
	c.layer.SetVisible(v)
	c.doc.NotifyCanvas(c.layer)
	c.doc.NotifyChanged()
}

func (c *SetLayerVisibility) Redo() error {
	c.oldVal = c.layer.Visible()
	c.set(c.newVal)
	return nil
}

func (c *SetLayerVisibility) Undo() error {
	c.set(c.oldVal)
	return nil
}

// Amend replaces the visibility this command applies. The patch must
// be a bool.
func (c *SetLayerVisibility) Amend(patch any) error {
	v, ok := patch.(bool)
	if !ok {
		return fmt.Errorf("visibility patch %T: %w", patch, history.ErrPatchMismatch)
	}
	c.newVal = v
	c.set(v)
	return nil
}

// SetLayerLocked locks or unlocks a layer.
type SetLayerLocked struct {
	base
	layer  layer.Node
	newVal bool
	oldVal bool
}

// NewSetLayerLocked creates a command setting n's lock flag.
func NewSetLayerLocked(doc *document.Document, n layer.Node, locked bool) (*SetLayerLocked, error) {
	n, err := attached(doc, n)
	if err != nil {
		return nil, err
	}
	return &SetLayerLocked{base: base{doc: doc}, layer: n, newVal: locked}, nil
}

// Layer returns the target layer.
func (c *SetLayerLocked) Layer() layer.Node { return c.layer }

// Description implements history.Action.
func (c *SetLayerLocked) Description() string {
	if c.newVal {
		return "Lock Layer"
	}
	return "Unlock Layer"
}

func (c *SetLayerLocked) set(v bool) {
	c.layer.SetLocked(v)
	c.doc.NotifyCanvas(c.layer)
	c.doc.NotifyChanged()
}

func (c *SetLayerLocked) Redo() error {
	c.oldVal = c.layer.Locked()
	c.set(c.newVal)
	return nil
}

func (c *SetLayerLocked) Undo() error {
	c.set(c.oldVal)
	return nil
}

// Amend replaces the lock state this command applies. The patch must be
// a bool.
func (c *SetLayerLocked) Amend(patch any) error {
	v, ok := patch.(bool)
	if !ok {
		return fmt.Errorf("lock patch %T: %w", patch, history.ErrPatchMismatch)
	}
	c.newVal = v
	c.set(v)
	return nil
}

// SetLayerOpacity changes a layer's opacity. Canvas observers are only
// told when the effective opacity actually changes.
type SetLayerOpacity struct {
	base
	layer  layer.Node
	newVal float64
	oldVal float64
}

// NewSetLayerOpacity creates a command setting n's opacity, clamped to [0, 1].
func NewSetLayerOpacity(doc *document.Document, n layer.Node, opacity float64) (*SetLayerOpacity, error) {
	n, err := attached(doc, n)
	if err != nil {
		return nil, err
	}
	return &SetLayerOpacity{base: base{doc: doc}, layer: n, newVal: clampUnit(opacity)}, nil
}

func clampUnit(v float64) float64 {
	return max(0, min(v, 1))
}

// Layer returns the target layer.
func (c *SetLayerOpacity) Layer() layer.Node { return c.layer }

// Opacity returns the value this command applies.
func (c *SetLayerOpacity) Opacity() float64 { return c.newVal }

// Description implements history.Action.
func (c *SetLayerOpacity) Description() string {
	return fmt.Sprintf("Set Layer Opacity to %d%%", int(c.newVal*100+0.5))
}

func (c *SetLayerOpacity) set(v float64) {
	tr := c.doc.Tree()
	before := tr.EffectiveOpacity(c.layer)
	c.layer.SetOpacity(v)
	if tr.EffectiveOpacity(c.layer) != before {
		c.doc.NotifyCanvas(c.layer)
	}
	c.doc.NotifyChanged()
}

func (c *SetLayerOpacity) Redo() error {
	c.oldVal = c.layer.Opacity()
	c.set(c.newVal)
	return nil
}

func (c *SetLayerOpacity) Undo() error {
	c.set(c.oldVal)
	return nil
}

// Amend replaces the opacity this command applies. The patch must be a
// float64.
func (c *SetLayerOpacity) Amend(patch any) error {
	v, ok := patch.(float64)
	if !ok {
		return fmt.Errorf("opacity patch %T: %w", patch, history.ErrPatchMismatch)
	}
	c.newVal = clampUnit(v)
	c.set(c.newVal)
	return nil
}

// SetLayerCompositeOp changes a leaf's blend mode.
type SetLayerCompositeOp struct {
	base
	layer  *layer.Leaf
	newVal layer.BlendMode
	oldVal layer.BlendMode
}

// NewSetLayerCompositeOp creates a command setting the blend mode of n
// (nil for the current layer), which must be a leaf.
func NewSetLayerCompositeOp(doc *document.Document, n layer.Node, mode layer.BlendMode) (*SetLayerCompositeOp, error) {
	l, err := attachedLeaf(doc, n)
	if err != nil {
		return nil, err
	}
	return &SetLayerCompositeOp{base: base{doc: doc}, layer: l, newVal: mode}, nil
}

// Layer returns the target layer.
func (c *SetLayerCompositeOp) Layer() layer.Node { return c.layer }

// Mode returns the blend mode this command applies.
func (c *SetLayerCompositeOp) Mode() layer.BlendMode { return c.newVal }

// Description implements history.Action.
func (c *SetLayerCompositeOp) Description() string {
	return fmt.Sprintf("Set Blending Mode to %s", c.newVal.DisplayName())
}

func (c *SetLayerCompositeOp) set(m layer.BlendMode) {
	c.layer.SetBlendMode(m)
	c.doc.NotifyCanvas(c.layer)
	c.doc.NotifyChanged()
}

func (c *SetLayerCompositeOp) Redo() error {
	c.oldVal = c.layer.BlendMode()
	c.set(c.newVal)
	return nil
}

func (c *SetLayerCompositeOp) Undo() error {
	c.set(c.oldVal)
	return nil
}

// Amend replaces the mode this command applies. The patch must be a
// layer.BlendMode.
func (c *SetLayerCompositeOp) Amend(patch any) error {
	m, ok := patch.(layer.BlendMode)
	if !ok {
		return fmt.Errorf("blend mode patch %T: %w", patch, history.ErrPatchMismatch)
	}
	c.newVal = m
	c.set(m)
	return nil
}
