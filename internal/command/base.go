package command

import (
	"fmt"

	"github.com/dshills/strata/internal/document"
	"github.com/dshills/strata/internal/layer"
)

// base carries what every command shares.
type base struct {
	doc       *document.Document
	label     string
	automatic bool
}

// Description implements history.Action.
func (b *base) Description() string { return b.label }

// Automatic implements history.Action.
func (b *base) Automatic() bool { return b.automatic }

// attached returns n, or the current layer when n is nil, after checking
// that it is a non-root node of the document's tree.
func attached(doc *document.Document, n layer.Node) (layer.Node, error) {
	if n == nil {
		n = doc.Current()
	}
	if !doc.Tree().Contains(n) || layer.Node(doc.Root()) == n {
		return nil, fmt.Errorf("layer %q: %w", n.Name(), document.ErrNotInTree)
	}
	return n, nil
}

// attachedLeaf is attached restricted to leaves.
func attachedLeaf(doc *document.Document, n layer.Node) (*layer.Leaf, error) {
	n, err := attached(doc, n)
	if err != nil {
		return nil, err
	}
	l, ok := n.(*layer.Leaf)
	if !ok {
		return nil, fmt.Errorf("layer %q: %w", n.Name(), document.ErrNotLeaf)
	}
	return l, nil
}

// editableLeaf is attachedLeaf that also rejects locked layers.
func editableLeaf(doc *document.Document, n layer.Node) (*layer.Leaf, error) {
	l, err := attachedLeaf(doc, n)
	if err != nil {
		return nil, err
	}
	if l.Locked() {
		return nil, fmt.Errorf("layer %q: %w", l.Name(), ErrLayerLocked)
	}
	return l, nil
}

// groupOrRoot returns g, or the root for nil, checking it is attached.
func groupOrRoot(doc *document.Document, g *layer.Group) (*layer.Group, error) {
	if g == nil {
		return doc.Root(), nil
	}
	if !doc.Tree().Contains(g) {
		return nil, fmt.Errorf("group %q: %w", g.Name(), document.ErrNotInTree)
	}
	return g, nil
}

// reselect moves the selection to a neighbor of a node just removed from
// parent at index, if the selection went with it.
func reselect(doc *document.Document, parent *layer.Group, index int) error {
	tr := doc.Tree()
	if tr.Contains(doc.Current()) {
		return nil
	}
	var next layer.Node
	switch {
	case index-1 >= 0 && index-1 < parent.Len():
		next = parent.At(index - 1)
	case index < parent.Len():
		next = parent.At(index)
	case parent != tr.Root() && tr.Contains(parent):
		next = parent
	default:
		next = tr.Root().At(tr.Root().Len() - 1)
	}
	return doc.SetCurrent(next)
}

// step is one reversible part of a composite command.
type step struct {
	redo func() error
	undo func() error
}

// sequence applies steps in order and reverses them in the opposite
// order. A failing redo reverses the steps already applied.
type sequence []step

func (s sequence) redo() error {
	for i, st := range s {
		if err := st.redo(); err != nil {
			if uerr := s[:i].undo(); uerr != nil {
				return fmt.Errorf("step %d: %w (rollback: %v)", i, err, uerr)
			}
			return fmt.Errorf("step %d: %w", i, err)
		}
	}
	return nil
}

func (s sequence) undo() error {
	for i := len(s) - 1; i >= 0; i-- {
		if err := s[i].undo(); err != nil {
			return fmt.Errorf("undo step %d: %w", i, err)
		}
	}
	return nil
}
