package command

import (
	"testing"

	"github.com/dshills/strata/internal/document"
	"github.com/dshills/strata/internal/history"
	"github.com/dshills/strata/internal/layer"
)

// newDoc returns a document whose root holds one leaf per name, bottom
// first. The first leaf is current.
func newDoc(t *testing.T, names ...string) (*document.Document, []*layer.Leaf) {
	t.Helper()
	doc := document.New()
	first := doc.Current().(*layer.Leaf)
	first.SetName(names[0])
	leaves := []*layer.Leaf{first}
	for _, n := range names[1:] {
		l := layer.NewLeaf(n)
		if err := doc.Insert(doc.Root(), -1, l); err != nil {
			t.Fatal(err)
		}
		leaves = append(leaves, l)
	}
	return doc, leaves
}

func must[T any](v T, err error) T {
	if err != nil {
		panic(err)
	}
	return v
}

func do(t *testing.T, s *history.Stack, a history.Action) {
	t.Helper()
	if err := s.Do(a); err != nil {
		t.Fatalf("Do(%s) error = %v", a.Description(), err)
	}
}

func undo(t *testing.T, s *history.Stack) {
	t.Helper()
	if _, err := s.Undo(); err != nil {
		t.Fatalf("Undo() error = %v", err)
	}
}

func redo(t *testing.T, s *history.Stack) {
	t.Helper()
	if _, err := s.Redo(); err != nil {
		t.Fatalf("Redo() error = %v", err)
	}
}

// childNames lists the names of g's children, bottom first.
func childNames(g *layer.Group) []string {
	var out []string
	for _, c := range g.Children() {
		out = append(out, c.Name())
	}
	return out
}

func equalNames(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
