package layer

import (
	"errors"
	"reflect"
	"testing"
)

func newTestTree(t *testing.T, names ...string) (*Tree, []*Leaf) {
	t.Helper()
	tr := NewTree()
	var leaves []*Leaf
	for _, name := range names {
		l := NewLeaf(name)
		if err := tr.Insert(tr.Root(), -1, l); err != nil {
			t.Fatalf("Insert(%q) failed: %v", name, err)
		}
		leaves = append(leaves, l)
	}
	return tr, leaves
}

// Tree Tests

func TestTreeInsertAndIndex(t *testing.T) {
	tr, ls := newTestTree(t, "a", "b", "c")

	if tr.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", tr.Len())
	}
	for i, l := range ls {
		if got := tr.Index(l); got != i {
			t.Errorf("Index(%s) = %d, want %d", l.Name(), got, i)
		}
		if tr.Parent(l) != tr.Root() {
			t.Errorf("Parent(%s) is not root", l.Name())
		}
	}

	d := NewLeaf("d")
	if err := tr.Insert(tr.Root(), 1, d); err != nil {
		t.Fatal(err)
	}
	if got := tr.Index(d); got != 1 {
		t.Errorf("Index(d) = %d, want 1", got)
	}
	if got := tr.Index(ls[1]); got != 2 {
		t.Errorf("Index(b) = %d, want 2", got)
	}
}

func TestTreeInsertRejects(t *testing.T) {
	tr, ls := newTestTree(t, "a")
	g := NewGroup("g")
	if err := tr.Insert(tr.Root(), -1, g); err != nil {
		t.Fatal(err)
	}
	inner := NewGroup("inner")
	if err := tr.Insert(g, -1, inner); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name   string
		parent *Group
		node   Node
		want   error
	}{
		{"duplicate", tr.Root(), ls[0], ErrAlreadyInTree},
		{"detached parent", NewGroup("x"), NewLeaf("y"), ErrNotInTree},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tr.Insert(tt.parent, -1, tt.node)
			if !errors.Is(err, tt.want) {
				t.Errorf("Insert() error = %v, want %v", err, tt.want)
			}
		})
	}

	// A detached group can be reattached under its former child.
	if _, _, err := tr.Remove(inner); err != nil {
		t.Fatal(err)
	}
	if _, _, err := tr.Remove(g); err != nil {
		t.Fatal(err)
	}
	if err := tr.Insert(tr.Root(), -1, inner); err != nil {
		t.Fatal(err)
	}
	if err := tr.Insert(inner, -1, g); err != nil {
		t.Fatalf("inserting a detached group should work: %v", err)
	}
	if err := tr.Insert(g, -1, NewLeaf("z")); err != nil {
		t.Fatal(err)
	}
}

func TestTreeCycleRejected(t *testing.T) {
	tr := NewTree()
	outer := NewGroup("outer")
	inner := NewGroup("inner")
	if err := tr.Insert(tr.Root(), -1, outer); err != nil {
		t.Fatal(err)
	}
	if err := tr.Insert(outer, -1, inner); err != nil {
		t.Fatal(err)
	}
	if _, _, err := tr.Remove(outer); err != nil {
		t.Fatal(err)
	}
	// outer still owns inner while detached; inner is not in the tree.
	if tr.Contains(inner) {
		t.Fatal("inner should be detached with outer")
	}
	if err := tr.Insert(tr.Root(), -1, outer); err != nil {
		t.Fatal(err)
	}
	if !tr.Contains(inner) {
		t.Fatal("reinserting outer should register inner")
	}
	if err := tr.Insert(tr.Root(), -1, tr.Root()); !errors.Is(err, ErrAlreadyInTree) {
		t.Errorf("inserting root: error = %v", err)
	}
}

func TestTreeRemove(t *testing.T) {
	tr, ls := newTestTree(t, "a", "b", "c")

	parent, idx, err := tr.Remove(ls[1])
	if err != nil {
		t.Fatal(err)
	}
	if parent != tr.Root() || idx != 1 {
		t.Errorf("Remove() = (%v, %d), want (root, 1)", parent.Name(), idx)
	}
	if tr.Contains(ls[1]) {
		t.Error("removed node still contained")
	}
	if tr.Parent(ls[1]) != nil {
		t.Error("removed node still has a parent")
	}
	if _, _, err := tr.Remove(ls[1]); !errors.Is(err, ErrNotInTree) {
		t.Errorf("second Remove() error = %v, want ErrNotInTree", err)
	}
	if _, _, err := tr.Remove(tr.Root()); !errors.Is(err, ErrRoot) {
		t.Errorf("Remove(root) error = %v, want ErrRoot", err)
	}
}

func TestTreePath(t *testing.T) {
	tr, ls := newTestTree(t, "a", "b")
	g := NewGroup("g")
	if err := tr.Insert(tr.Root(), -1, g); err != nil {
		t.Fatal(err)
	}
	c := NewLeaf("c")
	if err := tr.Insert(g, 0, c); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		node Node
		want []int
	}{
		{tr.Root(), []int{}},
		{ls[0], []int{0}},
		{ls[1], []int{1}},
		{g, []int{2}},
		{c, []int{2, 0}},
		{NewLeaf("detached"), nil},
	}
	for _, tt := range tests {
		t.Run(tt.node.Name(), func(t *testing.T) {
			got := tr.Path(tt.node)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Path() = %v, want %v", got, tt.want)
			}
			if tt.want == nil {
				return
			}
			n, err := tr.NodeAt(got)
			if err != nil || n != tt.node {
				t.Errorf("NodeAt(%v) = %v, %v", got, n, err)
			}
		})
	}
	if _, err := tr.NodeAt([]int{0, 1}); !errors.Is(err, ErrIndexOutOfRange) {
		t.Errorf("NodeAt into leaf: error = %v", err)
	}
}

func TestTreeReorder(t *testing.T) {
	tr, ls := newTestTree(t, "a", "b", "c")

	if err := tr.Reorder(tr.Root(), []Node{ls[2], ls[0], ls[1]}); err != nil {
		t.Fatal(err)
	}
	if got := tr.Index(ls[2]); got != 0 {
		t.Errorf("Index(c) = %d, want 0", got)
	}

	bad := [][]Node{
		{ls[0], ls[1]},
		{ls[0], ls[0], ls[1]},
		{ls[0], ls[1], NewLeaf("x")},
	}
	for _, order := range bad {
		if err := tr.Reorder(tr.Root(), order); !errors.Is(err, ErrNotPermutation) {
			t.Errorf("Reorder(%d nodes) error = %v, want ErrNotPermutation", len(order), err)
		}
	}
}

func TestTreeWalkTopFirst(t *testing.T) {
	tr, _ := newTestTree(t, "a", "b")
	g := NewGroup("g")
	if err := tr.Insert(tr.Root(), -1, g); err != nil {
		t.Fatal(err)
	}
	if err := tr.Insert(g, -1, NewLeaf("c")); err != nil {
		t.Fatal(err)
	}

	var got []string
	var depths []int
	tr.Walk(func(n Node, depth int) bool {
		got = append(got, n.Name())
		depths = append(depths, depth)
		return true
	})
	if want := []string{"g", "c", "b", "a"}; !reflect.DeepEqual(got, want) {
		t.Errorf("Walk() order = %v, want %v", got, want)
	}
	if want := []int{0, 1, 0, 0}; !reflect.DeepEqual(depths, want) {
		t.Errorf("Walk() depths = %v, want %v", depths, want)
	}

	var leaves []string
	for _, l := range tr.Leaves() {
		leaves = append(leaves, l.Name())
	}
	if want := []string{"a", "b", "c"}; !reflect.DeepEqual(leaves, want) {
		t.Errorf("Leaves() = %v, want %v", leaves, want)
	}
}

func TestTreeEffectiveOpacity(t *testing.T) {
	tr := NewTree()
	g := NewGroup("g")
	l := NewLeaf("l")
	if err := tr.Insert(tr.Root(), -1, g); err != nil {
		t.Fatal(err)
	}
	if err := tr.Insert(g, -1, l); err != nil {
		t.Fatal(err)
	}
	g.SetOpacity(0.5)
	l.SetOpacity(0.5)
	if got := tr.EffectiveOpacity(l); got != 0.25 {
		t.Errorf("EffectiveOpacity() = %v, want 0.25", got)
	}
	g.SetVisible(false)
	if got := tr.EffectiveOpacity(l); got != 0 {
		t.Errorf("EffectiveOpacity() with hidden parent = %v, want 0", got)
	}
}

func TestTreeFindAndBelow(t *testing.T) {
	tr, ls := newTestTree(t, "a", "b", "c")
	n, ok := tr.Find("b")
	if !ok || n != ls[1] {
		t.Fatalf("Find(b) = %v, %v", n, ok)
	}
	if _, ok := tr.Find("missing"); ok {
		t.Error("Find(missing) should fail")
	}
	below := tr.Below(ls[2])
	if len(below) != 2 || below[0] != ls[0] || below[1] != ls[1] {
		t.Errorf("Below(c) = %v", below)
	}
	if got := tr.Below(ls[0]); len(got) != 0 {
		t.Errorf("Below(a) = %v, want none", got)
	}
}
