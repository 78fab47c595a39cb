package layer

import "testing"

// Surface Tests

func TestSurfaceSetAt(t *testing.T) {
	s := NewSurface()
	red := RGB(1, 0, 0)
	points := [][2]int{{0, 0}, {63, 63}, {64, 0}, {-1, -1}, {-65, 130}}
	for _, p := range points {
		s.Set(p[0], p[1], red)
	}
	for _, p := range points {
		if got := s.At(p[0], p[1]); got != red {
			t.Errorf("At(%d,%d) = %v, want red", p[0], p[1], got)
		}
	}
	if got := s.At(5, 5); got != Transparent {
		t.Errorf("At(5,5) = %v, want transparent", got)
	}
	if got := len(s.Keys()); got != 4 {
		t.Errorf("Keys() = %d tiles, want 4", got)
	}
}

func TestSurfaceBounds(t *testing.T) {
	s := NewSurface()
	if !s.Bounds().IsEmpty() || !s.IsEmpty() {
		t.Fatal("new surface should be empty")
	}
	s.Set(70, 10, RGB(0, 1, 0))
	want := Rect{X: 64, Y: 0, W: 64, H: 64}
	if got := s.Bounds(); got != want {
		t.Errorf("Bounds() = %v, want %v", got, want)
	}
	s.Set(70, 10, Transparent)
	if !s.IsEmpty() {
		t.Error("surface with only transparent pixels should be empty")
	}
}

func TestSurfaceCloneIsCopyOnWrite(t *testing.T) {
	s := NewSurface()
	s.Set(1, 1, RGB(1, 1, 1))
	c := s.Clone()
	s.Set(1, 1, RGB(0, 0, 1))
	if got := c.At(1, 1); got != RGB(1, 1, 1) {
		t.Errorf("clone changed after write to original: %v", got)
	}
	c.Set(2, 2, RGB(1, 0, 0))
	if got := s.At(2, 2); got != Transparent {
		t.Errorf("original changed after write to clone: %v", got)
	}
}

func TestSurfaceEqual(t *testing.T) {
	a := NewSurface()
	b := NewSurface()
	if !a.Equal(b) {
		t.Fatal("empty surfaces should be equal")
	}
	a.Set(3, 3, RGB(1, 0, 0))
	if a.Equal(b) || b.Equal(a) {
		t.Fatal("surfaces with different pixels should differ")
	}
	b.Set(3, 3, RGB(1, 0, 0))
	if !a.Equal(b) {
		t.Fatal("surfaces with identical pixels should be equal")
	}
	// An allocated but transparent tile equals a missing one.
	b.Set(200, 200, RGB(1, 0, 0))
	b.Set(200, 200, Transparent)
	if !a.Equal(b) || !b.Equal(a) {
		t.Fatal("transparent tile should equal missing tile")
	}
}

func TestSurfaceTranslate(t *testing.T) {
	tests := []struct {
		name   string
		dx, dy int
	}{
		{"tile aligned", 64, -128},
		{"unaligned", 3, 70},
		{"negative", -5, -1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewSurface()
			s.Set(10, 20, RGB(1, 0, 0))
			s.Set(11, 20, RGB(0, 1, 0))
			s.Translate(tt.dx, tt.dy)
			if got := s.At(10+tt.dx, 20+tt.dy); got != RGB(1, 0, 0) {
				t.Errorf("moved pixel = %v", got)
			}
			if got := s.At(11+tt.dx, 20+tt.dy); got != RGB(0, 1, 0) {
				t.Errorf("moved neighbor = %v", got)
			}
			s.Translate(-tt.dx, -tt.dy)
			if got := s.At(10, 20); got != RGB(1, 0, 0) {
				t.Errorf("round trip pixel = %v", got)
			}
		})
	}
}

// Snapshot Tests

func TestSnapshotRestoresExactly(t *testing.T) {
	l := NewLeaf("paint")
	l.Surface().Set(5, 5, RGB(1, 0, 0))
	before := l.SaveSnapshot()

	st := NewStroke(DefaultBrush())
	st.Add(5, 5, 1)
	st.Add(40, 5, 1)
	l.AddStroke(st)
	after := l.SaveSnapshot()
	painted := l.Surface().Clone()

	l.LoadSnapshot(before)
	if got := l.Surface().At(20, 5); got != Transparent {
		t.Errorf("after loading before: At(20,5) = %v", got)
	}
	if got := l.Surface().At(5, 5); got != RGB(1, 0, 0) {
		t.Errorf("after loading before: At(5,5) = %v", got)
	}
	if len(l.Strokes()) != 0 {
		t.Errorf("strokes = %d, want 0", len(l.Strokes()))
	}

	// Writing after a load must not leak into the snapshot.
	l.Surface().Set(5, 5, RGB(0, 0, 1))
	l.LoadSnapshot(before)
	if got := l.Surface().At(5, 5); got != RGB(1, 0, 0) {
		t.Errorf("snapshot mutated by later write: At(5,5) = %v", got)
	}

	l.LoadSnapshot(after)
	if !l.Surface().Equal(painted) {
		t.Error("after snapshot does not reproduce the painted content")
	}
	if after.Strokes() != 1 || len(l.Strokes()) != 1 {
		t.Errorf("stroke record not restored")
	}
}

func TestStrokePaintsAlongPath(t *testing.T) {
	l := NewLeaf("s")
	st := NewStroke(Brush{Color: RGB(0, 0, 1), Radius: 3, Opacity: 1, Hardness: 0.9})
	st.Add(0, 0, 1)
	st.Add(100, 0, 1)
	area := l.AddStroke(st)
	for _, x := range []int{0, 25, 50, 75, 99} {
		if l.Surface().At(x, 0).A < 0.9 {
			t.Errorf("At(%d,0) alpha = %v, want painted", x, l.Surface().At(x, 0).A)
		}
	}
	if l.Surface().At(50, 20) != Transparent {
		t.Error("stroke painted far from its path")
	}
	if !area.Contains(50, 0) {
		t.Errorf("stroke bounds %v do not contain the path", area)
	}
}
