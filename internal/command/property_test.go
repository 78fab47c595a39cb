package command

import (
	"errors"
	"testing"

	"github.com/dshills/strata/internal/history"
	"github.com/dshills/strata/internal/layer"
)

func TestSetLayerOpacityAmend(t *testing.T) {
	doc, leaves := newDoc(t, "A")
	a := leaves[0]
	s := history.NewStack()

	do(t, s, must(NewSetLayerOpacity(doc, a, 0.5)))
	if got := s.Last().Description(); got != "Set Layer Opacity to 50%" {
		t.Errorf("label = %q", got)
	}
	if _, err := s.UpdateLast(0.25); err != nil {
		t.Fatal(err)
	}
	if a.Opacity() != 0.25 {
		t.Errorf("opacity = %v, want 0.25", a.Opacity())
	}
	if got := s.Last().Description(); got != "Set Layer Opacity to 25%" {
		t.Errorf("amended label = %q", got)
	}
	if s.UndoCount() != 1 {
		t.Errorf("UndoCount() = %d, want 1", s.UndoCount())
	}
	if _, err := s.UpdateLast("nope"); !errors.Is(err, history.ErrPatchMismatch) {
		t.Errorf("bad patch error = %v", err)
	}

	undo(t, s)
	if a.Opacity() != 1 {
		t.Errorf("opacity after undo = %v, want 1", a.Opacity())
	}
}

func TestSetLayerOpacityClamps(t *testing.T) {
	doc, leaves := newDoc(t, "A")
	c := must(NewSetLayerOpacity(doc, leaves[0], 1.7))
	if c.Opacity() != 1 {
		t.Errorf("Opacity() = %v, want 1", c.Opacity())
	}
}

func TestSetLayerOpacityCanvasOnlyOnChange(t *testing.T) {
	doc, leaves := newDoc(t, "A")
	a := leaves[0]
	a.Surface().Fill(layer.Rect{W: 4, H: 4}, layer.RGB(1, 0, 0))
	var rects []layer.Rect
	doc.Canvas().Subscribe(func(r layer.Rect) { rects = append(rects, r) })

	same := must(NewSetLayerOpacity(doc, a, 1))
	if err := same.Redo(); err != nil {
		t.Fatal(err)
	}
	if len(rects) != 0 {
		t.Errorf("canvas notified %d times for an unchanged opacity", len(rects))
	}

	a.SetVisible(false)
	hidden := must(NewSetLayerOpacity(doc, a, 0.3))
	if err := hidden.Redo(); err != nil {
		t.Fatal(err)
	}
	if len(rects) != 0 {
		t.Error("canvas notified for a hidden layer")
	}

	a.SetVisible(true)
	visible := must(NewSetLayerOpacity(doc, a, 0.6))
	if err := visible.Redo(); err != nil {
		t.Fatal(err)
	}
	if len(rects) != 1 {
		t.Errorf("canvas notified %d times, want 1", len(rects))
	}
}

func TestPropertyCommandsRoundTrip(t *testing.T) {
	doc, leaves := newDoc(t, "A")
	a := leaves[0]

	tests := []struct {
		name  string
		cmd   history.Action
		label string
		check func() bool
	}{
		{"rename", must(NewRenameLayer(doc, a, "Ink")), "Rename Layer", func() bool { return a.Name() == "Ink" }},
		{"hide", must(NewSetLayerVisibility(doc, a, false)), "Make Layer Invisible", func() bool { return !a.Visible() }},
		{"lock", must(NewSetLayerLocked(doc, a, true)), "Lock Layer", func() bool { return a.Locked() }},
		{"blend", must(NewSetLayerCompositeOp(doc, a, layer.BlendMultiply)), "Set Blending Mode to Multiply", func() bool {
			return a.BlendMode() == layer.BlendMultiply
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := history.NewStack()
			if got := tt.cmd.Description(); got != tt.label {
				t.Errorf("Description() = %q, want %q", got, tt.label)
			}
			do(t, s, tt.cmd)
			if !tt.check() {
				t.Fatal("redo did not apply")
			}
			undo(t, s)
			if tt.check() {
				t.Fatal("undo did not revert")
			}
			redo(t, s)
			if !tt.check() {
				t.Fatal("second redo did not apply")
			}
			undo(t, s)
		})
	}
}

func TestVisibilityAmend(t *testing.T) {
	doc, leaves := newDoc(t, "A")
	a := leaves[0]
	s := history.NewStack()
	do(t, s, must(NewSetLayerVisibility(doc, a, false)))
	if _, err := s.UpdateLast(true); err != nil {
		t.Fatal(err)
	}
	if !a.Visible() || s.Last().Description() != "Make Layer Visible" {
		t.Errorf("visible = %v, label = %q", a.Visible(), s.Last().Description())
	}
	if _, err := s.UpdateLast(1.0); !errors.Is(err, history.ErrPatchMismatch) {
		t.Errorf("bad patch error = %v", err)
	}
}

func TestCompositeOpRequiresLeaf(t *testing.T) {
	doc, _ := newDoc(t, "A")
	g := layer.NewGroup("G")
	if err := doc.Insert(doc.Root(), -1, g); err != nil {
		t.Fatal(err)
	}
	if _, err := NewSetLayerCompositeOp(doc, g, layer.BlendScreen); err == nil {
		t.Error("expected an error for a group")
	}
}
