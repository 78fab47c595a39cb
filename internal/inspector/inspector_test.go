package inspector

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/gdamore/tcell/v2"

	"github.com/dshills/strata/internal/engine"
)

func newScreen(t *testing.T) tcell.SimulationScreen {
	t.Helper()
	s := tcell.NewSimulationScreen("UTF-8")
	if err := s.Init(); err != nil {
		t.Fatalf("Init error = %v", err)
	}
	s.SetSize(80, 12)
	t.Cleanup(s.Fini)
	return s
}

func newInspector(t *testing.T, eng *engine.Engine) (*Inspector, tcell.SimulationScreen) {
	t.Helper()
	s := newScreen(t)
	i := New(s, eng)
	t.Cleanup(i.Close)
	return i, s
}

// screenLine returns row y of the screen with trailing spaces removed.
func screenLine(s tcell.Screen, y int) string {
	w, _ := s.Size()
	var b strings.Builder
	for x := 0; x < w; x++ {
		mainc, comb, _, width := s.GetContent(x, y) //nolint:staticcheck // GetContent is the correct API
		b.WriteRune(mainc)
		for _, r := range comb {
			b.WriteRune(r)
		}
		if width > 1 {
			x += width - 1
		}
	}
	return strings.TrimRight(b.String(), " ")
}

func screenText(s tcell.Screen) string {
	_, h := s.Size()
	lines := make([]string, h)
	for y := range lines {
		lines[y] = screenLine(s, y)
	}
	return strings.Join(lines, "\n")
}

func press(i *Inspector, r rune) bool {
	return i.HandleEvent(tcell.NewEventKey(tcell.KeyRune, r, tcell.ModNone))
}

func TestDrawTree(t *testing.T) {
	eng := engine.New()
	if _, err := eng.AddLayerAbove(); err != nil {
		t.Fatal(err)
	}
	if err := eng.RenameLayer(nil, "ink"); err != nil {
		t.Fatal(err)
	}
	i, s := newInspector(t, eng)
	i.Draw()

	if got := screenLine(s, 0); !strings.HasPrefix(got, "Layers (2)") {
		t.Errorf("header = %q", got)
	}
	top := screenLine(s, 1)
	if !strings.HasPrefix(top, "▸ ●") || !strings.Contains(top, "ink") || !strings.Contains(top, "100% Normal") {
		t.Errorf("top row = %q", top)
	}
	if got := screenLine(s, 2); !strings.Contains(got, "Untitled layer #") || strings.Contains(got, "▸") {
		t.Errorf("second row = %q", got)
	}
	text := screenText(s)
	for _, want := range []string{"Undo", "Rename Layer", "Add Layer", "Redo"} {
		if !strings.Contains(text, want) {
			t.Errorf("screen lacks %q:\n%s", want, text)
		}
	}
	if got := screenLine(s, 11); !strings.HasPrefix(got, "Undo Rename Layer | Redo") {
		t.Errorf("status = %q", got)
	}
}

func TestDrawGlyphs(t *testing.T) {
	eng := engine.New()
	if err := eng.SetLayerVisibility(nil, false); err != nil {
		t.Fatal(err)
	}
	if err := eng.SetLayerLocked(nil, true); err != nil {
		t.Fatal(err)
	}
	if err := eng.SetLayerOpacity(nil, 0.5); err != nil {
		t.Fatal(err)
	}
	i, s := newInspector(t, eng)
	i.Draw()

	got := screenLine(s, 1)
	if !strings.HasPrefix(got, "▸ ○🔒") || !strings.Contains(got, " 50% Normal") {
		t.Errorf("row = %q", got)
	}
}

func TestKeysEditThroughEngine(t *testing.T) {
	eng := engine.New()
	i, _ := newInspector(t, eng)

	press(i, 'a')
	if eng.Tree().Len() != 2 || eng.Stack().UndoCount() != 1 {
		t.Fatalf("after add: %d layers, %d undo entries", eng.Tree().Len(), eng.Stack().UndoCount())
	}
	if i.Cursor() != eng.Current() {
		t.Error("cursor does not follow the added layer")
	}
	press(i, 'u')
	if eng.Tree().Len() != 1 {
		t.Errorf("after undo: %d layers, want 1", eng.Tree().Len())
	}
	if i.Status() != "Undid Add Layer" {
		t.Errorf("status = %q", i.Status())
	}
	press(i, 'r')
	if eng.Tree().Len() != 2 {
		t.Errorf("after redo: %d layers, want 2", eng.Tree().Len())
	}
	press(i, 'r')
	if i.Status() != "Nothing to redo" {
		t.Errorf("status = %q", i.Status())
	}
}

func TestKeyBindings(t *testing.T) {
	tests := []struct {
		name  string
		keys  string
		check func(*testing.T, *engine.Engine)
	}{
		{"group", "g", func(t *testing.T, eng *engine.Engine) {
			if eng.Tree().Len() != 2 {
				t.Errorf("%d nodes, want 2", eng.Tree().Len())
			}
		}},
		{"duplicate", "d", func(t *testing.T, eng *engine.Engine) {
			if eng.Tree().Len() != 2 {
				t.Errorf("%d nodes, want 2", eng.Tree().Len())
			}
		}},
		{"merge", "am", func(t *testing.T, eng *engine.Engine) {
			if eng.Tree().Len() != 1 {
				t.Errorf("%d nodes, want 1", eng.Tree().Len())
			}
		}},
		{"opacity", "--+", func(t *testing.T, eng *engine.Engine) {
			want := 1 - eng.OpacityStep()
			if got := eng.Current().Opacity(); got < want-1e-9 || got > want+1e-9 {
				t.Errorf("opacity = %v, want %v", got, want)
			}
			if eng.Stack().UndoCount() != 1 {
				t.Errorf("%d undo entries, want 1", eng.Stack().UndoCount())
			}
		}},
		{"visibility", "v", func(t *testing.T, eng *engine.Engine) {
			if eng.Current().Visible() {
				t.Error("layer still visible")
			}
		}},
		{"lock twice", "ll", func(t *testing.T, eng *engine.Engine) {
			if eng.Current().Locked() {
				t.Error("layer still locked")
			}
		}},
		{"raise", "ajK", func(t *testing.T, eng *engine.Engine) {
			if eng.Tree().Index(eng.Current()) != 1 {
				t.Errorf("current index = %d, want 1", eng.Tree().Index(eng.Current()))
			}
		}},
		{"remove", "ax", func(t *testing.T, eng *engine.Engine) {
			if eng.Tree().Len() != 1 {
				t.Errorf("%d nodes, want 1", eng.Tree().Len())
			}
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			eng := engine.New()
			i, _ := newInspector(t, eng)
			for _, r := range tt.keys {
				if !press(i, r) {
					t.Fatalf("key %q quit", r)
				}
				if i.statusErr {
					t.Fatalf("key %q: %s", r, i.Status())
				}
			}
			tt.check(t, eng)
		})
	}
}

func TestSelectionKeys(t *testing.T) {
	eng := engine.New()
	bottom := eng.Current()
	middle, _ := eng.AddLayerAbove()
	top, _ := eng.AddLayerAbove()
	i, _ := newInspector(t, eng)

	press(i, 'j')
	if eng.Current() != middle || i.Cursor() != middle {
		t.Errorf("after j: current %v, cursor %v", eng.Current(), i.Cursor())
	}
	i.HandleEvent(tcell.NewEventKey(tcell.KeyDown, 0, tcell.ModNone))
	if eng.Current() != bottom {
		t.Error("down did not select the bottom layer")
	}
	press(i, 'j')
	if eng.Current() != bottom {
		t.Error("j at the bottom moved the selection")
	}
	press(i, 'k')
	press(i, 'k')
	if eng.Current() != top || i.Cursor() != top {
		t.Error("k did not climb back to the top")
	}
}

func TestFollowsExternalChanges(t *testing.T) {
	eng := engine.New()
	i, _ := newInspector(t, eng)

	added, err := eng.AddLayerAbove()
	if err != nil {
		t.Fatal(err)
	}
	if i.Cursor() != added {
		t.Error("cursor did not follow an external add")
	}
	if eng.Stack().UndoCount() != 1 {
		t.Errorf("%d undo entries, want 1: catching up recorded a selection", eng.Stack().UndoCount())
	}

	eng.Reset()
	if i.Cursor() != eng.Current() {
		t.Error("cursor did not follow a reset")
	}
	if eng.Stack().UndoCount() != 0 {
		t.Errorf("%d undo entries after reset, want 0", eng.Stack().UndoCount())
	}
}

func TestMouseSelects(t *testing.T) {
	eng := engine.New()
	bottom := eng.Current()
	if _, err := eng.AddLayerAbove(); err != nil {
		t.Fatal(err)
	}
	i, _ := newInspector(t, eng)
	i.Draw()

	i.HandleEvent(tcell.NewEventMouse(3, 2, tcell.Button1, tcell.ModNone))
	if eng.Current() != bottom {
		t.Error("click on the second row did not select the bottom layer")
	}
	i.HandleEvent(tcell.NewEventMouse(3, 9, tcell.Button1, tcell.ModNone))
	if eng.Current() != bottom {
		t.Error("click below the rows changed the selection")
	}
}

func TestErrorShownInStatus(t *testing.T) {
	eng := engine.New()
	i, s := newInspector(t, eng)

	press(i, 'l')
	press(i, 'c')
	if !i.statusErr || !strings.Contains(i.Status(), "layer is locked") {
		t.Fatalf("status = %q, error %v", i.Status(), i.statusErr)
	}
	i.Draw()
	if got := screenLine(s, 11); !strings.HasPrefix(got, "clear: ") {
		t.Errorf("status line = %q", got)
	}

	press(i, 'l')
	if i.statusErr {
		t.Error("error status survived the next key")
	}
}

func TestAnimationKeys(t *testing.T) {
	eng := engine.New(engine.WithAnimation())
	if _, err := eng.CreateTrack("walk"); err != nil {
		t.Fatal(err)
	}
	i, s := newInspector(t, eng)
	tr := eng.Timeline().Current()

	press(i, ']')
	if tr.Idx() != 1 {
		t.Errorf("frame = %d, want 1", tr.Idx())
	}
	press(i, 't')
	if !tr.Current().IsKey() {
		t.Error("t did not toggle the key flag")
	}
	press(i, '[')
	press(i, '[')
	if tr.Idx() != 0 {
		t.Errorf("frame = %d, want 0", tr.Idx())
	}
	press(i, ']')
	i.Draw()
	if got := screenLine(s, 0); !strings.Contains(got, "walk 2/24 key") {
		t.Errorf("header = %q", got)
	}
}

func TestAnimationKeysWithoutTimeline(t *testing.T) {
	i, _ := newInspector(t, engine.New())
	press(i, ']')
	if !i.statusErr {
		t.Error("frame step without a timeline reported no error")
	}
}

func TestQuit(t *testing.T) {
	i, _ := newInspector(t, engine.New())
	if press(i, 'q') {
		t.Error("q did not quit")
	}
	if i.HandleEvent(tcell.NewEventKey(tcell.KeyEscape, 0, tcell.ModNone)) {
		t.Error("esc did not quit")
	}
	if !press(i, '?') {
		t.Error("unbound key quit")
	}
}

func TestRun(t *testing.T) {
	eng := engine.New()
	i, s := newInspector(t, eng)
	s.InjectKey(tcell.KeyRune, 'a', tcell.ModNone)
	s.InjectKey(tcell.KeyRune, 'q', tcell.ModNone)

	if err := i.Run(context.Background()); err != nil {
		t.Fatalf("Run error = %v", err)
	}
	if eng.Tree().Len() != 2 {
		t.Errorf("%d layers, want 2", eng.Tree().Len())
	}
}

func TestRunCancelled(t *testing.T) {
	i, _ := newInspector(t, engine.New())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := i.Run(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("Run error = %v, want Canceled", err)
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		in    string
		width int
		want  string
	}{
		{"abc", 5, "abc"},
		{"abcdef", 4, "abc…"},
		{"日本語", 4, "日…"},
		{"abc", 0, ""},
	}
	for _, tt := range tests {
		if got := truncate(tt.in, tt.width); got != tt.want {
			t.Errorf("truncate(%q, %d) = %q, want %q", tt.in, tt.width, got, tt.want)
		}
	}
}
