package inspector

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/uniseg"

	"github.com/dshills/strata/internal/document"
	"github.com/dshills/strata/internal/engine"
	"github.com/dshills/strata/internal/event"
	"github.com/dshills/strata/internal/history"
	"github.com/dshills/strata/internal/layer"
	"github.com/dshills/strata/internal/logging"
)

// Styles groups the styles the view draws with.
type Styles struct {
	Default tcell.Style
	Current tcell.Style
	Hidden  tcell.Style
	Header  tcell.Style
	Status  tcell.Style
	Error   tcell.Style
}

// DefaultStyles returns the built-in color scheme.
func DefaultStyles() Styles {
	return Styles{
		Default: tcell.StyleDefault,
		Current: tcell.StyleDefault.Reverse(true),
		Hidden:  tcell.StyleDefault.Dim(true),
		Header:  tcell.StyleDefault.Bold(true).Underline(true),
		Status:  tcell.StyleDefault.Foreground(tcell.ColorBlack).Background(tcell.ColorSilver),
		Error:   tcell.StyleDefault.Foreground(tcell.ColorWhite).Background(tcell.ColorMaroon).Bold(true),
	}
}

// Option configures an Inspector.
type Option func(*Inspector)

// WithStyles replaces the color scheme.
func WithStyles(s Styles) Option {
	return func(i *Inspector) { i.styles = s }
}

// WithLogger sets the inspector's logger.
func WithLogger(l *slog.Logger) Option {
	return func(i *Inspector) {
		if l != nil {
			i.log = l
		}
	}
}

type row struct {
	node  layer.Node
	depth int
}

// Inspector draws an engine's document and history on a tcell screen and
// turns key presses into engine calls. It is driven from one goroutine,
// like the engine itself.
type Inspector struct {
	screen tcell.Screen
	eng    *engine.Engine
	styles Styles
	log    *slog.Logger

	rows   []row
	cursor int
	offset int

	status    string
	statusErr bool

	// dirty is set by observers; the rows are rebuilt on the next Draw.
	dirty bool

	// syncing is set while the view catches up with the document, so
	// that cursor updates are not pushed back as selections.
	syncing bool

	subs []event.Subscription
}

// New creates an inspector for eng drawing on screen. The caller owns the
// screen: it must be initialized before Draw and finalized after Close.
func New(screen tcell.Screen, eng *engine.Engine, opts ...Option) *Inspector {
	i := &Inspector{
		screen: screen,
		eng:    eng,
		styles: DefaultStyles(),
		log:    logging.Discard(),
		dirty:  true,
	}
	for _, opt := range opts {
		opt(i)
	}
	i.log = i.log.With(logging.ComponentKey, "inspector")

	doc := eng.Document()
	i.subs = append(i.subs,
		doc.Changes().Subscribe(func(document.Event) { i.dirty = true }),
		doc.Canvas().Subscribe(func(layer.Rect) { i.dirty = true }),
		eng.Stack().Observe(func(*history.Stack) { i.dirty = true }),
	)
	i.refresh()
	return i
}

// Close detaches the inspector from the engine.
func (i *Inspector) Close() {
	for _, s := range i.subs {
		s.Cancel()
	}
	i.subs = nil
}

// Cursor returns the node under the cursor.
func (i *Inspector) Cursor() layer.Node {
	if i.dirty {
		i.refresh()
	}
	if i.cursor < 0 || i.cursor >= len(i.rows) {
		return nil
	}
	return i.rows[i.cursor].node
}

// Status returns the status message, if any.
func (i *Inspector) Status() string { return i.status }

// refresh rebuilds the rows from the tree and moves the cursor to the
// current layer.
func (i *Inspector) refresh() {
	i.syncing = true
	defer func() { i.syncing = false }()

	i.rows = i.rows[:0]
	cur := 0
	i.eng.Tree().Walk(func(n layer.Node, depth int) bool {
		if n == i.eng.Current() {
			cur = len(i.rows)
		}
		i.rows = append(i.rows, row{node: n, depth: depth})
		return true
	})
	i.dirty = false
	_ = i.setCursor(cur)
}

// setCursor moves the cursor to row idx and, unless the view is syncing,
// selects that row's layer.
func (i *Inspector) setCursor(idx int) error {
	if len(i.rows) == 0 {
		i.cursor = 0
		return nil
	}
	idx = max(0, min(idx, len(i.rows)-1))
	i.cursor = idx
	if i.syncing {
		return nil
	}
	return i.eng.SelectLayer(i.rows[idx].node)
}

// HandleEvent applies ev and reports whether the inspector should keep
// running.
func (i *Inspector) HandleEvent(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		return i.handleKey(ev)
	case *tcell.EventMouse:
		i.handleMouse(ev)
	case *tcell.EventResize:
		i.screen.Sync()
	}
	return true
}

func (i *Inspector) handleKey(ev *tcell.EventKey) bool {
	b, ok := lookup(ev)
	if !ok {
		return true
	}
	if b.quit {
		return false
	}
	i.status, i.statusErr = "", false
	i.log.Debug("key", "action", b.name)
	if err := b.fn(i); err != nil {
		i.status, i.statusErr = fmt.Sprintf("%s: %v", b.name, err), true
	}
	return true
}

func (i *Inspector) handleMouse(ev *tcell.EventMouse) {
	if ev.Buttons()&tcell.Button1 == 0 {
		return
	}
	x, y := ev.Position()
	w, h := i.screen.Size()
	if x >= leftWidth(w) || y < 1 || y >= h-1 {
		return
	}
	if i.dirty {
		i.refresh()
	}
	idx := i.offset + y - 1
	if idx >= len(i.rows) {
		return
	}
	i.status, i.statusErr = "", false
	if err := i.setCursor(idx); err != nil {
		i.status, i.statusErr = fmt.Sprintf("select: %v", err), true
	}
}

// Run draws and handles events until a quit key is pressed, the screen
// is finalized or ctx is done.
func (i *Inspector) Run(ctx context.Context) error {
	stop := context.AfterFunc(ctx, func() {
		_ = i.screen.PostEvent(tcell.NewEventInterrupt(nil))
	})
	defer stop()

	i.Draw()
	for {
		ev := i.screen.PollEvent()
		if ev == nil {
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if !i.HandleEvent(ev) {
			return nil
		}
		i.Draw()
	}
}

// ============================================================================
// Drawing
// ============================================================================

func leftWidth(w int) int {
	return max(w*3/5, min(w, 24))
}

// Draw renders the whole view and shows it.
func (i *Inspector) Draw() {
	if i.dirty {
		i.refresh()
	}
	s := i.screen
	s.Clear()
	w, h := s.Size()
	if w <= 0 || h <= 0 {
		return
	}
	lw := leftWidth(w)

	i.drawHeader(lw)
	i.drawLayers(lw, h-2)
	if lw+1 < w {
		for y := 0; y < h-1; y++ {
			s.SetContent(lw, y, '│', nil, i.styles.Default)
		}
		i.drawHistory(lw+1, w-lw-1, h-2)
	}
	i.drawStatus(w, h-1)
	s.Show()
}

func (i *Inspector) drawHeader(width int) {
	title := fmt.Sprintf("Layers (%d)", i.eng.Tree().Len())
	if tl := i.eng.Timeline(); tl != nil && tl.Current() != nil {
		tr := tl.Current()
		title += fmt.Sprintf("  %s %d/%d", tr.Name(), tr.Idx()+1, tr.Len())
		if f := tr.Current(); f != nil && f.IsKey() {
			title += " key"
		}
	}
	drawText(i.screen, 0, 0, width, title, i.styles.Header)
}

func (i *Inspector) drawLayers(width, height int) {
	if height <= 0 {
		return
	}
	if i.cursor < i.offset {
		i.offset = i.cursor
	}
	if i.cursor >= i.offset+height {
		i.offset = i.cursor - height + 1
	}
	for y := 0; y < height; y++ {
		idx := i.offset + y
		if idx >= len(i.rows) {
			break
		}
		r := i.rows[idx]
		style := i.styles.Default
		if !r.node.Visible() {
			style = i.styles.Hidden
		}
		if idx == i.cursor {
			style = i.styles.Current
		}
		fill(i.screen, 0, y+1, width, style)
		drawText(i.screen, 0, y+1, width, i.formatRow(r, idx == i.cursor, width), style)
	}
}

// formatRow lays out one layer line: marker, indent, visibility and lock
// glyphs, name, then opacity and blend mode flush right.
func (i *Inspector) formatRow(r row, current bool, width int) string {
	marker := "  "
	if current {
		marker = "▸ "
	}
	vis := "○"
	if r.node.Visible() {
		vis = "●"
	}
	lock := "  "
	if r.node.Locked() {
		lock = "🔒"
	}
	prefix := fmt.Sprintf("%s%*s%s%s ", marker, r.depth*2, "", vis, lock)

	mode := "Group"
	if l, ok := r.node.(*layer.Leaf); ok {
		mode = l.BlendMode().DisplayName()
	}
	meta := fmt.Sprintf(" %3d%% %s", int(math.Round(r.node.Opacity()*100)), mode)

	nameWidth := width - uniseg.StringWidth(prefix) - uniseg.StringWidth(meta)
	if nameWidth < 4 {
		return truncate(prefix+i.eng.Document().DisplayName(r.node), width)
	}
	name := truncate(i.eng.Document().DisplayName(r.node), nameWidth)
	return prefix + padRight(name, nameWidth) + meta
}

type line struct {
	text  string
	style tcell.Style
}

// drawHistory lists undo entries newest first, then redo entries in the
// order Redo would apply them.
func (i *Inspector) drawHistory(x, width, height int) {
	st := i.eng.Stack()
	lines := []line{{"Undo", i.styles.Header}}
	past := st.History()
	for j := len(past) - 1; j >= 0; j-- {
		lines = append(lines, line{" " + past[j].Description(), i.styles.Default})
	}
	lines = append(lines, line{"Redo", i.styles.Header})
	future := st.Future()
	for j := len(future) - 1; j >= 0; j-- {
		lines = append(lines, line{" " + future[j].Description(), i.styles.Hidden})
	}

	for y, l := range lines {
		if y > height {
			break
		}
		drawText(i.screen, x, y, width, truncate(l.text, width), l.style)
	}
}

func (i *Inspector) drawStatus(width, y int) {
	style := i.styles.Status
	text := i.status
	if i.statusErr {
		style = i.styles.Error
	}
	if text == "" {
		text = fmt.Sprintf("%s | %s | q quit", i.eng.UndoLabel(), i.eng.RedoLabel())
	}
	fill(i.screen, 0, y, width, style)
	drawText(i.screen, 0, y, width, truncate(text, width), style)
}
