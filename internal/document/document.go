package document

import (
	"fmt"
	"log/slog"

	"github.com/dshills/strata/internal/event"
	"github.com/dshills/strata/internal/layer"
	"github.com/dshills/strata/internal/logging"
	"github.com/dshills/strata/internal/timeline"
)

// Document is the layered document model.
type Document struct {
	tree       *layer.Tree
	current    layer.Node
	background layer.Pixel

	timeline     *timeline.Timeline
	timelineOpts []timeline.Option

	changes event.List[Event]
	canvas  event.List[layer.Rect]
	strokes event.List[StrokeEvent]

	nameless     map[layer.ID]int
	namelessNext int

	log *slog.Logger
}

// Option configures a Document during creation.
type Option func(*Document)

// WithBackground sets the opaque background color.
func WithBackground(p layer.Pixel) Option {
	return func(d *Document) {
		p.A = 1
		d.background = p
	}
}

// WithTimeline enables animation with the given timeline options.
func WithTimeline(opts ...timeline.Option) Option {
	return func(d *Document) {
		d.timelineOpts = opts
		d.timeline = timeline.New(opts...)
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(d *Document) {
		if l != nil {
			d.log = l
		}
	}
}

// New creates a document holding a single empty layer, which is current.
func New(opts ...Option) *Document {
	d := &Document{
		background: layer.RGB(1, 1, 1),
		nameless:   make(map[layer.ID]int),
		log:        logging.Discard(),
	}
	for _, opt := range opts {
		opt(d)
	}
	d.log = d.log.With("component", "document")
	d.tree, d.current = freshTree()
	return d
}

func freshTree() (*layer.Tree, layer.Node) {
	tr := layer.NewTree()
	l := layer.NewLeaf("")
	// Inserting a fresh leaf into a fresh root cannot fail.
	_ = tr.Insert(tr.Root(), 0, l)
	return tr, l
}

// Tree returns the layer tree.
func (d *Document) Tree() *layer.Tree { return d.tree }

// Root returns the root group.
func (d *Document) Root() *layer.Group { return d.tree.Root() }

// Current returns the current layer. It is never nil.
func (d *Document) Current() layer.Node { return d.current }

// CurrentLeaf returns the current layer if it is a leaf.
func (d *Document) CurrentLeaf() (*layer.Leaf, error) {
	l, ok := d.current.(*layer.Leaf)
	if !ok {
		return nil, fmt.Errorf("current layer %q: %w", d.current.Name(), ErrNotLeaf)
	}
	return l, nil
}

// SetCurrent selects n, which must be attached to the tree.
func (d *Document) SetCurrent(n layer.Node) error {
	if n == nil {
		return ErrNoLayer
	}
	if !d.tree.Contains(n) || layer.Node(d.tree.Root()) == n {
		return fmt.Errorf("select %q: %w", n.Name(), ErrNotInTree)
	}
	d.current = n
	return nil
}

// Background returns the opaque background color.
func (d *Document) Background() layer.Pixel { return d.background }

// Changes returns the document-change observer list.
func (d *Document) Changes() *event.List[Event] { return &d.changes }

// Canvas returns the canvas-change observer list.
func (d *Document) Canvas() *event.List[layer.Rect] { return &d.canvas }

// Strokes returns the stroke observer list.
func (d *Document) Strokes() *event.List[StrokeEvent] { return &d.strokes }

// Notify delivers ev to document-change observers.
func (d *Document) Notify(ev Event) {
	d.changes.Notify(ev)
}

// NotifyChanged delivers a generic change event.
func (d *Document) NotifyChanged() {
	d.changes.Notify(Event{Kind: EventChanged})
}

// NotifyCanvas reports the union of the nodes' bounds to canvas
// observers. Nothing is delivered when the union is empty.
func (d *Document) NotifyCanvas(nodes ...layer.Node) {
	var r layer.Rect
	for _, n := range nodes {
		if n != nil {
			r = r.Union(n.Bounds())
		}
	}
	d.NotifyRect(r)
}

// NotifyRect reports r to canvas observers unless it is empty.
func (d *Document) NotifyRect(r layer.Rect) {
	if r.IsEmpty() {
		return
	}
	d.canvas.Notify(r)
}

// NotifyStroke reports a completed stroke.
func (d *Document) NotifyStroke(l *layer.Leaf, s *layer.Stroke) {
	d.strokes.Notify(StrokeEvent{Layer: l, Stroke: s, Brush: s.Brush})
}

// Insert attaches n under parent at index and reports EventInserted.
// The selection is not changed.
func (d *Document) Insert(parent *layer.Group, index int, n layer.Node) error {
	if err := d.tree.Insert(parent, index, n); err != nil {
		return err
	}
	d.Notify(Event{Kind: EventInserted, Layer: n})
	return nil
}

// Remove reports EventBeforeDelete and detaches n. The caller must
// select another layer if n held the selection, and must keep the tree
// non-empty.
func (d *Document) Remove(n layer.Node) (*layer.Group, int, error) {
	if !d.tree.Contains(n) {
		return nil, -1, fmt.Errorf("remove %q: %w", n.Name(), ErrNotInTree)
	}
	d.Notify(Event{Kind: EventBeforeDelete, Layer: n})
	return d.tree.Remove(n)
}

// HoldsSelection reports whether the selection is n or lies inside n.
func (d *Document) HoldsSelection(n layer.Node) bool {
	return d.current == n || d.tree.IsAncestor(n, d.current)
}

// Reset replaces the tree with a single empty layer, drops any
// timeline tracks and reports EventCleared.
func (d *Document) Reset() {
	d.tree, d.current = freshTree()
	if d.timeline != nil {
		d.timeline = timeline.New(d.timelineOpts...)
	}
	clear(d.nameless)
	d.namelessNext = 0
	d.log.Debug("reset")
	d.Notify(Event{Kind: EventCleared})
}

// RenderBehind flattens the background and every visible layer below n.
func (d *Document) RenderBehind(n layer.Node) *layer.Backdrop {
	return d.tree.RenderBehind(n, d.background)
}

// Flatten renders the whole visible document.
func (d *Document) Flatten() *layer.Backdrop {
	return d.tree.Flatten(d.background)
}

// Timeline returns the animation timeline, or nil if animation is off.
func (d *Document) Timeline() *timeline.Timeline { return d.timeline }

// RequireTimeline returns the timeline or ErrNoTimeline.
func (d *Document) RequireTimeline() (*timeline.Timeline, error) {
	if d.timeline == nil {
		return nil, ErrNoTimeline
	}
	return d.timeline, nil
}

// EnableTimeline turns animation on. Calling it again returns the
// existing timeline.
func (d *Document) EnableTimeline(opts ...timeline.Option) *timeline.Timeline {
	if d.timeline == nil {
		d.timelineOpts = opts
		d.timeline = timeline.New(opts...)
	}
	return d.timeline
}

// NamelessNumber returns a stable number for an unnamed layer. Numbers
// are handed out in increasing order and never reused until Reset.
func (d *Document) NamelessNumber(n layer.Node) int {
	if num, ok := d.nameless[n.ID()]; ok {
		return num
	}
	d.namelessNext++
	d.nameless[n.ID()] = d.namelessNext
	return d.namelessNext
}

// DisplayName returns n's name, or "Untitled layer #N" if it has none.
func (d *Document) DisplayName(n layer.Node) string {
	if n.Name() != "" {
		return n.Name()
	}
	return fmt.Sprintf("Untitled layer #%d", d.NamelessNumber(n))
}
