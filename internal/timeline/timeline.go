package timeline

import "github.com/dshills/strata/internal/layer"

// DefaultFrames is the length of a newly created track.
const DefaultFrames = 24

// EditOperation is the pending cel clipboard operation.
type EditOperation int

const (
	EditNone EditOperation = iota
	EditCopy
	EditCut
)

// String returns the operation name.
func (op EditOperation) String() string {
	switch op {
	case EditCopy:
		return "copy"
	case EditCut:
		return "cut"
	default:
		return "none"
	}
}

// Opacities is the onion-skin display table.
type Opacities struct {
	Current   float64 // cel visible at the current frame
	NextPrev  float64 // nearest distinct cels before and after
	Key       float64 // cels of other key frames
	Inbetween float64 // cels between the surrounding key frames
	Other     float64 // everything else
}

// DefaultOpacities returns the standard onion-skin table.
func DefaultOpacities() Opacities {
	return Opacities{Current: 1, NextPrev: 0.5, Key: 0.4, Inbetween: 0.2, Other: 0}
}

// Timeline is the animation state of a document.
type Timeline struct {
	tracks  []*Track
	current *Track

	editOp    EditOperation
	editFrame *Frame

	cleared   bool
	length    int
	opacities Opacities
	display   map[*layer.Leaf]float64
}

// Option configures a Timeline.
type Option func(*Timeline)

// WithFrames sets the length of new tracks.
func WithFrames(n int) Option {
	return func(t *Timeline) {
		if n > 0 {
			t.length = n
		}
	}
}

// WithOpacities sets the onion-skin table.
func WithOpacities(o Opacities) Option {
	return func(t *Timeline) {
		t.opacities = o
	}
}

// New creates an empty timeline.
func New(opts ...Option) *Timeline {
	t := &Timeline{
		length:    DefaultFrames,
		opacities: DefaultOpacities(),
		display:   make(map[*layer.Leaf]float64),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// NewTrack creates a detached track of the configured length.
func (t *Timeline) NewTrack(name string, group *layer.Group) *Track {
	return NewTrack(name, t.length, group)
}

// Tracks returns a copy of the track list.
func (t *Timeline) Tracks() []*Track {
	out := make([]*Track, len(t.tracks))
	copy(out, t.tracks)
	return out
}

// Current returns the current track, or nil.
func (t *Timeline) Current() *Track { return t.current }

// SetCurrent makes tr the current track.
func (t *Timeline) SetCurrent(tr *Track) { t.current = tr }

// IndexOf returns the position of tr, or -1.
func (t *Timeline) IndexOf(tr *Track) int {
	for i, c := range t.tracks {
		if c == tr {
			return i
		}
	}
	return -1
}

// AppendTrack adds tr at the end. The first track becomes current.
func (t *Timeline) AppendTrack(tr *Track) {
	t.tracks = append(t.tracks, tr)
	if t.current == nil {
		t.current = tr
	}
}

// RemoveTrack removes tr. If it was current, the last remaining track
// becomes current.
func (t *Timeline) RemoveTrack(tr *Track) bool {
	i := t.IndexOf(tr)
	if i < 0 {
		return false
	}
	t.tracks = append(t.tracks[:i:i], t.tracks[i+1:]...)
	if t.current == tr {
		t.current = nil
		if n := len(t.tracks); n > 0 {
			t.current = t.tracks[n-1]
		}
	}
	return true
}

// CountCel returns how many frames of all tracks bind l.
func (t *Timeline) CountCel(l *layer.Leaf) int {
	n := 0
	for _, tr := range t.tracks {
		n += tr.CountCel(l)
	}
	return n
}

// TrackOf returns the track holding f, or nil.
func (t *Timeline) TrackOf(f *Frame) *Track {
	for _, tr := range t.tracks {
		if tr.Frame(f.index) == f {
			return tr
		}
	}
	return nil
}

// Edit returns the pending clipboard operation and its source frame.
func (t *Timeline) Edit() (EditOperation, *Frame) { return t.editOp, t.editFrame }

// SetEdit replaces the pending clipboard operation.
func (t *Timeline) SetEdit(op EditOperation, f *Frame) {
	if f == nil {
		op = EditNone
	}
	t.editOp, t.editFrame = op, f
}

// MarkCopy records f as the source of a pending copy.
func (t *Timeline) MarkCopy(f *Frame) { t.SetEdit(EditCopy, f) }

// MarkCut records f as the source of a pending cut.
func (t *Timeline) MarkCut(f *Frame) { t.SetEdit(EditCut, f) }

// Cleared reports whether the frame structure changed since the flag
// was last reset, meaning views should rebuild their frame lists.
func (t *Timeline) Cleared() bool { return t.cleared }

// SetCleared sets or resets the structure-changed flag.
func (t *Timeline) SetCleared(v bool) { t.cleared = v }

// Opacities returns the onion-skin table.
func (t *Timeline) Opacities() Opacities { return t.opacities }

// DisplayOpacity returns the onion-skin opacity computed for l by the
// last UpdateOpacities, and whether l is a cel of the current track.
func (t *Timeline) DisplayOpacity(l *layer.Leaf) (float64, bool) {
	v, ok := t.display[l]
	return v, ok
}

// UpdateOpacities recomputes the onion-skin table for the current track.
func (t *Timeline) UpdateOpacities() {
	clear(t.display)
	tr := t.current
	if tr == nil {
		return
	}
	assign := func(c *layer.Leaf, v float64) {
		if c == nil {
			return
		}
		if cur, ok := t.display[c]; !ok || v > cur {
			t.display[c] = v
		}
	}
	for _, f := range tr.frames {
		assign(f.cel, t.opacities.Other)
	}
	cur := tr.Current()
	if cur == nil {
		return
	}
	visible := tr.CelForFrame(cur)
	assign(visible, t.opacities.Current)

	prevKey, nextKey := -1, len(tr.frames)
	for i := cur.index - 1; i >= 0; i-- {
		if tr.frames[i].isKey {
			prevKey = i
			break
		}
	}
	for i := cur.index + 1; i < len(tr.frames); i++ {
		if tr.frames[i].isKey {
			nextKey = i
			break
		}
	}
	for i, f := range tr.frames {
		if f.cel == nil || f.skipVisible {
			continue
		}
		switch {
		case f.isKey:
			assign(f.cel, t.opacities.Key)
		case i > prevKey && i < nextKey:
			assign(f.cel, t.opacities.Inbetween)
		}
	}
	for i := cur.index - 1; i >= 0; i-- {
		f := tr.frames[i]
		if f.cel != nil && f.cel != visible && !f.skipVisible {
			assign(f.cel, t.opacities.NextPrev)
			break
		}
	}
	for i := cur.index + 1; i < len(tr.frames); i++ {
		f := tr.frames[i]
		if f.cel != nil && f.cel != visible && !f.skipVisible {
			assign(f.cel, t.opacities.NextPrev)
			break
		}
	}
}
