package timeline

import "github.com/dshills/strata/internal/layer"

// Track is a named sequence of frames bound to a group of the layer tree.
type Track struct {
	name   string
	group  *layer.Group
	frames []*Frame
	idx    int
}

// NewTrack creates a track of length empty frames backed by group.
func NewTrack(name string, length int, group *layer.Group) *Track {
	t := &Track{name: name, group: group}
	t.AppendFrames(length)
	return t
}

// Name returns the track name.
func (t *Track) Name() string { return t.name }

// Group returns the layer group holding the track's cels.
func (t *Track) Group() *layer.Group { return t.group }

// Len returns the number of frames.
func (t *Track) Len() int { return len(t.frames) }

// Frame returns the frame at i, or nil if i is out of range.
func (t *Track) Frame(i int) *Frame {
	if i < 0 || i >= len(t.frames) {
		return nil
	}
	return t.frames[i]
}

// Frames returns a copy of the frame list.
func (t *Track) Frames() []*Frame {
	out := make([]*Frame, len(t.frames))
	copy(out, t.frames)
	return out
}

// Idx returns the current frame index.
func (t *Track) Idx() int { return t.idx }

// Select makes frame i current, clamped to the track.
func (t *Track) Select(i int) {
	t.idx = max(0, min(i, len(t.frames)-1))
}

// Current returns the current frame, or nil for an empty track.
func (t *Track) Current() *Frame { return t.Frame(t.idx) }

// CelAt returns the cel bound to frame i, or nil.
func (t *Track) CelAt(i int) *layer.Leaf {
	if f := t.Frame(i); f != nil {
		return f.cel
	}
	return nil
}

// CelForFrame returns the cel visible at f: its own, or the nearest one
// bound before it.
func (t *Track) CelForFrame(f *Frame) *layer.Leaf {
	for i := min(f.index, len(t.frames)-1); i >= 0; i-- {
		if c := t.frames[i].cel; c != nil {
			return c
		}
	}
	return nil
}

// CountCel returns how many frames bind l.
func (t *Track) CountCel(l *layer.Leaf) int {
	n := 0
	for _, f := range t.frames {
		if f.cel == l {
			n++
		}
	}
	return n
}

// AppendFrames adds n empty frames at the end.
func (t *Track) AppendFrames(n int) {
	for range n {
		t.frames = append(t.frames, &Frame{index: len(t.frames)})
	}
}

// RemoveLast removes the last n frames and returns them.
func (t *Track) RemoveLast(n int) []*Frame {
	n = min(n, len(t.frames))
	return t.RemoveFrames(len(t.frames)-n, n)
}

// InsertEmptyFrames inserts n empty frames before index at.
func (t *Track) InsertEmptyFrames(at, n int) []*Frame {
	frames := make([]*Frame, n)
	for i := range frames {
		frames[i] = &Frame{}
	}
	t.InsertFrames(at, frames)
	return frames
}

// InsertFrames inserts frames before index at.
func (t *Track) InsertFrames(at int, frames []*Frame) {
	at = max(0, min(at, len(t.frames)))
	out := make([]*Frame, 0, len(t.frames)+len(frames))
	out = append(out, t.frames[:at]...)
	out = append(out, frames...)
	out = append(out, t.frames[at:]...)
	t.frames = out
	t.renumber()
}

// FramesInRange returns the frames a removal of n frames starting at at
// would take, clamped to the track.
func (t *Track) FramesInRange(at, n int) []*Frame {
	at = max(0, min(at, len(t.frames)))
	end := min(at+max(n, 0), len(t.frames))
	out := make([]*Frame, end-at)
	copy(out, t.frames[at:end])
	return out
}

// RemoveFrames removes up to n frames starting at at and returns them.
func (t *Track) RemoveFrames(at, n int) []*Frame {
	removed := t.FramesInRange(at, n)
	if len(removed) == 0 {
		return nil
	}
	at = removed[0].index
	t.frames = append(t.frames[:at:at], t.frames[at+len(removed):]...)
	t.renumber()
	t.Select(t.idx)
	return removed
}

func (t *Track) renumber() {
	for i, f := range t.frames {
		f.index = i
	}
}
