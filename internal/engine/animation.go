package engine

import (
	"github.com/dshills/strata/internal/command"
	"github.com/dshills/strata/internal/layer"
	"github.com/dshills/strata/internal/timeline"
)

// EnableAnimation turns the document's timeline on if it is off.
func (e *Engine) EnableAnimation() *timeline.Timeline {
	e.animation = true
	return e.doc.EnableTimeline(e.timelineOpts...)
}

// CreateTrack adds a track named name.
func (e *Engine) CreateTrack(name string) (*timeline.Track, error) {
	c, err := command.NewCreateTrack(e.doc, name)
	if err := e.run(c, err); err != nil {
		return nil, err
	}
	return c.Track(), nil
}

// SelectTrack makes tr the current track.
func (e *Engine) SelectTrack(tr *timeline.Track) error {
	return e.run(command.NewSelectTrack(e.doc, tr))
}

// SelectFrame moves the current track to frame idx.
func (e *Engine) SelectFrame(idx int) error {
	return e.run(command.NewSelectFrame(e.doc, idx))
}

// ToggleKey flips f's key flag.
func (e *Engine) ToggleKey(f *timeline.Frame) error {
	return e.run(command.NewToggleKey(e.doc, f))
}

// ToggleSkipVisible flips f's onion-skin skip flag.
func (e *Engine) ToggleSkipVisible(f *timeline.Frame) error {
	return e.run(command.NewToggleSkipVisible(e.doc, f))
}

// ChangeDescription sets f's description.
func (e *Engine) ChangeDescription(f *timeline.Frame, desc string) error {
	return e.run(command.NewChangeDescription(e.doc, f, desc))
}

// AddCel gives f a new empty cel and selects it.
func (e *Engine) AddCel(f *timeline.Frame) (*layer.Leaf, error) {
	c, err := command.NewAddCel(e.doc, f)
	if err := e.run(c, err); err != nil {
		return nil, err
	}
	return c.Layer(), nil
}

// RemoveCel unbinds f's cel.
func (e *Engine) RemoveCel(f *timeline.Frame) error {
	return e.run(command.NewRemoveCel(e.doc, f))
}

// AppendFrames adds n frames to the end of the current track.
func (e *Engine) AppendFrames(n int) error {
	return e.run(command.NewAppendFrames(e.doc, n))
}

// InsertFrames inserts n frames at the current frame.
func (e *Engine) InsertFrames(n int) error {
	return e.run(command.NewInsertFrames(e.doc, n))
}

// RemoveFrames removes n frames starting at the current frame.
func (e *Engine) RemoveFrames(n int) error {
	return e.run(command.NewRemoveFrames(e.doc, n))
}

// CopyCel records f as the source of the next paste. It is not undoable.
func (e *Engine) CopyCel(f *timeline.Frame) error {
	tl, err := e.doc.RequireTimeline()
	if err != nil {
		return err
	}
	tl.MarkCopy(f)
	return nil
}

// CutCel records f as the source of the next paste, which will unbind it.
func (e *Engine) CutCel(f *timeline.Frame) error {
	tl, err := e.doc.RequireTimeline()
	if err != nil {
		return err
	}
	tl.MarkCut(f)
	return nil
}

// PasteCel binds the copied or cut cel to f.
func (e *Engine) PasteCel(f *timeline.Frame) error {
	return e.run(command.NewPasteCel(e.doc, f))
}
