package command

import (
	"fmt"

	"github.com/dshills/strata/internal/document"
	"github.com/dshills/strata/internal/layer"
	"github.com/dshills/strata/internal/timeline"
)

// animBase is base plus the timeline every animation command edits.
type animBase struct {
	base
	tl *timeline.Timeline
}

// refresh recomputes onion-skin opacities and reports a change.
func (b *animBase) refresh() {
	b.tl.UpdateOpacities()
	b.doc.NotifyChanged()
}

// restructure is refresh for commands that change the frame list.
func (b *animBase) restructure() {
	b.tl.SetCleared(true)
	b.refresh()
}

func currentTrack(doc *document.Document) (*timeline.Timeline, *timeline.Track, error) {
	tl, err := doc.RequireTimeline()
	if err != nil {
		return nil, nil, err
	}
	tr := tl.Current()
	if tr == nil {
		return nil, nil, ErrNoTrack
	}
	return tl, tr, nil
}

func frameTrack(doc *document.Document, f *timeline.Frame) (*timeline.Timeline, *timeline.Track, error) {
	tl, err := doc.RequireTimeline()
	if err != nil {
		return nil, nil, err
	}
	if f == nil {
		return nil, nil, ErrFrameNotInTrack
	}
	tr := tl.TrackOf(f)
	if tr == nil {
		return nil, nil, fmt.Errorf("frame %d: %w", f.Index(), ErrFrameNotInTrack)
	}
	return tl, tr, nil
}

// orphans removes cels that no frame of any track binds any more. The
// nested RemoveLayer commands are built on every redo and dropped after
// their undo.
type orphans struct {
	removed []*RemoveLayer
}

func (o *orphans) redo(doc *document.Document, tl *timeline.Timeline, cels ...*layer.Leaf) error {
	seen := make(map[*layer.Leaf]bool, len(cels))
	for _, cel := range cels {
		if cel == nil || seen[cel] || tl.CountCel(cel) > 0 || !doc.Tree().Contains(cel) {
			continue
		}
		seen[cel] = true
		rm, err := NewRemoveLayer(doc, cel)
		if err == nil {
			err = rm.Redo()
		}
		if err != nil {
			if uerr := o.undo(); uerr != nil {
				return fmt.Errorf("%w (rollback: %v)", err, uerr)
			}
			return err
		}
		o.removed = append(o.removed, rm)
	}
	return nil
}

func (o *orphans) undo() error {
	for i := len(o.removed) - 1; i >= 0; i-- {
		if err := o.removed[i].Undo(); err != nil {
			o.removed = o.removed[:i+1]
			return err
		}
	}
	o.removed = nil
	return nil
}

// CreateTrack adds a track and the group holding its cels.
type CreateTrack struct {
	animBase
	track *timeline.Track
	group *layer.Group
	prev  *timeline.Track
}

// NewCreateTrack creates a command adding a track named name.
func NewCreateTrack(doc *document.Document, name string) (*CreateTrack, error) {
	tl, err := doc.RequireTimeline()
	if err != nil {
		return nil, err
	}
	g := layer.NewGroup(name)
	return &CreateTrack{
		animBase: animBase{base: base{doc: doc, label: "Create Track"}, tl: tl},
		track:    tl.NewTrack(name, g),
		group:    g,
	}, nil
}

// Track returns the track this command adds.
func (c *CreateTrack) Track() *timeline.Track { return c.track }

func (c *CreateTrack) Redo() error {
	root := c.doc.Root()
	if err := c.doc.Insert(root, root.Len(), c.group); err != nil {
		return err
	}
	c.prev = c.tl.Current()
	c.tl.AppendTrack(c.track)
	c.doc.Notify(document.Event{Kind: document.EventTrackInserted, Track: c.track})
	c.refresh()
	return nil
}

func (c *CreateTrack) Undo() error {
	parent, index, err := c.doc.Remove(c.group)
	if err != nil {
		return err
	}
	if err := reselect(c.doc, parent, index); err != nil {
		return err
	}
	c.tl.RemoveTrack(c.track)
	c.tl.SetCurrent(c.prev)
	c.doc.Notify(document.Event{Kind: document.EventTrackRemoved, Track: c.track})
	c.refresh()
	return nil
}

// SelectTrack makes a track current, carrying over the frame position of
// the previously current track.
type SelectTrack struct {
	animBase
	track    *timeline.Track
	prev     *timeline.Track
	trackIdx int
}

// NewSelectTrack creates a command selecting tr.
func NewSelectTrack(doc *document.Document, tr *timeline.Track) (*SelectTrack, error) {
	tl, err := doc.RequireTimeline()
	if err != nil {
		return nil, err
	}
	if tr == nil || tl.IndexOf(tr) < 0 {
		return nil, ErrNoTrack
	}
	return &SelectTrack{animBase: animBase{base: base{doc: doc, label: "Select Track"}, tl: tl}, track: tr}, nil
}

func (c *SelectTrack) Redo() error {
	c.prev = c.tl.Current()
	c.trackIdx = c.track.Idx()
	if c.prev != nil {
		c.track.Select(c.prev.Idx())
	}
	c.tl.SetCurrent(c.track)
	c.refresh()
	return nil
}

func (c *SelectTrack) Undo() error {
	c.tl.SetCurrent(c.prev)
	c.track.Select(c.trackIdx)
	c.refresh()
	return nil
}

// SelectFrame moves the current track to a frame and selects the frame's
// cel if it has one.
type SelectFrame struct {
	animBase
	track     *timeline.Track
	idx       int
	prevIdx   int
	prevLayer layer.Node
}

// NewSelectFrame creates a command selecting frame idx of the current track.
func NewSelectFrame(doc *document.Document, idx int) (*SelectFrame, error) {
	tl, tr, err := currentTrack(doc)
	if err != nil {
		return nil, err
	}
	return &SelectFrame{animBase: animBase{base: base{doc: doc, label: "Select Frame"}, tl: tl}, track: tr, idx: idx}, nil
}

func (c *SelectFrame) Redo() error {
	c.prevLayer = nil
	if cel := c.track.CelAt(c.idx); cel != nil && c.doc.Tree().Contains(cel) {
		c.prevLayer = c.doc.Current()
		if err := c.doc.SetCurrent(cel); err != nil {
			return err
		}
	}
	c.prevIdx = c.track.Idx()
	c.track.Select(c.idx)
	c.refresh()
	return nil
}

func (c *SelectFrame) Undo() error {
	if c.prevLayer != nil {
		if err := c.doc.SetCurrent(c.prevLayer); err != nil {
			return err
		}
		c.prevLayer = nil
	}
	c.track.Select(c.prevIdx)
	c.refresh()
	return nil
}

// ToggleKey flips a frame's key flag.
type ToggleKey struct {
	animBase
	frame *timeline.Frame
	prev  bool
}

// NewToggleKey creates a command toggling f's key flag.
func NewToggleKey(doc *document.Document, f *timeline.Frame) (*ToggleKey, error) {
	tl, _, err := frameTrack(doc, f)
	if err != nil {
		return nil, err
	}
	return &ToggleKey{animBase: animBase{base: base{doc: doc, label: "Toggle Key Frame"}, tl: tl}, frame: f}, nil
}

func (c *ToggleKey) Redo() error {
	c.prev = c.frame.IsKey()
	c.frame.SetKey(!c.prev)
	c.refresh()
	return nil
}

func (c *ToggleKey) Undo() error {
	c.frame.SetKey(c.prev)
	c.refresh()
	return nil
}

// ToggleSkipVisible flips whether a frame is left out of onion skinning.
type ToggleSkipVisible struct {
	animBase
	frame *timeline.Frame
	prev  bool
}

// NewToggleSkipVisible creates a command toggling f's skip flag.
func NewToggleSkipVisible(doc *document.Document, f *timeline.Frame) (*ToggleSkipVisible, error) {
	tl, _, err := frameTrack(doc, f)
	if err != nil {
		return nil, err
	}
	return &ToggleSkipVisible{animBase: animBase{base: base{doc: doc, label: "Toggle Skip Visible"}, tl: tl}, frame: f}, nil
}

func (c *ToggleSkipVisible) Redo() error {
	c.prev = c.frame.SkipVisible()
	c.frame.SetSkipVisible(!c.prev)
	c.refresh()
	return nil
}

func (c *ToggleSkipVisible) Undo() error {
	c.frame.SetSkipVisible(c.prev)
	c.refresh()
	return nil
}

// ChangeDescription sets a frame's description and renames its cel to
// match.
type ChangeDescription struct {
	animBase
	frame    *timeline.Frame
	desc     string
	prevDesc string
	cel      *layer.Leaf
	prevName string
}

// NewChangeDescription creates a command describing f as desc.
func NewChangeDescription(doc *document.Document, f *timeline.Frame, desc string) (*ChangeDescription, error) {
	tl, _, err := frameTrack(doc, f)
	if err != nil {
		return nil, err
	}
	return &ChangeDescription{
		animBase: animBase{base: base{doc: doc, label: "Change Description"}, tl: tl},
		frame:    f,
		desc:     desc,
	}, nil
}

func (c *ChangeDescription) Redo() error {
	c.prevDesc = c.frame.Description()
	c.frame.SetDescription(c.desc)
	c.cel = c.frame.Cel()
	if c.cel != nil {
		c.prevName = c.cel.Name()
		c.cel.SetName(timeline.CelName(c.desc))
	}
	c.doc.NotifyChanged()
	return nil
}

func (c *ChangeDescription) Undo() error {
	c.frame.SetDescription(c.prevDesc)
	if c.cel != nil {
		c.cel.SetName(c.prevName)
		c.cel = nil
	}
	c.doc.NotifyChanged()
	return nil
}

// AddCel creates a leaf, binds it to a frame and selects it.
type AddCel struct {
	animBase
	frame  *timeline.Frame
	parent *layer.Group
	layer  *layer.Leaf
	prev   layer.Node
}

// NewAddCel creates a command adding a cel to f, which must not have one.
// The cel goes into the track's group, or the root if the group is no
// longer in the tree.
func NewAddCel(doc *document.Document, f *timeline.Frame) (*AddCel, error) {
	tl, tr, err := frameTrack(doc, f)
	if err != nil {
		return nil, err
	}
	if f.Cel() != nil {
		return nil, fmt.Errorf("frame %d: %w", f.Index(), ErrFrameHasCel)
	}
	parent := tr.Group()
	if parent == nil || !doc.Tree().Contains(parent) {
		parent = doc.Root()
	}
	return &AddCel{
		animBase: animBase{base: base{doc: doc, label: "Add Cel"}, tl: tl},
		frame:    f,
		parent:   parent,
		layer:    layer.NewLeaf(timeline.CelName(f.Description())),
	}, nil
}

// Layer returns the cel this command adds.
func (c *AddCel) Layer() *layer.Leaf { return c.layer }

func (c *AddCel) Redo() error {
	if err := c.doc.Insert(c.parent, c.parent.Len(), c.layer); err != nil {
		return err
	}
	c.prev = c.doc.Current()
	if err := c.doc.SetCurrent(c.layer); err != nil {
		return err
	}
	c.frame.SetCel(c.layer)
	c.doc.NotifyCanvas(c.layer)
	c.refresh()
	return nil
}

func (c *AddCel) Undo() error {
	c.frame.SetCel(nil)
	if _, _, err := c.doc.Remove(c.layer); err != nil {
		return err
	}
	if err := c.doc.SetCurrent(c.prev); err != nil {
		return err
	}
	c.doc.NotifyCanvas(c.layer)
	c.refresh()
	return nil
}

// RemoveCel unbinds a frame's cel. The leaf itself leaves the tree only
// when no other frame binds it.
type RemoveCel struct {
	animBase
	track   *timeline.Track
	frame   *timeline.Frame
	cel     *layer.Leaf
	prevSel layer.Node
	orphans orphans
}

// NewRemoveCel creates a command removing f's cel.
func NewRemoveCel(doc *document.Document, f *timeline.Frame) (*RemoveCel, error) {
	tl, tr, err := frameTrack(doc, f)
	if err != nil {
		return nil, err
	}
	if f.Cel() == nil {
		return nil, fmt.Errorf("frame %d: %w", f.Index(), ErrNoCel)
	}
	return &RemoveCel{
		animBase: animBase{base: base{doc: doc, label: "Remove Cel"}, tl: tl},
		track:    tr,
		frame:    f,
		cel:      f.Cel(),
	}, nil
}

func (c *RemoveCel) Redo() error {
	c.prevSel = c.doc.Current()
	c.frame.SetCel(nil)
	if err := c.orphans.redo(c.doc, c.tl, c.cel); err != nil {
		c.frame.SetCel(c.cel)
		return err
	}
	if c.prevSel == layer.Node(c.cel) {
		if next := c.track.CelForFrame(c.frame); next != nil && c.doc.Tree().Contains(next) {
			if err := c.doc.SetCurrent(next); err != nil {
				return err
			}
		}
	}
	c.refresh()
	return nil
}

func (c *RemoveCel) Undo() error {
	if err := c.orphans.undo(); err != nil {
		return err
	}
	c.frame.SetCel(c.cel)
	if err := c.doc.SetCurrent(c.prevSel); err != nil {
		return err
	}
	c.refresh()
	return nil
}

// AppendFrames adds empty frames at the end of the current track.
type AppendFrames struct {
	animBase
	track *timeline.Track
	n     int
}

// NewAppendFrames creates a command appending n frames.
func NewAppendFrames(doc *document.Document, n int) (*AppendFrames, error) {
	if n <= 0 {
		return nil, ErrInvalidCount
	}
	tl, tr, err := currentTrack(doc)
	if err != nil {
		return nil, err
	}
	return &AppendFrames{animBase: animBase{base: base{doc: doc, label: "Append Frames"}, tl: tl}, track: tr, n: n}, nil
}

func (c *AppendFrames) Redo() error {
	c.track.AppendFrames(c.n)
	c.restructure()
	return nil
}

func (c *AppendFrames) Undo() error {
	c.track.RemoveLast(c.n)
	c.restructure()
	return nil
}

// InsertFrames inserts empty frames before the current frame.
type InsertFrames struct {
	animBase
	track *timeline.Track
	idx   int
	n     int
}

// NewInsertFrames creates a command inserting n frames at the current
// frame of the current track.
func NewInsertFrames(doc *document.Document, n int) (*InsertFrames, error) {
	if n <= 0 {
		return nil, ErrInvalidCount
	}
	tl, tr, err := currentTrack(doc)
	if err != nil {
		return nil, err
	}
	return &InsertFrames{
		animBase: animBase{base: base{doc: doc, label: "Insert Frames"}, tl: tl},
		track:    tr,
		idx:      tr.Idx(),
		n:        n,
	}, nil
}

func (c *InsertFrames) Redo() error {
	c.track.InsertEmptyFrames(c.idx, c.n)
	c.restructure()
	return nil
}

func (c *InsertFrames) Undo() error {
	c.track.RemoveFrames(c.idx, c.n)
	c.restructure()
	return nil
}

// RemoveFrames removes a range of frames starting at the current frame.
// Cels bound only by removed frames leave the tree.
type RemoveFrames struct {
	animBase
	track   *timeline.Track
	idx     int
	n       int
	removed []*timeline.Frame
	at      int
	prevIdx int
	prevSel layer.Node
	orphans orphans
}

// NewRemoveFrames creates a command removing n frames of the current
// track starting at its current frame.
func NewRemoveFrames(doc *document.Document, n int) (*RemoveFrames, error) {
	if n <= 0 {
		return nil, ErrInvalidCount
	}
	tl, tr, err := currentTrack(doc)
	if err != nil {
		return nil, err
	}
	return &RemoveFrames{
		animBase: animBase{base: base{doc: doc, label: "Remove Frames"}, tl: tl},
		track:    tr,
		idx:      tr.Idx(),
		n:        n,
	}, nil
}

func (c *RemoveFrames) Redo() error {
	c.prevSel = c.doc.Current()
	c.prevIdx = c.track.Idx()
	c.removed = c.track.RemoveFrames(c.idx, c.n)
	if len(c.removed) > 0 {
		c.at = c.removed[0].Index()
	}
	cels := make([]*layer.Leaf, 0, len(c.removed))
	for _, f := range c.removed {
		cels = append(cels, f.Cel())
	}
	if err := c.orphans.redo(c.doc, c.tl, cels...); err != nil {
		c.track.InsertFrames(c.at, c.removed)
		c.track.Select(c.prevIdx)
		return err
	}
	c.restructure()
	return nil
}

func (c *RemoveFrames) Undo() error {
	if err := c.orphans.undo(); err != nil {
		return err
	}
	if len(c.removed) > 0 {
		c.track.InsertFrames(c.at, c.removed)
	}
	c.removed = nil
	c.track.Select(c.prevIdx)
	if err := c.doc.SetCurrent(c.prevSel); err != nil {
		return err
	}
	c.restructure()
	return nil
}

// PasteCel binds the cel of the pending copy or cut to a frame. A cut
// also unbinds the source frame. A cel the target frame held before is
// removed from the tree if nothing else binds it.
type PasteCel struct {
	animBase
	frame   *timeline.Frame
	prevOp  timeline.EditOperation
	prevSrc *timeline.Frame
	prevCel *layer.Leaf
	cutCel  *layer.Leaf
	orphans orphans
}

// NewPasteCel creates a command pasting the pending edit onto f.
func NewPasteCel(doc *document.Document, f *timeline.Frame) (*PasteCel, error) {
	tl, _, err := frameTrack(doc, f)
	if err != nil {
		return nil, err
	}
	c := &PasteCel{animBase: animBase{base: base{doc: doc, label: "Paste Cel"}, tl: tl}, frame: f}
	if _, _, err := c.pending(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *PasteCel) pending() (timeline.EditOperation, *timeline.Frame, error) {
	op, src := c.tl.Edit()
	switch {
	case op == timeline.EditNone || src == nil:
		return op, src, ErrNoPendingEdit
	case src == c.frame:
		return op, src, ErrPasteOntoSource
	case src.Cel() == nil:
		return op, src, fmt.Errorf("paste source frame %d: %w", src.Index(), ErrNoCel)
	}
	return op, src, nil
}

func (c *PasteCel) Redo() error {
	op, src, err := c.pending()
	if err != nil {
		return err
	}
	c.prevOp, c.prevSrc = op, src
	c.prevCel = c.frame.SetCel(src.Cel())
	c.cutCel = nil
	if op == timeline.EditCut {
		c.cutCel = src.SetCel(nil)
	}
	c.tl.SetEdit(timeline.EditNone, nil)
	if err := c.orphans.redo(c.doc, c.tl, c.prevCel); err != nil {
		c.restore()
		return err
	}
	c.refresh()
	return nil
}

func (c *PasteCel) restore() {
	if c.cutCel != nil {
		c.prevSrc.SetCel(c.cutCel)
		c.cutCel = nil
	}
	c.frame.SetCel(c.prevCel)
	c.tl.SetEdit(c.prevOp, c.prevSrc)
}

func (c *PasteCel) Undo() error {
	if err := c.orphans.undo(); err != nil {
		return err
	}
	c.restore()
	c.refresh()
	return nil
}
