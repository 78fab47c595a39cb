package command

import "errors"

// Errors returned by command constructors and by Redo.
var (
	// ErrMergeIntoSelf indicates a merge whose source and destination are the same layer.
	ErrMergeIntoSelf = errors.New("cannot merge a layer into itself")

	// ErrLayerLocked indicates a content change to a locked layer.
	ErrLayerLocked = errors.New("layer is locked")

	// ErrNoPendingEdit indicates a paste with no copy or cut recorded.
	ErrNoPendingEdit = errors.New("no pending copy or cut")

	// ErrPasteOntoSource indicates a paste onto the frame that was copied or cut.
	ErrPasteOntoSource = errors.New("cannot paste a cel onto its source frame")

	// ErrNoCel indicates a cel operation on a frame without a cel.
	ErrNoCel = errors.New("frame has no cel")

	// ErrFrameHasCel indicates adding a cel to a frame that already has one.
	ErrFrameHasCel = errors.New("frame already has a cel")

	// ErrNoTrack indicates an animation operation with no current track.
	ErrNoTrack = errors.New("no current track")

	// ErrFrameNotInTrack indicates a frame that belongs to no track of the timeline.
	ErrFrameNotInTrack = errors.New("frame does not belong to a track")

	// ErrCelBound indicates a structural removal of a layer that frames
	// still bind as a cel. Such layers go through RemoveCel or RemoveFrames.
	ErrCelBound = errors.New("layer is bound as a cel")

	// ErrInvalidCount indicates a non-positive frame count.
	ErrInvalidCount = errors.New("frame count must be positive")
)
