package timeline

import "github.com/dshills/strata/internal/layer"

// Frame is one time slot of a track.
type Frame struct {
	index       int
	description string
	isKey       bool
	skipVisible bool
	cel         *layer.Leaf
}

// Index returns the frame's position in its track.
func (f *Frame) Index() int { return f.index }

// Description returns the free-text description.
func (f *Frame) Description() string { return f.description }

// SetDescription changes the description.
func (f *Frame) SetDescription(s string) { f.description = s }

// IsKey reports whether the frame is a key frame.
func (f *Frame) IsKey() bool { return f.isKey }

// SetKey sets the key flag.
func (f *Frame) SetKey(v bool) { f.isKey = v }

// SkipVisible reports whether the frame is left out of onion skinning.
func (f *Frame) SkipVisible() bool { return f.skipVisible }

// SetSkipVisible sets the skip flag.
func (f *Frame) SetSkipVisible(v bool) { f.skipVisible = v }

// Cel returns the bound leaf, or nil.
func (f *Frame) Cel() *layer.Leaf { return f.cel }

// SetCel binds l (nil unbinds) and returns the previous cel.
func (f *Frame) SetCel(l *layer.Leaf) *layer.Leaf {
	prev := f.cel
	f.cel = l
	return prev
}

// CelName returns the layer name used for a cel of a frame with the
// given description.
func CelName(description string) string {
	if description == "" {
		return "CEL"
	}
	return "CEL " + description
}
