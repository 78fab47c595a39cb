package document

import (
	"github.com/dshills/strata/internal/layer"
	"github.com/dshills/strata/internal/timeline"
)

// EventKind discriminates document events.
type EventKind int

const (
	// EventChanged is a generic change with no payload.
	EventChanged EventKind = iota

	// EventInserted reports that Layer was attached to the tree.
	EventInserted

	// EventBeforeDelete reports that Layer is about to be detached.
	EventBeforeDelete

	// EventCleared reports that the document was reset.
	EventCleared

	// EventTrackInserted reports that Track was added to the timeline.
	EventTrackInserted

	// EventTrackRemoved reports that Track was removed from the timeline.
	EventTrackRemoved
)

// String returns the event kind name.
func (k EventKind) String() string {
	switch k {
	case EventChanged:
		return "changed"
	case EventInserted:
		return "inserted"
	case EventBeforeDelete:
		return "before-delete"
	case EventCleared:
		return "cleared"
	case EventTrackInserted:
		return "track-inserted"
	case EventTrackRemoved:
		return "track-removed"
	default:
		return "unknown"
	}
}

// Event is delivered to document-change observers. Layer is set for
// EventInserted and EventBeforeDelete; Track for the track events.
type Event struct {
	Kind  EventKind
	Layer layer.Node
	Track *timeline.Track
}

// StrokeEvent is delivered to stroke observers.
type StrokeEvent struct {
	Layer  *layer.Leaf
	Stroke *layer.Stroke
	Brush  layer.Brush
}
