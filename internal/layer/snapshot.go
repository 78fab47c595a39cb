package layer

// Snapshot is an immutable capture of a leaf's content and stroke record.
// It can be loaded into any leaf any number of times.
type Snapshot struct {
	tiles   map[TileKey]*tile
	strokes []*Stroke
}

// Bounds returns the tile-granular bounding box of the captured content.
func (s *Snapshot) Bounds() Rect {
	return (&Surface{tiles: s.tiles}).Bounds()
}

// Strokes returns the number of strokes captured.
func (s *Snapshot) Strokes() int {
	return len(s.strokes)
}
