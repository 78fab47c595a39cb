package layer

import "sort"

// TileSize is the edge length of a surface tile in pixels.
const TileSize = 64

// TileKey addresses a tile by tile coordinates.
type TileKey struct {
	X, Y int
}

// Rect returns the pixel rectangle covered by the tile.
func (k TileKey) Rect() Rect {
	return Rect{X: k.X * TileSize, Y: k.Y * TileSize, W: TileSize, H: TileSize}
}

// tileKeyFor returns the key of the tile holding pixel (x, y) and the
// pixel's offset within that tile.
func tileKeyFor(x, y int) (TileKey, int) {
	tx, ox := floorDiv(x, TileSize)
	ty, oy := floorDiv(y, TileSize)
	return TileKey{X: tx, Y: ty}, oy*TileSize + ox
}

func floorDiv(v, d int) (int, int) {
	q, r := v/d, v%d
	if r < 0 {
		q--
		r += d
	}
	return q, r
}

// tile stores one block of pixels. A frozen tile is shared with at least
// one snapshot and must be copied before it is written.
type tile struct {
	px     [TileSize * TileSize]Pixel
	frozen bool
}

func (t *tile) isEmpty() bool {
	for i := range t.px {
		if !t.px[i].IsTransparent() {
			return false
		}
	}
	return true
}

// Surface is an unbounded tiled pixel plane. Missing tiles are
// transparent. The zero value is not usable; call NewSurface.
type Surface struct {
	tiles map[TileKey]*tile
}

// NewSurface creates an empty surface.
func NewSurface() *Surface {
	return &Surface{tiles: make(map[TileKey]*tile)}
}

// At returns the pixel at (x, y).
func (s *Surface) At(x, y int) Pixel {
	k, off := tileKeyFor(x, y)
	t, ok := s.tiles[k]
	if !ok {
		return Transparent
	}
	return t.px[off]
}

// Set writes the pixel at (x, y).
func (s *Surface) Set(x, y int, p Pixel) {
	k, off := tileKeyFor(x, y)
	if p.IsTransparent() {
		if _, ok := s.tiles[k]; !ok {
			return
		}
		p = Transparent
	}
	t := s.writable(k)
	t.px[off] = p
}

// Fill sets every pixel of r to p.
func (s *Surface) Fill(r Rect, p Pixel) {
	for y := r.Y; y < r.Y+r.H; y++ {
		for x := r.X; x < r.X+r.W; x++ {
			s.Set(x, y, p)
		}
	}
}

// writable returns the tile at k ready for writing, creating it or
// copying a frozen one as needed.
func (s *Surface) writable(k TileKey) *tile {
	t, ok := s.tiles[k]
	if !ok {
		t = &tile{}
		s.tiles[k] = t
		return t
	}
	if t.frozen {
		cp := &tile{px: t.px}
		s.tiles[k] = cp
		return cp
	}
	return t
}

// Keys returns the keys of all allocated tiles in row-major order.
func (s *Surface) Keys() []TileKey {
	keys := make([]TileKey, 0, len(s.tiles))
	for k := range s.tiles {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].Y != keys[j].Y {
			return keys[i].Y < keys[j].Y
		}
		return keys[i].X < keys[j].X
	})
	return keys
}

// Bounds returns the tile-granular bounding box of the painted area.
func (s *Surface) Bounds() Rect {
	var r Rect
	for k, t := range s.tiles {
		if !t.isEmpty() {
			r = r.Union(k.Rect())
		}
	}
	return r
}

// IsEmpty returns true if no pixel has coverage.
func (s *Surface) IsEmpty() bool {
	for _, t := range s.tiles {
		if !t.isEmpty() {
			return false
		}
	}
	return true
}

// Clear removes all content.
func (s *Surface) Clear() {
	s.tiles = make(map[TileKey]*tile)
}

// freeze marks every tile shared and returns a shallow copy of the tile map.
func (s *Surface) freeze() map[TileKey]*tile {
	out := make(map[TileKey]*tile, len(s.tiles))
	for k, t := range s.tiles {
		t.frozen = true
		out[k] = t
	}
	return out
}

// Clone returns an independent copy. Tiles are shared copy-on-write.
func (s *Surface) Clone() *Surface {
	return &Surface{tiles: s.freeze()}
}

// Equal returns true if both surfaces hold identical pixels.
func (s *Surface) Equal(o *Surface) bool {
	for k, t := range s.tiles {
		ot, ok := o.tiles[k]
		if !ok {
			if !t.isEmpty() {
				return false
			}
			continue
		}
		if t != ot && t.px != ot.px {
			return false
		}
	}
	for k, ot := range o.tiles {
		if _, ok := s.tiles[k]; !ok && !ot.isEmpty() {
			return false
		}
	}
	return true
}

// Translate shifts all content by (dx, dy) pixels.
func (s *Surface) Translate(dx, dy int) {
	if dx == 0 && dy == 0 {
		return
	}
	if dx%TileSize == 0 && dy%TileSize == 0 {
		moved := make(map[TileKey]*tile, len(s.tiles))
		for k, t := range s.tiles {
			moved[TileKey{X: k.X + dx/TileSize, Y: k.Y + dy/TileSize}] = t
		}
		s.tiles = moved
		return
	}
	src := s.tiles
	s.tiles = make(map[TileKey]*tile, len(src))
	for k, t := range src {
		ox, oy := k.X*TileSize, k.Y*TileSize
		for i, p := range t.px {
			if p.IsTransparent() {
				continue
			}
			s.Set(ox+i%TileSize+dx, oy+i/TileSize+dy, p)
		}
	}
}

// Composite blends src over s using mode and opacity.
func (s *Surface) Composite(src *Surface, mode BlendMode, opacity float32) {
	for k, st := range src.tiles {
		if st.isEmpty() {
			continue
		}
		dt := s.writable(k)
		for i := range dt.px {
			dt.px[i] = mode.Composite(dt.px[i], st.px[i], opacity)
		}
	}
}
