package layer

// Backdrop is the flattened, opaque image beneath a node: a background
// color with a stack of leaves composited over it. Tiles are rendered
// on demand and cached.
type Backdrop struct {
	base   Pixel
	layers []backdropLayer
	cache  map[TileKey]*[TileSize * TileSize]Pixel
}

type backdropLayer struct {
	surface *Surface
	mode    BlendMode
	opacity float32
}

// NewBackdrop creates a backdrop over an opaque background color.
func NewBackdrop(background Pixel) *Backdrop {
	background.A = 1
	return &Backdrop{base: background, cache: make(map[TileKey]*[TileSize * TileSize]Pixel)}
}

// Add stacks a surface on top of the backdrop. Surfaces with zero
// opacity are skipped.
func (b *Backdrop) Add(s *Surface, mode BlendMode, opacity float64) {
	if opacity <= 0 {
		return
	}
	b.layers = append(b.layers, backdropLayer{surface: s, mode: mode, opacity: float32(opacity)})
	clear(b.cache)
}

// Tile returns the flattened pixels of the tile at k.
func (b *Backdrop) Tile(k TileKey) *[TileSize * TileSize]Pixel {
	if t, ok := b.cache[k]; ok {
		return t
	}
	out := new([TileSize * TileSize]Pixel)
	for i := range out {
		out[i] = b.base
	}
	for _, l := range b.layers {
		st, ok := l.surface.tiles[k]
		if !ok {
			continue
		}
		for i := range out {
			out[i] = l.mode.Composite(out[i], st.px[i], l.opacity)
		}
	}
	b.cache[k] = out
	return out
}

// At returns the flattened pixel at (x, y).
func (b *Backdrop) At(x, y int) Pixel {
	k, off := tileKeyFor(x, y)
	return b.Tile(k)[off]
}

// RenderBehind builds the backdrop under n from the visible leaves
// beneath it.
func (t *Tree) RenderBehind(n Node, background Pixel) *Backdrop {
	b := NewBackdrop(background)
	for _, l := range t.Below(n) {
		b.Add(l.surface, l.mode, t.EffectiveOpacity(l))
	}
	return b
}

// Flatten renders the whole visible stack over background.
func (t *Tree) Flatten(background Pixel) *Backdrop {
	b := NewBackdrop(background)
	for _, l := range t.Leaves() {
		b.Add(l.surface, l.mode, t.EffectiveOpacity(l))
	}
	return b
}
