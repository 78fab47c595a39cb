package layer

import (
	"fmt"
	"strconv"
	"strings"
)

// Pixel is a premultiplied RGBA value with components in [0, 1].
type Pixel struct {
	R, G, B, A float32
}

// Transparent is the fully transparent pixel.
var Transparent = Pixel{}

// RGB returns an opaque pixel with the given straight color.
func RGB(r, g, b float32) Pixel {
	return Pixel{R: r, G: g, B: b, A: 1}
}

// RGBA returns a premultiplied pixel from straight color and alpha.
func RGBA(r, g, b, a float32) Pixel {
	return Pixel{R: r * a, G: g * a, B: b * a, A: a}
}

// IsTransparent returns true if the pixel has no coverage.
func (p Pixel) IsTransparent() bool {
	return p.A <= 0
}

// Scale multiplies every component by f.
func (p Pixel) Scale(f float32) Pixel {
	return Pixel{R: p.R * f, G: p.G * f, B: p.B * f, A: p.A * f}
}

// ParseColor parses "#rrggbb" or "#rrggbbaa" into a premultiplied pixel.
// The empty string is transparent.
func ParseColor(s string) (Pixel, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Transparent, nil
	}
	hex, ok := strings.CutPrefix(s, "#")
	if !ok || (len(hex) != 6 && len(hex) != 8) {
		return Transparent, fmt.Errorf("invalid color %q", s)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return Transparent, fmt.Errorf("invalid color %q", s)
	}
	if len(hex) == 6 {
		v = v<<8 | 0xff
	}
	ch := func(shift uint) float32 { return float32((v>>shift)&0xff) / 255 }
	return RGBA(ch(24), ch(16), ch(8), ch(0)), nil
}

// Hex formats the straight color as "#rrggbbaa".
func (p Pixel) Hex() string {
	if p.A <= 0 {
		return "#00000000"
	}
	ch := func(v float32) uint8 {
		return uint8(clamp01(v/p.A, 1)*255 + 0.5)
	}
	return fmt.Sprintf("#%02x%02x%02x%02x", ch(p.R), ch(p.G), ch(p.B), uint8(clamp01(p.A, 1)*255+0.5))
}

// BlendMode selects the separable blend function used when a leaf is
// composited onto what lies beneath it.
type BlendMode uint8

const (
	// BlendNormal is plain source-over compositing.
	BlendNormal BlendMode = iota
	BlendMultiply
	BlendScreen
	BlendDarken
	BlendLighten
	BlendDifference
)

var blendModes = []struct {
	mode        BlendMode
	name        string
	displayName string
	description string
}{
	{BlendNormal, "svg:src-over", "Normal", "The top layer only, without blending colors."},
	{BlendMultiply, "svg:multiply", "Multiply", "Similar to loading two slides into a projector and projecting the combined result."},
	{BlendScreen, "svg:screen", "Screen", "Like shining two separate slide projectors onto a screen simultaneously."},
	{BlendDarken, "svg:darken", "Darken", "The top layer is used only where it is darker than the backdrop."},
	{BlendLighten, "svg:lighten", "Lighten", "The top layer is used only where it is lighter than the backdrop."},
	{BlendDifference, "svg:difference", "Difference", "Subtracts the darker color from the lighter of the two."},
}

// BlendModes returns every supported mode in display order.
func BlendModes() []BlendMode {
	modes := make([]BlendMode, len(blendModes))
	for i, m := range blendModes {
		modes[i] = m.mode
	}
	return modes
}

// String returns the canonical operator name, e.g. "svg:src-over".
func (m BlendMode) String() string {
	if int(m) < len(blendModes) {
		return blendModes[m].name
	}
	return fmt.Sprintf("blend(%d)", uint8(m))
}

// DisplayName returns the user-facing mode name.
func (m BlendMode) DisplayName() string {
	if int(m) < len(blendModes) {
		return blendModes[m].displayName
	}
	return "Unknown"
}

// Description returns a one-sentence explanation of the mode.
func (m BlendMode) Description() string {
	if int(m) < len(blendModes) {
		return blendModes[m].description
	}
	return ""
}

// ParseBlendMode accepts either the canonical operator name or the
// display name, case-sensitively for the former.
func ParseBlendMode(s string) (BlendMode, error) {
	for _, m := range blendModes {
		if s == m.name || s == m.displayName {
			return m.mode, nil
		}
	}
	return BlendNormal, fmt.Errorf("%w: %q", ErrUnknownBlendMode, s)
}

// blendChannel is the separable blend function B(cb, cs) on straight colors.
func (m BlendMode) blendChannel(cb, cs float32) float32 {
	switch m {
	case BlendMultiply:
		return cb * cs
	case BlendScreen:
		return cb + cs - cb*cs
	case BlendDarken:
		return min(cb, cs)
	case BlendLighten:
		return max(cb, cs)
	case BlendDifference:
		if cb > cs {
			return cb - cs
		}
		return cs - cb
	default:
		return cs
	}
}

// Composite returns src, scaled by opacity, blended over dst.
//
// Both pixels are premultiplied. The result follows the separable
// compositing formula co = cs(1-ab) + cb(1-as) + as*ab*B(Cb, Cs).
func (m BlendMode) Composite(dst, src Pixel, opacity float32) Pixel {
	src = src.Scale(opacity)
	as, ab := src.A, dst.A
	if as <= 0 {
		return dst
	}
	out := Pixel{A: as + ab*(1-as)}
	if m == BlendNormal || ab <= 0 {
		out.R = src.R + dst.R*(1-as)
		out.G = src.G + dst.G*(1-as)
		out.B = src.B + dst.B*(1-as)
		return out
	}
	ch := func(cs, cb float32) float32 {
		b := m.blendChannel(cb/ab, cs/as)
		return cs*(1-ab) + cb*(1-as) + as*ab*b
	}
	out.R = ch(src.R, dst.R)
	out.G = ch(src.G, dst.G)
	out.B = ch(src.B, dst.B)
	return out
}

// unflatten finds the pixel with the least alpha that, composited in
// normal mode over the opaque background bg, reproduces the opaque
// color d.
func unflatten(d, bg Pixel) Pixel {
	alpha := func(dc, bc float32) float32 {
		switch {
		case dc > bc && bc < 1:
			return (dc - bc) / (1 - bc)
		case dc < bc && bc > 0:
			return (bc - dc) / bc
		default:
			return 0
		}
	}
	a := max(alpha(d.R, bg.R), alpha(d.G, bg.G), alpha(d.B, bg.B))
	if a <= 0 {
		return Transparent
	}
	a = min(a, 1)
	return Pixel{
		R: clamp01(d.R-(1-a)*bg.R, a),
		G: clamp01(d.G-(1-a)*bg.G, a),
		B: clamp01(d.B-(1-a)*bg.B, a),
		A: a,
	}
}

func clamp01(v, hi float32) float32 {
	if v < 0 {
		return 0
	}
	if v > hi {
		return hi
	}
	return v
}
