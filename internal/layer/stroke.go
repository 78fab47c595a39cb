package layer

import "math"

// Brush describes how a stroke deposits paint.
type Brush struct {
	Color    Pixel   // straight color; A is ignored
	Radius   float64 // dab radius at full pressure
	Opacity  float64 // dab opacity at full pressure
	Hardness float64 // fraction of the radius painted at full opacity
}

// DefaultBrush returns a small hard black brush.
func DefaultBrush() Brush {
	return Brush{Color: RGB(0, 0, 0), Radius: 2, Opacity: 1, Hardness: 0.8}
}

// StrokePoint is one sampled input position.
type StrokePoint struct {
	X, Y     float64
	Pressure float64
}

// Stroke is a completed free-hand stroke. Once recorded by a leaf it is
// treated as immutable.
type Stroke struct {
	Brush  Brush
	Points []StrokePoint
}

// NewStroke creates a stroke for brush. Points are added with Add.
func NewStroke(brush Brush) *Stroke {
	return &Stroke{Brush: brush}
}

// Add appends a sample.
func (s *Stroke) Add(x, y, pressure float64) {
	s.Points = append(s.Points, StrokePoint{X: x, Y: y, Pressure: pressure})
}

// Bounds returns the pixel rectangle the stroke can touch.
func (s *Stroke) Bounds() Rect {
	var r Rect
	for _, p := range s.Points {
		rad := s.Brush.Radius*p.Pressure + 1
		x0 := int(math.Floor(p.X - rad))
		y0 := int(math.Floor(p.Y - rad))
		x1 := int(math.Ceil(p.X + rad))
		y1 := int(math.Ceil(p.Y + rad))
		r = r.Union(Rect{X: x0, Y: y0, W: x1 - x0, H: y1 - y0})
	}
	return r
}

// render paints the stroke onto surf as a sequence of dabs spaced at a
// quarter of the radius.
func (s *Stroke) render(surf *Surface) {
	if len(s.Points) == 0 {
		return
	}
	prev := s.Points[0]
	s.dab(surf, prev)
	for _, p := range s.Points[1:] {
		dist := math.Hypot(p.X-prev.X, p.Y-prev.Y)
		spacing := math.Max(s.Brush.Radius*min(p.Pressure, prev.Pressure)/4, 0.5)
		steps := int(dist / spacing)
		for i := 1; i <= steps; i++ {
			t := float64(i) / float64(steps+1)
			s.dab(surf, StrokePoint{
				X:        prev.X + (p.X-prev.X)*t,
				Y:        prev.Y + (p.Y-prev.Y)*t,
				Pressure: prev.Pressure + (p.Pressure-prev.Pressure)*t,
			})
		}
		s.dab(surf, p)
		prev = p
	}
}

func (s *Stroke) dab(surf *Surface, p StrokePoint) {
	radius := s.Brush.Radius * p.Pressure
	if radius <= 0 {
		return
	}
	hard := math.Min(math.Max(s.Brush.Hardness, 0), 0.999)
	opacity := s.Brush.Opacity * p.Pressure
	c := s.Brush.Color
	x0, x1 := int(math.Floor(p.X-radius)), int(math.Ceil(p.X+radius))
	y0, y1 := int(math.Floor(p.Y-radius)), int(math.Ceil(p.Y+radius))
	for y := y0; y <= y1; y++ {
		for x := x0; x <= x1; x++ {
			d := math.Hypot(float64(x)+0.5-p.X, float64(y)+0.5-p.Y) / radius
			if d > 1 {
				continue
			}
			a := opacity
			if d > hard {
				a *= (1 - d) / (1 - hard)
			}
			if a <= 0 {
				continue
			}
			src := RGBA(c.R, c.G, c.B, float32(a))
			surf.Set(x, y, BlendNormal.Composite(surf.At(x, y), src, 1))
		}
	}
}
