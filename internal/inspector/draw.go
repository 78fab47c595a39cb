package inspector

import (
	"github.com/gdamore/tcell/v2"
	"github.com/rivo/uniseg"
)

// drawText draws s at (x, y) clipped to width cells and returns the
// number of cells used. Wide graphemes that would straddle the edge are
// dropped.
func drawText(s tcell.Screen, x, y, width int, text string, style tcell.Style) int {
	used := 0
	gr := uniseg.NewGraphemes(text)
	for gr.Next() {
		w := gr.Width()
		if w == 0 {
			continue
		}
		if used+w > width {
			break
		}
		runes := gr.Runes()
		var comb []rune
		if len(runes) > 1 {
			comb = runes[1:]
		}
		s.SetContent(x+used, y, runes[0], comb, style)
		used += w
	}
	return used
}

// fill paints width cells at (x, y) with spaces.
func fill(s tcell.Screen, x, y, width int, style tcell.Style) {
	for i := 0; i < width; i++ {
		s.SetContent(x+i, y, ' ', nil, style)
	}
}

// truncate shortens text to at most width cells, ending in an ellipsis
// when something was cut.
func truncate(text string, width int) string {
	if width <= 0 {
		return ""
	}
	if uniseg.StringWidth(text) <= width {
		return text
	}
	const ellipsis = "…"
	out := make([]byte, 0, len(text))
	used := 0
	gr := uniseg.NewGraphemes(text)
	for gr.Next() {
		w := gr.Width()
		if used+w > width-1 {
			break
		}
		out = append(out, gr.Str()...)
		used += w
	}
	return string(out) + ellipsis
}

// padRight pads text with spaces to width cells.
func padRight(text string, width int) string {
	for w := uniseg.StringWidth(text); w < width; w++ {
		text += " "
	}
	return text
}
