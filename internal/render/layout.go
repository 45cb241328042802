package render

import "github.com/saturnino-fabrica-de-software/facelens/internal/domain"

// Placement is where one label line is drawn. X and Y are the text origin
// (left edge, baseline). Width and Height are the measured text size.
type Placement struct {
	Text   string
	X      int
	Y      int
	Width  int
	Height int
}

// Plate returns the outer background rectangle corners of the line,
// both inclusive.
func (p Placement) Plate(padding int) (x1, y1, x2, y2 int) {
	return p.X - padding, p.Y - p.Height - padding, p.X + p.Width + padding, p.Y + padding
}

// MeasureFunc returns the pixel width and height of a text line.
type MeasureFunc func(text string) (width, height int)

// Layout stacks lines bottom-up above box. The first line sits lowest at
// max(n*LineHeight+Padding, box.Y) so the block never starts above the top
// edge of the image; each following line is LineHeight pixels higher. The
// horizontal origin is pulled left to keep the text inside imageWidth and is
// never negative.
func (s Style) Layout(box domain.BoundingBox, lines []string, imageWidth int, measure MeasureFunc) []Placement {
	if len(lines) == 0 {
		return nil
	}

	startY := len(lines)*s.LineHeight + s.Padding
	if box.Y > startY {
		startY = box.Y
	}

	out := make([]Placement, 0, len(lines))
	for i, line := range lines {
		w, h := measure(line)

		x := box.X
		if limit := imageWidth - w - s.Padding; limit < x {
			x = limit
		}
		if x < 0 {
			x = 0
		}

		out = append(out, Placement{
			Text:   line,
			X:      x,
			Y:      startY - i*s.LineHeight,
			Width:  w,
			Height: h,
		})
	}
	return out
}
