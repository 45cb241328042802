package render

import "image/color"

// Style holds the fixed drawing constants of the overlay.
type Style struct {
	OuterColor     color.RGBA
	InnerColor     color.RGBA
	TextColor      color.RGBA
	OuterThickness float64
	InnerThickness float64
	LineHeight     int
	Padding        int
	PlateInset     int
	FontSize       float64
}

// DefaultStyle is a white outer border with an orange inner border and white
// text on two-tone label plates.
func DefaultStyle() Style {
	return Style{
		OuterColor:     color.RGBA{R: 255, G: 255, B: 255, A: 255},
		InnerColor:     color.RGBA{R: 255, G: 165, B: 0, A: 255},
		TextColor:      color.RGBA{R: 255, G: 255, B: 255, A: 255},
		OuterThickness: 6,
		InnerThickness: 3,
		LineHeight:     25,
		Padding:        5,
		PlateInset:     2,
		FontSize:       18,
	}
}
