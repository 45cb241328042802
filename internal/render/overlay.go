// Package render burns face boxes and label blocks into a copy of an image.
package render

import (
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/carck/gg"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"

	"github.com/saturnino-fabrica-de-software/facelens/internal/domain"
)

// Annotation is a face box and the label lines to draw above it.
type Annotation struct {
	Box   domain.BoundingBox
	Lines []string
}

// Renderer draws overlays. It is safe for concurrent use.
type Renderer struct {
	style Style
	font  *opentype.Font
}

// NewRenderer parses the embedded label font.
func NewRenderer(style Style) (*Renderer, error) {
	f, err := opentype.Parse(goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("parse label font: %w", err)
	}
	return &Renderer{style: style, font: f}, nil
}

// Style returns the drawing constants in use.
func (r *Renderer) Style() Style {
	return r.style
}

// newFace returns a fresh font face; faces keep glyph caches and must not be
// shared between goroutines.
func (r *Renderer) newFace() (font.Face, error) {
	return opentype.NewFace(r.font, &opentype.FaceOptions{
		Size:    r.style.FontSize,
		DPI:     72,
		Hinting: font.HintingFull,
	})
}

// Render returns a new image with every annotation drawn. src is not modified.
// Label blocks of neighbouring faces may overlap.
func (r *Renderer) Render(src image.Image, annotations []Annotation) (image.Image, error) {
	face, err := r.newFace()
	if err != nil {
		return nil, fmt.Errorf("create font face: %w", err)
	}
	defer func() {
		_ = face.Close()
	}()

	dc := gg.NewContextForImage(src)
	dc.SetFontFace(face)

	height := textHeight(face)
	measure := func(text string) (int, int) {
		w, _ := dc.MeasureString(text)
		return int(math.Ceil(w)), height
	}

	for _, a := range annotations {
		r.drawBox(dc, a.Box)
		for _, p := range r.style.Layout(a.Box, a.Lines, dc.Width(), measure) {
			r.drawLabel(dc, p)
		}
	}

	return dc.Image(), nil
}

// drawBox strokes the outer border and then the thinner inner border, both
// centred on the box edges.
func (r *Renderer) drawBox(dc *gg.Context, box domain.BoundingBox) {
	x, y := float64(box.X), float64(box.Y)
	w, h := float64(box.W), float64(box.H)

	dc.SetColor(r.style.OuterColor)
	dc.SetLineWidth(r.style.OuterThickness)
	dc.DrawRectangle(x, y, w, h)
	dc.Stroke()

	dc.SetColor(r.style.InnerColor)
	dc.SetLineWidth(r.style.InnerThickness)
	dc.DrawRectangle(x, y, w, h)
	dc.Stroke()
}

func (r *Renderer) drawLabel(dc *gg.Context, p Placement) {
	x1, y1, x2, y2 := p.Plate(r.style.Padding)
	fillRect(dc, x1, y1, x2, y2, r.style.OuterColor)

	in := r.style.PlateInset
	fillRect(dc, x1+in, y1+in, x2-in, y2-in, r.style.InnerColor)

	dc.SetColor(r.style.TextColor)
	dc.DrawString(p.Text, float64(p.X), float64(p.Y))
}

// fillRect fills the rectangle between two inclusive corners.
func fillRect(dc *gg.Context, x1, y1, x2, y2 int, c color.Color) {
	if x2 < x1 || y2 < y1 {
		return
	}
	dc.SetColor(c)
	dc.DrawRectangle(float64(x1), float64(y1), float64(x2-x1+1), float64(y2-y1+1))
	dc.Fill()
}

// textHeight is the cap height of the face, used as the label text height.
func textHeight(face font.Face) int {
	m := face.Metrics()
	if m.CapHeight > 0 {
		return m.CapHeight.Ceil()
	}
	return m.Ascent.Ceil()
}
