package domain

import "image"

// Gender is the binary gender label derived from the attribute model.
type Gender string

const (
	GenderMan   Gender = "Man"
	GenderWoman Gender = "Woman"
)

// BoundingBox is a face region in pixels with a top-left origin.
type BoundingBox struct {
	X int `json:"x"`
	Y int `json:"y"`
	W int `json:"w"`
	H int `json:"h"`
}

// Valid reports whether the box has a positive area.
func (b BoundingBox) Valid() bool {
	return b.W > 0 && b.H > 0
}

// Rect returns the box as an image.Rectangle.
func (b BoundingBox) Rect() image.Rectangle {
	return image.Rect(b.X, b.Y, b.X+b.W, b.Y+b.H)
}

// ClampTo returns the part of the box that lies inside bounds.
// The result may be empty; callers check Valid before cropping.
func (b BoundingBox) ClampTo(bounds image.Rectangle) BoundingBox {
	r := b.Rect().Intersect(bounds)
	if r.Empty() {
		return BoundingBox{}
	}
	return BoundingBox{X: r.Min.X, Y: r.Min.Y, W: r.Dx(), H: r.Dy()}
}

// FaceRecord is the canonical, detector-agnostic record of one detected face.
// Only Position and Confidence are set by detection; the remaining fields are
// filled once by enrichment and stay empty when enrichment fails.
type FaceRecord struct {
	Position        BoundingBox        `json:"position"`
	Confidence      *float64           `json:"confidence"`
	Age             *int               `json:"age,omitempty"`
	Gender          Gender             `json:"gender,omitempty"`
	DominantRace    string             `json:"dominant_race,omitempty"`
	DominantEmotion string             `json:"dominant_emotion,omitempty"`
	Emotion         map[string]float64 `json:"emotion,omitempty"`
	Race            map[string]float64 `json:"race,omitempty"`
}

// Enriched reports whether attribute enrichment populated the record.
func (f FaceRecord) Enriched() bool {
	return f.Age != nil || f.Gender != "" || f.DominantEmotion != "" || f.DominantRace != ""
}

// AnalysisResult is the outcome of the analysis pipeline for one image.
type AnalysisResult struct {
	Faces      []FaceRecord
	OutputFile string
}

// RenderedImage is an annotated JPEG together with its detection summary.
type RenderedImage struct {
	JPEG          []byte
	FacesDetected int
}
