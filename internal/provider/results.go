package provider

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Area holds detector coordinates as [x1, y1, x2, y2]. It accepts either a
// coordinate array or an {x, y, w, h} object. Shapes it cannot read decode to
// nil so that a single malformed face never fails the whole detection result.
type Area []float64

func (a *Area) UnmarshalJSON(data []byte) error {
	var coords []float64
	if err := json.Unmarshal(data, &coords); err == nil {
		*a = coords
		return nil
	}

	var box struct {
		X *float64 `json:"x"`
		Y *float64 `json:"y"`
		W *float64 `json:"w"`
		H *float64 `json:"h"`
	}
	if err := json.Unmarshal(data, &box); err == nil && box.X != nil && box.Y != nil && box.W != nil && box.H != nil {
		*a = Area{*box.X, *box.Y, *box.X + *box.W, *box.Y + *box.H}
		return nil
	}

	*a = nil
	return nil
}

// RawFace is one detector entry before normalization. The confidence is read
// from "score" (RetinaFace) or "face_confidence" (DeepFace /represent).
type RawFace struct {
	FacialArea Area                 `json:"facial_area"`
	Score      *float64             `json:"score,omitempty"`
	Landmarks  map[string][]float64 `json:"landmarks,omitempty"`
}

func (f *RawFace) UnmarshalJSON(data []byte) error {
	var wire struct {
		FacialArea     Area            `json:"facial_area"`
		Score          *float64        `json:"score"`
		FaceConfidence *float64        `json:"face_confidence"`
		Landmarks      json.RawMessage `json:"landmarks"`
	}
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}

	*f = RawFace{FacialArea: wire.FacialArea, Score: wire.Score}
	if f.Score == nil {
		f.Score = wire.FaceConfidence
	}
	if len(wire.Landmarks) > 0 {
		// landmarks are informational; an unreadable shape is dropped
		_ = json.Unmarshal(wire.Landmarks, &f.Landmarks)
	}
	return nil
}

// RawDetections maps an opaque detector key to its face entry.
type RawDetections map[string]RawFace

// UnmarshalJSON accepts a keyed object, a list of entries, or any falsy value
// (null, false, empty list) meaning no faces were found. Entries that cannot be
// decoded are dropped so one bad face never loses the others.
func (d *RawDetections) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) || bytes.Equal(trimmed, []byte("false")) {
		*d = RawDetections{}
		return nil
	}

	switch trimmed[0] {
	case '{':
		var entries map[string]json.RawMessage
		if err := json.Unmarshal(trimmed, &entries); err != nil {
			return fmt.Errorf("%w: detections: %v", ErrInvalidResponse, err)
		}
		out := make(RawDetections, len(entries))
		for key, item := range entries {
			var face RawFace
			if err := json.Unmarshal(item, &face); err != nil {
				continue
			}
			out[key] = face
		}
		*d = out
		return nil
	case '[':
		var list []json.RawMessage
		if err := json.Unmarshal(trimmed, &list); err != nil {
			return fmt.Errorf("%w: detections: %v", ErrInvalidResponse, err)
		}
		out := make(RawDetections, len(list))
		for i, item := range list {
			var face RawFace
			if err := json.Unmarshal(item, &face); err != nil {
				// tuple-style payloads (e.g. [image, faces]) carry no face objects
				continue
			}
			out[fmt.Sprintf("face_%d", i+1)] = face
		}
		*d = out
		return nil
	}

	return fmt.Errorf("%w: unexpected detections payload", ErrInvalidResponse)
}

// Keys returns the detection keys in a stable order. Keys sharing a prefix
// compare by their numeric suffix, so face_2 precedes face_10.
func (d RawDetections) Keys() []string {
	keys := make([]string, 0, len(d))
	for k := range d {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		pi, ni, oki := splitKeySuffix(keys[i])
		pj, nj, okj := splitKeySuffix(keys[j])
		if oki && okj && pi == pj && ni != nj {
			return ni < nj
		}
		return keys[i] < keys[j]
	})
	return keys
}

func splitKeySuffix(key string) (string, int, bool) {
	idx := strings.LastIndexFunc(key, func(r rune) bool { return r < '0' || r > '9' })
	if idx == len(key)-1 {
		return key, 0, false
	}
	n, err := strconv.Atoi(key[idx+1:])
	if err != nil {
		return key, 0, false
	}
	return key[:idx+1], n, true
}

// GenderScores maps a gender class to its score. A bare string label is
// accepted as a certain prediction for that class.
type GenderScores map[string]float64

func (g *GenderScores) UnmarshalJSON(data []byte) error {
	var scores map[string]float64
	if err := json.Unmarshal(data, &scores); err == nil {
		*g = scores
		return nil
	}

	var label string
	if err := json.Unmarshal(data, &label); err != nil {
		return fmt.Errorf("%w: gender: %v", ErrInvalidResponse, err)
	}
	switch label {
	case "Woman":
		*g = GenderScores{"Woman": 100, "Man": 0}
	case "Man":
		*g = GenderScores{"Woman": 0, "Man": 100}
	default:
		*g = GenderScores{}
	}
	return nil
}

// AttributeResult is one attribute model result for a face crop.
type AttributeResult struct {
	Age             *float64           `json:"age,omitempty"`
	Gender          GenderScores       `json:"gender,omitempty"`
	DominantGender  string             `json:"dominant_gender,omitempty"`
	DominantRace    string             `json:"dominant_race,omitempty"`
	DominantEmotion string             `json:"dominant_emotion,omitempty"`
	Emotion         map[string]float64 `json:"emotion,omitempty"`
	Race            map[string]float64 `json:"race,omitempty"`
}

// AttributeResults is either a single result or a list of results.
type AttributeResults []AttributeResult

func (r *AttributeResults) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		*r = nil
		return nil
	}

	if trimmed[0] == '[' {
		var list []AttributeResult
		if err := json.Unmarshal(trimmed, &list); err != nil {
			return fmt.Errorf("%w: attributes: %v", ErrInvalidResponse, err)
		}
		*r = list
		return nil
	}

	var single AttributeResult
	if err := json.Unmarshal(trimmed, &single); err != nil {
		return fmt.Errorf("%w: attributes: %v", ErrInvalidResponse, err)
	}
	*r = AttributeResults{single}
	return nil
}

// First returns the first result, which is the one used for a single crop.
func (r AttributeResults) First() (*AttributeResult, error) {
	if len(r) == 0 {
		return nil, fmt.Errorf("%w: empty attribute result", ErrInvalidResponse)
	}
	first := r[0]
	return &first, nil
}

// VerifyResult is the verification model output.
type VerifyResult struct {
	Verified         bool    `json:"verified"`
	Distance         float64 `json:"distance"`
	Threshold        float64 `json:"threshold"`
	SimilarityMetric string  `json:"similarity_metric"`
	Model            string  `json:"model"`
}
