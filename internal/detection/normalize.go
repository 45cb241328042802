// Package detection converts raw detector output into canonical face records.
package detection

import (
	"log/slog"
	"math"

	"github.com/saturnino-fabrica-de-software/facelens/internal/domain"
	"github.com/saturnino-fabrica-de-software/facelens/internal/provider"
)

// Normalizer turns provider detections into domain.FaceRecord values.
type Normalizer struct {
	logger *slog.Logger
}

// NewNormalizer creates a Normalizer. A nil logger discards skip warnings.
func NewNormalizer(logger *slog.Logger) *Normalizer {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Normalizer{logger: logger}
}

// Normalize emits one record per usable entry, ordered by detector key.
// Entries without four finite coordinates or with a non-positive size are
// skipped; they never fail the whole result.
func (n *Normalizer) Normalize(raw provider.RawDetections) []domain.FaceRecord {
	faces := make([]domain.FaceRecord, 0, len(raw))

	for _, key := range raw.Keys() {
		entry := raw[key]

		box, ok := toBox(entry.FacialArea)
		if !ok {
			n.logger.Warn("skipping malformed detection",
				"key", key,
				"facial_area", []float64(entry.FacialArea),
			)
			continue
		}

		record := domain.FaceRecord{Position: box}
		if entry.Score != nil && !math.IsNaN(*entry.Score) {
			score := *entry.Score
			record.Confidence = &score
		}
		faces = append(faces, record)
	}

	return faces
}

func toBox(area provider.Area) (domain.BoundingBox, bool) {
	if len(area) < 4 {
		return domain.BoundingBox{}, false
	}
	for _, v := range area[:4] {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return domain.BoundingBox{}, false
		}
	}

	x1, y1, x2, y2 := area[0], area[1], area[2], area[3]
	box := domain.BoundingBox{
		X: int(x1),
		Y: int(y1),
		W: int(x2 - x1),
		H: int(y2 - y1),
	}
	return box, box.Valid()
}
