package render

import (
	"fmt"

	"github.com/saturnino-fabrica-de-software/facelens/internal/domain"
)

// InfoLines formats the label lines for a face in fixed priority order:
// confidence, age, gender, dominant emotion. Absent fields are omitted.
func InfoLines(face domain.FaceRecord) []string {
	lines := make([]string, 0, 4)
	if face.Confidence != nil {
		lines = append(lines, fmt.Sprintf("Conf: %.2f", *face.Confidence))
	}
	if face.Age != nil {
		lines = append(lines, fmt.Sprintf("Age: %d", *face.Age))
	}
	if face.Gender != "" {
		lines = append(lines, fmt.Sprintf("Gender: %s", face.Gender))
	}
	if face.DominantEmotion != "" {
		lines = append(lines, fmt.Sprintf("Emotion: %s", face.DominantEmotion))
	}
	return lines
}

