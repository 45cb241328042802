package deepface

import (
	"fmt"
	"strings"

	"github.com/saturnino-fabrica-de-software/facelens/internal/provider"
)

var (
	ErrDeepFaceUnavailable = fmt.Errorf("deepface service: %w", provider.ErrUnavailable)
	ErrInvalidResponse     = fmt.Errorf("deepface: %w", provider.ErrInvalidResponse)
)

// StatusError is a non-2xx reply from the DeepFace service.
type StatusError struct {
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("deepface returned status %d: %s", e.StatusCode, e.Message)
}

// ClientError reports whether the reply was a 4xx.
func (e *StatusError) ClientError() bool {
	return e.StatusCode >= 400 && e.StatusCode < 500
}

// classify maps a DeepFace rejection onto the typed provider errors. This is
// the only place where DeepFace error text is inspected.
func classify(err *StatusError) error {
	if !err.ClientError() {
		return err
	}

	msg := strings.ToLower(err.Message)
	switch {
	case strings.Contains(msg, "face could not be detected"),
		strings.Contains(msg, "no face"):
		return fmt.Errorf("%w: %v", provider.ErrNoFaceDetected, err)
	case strings.Contains(msg, "input image") && strings.Contains(msg, "not found"),
		strings.Contains(msg, "could not be decoded"),
		strings.Contains(msg, "invalid image"):
		return fmt.Errorf("%w: %v", provider.ErrInvalidImage, err)
	}
	return err
}
