package domain

import (
	"fmt"
)

// Error type discriminators exposed to API clients.
const (
	ErrorTypeInvalidImage        = "invalid_image"
	ErrorTypeFaceDetectionFailed = "face_detection_failed"
	ErrorTypeProcessing          = "processing_error"
)

// AppError is an error carrying its HTTP representation. When ExposeCause
// is set the error handler sends the wrapped error text instead of Message.
type AppError struct {
	Code        string `json:"code"`
	Message     string `json:"message"`
	ErrorType   string `json:"error_type,omitempty"`
	StatusCode  int    `json:"-"`
	ExposeCause bool   `json:"-"`
	Err         error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func (e *AppError) WithError(err error) *AppError {
	return &AppError{
		Code:        e.Code,
		Message:     e.Message,
		ErrorType:   e.ErrorType,
		StatusCode:  e.StatusCode,
		ExposeCause: e.ExposeCause,
		Err:         err,
	}
}

// Is reports whether target is the predefined error e was derived from.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Code == t.Code && e.Message == t.Message
}

// PublicMessage returns the message that is safe to send to the client.
func (e *AppError) PublicMessage() string {
	if e.ExposeCause && e.Err != nil {
		return e.Err.Error()
	}
	return e.Message
}

// Pre-defined errors
var (
	ErrBadRequest = &AppError{
		Code:       "BAD_REQUEST",
		Message:    "Invalid request",
		StatusCode: 400,
	}

	ErrMissingFile = &AppError{
		Code:       "MISSING_FILE",
		Message:    "Image file is required",
		StatusCode: 400,
	}

	ErrImageTooLarge = &AppError{
		Code:       "IMAGE_TOO_LARGE",
		Message:    "Image exceeds the maximum upload size",
		StatusCode: 413,
	}

	ErrInvalidImage = &AppError{
		Code:       "INVALID_IMAGE",
		Message:    "Invalid image",
		ErrorType:  ErrorTypeInvalidImage,
		StatusCode: 400,
	}

	ErrInvalidComparisonImages = &AppError{
		Code:       "INVALID_IMAGE",
		Message:    "One or both images are invalid",
		ErrorType:  ErrorTypeInvalidImage,
		StatusCode: 400,
	}

	ErrComparisonImageFormat = &AppError{
		Code:       "INVALID_IMAGE",
		Message:    "Invalid image format or corrupted image",
		ErrorType:  ErrorTypeInvalidImage,
		StatusCode: 400,
	}

	ErrFaceDetectionFailed = &AppError{
		Code:       "FACE_DETECTION_FAILED",
		Message:    "Could not detect faces in one or both images",
		ErrorType:  ErrorTypeFaceDetectionFailed,
		StatusCode: 400,
	}

	ErrComparisonFailed = &AppError{
		Code:        "PROCESSING_ERROR",
		Message:     "Face comparison failed",
		ErrorType:   ErrorTypeProcessing,
		StatusCode:  500,
		ExposeCause: true,
	}

	ErrProcessing = &AppError{
		Code:        "PROCESSING_ERROR",
		Message:     "Image processing failed",
		StatusCode:  500,
		ExposeCause: true,
	}

	ErrRateLimitExceeded = &AppError{
		Code:       "RATE_LIMIT_EXCEEDED",
		Message:    "Rate limit exceeded, please try again later",
		StatusCode: 429,
	}

	ErrServiceBusy = &AppError{
		Code:       "SERVICE_BUSY",
		Message:    "Too many images are being processed, please retry",
		StatusCode: 503,
	}
)
