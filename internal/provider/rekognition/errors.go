package rekognition

import (
	"errors"
	"fmt"

	"github.com/aws/smithy-go"

	"github.com/saturnino-fabrica-de-software/facelens/internal/provider"
)

const (
	errCodeAccessDenied          = "AccessDeniedException"
	errCodeInvalidParameter      = "InvalidParameterException"
	errCodeInvalidImageFormat    = "InvalidImageFormatException"
	errCodeImageTooLarge         = "ImageTooLargeException"
	errCodeThrottling            = "ThrottlingException"
	errCodeThroughputExceeded    = "ProvisionedThroughputExceededException"
	errCodeInternalServerError   = "InternalServerError"
	errCodeServiceUnavailable    = "ServiceUnavailableException"
	errCodeLimitExceeded         = "LimitExceededException"
	errCodeUnrecognizedClientErr = "UnrecognizedClientException"
)

// maxImageSize is the maximum image size supported by AWS Rekognition (5MB)
const maxImageSize = 5 * 1024 * 1024

var (
	// ErrInvalidCredentials indicates that AWS credentials are invalid or missing
	ErrInvalidCredentials = fmt.Errorf("invalid or missing AWS credentials: %w", provider.ErrUnavailable)

	// ErrImageTooLarge indicates the encoded image exceeds the API limit
	ErrImageTooLarge = fmt.Errorf("image exceeds rekognition size limit: %w", provider.ErrInvalidImage)
)

// mapError translates an AWS API error into the typed provider errors.
func mapError(op string, err error) error {
	if err == nil {
		return nil
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case errCodeInvalidParameter:
			// returned when no face can be found in an input image
			return fmt.Errorf("%s: %w: %s", op, provider.ErrNoFaceDetected, apiErr.ErrorMessage())
		case errCodeInvalidImageFormat, errCodeImageTooLarge:
			return fmt.Errorf("%s: %w: %s", op, provider.ErrInvalidImage, apiErr.ErrorMessage())
		case errCodeAccessDenied, errCodeUnrecognizedClientErr:
			return fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
		case errCodeThrottling, errCodeThroughputExceeded, errCodeInternalServerError,
			errCodeServiceUnavailable, errCodeLimitExceeded:
			return fmt.Errorf("%s: %w: %s", op, provider.ErrUnavailable, apiErr.ErrorMessage())
		}
	}

	return fmt.Errorf("%s: %w", op, err)
}
