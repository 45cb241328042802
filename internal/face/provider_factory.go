package face

import (
	"context"
	"fmt"
	"strings"

	"github.com/saturnino-fabrica-de-software/facelens/internal/config"
	"github.com/saturnino-fabrica-de-software/facelens/internal/provider"
	"github.com/saturnino-fabrica-de-software/facelens/internal/provider/deepface"
	"github.com/saturnino-fabrica-de-software/facelens/internal/provider/mock"
	"github.com/saturnino-fabrica-de-software/facelens/internal/provider/rekognition"
)

// ProviderType defines supported face model backends
type ProviderType string

const (
	// ProviderTypeDeepFace is the DeepFace/RetinaFace HTTP sidecar
	ProviderTypeDeepFace ProviderType = "deepface"
	// ProviderTypeRekognition is AWS Rekognition
	ProviderTypeRekognition ProviderType = "rekognition"
	// ProviderTypeMock is the deterministic in-process provider
	ProviderTypeMock ProviderType = "mock"
)

// NewProviderSet builds the detector, analyzer and verifier for the
// configured PROVIDER_TYPE. An empty type selects DeepFace.
//
// Environment variables:
//   - PROVIDER_TYPE: "deepface", "rekognition" or "mock"
//   - DEEPFACE_URL, DEEPFACE_TIMEOUT, DEEPFACE_RETRY_COUNT, DETECTOR_BACKEND,
//     VERIFY_MODEL, DISTANCE_METRIC: DeepFace client settings
//   - AWS_REGION, REKOGNITION_SIMILARITY_THRESHOLD: Rekognition settings,
//     credentials come from the AWS SDK credential chain
func NewProviderSet(ctx context.Context, cfg *config.Config) (provider.Set, error) {
	switch ProviderType(strings.ToLower(cfg.ProviderType)) {
	case ProviderTypeRekognition:
		return createRekognitionProvider(ctx, cfg)

	case ProviderTypeMock:
		return mock.New().Set(), nil

	case ProviderTypeDeepFace, "":
		return createDeepFaceProvider(cfg).Set(), nil

	default:
		return provider.Set{}, fmt.Errorf("unknown provider type: %s (supported: %s, %s, %s)",
			cfg.ProviderType, ProviderTypeDeepFace, ProviderTypeRekognition, ProviderTypeMock)
	}
}

// createRekognitionProvider creates an AWS Rekognition provider instance
func createRekognitionProvider(ctx context.Context, cfg *config.Config) (provider.Set, error) {
	rekogConfig := rekognition.DefaultConfig()
	if cfg.AWSRegion != "" {
		rekogConfig.Region = cfg.AWSRegion
	}
	if cfg.RekognitionSimilarityThreshold > 0 {
		rekogConfig.SimilarityThreshold = cfg.RekognitionSimilarityThreshold
	}
	if cfg.JPEGQuality > 0 {
		rekogConfig.JPEGQuality = cfg.JPEGQuality
	}

	prov, err := rekognition.NewProvider(ctx, rekogConfig)
	if err != nil {
		return provider.Set{}, fmt.Errorf("create rekognition provider in %s: %w", rekogConfig.Region, err)
	}

	return prov.Set(), nil
}

// createDeepFaceProvider creates a DeepFace provider, keeping defaults for
// anything left unset.
func createDeepFaceProvider(cfg *config.Config) *deepface.Provider {
	deepfaceConfig := deepface.DefaultConfig()

	if cfg.DeepFaceURL != "" {
		deepfaceConfig.BaseURL = cfg.DeepFaceURL
	}
	if cfg.DeepFaceTimeout > 0 {
		deepfaceConfig.Timeout = cfg.DeepFaceTimeout
	}
	if cfg.DetectorBackend != "" {
		deepfaceConfig.Detector = cfg.DetectorBackend
	}
	if cfg.VerifyModel != "" {
		deepfaceConfig.Model = cfg.VerifyModel
	}
	if cfg.DistanceMetric != "" {
		deepfaceConfig.DistanceMetric = cfg.DistanceMetric
	}
	if cfg.DeepFaceRetryCount > 0 {
		deepfaceConfig.RetryCount = cfg.DeepFaceRetryCount
	}
	if cfg.JPEGQuality > 0 {
		deepfaceConfig.JPEGQuality = cfg.JPEGQuality
	}

	return deepface.NewProvider(deepfaceConfig)
}
