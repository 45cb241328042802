package rekognition

// Config holds configuration for AWS Rekognition provider
type Config struct {
	// Region is the AWS region where Rekognition service will be used (e.g., "us-east-1")
	Region string

	// SimilarityThreshold is the CompareFaces similarity (0-100) at or above
	// which two faces are reported as the same person.
	SimilarityThreshold float64

	// JPEGQuality is used when re-encoding decoded images for the API.
	JPEGQuality int
}

// DefaultConfig returns a Config with default values
func DefaultConfig() Config {
	return Config{
		Region:              "us-east-1",
		SimilarityThreshold: 80,
		JPEGQuality:         95,
	}
}

// DistanceThreshold converts SimilarityThreshold into a 0-1 distance threshold.
func (c Config) DistanceThreshold() float64 {
	return 1 - c.SimilarityThreshold/100
}
