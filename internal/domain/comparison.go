package domain

// SimilarityMetric is the distance metric used by the verification model.
type SimilarityMetric string

const (
	MetricCosine      SimilarityMetric = "cosine"
	MetricEuclidean   SimilarityMetric = "euclidean"
	MetricEuclideanL2 SimilarityMetric = "euclidean_l2"
	MetricAngular     SimilarityMetric = "angular"
)

// ConfidenceTier buckets how far a distance lies below the model threshold.
type ConfidenceTier string

const (
	TierVeryHigh ConfidenceTier = "Very High"
	TierHigh     ConfidenceTier = "High"
	TierMedium   ConfidenceTier = "Medium"
	TierLow      ConfidenceTier = "Low"
	TierVeryLow  ConfidenceTier = "Very Low"
)

// ComparisonResult is the verification model output for a pair of images.
type ComparisonResult struct {
	Verified         bool
	Distance         float64
	Threshold        float64
	SimilarityMetric SimilarityMetric
	ModelName        string
}

// Comparison is a ComparisonResult with its derived classification.
type Comparison struct {
	ComparisonResult
	SimilarityPercentage float64
	ConfidenceTier       ConfidenceTier
	Interpretation       string
}
