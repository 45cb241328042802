// Package similarity turns a verification distance into a percentage, a
// confidence tier and a plain-language interpretation.
package similarity

import (
	"math"

	"github.com/saturnino-fabrica-de-software/facelens/internal/domain"
)

// Interpretations returned by Interpret.
const (
	InterpretVeryLikelySame = "The faces are very likely the same person"
	InterpretLikelySame     = "The faces are likely the same person"
	InterpretProbablySame   = "The faces are probably the same person"
	InterpretMightBeSame    = "The faces might be the same person (low confidence)"
	InterpretDifferent      = "The faces are likely different people"
)

// Classify derives the percentage, tier and interpretation for r.
func Classify(r domain.ComparisonResult) domain.Comparison {
	pct := Percentage(r.Distance, r.Threshold, r.SimilarityMetric)
	return domain.Comparison{
		ComparisonResult:     r,
		SimilarityPercentage: pct,
		ConfidenceTier:       Tier(r.Distance, r.Threshold),
		Interpretation:       Interpret(r.Verified, pct),
	}
}

// Percentage maps a distance onto a 0-100 similarity score. Cosine distance
// uses (1-d)*100 with a lower bound of 0. Every other metric is scaled by the
// threshold, so a distance at or beyond it scores 0. A non-positive threshold
// is treated as an infinite ratio.
func Percentage(distance, threshold float64, metric domain.SimilarityMetric) float64 {
	if math.IsNaN(distance) {
		return 0
	}

	if metric == domain.MetricCosine {
		return math.Max(0, (1-distance)*100)
	}

	ratio := math.Inf(1)
	if threshold > 0 {
		ratio = distance / threshold
	}
	return math.Max(0, (1-math.Min(ratio, 1))*100)
}

// Tier buckets distance relative to threshold. Each edge is inclusive and the
// first matching bucket wins.
func Tier(distance, threshold float64) domain.ConfidenceTier {
	switch {
	case distance <= 0.5*threshold:
		return domain.TierVeryHigh
	case distance <= 0.7*threshold:
		return domain.TierHigh
	case distance <= 0.9*threshold:
		return domain.TierMedium
	case distance <= threshold:
		return domain.TierLow
	default:
		return domain.TierVeryLow
	}
}

// Interpret describes the outcome from the model verdict and percentage. It
// does not depend on the tier.
func Interpret(verified bool, percentage float64) string {
	if !verified {
		return InterpretDifferent
	}
	switch {
	case percentage >= 90:
		return InterpretVeryLikelySame
	case percentage >= 80:
		return InterpretLikelySame
	case percentage >= 70:
		return InterpretProbablySame
	default:
		return InterpretMightBeSame
	}
}
