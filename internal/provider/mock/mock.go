package mock

import (
	"context"
	"crypto/sha256"
	"image"
	"math"

	"github.com/saturnino-fabrica-de-software/facelens/internal/provider"
)

const (
	// ModelName is reported as the verification model
	ModelName = "mock"

	// Threshold is the cosine distance at or below which faces verify
	Threshold = 0.68

	embeddingGrid = 16
	minFaceSide   = 32
	minCropSide   = 8
)

// Provider is a deterministic in-process provider for tests and development.
// It "detects" one centred face, derives attributes from the crop's pixels
// and compares images by the cosine distance of a coarse luminance grid.
type Provider struct{}

// New creates a mock provider
func New() *Provider {
	return &Provider{}
}

// Set returns the provider wired into every pipeline role.
func (p *Provider) Set() provider.Set {
	return provider.Set{
		Name:     ModelName,
		Detector: p,
		Analyzer: p,
		Verifier: p,
	}
}

// Detect reports a single face covering the central 80% of the image.
// Images smaller than 32x32 contain no face.
func (p *Provider) Detect(ctx context.Context, img image.Image) (provider.RawDetections, error) {
	b := img.Bounds()
	if b.Dx() < minFaceSide || b.Dy() < minFaceSide {
		return provider.RawDetections{}, nil
	}

	w, h := float64(b.Dx()), float64(b.Dy())
	score := 0.99
	return provider.RawDetections{
		"face_1": {
			FacialArea: provider.Area{0.1 * w, 0.1 * h, 0.9 * w, 0.9 * h},
			Score:      &score,
		},
	}, nil
}

// Analyze derives stable attributes from a hash of the crop pixels
func (p *Provider) Analyze(ctx context.Context, face image.Image, actions []provider.Action) (*provider.AttributeResult, error) {
	b := face.Bounds()
	if b.Dx() < minCropSide || b.Dy() < minCropSide {
		return nil, provider.ErrNoFaceDetected
	}

	hash := pixelHash(face)
	result := &provider.AttributeResult{}

	for _, action := range actions {
		switch action {
		case provider.ActionAge:
			age := float64(18 + int(hash[0])%50)
			result.Age = &age
		case provider.ActionGender:
			woman := float64(hash[1]) / 255 * 100
			result.Gender = provider.GenderScores{"Woman": woman, "Man": 100 - woman}
		case provider.ActionEmotion:
			result.Emotion, result.DominantEmotion = distribution(hash[2:9], emotions)
		case provider.ActionRace:
			result.Race, result.DominantRace = distribution(hash[9:15], races)
		}
	}

	return result, nil
}

var (
	emotions = []string{"angry", "disgust", "fear", "happy", "sad", "surprise", "neutral"}
	races    = []string{"asian", "indian", "black", "white", "middle eastern", "latino hispanic"}
)

// distribution spreads 100 points over labels in proportion to weights.
func distribution(weights []byte, labels []string) (map[string]float64, string) {
	total := 0.0
	for _, w := range weights {
		total += float64(w) + 1
	}

	scores := make(map[string]float64, len(labels))
	dominant, best := "", -1.0
	for i, label := range labels {
		s := (float64(weights[i]) + 1) / total * 100
		scores[label] = s
		if s > best {
			dominant, best = label, s
		}
	}
	return scores, dominant
}

// Verify compares two images by the cosine distance of their embeddings
func (p *Provider) Verify(ctx context.Context, img1, img2 image.Image) (*provider.VerifyResult, error) {
	distance := 1 - cosineSimilarity(generateEmbedding(img1), generateEmbedding(img2))
	distance = math.Max(0, distance)

	return &provider.VerifyResult{
		Verified:         distance <= Threshold,
		Distance:         distance,
		Threshold:        Threshold,
		SimilarityMetric: "cosine",
		Model:            ModelName,
	}, nil
}

func pixelHash(img image.Image) [32]byte {
	b := img.Bounds()
	h := sha256.New()
	buf := make([]byte, 0, 3*b.Dx())
	for y := b.Min.Y; y < b.Max.Y; y++ {
		buf = buf[:0]
		for x := b.Min.X; x < b.Max.X; x++ {
			r, g, bl, _ := img.At(x, y).RGBA()
			buf = append(buf, byte(r>>8), byte(g>>8), byte(bl>>8))
		}
		_, _ = h.Write(buf)
	}

	var sum [32]byte
	copy(sum[:], h.Sum(nil))
	return sum
}

// generateEmbedding samples a grid of mean-centred luminance values
func generateEmbedding(img image.Image) []float64 {
	b := img.Bounds()
	embedding := make([]float64, embeddingGrid*embeddingGrid)
	if b.Empty() {
		return embedding
	}

	mean := 0.0
	for gy := 0; gy < embeddingGrid; gy++ {
		for gx := 0; gx < embeddingGrid; gx++ {
			x := b.Min.X + (2*gx+1)*b.Dx()/(2*embeddingGrid)
			y := b.Min.Y + (2*gy+1)*b.Dy()/(2*embeddingGrid)
			r, g, bl, _ := img.At(x, y).RGBA()
			lum := (0.299*float64(r) + 0.587*float64(g) + 0.114*float64(bl)) / 0xffff
			embedding[gy*embeddingGrid+gx] = lum
			mean += lum
		}
	}

	mean /= float64(len(embedding))
	for i := range embedding {
		embedding[i] -= mean
	}
	return embedding
}

// cosineSimilarity calculates cosine similarity between two vectors
func cosineSimilarity(a, b []float64) float64 {
	if len(a) != len(b) {
		return 0
	}

	var dotProduct, normA, normB float64
	for i := range a {
		dotProduct += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}

	if normA == 0 || normB == 0 {
		return 0
	}

	return dotProduct / (math.Sqrt(normA) * math.Sqrt(normB))
}

var (
	_ provider.Detector          = (*Provider)(nil)
	_ provider.AttributeAnalyzer = (*Provider)(nil)
	_ provider.Verifier          = (*Provider)(nil)
)
