package rekognition

import (
	"context"
	"fmt"
	"image"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/rekognition"
	"github.com/aws/aws-sdk-go-v2/service/rekognition/types"

	"github.com/saturnino-fabrica-de-software/facelens/internal/imagecodec"
	"github.com/saturnino-fabrica-de-software/facelens/internal/provider"
)

// ModelName is reported as the verification model.
const ModelName = "rekognition"

// Provider implements the detector, analyzer and verifier interfaces using
// AWS Rekognition. Race is not available from Rekognition and is left empty.
type Provider struct {
	client *Client
}

// Ensure Provider implements the pipeline interfaces at compile time
var (
	_ provider.Detector          = (*Provider)(nil)
	_ provider.AttributeAnalyzer = (*Provider)(nil)
	_ provider.Verifier          = (*Provider)(nil)
)

// NewProvider creates a new Rekognition provider
func NewProvider(ctx context.Context, cfg Config) (*Provider, error) {
	client, err := NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create rekognition client: %w", err)
	}
	return &Provider{client: client}, nil
}

// NewProviderWithClient creates a provider around an existing client
func NewProviderWithClient(client *Client) *Provider {
	return &Provider{client: client}
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

// encode re-encodes img as JPEG within the Rekognition size limit
func (p *Provider) encode(img image.Image) ([]byte, error) {
	data, err := imagecodec.EncodeJPEG(img, p.client.config.JPEGQuality)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", provider.ErrInvalidImage, err)
	}
	if len(data) > maxImageSize {
		return nil, fmt.Errorf("%w (%d bytes, maximum %d)", ErrImageTooLarge, len(data), maxImageSize)
	}
	return data, nil
}

// Detect locates faces and returns pixel corner coordinates with a 0-1 score
func (p *Provider) Detect(ctx context.Context, img image.Image) (provider.RawDetections, error) {
	data, err := p.encode(img)
	if err != nil {
		return nil, fmt.Errorf("detect faces: %w", err)
	}

	output, err := p.client.rekognition.DetectFaces(ctx, &rekognition.DetectFacesInput{
		Image:      &types.Image{Bytes: data},
		Attributes: []types.Attribute{types.AttributeDefault},
	})
	if err != nil {
		return nil, mapError("detect faces", err)
	}

	bounds := img.Bounds()
	w, h := float64(bounds.Dx()), float64(bounds.Dy())

	faces := make(provider.RawDetections, len(output.FaceDetails))
	for i, detail := range output.FaceDetails {
		face := provider.RawFace{FacialArea: toArea(detail.BoundingBox, w, h)}
		if detail.Confidence != nil {
			score := float64(*detail.Confidence) / 100
			face.Score = &score
		}
		faces[fmt.Sprintf("face_%d", i+1)] = face
	}

	return faces, nil
}

// toArea converts a ratio box into [x1, y1, x2, y2] pixels. A missing box
// yields nil, which the normalizer skips.
func toArea(box *types.BoundingBox, w, h float64) provider.Area {
	if box == nil || box.Left == nil || box.Top == nil || box.Width == nil || box.Height == nil {
		return nil
	}
	left, top := float64(*box.Left), float64(*box.Top)
	return provider.Area{
		left * w,
		top * h,
		(left + float64(*box.Width)) * w,
		(top + float64(*box.Height)) * h,
	}
}

// Analyze runs DetectFaces with all attributes on a face crop and keeps the
// requested ones from the most confident face
func (p *Provider) Analyze(ctx context.Context, face image.Image, actions []provider.Action) (*provider.AttributeResult, error) {
	data, err := p.encode(face)
	if err != nil {
		return nil, fmt.Errorf("analyze face: %w", err)
	}

	output, err := p.client.rekognition.DetectFaces(ctx, &rekognition.DetectFacesInput{
		Image:      &types.Image{Bytes: data},
		Attributes: []types.Attribute{types.AttributeAll},
	})
	if err != nil {
		return nil, mapError("analyze face", err)
	}

	detail := mostConfident(output.FaceDetails)
	if detail == nil {
		return nil, fmt.Errorf("analyze face: %w", provider.ErrNoFaceDetected)
	}

	result := &provider.AttributeResult{}
	for _, action := range actions {
		switch action {
		case provider.ActionAge:
			if detail.AgeRange != nil && detail.AgeRange.Low != nil && detail.AgeRange.High != nil {
				age := float64(*detail.AgeRange.Low+*detail.AgeRange.High) / 2
				result.Age = &age
			}
		case provider.ActionGender:
			result.Gender, result.DominantGender = genderScores(detail.Gender)
		case provider.ActionEmotion:
			result.Emotion, result.DominantEmotion = emotionScores(detail.Emotions)
		}
	}

	return result, nil
}

func mostConfident(details []types.FaceDetail) *types.FaceDetail {
	var best *types.FaceDetail
	for i := range details {
		if best == nil || aws.ToFloat32(details[i].Confidence) > aws.ToFloat32(best.Confidence) {
			best = &details[i]
		}
	}
	return best
}

// genderScores turns Rekognition's single label and confidence into scores
// on a 0-100 scale for both classes
func genderScores(g *types.Gender) (provider.GenderScores, string) {
	if g == nil || g.Confidence == nil {
		return nil, ""
	}
	conf := float64(*g.Confidence)
	switch g.Value {
	case types.GenderTypeFemale:
		return provider.GenderScores{"Woman": conf, "Man": 100 - conf}, "Woman"
	case types.GenderTypeMale:
		return provider.GenderScores{"Woman": 100 - conf, "Man": conf}, "Man"
	}
	return nil, ""
}

func emotionScores(emotions []types.Emotion) (map[string]float64, string) {
	if len(emotions) == 0 {
		return nil, ""
	}

	scores := make(map[string]float64, len(emotions))
	dominant, best := "", -1.0
	for _, e := range emotions {
		name := strings.ToLower(string(e.Type))
		conf := float64(aws.ToFloat32(e.Confidence))
		scores[name] = conf
		if conf > best {
			dominant, best = name, conf
		}
	}
	return scores, dominant
}

// Verify compares the largest face of img1 against the faces of img2. The
// best similarity s (0-100) is reported as a cosine-like distance 1-s/100.
func (p *Provider) Verify(ctx context.Context, img1, img2 image.Image) (*provider.VerifyResult, error) {
	source, err := p.encode(img1)
	if err != nil {
		return nil, fmt.Errorf("verify faces: source image: %w", err)
	}
	target, err := p.encode(img2)
	if err != nil {
		return nil, fmt.Errorf("verify faces: target image: %w", err)
	}

	output, err := p.client.rekognition.CompareFaces(ctx, &rekognition.CompareFacesInput{
		SourceImage:         &types.Image{Bytes: source},
		TargetImage:         &types.Image{Bytes: target},
		SimilarityThreshold: aws.Float32(0),
	})
	if err != nil {
		return nil, mapError("verify faces", err)
	}

	if len(output.FaceMatches) == 0 && len(output.UnmatchedFaces) == 0 {
		return nil, fmt.Errorf("verify faces: target image: %w", provider.ErrNoFaceDetected)
	}

	best := 0.0
	for _, m := range output.FaceMatches {
		if s := float64(aws.ToFloat32(m.Similarity)); s > best {
			best = s
		}
	}

	return &provider.VerifyResult{
		Verified:         best >= p.client.config.SimilarityThreshold,
		Distance:         1 - best/100,
		Threshold:        p.client.config.DistanceThreshold(),
		SimilarityMetric: "cosine",
		Model:            ModelName,
	}, nil
}
