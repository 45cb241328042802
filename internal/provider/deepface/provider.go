package deepface

import (
	"context"
	"encoding/base64"
	"fmt"
	"image"

	"github.com/saturnino-fabrica-de-software/facelens/internal/imagecodec"
	"github.com/saturnino-fabrica-de-software/facelens/internal/provider"
)

// Provider implements the detector, analyzer and verifier interfaces on top
// of a DeepFace/RetinaFace model service.
type Provider struct {
	client  *Client
	quality int
}

// NewProvider creates a new DeepFace provider
func NewProvider(config Config) *Provider {
	quality := config.JPEGQuality
	if quality <= 0 {
		quality = DefaultConfig().JPEGQuality
	}
	return &Provider{
		client:  NewClient(config),
		quality: quality,
	}
}

// Set returns the provider wired into every pipeline role.
func (p *Provider) Set() provider.Set {
	return provider.Set{
		Name:     "deepface",
		Detector: p,
		Analyzer: p,
		Verifier: p,
	}
}

// Detect returns the faces the detector found in img. With detection not
// enforced, DeepFace answers a faceless image with the whole frame at zero
// confidence; that entry is dropped.
func (p *Provider) Detect(ctx context.Context, img image.Image) (provider.RawDetections, error) {
	encoded, err := p.encode(img)
	if err != nil {
		return nil, fmt.Errorf("detect faces: %w", err)
	}

	resp, err := p.client.Represent(ctx, encoded)
	if err != nil {
		return nil, fmt.Errorf("detect faces: %w", err)
	}

	faces := make(provider.RawDetections, len(resp.Results))
	for key, face := range resp.Results {
		if face.Score != nil && *face.Score <= 0 {
			continue
		}
		faces[key] = face
	}
	return faces, nil
}

// Analyze computes the requested attributes for a face crop
func (p *Provider) Analyze(ctx context.Context, face image.Image, actions []provider.Action) (*provider.AttributeResult, error) {
	encoded, err := p.encode(face)
	if err != nil {
		return nil, fmt.Errorf("analyze face: %w", err)
	}

	names := make([]string, len(actions))
	for i, a := range actions {
		names[i] = string(a)
	}

	resp, err := p.client.Analyze(ctx, encoded, names)
	if err != nil {
		return nil, fmt.Errorf("analyze face: %w", err)
	}

	result, err := resp.Results.First()
	if err != nil {
		return nil, fmt.Errorf("analyze face: %w", err)
	}
	return result, nil
}

// Verify compares the faces found in two images
func (p *Provider) Verify(ctx context.Context, img1, img2 image.Image) (*provider.VerifyResult, error) {
	encoded1, err := p.encode(img1)
	if err != nil {
		return nil, fmt.Errorf("verify faces: first image: %w", err)
	}
	encoded2, err := p.encode(img2)
	if err != nil {
		return nil, fmt.Errorf("verify faces: second image: %w", err)
	}

	resp, err := p.client.Verify(ctx, encoded1, encoded2)
	if err != nil {
		return nil, fmt.Errorf("verify faces: %w", err)
	}

	if resp.Model == "" {
		resp.Model = p.client.config.Model
	}
	if resp.SimilarityMetric == "" {
		resp.SimilarityMetric = p.client.config.DistanceMetric
	}
	return resp, nil
}

// encode converts an image into the base64 data URI DeepFace accepts.
func (p *Provider) encode(img image.Image) (string, error) {
	data, err := imagecodec.EncodeJPEG(img, p.quality)
	if err != nil {
		return "", fmt.Errorf("%w: %v", provider.ErrInvalidImage, err)
	}
	return "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(data), nil
}

var (
	_ provider.Detector          = (*Provider)(nil)
	_ provider.AttributeAnalyzer = (*Provider)(nil)
	_ provider.Verifier          = (*Provider)(nil)
)
