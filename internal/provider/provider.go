package provider

import (
	"context"
	"errors"
	"image"
)

// Action selects an attribute the analyzer should compute.
type Action string

const (
	ActionAge     Action = "age"
	ActionGender  Action = "gender"
	ActionRace    Action = "race"
	ActionEmotion Action = "emotion"
)

// AllActions is the full attribute set requested by the analysis endpoint.
var AllActions = []Action{ActionAge, ActionGender, ActionRace, ActionEmotion}

// DisplayActions is the attribute set needed to label a rendered image.
var DisplayActions = []Action{ActionAge, ActionGender, ActionEmotion}

// Typed errors returned by every adapter. Callers classify failures with
// errors.Is instead of inspecting model error text.
var (
	ErrNoFaceDetected   = errors.New("no face detected")
	ErrInvalidImage     = errors.New("invalid image")
	ErrUnavailable      = errors.New("model backend unavailable")
	ErrInvalidResponse  = errors.New("invalid model response")
	ErrUnsupportedInput = errors.New("unsupported input")
)

// Detector locates faces in a full image.
type Detector interface {
	Detect(ctx context.Context, img image.Image) (RawDetections, error)
}

// AttributeAnalyzer computes demographic and emotion attributes for one face crop.
type AttributeAnalyzer interface {
	Analyze(ctx context.Context, face image.Image, actions []Action) (*AttributeResult, error)
}

// Verifier decides whether two images show the same person.
type Verifier interface {
	Verify(ctx context.Context, img1, img2 image.Image) (*VerifyResult, error)
}

// Set bundles the collaborators used by the pipeline.
type Set struct {
	Name     string
	Detector Detector
	Analyzer AttributeAnalyzer
	Verifier Verifier
}
