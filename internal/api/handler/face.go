package handler

import (
	"context"
	"io"
	"log/slog"
	"math"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/saturnino-fabrica-de-software/facelens/internal/domain"
	"github.com/saturnino-fabrica-de-software/facelens/internal/jsonsafe"
)

// DefaultMaxImageSize bounds a single uploaded file
const DefaultMaxImageSize = 10 * 1024 * 1024 // 10MB

// Response headers set by DetectAndReturn
const (
	HeaderFacesDetected   = "X-Faces-Detected"
	HeaderDetectionStatus = "X-Detection-Status"
)

// FaceService interface for the service
type FaceService interface {
	Analyze(ctx context.Context, imageBytes []byte, saveRender bool) (*domain.AnalysisResult, error)
	DetectAndRender(ctx context.Context, imageBytes []byte, infoDisplay bool) (*domain.RenderedImage, error)
	Compare(ctx context.Context, imageBytes1, imageBytes2 []byte) (*domain.Comparison, error)
}

// FaceHandler handles face-related requests
type FaceHandler struct {
	service      FaceService
	maxImageSize int64
	logger       *slog.Logger
}

// NewFaceHandler creates a new FaceHandler instance. A non-positive
// maxImageSize selects DefaultMaxImageSize.
func NewFaceHandler(service FaceService, maxImageSize int64, logger *slog.Logger) *FaceHandler {
	if maxImageSize <= 0 {
		maxImageSize = DefaultMaxImageSize
	}
	return &FaceHandler{
		service:      service,
		maxImageSize: maxImageSize,
		logger:       logger,
	}
}

// AnalyzeResponse response for analyze endpoint
type AnalyzeResponse struct {
	Status        string              `json:"status"`
	FacesDetected int                 `json:"faces_detected"`
	Faces         []domain.FaceRecord `json:"faces"`
	OutputFile    string              `json:"output_file,omitempty"`
}

// CompareResponse response for compare endpoint
type CompareResponse struct {
	Verified             bool             `json:"verified"`
	SimilarityPercentage float64          `json:"similarity_percentage"`
	ConfidenceLevel      string           `json:"confidence_level"`
	Interpretation       string           `json:"interpretation"`
	Distance             float64          `json:"distance"`
	Threshold            float64          `json:"threshold"`
	Model                string           `json:"model"`
	SimilarityMetric     string           `json:"similarity_metric"`
	Status               string           `json:"status"`
	TechnicalDetails     TechnicalDetails `json:"technical_details"`
}

// TechnicalDetails carries the raw verification numbers
type TechnicalDetails struct {
	RawDistance           float64 `json:"raw_distance"`
	ModelThreshold        float64 `json:"model_threshold"`
	DistanceFromThreshold float64 `json:"distance_from_threshold"`
	VerificationPassed    bool    `json:"verification_passed"`
}

// Analyze POST /analyze - detect faces and enrich them with attributes
func (h *FaceHandler) Analyze(c *fiber.Ctx) error {
	imageBytes, err := h.readImage(c, "file")
	if err != nil {
		return err
	}

	result, err := h.service.Analyze(c.UserContext(), imageBytes, c.QueryBool("save_render", false))
	if err != nil {
		return err
	}

	return c.JSON(jsonsafe.Convert(NewAnalyzeResponse(result)))
}

// Compare POST /compare - decide whether two images show the same person
func (h *FaceHandler) Compare(c *fiber.Ctx) error {
	imageBytes1, err := h.readImage(c, "file1")
	if err != nil {
		return err
	}
	imageBytes2, err := h.readImage(c, "file2")
	if err != nil {
		return err
	}

	comparison, err := h.service.Compare(c.UserContext(), imageBytes1, imageBytes2)
	if err != nil {
		return err
	}

	return c.JSON(jsonsafe.Convert(NewCompareResponse(comparison)))
}

// DetectAndReturn POST /detect_and_return - return the annotated JPEG
func (h *FaceHandler) DetectAndReturn(c *fiber.Ctx) error {
	imageBytes, err := h.readImage(c, "file")
	if err != nil {
		return err
	}

	rendered, err := h.service.DetectAndRender(c.UserContext(), imageBytes, c.QueryBool("info_display", false))
	if err != nil {
		return err
	}

	status := "success"
	if rendered.FacesDetected == 0 {
		status = "no_face"
	}

	c.Set(HeaderFacesDetected, strconv.Itoa(rendered.FacesDetected))
	c.Set(HeaderDetectionStatus, status)
	c.Set(fiber.HeaderContentType, "image/jpeg")
	return c.Send(rendered.JPEG)
}

// NewAnalyzeResponse builds the analysis body. The face list is never null.
func NewAnalyzeResponse(result *domain.AnalysisResult) AnalyzeResponse {
	faces := result.Faces
	if faces == nil {
		faces = []domain.FaceRecord{}
	}
	return AnalyzeResponse{
		Status:        "success",
		FacesDetected: len(faces),
		Faces:         faces,
		OutputFile:    result.OutputFile,
	}
}

// NewCompareResponse builds the comparison body with the percentage rounded
// to 2 decimals and the threshold margin to 4.
func NewCompareResponse(c *domain.Comparison) CompareResponse {
	return CompareResponse{
		Verified:             c.Verified,
		SimilarityPercentage: round(c.SimilarityPercentage, 2),
		ConfidenceLevel:      string(c.ConfidenceTier),
		Interpretation:       c.Interpretation,
		Distance:             c.Distance,
		Threshold:            c.Threshold,
		Model:                c.ModelName,
		SimilarityMetric:     string(c.SimilarityMetric),
		Status:               "success",
		TechnicalDetails: TechnicalDetails{
			RawDistance:           c.Distance,
			ModelThreshold:        c.Threshold,
			DistanceFromThreshold: round(math.Abs(c.Distance-c.Threshold), 4),
			VerificationPassed:    c.Verified,
		},
	}
}

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}

// readImage extracts one uploaded file from the multipart form
func (h *FaceHandler) readImage(c *fiber.Ctx, field string) ([]byte, error) {
	// 1. Extract file
	file, err := c.FormFile(field)
	if err != nil {
		return nil, domain.ErrMissingFile.WithError(err)
	}

	// 2. Validate size
	if file.Size > h.maxImageSize {
		return nil, domain.ErrImageTooLarge
	}
	if file.Size == 0 {
		return nil, domain.ErrInvalidImage
	}

	// 3. Read image bytes
	f, err := file.Open()
	if err != nil {
		return nil, domain.ErrInvalidImage.WithError(err)
	}
	defer func() {
		_ = f.Close()
	}()

	imageBytes, err := io.ReadAll(f)
	if err != nil {
		return nil, domain.ErrInvalidImage.WithError(err)
	}

	return imageBytes, nil
}
