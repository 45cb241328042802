package docs

import (
	"github.com/go-swagno/swagno"
	"github.com/go-swagno/swagno/components/endpoint"
	"github.com/go-swagno/swagno/components/http/response"
	"github.com/go-swagno/swagno/components/mime"
	"github.com/go-swagno/swagno/components/parameter"
)

// BoundingBoxData is a face region in pixels
type BoundingBoxData struct {
	X int `json:"x" example:"120"`
	Y int `json:"y" example:"80"`
	W int `json:"w" example:"96"`
	H int `json:"h" example:"128"`
}

// FaceData represents one analysed face
type FaceData struct {
	Position        BoundingBoxData    `json:"position"`
	Confidence      float64            `json:"confidence" example:"0.998"`
	Age             int                `json:"age,omitempty" example:"31"`
	Gender          string             `json:"gender,omitempty" example:"Woman"`
	DominantRace    string             `json:"dominant_race,omitempty" example:"asian"`
	DominantEmotion string             `json:"dominant_emotion,omitempty" example:"happy"`
	Emotion         map[string]float64 `json:"emotion,omitempty"`
	Race            map[string]float64 `json:"race,omitempty"`
}

// AnalyzeResponse represents the response for face analysis
type AnalyzeResponse struct {
	Status        string     `json:"status" example:"success"`
	FacesDetected int        `json:"faces_detected" example:"1"`
	Faces         []FaceData `json:"faces"`
	OutputFile    string     `json:"output_file,omitempty" example:"output/result_20250101_120000_1a2b3c4d.jpg"`
}

// TechnicalDetailsData carries the raw verification numbers
type TechnicalDetailsData struct {
	RawDistance           float64 `json:"raw_distance" example:"0.21"`
	ModelThreshold        float64 `json:"model_threshold" example:"0.68"`
	DistanceFromThreshold float64 `json:"distance_from_threshold" example:"0.47"`
	VerificationPassed    bool    `json:"verification_passed" example:"true"`
}

// CompareResponse represents the response for face comparison
type CompareResponse struct {
	Verified             bool                 `json:"verified" example:"true"`
	SimilarityPercentage float64              `json:"similarity_percentage" example:"79"`
	ConfidenceLevel      string               `json:"confidence_level" example:"Very High"`
	Interpretation       string               `json:"interpretation" example:"The faces are probably the same person"`
	Distance             float64              `json:"distance" example:"0.21"`
	Threshold            float64              `json:"threshold" example:"0.68"`
	Model                string               `json:"model" example:"VGG-Face"`
	SimilarityMetric     string               `json:"similarity_metric" example:"cosine"`
	Status               string               `json:"status" example:"success"`
	TechnicalDetails     TechnicalDetailsData `json:"technical_details"`
}

// ErrorResponse represents a standard error response
type ErrorResponse struct {
	Status    string `json:"status" example:"error"`
	Error     string `json:"error" example:"INVALID_IMAGE"`
	Message   string `json:"message" example:"Invalid image"`
	ErrorType string `json:"error_type,omitempty" example:"invalid_image"`
}

// HealthResponse represents the health and readiness probes
type HealthResponse struct {
	Status   string `json:"status" example:"ok"`
	Version  string `json:"version,omitempty" example:"0.1.0"`
	Provider string `json:"provider,omitempty" example:"deepface"`
}

func errorResponse(code, message, errorType string) ErrorResponse {
	return ErrorResponse{Status: "error", Error: code, Message: message, ErrorType: errorType}
}

func NewSwagger(host string) *swagno.Swagger {
	sw := swagno.New(swagno.Config{
		Title:       "FaceLens Face Analysis API",
		Version:     "v1.0.0",
		Description: "Face detection, attribute analysis, 1:1 comparison and annotated rendering",
		Host:        host,
		Path:        "/",
	})

	multipart := []mime.MIME{mime.MIME("multipart/form-data")}

	endpoints := []*endpoint.EndPoint{
		// POST /analyze
		endpoint.New(
			endpoint.POST,
			"/analyze",
			endpoint.WithTags("Faces"),
			endpoint.WithSummary("Detect and analyse faces"),
			endpoint.WithDescription("Upload one image in the form field 'file'. Every detected face is enriched with age, gender, race and emotion. Faces whose analysis fails keep only position and confidence."),
			endpoint.WithConsume(multipart),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithParams(
				parameter.StrParam("save_render", parameter.Query, parameter.WithDescription("Save the annotated image to the output directory (true/false, default: false)")),
			),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(AnalyzeResponse{}, "200", "Analysis completed"),
			}),
			endpoint.WithErrors([]response.Response{
				response.New(errorResponse("INVALID_IMAGE", "Invalid image", "invalid_image"), "400", "Bad Request"),
				response.New(errorResponse("IMAGE_TOO_LARGE", "Image exceeds the maximum upload size", ""), "413", "Payload Too Large"),
				response.New(errorResponse("RATE_LIMIT_EXCEEDED", "Rate limit exceeded, please try again later", ""), "429", "Too Many Requests"),
				response.New(errorResponse("PROCESSING_ERROR", "detector crashed", ""), "500", "Internal Server Error"),
				response.New(errorResponse("SERVICE_BUSY", "Too many images are being processed, please retry", ""), "503", "Service Unavailable"),
			}),
		),

		// POST /compare
		endpoint.New(
			endpoint.POST,
			"/compare",
			endpoint.WithTags("Faces"),
			endpoint.WithSummary("Compare two faces"),
			endpoint.WithDescription("Upload two images in the form fields 'file1' and 'file2'. Returns whether they show the same person with a similarity percentage, confidence level and interpretation."),
			endpoint.WithConsume(multipart),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(CompareResponse{}, "200", "Comparison completed"),
			}),
			endpoint.WithErrors([]response.Response{
				response.New(errorResponse("FACE_DETECTION_FAILED", "Could not detect faces in one or both images", "face_detection_failed"), "400", "Bad Request"),
				response.New(errorResponse("IMAGE_TOO_LARGE", "Image exceeds the maximum upload size", ""), "413", "Payload Too Large"),
				response.New(errorResponse("PROCESSING_ERROR", "model backend unavailable", "processing_error"), "500", "Internal Server Error"),
			}),
		),

		// POST /detect_and_return
		endpoint.New(
			endpoint.POST,
			"/detect_and_return",
			endpoint.WithTags("Faces"),
			endpoint.WithSummary("Detect faces and return the annotated image"),
			endpoint.WithDescription("Upload one image in the form field 'file'. Returns the image as JPEG with face boxes and labels. The face count is in X-Faces-Detected and X-Detection-Status is 'success' or 'no_face'."),
			endpoint.WithConsume(multipart),
			endpoint.WithProduce([]mime.MIME{mime.MIME("image/jpeg")}),
			endpoint.WithParams(
				parameter.StrParam("info_display", parameter.Query, parameter.WithDescription("Label faces with age, gender and emotion (true/false, default: false)")),
			),
			endpoint.WithErrors([]response.Response{
				response.New(errorResponse("INVALID_IMAGE", "Invalid image", "invalid_image"), "400", "Bad Request"),
				response.New(errorResponse("PROCESSING_ERROR", "encode jpeg: image is nil", ""), "500", "Internal Server Error"),
			}),
		),

		// GET /health
		endpoint.New(
			endpoint.GET,
			"/health",
			endpoint.WithTags("Health"),
			endpoint.WithSummary("Liveness probe"),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(HealthResponse{}, "200", "Service is up"),
			}),
		),

		// GET /ready
		endpoint.New(
			endpoint.GET,
			"/ready",
			endpoint.WithTags("Health"),
			endpoint.WithSummary("Readiness probe"),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(HealthResponse{Status: "ready"}, "200", "Service is ready"),
			}),
		),
	}

	sw.AddEndpoints(endpoints)

	return sw
}
