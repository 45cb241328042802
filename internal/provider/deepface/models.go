package deepface

import "github.com/saturnino-fabrica-de-software/facelens/internal/provider"

// RepresentRequest for POST /represent
type RepresentRequest struct {
	Img              string `json:"img"`              // base64 data URI
	Model            string `json:"model_name"`       // "VGG-Face", "Facenet512", etc
	Detector         string `json:"detector_backend"` // "retinaface", "mtcnn", etc
	EnforceDetection bool   `json:"enforce_detection"`
	Align            bool   `json:"align"`
}

// RepresentResponse from POST /represent. Each result carries a facial_area
// ({x, y, w, h}) and face_confidence next to the embedding, which is unused.
type RepresentResponse struct {
	Results provider.RawDetections `json:"results"`
}

// AnalyzeRequest for POST /analyze
type AnalyzeRequest struct {
	Img              string   `json:"img"`
	Actions          []string `json:"actions"` // ["age", "gender", "emotion", "race"]
	Detector         string   `json:"detector_backend"`
	EnforceDetection bool     `json:"enforce_detection"`
}

// AnalyzeResponse from POST /analyze
type AnalyzeResponse struct {
	Results provider.AttributeResults `json:"results"`
}

// VerifyRequest for POST /verify
type VerifyRequest struct {
	Img1             string `json:"img1"`
	Img2             string `json:"img2"`
	Model            string `json:"model_name"` // "VGG-Face", "Facenet512", etc
	DistanceMetric   string `json:"distance_metric"`
	Detector         string `json:"detector_backend"`
	EnforceDetection bool   `json:"enforce_detection"`
}

// VerifyResponse from POST /verify
type VerifyResponse = provider.VerifyResult

type errorResponse struct {
	Error string `json:"error"`
}
