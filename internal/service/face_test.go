package service

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/saturnino-fabrica-de-software/facelens/internal/audit"
	"github.com/saturnino-fabrica-de-software/facelens/internal/domain"
	"github.com/saturnino-fabrica-de-software/facelens/internal/imagecodec"
	"github.com/saturnino-fabrica-de-software/facelens/internal/provider"
	"github.com/saturnino-fabrica-de-software/facelens/internal/render"
)

type MockDetector struct {
	mock.Mock
}

func (m *MockDetector) Detect(ctx context.Context, img image.Image) (provider.RawDetections, error) {
	args := m.Called(ctx, img)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(provider.RawDetections), args.Error(1)
}

type MockAnalyzer struct {
	mock.Mock
}

func (m *MockAnalyzer) Analyze(ctx context.Context, face image.Image, actions []provider.Action) (*provider.AttributeResult, error) {
	args := m.Called(ctx, face, actions)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*provider.AttributeResult), args.Error(1)
}

type MockVerifier struct {
	mock.Mock
}

func (m *MockVerifier) Verify(ctx context.Context, img1, img2 image.Image) (*provider.VerifyResult, error) {
	args := m.Called(ctx, img1, img2)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*provider.VerifyResult), args.Error(1)
}

type MockOutputStore struct {
	mock.Mock
}

func (m *MockOutputStore) SaveJPEG(data []byte) (string, error) {
	args := m.Called(data)
	return args.String(0), args.Error(1)
}

type mocks struct {
	detector *MockDetector
	analyzer *MockAnalyzer
	verifier *MockVerifier
	output   *MockOutputStore
}

func newTestService(t *testing.T) (*FaceService, mocks) {
	t.Helper()

	m := mocks{
		detector: &MockDetector{},
		analyzer: &MockAnalyzer{},
		verifier: &MockVerifier{},
		output:   &MockOutputStore{},
	}
	renderer, err := render.NewRenderer(render.DefaultStyle())
	require.NoError(t, err)

	set := provider.Set{Name: "test", Detector: m.detector, Analyzer: m.analyzer, Verifier: m.verifier}
	return NewFaceService(set, renderer, m.output, DefaultOptions(), nil), m
}

func pngImage(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 200, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func score(v float64) *float64 { return &v }

func twoFaces() provider.RawDetections {
	return provider.RawDetections{
		"face_1": {FacialArea: provider.Area{10, 10, 60, 70}, Score: score(0.99)},
		"face_2": {FacialArea: provider.Area{120, 20, 160, 70}, Score: score(0.87)},
	}
}

func cropWidth(w int) interface{} {
	return mock.MatchedBy(func(img image.Image) bool { return img.Bounds().Dx() == w })
}

func TestFaceService_Analyze(t *testing.T) {
	attrs := &provider.AttributeResult{
		Age:             score(34),
		Gender:          provider.GenderScores{"Woman": 12, "Man": 88},
		DominantRace:    "white",
		DominantEmotion: "neutral",
		Emotion:         map[string]float64{"neutral": 90},
		Race:            map[string]float64{"white": 80},
	}

	tests := []struct {
		name       string
		image      func(t *testing.T) []byte
		saveRender bool
		setupMocks func(mocks)
		wantErr    *domain.AppError
		check      func(*testing.T, *domain.AnalysisResult)
	}{
		{
			name:  "two faces, one enrichment failure",
			image: func(t *testing.T) []byte { return pngImage(t, 200, 100) },
			setupMocks: func(m mocks) {
				m.detector.On("Detect", mock.Anything, mock.Anything).Return(twoFaces(), nil)
				m.analyzer.On("Analyze", mock.Anything, cropWidth(50), provider.AllActions).Return(attrs, nil)
				m.analyzer.On("Analyze", mock.Anything, cropWidth(40), provider.AllActions).Return(nil, errors.New("analyzer down"))
			},
			check: func(t *testing.T, res *domain.AnalysisResult) {
				require.Len(t, res.Faces, 2)
				assert.True(t, res.Faces[0].Enriched())
				assert.Equal(t, domain.GenderMan, res.Faces[0].Gender)
				assert.False(t, res.Faces[1].Enriched())
				assert.Equal(t, 0.87, *res.Faces[1].Confidence)
				assert.Empty(t, res.OutputFile)
			},
		},
		{
			name:       "no faces with render",
			image:      func(t *testing.T) []byte { return pngImage(t, 64, 64) },
			saveRender: true,
			setupMocks: func(m mocks) {
				m.detector.On("Detect", mock.Anything, mock.Anything).Return(provider.RawDetections{}, nil)
				m.output.On("SaveJPEG", mock.Anything).Return("output/result_x.jpg", nil)
			},
			check: func(t *testing.T, res *domain.AnalysisResult) {
				assert.Empty(t, res.Faces)
				assert.Equal(t, "output/result_x.jpg", res.OutputFile)
			},
		},
		{
			name:       "render saved as jpeg",
			image:      func(t *testing.T) []byte { return pngImage(t, 200, 100) },
			saveRender: true,
			setupMocks: func(m mocks) {
				m.detector.On("Detect", mock.Anything, mock.Anything).Return(twoFaces(), nil)
				m.analyzer.On("Analyze", mock.Anything, mock.Anything, mock.Anything).Return(attrs, nil)
				m.output.On("SaveJPEG", mock.MatchedBy(func(data []byte) bool {
					return imagecodec.Sniff(data) == "image/jpeg"
				})).Return("output/result_y.jpg", nil)
			},
			check: func(t *testing.T, res *domain.AnalysisResult) {
				assert.Len(t, res.Faces, 2)
				assert.Equal(t, "output/result_y.jpg", res.OutputFile)
			},
		},
		{
			name:       "corrupt upload",
			image:      func(t *testing.T) []byte { return []byte("garbage") },
			setupMocks: func(m mocks) {},
			wantErr:    domain.ErrInvalidImage,
		},
		{
			name:  "detector failure",
			image: func(t *testing.T) []byte { return pngImage(t, 32, 32) },
			setupMocks: func(m mocks) {
				m.detector.On("Detect", mock.Anything, mock.Anything).Return(nil, provider.ErrUnavailable)
			},
			wantErr: domain.ErrProcessing,
		},
		{
			name:       "save failure",
			image:      func(t *testing.T) []byte { return pngImage(t, 32, 32) },
			saveRender: true,
			setupMocks: func(m mocks) {
				m.detector.On("Detect", mock.Anything, mock.Anything).Return(provider.RawDetections{}, nil)
				m.output.On("SaveJPEG", mock.Anything).Return("", errors.New("disk full"))
			},
			wantErr: domain.ErrProcessing,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, m := newTestService(t)
			tt.setupMocks(m)

			res, err := svc.Analyze(context.Background(), tt.image(t), tt.saveRender)

			if tt.wantErr != nil {
				var appErr *domain.AppError
				require.ErrorAs(t, err, &appErr)
				assert.Equal(t, tt.wantErr.Code, appErr.Code)
				assert.Equal(t, tt.wantErr.StatusCode, appErr.StatusCode)
				assert.Nil(t, res)
			} else {
				require.NoError(t, err)
				tt.check(t, res)
			}

			m.detector.AssertExpectations(t)
			m.analyzer.AssertExpectations(t)
			m.output.AssertExpectations(t)
		})
	}
}

func TestFaceService_DetectAndRender(t *testing.T) {
	tests := []struct {
		name        string
		infoDisplay bool
		detections  provider.RawDetections
		setupMocks  func(mocks)
		wantFaces   int
	}{
		{
			name:        "confidence only skips enrichment",
			infoDisplay: false,
			detections:  twoFaces(),
			setupMocks:  func(m mocks) {},
			wantFaces:   2,
		},
		{
			name:        "info display enriches with display actions",
			infoDisplay: true,
			detections:  twoFaces(),
			setupMocks: func(m mocks) {
				m.analyzer.On("Analyze", mock.Anything, mock.Anything, provider.DisplayActions).
					Return(&provider.AttributeResult{Age: score(22), Gender: provider.GenderScores{"Woman": 99}}, nil)
			},
			wantFaces: 2,
		},
		{
			name:       "no faces still returns image",
			detections: provider.RawDetections{},
			setupMocks: func(m mocks) {},
			wantFaces:  0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, m := newTestService(t)
			m.detector.On("Detect", mock.Anything, mock.Anything).Return(tt.detections, nil)
			tt.setupMocks(m)

			res, err := svc.DetectAndRender(context.Background(), pngImage(t, 200, 100), tt.infoDisplay)

			require.NoError(t, err)
			assert.Equal(t, tt.wantFaces, res.FacesDetected)

			decoded, err := imagecodec.Decode(res.JPEG)
			require.NoError(t, err)
			assert.Equal(t, image.Pt(200, 100), decoded.Bounds().Size())

			m.analyzer.AssertExpectations(t)
		})
	}
}

func TestFaceService_DetectAndRenderInvalidImage(t *testing.T) {
	svc, m := newTestService(t)

	_, err := svc.DetectAndRender(context.Background(), nil, true)

	assert.ErrorIs(t, err, domain.ErrInvalidImage)
	m.detector.AssertNotCalled(t, "Detect", mock.Anything, mock.Anything)
}

func TestFaceService_Compare(t *testing.T) {
	tests := []struct {
		name       string
		image1     func(t *testing.T) []byte
		setupMocks func(*MockVerifier)
		wantErr    *domain.AppError
		check      func(*testing.T, *domain.Comparison)
	}{
		{
			name:   "same person",
			image1: func(t *testing.T) []byte { return pngImage(t, 40, 40) },
			setupMocks: func(v *MockVerifier) {
				v.On("Verify", mock.Anything, mock.Anything, mock.Anything).Return(&provider.VerifyResult{
					Verified: true, Distance: 0.05, Threshold: 0.68, SimilarityMetric: "cosine", Model: "VGG-Face",
				}, nil)
			},
			check: func(t *testing.T, c *domain.Comparison) {
				assert.True(t, c.Verified)
				assert.InDelta(t, 95, c.SimilarityPercentage, 1e-9)
				assert.Equal(t, domain.TierVeryHigh, c.ConfidenceTier)
				assert.Equal(t, "The faces are very likely the same person", c.Interpretation)
				assert.Equal(t, "VGG-Face", c.ModelName)
				assert.Equal(t, domain.MetricCosine, c.SimilarityMetric)
			},
		},
		{
			name:       "invalid first image",
			image1:     func(t *testing.T) []byte { return []byte{0x00, 0x01} },
			setupMocks: func(v *MockVerifier) {},
			wantErr:    domain.ErrInvalidComparisonImages,
		},
		{
			name:   "no face",
			image1: func(t *testing.T) []byte { return pngImage(t, 40, 40) },
			setupMocks: func(v *MockVerifier) {
				v.On("Verify", mock.Anything, mock.Anything, mock.Anything).
					Return(nil, errors.Join(errors.New("verify"), provider.ErrNoFaceDetected))
			},
			wantErr: domain.ErrFaceDetectionFailed,
		},
		{
			name:   "model rejects image",
			image1: func(t *testing.T) []byte { return pngImage(t, 40, 40) },
			setupMocks: func(v *MockVerifier) {
				v.On("Verify", mock.Anything, mock.Anything, mock.Anything).Return(nil, provider.ErrInvalidImage)
			},
			wantErr: domain.ErrComparisonImageFormat,
		},
		{
			name:   "other failure",
			image1: func(t *testing.T) []byte { return pngImage(t, 40, 40) },
			setupMocks: func(v *MockVerifier) {
				v.On("Verify", mock.Anything, mock.Anything, mock.Anything).Return(nil, errors.New("tensor shape mismatch"))
			},
			wantErr: domain.ErrComparisonFailed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, m := newTestService(t)
			tt.setupMocks(m.verifier)

			res, err := svc.Compare(context.Background(), tt.image1(t), pngImage(t, 40, 40))

			if tt.wantErr != nil {
				var appErr *domain.AppError
				require.ErrorAs(t, err, &appErr)
				assert.Equal(t, tt.wantErr.Message, appErr.Message)
				assert.Equal(t, tt.wantErr.ErrorType, appErr.ErrorType)
				assert.Equal(t, tt.wantErr.StatusCode, appErr.StatusCode)
				return
			}
			require.NoError(t, err)
			tt.check(t, res)
			m.verifier.AssertExpectations(t)
		})
	}
}

func TestFaceService_BusyWhenNoSlotFreesUp(t *testing.T) {
	svc, _ := newTestService(t)
	svc.opts.QueueTimeout = 20 * time.Millisecond

	for i := 0; i < DefaultOptions().MaxConcurrentJobs; i++ {
		require.True(t, svc.jobs.TryAcquire(1))
	}

	_, err := svc.Analyze(context.Background(), pngImage(t, 8, 8), false)

	assert.ErrorIs(t, err, domain.ErrServiceBusy)
}

type MockAuditLogger struct {
	mock.Mock
}

func (m *MockAuditLogger) Log(ctx context.Context, event audit.Event) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func TestFaceService_RecordsAuditEvents(t *testing.T) {
	svc, m := newTestService(t)
	auditLog := &MockAuditLogger{}
	svc.WithAudit(auditLog)

	m.detector.On("Detect", mock.Anything, mock.Anything).Return(provider.RawDetections{}, nil)

	auditLog.On("Log", mock.Anything, mock.MatchedBy(func(e audit.Event) bool {
		return e.EventType == audit.EventFacesRendered && e.Success && e.Provider == "test" &&
			e.FacesDetected == 0 && e.Metadata["info_display"] == "false"
	})).Return(nil).Once()
	auditLog.On("Log", mock.Anything, mock.MatchedBy(func(e audit.Event) bool {
		return e.EventType == audit.EventFacesAnalyzed && !e.Success && e.Error != ""
	})).Return(errors.New("audit sink down")).Once()

	_, err := svc.DetectAndRender(context.Background(), pngImage(t, 40, 40), false)
	require.NoError(t, err)

	// audit failures do not change the pipeline result
	_, err = svc.Analyze(context.Background(), []byte("broken"), false)
	assert.ErrorIs(t, err, domain.ErrInvalidImage)

	auditLog.AssertExpectations(t)
}
