package service

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"strconv"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/saturnino-fabrica-de-software/facelens/internal/audit"
	"github.com/saturnino-fabrica-de-software/facelens/internal/detection"
	"github.com/saturnino-fabrica-de-software/facelens/internal/domain"
	"github.com/saturnino-fabrica-de-software/facelens/internal/enrichment"
	"github.com/saturnino-fabrica-de-software/facelens/internal/imagecodec"
	"github.com/saturnino-fabrica-de-software/facelens/internal/provider"
	"github.com/saturnino-fabrica-de-software/facelens/internal/render"
	"github.com/saturnino-fabrica-de-software/facelens/internal/similarity"
)

// OutputStore persists rendered images.
type OutputStore interface {
	SaveJPEG(data []byte) (string, error)
}

// Options tunes the pipeline.
type Options struct {
	EnrichWorkers     int
	MaxConcurrentJobs int
	QueueTimeout      time.Duration
	JPEGQuality       int
}

// DefaultOptions returns conservative pipeline settings.
func DefaultOptions() Options {
	return Options{
		EnrichWorkers:     4,
		MaxConcurrentJobs: 4,
		QueueTimeout:      30 * time.Second,
		JPEGQuality:       imagecodec.DefaultJPEGQuality,
	}
}

// FaceService runs the analysis, comparison and render pipelines.
type FaceService struct {
	providers  provider.Set
	normalizer *detection.Normalizer
	enricher   *enrichment.Enricher
	renderer   *render.Renderer
	output     OutputStore
	jobs       *semaphore.Weighted
	opts       Options
	audit      audit.Logger
	logger     *slog.Logger
}

func NewFaceService(
	providers provider.Set,
	renderer *render.Renderer,
	output OutputStore,
	opts Options,
	logger *slog.Logger,
) *FaceService {
	if opts.MaxConcurrentJobs <= 0 {
		opts.MaxConcurrentJobs = 1
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &FaceService{
		providers:  providers,
		normalizer: detection.NewNormalizer(logger),
		enricher:   enrichment.NewEnricher(providers.Analyzer, opts.EnrichWorkers, logger),
		renderer:   renderer,
		output:     output,
		jobs:       semaphore.NewWeighted(int64(opts.MaxConcurrentJobs)),
		opts:       opts,
		audit:      &audit.NoOpLogger{},
		logger:     logger,
	}
}

// WithAudit records every pipeline run to l.
func (s *FaceService) WithAudit(l audit.Logger) *FaceService {
	if l != nil {
		s.audit = l
	}
	return s
}

// record emits one audit event. Audit failures never fail the request.
func (s *FaceService) record(ctx context.Context, event audit.Event, started time.Time, err error) {
	event.Provider = s.providers.Name
	event.Success = err == nil
	event.Duration = time.Since(started)
	if err != nil {
		event.Error = err.Error()
	}
	if logErr := s.audit.Log(ctx, event); logErr != nil {
		s.logger.Warn("audit log failed", "event_type", event.EventType, "error", logErr)
	}
}

// Analyze detects every face, enriches it with age, gender, race and emotion
// and, when saveRender is set, stores an annotated copy of the image.
func (s *FaceService) Analyze(ctx context.Context, imageBytes []byte, saveRender bool) (result *domain.AnalysisResult, err error) {
	defer func(started time.Time) {
		event := audit.Event{EventType: audit.EventFacesAnalyzed}
		if result != nil {
			event.FacesDetected = len(result.Faces)
			event.OutputFile = result.OutputFile
		}
		s.record(ctx, event, started, err)
	}(time.Now())

	release, err := s.acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	img, err := imagecodec.Decode(imageBytes)
	if err != nil {
		return nil, domain.ErrInvalidImage.WithError(err)
	}

	faces, err := s.detect(ctx, img)
	if err != nil {
		return nil, err
	}
	faces = s.enricher.Enrich(ctx, img, faces, provider.AllActions)

	analysis := &domain.AnalysisResult{Faces: faces}
	if !saveRender {
		return analysis, nil
	}

	data, err := s.renderJPEG(img, faces)
	if err != nil {
		return nil, err
	}
	path, err := s.output.SaveJPEG(data)
	if err != nil {
		return nil, domain.ErrProcessing.WithError(fmt.Errorf("save render: %w", err))
	}
	analysis.OutputFile = path

	return analysis, nil
}

// DetectAndRender returns an annotated JPEG. With infoDisplay set each face
// is labelled with age, gender and emotion; otherwise only with confidence.
func (s *FaceService) DetectAndRender(ctx context.Context, imageBytes []byte, infoDisplay bool) (rendered *domain.RenderedImage, err error) {
	defer func(started time.Time) {
		event := audit.Event{
			EventType: audit.EventFacesRendered,
			Metadata:  map[string]string{"info_display": strconv.FormatBool(infoDisplay)},
		}
		if rendered != nil {
			event.FacesDetected = rendered.FacesDetected
		}
		s.record(ctx, event, started, err)
	}(time.Now())

	release, err := s.acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	img, err := imagecodec.Decode(imageBytes)
	if err != nil {
		return nil, domain.ErrInvalidImage.WithError(err)
	}

	faces, err := s.detect(ctx, img)
	if err != nil {
		return nil, err
	}
	if infoDisplay {
		faces = s.enricher.Enrich(ctx, img, faces, provider.DisplayActions)
	}

	data, err := s.renderJPEG(img, faces)
	if err != nil {
		return nil, err
	}

	return &domain.RenderedImage{JPEG: data, FacesDetected: len(faces)}, nil
}

// Compare verifies whether two images show the same person and classifies
// the resulting distance.
func (s *FaceService) Compare(ctx context.Context, imageBytes1, imageBytes2 []byte) (comparison *domain.Comparison, err error) {
	defer func(started time.Time) {
		event := audit.Event{EventType: audit.EventFacesCompared}
		if comparison != nil {
			event.Metadata = map[string]string{
				"verified":         strconv.FormatBool(comparison.Verified),
				"confidence_level": string(comparison.ConfidenceTier),
			}
		}
		s.record(ctx, event, started, err)
	}(time.Now())

	release, err := s.acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	img1, err1 := imagecodec.Decode(imageBytes1)
	img2, err2 := imagecodec.Decode(imageBytes2)
	if err := errors.Join(err1, err2); err != nil {
		return nil, domain.ErrInvalidComparisonImages.WithError(err)
	}

	res, err := s.providers.Verifier.Verify(ctx, img1, img2)
	if err != nil {
		s.logger.Error("comparison failed", "provider", s.providers.Name, "error", err)
		switch {
		case errors.Is(err, provider.ErrNoFaceDetected):
			return nil, domain.ErrFaceDetectionFailed.WithError(err)
		case errors.Is(err, provider.ErrInvalidImage):
			return nil, domain.ErrComparisonImageFormat.WithError(err)
		default:
			return nil, domain.ErrComparisonFailed.WithError(err)
		}
	}

	classified := similarity.Classify(domain.ComparisonResult{
		Verified:         res.Verified,
		Distance:         res.Distance,
		Threshold:        res.Threshold,
		SimilarityMetric: domain.SimilarityMetric(res.SimilarityMetric),
		ModelName:        res.Model,
	})

	s.logger.Debug("faces compared",
		"provider", s.providers.Name,
		"verified", classified.Verified,
		"distance", classified.Distance,
		"tier", classified.ConfidenceTier,
	)
	return &classified, nil
}

func (s *FaceService) detect(ctx context.Context, img image.Image) ([]domain.FaceRecord, error) {
	raw, err := s.providers.Detector.Detect(ctx, img)
	if err != nil {
		if errors.Is(err, provider.ErrInvalidImage) {
			return nil, domain.ErrInvalidImage.WithError(err)
		}
		return nil, domain.ErrProcessing.WithError(err)
	}
	return s.normalizer.Normalize(raw), nil
}

func (s *FaceService) renderJPEG(img image.Image, faces []domain.FaceRecord) ([]byte, error) {
	annotations := make([]render.Annotation, len(faces))
	for i, f := range faces {
		annotations[i] = render.Annotation{Box: f.Position, Lines: render.InfoLines(f)}
	}

	out, err := s.renderer.Render(img, annotations)
	if err != nil {
		return nil, domain.ErrProcessing.WithError(fmt.Errorf("render overlay: %w", err))
	}

	data, err := imagecodec.EncodeJPEG(out, s.opts.JPEGQuality)
	if err != nil {
		return nil, domain.ErrProcessing.WithError(err)
	}
	return data, nil
}

// acquire reserves a pipeline slot, waiting at most QueueTimeout.
func (s *FaceService) acquire(ctx context.Context) (func(), error) {
	if s.opts.QueueTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.opts.QueueTimeout)
		defer cancel()
	}

	if err := s.jobs.Acquire(ctx, 1); err != nil {
		return nil, domain.ErrServiceBusy.WithError(err)
	}
	return func() { s.jobs.Release(1) }, nil
}
