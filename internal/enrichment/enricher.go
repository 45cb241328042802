// Package enrichment adds attribute model output to detected faces.
package enrichment

import (
	"context"
	"errors"
	"image"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/saturnino-fabrica-de-software/facelens/internal/domain"
	"github.com/saturnino-fabrica-de-software/facelens/internal/imagecodec"
	"github.com/saturnino-fabrica-de-software/facelens/internal/provider"
)

// womanScoreThreshold is the "Woman" class score above which a face is
// labelled Woman. It is not configurable.
const womanScoreThreshold = 50.0

var errEmptyCrop = errors.New("face region lies outside the image")

// Enricher crops each detected face and asks the attribute model about it.
type Enricher struct {
	analyzer provider.AttributeAnalyzer
	workers  int
	logger   *slog.Logger
}

// NewEnricher creates an Enricher running at most workers analyses at once.
func NewEnricher(analyzer provider.AttributeAnalyzer, workers int, logger *slog.Logger) *Enricher {
	if workers <= 0 {
		workers = 1
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Enricher{
		analyzer: analyzer,
		workers:  workers,
		logger:   logger,
	}
}

// Enrich returns a copy of faces with attributes filled in. A failure for one
// face is logged and leaves that record with only position and confidence;
// it never affects other faces or the number of records returned.
func (e *Enricher) Enrich(ctx context.Context, img image.Image, faces []domain.FaceRecord, actions []provider.Action) []domain.FaceRecord {
	out := make([]domain.FaceRecord, len(faces))
	copy(out, faces)

	if len(out) == 0 {
		return out
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)

	for i := range out {
		g.Go(func() error {
			if err := e.enrichOne(gctx, img, &out[i], actions); err != nil {
				e.logger.Warn("face analysis failed",
					"face_index", i,
					"position", out[i].Position,
					"error", err,
				)
			}
			return nil
		})
	}
	_ = g.Wait()

	return out
}

func (e *Enricher) enrichOne(ctx context.Context, img image.Image, face *domain.FaceRecord, actions []provider.Action) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.New("attribute analyzer panicked")
		}
	}()

	region := face.Position.ClampTo(img.Bounds())
	if !region.Valid() {
		return errEmptyCrop
	}

	crop := imagecodec.Crop(img, region.Rect())

	result, err := e.analyzer.Analyze(ctx, crop, actions)
	if err != nil {
		return err
	}
	if result == nil {
		return provider.ErrInvalidResponse
	}

	apply(face, result)
	return nil
}

// apply copies the attribute result onto the record.
func apply(face *domain.FaceRecord, result *provider.AttributeResult) {
	if result.Age != nil {
		age := int(*result.Age)
		face.Age = &age
	}

	switch {
	case len(result.Gender) > 0:
		if result.Gender["Woman"] > womanScoreThreshold {
			face.Gender = domain.GenderWoman
		} else {
			face.Gender = domain.GenderMan
		}
	case result.DominantGender == string(domain.GenderWoman):
		face.Gender = domain.GenderWoman
	case result.DominantGender == string(domain.GenderMan):
		face.Gender = domain.GenderMan
	}

	face.DominantRace = result.DominantRace
	face.DominantEmotion = result.DominantEmotion
	face.Emotion = result.Emotion
	face.Race = result.Race
}
