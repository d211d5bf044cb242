package strategy

import (
	"context"

	"go-body-inspector/internal/analyzer"
	apperrors "go-body-inspector/internal/errors"
	"go-body-inspector/internal/logger"
	"go-body-inspector/pkg/models"
)

// MeasurementStrategy produces a measurement set from one kind of input
type MeasurementStrategy interface {
	Measure(ctx context.Context) (models.Measurements, *models.ExtractionDetails, error)
	Source() models.Source
}

// ImageStrategy measures a body from image bytes
type ImageStrategy struct {
	measurer      analyzer.ImageMeasurer
	data          []byte
	knownHeightCm float64
}

// NewImageStrategy creates an image strategy
func NewImageStrategy(measurer analyzer.ImageMeasurer, data []byte, knownHeightCm float64) *ImageStrategy {
	return &ImageStrategy{
		measurer:      measurer,
		data:          data,
		knownHeightCm: knownHeightCm,
	}
}

// Measure runs the image pipeline
func (s *ImageStrategy) Measure(ctx context.Context) (models.Measurements, *models.ExtractionDetails, error) {
	if s.measurer == nil {
		return models.Measurements{}, nil, apperrors.NewInternalError("image analysis is not configured", nil)
	}
	extraction, err := s.measurer.MeasureImage(ctx, s.data, s.knownHeightCm)
	if err != nil {
		return models.Measurements{}, nil, err
	}
	details := extraction.Details
	return extraction.Measurements, &details, nil
}

// Source returns the source tag
func (s *ImageStrategy) Source() models.Source {
	return models.SourceImageAnalysis
}

// Resolve picks the measurement strategy for a request. An image wins over
// manual measurements; with neither the request is rejected.
func Resolve(ctx context.Context, req models.AnalyzeRequest, measurer analyzer.ImageMeasurer) (MeasurementStrategy, error) {
	switch {
	case req.Image != nil:
		if req.HasManualMeasurements() {
			logger.WithContext(ctx).Info("Both image and manual measurements supplied; using image")
		}
		return NewImageStrategy(measurer, req.Image, req.KnownHeightCm), nil
	case req.HasManualMeasurements():
		return NewManualStrategy(req.ManualMeasurements, req.KnownHeightCm), nil
	default:
		return nil, apperrors.NewNoInputError()
	}
}
