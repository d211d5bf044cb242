package analyzer

import (
	"context"
	"errors"
	"fmt"
	"time"

	apperrors "go-body-inspector/internal/errors"
	"go-body-inspector/internal/landmark"
	"go-body-inspector/internal/logger"

	"github.com/sirupsen/logrus"
)

// bodyAnalyzer implements ImageMeasurer. Decoding, pose detection and
// extraction for one image run as a single job on the worker pool.
type bodyAnalyzer struct {
	provider landmark.Provider
	pool     *WorkerPool
	opts     ExtractionOptions
}

type measureResult struct {
	extraction *Extraction
	err        error
}

// NewBodyAnalyzer creates an image measurer backed by the given landmark provider
func NewBodyAnalyzer(provider landmark.Provider, workers int, opts ExtractionOptions) (ImageMeasurer, error) {
	if provider == nil {
		return nil, errors.New("landmark provider is required")
	}

	pool := NewWorkerPool(workers)
	pool.Start()

	return &bodyAnalyzer{
		provider: provider,
		pool:     pool,
		opts:     opts,
	}, nil
}

// MeasureImage runs the image pipeline on the worker pool and waits for it
// or for ctx to end, whichever comes first
func (ba *bodyAnalyzer) MeasureImage(ctx context.Context, data []byte, knownHeightCm float64) (*Extraction, error) {
	done := make(chan measureResult, 1)

	job := func() {
		defer func() {
			if r := recover(); r != nil {
				done <- measureResult{err: apperrors.NewInternalError("image analysis failed", fmt.Errorf("panic: %v", r))}
			}
		}()
		extraction, err := ba.measure(ctx, data, knownHeightCm)
		done <- measureResult{extraction: extraction, err: err}
	}

	if err := ba.pool.SubmitContext(ctx, job); err != nil {
		if errors.Is(err, ErrPoolClosed) {
			return nil, apperrors.NewInternalError("analyzer is shutting down", err)
		}
		return nil, contextError(err)
	}

	select {
	case res := <-done:
		return res.extraction, res.err
	case <-ctx.Done():
		return nil, contextError(ctx.Err())
	}
}

func (ba *bodyAnalyzer) measure(ctx context.Context, data []byte, knownHeightCm float64) (*Extraction, error) {
	if err := ctx.Err(); err != nil {
		return nil, contextError(err)
	}

	img, format, err := DecodeImage(data)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	pose, err := ba.provider.Detect(ctx, img)
	if err != nil {
		return nil, providerError(err)
	}

	bounds := img.Bounds()
	if pose != nil && (pose.Width == 0 || pose.Height == 0) {
		pose.Width, pose.Height = bounds.Dx(), bounds.Dy()
	}

	logger.WithContext(ctx).WithFields(logrus.Fields{
		"format":    format,
		"width":     bounds.Dx(),
		"height":    bounds.Dy(),
		"landmarks": landmarkCount(pose),
		"detect_ms": time.Since(start).Milliseconds(),
	}).Debug("Pose detected")

	extraction, err := ExtractMeasurements(pose, knownHeightCm, ba.opts)
	if err != nil {
		return nil, err
	}

	entry := logger.WithContext(ctx).WithFields(logrus.Fields{
		"scale_source":            extraction.Details.ScaleSource,
		"landmark_confidence":     extraction.Details.LandmarkConfidence,
		"min_landmark_visibility": extraction.Details.MinLandmarkVisibility,
	})
	if extraction.Details.MinLandmarkVisibility < lowVisibilityWarning {
		entry.Warn("Measurements rely on a barely visible landmark")
	} else {
		entry.Debug("Measurements extracted")
	}
	return extraction, nil
}

// Below this a required landmark is more guess than detection
const lowVisibilityWarning = 0.5

// Stats returns the worker pool counters
func (ba *bodyAnalyzer) Stats() PoolStats {
	return ba.pool.GetStats()
}

// Close releases resources used by the analyzer
func (ba *bodyAnalyzer) Close() error {
	ba.pool.Close()
	return nil
}

func providerError(err error) error {
	if _, ok := apperrors.As(err); ok {
		return err
	}
	switch {
	case errors.Is(err, landmark.ErrNoPoseDetected):
		return apperrors.NewPoseNotDetectedError("no person detected in image", err)
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return contextError(err)
	default:
		return apperrors.NewNetworkError("landmark provider request failed", err)
	}
}

func contextError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return apperrors.NewTimeoutError("image analysis timed out", err)
	}
	return apperrors.NewInternalError("image analysis cancelled", err)
}

func landmarkCount(pose *landmark.Pose) int {
	if pose == nil {
		return 0
	}
	return len(pose.Landmarks)
}
