package service

import (
	"context"
	"math"
	"strings"
	"time"

	"go-body-inspector/internal/analyzer"
	apperrors "go-body-inspector/internal/errors"
	"go-body-inspector/internal/logger"
	"go-body-inspector/internal/observer"
	"go-body-inspector/internal/repository"
	"go-body-inspector/internal/strategy"
	"go-body-inspector/pkg/models"

	"github.com/sirupsen/logrus"
)

// BodyAnalysisService runs the measurement, classification and
// recommendation pipeline
type BodyAnalysisService interface {
	Analyze(ctx context.Context, req models.AnalyzeRequest) (*models.Analysis, error)
	Recommend(category string) models.RecommendationResponse
	Info() models.InfoResponse
}

// Options bounds the slow stages of the pipeline
type Options struct {
	AnalysisTimeout   time.Duration
	ImageFetchTimeout time.Duration
}

type bodyAnalysisService struct {
	imageRepo repository.ImageRepository
	measurer  analyzer.ImageMeasurer
	recs      repository.RecommendationRepository
	events    observer.Subject
	opts      Options
}

// NewBodyAnalysisService creates the pipeline. imageRepo and events may be nil.
func NewBodyAnalysisService(
	imageRepo repository.ImageRepository,
	measurer analyzer.ImageMeasurer,
	recs repository.RecommendationRepository,
	events observer.Subject,
	opts Options,
) BodyAnalysisService {
	if recs == nil {
		recs = repository.NewRecommendationRepository(repository.DefaultCatalog())
	}
	return &bodyAnalysisService{
		imageRepo: imageRepo,
		measurer:  measurer,
		recs:      recs,
		events:    events,
		opts:      opts,
	}
}

// Analyze produces a classified, recommended analysis or a typed error.
// No partial results are returned.
func (s *bodyAnalysisService) Analyze(ctx context.Context, req models.AnalyzeRequest) (*models.Analysis, error) {
	start := time.Now()
	requestID := req.RequestID
	if requestID == "" {
		requestID = logger.RequestID(ctx)
	}
	s.publish(ctx, observer.AnalysisEvent{EventType: observer.AnalysisStarted, RequestID: requestID})

	analysis, err := s.analyze(ctx, req, requestID)
	if err != nil {
		event := observer.AnalysisEvent{
			EventType:      observer.AnalysisFailed,
			RequestID:      requestID,
			ProcessingTime: time.Since(start),
			ErrorMessage:   err.Error(),
		}
		if appErr, ok := apperrors.As(err); ok {
			event.ErrorType = string(appErr.Type)
		}
		s.publish(ctx, event)
		return nil, err
	}

	s.publish(ctx, observer.AnalysisEvent{
		EventType:      observer.AnalysisCompleted,
		RequestID:      requestID,
		Source:         string(analysis.Source),
		BodyType:       string(analysis.BodyType),
		ProcessingTime: time.Since(start),
		Success:        true,
		Metadata: map[string]interface{}{
			"matched_rule": analysis.MatchedRule,
		},
	})
	return analysis, nil
}

func (s *bodyAnalysisService) analyze(ctx context.Context, req models.AnalyzeRequest, requestID string) (*models.Analysis, error) {
	if req.KnownHeightCm < 0 || math.IsNaN(req.KnownHeightCm) || math.IsInf(req.KnownHeightCm, 0) {
		return nil, apperrors.NewValidationError("user_height_cm must be a number >= 0", nil)
	}

	if req.Image == nil && strings.TrimSpace(req.ImageURL) != "" {
		data, err := s.fetchImage(ctx, req.ImageURL, requestID)
		if err != nil {
			return nil, err
		}
		req.Image = data
	}

	measurementStrategy, err := strategy.Resolve(ctx, req, s.measurer)
	if err != nil {
		return nil, err
	}

	measureCtx := ctx
	if measurementStrategy.Source() == models.SourceImageAnalysis && s.opts.AnalysisTimeout > 0 {
		var cancel context.CancelFunc
		measureCtx, cancel = context.WithTimeout(ctx, s.opts.AnalysisTimeout)
		defer cancel()
	}

	measurements, details, err := measurementStrategy.Measure(measureCtx)
	if err != nil {
		return nil, err
	}

	ratios, err := analyzer.ComputeRatios(measurements)
	if err != nil {
		return nil, err
	}

	rule := analyzer.MatchRule(ratios)
	category := string(rule.BodyType)

	logger.WithContext(ctx).WithFields(logrus.Fields{
		"source":          measurementStrategy.Source(),
		"body_type":       rule.BodyType,
		"waist_to_bust":   ratios.WaistToBust,
		"waist_to_hip":    ratios.WaistToHip,
		"shoulder_to_hip": ratios.ShoulderToHip,
	}).Debug("Body classified")

	return &models.Analysis{
		Source:          measurementStrategy.Source(),
		Measurements:    measurements,
		Ratios:          ratios,
		BodyType:        rule.BodyType,
		MatchedRule:     rule.Predicate,
		Characteristics: s.recs.Characteristics(category),
		Recommendations: s.recs.Lookup(category),
		Extraction:      details,
	}, nil
}

func (s *bodyAnalysisService) fetchImage(ctx context.Context, imageURL, requestID string) ([]byte, error) {
	if s.imageRepo == nil {
		return nil, apperrors.NewValidationError("image_url is not supported by this server", nil)
	}

	fetchCtx := ctx
	if s.opts.ImageFetchTimeout > 0 {
		var cancel context.CancelFunc
		fetchCtx, cancel = context.WithTimeout(ctx, s.opts.ImageFetchTimeout)
		defer cancel()
	}

	start := time.Now()
	data, err := s.imageRepo.FetchImage(fetchCtx, imageURL)
	if err != nil {
		s.publish(ctx, observer.AnalysisEvent{
			EventType:      observer.ImageFetchFailed,
			RequestID:      requestID,
			ImageURL:       imageURL,
			ProcessingTime: time.Since(start),
			ErrorMessage:   err.Error(),
		})
		return nil, err
	}

	s.publish(ctx, observer.AnalysisEvent{
		EventType:      observer.ImageFetched,
		RequestID:      requestID,
		ImageURL:       imageURL,
		ProcessingTime: time.Since(start),
		Success:        true,
		Metadata:       map[string]interface{}{"bytes": len(data)},
	})
	return data, nil
}

// Recommend returns the styles for a category. Unknown categories get the
// cross-category fallback and, when close to a known one, a suggestion.
func (s *bodyAnalysisService) Recommend(category string) models.RecommendationResponse {
	resp := models.RecommendationResponse{
		BodyType:        category,
		Recommendations: s.recs.Lookup(category),
	}
	if bt, ok := models.ParseBodyType(category); ok {
		resp.BodyType = string(bt)
		return resp
	}
	if suggestion, ok := s.recs.Suggest(category); ok {
		resp.Suggestion = suggestion
	}
	return resp
}

// Info returns the static category overview
func (s *bodyAnalysisService) Info() models.InfoResponse {
	return models.InfoResponse{BodyTypes: s.recs.Info()}
}

func (s *bodyAnalysisService) publish(ctx context.Context, event observer.AnalysisEvent) {
	if s.events == nil {
		return
	}
	s.events.NotifyObservers(ctx, event)
}
