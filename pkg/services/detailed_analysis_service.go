package services

import (
	"context"
	"math"
	"time"

	"go-body-inspector/internal/service"
	"go-body-inspector/pkg/models"
)

// DetailedAnalysisService exposes the classifier inputs next to the basic result
type DetailedAnalysisService struct {
	analysisService service.BodyAnalysisService
}

// NewDetailedAnalysisService creates a new detailed analysis service
func NewDetailedAnalysisService(analysisService service.BodyAnalysisService) *DetailedAnalysisService {
	return &DetailedAnalysisService{analysisService: analysisService}
}

// AnalyzeDetailed runs the pipeline and reports ratios, the matched rule,
// scaling details and timing
func (s *DetailedAnalysisService) AnalyzeDetailed(ctx context.Context, req models.AnalyzeRequest) (*models.DetailedAnalysisResponse, error) {
	start := time.Now()

	analysis, err := s.analysisService.Analyze(ctx, req)
	if err != nil {
		return nil, err
	}

	return &models.DetailedAnalysisResponse{
		Result: analysis.Response(),
		Ratios: models.Ratios{
			WaistToBust:   roundRatio(analysis.Ratios.WaistToBust),
			WaistToHip:    roundRatio(analysis.Ratios.WaistToHip),
			ShoulderToHip: roundRatio(analysis.Ratios.ShoulderToHip),
		},
		MatchedRule:      analysis.MatchedRule,
		Extraction:       analysis.Extraction,
		ProcessingTimeMs: float64(time.Since(start).Microseconds()) / 1000,
		Timestamp:        start.UTC().Format(time.RFC3339),
	}, nil
}

func roundRatio(v float64) float64 {
	return math.Round(v*1000) / 1000
}
