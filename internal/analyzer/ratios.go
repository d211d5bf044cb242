package analyzer

import (
	apperrors "go-body-inspector/internal/errors"
	"go-body-inspector/pkg/models"
)

// ComputeRatios derives the classification ratios from a measurement set.
// A zero bust or hips value is rejected instead of producing 0 or Inf.
func ComputeRatios(m models.Measurements) (models.Ratios, error) {
	if m.Bust == 0 {
		return models.Ratios{}, apperrors.NewDegenerateMeasurementError("bust must be non-zero to compute waist_to_bust")
	}
	if m.Hips == 0 {
		return models.Ratios{}, apperrors.NewDegenerateMeasurementError("hips must be non-zero to compute waist_to_hip and shoulder_to_hip")
	}

	return models.Ratios{
		WaistToBust:   m.Waist / m.Bust,
		WaistToHip:    m.Waist / m.Hips,
		ShoulderToHip: m.ShoulderWidth / m.Hips,
	}, nil
}
