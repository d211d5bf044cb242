package strategy

import (
	"context"
	"fmt"

	apperrors "go-body-inspector/internal/errors"
	"go-body-inspector/pkg/models"

	"github.com/go-playground/validator/v10"
	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

var validate = validator.New()

// RequiredManualFields are the keys a manual payload must carry, in the
// order they are reported when missing
var RequiredManualFields = []string{"bust", "waist", "hips", "shoulder_width"}

type manualMeasurements struct {
	Bust          float64 `validate:"gte=0"`
	Waist         float64 `validate:"gte=0"`
	Hips          float64 `validate:"gte=0"`
	ShoulderWidth float64 `validate:"gte=0"`
	Height        float64 `validate:"gte=0"`
}

// ManualStrategy takes measurements the user typed in
type ManualStrategy struct {
	payload       string
	knownHeightCm float64
}

// NewManualStrategy creates a manual strategy over a raw JSON payload
func NewManualStrategy(payload string, knownHeightCm float64) *ManualStrategy {
	return &ManualStrategy{payload: payload, knownHeightCm: knownHeightCm}
}

// Measure parses and validates the payload
func (s *ManualStrategy) Measure(ctx context.Context) (models.Measurements, *models.ExtractionDetails, error) {
	m, err := ParseManualMeasurements(s.payload, s.knownHeightCm)
	return m, nil, err
}

// Source returns the source tag
func (s *ManualStrategy) Source() models.Source {
	return models.SourceManualInput
}

// ParseManualMeasurements turns a JSON object into a measurement set. Height
// comes from knownHeightCm when positive, else from the optional "height" key.
func ParseManualMeasurements(payload string, knownHeightCm float64) (models.Measurements, error) {
	var raw map[string]interface{}
	if err := json.Unmarshal([]byte(payload), &raw); err != nil {
		return models.Measurements{}, apperrors.NewInvalidFormatError("manual measurements must be a JSON object", err)
	}
	if raw == nil {
		return models.Measurements{}, apperrors.NewInvalidFormatError("manual measurements must be a JSON object", nil)
	}

	var missing []string
	for _, key := range RequiredManualFields {
		if v, ok := raw[key]; !ok || v == nil {
			missing = append(missing, key)
		}
	}
	if len(missing) > 0 {
		return models.Measurements{}, apperrors.NewMissingFieldsError(missing)
	}

	keys := append(append([]string(nil), RequiredManualFields...), "height")
	values := make(map[string]float64, len(keys))
	for _, key := range keys {
		v, ok := raw[key]
		if !ok || v == nil {
			continue
		}
		f, isNumber := v.(float64)
		if !isNumber {
			return models.Measurements{}, apperrors.NewInvalidFormatError(
				fmt.Sprintf("measurement %q must be a number", key), nil)
		}
		values[key] = f
	}

	mm := manualMeasurements{
		Bust:          values["bust"],
		Waist:         values["waist"],
		Hips:          values["hips"],
		ShoulderWidth: values["shoulder_width"],
		Height:        values["height"],
	}
	if knownHeightCm > 0 {
		mm.Height = knownHeightCm
	}

	if err := validate.Struct(mm); err != nil {
		return models.Measurements{}, apperrors.NewInvalidFormatError(
			"measurements must be non-negative numbers", err)
	}

	return models.Measurements{
		ShoulderWidth: mm.ShoulderWidth,
		Bust:          mm.Bust,
		Waist:         mm.Waist,
		Hips:          mm.Hips,
		Height:        mm.Height,
	}, nil
}
