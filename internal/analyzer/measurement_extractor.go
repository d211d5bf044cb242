package analyzer

import (
	"fmt"
	"math"
	"strings"

	apperrors "go-body-inspector/internal/errors"
	"go-body-inspector/internal/landmark"
	"go-body-inspector/pkg/models"
)

const (
	ScaleSourceKnownHeight = "known_height"
	ScaleSourceDefault     = "default"
)

// Extraction is the output of the measurement extractor
type Extraction struct {
	Measurements models.Measurements
	Details      models.ExtractionDetails
}

// ExtractMeasurements converts a detected pose into centimeter measurements.
// knownHeightCm <= 0 means the height is unknown and the default scale applies.
func ExtractMeasurements(pose *landmark.Pose, knownHeightCm float64, opts ExtractionOptions) (*Extraction, error) {
	if pose == nil || len(pose.Landmarks) == 0 {
		return nil, apperrors.NewPoseNotDetectedError("no body landmarks detected in image", nil)
	}
	if pose.Width <= 0 || pose.Height <= 0 {
		return nil, apperrors.NewUnreadableImageError("image has no pixel data", nil)
	}
	if knownHeightCm < 0 || math.IsNaN(knownHeightCm) || math.IsInf(knownHeightCm, 0) {
		return nil, apperrors.NewValidationError(fmt.Sprintf("known height must be >= 0 (got %g)", knownHeightCm), nil)
	}

	points, err := requiredLandmarks(pose.Landmarks, opts.MinVisibility)
	if err != nil {
		return nil, err
	}

	width := float64(pose.Width)
	height := float64(pose.Height)

	shoulderPx := math.Abs(points.leftShoulder.X-points.rightShoulder.X) * width
	bustPx := shoulderPx * opts.BustFactor
	waistPx := math.Abs(points.leftHip.X-points.rightHip.X) * width * opts.WaistFactor
	hipsPx := waistPx * opts.HipFactor
	bodyHeightPx := math.Abs(points.heel.Y-points.nose.Y) * height

	scale := opts.DefaultScale
	scaleSource := ScaleSourceDefault
	if knownHeightCm > 0 {
		if bodyHeightPx == 0 {
			return nil, apperrors.NewDegenerateMeasurementError("body height in image is zero; cannot derive scale from known height")
		}
		scale = knownHeightCm / bodyHeightPx
		scaleSource = ScaleSourceKnownHeight
	}

	bodyHeight := knownHeightCm
	if knownHeightCm <= 0 {
		bodyHeight = roundTo2(bodyHeightPx * scale)
	}

	stats := computeVisibilityStats(points.all())

	return &Extraction{
		Measurements: models.Measurements{
			ShoulderWidth: roundTo2(shoulderPx * scale),
			Bust:          roundTo2(bustPx * scale),
			Waist:         roundTo2(waistPx * scale),
			Hips:          roundTo2(hipsPx * scale),
			Height:        bodyHeight,
		},
		Details: models.ExtractionDetails{
			Scale:                 scale,
			ScaleSource:           scaleSource,
			PixelBodyHeight:       roundTo2(bodyHeightPx),
			LandmarkConfidence:    stats.mean,
			MinLandmarkVisibility: stats.min,
		},
	}, nil
}

type keyPoints struct {
	nose          landmark.Point
	leftShoulder  landmark.Point
	rightShoulder landmark.Point
	leftHip       landmark.Point
	rightHip      landmark.Point
	heel          landmark.Point
}

func (k keyPoints) all() []landmark.Point {
	return []landmark.Point{k.nose, k.leftShoulder, k.rightShoulder, k.leftHip, k.rightHip, k.heel}
}

// requiredLandmarks picks the points the measurements depend on. The left
// heel is preferred; the right heel stands in when the left one is absent.
func requiredLandmarks(set landmark.Set, minVisibility float64) (keyPoints, error) {
	var missing []string
	get := func(names ...landmark.Name) landmark.Point {
		for _, name := range names {
			if p, ok := set.Get(name); ok && p.Visibility >= minVisibility {
				return p
			}
		}
		missing = append(missing, string(names[0]))
		return landmark.Point{}
	}

	k := keyPoints{
		nose:          get(landmark.Nose),
		leftShoulder:  get(landmark.LeftShoulder),
		rightShoulder: get(landmark.RightShoulder),
		leftHip:       get(landmark.LeftHip),
		rightHip:      get(landmark.RightHip),
		heel:          get(landmark.LeftHeel, landmark.RightHeel),
	}
	if len(missing) > 0 {
		return keyPoints{}, apperrors.NewPoseNotDetectedError(
			"required body landmarks not detected: "+strings.Join(missing, ", "), nil)
	}
	return k, nil
}

func roundTo2(v float64) float64 {
	return math.Round(v*100) / 100
}
