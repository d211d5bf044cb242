package models

import "strings"

// BodyType is one of the five canonical body-shape categories
type BodyType string

const (
	Hourglass        BodyType = "hourglass"
	Pear             BodyType = "pear"
	InvertedTriangle BodyType = "inverted_triangle"
	Rectangle        BodyType = "rectangle"
	Apple            BodyType = "apple"
)

// BodyTypes lists every category in enumeration order.
// Fallback recommendation sets follow this order.
var BodyTypes = []BodyType{Hourglass, Pear, InvertedTriangle, Rectangle, Apple}

// ParseBodyType normalizes a category name the way clients send it
// (any case, surrounding whitespace) and reports whether it is known.
func ParseBodyType(s string) (BodyType, bool) {
	bt := BodyType(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range BodyTypes {
		if bt == known {
			return bt, true
		}
	}
	return bt, false
}

// Source tags where a measurement set came from
type Source string

const (
	SourceImageAnalysis Source = "image_analysis"
	SourceManualInput   Source = "manual_input"
)

// Measurements is the unified measurement set, all values in centimeters
type Measurements struct {
	ShoulderWidth float64 `json:"shoulder_width"`
	Bust          float64 `json:"bust"`
	Waist         float64 `json:"waist"`
	Hips          float64 `json:"hips"`
	Height        float64 `json:"height"`
}

// Ratios holds the dimensionless proportions used for classification
type Ratios struct {
	WaistToBust   float64 `json:"waist_to_bust"`
	WaistToHip    float64 `json:"waist_to_hip"`
	ShoulderToHip float64 `json:"shoulder_to_hip"`
}

// Recommendation is a static, authored style suggestion tied to one category
type Recommendation struct {
	ID          int      `json:"id"`
	Style       string   `json:"style"`
	Description string   `json:"description"`
	Category    BodyType `json:"category"`
}

// ExtractionDetails describes how image-derived measurements were scaled
type ExtractionDetails struct {
	Scale                 float64 `json:"scale"`
	ScaleSource           string  `json:"scale_source"` // "known_height" or "default"
	PixelBodyHeight       float64 `json:"pixel_body_height"`
	LandmarkConfidence    float64 `json:"landmark_confidence"`
	MinLandmarkVisibility float64 `json:"min_landmark_visibility"`
}

// Analysis is the full result of one pipeline run.
// Only part of it is exposed by the basic response.
type Analysis struct {
	Source          Source
	Measurements    Measurements
	Ratios          Ratios
	BodyType        BodyType
	MatchedRule     string
	Characteristics string
	Recommendations []Recommendation
	Extraction      *ExtractionDetails
}

// Response projects the analysis onto the public response shape
func (a *Analysis) Response() *AnalysisResponse {
	recs := a.Recommendations
	if recs == nil {
		recs = []Recommendation{}
	}
	return &AnalysisResponse{
		Source:          a.Source,
		Measurements:    a.Measurements,
		BodyType:        a.BodyType,
		Characteristics: a.Characteristics,
		Recommendations: recs,
	}
}

// BodyTypeInfo is the static description of a category
type BodyTypeInfo struct {
	Description string  `json:"description"`
	Percentage  float64 `json:"percentage"`
}
