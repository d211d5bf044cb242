package models

// AnalyzeRequest carries the raw, unvalidated inputs of an analysis.
// Image is nil when no file was uploaded; an uploaded empty file is a
// non-nil empty slice and fails decoding.
type AnalyzeRequest struct {
	Image              []byte
	ImageURL           string
	ManualMeasurements string
	KnownHeightCm      float64
	RequestID          string
}

// HasManualMeasurements reports whether a manual payload was supplied
func (r AnalyzeRequest) HasManualMeasurements() bool {
	return r.ManualMeasurements != ""
}

// AnalysisResponse is the public result of the Analyze operation
type AnalysisResponse struct {
	Source          Source           `json:"source"`
	Measurements    Measurements     `json:"measurements"`
	BodyType        BodyType         `json:"body_type"`
	Characteristics string           `json:"characteristics"`
	Recommendations []Recommendation `json:"recommendations"`
}

// RecommendRequest selects recommendations for a category
type RecommendRequest struct {
	BodyType string `json:"body_type"`
}

// RecommendationResponse lists recommendations; Suggestion is set when the
// requested category was unknown but close to a known one
type RecommendationResponse struct {
	BodyType        string           `json:"body_type"`
	Recommendations []Recommendation `json:"recommendations"`
	Suggestion      BodyType         `json:"suggestion,omitempty"`
}

// InfoResponse is the static category overview
type InfoResponse struct {
	BodyTypes map[BodyType]BodyTypeInfo `json:"body_types"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error         string   `json:"error"`
	Type          string   `json:"type,omitempty"`
	Message       string   `json:"message,omitempty"`
	Details       string   `json:"details,omitempty"`
	MissingFields []string `json:"missing_fields,omitempty"`
}
