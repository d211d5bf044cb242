package models

// DetailedAnalysisResponse extends the basic result with the values the
// classifier worked from
type DetailedAnalysisResponse struct {
	Result           *AnalysisResponse  `json:"result"`
	Ratios           Ratios             `json:"ratios"`
	MatchedRule      string             `json:"matched_rule"`
	Extraction       *ExtractionDetails `json:"extraction,omitempty"`
	ProcessingTimeMs float64            `json:"processing_time_ms"`
	Timestamp        string             `json:"timestamp"`
}
