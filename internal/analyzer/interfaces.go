package analyzer

import "context"

// ImageMeasurer turns raw image bytes into body measurements
type ImageMeasurer interface {
	// MeasureImage decodes data, detects a pose and extracts measurements.
	// knownHeightCm <= 0 means the height is unknown.
	MeasureImage(ctx context.Context, data []byte, knownHeightCm float64) (*Extraction, error)

	// Stats exposes worker pool counters for the metrics endpoint
	Stats() PoolStats

	// Lifecycle management
	Close() error
}
