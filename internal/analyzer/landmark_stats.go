package analyzer

import (
	"go-body-inspector/internal/landmark"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// visibilityStats summarizes how confident the model was about the points
// the measurements are built from
type visibilityStats struct {
	mean float64
	min  float64
}

func computeVisibilityStats(points []landmark.Point) visibilityStats {
	if len(points) == 0 {
		return visibilityStats{}
	}
	vis := make([]float64, len(points))
	for i, p := range points {
		vis[i] = p.Visibility
	}
	return visibilityStats{
		mean: stat.Mean(vis, nil),
		min:  floats.Min(vis),
	}
}
