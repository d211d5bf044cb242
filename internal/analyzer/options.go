package analyzer

// ExtractionOptions provides the constants used to turn landmark geometry
// into physical measurements
type ExtractionOptions struct {
	// Centimeters per pixel when no known height is supplied
	DefaultScale float64

	// Anthropometric approximation factors
	BustFactor  float64 // bust = shoulder width × BustFactor
	WaistFactor float64 // waist = hip landmark distance × WaistFactor
	HipFactor   float64 // hips = waist × HipFactor

	// Required landmarks below this visibility count as missing; 0 disables the check
	MinVisibility float64
}

// DefaultOptions returns default extraction options
func DefaultOptions() ExtractionOptions {
	return ExtractionOptions{
		DefaultScale:  0.2,
		BustFactor:    1.6,
		WaistFactor:   1.3,
		HipFactor:     1.3,
		MinVisibility: 0,
	}
}

// WithDefaultScale sets the fallback centimeters-per-pixel scale
func (opts ExtractionOptions) WithDefaultScale(scale float64) ExtractionOptions {
	opts.DefaultScale = scale
	return opts
}

// WithMinVisibility sets the visibility threshold for required landmarks
func (opts ExtractionOptions) WithMinVisibility(v float64) ExtractionOptions {
	opts.MinVisibility = v
	return opts
}

// WithFactors overrides the approximation factors
func (opts ExtractionOptions) WithFactors(bust, waist, hip float64) ExtractionOptions {
	opts.BustFactor = bust
	opts.WaistFactor = waist
	opts.HipFactor = hip
	return opts
}
