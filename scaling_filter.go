package gifbolt

// ScalingFilter selects the resampling filter for scaled pixel access.
// The numeric values are part of the boundary contract and must not change.
type ScalingFilter int

const (
	// FilterNearest performs point sampling. Fastest, blocky results.
	FilterNearest ScalingFilter = iota

	// FilterBilinear blends the 4 nearest source pixels.
	FilterBilinear

	// FilterBicubic applies a Catmull-Rom kernel (a = -0.5) over a
	// 4x4 source neighborhood with weight normalization.
	FilterBicubic

	// FilterLanczos applies a Lanczos kernel with radius 3 over a
	// 7x7 source neighborhood with weight normalization. Sharpest,
	// slowest of the filters.
	FilterLanczos
)

// String returns the filter name.
func (f ScalingFilter) String() string {
	switch f {
	case FilterNearest:
		return "Nearest"
	case FilterBilinear:
		return "Bilinear"
	case FilterBicubic:
		return "Bicubic"
	case FilterLanczos:
		return "Lanczos"
	default:
		return "Unknown"
	}
}

// Valid reports whether f is one of the defined filters.
func (f ScalingFilter) Valid() bool {
	return f >= FilterNearest && f <= FilterLanczos
}
