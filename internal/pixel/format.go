// Package pixel implements the CPU pixel pipeline: RGBA/BGRA channel
// conversion, alpha premultiplication and resampling with the four scaling
// filters. Conversions chunk across the shared worker pool above a pixel
// threshold; callers needing GPU acceleration route through an accelerator
// first and fall back here.
package pixel

// Format represents a pixel storage format.
type Format uint8

const (
	// FormatRGBA8 is 32-bit RGBA (4 bytes per pixel), straight alpha.
	// This is the format frames decode to.
	FormatRGBA8 Format = iota

	// FormatRGBAPremul is 32-bit RGBA with premultiplied alpha.
	FormatRGBAPremul

	// FormatBGRA8 is 32-bit BGRA (4 bytes per pixel), straight alpha.
	// Common on Windows compositors and some GPU surface formats.
	FormatBGRA8

	// FormatBGRAPremul is 32-bit BGRA with premultiplied alpha.
	// This is the format cached frame conversions are stored in.
	FormatBGRAPremul

	// formatCount is the number of formats (for internal use).
	formatCount
)

// FormatInfo contains metadata about a pixel format.
type FormatInfo struct {
	// BytesPerPixel is the number of bytes per pixel.
	BytesPerPixel int

	// IsPremultiplied indicates if alpha is premultiplied.
	IsPremultiplied bool

	// IsBGRA indicates blue-first channel order.
	IsBGRA bool
}

// formatInfoTable contains metadata for each format.
var formatInfoTable = [formatCount]FormatInfo{
	FormatRGBA8:      {BytesPerPixel: 4, IsPremultiplied: false, IsBGRA: false},
	FormatRGBAPremul: {BytesPerPixel: 4, IsPremultiplied: true, IsBGRA: false},
	FormatBGRA8:      {BytesPerPixel: 4, IsPremultiplied: false, IsBGRA: true},
	FormatBGRAPremul: {BytesPerPixel: 4, IsPremultiplied: true, IsBGRA: true},
}

// Info returns the FormatInfo for this format.
func (f Format) Info() FormatInfo {
	if f >= formatCount {
		return FormatInfo{}
	}
	return formatInfoTable[f]
}

// BytesPerPixel returns the number of bytes per pixel for this format.
func (f Format) BytesPerPixel() int {
	return f.Info().BytesPerPixel
}

// IsPremultiplied returns true if alpha is premultiplied.
func (f Format) IsPremultiplied() bool {
	return f.Info().IsPremultiplied
}

// IsBGRA returns true for blue-first channel order.
func (f Format) IsBGRA() bool {
	return f.Info().IsBGRA
}

// String returns a string representation of the format.
func (f Format) String() string {
	switch f {
	case FormatRGBA8:
		return "RGBA8"
	case FormatRGBAPremul:
		return "RGBAPremul"
	case FormatBGRA8:
		return "BGRA8"
	case FormatBGRAPremul:
		return "BGRAPremul"
	default:
		return "Unknown"
	}
}

// IsValid returns true if the format is a valid known format.
func (f Format) IsValid() bool {
	return f < formatCount
}

// RowBytes calculates the number of bytes needed for a row of the given width.
func (f Format) RowBytes(width int) int {
	return width * f.BytesPerPixel()
}

// ImageBytes calculates the total number of bytes needed for an image.
func (f Format) ImageBytes(width, height int) int {
	return f.RowBytes(width) * height
}

// PremultipliedVersion returns the premultiplied version of this format.
// Returns the same format if already premultiplied.
func (f Format) PremultipliedVersion() Format {
	switch f {
	case FormatRGBA8:
		return FormatRGBAPremul
	case FormatBGRA8:
		return FormatBGRAPremul
	default:
		return f
	}
}
