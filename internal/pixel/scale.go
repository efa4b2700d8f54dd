package pixel

import (
	"errors"
	"math"

	"github.com/gogpu/gifbolt/internal/parallel"
)

// ErrUnknownFilter is returned when a scaling filter value is out of range.
var ErrUnknownFilter = errors.New("pixel: unknown scaling filter")

// Filter selects the resampling kernel for Scale.
// Values match the boundary contract: Nearest=0, Bilinear=1, Bicubic=2,
// Lanczos=3.
type Filter uint8

const (
	// FilterNearest selects the closest pixel (no interpolation).
	// Fast but produces blocky results when scaling.
	FilterNearest Filter = iota

	// FilterBilinear performs linear interpolation between 4 neighboring pixels.
	// Good balance between quality and performance.
	FilterBilinear

	// FilterBicubic performs cubic interpolation using a 4x4 pixel neighborhood.
	// Catmull-Rom weights (a = -0.5), normalized.
	FilterBicubic

	// FilterLanczos performs sinc-windowed resampling with radius 3 over a
	// 7x7 effective neighborhood, normalized. Highest quality, slowest.
	FilterLanczos
)

// String returns a string representation of the filter.
func (f Filter) String() string {
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

// IsValid returns true for a defined filter value.
func (f Filter) IsValid() bool { return f <= FilterLanczos }

// Scale resamples a 4-byte-per-pixel image from src (srcW x srcH) into dst
// (dstW x dstH) using the given filter. Channel order does not matter; the
// four channels resample independently, so the same code serves RGBA and
// premultiplied BGRA. Source coordinates clamp to the image rect at edges.
//
// Scaling chunks destination rows across the shared worker pool when the
// destination exceeds the threading threshold.
func Scale(dst []byte, dstW, dstH int, src []byte, srcW, srcH int, filter Filter) error {
	if dstW <= 0 || dstH <= 0 || srcW <= 0 || srcH <= 0 {
		return ErrInvalidDimensions
	}
	if len(src) < srcW*srcH*4 || len(dst) < dstW*dstH*4 {
		return ErrSizeMismatch
	}
	if !filter.IsValid() {
		return ErrUnknownFilter
	}

	var rows func(y0, y1 int)
	switch filter {
	case FilterNearest:
		rows = func(y0, y1 int) { scaleNearest(dst, dstW, src, srcW, srcH, dstH, y0, y1) }
	case FilterBilinear:
		rows = func(y0, y1 int) { scaleBilinear(dst, dstW, src, srcW, srcH, dstH, y0, y1) }
	case FilterBicubic:
		rows = func(y0, y1 int) { scaleBicubic(dst, dstW, src, srcW, srcH, dstH, y0, y1) }
	case FilterLanczos:
		rows = func(y0, y1 int) { scaleLanczos(dst, dstW, src, srcW, srcH, dstH, y0, y1) }
	}

	if dstW*dstH < threadingThreshold || dstH < 2 {
		rows(0, dstH)
		return nil
	}

	ranges := parallel.ChunkRanges(dstH, convertWorkers())
	work := make([]func(), len(ranges))
	for i, r := range ranges {
		r := r
		work[i] = func() { rows(r.Start, r.End) }
	}
	parallel.Default().ExecuteAll(work)
	return nil
}

// scaleNearest point-samples each destination pixel, selecting the source
// pixel containing the destination pixel center.
func scaleNearest(dst []byte, dstW int, src []byte, srcW, srcH, dstH, y0, y1 int) {
	xr := float64(srcW) / float64(dstW)
	yr := float64(srcH) / float64(dstH)

	for dy := y0; dy < y1; dy++ {
		sy := clamp(int((float64(dy)+0.5)*yr), 0, srcH-1)
		srcRow := sy * srcW * 4
		dstRow := dy * dstW * 4
		for dx := 0; dx < dstW; dx++ {
			sx := clamp(int((float64(dx)+0.5)*xr), 0, srcW-1)
			so := srcRow + sx*4
			do := dstRow + dx*4
			dst[do+0] = src[so+0]
			dst[do+1] = src[so+1]
			dst[do+2] = src[so+2]
			dst[do+3] = src[so+3]
		}
	}
}

// scaleBilinear blends the 4 source pixels around each destination pixel
// center with linear weights.
func scaleBilinear(dst []byte, dstW int, src []byte, srcW, srcH, dstH, y0, y1 int) {
	xr := float64(srcW) / float64(dstW)
	yr := float64(srcH) / float64(dstH)

	for dy := y0; dy < y1; dy++ {
		fy := (float64(dy)+0.5)*yr - 0.5
		sy0 := int(math.Floor(fy))
		ty := fy - float64(sy0)
		sy1 := clamp(sy0+1, 0, srcH-1)
		sy0 = clamp(sy0, 0, srcH-1)

		dstRow := dy * dstW * 4
		for dx := 0; dx < dstW; dx++ {
			fx := (float64(dx)+0.5)*xr - 0.5
			sx0 := int(math.Floor(fx))
			tx := fx - float64(sx0)
			sx1 := clamp(sx0+1, 0, srcW-1)
			sx0 = clamp(sx0, 0, srcW-1)

			o00 := (sy0*srcW + sx0) * 4
			o10 := (sy0*srcW + sx1) * 4
			o01 := (sy1*srcW + sx0) * 4
			o11 := (sy1*srcW + sx1) * 4

			do := dstRow + dx*4
			for c := 0; c < 4; c++ {
				v := lerp2D(
					float64(src[o00+c]), float64(src[o10+c]),
					float64(src[o01+c]), float64(src[o11+c]),
					tx, ty)
				dst[do+c] = byte(clampFloat(v, 0, 255))
			}
		}
	}
}

// scaleBicubic interpolates each destination pixel from a 4x4 source
// neighborhood using Catmull-Rom weights, normalized by the weight sum.
func scaleBicubic(dst []byte, dstW int, src []byte, srcW, srcH, dstH, y0, y1 int) {
	xr := float64(srcW) / float64(dstW)
	yr := float64(srcH) / float64(dstH)

	for dy := y0; dy < y1; dy++ {
		fy := (float64(dy)+0.5)*yr - 0.5
		syBase := int(math.Floor(fy))
		ty := fy - float64(syBase)

		var wy [4]float64
		wy[0] = cubicWeight(ty + 1)
		wy[1] = cubicWeight(ty)
		wy[2] = cubicWeight(ty - 1)
		wy[3] = cubicWeight(ty - 2)

		dstRow := dy * dstW * 4
		for dx := 0; dx < dstW; dx++ {
			fx := (float64(dx)+0.5)*xr - 0.5
			sxBase := int(math.Floor(fx))
			tx := fx - float64(sxBase)

			var wx [4]float64
			wx[0] = cubicWeight(tx + 1)
			wx[1] = cubicWeight(tx)
			wx[2] = cubicWeight(tx - 1)
			wx[3] = cubicWeight(tx - 2)

			var sum [4]float64
			var weightSum float64
			for j := 0; j < 4; j++ {
				py := clamp(syBase+j-1, 0, srcH-1)
				rowOff := py * srcW * 4
				for i := 0; i < 4; i++ {
					px := clamp(sxBase+i-1, 0, srcW-1)
					w := wx[i] * wy[j]
					weightSum += w
					o := rowOff + px*4
					sum[0] += float64(src[o+0]) * w
					sum[1] += float64(src[o+1]) * w
					sum[2] += float64(src[o+2]) * w
					sum[3] += float64(src[o+3]) * w
				}
			}

			do := dstRow + dx*4
			if weightSum != 0 {
				inv := 1 / weightSum
				for c := 0; c < 4; c++ {
					dst[do+c] = byte(clampFloat(sum[c]*inv, 0, 255))
				}
			} else {
				for c := 0; c < 4; c++ {
					dst[do+c] = 0
				}
			}
		}
	}
}

// scaleLanczos interpolates each destination pixel from a 7x7 effective
// source neighborhood using Lanczos weights with radius 3, normalized by
// the weight sum.
func scaleLanczos(dst []byte, dstW int, src []byte, srcW, srcH, dstH, y0, y1 int) {
	const radius = 3

	xr := float64(srcW) / float64(dstW)
	yr := float64(srcH) / float64(dstH)

	for dy := y0; dy < y1; dy++ {
		fy := (float64(dy)+0.5)*yr - 0.5
		syBase := int(math.Floor(fy))

		var wy [2*radius + 1]float64
		for j := range wy {
			wy[j] = lanczosWeight(fy - float64(syBase+j-radius))
		}

		dstRow := dy * dstW * 4
		for dx := 0; dx < dstW; dx++ {
			fx := (float64(dx)+0.5)*xr - 0.5
			sxBase := int(math.Floor(fx))

			var wx [2*radius + 1]float64
			for i := range wx {
				wx[i] = lanczosWeight(fx - float64(sxBase+i-radius))
			}

			var sum [4]float64
			var weightSum float64
			for j := range wy {
				if wy[j] == 0 {
					continue
				}
				py := clamp(syBase+j-radius, 0, srcH-1)
				rowOff := py * srcW * 4
				for i := range wx {
					if wx[i] == 0 {
						continue
					}
					px := clamp(sxBase+i-radius, 0, srcW-1)
					w := wx[i] * wy[j]
					weightSum += w
					o := rowOff + px*4
					sum[0] += float64(src[o+0]) * w
					sum[1] += float64(src[o+1]) * w
					sum[2] += float64(src[o+2]) * w
					sum[3] += float64(src[o+3]) * w
				}
			}

			do := dstRow + dx*4
			if weightSum != 0 {
				inv := 1 / weightSum
				for c := 0; c < 4; c++ {
					dst[do+c] = byte(clampFloat(sum[c]*inv, 0, 255))
				}
			} else {
				for c := 0; c < 4; c++ {
					dst[do+c] = 0
				}
			}
		}
	}
}

// clamp clamps an integer value to [minVal, maxVal].
func clamp(val, minVal, maxVal int) int {
	if val < minVal {
		return minVal
	}
	if val > maxVal {
		return maxVal
	}
	return val
}

// clampFloat clamps a float64 value to [minVal, maxVal].
func clampFloat(val, minVal, maxVal float64) float64 {
	if val < minVal {
		return minVal
	}
	if val > maxVal {
		return maxVal
	}
	return val
}

// lerp performs linear interpolation between a and b.
func lerp(a, b, t float64) float64 {
	return a*(1-t) + b*t
}

// lerp2D performs bilinear interpolation on a 2x2 grid.
func lerp2D(v00, v10, v01, v11, tx, ty float64) float64 {
	v0 := lerp(v00, v10, tx)
	v1 := lerp(v01, v11, tx)
	return lerp(v0, v1, ty)
}

// cubicWeight computes the Catmull-Rom cubic weight for distance t.
func cubicWeight(t float64) float64 {
	// Catmull-Rom spline (Mitchell-Netravali with B=0, C=0.5):
	// |t| < 1: (1.5|t|³ - 2.5|t|² + 1)
	// 1 ≤ |t| < 2: (-0.5|t|³ + 2.5|t|² - 4|t| + 2)
	// |t| ≥ 2: 0
	absT := math.Abs(t)
	if absT < 1 {
		return 1.5*absT*absT*absT - 2.5*absT*absT + 1.0
	}
	if absT < 2 {
		return -0.5*absT*absT*absT + 2.5*absT*absT - 4.0*absT + 2.0
	}
	return 0
}

// lanczosWeight computes the Lanczos kernel weight for distance t with
// radius 3: sinc(t) * sinc(t/3) inside the support, 0 outside.
func lanczosWeight(t float64) float64 {
	absT := math.Abs(t)
	if absT < 1e-8 {
		return 1
	}
	if absT >= 3 {
		return 0
	}
	pt := math.Pi * t
	return 3 * math.Sin(pt) * math.Sin(pt/3) / (pt * pt)
}
