// Package change implements the pixel-difference gate that decides whether
// a captured or decoded frame is worth running through the OCR/Vision
// stage.
package change

import "image"

// rgbChannelTolerance is the per-channel absolute difference above which a
// pixel counts as "different" in DifferRGB.
const rgbChannelTolerance = 10

// DifferLuma returns the fraction of bytes in a and b whose absolute
// difference exceeds floor(255*tolerance). Both buffers are single-plane
// (Y-plane) byte slices of equal length; a length mismatch returns 1.0.
func DifferLuma(a, b []byte, tolerance float64) float64 {
	if len(a) != len(b) {
		return 1.0
	}
	if len(a) == 0 {
		return 0.0
	}

	maxDiff := byte(255 * tolerance)
	var differing int
	for i := range a {
		if absDiffByte(a[i], b[i]) > maxDiff {
			differing++
		}
	}
	return float64(differing) / float64(len(a))
}

// DifferRGB returns the fraction of pixels in a and b that differ by more
// than rgbChannelTolerance in any channel. Dimension mismatch returns 1.0.
func DifferRGB(a, b *image.RGBA) float64 {
	boundsA, boundsB := a.Bounds(), b.Bounds()
	if boundsA.Dx() != boundsB.Dx() || boundsA.Dy() != boundsB.Dy() {
		return 1.0
	}

	width, height := boundsA.Dx(), boundsA.Dy()
	total := width * height
	if total == 0 {
		return 0.0
	}

	var differing int
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			pa := a.RGBAAt(boundsA.Min.X+x, boundsA.Min.Y+y)
			pb := b.RGBAAt(boundsB.Min.X+x, boundsB.Min.Y+y)
			if absDiffByte(pa.R, pb.R) > rgbChannelTolerance ||
				absDiffByte(pa.G, pb.G) > rgbChannelTolerance ||
				absDiffByte(pa.B, pb.B) > rgbChannelTolerance {
				differing++
			}
		}
	}
	return float64(differing) / float64(total)
}

// ShouldProcess reports whether the current buffer should advance to the
// text stage: true when previous is absent, or the luma difference ratio
// exceeds threshold. The first frame of a run always passes.
func ShouldProcess(current, previous []byte, threshold float64) bool {
	if previous == nil {
		return true
	}
	return DifferLuma(current, previous, threshold) > threshold
}

// ShouldProcessRGB is the RGB-bitmap analog of ShouldProcess, used by the
// live capture pipeline where frames arrive as RGBA bitmaps rather than
// decoded luma planes.
func ShouldProcessRGB(current, previous *image.RGBA, threshold float64) bool {
	if previous == nil {
		return true
	}
	return DifferRGB(current, previous) > threshold
}

func absDiffByte(a, b byte) byte {
	if a > b {
		return a - b
	}
	return b - a
}

