package change

import (
	"image"
	"image/color"
	"testing"
)

func TestDifferLumaIdentical(t *testing.T) {
	buf := []byte{10, 20, 30, 200, 255, 0}
	if got := DifferLuma(buf, buf, 0.05); got != 0 {
		t.Errorf("DifferLuma(x, x) = %v, want 0", got)
	}
}

func TestDifferLumaLengthMismatch(t *testing.T) {
	a := []byte{1, 2, 3}
	b := []byte{1, 2}
	if got := DifferLuma(a, b, 0.05); got != 1.0 {
		t.Errorf("DifferLuma with length mismatch = %v, want 1.0", got)
	}
}

func TestDifferLumaRatio(t *testing.T) {
	// tolerance 0.05 -> maxDiff = floor(255*0.05) = 12
	a := []byte{0, 0, 0, 0}
	b := []byte{0, 0, 20, 20} // two bytes differ by 20 > 12
	got := DifferLuma(a, b, 0.05)
	if got != 0.5 {
		t.Errorf("DifferLuma ratio = %v, want 0.5", got)
	}
}

func rgbaFilled(w, h int, c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, c)
		}
	}
	return img
}

func TestDifferRGBIdentical(t *testing.T) {
	img := rgbaFilled(4, 4, color.RGBA{R: 100, G: 100, B: 100, A: 255})
	if got := DifferRGB(img, img); got != 0 {
		t.Errorf("DifferRGB(x, x) = %v, want 0", got)
	}
}

func TestDifferRGBDimensionMismatch(t *testing.T) {
	a := rgbaFilled(4, 4, color.RGBA{A: 255})
	b := rgbaFilled(5, 5, color.RGBA{A: 255})
	if got := DifferRGB(a, b); got != 1.0 {
		t.Errorf("DifferRGB with dimension mismatch = %v, want 1.0", got)
	}
}

func TestDifferRGBRatio(t *testing.T) {
	a := rgbaFilled(2, 2, color.RGBA{R: 10, G: 10, B: 10, A: 255})
	b := image.NewRGBA(image.Rect(0, 0, 2, 2))
	*b = *a
	b.Pix = append([]byte(nil), a.Pix...)
	// Change one pixel beyond tolerance.
	b.SetRGBA(0, 0, color.RGBA{R: 50, G: 10, B: 10, A: 255})

	got := DifferRGB(a, b)
	if got != 0.25 {
		t.Errorf("DifferRGB ratio = %v, want 0.25", got)
	}
}

func TestShouldProcessFirstFrame(t *testing.T) {
	if !ShouldProcess([]byte{1, 2, 3}, nil, 0.05) {
		t.Error("ShouldProcess should always accept the first frame")
	}
}

func TestShouldProcessGate(t *testing.T) {
	prev := []byte{0, 0, 0, 0}
	identical := []byte{0, 0, 0, 0}
	if ShouldProcess(identical, prev, 0.05) {
		t.Error("ShouldProcess should reject an identical frame")
	}

	changed := []byte{255, 255, 0, 0}
	if !ShouldProcess(changed, prev, 0.05) {
		t.Error("ShouldProcess should accept a sufficiently different frame")
	}
}

func TestShouldProcessRGBFirstFrame(t *testing.T) {
	img := rgbaFilled(2, 2, color.RGBA{A: 255})
	if !ShouldProcessRGB(img, nil, 0.05) {
		t.Error("ShouldProcessRGB should always accept the first frame")
	}
}
