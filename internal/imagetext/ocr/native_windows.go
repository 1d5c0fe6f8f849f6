//go:build windows

package ocr

import (
	"image"

	"github.com/kontext21/k21/internal/config"
	k21errors "github.com/kontext21/k21/internal/errors"
)

// ExtractNative would call Windows.Media.Ocr.OcrEngine on this platform.
// No WinRT/Windows.Media.Ocr binding exists anywhere in this module's
// dependency graph; wiring it means generating WinRT projection bindings,
// which is out of scope for a module whose OCR backends are "specified
// only at their interface". Tesseract remains the supported OCR path on
// Windows builds.
func ExtractNative(_ image.Image, _ *config.OcrConfig) (string, error) {
	return "", k21errors.NewConfigError("native OCR unavailable on this platform build")
}
