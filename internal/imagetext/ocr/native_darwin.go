//go:build darwin

package ocr

import (
	"image"

	"github.com/kontext21/k21/internal/config"
	k21errors "github.com/kontext21/k21/internal/errors"
)

// ExtractNative would call macOS's Vision.framework text recognition on
// this platform. No cgo binding to Vision.framework exists anywhere in
// this module's dependency graph; wiring it means authoring an
// Objective-C bridge, which is out of scope for a module whose OCR
// backends are "specified only at their interface". Tesseract remains the
// supported OCR path on darwin builds.
func ExtractNative(_ image.Image, _ *config.OcrConfig) (string, error) {
	return "", k21errors.NewConfigError("native OCR unavailable on this platform build")
}
