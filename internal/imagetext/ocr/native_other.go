//go:build !windows && !darwin

package ocr

import (
	"image"

	"github.com/kontext21/k21/internal/config"
	k21errors "github.com/kontext21/k21/internal/errors"
)

// ExtractNative is unavailable on this platform build and always returns a
// configuration error. The windows and darwin builds (native_windows.go,
// native_darwin.go) return the same error: no native OCR engine is wired
// on any platform.
func ExtractNative(_ image.Image, _ *config.OcrConfig) (string, error) {
	return "", k21errors.NewConfigError("native OCR unavailable on this platform build")
}
