// Package imagetext implements the uniform extract_text contract the
// Frame Pipeline's text stage calls against, dispatching to the OCR or
// Vision backend named by a ProcessorConfig.
package imagetext

import (
	"context"
	"image"

	"github.com/kontext21/k21/internal/config"
	k21errors "github.com/kontext21/k21/internal/errors"
	"github.com/kontext21/k21/internal/imagetext/ocr"
	"github.com/kontext21/k21/internal/imagetext/vision"
)

// Extract runs the text-extraction backend named by cfg.ProcessingType
// over bitmap and returns the recognized text. For OCR, an empty result is
// a valid (non-error) outcome that callers should drop rather than append;
// Vision never returns an error for a parse failure, only for a request
// failure or a missing required config field.
func Extract(ctx context.Context, bitmap image.Image, cfg *config.ProcessorConfig) (string, error) {
	if err := cfg.Validate(); err != nil {
		return "", err
	}

	switch cfg.ProcessingType {
	case config.ProcessingOCR:
		return extractOCR(bitmap, cfg.OcrConfig)
	case config.ProcessingVision:
		return vision.Extract(ctx, bitmap, cfg.VisionConfig)
	default:
		return "", k21errors.NewConfigError("unknown processing type")
	}
}

func extractOCR(bitmap image.Image, cfg *config.OcrConfig) (string, error) {
	switch cfg.Model {
	case config.OcrTesseract:
		return ocr.ExtractTesseract(bitmap, cfg)
	case config.OcrNative:
		return ocr.ExtractNative(bitmap, cfg)
	case config.OcrDefault:
		if text, err := ocr.ExtractNative(bitmap, cfg); err == nil {
			return text, nil
		}
		return ocr.ExtractTesseract(bitmap, cfg)
	default:
		return "", k21errors.NewConfigError("unknown ocr model")
	}
}
