// Package ocr implements the local OCR backends (Tesseract on every
// platform, and a native-engine path gated behind build tags) behind the
// uniform extract_text contract imagetext dispatches to.
package ocr

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"sort"
	"strings"

	"github.com/otiai10/gosseract/v2"

	"github.com/kontext21/k21/internal/config"
	k21errors "github.com/kontext21/k21/internal/errors"
)

// ExtractTesseract runs Tesseract OCR over bitmap and formats the result
// the way the spec's text stage expects: one space-joined line per
// recognized text line, each optionally prefixed with its normalized
// top-left (x, y) rounded to two decimals when cfg.BoundingBoxes is set.
func ExtractTesseract(bitmap image.Image, cfg *config.OcrConfig) (string, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, bitmap); err != nil {
		return "", k21errors.NewProcessingError("failed to encode bitmap for tesseract", err)
	}

	client := gosseract.NewClient()
	defer client.Close()

	if err := client.SetLanguage("eng"); err != nil {
		return "", k21errors.NewProcessingError("failed to set tesseract language", err)
	}
	if err := client.SetVariable(gosseract.SettableVariable("user_defined_dpi"), fmt.Sprintf("%d", cfg.DPI)); err != nil {
		return "", k21errors.NewProcessingError("failed to set tesseract dpi", err)
	}
	if err := client.SetPageSegMode(gosseract.PageSegMode(cfg.PSM)); err != nil {
		return "", k21errors.NewProcessingError("failed to set tesseract psm", err)
	}
	if err := client.SetVariable(gosseract.SettableVariable("tessedit_ocr_engine_mode"), fmt.Sprintf("%d", cfg.OEM)); err != nil {
		return "", k21errors.NewProcessingError("failed to set tesseract oem", err)
	}
	if err := client.SetImageFromBytes(buf.Bytes()); err != nil {
		return "", k21errors.NewProcessingError("failed to load bitmap into tesseract", err)
	}

	if !cfg.BoundingBoxes {
		text, err := client.Text()
		if err != nil {
			return "", k21errors.NewProcessingError("tesseract recognition failed", err)
		}
		return strings.Join(strings.Fields(text), " "), nil
	}

	boxes, err := client.GetBoundingBoxes(gosseract.RIL_TEXTLINE)
	if err != nil {
		return "", k21errors.NewProcessingError("tesseract line recognition failed", err)
	}

	bounds := bitmap.Bounds()
	width, height := float64(bounds.Dx()), float64(bounds.Dy())

	// GetBoundingBoxes does not guarantee reading order; sort top-to-bottom,
	// left-to-right so the joined output reads the way the page does.
	sort.SliceStable(boxes, func(i, j int) bool {
		if boxes[i].Box.Min.Y != boxes[j].Box.Min.Y {
			return boxes[i].Box.Min.Y < boxes[j].Box.Min.Y
		}
		return boxes[i].Box.Min.X < boxes[j].Box.Min.X
	})

	var parts []string
	for _, b := range boxes {
		word := strings.TrimSpace(b.Word)
		if word == "" {
			continue
		}
		x := round2(float64(b.Box.Min.X) / width)
		y := round2(float64(b.Box.Min.Y) / height)
		parts = append(parts, fmt.Sprintf("(%.2f, %.2f) %s", x, y, word))
	}

	return strings.Join(parts, " "), nil
}

func round2(v float64) float64 {
	return float64(int(v*100+0.5)) / 100
}
