// Package config provides configuration types and defaults for k21's
// capture and processing pipelines.
package config

import (
	"fmt"

	k21errors "github.com/kontext21/k21/internal/errors"
)

// ProcessingType selects the text-extraction backend for the OCR/Vision stage.
type ProcessingType int

const (
	// ProcessingOCR extracts text via a local OCR engine (native or Tesseract).
	ProcessingOCR ProcessingType = iota
	// ProcessingVision extracts text via a remote vision-model HTTP call.
	ProcessingVision
)

func (p ProcessingType) String() string {
	switch p {
	case ProcessingOCR:
		return "OCR"
	case ProcessingVision:
		return "Vision"
	default:
		return "unknown"
	}
}

// OcrModel selects which OCR engine backs the OCR processing type.
type OcrModel int

const (
	// OcrDefault lets the OCR stage prefer the platform-native engine and
	// fall back to Tesseract where no native binding is built.
	OcrDefault OcrModel = iota
	// OcrTesseract forces the Tesseract engine.
	OcrTesseract
	// OcrNative forces the platform-native engine (macOS Vision / Windows
	// Media.Ocr), failing if the binary wasn't built with native support.
	OcrNative
)

// Default tuning values. The change-detection threshold is not
// configurable per run; it is exposed here only as a documented constant.
const (
	DefaultFPS             float64 = 1.0
	DefaultQuality         uint8   = 100
	DefaultChangeThreshold float64 = 0.05
	DefaultBroadcastCap    int     = 512

	DefaultOcrDPI int = 600
	DefaultOcrPSM int = 1
	DefaultOcrOEM int = 1

	DefaultVisionPrompt string = "What is in this image?"
)

// CaptureConfig controls the live screen-capture pipeline.
type CaptureConfig struct {
	FPS               float64
	DurationSeconds   uint64 // 0 means unbounded
	ChunkSeconds      *uint64
	ScreenshotDir     string
	VideoDir          string
	Quality           uint8 // 1..100
	StdoutPassthrough bool
	MonitorID         int
}

// NewCaptureConfig returns a CaptureConfig populated with spec defaults.
func NewCaptureConfig() *CaptureConfig {
	return &CaptureConfig{
		FPS:     DefaultFPS,
		Quality: DefaultQuality,
	}
}

// Validate checks the capture configuration for internally-consistent values.
func (c *CaptureConfig) Validate() error {
	if c.FPS <= 0 {
		return k21errors.NewConfigError(fmt.Sprintf("fps must be positive, got %g", c.FPS))
	}
	if c.Quality < 1 || c.Quality > 100 {
		return k21errors.NewConfigError(fmt.Sprintf("quality must be 1-100, got %d", c.Quality))
	}
	if c.ChunkSeconds != nil && *c.ChunkSeconds == 0 {
		return k21errors.NewConfigError("chunk_seconds must be positive when set")
	}
	return nil
}

// TotalFramesTarget returns the number of frames a bounded run should
// produce (at least 1), or 0 for an unbounded run.
func (c *CaptureConfig) TotalFramesTarget() uint64 {
	if c.DurationSeconds == 0 {
		return 0
	}
	n := uint64(float64(c.DurationSeconds) * c.FPS)
	if n == 0 {
		return 1
	}
	return n
}

// ChunkFrameCount returns the number of frames per video chunk, or 0 if
// chunking is disabled.
func (c *CaptureConfig) ChunkFrameCount() uint64 {
	if c.ChunkSeconds == nil {
		return 0
	}
	return uint64(c.FPS * float64(*c.ChunkSeconds))
}

// OcrConfig controls the local OCR engine.
type OcrConfig struct {
	Model         OcrModel
	BoundingBoxes bool
	DPI           int
	PSM           int
	OEM           int
}

// NewOcrConfig returns an OcrConfig populated with spec defaults.
func NewOcrConfig() *OcrConfig {
	return &OcrConfig{
		Model:         OcrDefault,
		BoundingBoxes: true,
		DPI:           DefaultOcrDPI,
		PSM:           DefaultOcrPSM,
		OEM:           DefaultOcrOEM,
	}
}

// VisionConfig controls the remote vision-model HTTP call.
type VisionConfig struct {
	URL    string
	APIKey string
	Model  string
	Prompt string
}

// Validate checks that the fields required at call time are present.
func (v *VisionConfig) Validate() error {
	if v.URL == "" {
		return k21errors.NewConfigMissingError("url")
	}
	if v.APIKey == "" {
		return k21errors.NewConfigMissingError("api_key")
	}
	if v.Model == "" {
		return k21errors.NewConfigMissingError("model")
	}
	return nil
}

// EffectivePrompt returns the configured prompt, or the spec default.
func (v *VisionConfig) EffectivePrompt() string {
	if v.Prompt == "" {
		return DefaultVisionPrompt
	}
	return v.Prompt
}

// ProcessorConfig selects and parameterizes the OCR/Vision text-extraction
// stage. Exactly one of VisionConfig / OcrConfig must be populated for the
// chosen ProcessingType.
type ProcessorConfig struct {
	ProcessingType ProcessingType
	VisionConfig   *VisionConfig
	OcrConfig      *OcrConfig
}

// NewOcrProcessorConfig returns a ProcessorConfig for the OCR path with
// default OcrConfig values.
func NewOcrProcessorConfig() *ProcessorConfig {
	return &ProcessorConfig{
		ProcessingType: ProcessingOCR,
		OcrConfig:      NewOcrConfig(),
	}
}

// NewVisionProcessorConfig returns a ProcessorConfig for the Vision path.
func NewVisionProcessorConfig(vc *VisionConfig) *ProcessorConfig {
	return &ProcessorConfig{
		ProcessingType: ProcessingVision,
		VisionConfig:   vc,
	}
}

// Validate checks that the configuration names exactly one populated
// backend consistent with ProcessingType, and validates that backend.
func (p *ProcessorConfig) Validate() error {
	switch p.ProcessingType {
	case ProcessingOCR:
		if p.OcrConfig == nil {
			return k21errors.NewConfigError("ocr processing type requires ocr_config")
		}
		return nil
	case ProcessingVision:
		if p.VisionConfig == nil {
			return k21errors.NewConfigError("vision processing type requires vision_config")
		}
		return p.VisionConfig.Validate()
	default:
		return k21errors.NewConfigError("unknown processing type")
	}
}
