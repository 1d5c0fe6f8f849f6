// Package k21 is a Go library for screen observation: it continuously
// captures the primary display into chunked H.264/MP4 video while running
// a parallel OCR/vision text-extraction stage over visually-changed
// frames, and it can drive the same change-detected extraction over an
// existing MP4 recording.
//
// Basic usage:
//
//	cfg := k21.NewCaptureConfig(k21.WithFPS(2), k21.WithDurationSeconds(30))
//	results, err := k21.Capture(ctx, cfg, k21.NewOCRConfig())
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for _, item := range results.Snapshot() {
//	    fmt.Println(item.FrameNumber, item.Content)
//	}
package k21

import (
	"context"
	"io"

	"github.com/kontext21/k21/internal/config"
	"github.com/kontext21/k21/internal/pipeline"
	"github.com/kontext21/k21/internal/reporter"
	"github.com/kontext21/k21/internal/store"
)

// Re-export the configuration types callers need to build a run.
type (
	CaptureConfig   = config.CaptureConfig
	ProcessorConfig = config.ProcessorConfig
	OcrConfig       = config.OcrConfig
	VisionConfig    = config.VisionConfig
	Store           = store.Store
	ImageData       = store.ImageData
)

// CaptureOption configures a CaptureConfig, mirroring the functional
// options style used throughout this module's configuration surface.
type CaptureOption func(*CaptureConfig)

// NewCaptureConfig builds a CaptureConfig from spec defaults plus opts.
func NewCaptureConfig(opts ...CaptureOption) *CaptureConfig {
	cfg := config.NewCaptureConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// WithFPS sets the capture rate.
func WithFPS(fps float64) CaptureOption {
	return func(c *CaptureConfig) { c.FPS = fps }
}

// WithDurationSeconds bounds the run to the given number of seconds; 0
// (the default) means unbounded.
func WithDurationSeconds(seconds uint64) CaptureOption {
	return func(c *CaptureConfig) { c.DurationSeconds = seconds }
}

// WithChunkSeconds enables periodic video-chunk saving every n seconds.
func WithChunkSeconds(seconds uint64) CaptureOption {
	return func(c *CaptureConfig) { c.ChunkSeconds = &seconds }
}

// WithQuality sets the capture scale percentage (1-100).
func WithQuality(quality uint8) CaptureOption {
	return func(c *CaptureConfig) { c.Quality = quality }
}

// WithMonitorID selects which display to capture.
func WithMonitorID(id int) CaptureOption {
	return func(c *CaptureConfig) { c.MonitorID = id }
}

// WithVideoDir enables video-chunk saving to the given directory.
func WithVideoDir(dir string) CaptureOption {
	return func(c *CaptureConfig) { c.VideoDir = dir }
}

// WithScreenshotDir enables per-frame screenshot saving to the given directory.
func WithScreenshotDir(dir string) CaptureOption {
	return func(c *CaptureConfig) { c.ScreenshotDir = dir }
}

// NewOCRConfig returns a ProcessorConfig that extracts text via the local
// OCR engine.
func NewOCRConfig() *ProcessorConfig {
	return config.NewOcrProcessorConfig()
}

// NewVisionConfig returns a ProcessorConfig that extracts text via a
// remote vision-model HTTP call.
func NewVisionConfig(url, apiKey, model string) *ProcessorConfig {
	return config.NewVisionProcessorConfig(&VisionConfig{URL: url, APIKey: apiKey, Model: model})
}

// Capture runs the live Frame Pipeline until ctx is cancelled or a bounded
// run completes, returning the accumulated text-extraction results.
func Capture(ctx context.Context, capCfg *CaptureConfig, procCfg *ProcessorConfig) (*Store, error) {
	return pipeline.Run(ctx, capCfg, procCfg, nil, reporter.NullReporter{})
}

// CaptureWithStdout is Capture plus framed raw-RGB passthrough written to
// out whenever capCfg.StdoutPassthrough is set.
func CaptureWithStdout(ctx context.Context, capCfg *CaptureConfig, procCfg *ProcessorConfig, out io.Writer) (*Store, error) {
	return pipeline.Run(ctx, capCfg, procCfg, out, reporter.NullReporter{})
}

// ProcessMP4File runs the MP4-ingest Frame Pipeline against a file on disk.
func ProcessMP4File(ctx context.Context, path string, procCfg *ProcessorConfig) (*Store, error) {
	return pipeline.RunMP4File(ctx, path, procCfg)
}

// ProcessMP4Bytes runs the MP4-ingest Frame Pipeline against an in-memory
// MP4 byte buffer (e.g. a decoded base64 upload).
func ProcessMP4Bytes(ctx context.Context, data []byte, procCfg *ProcessorConfig) (*Store, error) {
	return pipeline.RunMP4Bytes(ctx, data, procCfg)
}

// ProcessingState holds shared atomic counters a caller can poll from a
// separate goroutine to watch MP4-ingest progress while a run is still in
// flight, without parsing logs.
type ProcessingState = pipeline.ProcessingState

// NewProcessingState returns a zeroed ProcessingState ready to be passed
// to ProcessMP4FileWithState or ProcessMP4BytesWithState.
func NewProcessingState() *ProcessingState {
	return pipeline.NewProcessingState()
}

// ProcessMP4FileWithState is ProcessMP4File, additionally recording
// frame-level progress into ps as the run proceeds. ps may be nil.
func ProcessMP4FileWithState(ctx context.Context, path string, procCfg *ProcessorConfig, ps *ProcessingState) (*Store, error) {
	return pipeline.RunMP4FileWithState(ctx, path, procCfg, ps)
}

// ProcessMP4BytesWithState is ProcessMP4Bytes, additionally recording
// frame-level progress into ps as the run proceeds. ps may be nil.
func ProcessMP4BytesWithState(ctx context.Context, data []byte, procCfg *ProcessorConfig, ps *ProcessingState) (*Store, error) {
	return pipeline.RunMP4BytesWithState(ctx, data, procCfg, ps)
}
