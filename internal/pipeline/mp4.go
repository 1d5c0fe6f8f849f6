package pipeline

import (
	"context"
	"image"
	"sync/atomic"

	"github.com/kontext21/k21/internal/change"
	"github.com/kontext21/k21/internal/config"
	k21errors "github.com/kontext21/k21/internal/errors"
	"github.com/kontext21/k21/internal/imagetext"
	"github.com/kontext21/k21/internal/logging"
	"github.com/kontext21/k21/internal/mp4source"
	"github.com/kontext21/k21/internal/store"
)

// ProcessingState holds shared atomic counters a caller can poll from a
// separate goroutine to observe MP4-ingest progress while a run is still
// in flight, without parsing logs. It is optional instrumentation: a nil
// *ProcessingState is valid everywhere one is accepted and simply means
// nobody is watching.
type ProcessingState struct {
	framesSeen      atomic.Uint64
	framesProcessed atomic.Uint64
	framesSkipped   atomic.Uint64
}

// NewProcessingState returns a zeroed ProcessingState ready to be shared
// with runMP4 before a run starts.
func NewProcessingState() *ProcessingState {
	return &ProcessingState{}
}

// FramesSeen is the number of frames the MP4 source has forwarded so far
// (decoded frames dropped by its sampling step are not counted).
func (s *ProcessingState) FramesSeen() uint64 {
	if s == nil {
		return 0
	}
	return s.framesSeen.Load()
}

// FramesProcessed is the number of frames that passed the change gate and
// were sent to text extraction.
func (s *ProcessingState) FramesProcessed() uint64 {
	if s == nil {
		return 0
	}
	return s.framesProcessed.Load()
}

// FramesSkipped is the number of frames the change gate rejected as
// unchanged from the previous accepted frame.
func (s *ProcessingState) FramesSkipped() uint64 {
	if s == nil {
		return 0
	}
	return s.framesSkipped.Load()
}

func (s *ProcessingState) recordSeen() {
	if s != nil {
		s.framesSeen.Add(1)
	}
}

func (s *ProcessingState) recordProcessed() {
	if s != nil {
		s.framesProcessed.Add(1)
	}
}

func (s *ProcessingState) recordSkipped() {
	if s != nil {
		s.framesSkipped.Add(1)
	}
}

// RunMP4File drives the MP4-ingest Frame Pipeline against a file on disk:
// decode, luma-change-gate, and synchronously extract text from every
// accepted frame. Unlike the live pipeline there is no fan-out, no video
// sink, and no pacing — frame_idx simply advances once per frame the MP4
// source forwards.
func RunMP4File(ctx context.Context, path string, cfg *config.ProcessorConfig) (*store.Store, error) {
	return RunMP4FileWithState(ctx, path, cfg, nil)
}

// RunMP4FileWithState is RunMP4File, additionally recording frame-level
// progress into ps as the run proceeds. ps may be nil.
func RunMP4FileWithState(ctx context.Context, path string, cfg *config.ProcessorConfig, ps *ProcessingState) (*store.Store, error) {
	return runMP4(ctx, cfg, func(cb mp4source.FrameCallback) error {
		return mp4source.ForEachFrameInFile(path, cb)
	}, ps)
}

// RunMP4Bytes is RunMP4File's counterpart for an in-memory MP4 byte
// buffer, used by the HTTP service's base64-ingest endpoint.
func RunMP4Bytes(ctx context.Context, data []byte, cfg *config.ProcessorConfig) (*store.Store, error) {
	return RunMP4BytesWithState(ctx, data, cfg, nil)
}

// RunMP4BytesWithState is RunMP4Bytes, additionally recording frame-level
// progress into ps as the run proceeds. ps may be nil.
func RunMP4BytesWithState(ctx context.Context, data []byte, cfg *config.ProcessorConfig, ps *ProcessingState) (*store.Store, error) {
	return runMP4(ctx, cfg, func(cb mp4source.FrameCallback) error {
		return mp4source.ForEachFrameInBytes(data, cb)
	}, ps)
}

func runMP4(ctx context.Context, cfg *config.ProcessorConfig, drive func(mp4source.FrameCallback) error, ps *ProcessingState) (*store.Store, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	st := store.New()
	var previous []byte

	err := drive(func(frameIdx int, luma []byte, width, height int) error {
		if ctx.Err() != nil {
			return k21errors.NewCancelledError()
		}
		ps.recordSeen()

		if !change.ShouldProcess(luma, previous, config.DefaultChangeThreshold) {
			ps.recordSkipped()
			return nil
		}
		previous = append([]byte(nil), luma...)
		ps.recordProcessed()

		bitmap := &image.Gray{Pix: luma, Stride: width, Rect: image.Rect(0, 0, width, height)}
		text, err := imagetext.Extract(ctx, bitmap, cfg)
		if err != nil {
			logging.Error("text extraction failed", "frame_idx", frameIdx, "error", err)
			return nil
		}

		if cfg.ProcessingType == config.ProcessingOCR && text == "" {
			return nil
		}

		pt := store.ProcessingOCR
		if cfg.ProcessingType == config.ProcessingVision {
			pt = store.ProcessingVision
		}
		st.Append(store.NewImageData(uint64(frameIdx), text, pt))
		return nil
	})
	if err != nil {
		return nil, err
	}

	return st, nil
}
