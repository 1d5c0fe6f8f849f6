package pipeline

import (
	"bufio"
	"context"
	"fmt"
	"image"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/kontext21/k21/internal/broadcast"
	"github.com/kontext21/k21/internal/capture"
	"github.com/kontext21/k21/internal/change"
	"github.com/kontext21/k21/internal/config"
	k21errors "github.com/kontext21/k21/internal/errors"
	"github.com/kontext21/k21/internal/imagetext"
	"github.com/kontext21/k21/internal/logging"
	"github.com/kontext21/k21/internal/reporter"
	"github.com/kontext21/k21/internal/store"
	"github.com/kontext21/k21/internal/videosink"
	"github.com/kontext21/k21/internal/worker"
)

// maxConcurrentTextTasks bounds how many text-extraction tasks the text
// stage keeps in flight at once; OCR/Vision latency is otherwise unbounded
// from the pipeline's perspective, but an unbounded goroutine fan-out
// would let a slow backend pile up memory across a long run.
const maxConcurrentTextTasks = 4

const timestampLayout = "20060102_150405"

// Run drives the live capture Frame Pipeline: it spawns the grabber,
// fans each frame out to the video-sink and text-stage consumers, and
// returns the accumulated text-extraction results once the run ends
// (context cancellation or a bounded run's frame target being reached).
// A nil rep is replaced with reporter.NullReporter{}.
func Run(ctx context.Context, capCfg *config.CaptureConfig, procCfg *config.ProcessorConfig, out io.Writer, rep reporter.Reporter) (*store.Store, error) {
	if err := capCfg.Validate(); err != nil {
		return nil, err
	}
	if err := procCfg.Validate(); err != nil {
		return nil, err
	}
	if rep == nil {
		rep = reporter.NullReporter{}
	}

	b := broadcast.New[*Frame](config.DefaultBroadcastCap)
	videoSub := b.Subscribe()
	textSub := b.Subscribe()

	st := store.New()

	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		runVideoSinkConsumer(videoSub, b.Closed(), capCfg, out, rep)
	}()
	go func() {
		defer wg.Done()
		runTextStageConsumer(ctx, textSub, b.Closed(), procCfg, st, rep)
	}()

	runGrabber(ctx, capCfg, b, rep)
	b.Close()
	wg.Wait()

	return st, nil
}

// runGrabber is the producer task: it captures frames at the configured
// fps, publishing each to the broadcaster until the caller cancels ctx or
// a bounded run reaches its frame target. A failed grab is retried on the
// next tick rather than ending the run.
func runGrabber(ctx context.Context, cfg *config.CaptureConfig, b *broadcast.Broadcaster[*Frame], rep reporter.Reporter) {
	interval := time.Duration(float64(time.Second) / cfg.FPS)
	target := cfg.TotalFramesTarget()

	var frameCounter uint64 = 1
	for {
		if ctx.Err() != nil {
			return
		}
		if target > 0 && frameCounter > target {
			return
		}

		t0 := time.Now()
		bitmap, err := capture.Grab(ctx, cfg.MonitorID, cfg.Quality)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			logging.Warn("screen grab failed, retrying", "error", err)
			rep.Warning(fmt.Sprintf("screen grab failed, retrying: %v", err))
			sleepInterval(ctx, interval)
			continue
		}

		b.Publish(&Frame{Number: frameCounter, Bitmap: bitmap})
		frameCounter++

		sleepInterval(ctx, interval-time.Since(t0))
	}
}

func sleepInterval(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}

// runVideoSinkConsumer drains frames into the Video Sink, saving a chunk
// every chunkFrameCount frames and once more at shutdown if any frames
// remain buffered. It also handles the stdout-passthrough and
// screenshot side effects.
func runVideoSinkConsumer(sub *broadcast.Subscriber[*Frame], closed <-chan struct{}, cfg *config.CaptureConfig, out io.Writer, rep reporter.Reporter) {
	saveVideo := cfg.VideoDir != ""
	chunkFrameCount := cfg.ChunkFrameCount()

	var sink *videosink.Sink
	var bufOut *bufio.Writer
	if cfg.StdoutPassthrough && out != nil {
		bufOut = bufio.NewWriter(out)
	}
	chunkNumber := 0

	saveChunk := func() {
		if sink == nil || sink.IsEmpty() {
			return
		}
		name := fmt.Sprintf("output-%s-%d.mp4", time.Now().Format(timestampLayout), chunkNumber)
		path := filepath.Join(cfg.VideoDir, name)
		if err := sink.Save(path); err != nil {
			logging.Error("failed to save video chunk", "path", path, "error", err)
			rep.Warning(fmt.Sprintf("failed to save video chunk %s: %v", path, err))
		} else {
			rep.ChunkSaved(path)
		}
		chunkNumber++
	}

	for {
		select {
		case frame := <-sub.Frames():
			if bufOut != nil {
				if err := writeFramedPacket(bufOut, frame.Number, frame.Bitmap); err != nil {
					logging.Error("stdout passthrough failed", "error", err)
				}
			}
			if saveVideo {
				if sink == nil {
					bounds := frame.Bitmap.Bounds()
					var err error
					sink, err = videosink.New(bounds.Dx(), bounds.Dy(), cfg.FPS)
					if err != nil {
						logging.Error("failed to allocate video sink", "error", err)
						rep.Warning(fmt.Sprintf("failed to allocate video sink: %v", err))
						saveVideo = false
						continue
					}
				}
				if err := sink.Frame(frame.Bitmap); err != nil {
					logging.Error("failed to encode frame", "error", err)
				}
				if chunkFrameCount > 0 && frame.Number%chunkFrameCount == 0 {
					saveChunk()
				}
			}
			if cfg.ScreenshotDir != "" {
				go saveScreenshot(cfg.ScreenshotDir, frame)
			}
		case <-closed:
			// Drain anything already queued before the final flush, matching
			// the FIFO-per-subscriber ordering guarantee.
			for {
				select {
				case frame := <-sub.Frames():
					if saveVideo && sink != nil {
						if err := sink.Frame(frame.Bitmap); err != nil {
							logging.Error("failed to encode frame", "error", err)
						}
					}
				default:
					saveChunk()
					return
				}
			}
		}
	}
}

func saveScreenshot(dir string, frame *Frame) {
	name := fmt.Sprintf("screenshot-%s-%d.png", time.Now().Format(timestampLayout), frame.Number)
	path := filepath.Join(dir, name)

	f, err := os.Create(path)
	if err != nil {
		logging.Warn("failed to create screenshot file", "path", path, "error", err)
		return
	}
	defer f.Close()

	if err := png.Encode(f, frame.Bitmap); err != nil {
		logging.Warn("failed to encode screenshot", "path", path, "error", err)
	}
}

// runTextStageConsumer gates each frame through the RGB change detector
// and spawns a bounded number of concurrent text-extraction tasks for the
// frames that pass, joining all outstanding tasks once the shutdown edge
// fires.
func runTextStageConsumer(ctx context.Context, sub *broadcast.Subscriber[*Frame], closed <-chan struct{}, cfg *config.ProcessorConfig, st *store.Store, rep reporter.Reporter) {
	sem := worker.NewSemaphore(maxConcurrentTextTasks)
	var tasks sync.WaitGroup

	var previous *image.RGBA

	handle := func(frame *Frame) {
		if !change.ShouldProcessRGB(frame.Bitmap, previous, config.DefaultChangeThreshold) {
			return
		}
		previous = frame.Bitmap

		tasks.Add(1)
		<-sem.Chan()
		go func(f *Frame) {
			defer tasks.Done()
			defer sem.Release()
			extractAndStore(ctx, f, cfg, st, rep)
		}(frame)
	}

	for {
		select {
		case frame := <-sub.Frames():
			handle(frame)
		case <-closed:
			for {
				select {
				case frame := <-sub.Frames():
					handle(frame)
				default:
					tasks.Wait()
					return
				}
			}
		}
	}
}

func extractAndStore(ctx context.Context, frame *Frame, cfg *config.ProcessorConfig, st *store.Store, rep reporter.Reporter) {
	text, err := imagetext.Extract(ctx, frame.Bitmap, cfg)
	if err != nil {
		if !k21errors.IsCancelled(err) {
			logging.Error("text extraction failed", "frame_number", frame.Number, "error", err)
			rep.Warning(fmt.Sprintf("text extraction failed on frame %d: %v", frame.Number, err))
		}
		return
	}

	if cfg.ProcessingType == config.ProcessingOCR && text == "" {
		return
	}

	pt := store.ProcessingOCR
	if cfg.ProcessingType == config.ProcessingVision {
		pt = store.ProcessingVision
	}
	st.Append(store.NewImageData(frame.Number, text, pt))
}
