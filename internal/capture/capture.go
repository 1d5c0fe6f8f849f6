// Package capture wraps the OS screen-capture primitive behind a
// context-aware, quality-scaling Grab call.
package capture

import (
	"context"
	"fmt"
	"image"
	"image/draw"

	"github.com/vova616/screenshot"
	ximagedraw "golang.org/x/image/draw"

	k21errors "github.com/kontext21/k21/internal/errors"
)

// Monitor describes one active display as reported by the capture driver.
type Monitor struct {
	ID     int
	Width  int
	Height int
}

// ListMonitors enumerates the active displays available for capture.
func ListMonitors() ([]Monitor, error) {
	n := screenshot.NumActiveDisplays()
	if n == 0 {
		return nil, k21errors.NewCaptureError("no active displays found", nil)
	}

	monitors := make([]Monitor, 0, n)
	for i := 0; i < n; i++ {
		bounds := screenshot.GetDisplayBounds(i)
		monitors = append(monitors, Monitor{ID: i, Width: bounds.Dx(), Height: bounds.Dy()})
	}
	return monitors, nil
}

// Grab captures one bitmap from monitorID, scaled by quality/100 (1..100)
// using nearest-neighbor resampling, and returns it as an RGBA image.
//
// The OS capture call runs on a dedicated goroutine; Grab suspends the
// caller on a result channel rather than blocking it directly, so a caller
// running many goroutines over a single cooperative scheduler (as our
// fan-out pipeline does) is never stalled by the underlying driver call.
// Cancelling ctx returns ctx.Err() without waiting for the capture call to
// finish (the goroutine is abandoned, matching the "fire and detach" shape
// the pipeline's shutdown latch expects elsewhere).
func Grab(ctx context.Context, monitorID int, quality uint8) (*image.RGBA, error) {
	if quality < 1 || quality > 100 {
		return nil, k21errors.NewConfigError(fmt.Sprintf("quality must be 1-100, got %d", quality))
	}

	n := screenshot.NumActiveDisplays()
	if monitorID < 0 || monitorID >= n {
		return nil, k21errors.NewCaptureError(fmt.Sprintf("monitor %d not found (have %d displays)", monitorID, n), nil)
	}

	type result struct {
		img *image.RGBA
		err error
	}
	resultCh := make(chan result, 1)

	go func() {
		img, err := screenshot.CaptureDisplay(monitorID)
		resultCh <- result{img: img, err: err}
	}()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case r := <-resultCh:
		if r.err != nil {
			return nil, k21errors.NewCaptureError("display capture failed", r.err)
		}
		if quality == 100 {
			return r.img, nil
		}
		return scale(r.img, quality), nil
	}
}

// scale resizes img so each dimension is quality percent of the original,
// using nearest-neighbor resampling (spec-mandated for Screen Grabber
// quality scaling).
func scale(img *image.RGBA, quality uint8) *image.RGBA {
	srcBounds := img.Bounds()
	newW := srcBounds.Dx() * int(quality) / 100
	newH := srcBounds.Dy() * int(quality) / 100
	if newW < 1 {
		newW = 1
	}
	if newH < 1 {
		newH = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, newW, newH))
	ximagedraw.NearestNeighbor.Scale(dst, dst.Bounds(), img, srcBounds, draw.Src, nil)
	return dst
}
