// Package mp4source implements the offline MP4 ingest path: parse an MP4
// container, locate the first H.264 track, step-sample it against the
// container's duration, and decode each sampled access unit to a luma
// bitmap for the text stage.
package mp4source

import (
	"fmt"
	"math"
	"os"

	"github.com/asticode/go-astiav"

	k21errors "github.com/kontext21/k21/internal/errors"
	"github.com/kontext21/k21/internal/logging"
)

// FrameCallback receives one step-sampled (or flush-drained), decoded luma
// bitmap. frameIdx starts at 0 and advances once per call, regardless of
// what the callback returns — frame_idx tracks "frames forwarded by the
// source", not "frames accepted by a downstream change gate".
type FrameCallback func(frameIdx int, luma []byte, width, height int) error

// Step returns the integer sampling step used to subsample an H.264 track:
// ceil(sampleCount/durationSeconds), or 1 when durationSeconds is zero
// (unknown/zero duration means "take every sample").
func Step(sampleCount int, durationSeconds float64) int {
	if durationSeconds <= 0 {
		return 1
	}
	step := int(math.Ceil(float64(sampleCount) / durationSeconds))
	if step < 1 {
		return 1
	}
	return step
}

// ForEachFrameInFile drives the decode-and-sample loop against an MP4 file
// on disk, invoking cb for every forwarded frame.
func ForEachFrameInFile(path string, cb FrameCallback) error {
	fc := astiav.AllocFormatContext()
	if fc == nil {
		return k21errors.NewFatalError("failed to allocate mp4 format context", nil)
	}
	defer fc.Free()

	if err := fc.OpenInput(path, nil, nil); err != nil {
		return k21errors.NewFatalError(fmt.Sprintf("failed to open mp4 input %s", path), err)
	}
	defer fc.CloseInput()

	if err := fc.FindStreamInfo(nil); err != nil {
		return k21errors.NewFatalError("failed to read mp4 stream info", err)
	}

	videoIdx := -1
	for i, st := range fc.Streams() {
		if st.CodecParameters().MediaType() == astiav.MediaTypeVideo &&
			st.CodecParameters().CodecID() == astiav.CodecIDH264 {
			videoIdx = i
			break
		}
	}
	if videoIdx < 0 {
		return k21errors.NewFatalError("no h.264 track found in mp4", nil)
	}
	videoStream := fc.Streams()[videoIdx]

	decoder := astiav.FindDecoder(astiav.CodecIDH264)
	if decoder == nil {
		return k21errors.NewFatalError("h.264 decoder not available", nil)
	}

	decCtx := astiav.AllocCodecContext(decoder)
	if decCtx == nil {
		return k21errors.NewFatalError("failed to allocate h.264 decoder context", nil)
	}
	defer decCtx.Free()

	if err := videoStream.CodecParameters().ToCodecContext(decCtx); err != nil {
		return k21errors.NewFatalError("failed to copy codec parameters to decoder", err)
	}
	if err := decCtx.Open(decoder, nil); err != nil {
		return k21errors.NewFatalError("failed to open h.264 decoder", err)
	}

	bsf, err := newAnnexBFilter(videoStream)
	if err != nil {
		return err
	}
	defer bsf.free()

	sampleCount := estimateSampleCount(videoStream)
	duration := streamDurationSeconds(fc, videoStream)
	step := Step(sampleCount, duration)
	logging.Debug("mp4 ingest starting", "samples", sampleCount, "duration_s", duration, "step", step)

	frameIdx := 0
	sampleIdx := 0

	pkt := astiav.AllocPacket()
	defer pkt.Free()
	yuv := astiav.AllocFrame()
	defer yuv.Free()

	for {
		if err := fc.ReadFrame(pkt); err != nil {
			if err == astiav.ErrEof {
				break
			}
			logging.Warn("mp4 ingest: malformed sample, skipping", "error", err)
			pkt.Unref()
			continue
		}
		if pkt.StreamIndex() != videoIdx {
			pkt.Unref()
			continue
		}
		sampleIdx++

		annexB, convErr := bsf.convert(pkt)
		pkt.Unref()
		if convErr != nil {
			logging.Warn("mp4 ingest: bitstream conversion failed, skipping sample", "error", convErr)
			continue
		}

		if decErr := decCtx.SendPacket(annexB); decErr != nil {
			logging.Warn("mp4 ingest: decoder rejected sample, skipping", "error", decErr)
			annexB.Free()
			continue
		}
		annexB.Free()

		for {
			recvErr := decCtx.ReceiveFrame(yuv)
			if recvErr != nil {
				break // ErrEagain (need more input) or ErrEof
			}
			if sampleIdx%step != 0 {
				continue // sampling gate: drop this decoded frame
			}
			luma, w, h := copyLumaPlane(yuv)
			if cbErr := cb(frameIdx, luma, w, h); cbErr != nil {
				return cbErr
			}
			frameIdx++
		}
	}

	// Terminal flush: drain any frames still buffered in the decoder.
	// Flushed frames are forwarded unconditionally (no sampling gate).
	if err := decCtx.SendPacket(nil); err != nil {
		return k21errors.NewFatalError("failed to flush h.264 decoder", err)
	}
	for {
		recvErr := decCtx.ReceiveFrame(yuv)
		if recvErr != nil {
			break
		}
		luma, w, h := copyLumaPlane(yuv)
		if cbErr := cb(frameIdx, luma, w, h); cbErr != nil {
			return cbErr
		}
		frameIdx++
	}

	return nil
}

// ForEachFrameInBytes is the byte-buffer entry point used by the HTTP
// service and the --stdin CLI mode: it spools the buffer to a temp file
// (astiav's demuxer needs a seekable path) and delegates to
// ForEachFrameInFile.
func ForEachFrameInBytes(data []byte, cb FrameCallback) error {
	tmp, err := os.CreateTemp("", "k21-ingest-*.mp4")
	if err != nil {
		return k21errors.NewFatalError("failed to create temp file for mp4 ingest", err)
	}
	path := tmp.Name()
	defer os.Remove(path)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return k21errors.NewFatalError("failed to write mp4 payload to temp file", err)
	}
	if err := tmp.Close(); err != nil {
		return k21errors.NewFatalError("failed to finalize temp mp4 file", err)
	}

	return ForEachFrameInFile(path, cb)
}

func copyLumaPlane(yuv *astiav.Frame) (luma []byte, width, height int) {
	width, height = yuv.Width(), yuv.Height()
	stride := yuv.Linesize()[0]
	yPlane := yuv.Data()[0]

	out := make([]byte, width*height)
	for row := 0; row < height; row++ {
		srcStart := row * stride
		copy(out[row*width:(row+1)*width], yPlane[srcStart:srcStart+width])
	}
	return out, width, height
}

func estimateSampleCount(st *astiav.Stream) int {
	if n := st.NbFrames(); n > 0 {
		return int(n)
	}
	return 0
}

func streamDurationSeconds(fc *astiav.FormatContext, st *astiav.Stream) float64 {
	if d := st.Duration(); d > 0 {
		tb := st.TimeBase()
		return float64(d) * float64(tb.Num()) / float64(tb.Den())
	}
	const avTimeBase = 1000000 // AV_TIME_BASE, the unit fc.Duration() is expressed in
	if d := fc.Duration(); d > 0 {
		return float64(d) / avTimeBase
	}
	return 0
}
