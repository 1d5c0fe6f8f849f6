// Package videosink implements the stateful H.264 encoder + MP4 muxer that
// the live capture pipeline drains into timestamped chunk files.
package videosink

import (
	"fmt"
	"image"
	"sync"

	"github.com/asticode/go-astiav"

	k21errors "github.com/kontext21/k21/internal/errors"
)

// encodedPacket is one H.264 access unit produced by Frame, retained until
// the next Save mux-and-reset.
type encodedPacket struct {
	data     []byte
	pts      int64
	keyFrame bool
}

// Sink holds the stateful H.264 encoder, its RGBA->YUV420P scaler, and the
// buffer of encoded frames accumulated since the last Save. Its methods
// serialize on an internal mutex; the pipeline's video-sink consumer owns
// one Sink exclusively (see the concurrency model's "never shared" rule).
type Sink struct {
	mu sync.Mutex

	width, height int
	fps           float64

	encCtx *astiav.CodecContext
	sws    *astiav.SoftwareScaleContext
	yuv    *astiav.Frame

	packets    []encodedPacket
	bufferSize int
	frameCount int
	nextPTS    int64
}

// New allocates an H.264 encoder sized for width x height at the given
// frame rate. Every encoded frame is forced to an intra frame (see Frame),
// so the resulting bitstream is chunk-boundary-safe: a Save at any point
// produces a self-contained, independently decodable MP4.
func New(width, height int, fps float64) (*Sink, error) {
	s := &Sink{width: width, height: height, fps: fps}
	if err := s.allocEncoder(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Sink) allocEncoder() error {
	codec := astiav.FindEncoder(astiav.CodecIDH264)
	if codec == nil {
		return k21errors.NewFatalError("h264 encoder not available", nil)
	}

	ctx := astiav.AllocCodecContext(codec)
	if ctx == nil {
		return k21errors.NewFatalError("failed to allocate h264 encoder context", nil)
	}

	timeBase := astiav.NewRational(1, int(s.fps*1000))
	ctx.SetWidth(s.width)
	ctx.SetHeight(s.height)
	ctx.SetPixelFormat(astiav.PixelFormatYuv420P)
	ctx.SetTimeBase(timeBase)
	ctx.SetFramerate(astiav.NewRational(int(s.fps*1000), 1000))
	ctx.SetGopSize(1) // every frame is an intra frame; gop size of 1 documents that

	if err := ctx.Open(codec, nil); err != nil {
		ctx.Free()
		return k21errors.NewFatalError("failed to open h264 encoder", err)
	}

	s.encCtx = ctx
	s.nextPTS = 0
	return nil
}

func (s *Sink) ensureScaler(src *image.RGBA) error {
	w, h := src.Bounds().Dx(), src.Bounds().Dy()
	if s.sws != nil {
		return nil
	}

	flags := astiav.NewSoftwareScaleContextFlags()
	sws, err := astiav.CreateSoftwareScaleContext(
		w, h, astiav.PixelFormatRgba,
		w, h, astiav.PixelFormatYuv420P,
		flags,
	)
	if err != nil {
		return k21errors.NewProcessingError("failed to create rgba->yuv420p scaler", err)
	}

	dst := astiav.AllocFrame()
	dst.SetWidth(w)
	dst.SetHeight(h)
	dst.SetPixelFormat(astiav.PixelFormatYuv420P)
	if err := dst.AllocBuffer(1); err != nil {
		dst.Free()
		sws.Free()
		return k21errors.NewProcessingError("failed to allocate yuv420p frame buffer", err)
	}

	s.sws = sws
	s.yuv = dst
	return nil
}

// Frame encodes one bitmap as an intra H.264 frame and appends the
// resulting bitstream bytes to the sink's buffer.
func (s *Sink) Frame(bitmap *image.RGBA) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureScaler(bitmap); err != nil {
		return err
	}

	src := astiav.AllocFrame()
	defer src.Free()
	src.SetWidth(bitmap.Bounds().Dx())
	src.SetHeight(bitmap.Bounds().Dy())
	src.SetPixelFormat(astiav.PixelFormatRgba)
	if err := src.AllocBuffer(1); err != nil {
		return k21errors.NewProcessingError("failed to allocate rgba source frame", err)
	}
	if _, err := src.ImageCopyFromBuffer(bitmap.Pix, 1); err != nil {
		return k21errors.NewProcessingError("failed to copy bitmap into source frame", err)
	}

	if err := s.sws.ScaleFrame(src, s.yuv); err != nil {
		return k21errors.NewProcessingError("failed to scale rgba frame to yuv420p", err)
	}

	s.yuv.SetPictType(astiav.PictTypeI) // force an intra frame for every chunk
	s.yuv.SetPts(s.nextPTS)
	s.nextPTS++

	if err := s.encCtx.SendFrame(s.yuv); err != nil {
		return k21errors.NewProcessingError("encoder rejected frame", err)
	}

	pkt := astiav.AllocPacket()
	defer pkt.Free()
	for {
		err := s.encCtx.ReceivePacket(pkt)
		if err != nil {
			if err == astiav.ErrEagain {
				break
			}
			return k21errors.NewProcessingError("failed to receive encoded packet", err)
		}
		data := append([]byte(nil), pkt.Data()...)
		s.packets = append(s.packets, encodedPacket{data: data, pts: pkt.Pts(), keyFrame: true})
		s.bufferSize += len(data)
		s.frameCount++
		pkt.Unref()
	}

	return nil
}

// IsEmpty reports whether any bytes are buffered since the last Save.
func (s *Sink) IsEmpty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.bufferSize == 0
}

// FrameCount returns the number of frames buffered since the last Save.
func (s *Sink) FrameCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.frameCount
}

// Save muxes the current buffer into a fresh MP4 at path, then resets the
// sink: a new encoder replaces the old one, the buffer empties, and the
// frame count returns to zero, satisfying the save-reset invariant.
func (s *Sink) Save(path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.bufferSize == 0 {
		return k21errors.NewFatalError("save called on an empty video sink", nil)
	}

	oc, err := astiav.AllocOutputFormatContext(nil, "mp4", path)
	if err != nil || oc == nil {
		return k21errors.NewFatalError(fmt.Sprintf("failed to allocate mp4 output context for %s", path), err)
	}
	defer oc.Free()

	pb, err := astiav.OpenIOContext(path, astiav.NewIOContextFlags(astiav.IOContextFlagWrite), nil, nil)
	if err != nil {
		return k21errors.NewFatalError(fmt.Sprintf("failed to open %s for writing", path), err)
	}
	defer pb.Close()
	oc.SetPb(pb)

	stream := oc.NewStream(nil)
	if stream == nil {
		return k21errors.NewFatalError("failed to allocate mp4 video stream", nil)
	}
	if err := stream.CodecParameters().FromCodecContext(s.encCtx); err != nil {
		return k21errors.NewFatalError("failed to copy codec parameters to stream", err)
	}
	stream.SetTimeBase(s.encCtx.TimeBase())

	if err := oc.WriteHeader(nil); err != nil {
		return k21errors.NewFatalError("failed to write mp4 header", err)
	}

	pkt := astiav.AllocPacket()
	defer pkt.Free()
	for _, p := range s.packets {
		pkt.Unref()
		if err := pkt.FromData(p.data); err != nil {
			return k21errors.NewFatalError("failed to wrap encoded bitstream in packet", err)
		}
		pkt.SetPts(p.pts)
		pkt.SetDts(p.pts)
		pkt.SetStreamIndex(stream.Index())
		pkt.RescaleTs(s.encCtx.TimeBase(), stream.TimeBase())
		if err := oc.WriteInterleavedFrame(pkt); err != nil {
			return k21errors.NewFatalError("failed to write frame to mp4", err)
		}
	}

	if err := oc.WriteTrailer(); err != nil {
		return k21errors.NewFatalError("failed to write mp4 trailer", err)
	}

	return s.reset()
}

// reset replaces the encoder and clears buffered state. Caller must hold s.mu.
func (s *Sink) reset() error {
	if s.encCtx != nil {
		s.encCtx.Free()
		s.encCtx = nil
	}
	s.packets = nil
	s.bufferSize = 0
	s.frameCount = 0
	return s.allocEncoder()
}

// Close releases the encoder and scaler resources without muxing anything.
func (s *Sink) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.encCtx != nil {
		s.encCtx.Free()
		s.encCtx = nil
	}
	if s.yuv != nil {
		s.yuv.Free()
		s.yuv = nil
	}
	if s.sws != nil {
		s.sws.Free()
		s.sws = nil
	}
}
