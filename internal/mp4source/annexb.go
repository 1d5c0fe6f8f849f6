package mp4source

import (
	"github.com/asticode/go-astiav"

	k21errors "github.com/kontext21/k21/internal/errors"
)

// annexBFilter wraps the "h264_mp4toannexb" bitstream filter, which
// converts the length-prefixed (AVCC) NAL packets MP4 stores into
// start-code-prefixed Annex-B form, injecting SPS/PPS parameter sets the
// way a bare decoder expects them. Holding one context across the whole
// ingest run (rather than allocating per-sample) avoids re-parsing
// extradata on every packet.
type annexBFilter struct {
	ctx *astiav.BitStreamFilterContext
}

func newAnnexBFilter(videoStream *astiav.Stream) (*annexBFilter, error) {
	filter := astiav.FindBitStreamFilterByName("h264_mp4toannexb")
	if filter == nil {
		return nil, k21errors.NewFatalError("h264_mp4toannexb bitstream filter not available", nil)
	}

	ctx, err := astiav.AllocBitStreamFilterContext(filter)
	if err != nil || ctx == nil {
		return nil, k21errors.NewFatalError("failed to allocate bitstream filter context", err)
	}

	if err := videoStream.CodecParameters().Copy(ctx.InputCodecParameters()); err != nil {
		ctx.Free()
		return nil, k21errors.NewFatalError("failed to copy codec parameters into bitstream filter", err)
	}
	ctx.SetInputTimeBase(videoStream.TimeBase())

	if err := ctx.Initialize(); err != nil {
		ctx.Free()
		return nil, k21errors.NewFatalError("failed to initialize bitstream filter", err)
	}

	return &annexBFilter{ctx: ctx}, nil
}

// convert feeds pkt (an AVCC sample) through the filter and returns a
// freshly allocated Annex-B packet; the caller owns the returned packet and
// must Unref it.
func (f *annexBFilter) convert(pkt *astiav.Packet) (*astiav.Packet, error) {
	if err := f.ctx.SendPacket(pkt); err != nil {
		return nil, k21errors.NewProcessingError("bitstream filter rejected sample", err)
	}

	out := astiav.AllocPacket()
	if err := f.ctx.ReceivePacket(out); err != nil {
		out.Free()
		return nil, k21errors.NewProcessingError("bitstream filter produced no packet", err)
	}
	return out, nil
}

func (f *annexBFilter) free() {
	if f.ctx != nil {
		f.ctx.Free()
		f.ctx = nil
	}
}
