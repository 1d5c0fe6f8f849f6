package pipeline

import (
	"bufio"
	"encoding/binary"
	"image"

	k21errors "github.com/kontext21/k21/internal/errors"
)

// writeFramedPacket writes one stdout-passthrough packet: frame number,
// width, height, and packed-RGB payload size as little-endian fixed-width
// integers, followed by the packed RGB bytes themselves, then flushes.
// Stdout is a process-global resource; the video-sink consumer is its only
// writer, so no additional locking is needed here.
func writeFramedPacket(w *bufio.Writer, frameNumber uint64, bitmap *image.RGBA) error {
	bounds := bitmap.Bounds()
	width := uint32(bounds.Dx())
	height := uint32(bounds.Dy())
	rgb := packRGB(bitmap)

	var header [8 + 4 + 4 + 8]byte
	binary.LittleEndian.PutUint64(header[0:8], frameNumber)
	binary.LittleEndian.PutUint32(header[8:12], width)
	binary.LittleEndian.PutUint32(header[12:16], height)
	binary.LittleEndian.PutUint64(header[16:24], uint64(len(rgb)))

	if _, err := w.Write(header[:]); err != nil {
		return k21errors.NewIOError("failed to write stdout frame header", err)
	}
	if _, err := w.Write(rgb); err != nil {
		return k21errors.NewIOError("failed to write stdout frame payload", err)
	}
	if err := w.Flush(); err != nil {
		return k21errors.NewIOError("failed to flush stdout frame", err)
	}
	return nil
}

// packRGB strips the alpha channel from an RGBA bitmap, producing
// row-major, top-down, 3-bytes-per-pixel packed RGB.
func packRGB(bitmap *image.RGBA) []byte {
	bounds := bitmap.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	out := make([]byte, 0, width*height*3)

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			c := bitmap.RGBAAt(bounds.Min.X+x, bounds.Min.Y+y)
			out = append(out, c.R, c.G, c.B)
		}
	}
	return out
}
