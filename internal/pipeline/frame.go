// Package pipeline wires the capture, change-detection, video-sink, and
// text-extraction components into the two Frame Pipelines the spec
// describes: the live fan-out pipeline and the synchronous MP4-ingest
// pipeline.
package pipeline

import "image"

// Frame is one captured bitmap tagged with its position in the capture
// sequence. frame_counter/frame_number in the source material; Go code
// just calls it Number.
type Frame struct {
	Number uint64
	Bitmap *image.RGBA
}
