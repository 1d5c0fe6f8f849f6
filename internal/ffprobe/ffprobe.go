// Package ffprobe shells out to the ffprobe binary to read container-level
// metadata (duration, resolution, frame count) from an MP4 file before
// k21processor ingests it, so the CLI can report the real duration and
// resolution before scanning.
package ffprobe

import (
	"encoding/json"
	"fmt"
	"os/exec"
	"strconv"
)

// MediaInfo contains basic media information for a video file.
type MediaInfo struct {
	Duration    float64
	Width       int64
	Height      int64
	TotalFrames uint64
}

type ffprobeOutput struct {
	Format  ffprobeFormat   `json:"format"`
	Streams []ffprobeStream `json:"streams"`
}

type ffprobeFormat struct {
	Duration string `json:"duration"`
}

type ffprobeStream struct {
	CodecType string `json:"codec_type"`
	Width     int64  `json:"width"`
	Height    int64  `json:"height"`
	NbFrames  string `json:"nb_frames"`
}

func parseFFprobeOutput(data []byte) (*ffprobeOutput, error) {
	var result ffprobeOutput
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("failed to parse ffprobe output: %w", err)
	}
	return &result, nil
}

func runFFprobe(inputPath string) (*ffprobeOutput, error) {
	cmd := exec.Command("ffprobe",
		"-v", "quiet",
		"-print_format", "json",
		"-show_format",
		"-show_streams",
		inputPath,
	)

	output, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("ffprobe failed: %w", err)
	}

	return parseFFprobeOutput(output)
}

// GetMediaInfo returns basic media information for a file. Requires the
// ffprobe binary to be present on PATH; callers that cannot assume that
// should treat a non-nil error as "proceed without an estimate" rather
// than a fatal condition.
func GetMediaInfo(inputPath string) (*MediaInfo, error) {
	probe, err := runFFprobe(inputPath)
	if err != nil {
		return nil, err
	}

	info := &MediaInfo{}

	if probe.Format.Duration != "" {
		if d, err := strconv.ParseFloat(probe.Format.Duration, 64); err == nil {
			info.Duration = d
		}
	}

	for _, stream := range probe.Streams {
		if stream.CodecType == "video" {
			info.Width = stream.Width
			info.Height = stream.Height
			if stream.NbFrames != "" {
				if frames, err := strconv.ParseUint(stream.NbFrames, 10, 64); err == nil {
					info.TotalFrames = frames
				}
			}
			break
		}
	}

	return info, nil
}
