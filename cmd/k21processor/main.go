// Package main is the offline image/MP4 text-extraction CLI entry point.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/kontext21/k21/internal/config"
	k21errors "github.com/kontext21/k21/internal/errors"
	"github.com/kontext21/k21/internal/ffprobe"
	"github.com/kontext21/k21/internal/imagetext"
	"github.com/kontext21/k21/internal/logging"
	"github.com/kontext21/k21/internal/pipeline"
	"github.com/kontext21/k21/internal/store"
	"github.com/kontext21/k21/internal/util"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

type processorArgs struct {
	imagePath string
	mp4Path   string
	stdin     bool

	vision      bool
	visionURL   string
	visionKey   string
	visionModel string
}

func newRootCmd() *cobra.Command {
	var a processorArgs

	cmd := &cobra.Command{
		Use:   "k21processor",
		Short: "Extract text from a single image or an existing MP4 recording",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), a)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&a.imagePath, "image", "", "path to a single image to run text extraction against")
	flags.StringVar(&a.mp4Path, "mp4", "", "path to an MP4 file to run change-detected text extraction against")
	flags.BoolVar(&a.stdin, "stdin", false, "read an MP4 byte stream from standard input")

	flags.BoolVar(&a.vision, "vision", false, "use a remote vision model instead of local OCR")
	flags.StringVar(&a.visionURL, "vision-url", "", "vision model endpoint URL")
	flags.StringVar(&a.visionKey, "vision-api-key", "", "vision model API key")
	flags.StringVar(&a.visionModel, "vision-model", "", "vision model name")

	return cmd
}

func run(ctx context.Context, a processorArgs) error {
	logging.Init(logging.LevelInfo, os.Stderr)

	modes := 0
	for _, set := range []bool{a.imagePath != "", a.mp4Path != "", a.stdin} {
		if set {
			modes++
		}
	}
	if modes != 1 {
		return k21errors.NewConfigError("exactly one of --image, --mp4, or --stdin is required")
	}

	var procCfg *config.ProcessorConfig
	if a.vision {
		procCfg = config.NewVisionProcessorConfig(&config.VisionConfig{
			URL: a.visionURL, APIKey: a.visionKey, Model: a.visionModel,
		})
	} else {
		procCfg = config.NewOcrProcessorConfig()
	}
	if err := procCfg.Validate(); err != nil {
		return err
	}

	var st *store.Store
	var err error

	switch {
	case a.imagePath != "":
		st, err = processImage(ctx, a.imagePath, procCfg)
	case a.mp4Path != "":
		st, err = processMP4File(ctx, a.mp4Path, procCfg)
	case a.stdin:
		st, err = processMP4Stdin(ctx, procCfg)
	}
	if err != nil {
		return err
	}

	return json.NewEncoder(os.Stdout).Encode(struct {
		Success bool              `json:"success"`
		Result  []store.ImageData `json:"result"`
	}{Success: true, Result: st.Snapshot()})
}

func processImage(ctx context.Context, path string, cfg *config.ProcessorConfig) (*store.Store, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, k21errors.NewIOError("failed to open image", err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, k21errors.NewFatalError("failed to decode image", err)
	}

	text, err := imagetext.Extract(ctx, img, cfg)
	if err != nil {
		return nil, err
	}

	st := store.New()
	if text != "" || cfg.ProcessingType == config.ProcessingVision {
		pt := store.ProcessingOCR
		if cfg.ProcessingType == config.ProcessingVision {
			pt = store.ProcessingVision
		}
		st.Append(store.NewImageData(0, text, pt))
	}
	return st, nil
}

func processMP4File(ctx context.Context, path string, cfg *config.ProcessorConfig) (*store.Store, error) {
	if util.DirectoryExists(path) {
		return nil, k21errors.NewConfigError(fmt.Sprintf("%s is a directory, not an mp4/m4v/mov file", path))
	}
	if !util.FileExists(path) {
		return nil, k21errors.NewConfigError(fmt.Sprintf("%s does not exist", path))
	}
	if !util.IsVideoFile(path) {
		return nil, k21errors.NewConfigError(fmt.Sprintf("%s is not a recognized mp4/m4v/mov file", path))
	}

	bold := color.New(color.Bold)
	bold.Fprintf(os.Stderr, "k21processor: scanning %s (%s)\n", util.GetFilename(path), util.FormatBytesReadable(mustFileSize(path)))
	if info, err := ffprobe.GetMediaInfo(path); err == nil {
		fmt.Fprintf(os.Stderr, "  %dx%d, %s\n", info.Width, info.Height, util.FormatDuration(info.Duration))
	}

	bar := progressbar.NewOptions(-1,
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionSetDescription("decoding"),
		progressbar.OptionSpinnerType(14),
	)
	defer bar.Finish()

	ps := pipeline.NewProcessingState()
	stopTicker := make(chan struct{})
	tickerDone := make(chan struct{})
	go func() {
		defer close(tickerDone)
		ticker := time.NewTicker(200 * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				bar.Describe(fmt.Sprintf("decoding: %d frames seen, %d processed, %d skipped",
					ps.FramesSeen(), ps.FramesProcessed(), ps.FramesSkipped()))
				bar.Add(1)
			case <-stopTicker:
				return
			}
		}
	}()

	st, err := pipeline.RunMP4FileWithState(ctx, path, cfg, ps)
	close(stopTicker)
	<-tickerDone

	bar.Describe(fmt.Sprintf("decoding: %d frames seen, %d processed, %d skipped",
		ps.FramesSeen(), ps.FramesProcessed(), ps.FramesSkipped()))
	return st, err
}

// mustFileSize returns path's size, or 0 if it can't be stat'd; callers
// only reach this after confirming the file exists.
func mustFileSize(path string) uint64 {
	size, err := util.GetFileSize(path)
	if err != nil {
		return 0
	}
	return size
}

func processMP4Stdin(ctx context.Context, cfg *config.ProcessorConfig) (*store.Store, error) {
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return nil, k21errors.NewIOError("failed to read mp4 bytes from stdin", err)
	}
	return pipeline.RunMP4Bytes(ctx, data, cfg)
}
