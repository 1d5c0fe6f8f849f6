// Package main is the live screen-capture CLI entry point.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/kontext21/k21/internal/capture"
	"github.com/kontext21/k21/internal/config"
	"github.com/kontext21/k21/internal/logging"
	"github.com/kontext21/k21/internal/pipeline"
	"github.com/kontext21/k21/internal/reporter"
	"github.com/kontext21/k21/internal/util"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

type screenArgs struct {
	fps               float64
	durationSeconds   uint64
	chunkSeconds      uint64
	quality           uint8
	monitorID         int
	screenshotDir     string
	videoDir          string
	stdoutPassthrough bool
	logDir            string
	verbose           bool
	listMonitors      bool

	vision      bool
	visionURL   string
	visionKey   string
	visionModel string
}

func newRootCmd() *cobra.Command {
	var a screenArgs

	cmd := &cobra.Command{
		Use:   "k21screen",
		Short: "Continuously capture the primary display and extract text from changed frames",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), a)
		},
	}

	flags := cmd.Flags()
	flags.Float64Var(&a.fps, "fps", config.DefaultFPS, "capture rate in frames per second")
	flags.Uint64Var(&a.durationSeconds, "duration", 0, "bounded run length in seconds (0 = unbounded)")
	flags.Uint64Var(&a.chunkSeconds, "video-chunk-duration", 60, "seconds of captured frames per video chunk")
	flags.Uint8Var(&a.quality, "quality", config.DefaultQuality, "capture scale percentage (1-100)")
	flags.IntVar(&a.monitorID, "monitor", 0, "display index to capture")
	flags.StringVar(&a.screenshotDir, "save-screenshot-to", "", "directory to write per-frame PNG screenshots")
	flags.StringVar(&a.videoDir, "save-video-to", "", "directory to write chunked MP4 video")
	flags.BoolVar(&a.stdoutPassthrough, "stdout", false, "write framed raw RGB packets to stdout")
	flags.StringVar(&a.logDir, "log-dir", "", "directory for the run's log file (defaults to stderr logging)")
	flags.BoolVar(&a.verbose, "verbose", false, "enable debug-level logging")
	flags.BoolVar(&a.listMonitors, "list-monitors", false, "print the active displays available for capture and exit")

	flags.BoolVar(&a.vision, "vision", false, "use a remote vision model instead of local OCR")
	flags.StringVar(&a.visionURL, "vision-url", "", "vision model endpoint URL")
	flags.StringVar(&a.visionKey, "vision-api-key", "", "vision model API key")
	flags.StringVar(&a.visionModel, "vision-model", "", "vision model name")

	return cmd
}

func run(ctx context.Context, a screenArgs) error {
	if a.listMonitors {
		return listMonitors()
	}

	level := logging.LevelInfo
	if a.verbose {
		level = logging.LevelDebug
	}

	if a.logDir != "" {
		logger, file, err := logging.NewFileLogger(a.logDir, level)
		if err != nil {
			return err
		}
		defer file.Close()
		logging.SetGlobal(logger)
	} else {
		logging.Init(level, os.Stderr)
	}

	capCfg := config.NewCaptureConfig()
	capCfg.FPS = a.fps
	capCfg.DurationSeconds = a.durationSeconds
	capCfg.Quality = a.quality
	capCfg.MonitorID = a.monitorID
	capCfg.ScreenshotDir = a.screenshotDir
	capCfg.VideoDir = a.videoDir
	capCfg.StdoutPassthrough = a.stdoutPassthrough
	if a.chunkSeconds > 0 {
		capCfg.ChunkSeconds = &a.chunkSeconds
	}
	if err := capCfg.Validate(); err != nil {
		return err
	}
	if capCfg.VideoDir != "" {
		if err := util.EnsureDirectory(capCfg.VideoDir); err != nil {
			return err
		}
	}
	if capCfg.ScreenshotDir != "" {
		if err := util.EnsureDirectory(capCfg.ScreenshotDir); err != nil {
			return err
		}
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

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		logging.Info("shutdown signal received, finishing in-flight work")
		cancel()
	}()

	// Status output always goes to stderr: stdout is reserved for the
	// framed binary passthrough protocol when --stdout is set.
	rep := reporter.NewTerminalReporter()
	rep.RunStarted(reporter.RunSummary{
		Monitor:         a.monitorID,
		FPS:             a.fps,
		DurationSeconds: capCfg.DurationSeconds,
		VideoDir:        capCfg.VideoDir,
		ScreenshotDir:   capCfg.ScreenshotDir,
	})

	start := time.Now()
	st, err := pipeline.Run(runCtx, capCfg, procCfg, os.Stdout, rep)
	if err != nil {
		return err
	}

	rep.RunComplete(reporter.RunOutcome{
		FramesObserved: capCfg.TotalFramesTarget(),
		TextItems:      st.Len(),
		Elapsed:        time.Since(start),
	})
	logging.Info("capture finished", "elapsed", util.FormatDuration(time.Since(start).Seconds()), "results", st.Len())
	for _, item := range st.Snapshot() {
		slog.Default().Info("extracted text", "frame_number", item.FrameNumber, "content", item.Content)
	}
	return nil
}

// listMonitors prints the active displays available for --monitor and
// exits; it does not touch logging or the capture pipeline.
func listMonitors() error {
	monitors, err := capture.ListMonitors()
	if err != nil {
		return err
	}
	for _, m := range monitors {
		fmt.Printf("%d: %dx%d\n", m.ID, m.Width, m.Height)
	}
	return nil
}
