// Package reporter provides terminal status reporting for the CLI
// binaries, separate from structured logging: logging records what
// happened for operators and log aggregators, reporter tells the person
// watching the terminal what is going on right now.
package reporter

import "time"

// RunSummary describes a capture run before it starts.
type RunSummary struct {
	Monitor         int
	FPS             float64
	DurationSeconds uint64
	VideoDir        string
	ScreenshotDir   string
}

// RunOutcome describes a capture or ingest run after it ends.
type RunOutcome struct {
	FramesObserved uint64
	TextItems      int
	Elapsed        time.Duration
}

// Reporter receives terminal status updates for a run. Implementations
// must be safe for concurrent use: video-sink and text-stage consumers
// may report from different goroutines.
type Reporter interface {
	RunStarted(summary RunSummary)
	ChunkSaved(path string)
	Warning(message string)
	RunComplete(outcome RunOutcome)
}

// NullReporter discards all updates.
type NullReporter struct{}

func (NullReporter) RunStarted(RunSummary)  {}
func (NullReporter) ChunkSaved(string)      {}
func (NullReporter) Warning(string)         {}
func (NullReporter) RunComplete(RunOutcome) {}
