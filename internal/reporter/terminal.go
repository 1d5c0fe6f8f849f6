package reporter

import (
	"fmt"
	"os"
	"sync"

	"github.com/fatih/color"

	"github.com/kontext21/k21/internal/util"
)

// TerminalReporter prints human-friendly status lines to stderr, leaving
// stdout free for the framed raw-RGB passthrough protocol.
type TerminalReporter struct {
	mu     sync.Mutex
	cyan   *color.Color
	yellow *color.Color
	green  *color.Color
	bold   *color.Color
}

// NewTerminalReporter creates a reporter that writes to stderr.
func NewTerminalReporter() *TerminalReporter {
	return &TerminalReporter{
		cyan:   color.New(color.FgCyan, color.Bold),
		yellow: color.New(color.FgYellow, color.Bold),
		green:  color.New(color.FgGreen, color.Bold),
		bold:   color.New(color.Bold),
	}
}

func (r *TerminalReporter) RunStarted(summary RunSummary) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cyan.Fprintf(os.Stderr, "k21: capturing monitor %d at %.2f fps\n", summary.Monitor, summary.FPS)
	if summary.DurationSeconds > 0 {
		fmt.Fprintf(os.Stderr, "  duration: %s\n", util.FormatDurationFromSecs(int64(summary.DurationSeconds)))
	}
	if summary.VideoDir != "" {
		fmt.Fprintf(os.Stderr, "  video:    %s\n", summary.VideoDir)
	}
	if summary.ScreenshotDir != "" {
		fmt.Fprintf(os.Stderr, "  screens:  %s\n", summary.ScreenshotDir)
	}
}

func (r *TerminalReporter) ChunkSaved(path string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.green.Fprintf(os.Stderr, "saved %s\n", path)
}

func (r *TerminalReporter) Warning(message string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.yellow.Fprintf(os.Stderr, "warning: %s\n", message)
}

func (r *TerminalReporter) RunComplete(outcome RunOutcome) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.bold.Fprintf(os.Stderr, "done in %s: %d frames observed, %d text results\n",
		util.FormatDuration(outcome.Elapsed.Seconds()), outcome.FramesObserved, outcome.TextItems)
}
