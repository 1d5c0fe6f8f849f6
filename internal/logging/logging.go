package logging

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"
)

// NewFileLogger creates a logger that writes structured log lines to a
// timestamped file under dir, in addition to returning the file handle so
// callers can close it on shutdown. Used by k21screen when --log-dir is
// set; the HTTP service logs to stderr via Init instead.
func NewFileLogger(dir string, level slog.Level) (*Logger, *os.File, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, nil, fmt.Errorf("failed to create log directory %s: %w", dir, err)
	}

	timestamp := time.Now().Format("20060102_150405")
	filePath := filepath.Join(dir, fmt.Sprintf("k21_run_%s.log", timestamp))

	file, err := os.OpenFile(filePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create log file %s: %w", filePath, err)
	}

	logger := New(Config{
		Level:   level,
		Output:  file,
		Enabled: true,
	})
	logger.Info("log file opened", "path", filePath)

	return logger, file, nil
}
