package k21

import "testing"

func TestNewCaptureConfigAppliesOptions(t *testing.T) {
	cfg := NewCaptureConfig(
		WithFPS(5),
		WithDurationSeconds(10),
		WithChunkSeconds(2),
		WithQuality(50),
		WithMonitorID(1),
		WithVideoDir("/tmp/video"),
		WithScreenshotDir("/tmp/shots"),
	)

	if cfg.FPS != 5 {
		t.Errorf("FPS = %v, want 5", cfg.FPS)
	}
	if cfg.DurationSeconds != 10 {
		t.Errorf("DurationSeconds = %v, want 10", cfg.DurationSeconds)
	}
	if cfg.ChunkSeconds == nil || *cfg.ChunkSeconds != 2 {
		t.Errorf("ChunkSeconds = %v, want 2", cfg.ChunkSeconds)
	}
	if cfg.Quality != 50 {
		t.Errorf("Quality = %v, want 50", cfg.Quality)
	}
	if cfg.MonitorID != 1 {
		t.Errorf("MonitorID = %v, want 1", cfg.MonitorID)
	}
	if cfg.VideoDir != "/tmp/video" {
		t.Errorf("VideoDir = %q, want /tmp/video", cfg.VideoDir)
	}
	if cfg.ScreenshotDir != "/tmp/shots" {
		t.Errorf("ScreenshotDir = %q, want /tmp/shots", cfg.ScreenshotDir)
	}
}

func TestNewOCRConfigValidates(t *testing.T) {
	cfg := NewOCRConfig()
	if err := cfg.Validate(); err != nil {
		t.Errorf("NewOCRConfig().Validate() error = %v", err)
	}
}

func TestNewVisionConfigRequiresAllFields(t *testing.T) {
	cfg := NewVisionConfig("", "key", "model")
	if err := cfg.Validate(); err == nil {
		t.Error("expected validation error for missing url")
	}

	cfg = NewVisionConfig("http://example.com", "key", "model")
	if err := cfg.Validate(); err != nil {
		t.Errorf("NewVisionConfig().Validate() error = %v", err)
	}
}
