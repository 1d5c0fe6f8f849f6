package videosink

import (
	"image"
	"image/color"
	"os"
	"path/filepath"
	"testing"
)

func solidFrame(w, h int, c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, c)
		}
	}
	return img
}

func TestSinkFrameAndSaveResetsBuffer(t *testing.T) {
	sink, err := New(64, 48, 2.0)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer sink.Close()

	if !sink.IsEmpty() {
		t.Fatal("a new sink should start empty")
	}

	for i := 0; i < 4; i++ {
		c := color.RGBA{R: uint8(i * 10), G: 100, B: 200, A: 255}
		if err := sink.Frame(solidFrame(64, 48, c)); err != nil {
			t.Fatalf("Frame() error = %v", err)
		}
	}

	if sink.IsEmpty() {
		t.Fatal("sink should not be empty after encoding frames")
	}
	if got := sink.FrameCount(); got != 4 {
		t.Errorf("FrameCount() = %d, want 4", got)
	}

	dir := t.TempDir()
	path := filepath.Join(dir, "chunk-0.mp4")
	if err := sink.Save(path); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("expected output file to exist: %v", err)
	}
	if info.Size() == 0 {
		t.Error("expected non-empty mp4 output")
	}

	if !sink.IsEmpty() {
		t.Error("Save() should reset the buffer to empty")
	}
	if got := sink.FrameCount(); got != 0 {
		t.Errorf("FrameCount() after Save() = %d, want 0", got)
	}
}

func TestSaveOnEmptySinkFails(t *testing.T) {
	sink, err := New(32, 32, 1.0)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer sink.Close()

	if err := sink.Save(filepath.Join(t.TempDir(), "empty.mp4")); err == nil {
		t.Error("Save() on an empty sink should return an error")
	}
}
