package imagetext

import (
	"context"
	"encoding/json"
	"image"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/kontext21/k21/internal/config"
	k21errors "github.com/kontext21/k21/internal/errors"
)

func TestExtractValidatesConfigFirst(t *testing.T) {
	bitmap := image.NewRGBA(image.Rect(0, 0, 2, 2))
	cfg := &config.ProcessorConfig{ProcessingType: config.ProcessingVision}

	_, err := Extract(context.Background(), bitmap, cfg)
	if err == nil || !k21errors.IsConfig(err) {
		t.Errorf("Extract() with nil VisionConfig should fail validation, got %v", err)
	}
}

func TestExtractDispatchesToVision(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		resp := map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"content": "dispatched"}},
			},
		}
		_ = json.NewEncoder(w).Encode(resp)
	}))
	defer srv.Close()

	bitmap := image.NewRGBA(image.Rect(0, 0, 2, 2))
	cfg := config.NewVisionProcessorConfig(&config.VisionConfig{URL: srv.URL, APIKey: "k", Model: "m"})

	got, err := Extract(context.Background(), bitmap, cfg)
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if got != "dispatched" {
		t.Errorf("Extract() = %q, want %q", got, "dispatched")
	}
}

func TestExtractUnknownProcessingTypeFails(t *testing.T) {
	bitmap := image.NewRGBA(image.Rect(0, 0, 2, 2))
	cfg := &config.ProcessorConfig{ProcessingType: config.ProcessingType(99)}

	_, err := Extract(context.Background(), bitmap, cfg)
	if err == nil || !k21errors.IsConfig(err) {
		t.Errorf("Extract() with unknown processing type should be a config error, got %v", err)
	}
}
