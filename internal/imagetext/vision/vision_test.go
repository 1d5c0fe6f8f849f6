package vision

import (
	"context"
	"encoding/json"
	"image"
	"image/color"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/kontext21/k21/internal/config"
)

func testBitmap() image.Image {
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			img.SetRGBA(x, y, color.RGBA{R: 10, G: 20, B: 30, A: 255})
		}
	}
	return img
}

func TestExtractSendsExpectedRequestAndParsesResponse(t *testing.T) {
	var gotAuth, gotBody string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		var req chatRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		if len(req.Messages) != 1 || len(req.Messages[0].Content) != 2 {
			t.Errorf("unexpected request shape: %+v", req)
		}
		gotBody = req.Messages[0].Content[1].ImageURL.URL

		resp := chatResponse{Choices: []chatChoice{{}}}
		resp.Choices[0].Message.Content = "a red square"
		_ = json.NewEncoder(w).Encode(resp)
	}))
	defer srv.Close()

	cfg := &config.VisionConfig{URL: srv.URL, APIKey: "secret", Model: "gpt-4o"}
	got, err := Extract(context.Background(), testBitmap(), cfg)
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if got != "a red square" {
		t.Errorf("Extract() = %q, want %q", got, "a red square")
	}
	if gotAuth != "Bearer secret" {
		t.Errorf("Authorization header = %q, want %q", gotAuth, "Bearer secret")
	}
	if !strings.HasPrefix(gotBody, "data:image/png;base64,") {
		t.Errorf("image_url.url = %q, want data:image/png;base64,... prefix", gotBody)
	}
}

func TestExtractMissingConfigFails(t *testing.T) {
	cfg := &config.VisionConfig{URL: "https://example.com", Model: "gpt-4o"}
	_, err := Extract(context.Background(), testBitmap(), cfg)
	if err == nil {
		t.Fatal("expected error for missing api_key")
	}
}

func TestExtractNonJSONResponseIsNonFatal(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not json"))
	}))
	defer srv.Close()

	cfg := &config.VisionConfig{URL: srv.URL, APIKey: "k", Model: "m"}
	got, err := Extract(context.Background(), testBitmap(), cfg)
	if err != nil {
		t.Fatalf("Extract() should not return an error on parse failure, got %v", err)
	}
	if !strings.Contains(got, "not json") {
		t.Errorf("Extract() = %q, want diagnostic containing raw body", got)
	}
}
