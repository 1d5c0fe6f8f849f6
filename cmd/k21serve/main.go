// Package main is the HTTP service entry point: it exposes the MP4-ingest
// Frame Pipeline over a small REST API for callers that can't link Go
// directly.
package main

import (
	"encoding/base64"
	"encoding/json"
	"net/http"
	"os"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/kontext21/k21/internal/config"
	k21errors "github.com/kontext21/k21/internal/errors"
	"github.com/kontext21/k21/internal/logging"
	"github.com/kontext21/k21/internal/pipeline"
	"github.com/kontext21/k21/internal/store"
)

// maxUploadBytes bounds the base64 request body the service will accept.
const maxUploadBytes = 1 << 30 // 1 GiB

func main() {
	logging.Init(logging.LevelInfo, os.Stderr)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/ping", handlePing)
	r.Post("/process-video-base64", handleProcessVideoBase64)

	addr := ":" + port
	logging.Info("k21serve listening", "addr", addr)
	if err := http.ListenAndServe(addr, r); err != nil {
		logging.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func handlePing(w http.ResponseWriter, r *http.Request) {
	w.Write([]byte("pong"))
}

type processVideoRequest struct {
	Base64Data string `json:"base64_data"`
}

type processVideoResponse struct {
	Message string            `json:"message"`
	Success bool              `json:"success"`
	Result  []store.ImageData `json:"result,omitempty"`
}

func handleProcessVideoBase64(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)

	var req processVideoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, processVideoResponse{
			Message: "failed to decode request body: " + err.Error(),
		})
		return
	}

	payload := req.Base64Data
	if idx := strings.Index(payload, ";base64,"); idx != -1 {
		payload = payload[idx+len(";base64,"):]
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, processVideoResponse{
			Message: "invalid base64 payload: " + err.Error(),
		})
		return
	}

	cfg := config.NewOcrProcessorConfig()
	st, err := pipeline.RunMP4Bytes(r.Context(), data, cfg)
	if err != nil {
		writeJSON(w, statusForError(err), processVideoResponse{
			Message: "processing failed: " + err.Error(),
		})
		return
	}

	writeJSON(w, http.StatusOK, processVideoResponse{
		Message: "ok",
		Success: true,
		Result:  st.Snapshot(),
	})
}

// statusForError maps a pipeline error's kind to an HTTP status: config
// errors are the caller's fault (400), everything else is ours (500).
func statusForError(err error) int {
	if k21errors.IsConfig(err) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func writeJSON(w http.ResponseWriter, status int, body processVideoResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
