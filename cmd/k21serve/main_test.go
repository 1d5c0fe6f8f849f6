package main

import (
	"errors"
	"net/http"
	"testing"

	k21errors "github.com/kontext21/k21/internal/errors"
)

func TestStatusForErrorMapsConfigToBadRequest(t *testing.T) {
	err := k21errors.NewConfigError("missing vision url")
	if got := statusForError(err); got != http.StatusBadRequest {
		t.Errorf("statusForError(config error) = %d, want %d", got, http.StatusBadRequest)
	}
}

func TestStatusForErrorMapsOtherKindsToInternalError(t *testing.T) {
	tests := []error{
		k21errors.NewFatalError("bad mp4", errors.New("no h264 track")),
		k21errors.NewProcessingError("ocr failed", errors.New("tesseract crashed")),
		errors.New("unrelated plain error"),
	}
	for _, err := range tests {
		if got := statusForError(err); got != http.StatusInternalServerError {
			t.Errorf("statusForError(%v) = %d, want %d", err, got, http.StatusInternalServerError)
		}
	}
}
