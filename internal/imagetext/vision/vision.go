// Package vision implements the remote vision-model text-extraction
// backend: base64-encode a bitmap as PNG and POST a chat-completion-style
// request to the configured endpoint.
package vision

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"image"
	"image/png"
	"io"
	"net/http"

	"github.com/kontext21/k21/internal/config"
	k21errors "github.com/kontext21/k21/internal/errors"
)

type contentPart struct {
	Type     string    `json:"type"`
	Text     string    `json:"text,omitempty"`
	ImageURL *imageURL `json:"image_url,omitempty"`
}

type imageURL struct {
	URL string `json:"url"`
}

type message struct {
	Role    string        `json:"role"`
	Content []contentPart `json:"content"`
}

type chatRequest struct {
	Model    string    `json:"model"`
	Messages []message `json:"messages"`
}

type chatChoice struct {
	Message struct {
		Content string `json:"content"`
	} `json:"message"`
}

type chatResponse struct {
	Choices []chatChoice `json:"choices"`
}

// Extract POSTs bitmap as a base64 PNG to cfg.URL and returns the model's
// text response. Parse failures are non-fatal: the function returns a
// diagnostic string embedding the raw response body instead of an error.
func Extract(ctx context.Context, bitmap image.Image, cfg *config.VisionConfig) (string, error) {
	if err := cfg.Validate(); err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, bitmap); err != nil {
		return "", k21errors.NewProcessingError("failed to encode bitmap for vision request", err)
	}
	dataURL := "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes())

	reqBody := chatRequest{
		Model: cfg.Model,
		Messages: []message{
			{
				Role: "user",
				Content: []contentPart{
					{Type: "text", Text: cfg.EffectivePrompt()},
					{Type: "image_url", ImageURL: &imageURL{URL: dataURL}},
				},
			},
		},
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return "", k21errors.NewProcessingError("failed to marshal vision request", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, cfg.URL, bytes.NewReader(payload))
	if err != nil {
		return "", k21errors.NewProcessingError("failed to build vision request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+cfg.APIKey)

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return "", k21errors.NewProcessingError("vision request failed", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", k21errors.NewProcessingError("failed to read vision response", err)
	}

	var parsed chatResponse
	if err := json.Unmarshal(body, &parsed); err != nil || len(parsed.Choices) == 0 {
		return fmt.Sprintf("vision response could not be parsed: %s", string(body)), nil
	}

	return parsed.Choices[0].Message.Content, nil
}
