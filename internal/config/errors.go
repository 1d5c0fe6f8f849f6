package config

import "errors"

// Sentinel errors for configuration validation. The Validate methods in
// this package return structured CoreError values, not these sentinels.
var (
	// ErrMissingProcessorBackend indicates neither OCR nor vision config was
	// supplied for the selected processing type.
	ErrMissingProcessorBackend = errors.New("processor config missing backend for processing type")

	// ErrInvalidFPS indicates a non-positive fps value.
	ErrInvalidFPS = errors.New("fps must be positive")

	// ErrInvalidQuality indicates a quality value outside 1-100.
	ErrInvalidQuality = errors.New("quality must be between 1 and 100")
)
