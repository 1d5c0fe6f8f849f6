// Package store implements the shared, append-only collection of
// text-extraction results produced during a pipeline run.
package store

import (
	"sync"
	"time"
)

// ProcessingType mirrors config.ProcessingType without importing config,
// keeping store a leaf package the way the teacher's own leaf packages
// avoid reaching back up the dependency graph.
type ProcessingType string

const (
	ProcessingOCR    ProcessingType = "OCR"
	ProcessingVision ProcessingType = "Vision"
)

// ImageData is one text-extraction result: immutable once appended.
type ImageData struct {
	Timestamp      string         `json:"timestamp"`
	FrameNumber    uint64         `json:"frame_number"`
	Content        string         `json:"content"`
	ProcessingType ProcessingType `json:"processing_type"`
}

// NewImageData builds an ImageData stamped with the current local time at
// second resolution, matching the spec's human-readable timestamp field.
func NewImageData(frameNumber uint64, content string, pt ProcessingType) ImageData {
	return ImageData{
		Timestamp:      time.Now().Local().Format("2006-01-02 15:04:05"),
		FrameNumber:    frameNumber,
		Content:        content,
		ProcessingType: pt,
	}
}

// Store is the shared, append-only ResultStore: many concurrent
// text-extraction tasks append to it, and the caller reads a snapshot once
// the run completes. The lock is held only across a single append or
// snapshot copy, never across an await/blocking call.
type Store struct {
	mu   sync.Mutex
	data []ImageData
}

// New returns an empty Store.
func New() *Store {
	return &Store{}
}

// Append adds one result. Ordering across concurrent appenders is
// completion order, not frame order; callers needing frame order must sort
// the snapshot by FrameNumber themselves.
func (s *Store) Append(item ImageData) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data = append(s.data, item)
}

// Snapshot returns a copy of the accumulated results in their current
// (completion) order. The returned slice is safe to read and mutate
// independently of the store.
func (s *Store) Snapshot() []ImageData {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]ImageData, len(s.data))
	copy(out, s.data)
	return out
}

// Len returns the number of results appended so far.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.data)
}
