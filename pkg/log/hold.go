package log

import (
	"fmt"
	"io"
	"sync"
)

// HoldWriter is an [io.Writer] that queues writes while held and passes them
// through to its destination otherwise. It keeps log output from corrupting
// interactive terminal prompts.
type HoldWriter struct {
	dst     io.Writer
	pending [][]byte
	limit   int
	dropped int
	mu      sync.Mutex
	held    bool
}

// NewHoldWriter creates a [HoldWriter] that queues at most limit writes while
// held, discarding the oldest beyond that. A non-positive limit keeps 100.
func NewHoldWriter(dst io.Writer, limit int) *HoldWriter {
	if limit <= 0 {
		limit = 100
	}

	return &HoldWriter{dst: dst, limit: limit}
}

// Hold starts queueing writes.
func (h *HoldWriter) Hold() {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.held = true
}

// Release writes queued entries in order and resumes pass-through. It returns
// the number of entries discarded while held.
func (h *HoldWriter) Release() (int, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.held = false
	dropped := h.dropped
	pending := h.pending
	h.pending, h.dropped = nil, 0

	for _, p := range pending {
		_, err := h.dst.Write(p)
		if err != nil {
			return dropped, fmt.Errorf("write held entry: %w", err)
		}
	}

	return dropped, nil
}

// Write implements [io.Writer].
func (h *HoldWriter) Write(p []byte) (int, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if !h.held {
		n, err := h.dst.Write(p)
		if err != nil {
			return n, fmt.Errorf("write: %w", err)
		}

		return n, nil
	}

	if len(h.pending) == h.limit {
		h.pending = h.pending[1:]
		h.dropped++
	}

	h.pending = append(h.pending, append([]byte(nil), p...))

	return len(p), nil
}
