package server

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/desertthunder/arx/internal/shared"
	"github.com/desertthunder/arx/internal/tasks"
)

// StreamEmitter writes progress events as server-sent event frames.
//
// Each event is serialized to compact JSON and written as `data: <JSON>\n\n`,
// then flushed, so the consumer observes progress before the run completes.
// Writes are serialized behind a mutex since concurrently running channel
// tasks emit into the same stream.
type StreamEmitter struct {
	mu      sync.Mutex
	w       io.Writer
	flusher http.Flusher
}

// NewStreamEmitter creates an emitter over the given writer. The flusher may
// be nil, in which case events are written without explicit flushing.
func NewStreamEmitter(w io.Writer, flusher http.Flusher) *StreamEmitter {
	return &StreamEmitter{w: w, flusher: flusher}
}

// Emit implements [tasks.Emitter].
func (s *StreamEmitter) Emit(event any) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := fmt.Fprintf(s.w, "data: %s\n\n", payload); err != nil {
		return fmt.Errorf("failed to write event: %w", err)
	}
	if s.flusher != nil {
		s.flusher.Flush()
	}
	return nil
}

// CompareHandler streams a two-user block comparison as server-sent events.
// Implements the [Handler] interface for registration with a Router.
type CompareHandler struct {
	engine   tasks.CompareEngine
	logger   *log.Logger
	defaults shared.CompareConfig
}

// NewCompareHandler creates the comparison stream handler.
func NewCompareHandler(engine tasks.CompareEngine, logger *log.Logger, defaults shared.CompareConfig) *CompareHandler {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	if defaults.ConcurrencyLimit <= 0 {
		defaults.ConcurrencyLimit = tasks.DefaultConcurrencyLimit
	}
	if defaults.MaxChannels <= 0 {
		defaults.MaxChannels = tasks.DefaultMaxChannels
	}
	return &CompareHandler{engine: engine, logger: logger, defaults: defaults}
}

// Routes returns the HTTP routes this handler serves.
func (h *CompareHandler) Routes() []string {
	return []string{"/api/compare-blocks"}
}

// ServeHTTP validates the request, opens the event stream, and runs the
// comparison to completion.
//
// Validation failures reject with a 400 JSON body before any stream opens.
// Once the stream is open every outcome, including a catastrophic failure,
// ends with a terminal payload and a clean close.
func (h *CompareHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	user1 := query.Get("user1")
	user2 := query.Get("user2")

	if user1 == "" || user2 == "" {
		writeJSONError(w, http.StatusBadRequest, "Both user1 and user2 parameters are required")
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		writeJSONError(w, http.StatusInternalServerError, "Streaming is not supported")
		return
	}

	opts := tasks.CompareOptions{
		User1:            user1,
		User2:            user2,
		ConcurrencyLimit: positiveIntParam(query.Get("concurrencyLimit"), h.defaults.ConcurrencyLimit),
		MaxChannels:      positiveIntParam(query.Get("maxSortedChannels"), h.defaults.MaxChannels),
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache, no-transform")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	emitter := NewStreamEmitter(w, flusher)

	if _, err := h.engine.Compare(r.Context(), emitter, opts); err != nil {
		if r.Context().Err() != nil {
			h.logger.Debug("consumer disconnected", "user1", user1, "user2", user2)
			return
		}

		h.logger.Error("comparison failed", "user1", user1, "user2", user2, "err", err)
		// Best effort: the stream may already be gone.
		_ = emitter.Emit(tasks.StreamError{Error: "An error occurred while comparing blocks"})
	}
}

// positiveIntParam parses a query value, falling back to fallback for empty,
// unparseable, or non-positive input.
func positiveIntParam(value string, fallback int) int {
	if value == "" {
		return fallback
	}
	n, err := strconv.Atoi(value)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}

func writeJSONError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}
