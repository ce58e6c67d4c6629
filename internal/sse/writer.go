// Package sse provides server-sent event writing for the session stream.
package sse

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// SetupHeaders prepares the response for an event stream and returns the
// flusher. A nil flusher means the transport cannot stream.
func SetupHeaders(w http.ResponseWriter) http.Flusher {
	flusher, ok := w.(http.Flusher)
	if !ok {
		return nil
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	return flusher
}

// WriteEvent writes a named SSE event to the response writer
func WriteEvent(w http.ResponseWriter, flusher http.Flusher, event string, data any) error {
	jsonData, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to marshal data: %w", err)
	}

	fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, jsonData)
	flusher.Flush()

	return nil
}
