package backend

import (
	"github.com/dgellow/firebase-front/internal/log"
)

// Analytics is the analytics handle. Activation is best-effort; when the
// environment does not support analytics the handle is a no-op and event
// logging silently drops. Analytics ingestion itself is the provider's
// concern, not ours.
type Analytics struct {
	enabled       bool
	measurementID string
}

// Enabled reports whether analytics activation succeeded
func (a *Analytics) Enabled() bool {
	return a.enabled
}

// LogEvent records an analytics event. No-op when disabled.
func (a *Analytics) LogEvent(name string, params map[string]any) {
	if !a.enabled {
		return
	}

	fields := map[string]any{
		"event":         name,
		"measurementId": a.measurementID,
	}
	for k, v := range params {
		fields["param_"+k] = v
	}
	log.LogDebugWithFields("analytics", "Event recorded", fields)
}
