package server

import (
	"sync"

	"github.com/dgellow/firebase-front/internal/session"
)

// Toast is a transient advisory forwarded to connected clients
type Toast struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Destructive bool   `json:"destructive,omitempty"`
}

// Event is a single entry on the client event stream
type Event struct {
	Type  string        `json:"type"`
	Toast *Toast        `json:"toast,omitempty"`
	Path  string        `json:"path,omitempty"`
	User  *session.User `json:"user,omitempty"`
}

// Events fans server-side UI events (toasts, navigations, auth changes) out
// to the SSE stream. Slow subscribers drop events instead of blocking the
// publisher.
type Events struct {
	mu     sync.Mutex
	subs   map[int]chan Event
	nextID int
}

// NewEvents creates an empty event feed
func NewEvents() *Events {
	return &Events{subs: make(map[int]chan Event)}
}

// Subscribe returns a channel of future events and an unsubscribe function
func (e *Events) Subscribe() (<-chan Event, func()) {
	e.mu.Lock()
	id := e.nextID
	e.nextID++
	ch := make(chan Event, 16)
	e.subs[id] = ch
	e.mu.Unlock()

	return ch, func() {
		e.mu.Lock()
		delete(e.subs, id)
		e.mu.Unlock()
	}
}

// Publish delivers ev to every subscriber, dropping it for full buffers
func (e *Events) Publish(ev Event) {
	e.mu.Lock()
	subs := make([]chan Event, 0, len(e.subs))
	for _, ch := range e.subs {
		subs = append(subs, ch)
	}
	e.mu.Unlock()

	for _, ch := range subs {
		select {
		case ch <- ev:
		default:
		}
	}
}

// PublishToast publishes a toast event
func (e *Events) PublishToast(title, description string, destructive bool) {
	e.Publish(Event{Type: "toast", Toast: &Toast{Title: title, Description: description, Destructive: destructive}})
}

// PublishNavigate publishes a navigation event
func (e *Events) PublishNavigate(path string) {
	e.Publish(Event{Type: "navigate", Path: path})
}
