// Package session tracks the authenticated user and fans auth-state changes
// out to observers, mirroring the backend provider's session-change stream.
package session

import (
	"sync"
	"time"
)

// User is a read-only snapshot of the backend's session user. The backend
// owns and mutates the canonical record; observers only ever see copies.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	DisplayName  string    `json:"displayName,omitempty"`
	PhotoURL     string    `json:"photoURL,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
	LastSignInAt time.Time `json:"lastSignInAt"`
	ProviderID   string    `json:"providerId"`
}

// Hub is the auth-state change stream. Observers subscribe with a callback
// and receive the current state immediately, then every subsequent change.
type Hub struct {
	mu      sync.Mutex
	current *User
	subs    map[int]func(*User)
	nextID  int
}

// NewHub creates an empty hub with no signed-in user
func NewHub() *Hub {
	return &Hub{subs: make(map[int]func(*User))}
}

// Observe subscribes fn to auth-state changes. The current state is
// delivered synchronously before Observe returns, matching the backend
// SDK's subscribe-then-fire behavior. The returned function unsubscribes;
// a delivery already in flight on another goroutine may still arrive once
// after it returns, so callbacks must tolerate one stale invocation.
func (h *Hub) Observe(fn func(*User)) (unsubscribe func()) {
	h.mu.Lock()
	id := h.nextID
	h.nextID++
	h.subs[id] = fn
	current := h.current
	h.mu.Unlock()

	fn(copyUser(current))

	return func() {
		h.mu.Lock()
		delete(h.subs, id)
		h.mu.Unlock()
	}
}

// Set records a sign-in (non-nil user) or sign-out (nil) and notifies all
// observers with their own copy of the snapshot.
func (h *Hub) Set(u *User) {
	h.mu.Lock()
	h.current = copyUser(u)
	subs := make([]func(*User), 0, len(h.subs))
	for _, fn := range h.subs {
		subs = append(subs, fn)
	}
	h.mu.Unlock()

	for _, fn := range subs {
		fn(copyUser(u))
	}
}

// Current returns a copy of the signed-in user, or nil
func (h *Hub) Current() *User {
	h.mu.Lock()
	defer h.mu.Unlock()
	return copyUser(h.current)
}

func copyUser(u *User) *User {
	if u == nil {
		return nil
	}
	c := *u
	return &c
}
