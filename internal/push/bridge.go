package push

import "sync"

// Message is a foreground push payload
type Message struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

// Bridge fans foreground messages out to subscribers, standing in for the
// messaging SDK's onMessage stream. The send endpoint feeds it so delivered
// notifications surface in the dashboard immediately.
type Bridge struct {
	mu     sync.Mutex
	subs   map[int]func(Message)
	nextID int
}

// NewBridge creates an empty bridge
func NewBridge() *Bridge {
	return &Bridge{subs: make(map[int]func(Message))}
}

// Subscribe registers fn for future messages. The returned function
// unsubscribes; a delivery in flight on another goroutine may still arrive
// once after it returns.
func (b *Bridge) Subscribe(fn func(Message)) (unsubscribe func()) {
	b.mu.Lock()
	id := b.nextID
	b.nextID++
	b.subs[id] = fn
	b.mu.Unlock()

	return func() {
		b.mu.Lock()
		delete(b.subs, id)
		b.mu.Unlock()
	}
}

// Deliver hands msg to every subscriber
func (b *Bridge) Deliver(msg Message) {
	b.mu.Lock()
	subs := make([]func(Message), 0, len(b.subs))
	for _, fn := range b.subs {
		subs = append(subs, fn)
	}
	b.mu.Unlock()

	for _, fn := range subs {
		fn(msg)
	}
}
