// Package events distributes node activity messages to subscribers. The
// websocket handler subscribes each connected client so it can watch forging
// and transaction processing live.
package events

import (
	"fmt"
	"sync"
)

// Subscribers that fall behind lose messages rather than stall the node. The
// buffer absorbs bursts while a websocket send is in flight.
const subscriberBuffer = 100

// Events maintains the set of subscriber channels keyed by a caller chosen
// unique id.
type Events struct {
	subscribers map[string]chan string
	mu          sync.RWMutex
}

// New constructs an Events value for subscribing and publishing.
func New() *Events {
	return &Events{
		subscribers: make(map[string]chan string),
	}
}

// Subscribe registers the specified id and returns the channel messages will
// arrive on. Subscribing the same id twice returns the existing channel.
func (evt *Events) Subscribe(id string) chan string {
	evt.mu.Lock()
	defer evt.mu.Unlock()

	if ch, exists := evt.subscribers[id]; exists {
		return ch
	}

	ch := make(chan string, subscriberBuffer)
	evt.subscribers[id] = ch
	return ch
}

// Unsubscribe closes and removes the channel registered under the id.
func (evt *Events) Unsubscribe(id string) error {
	evt.mu.Lock()
	defer evt.mu.Unlock()

	ch, exists := evt.subscribers[id]
	if !exists {
		return fmt.Errorf("subscriber %q does not exist", id)
	}

	delete(evt.subscribers, id)
	close(ch)
	return nil
}

// Send publishes a message to every subscriber without blocking. A subscriber
// with a full buffer misses the message.
func (evt *Events) Send(s string) {
	evt.mu.RLock()
	defer evt.mu.RUnlock()

	for _, ch := range evt.subscribers {
		select {
		case ch <- s:
		default:
		}
	}
}

// Shutdown closes and removes every subscriber channel.
func (evt *Events) Shutdown() {
	evt.mu.Lock()
	defer evt.mu.Unlock()

	for id, ch := range evt.subscribers {
		delete(evt.subscribers, id)
		close(ch)
	}
}
