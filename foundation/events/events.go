// Package events allows for the registering and receiving of ledger events
// such as mined blocks and submitted transactions.
package events

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// receiverBuffer is the number of events a receiver can fall behind before
// events are dropped for that receiver.
const receiverBuffer = 100

// Event is a single ledger event as delivered to receivers.
type Event struct {
	ID      string    `json:"id"`
	Seq     uint64    `json:"seq"`
	Time    time.Time `json:"time"`
	Message string    `json:"message"`
}

// Events fans out ledger events to a set of registered receivers, keyed by
// a unique id such as a request trace id.
type Events struct {
	mu        sync.RWMutex
	receivers map[string]chan Event
	seq       uint64
	dropped   uint64
}

// New constructs an Events for registering and receiving events.
func New() *Events {
	return &Events{
		receivers: make(map[string]chan Event),
	}
}

// Shutdown closes and removes every receiver.
func (evt *Events) Shutdown() {
	evt.mu.Lock()
	defer evt.mu.Unlock()

	for id, ch := range evt.receivers {
		delete(evt.receivers, id)
		close(ch)
	}
}

// Acquire registers a receiver for the id and returns its channel. Calling
// Acquire again with the same id returns the same channel.
func (evt *Events) Acquire(id string) <-chan Event {
	evt.mu.Lock()
	defer evt.mu.Unlock()

	ch, exists := evt.receivers[id]
	if !exists {
		ch = make(chan Event, receiverBuffer)
		evt.receivers[id] = ch
	}

	return ch
}

// Release closes and removes the receiver for the id.
func (evt *Events) Release(id string) error {
	evt.mu.Lock()
	defer evt.mu.Unlock()

	ch, exists := evt.receivers[id]
	if !exists {
		return fmt.Errorf("id %q does not exist", id)
	}

	delete(evt.receivers, id)
	close(ch)
	return nil
}

// Count returns the number of registered receivers.
func (evt *Events) Count() int {
	evt.mu.RLock()
	defer evt.mu.RUnlock()

	return len(evt.receivers)
}

// Dropped returns the number of deliveries skipped because a receiver's
// buffer was full.
func (evt *Events) Dropped() uint64 {
	evt.mu.RLock()
	defer evt.mu.RUnlock()

	return evt.dropped
}

// Send stamps the message with an id and the next sequence number and
// delivers it to every receiver. Send never blocks on a slow receiver, the
// event is dropped for that receiver instead.
func (evt *Events) Send(message string) Event {
	evt.mu.Lock()
	defer evt.mu.Unlock()

	evt.seq++
	e := Event{
		ID:      uuid.NewString(),
		Seq:     evt.seq,
		Time:    time.Now().UTC(),
		Message: message,
	}

	for _, ch := range evt.receivers {
		select {
		case ch <- e:
		default:
			evt.dropped++
		}
	}

	return e
}
