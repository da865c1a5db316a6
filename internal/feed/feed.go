// Package feed fans habit-list snapshots out to a user's live subscribers.
package feed

import (
	"encoding/json"
	"fmt"
	"io"
	"sync"
	"time"

	"habitsync/internal/models"
)

const (
	EventSnapshot  = "habits"
	EventHeartbeat = "heartbeat"
)

const bufferSize = 16

// Event is one push to a subscriber. Habits is always the full list.
type Event struct {
	Type      string         `json:"type"`
	Habits    []models.Habit `json:"habits,omitempty"`
	Timestamp string         `json:"timestamp"`
}

// Broker is an in-memory pub/sub hub keyed by user id.
type Broker struct {
	mu          sync.RWMutex
	subscribers map[string]map[chan Event]struct{}
	closed      bool
}

func NewBroker() *Broker {
	return &Broker{subscribers: make(map[string]map[chan Event]struct{})}
}

// Subscribe registers a listener for userID and returns its channel and an
// unsubscribe function. The channel is buffered and is closed only by Close.
func (b *Broker) Subscribe(userID string) (<-chan Event, func()) {
	ch := make(chan Event, bufferSize)
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		close(ch)
		return ch, func() {}
	}
	if b.subscribers[userID] == nil {
		b.subscribers[userID] = make(map[chan Event]struct{})
	}
	b.subscribers[userID][ch] = struct{}{}
	b.mu.Unlock()

	var once sync.Once
	unsubscribe := func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			if subs, ok := b.subscribers[userID]; ok {
				delete(subs, ch)
				if len(subs) == 0 {
					delete(b.subscribers, userID)
				}
			}
		})
	}
	return ch, unsubscribe
}

// Publish delivers habits to every subscriber of userID. Slow subscribers have
// their oldest pending snapshot replaced, so a publisher never blocks.
func (b *Broker) Publish(userID string, habits []models.Habit) {
	event := Event{
		Type:      EventSnapshot,
		Habits:    habits,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}

	b.mu.RLock()
	defer b.mu.RUnlock()
	for ch := range b.subscribers[userID] {
		select {
		case ch <- event:
		default:
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- event:
			default:
			}
		}
	}
}

// Close closes every subscriber channel so open streams end. Later subscribers get
// an already closed channel.
func (b *Broker) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	for userID, subs := range b.subscribers {
		for ch := range subs {
			close(ch)
		}
		delete(b.subscribers, userID)
	}
}

func (b *Broker) SubscriberCount(userID string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subscribers[userID])
}

// WriteEvent writes e in text/event-stream framing.
func WriteEvent(w io.Writer, id int64, e Event) error {
	data, err := json.Marshal(e)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "id: %d\nevent: %s\ndata: %s\n\n", id, e.Type, data)
	return err
}
