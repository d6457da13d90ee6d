package services

import (
	"sync"

	"github.com/blockwarden/backend/internal/domain"
)

type EventKind string

const (
	EventCommandCreated EventKind = "command.created"
	EventCommandAcked   EventKind = "command.acked"
)

// Event is pushed to UI subscribers when a command changes state.
type Event struct {
	Kind    EventKind       `json:"kind"`
	Command *domain.Command `json:"command"`
}

// Broadcaster fans command events out to websocket subscribers. Publishing
// never blocks: a subscriber that cannot keep up drops events.
type Broadcaster struct {
	mu   sync.Mutex
	subs map[chan Event]struct{}
}

func NewBroadcaster() *Broadcaster {
	return &Broadcaster{subs: make(map[chan Event]struct{})}
}

func (b *Broadcaster) Subscribe() (<-chan Event, func()) {
	ch := make(chan Event, 16)
	b.mu.Lock()
	b.subs[ch] = struct{}{}
	b.mu.Unlock()

	cancel := func() {
		b.mu.Lock()
		if _, ok := b.subs[ch]; ok {
			delete(b.subs, ch)
			close(ch)
		}
		b.mu.Unlock()
	}
	return ch, cancel
}

func (b *Broadcaster) Publish(ev Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for ch := range b.subs {
		select {
		case ch <- ev:
		default:
		}
	}
}
