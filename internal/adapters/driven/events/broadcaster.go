// Package events provides an in-process broadcaster for content update
// notifications. It implements the driven EventPublisher port and the
// driving EventSubscriber port.
package events

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/custodia-labs/rulebook/internal/core/domain"
	"github.com/custodia-labs/rulebook/internal/core/ports/driven"
	"github.com/custodia-labs/rulebook/internal/core/ports/driving"
	"github.com/custodia-labs/rulebook/internal/logger"
)

// Verify interface compliance.
var (
	_ driven.EventPublisher   = (*Broadcaster)(nil)
	_ driving.EventSubscriber = (*Broadcaster)(nil)
)

// DefaultBuffer is the per-subscriber queue length.
const DefaultBuffer = 8

// Broadcaster fans out ContentUpdated events to subscribers.
// A subscriber whose queue is full misses the event.
type Broadcaster struct {
	mu      sync.RWMutex
	subs    map[uint64]chan domain.ContentUpdated
	nextID  uint64
	buffer  int
	dropped atomic.Uint64
}

// NewBroadcaster creates a broadcaster with the given per-subscriber buffer.
func NewBroadcaster(buffer int) *Broadcaster {
	if buffer <= 0 {
		buffer = DefaultBuffer
	}
	return &Broadcaster{
		subs:   make(map[uint64]chan domain.ContentUpdated),
		buffer: buffer,
	}
}

// Subscribe registers a subscriber. The returned cancel function removes it
// and closes the channel; calling it more than once is safe.
func (b *Broadcaster) Subscribe() (<-chan domain.ContentUpdated, func()) {
	b.mu.Lock()
	id := b.nextID
	b.nextID++
	ch := make(chan domain.ContentUpdated, b.buffer)
	b.subs[id] = ch
	b.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.subs, id)
			b.mu.Unlock()
			close(ch)
		})
	}
}

// Publish delivers event to every subscriber without blocking.
func (b *Broadcaster) Publish(_ context.Context, event domain.ContentUpdated) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for id, ch := range b.subs {
		select {
		case ch <- event:
		default:
			b.dropped.Add(1)
			logger.Debug("events: subscriber %d is behind, dropping %s", id, event.Version)
		}
	}
}

// Dropped returns how many deliveries were skipped because a subscriber
// was behind.
func (b *Broadcaster) Dropped() uint64 {
	return b.dropped.Load()
}

// Subscribers returns the number of active subscribers.
func (b *Broadcaster) Subscribers() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}
