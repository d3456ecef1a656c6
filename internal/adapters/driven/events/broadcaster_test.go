package events

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/rulebook/internal/core/domain"
)

func TestBroadcaster_DeliversToAllSubscribers(t *testing.T) {
	b := NewBroadcaster(2)
	first, cancelFirst := b.Subscribe()
	defer cancelFirst()
	second, cancelSecond := b.Subscribe()
	defer cancelSecond()

	event := domain.ContentUpdated{Version: "2024.10.1+aaaaaaaa", Locale: "en", Changed: []string{"units"}}
	b.Publish(context.Background(), event)

	assert.Equal(t, event, <-first)
	assert.Equal(t, event, <-second)
}

func TestBroadcaster_SlowSubscriberDropsEvents(t *testing.T) {
	b := NewBroadcaster(1)
	ch, cancel := b.Subscribe()
	defer cancel()

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 5; i++ {
			b.Publish(context.Background(), domain.ContentUpdated{Version: string(rune('a' + i))})
		}
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("publish blocked on a full subscriber")
	}

	got := <-ch
	assert.Equal(t, "a", got.Version)
	assert.Equal(t, uint64(4), b.Dropped())
	select {
	case extra := <-ch:
		t.Fatalf("unexpected queued event %q", extra.Version)
	default:
	}
}

func TestBroadcaster_CancelClosesChannel(t *testing.T) {
	b := NewBroadcaster(0)
	ch, cancel := b.Subscribe()
	require.Equal(t, 1, b.Subscribers())

	cancel()
	cancel()

	_, open := <-ch
	assert.False(t, open)
	assert.Equal(t, 0, b.Subscribers())

	// Publishing after the last subscriber left is a no-op.
	b.Publish(context.Background(), domain.ContentUpdated{Version: "x"})
}
