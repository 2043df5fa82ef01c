package broadcast

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/symbolmap/codemap/internal/types"
)

func TestPublishDeliversToAllSubscribers(t *testing.T) {
	b := New(DefaultQueueSize)
	s1 := b.Subscribe()
	s2 := b.Subscribe()
	defer s1.Unsubscribe()
	defer s2.Unsubscribe()

	msg := types.UpdateEvent{Kind: types.BroadcastUpdate, Paths: []string{"a.go"}}
	b.Publish(msg)

	for _, s := range []*Subscription{s1, s2} {
		select {
		case got := <-s.Events():
			require.Equal(t, []string{"a.go"}, got.Paths)
		case <-time.After(time.Second):
			t.Fatal("timed out waiting for delivery")
		}
	}
}

func TestUnsubscribeStopsDelivery(t *testing.T) {
	b := New(DefaultQueueSize)
	s := b.Subscribe()
	s.Unsubscribe()

	require.Equal(t, 0, b.SubscriberCount())

	// Unsubscribe must be idempotent.
	s.Unsubscribe()

	// Channel should be closed, not hang.
	select {
	case _, ok := <-s.Events():
		require.False(t, ok, "expected closed channel after Unsubscribe")
	case <-time.After(time.Second):
		t.Fatal("reading from an unsubscribed channel should not block")
	}
}

func TestFullQueueOverflowDeliversSingleRefresh(t *testing.T) {
	b := New(2)
	s := b.Subscribe()
	defer s.Unsubscribe()

	b.Publish(types.UpdateEvent{Paths: []string{"1"}})
	b.Publish(types.UpdateEvent{Paths: []string{"2"}})
	b.Publish(types.UpdateEvent{Paths: []string{"3"}})

	require.True(t, s.Lagged(), "expected subscriber to be marked lagged once its queue overflowed")

	// Once a subscriber overflows, its stale pending updates are replaced
	// by a single refresh message actually delivered on the stream.
	got := <-s.Events()
	require.Equal(t, types.BroadcastRefresh, got.Kind, "expected a refresh message once the queue overflowed")

	select {
	case extra := <-s.Events():
		t.Fatalf("expected exactly one message after overflow, got extra %+v", extra)
	default:
	}

	s.NotifyRefreshed()
	require.False(t, s.Lagged(), "NotifyRefreshed should clear the lag flag")
}

func TestPublishNeverBlocksProducer(t *testing.T) {
	b := New(1)
	s := b.Subscribe()
	defer s.Unsubscribe()

	done := make(chan struct{})
	go func() {
		for i := 0; i < 100; i++ {
			b.Publish(types.UpdateEvent{Paths: []string{"x"}})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Publish blocked despite a non-draining subscriber")
	}
}
