// Package broadcast implements C7 (Event Broadcaster): fan-out of
// {kind, paths[]} messages to N subscribers without ever blocking the
// producer (spec.md §4.7).
package broadcast

import (
	"sync"
	"sync/atomic"

	"github.com/symbolmap/codemap/internal/types"
)

// DefaultQueueSize bounds each subscriber's pending message queue.
const DefaultQueueSize = 64

// Subscription is a single subscriber's bounded message stream. Receive
// from Events until it is closed.
type Subscription struct {
	id      int64
	events  chan types.UpdateEvent
	lagged  int32
	b       *Broadcaster
	closeMu sync.Once
}

// Events yields update messages for this subscriber.
func (s *Subscription) Events() <-chan types.UpdateEvent {
	return s.events
}

// Lagged reports whether this subscriber's queue has overflowed since the
// flag was last cleared by NotifyRefreshed.
func (s *Subscription) Lagged() bool {
	return atomic.LoadInt32(&s.lagged) != 0
}

// Unsubscribe stops delivery and releases the subscription. Safe to call
// more than once.
func (s *Subscription) Unsubscribe() {
	s.closeMu.Do(func() {
		s.b.remove(s.id)
		close(s.events)
	})
}

// Broadcaster fans committed batches out to subscribers. Grounded on the
// teacher's pervasive non-blocking-channel idiom (bounded channel,
// select/default, atomic counters) rather than one dedicated teacher
// file, since no single teacher component is itself a pub/sub
// broadcaster.
type Broadcaster struct {
	mu        sync.Mutex
	nextID    int64
	subs      map[int64]*Subscription
	queueSize int
}

// New builds a Broadcaster. queueSize <= 0 falls back to DefaultQueueSize.
func New(queueSize int) *Broadcaster {
	if queueSize <= 0 {
		queueSize = DefaultQueueSize
	}
	return &Broadcaster{
		subs:      make(map[int64]*Subscription),
		queueSize: queueSize,
	}
}

// Subscribe registers a new subscriber and returns its Subscription.
func (b *Broadcaster) Subscribe() *Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.nextID
	b.nextID++
	sub := &Subscription{
		id:     id,
		events: make(chan types.UpdateEvent, b.queueSize),
		b:      b,
	}
	b.subs[id] = sub
	return sub
}

func (b *Broadcaster) remove(id int64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.subs, id)
}

// Publish fans msg out to every current subscriber without blocking the
// producer. A subscriber whose queue is full has every queued message
// (and msg itself) discarded and replaced by a single BroadcastRefresh
// event, and is marked lagged (spec.md §4.7).
func (b *Broadcaster) Publish(msg types.UpdateEvent) {
	b.mu.Lock()
	subs := make([]*Subscription, 0, len(b.subs))
	for _, s := range b.subs {
		subs = append(subs, s)
	}
	b.mu.Unlock()

	for _, s := range subs {
		b.deliver(s, msg)
	}
}

func (b *Broadcaster) deliver(s *Subscription, msg types.UpdateEvent) {
	select {
	case s.events <- msg:
		return
	default:
	}

	// Queue full: the subscriber can no longer trust its pending
	// incremental updates, so drain them and replace them with a single
	// BroadcastRefresh message telling it to pull full state, rather than
	// just flipping an internal flag nothing downstream observes
	// (spec.md §6, §8 scenario 6).
	atomic.StoreInt32(&s.lagged, 1)
drain:
	for {
		select {
		case <-s.events:
		default:
			break drain
		}
	}

	select {
	case s.events <- types.UpdateEvent{Kind: types.BroadcastRefresh}:
	default:
		// Another publisher raced us and refilled the queue right after we
		// drained it; give up rather than block. The subscriber is still
		// marked lagged and will be caught by the next overflow.
	}
}

// NotifyRefreshed clears a subscriber's lag flag once it has pulled a
// full refresh, so future Publish calls stop flagging it as lagged.
func (s *Subscription) NotifyRefreshed() {
	atomic.StoreInt32(&s.lagged, 0)
}

// SubscriberCount reports how many subscribers are currently registered.
func (b *Broadcaster) SubscriberCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}
