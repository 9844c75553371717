// Package queue implements the Dispatcher's bounded, ordered event
// buffer. It has no concurrency control of its own; the Dispatcher
// holds its own mutex around every call.
package queue

import "github.com/beacontrail/telemetry-go/logging"

// Queue is an ordered in-memory buffer of pending events of type T,
// bounded to the capacity given to New (0 meaning unbounded). Push and
// PushAll never leave it above that capacity; Prepend can, when the
// prepended events alone exceed it (see Prepend). T is a type
// parameter rather than telemetry.Event directly so it can be unit
// tested without importing the root package.
type Queue[T any] struct {
	items []T
	cap   int
	log   logging.Logger
}

// New returns a Queue with the given maximum capacity. A capacity of 0
// means unbounded.
func New[T any](capacity int, log logging.Logger) *Queue[T] {
	if log == nil {
		log = logging.Noop{}
	}
	return &Queue[T]{cap: capacity, log: log}
}

// Push appends event to the tail. If the post-push length exceeds the
// configured capacity, items are evicted from the head until the
// length equals the capacity; the total number dropped by this single
// call is logged once at WARN.
func (q *Queue[T]) Push(event T) {
	q.items = append(q.items, event)
	q.evictExcess()
}

// PushAll appends a sequence to the tail, preserving order, applying
// the same head-eviction policy as Push but logging the aggregate drop
// count for the whole call.
func (q *Queue[T]) PushAll(events []T) {
	q.items = append(q.items, events...)
	q.evictExcess()
}

func (q *Queue[T]) evictExcess() {
	if q.cap <= 0 || len(q.items) <= q.cap {
		return
	}
	drop := len(q.items) - q.cap
	q.items = q.items[drop:]
	q.log.Warn("event queue exceeded capacity; evicted oldest events", "dropped", drop, "capacity", q.cap)
}

// TakeBatch removes and returns up to the first n events in order. It
// returns an empty (nil) slice if the queue is empty.
func (q *Queue[T]) TakeBatch(n int) []T {
	if n <= 0 || len(q.items) == 0 {
		return nil
	}
	if n > len(q.items) {
		n = len(q.items)
	}
	batch := make([]T, n)
	copy(batch, q.items[:n])
	q.items = q.items[n:]
	return batch
}

// Prepend inserts events at the head, preserving their relative order,
// for the retry-requeue path. Prepended events occupy indices
// [0, len(events)) afterward.
//
// If the combined length would exceed the configured capacity, the
// excess is evicted from the *tail* of the combined sequence: already-
// queued events are dropped before any prepended retry event, so retry
// progress is preserved over newly arrived events that haven't been
// attempted yet.
func (q *Queue[T]) Prepend(events []T) {
	if len(events) == 0 {
		return
	}
	combined := make([]T, 0, len(events)+len(q.items))
	combined = append(combined, events...)
	combined = append(combined, q.items...)

	if q.cap > 0 && len(combined) > q.cap {
		dropped := len(combined) - q.cap
		if dropped > len(combined)-len(events) {
			// Would have to drop into the prepended region itself; clamp
			// so retry events always survive as long as any event does.
			dropped = len(combined) - len(events)
		}
		combined = combined[:len(combined)-dropped]
		if dropped > 0 {
			q.log.Warn("event queue exceeded capacity on retry requeue; evicted newest non-retry events",
				"dropped", dropped, "capacity", q.cap)
		}
	}
	q.items = combined
}

// Len returns the current number of buffered events.
func (q *Queue[T]) Len() int { return len(q.items) }

// Clear removes all buffered events.
func (q *Queue[T]) Clear() { q.items = nil }

// Snapshot returns a copy of the queue's current contents in order,
// used for persistence sync. Mutating the returned slice never affects
// the queue.
func (q *Queue[T]) Snapshot() []T {
	out := make([]T, len(q.items))
	copy(out, q.items)
	return out
}
