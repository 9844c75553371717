package queue

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/beacontrail/telemetry-go/logging"
)

func TestPushOrderPreserved(t *testing.T) {
	q := New[int](0, logging.Noop{})
	q.Push(1)
	q.Push(2)
	q.Push(3)
	assert.Equal(t, 3, q.Len())
	assert.Equal(t, []int{1, 2, 3}, q.Snapshot())
}

func TestPushEvictsFromHeadWhenOverCapacity(t *testing.T) {
	q := New[string](2, logging.Noop{})
	q.Push("a")
	q.Push("b")
	q.Push("c")
	assert.Equal(t, []string{"b", "c"}, q.Snapshot())
}

func TestTakeBatchRemovesInOrder(t *testing.T) {
	q := New[int](0, logging.Noop{})
	q.PushAll([]int{1, 2, 3, 4})
	batch := q.TakeBatch(2)
	assert.Equal(t, []int{1, 2}, batch)
	assert.Equal(t, []int{3, 4}, q.Snapshot())
}

func TestTakeBatchOnEmptyQueueReturnsEmpty(t *testing.T) {
	q := New[int](0, logging.Noop{})
	assert.Empty(t, q.TakeBatch(5))
}

func TestPrependPlacesEventsAtHead(t *testing.T) {
	q := New[int](0, logging.Noop{})
	q.PushAll([]int{3, 4})
	q.Prepend([]int{1, 2})
	assert.Equal(t, []int{1, 2, 3, 4}, q.Snapshot())
}

func TestPrependEvictsNewestQueuedEventsBeforePrependedOnes(t *testing.T) {
	q := New[int](3, logging.Noop{})
	q.PushAll([]int{10, 20, 30})
	// Prepending 2 retry events over a cap of 3 must drop from the tail
	// of the combined sequence (the most recently queued events), never
	// the prepended retry events.
	q.Prepend([]int{1, 2})
	assert.Equal(t, []int{1, 2, 10}, q.Snapshot())
}

func TestPrependNeverDropsPrependedEventsEvenWhenTheyAloneExceedCapacity(t *testing.T) {
	q := New[int](2, logging.Noop{})
	q.PushAll([]int{10, 20, 30})
	q.Prepend([]int{1, 2, 3})
	assert.Equal(t, []int{1, 2, 3}, q.Snapshot())
}

func TestClear(t *testing.T) {
	q := New[int](0, logging.Noop{})
	q.PushAll([]int{1, 2, 3})
	q.Clear()
	assert.Equal(t, 0, q.Len())
}
