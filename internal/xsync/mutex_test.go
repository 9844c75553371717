package xsync

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAcquireReleaseRoundTrip(t *testing.T) {
	var m Mutex
	require.NoError(t, m.Acquire())
	m.Release()
}

func TestTryAcquireFailsWhileHeld(t *testing.T) {
	var m Mutex
	require.NoError(t, m.Acquire())
	assert.False(t, m.TryAcquire())
	m.Release()
	assert.True(t, m.TryAcquire())
	m.Release()
}

func TestAcquireBlocksUntilReleased(t *testing.T) {
	var m Mutex
	require.NoError(t, m.Acquire())

	acquired := make(chan struct{})
	go func() {
		_ = m.Acquire()
		close(acquired)
	}()

	select {
	case <-acquired:
		t.Fatal("second Acquire returned before first Release")
	case <-time.After(20 * time.Millisecond):
	}

	m.Release()
	select {
	case <-acquired:
	case <-time.After(time.Second):
		t.Fatal("second Acquire never unblocked after Release")
	}
}

func TestDisposeRejectsFurtherAcquire(t *testing.T) {
	var m Mutex
	m.Dispose()
	assert.ErrorIs(t, m.Acquire(), ErrDisposed)
	assert.False(t, m.TryAcquire())
}

func TestDisposeDrainsInFlightHolder(t *testing.T) {
	var m Mutex
	require.NoError(t, m.Acquire())

	var wg sync.WaitGroup
	wg.Add(1)
	disposed := make(chan struct{})
	go func() {
		defer wg.Done()
		m.Dispose()
		close(disposed)
	}()

	select {
	case <-disposed:
		t.Fatal("Dispose returned before in-flight holder released")
	case <-time.After(20 * time.Millisecond):
	}

	m.Release()
	wg.Wait()
}

func TestResetAllowsReuseAfterDispose(t *testing.T) {
	var m Mutex
	m.Dispose()
	m.Reset()
	require.NoError(t, m.Acquire())
	m.Release()
}
