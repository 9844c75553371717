package telemetry

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRetryDelayFirstAttemptRange(t *testing.T) {
	for i := 0; i < 100; i++ {
		d := retryDelay(0)
		assert.True(t, d >= 1000*time.Millisecond && d < 2000*time.Millisecond, "delay %v out of [1000,2000)ms", d)
	}
}

func TestRetryDelaySecondAttemptRange(t *testing.T) {
	for i := 0; i < 100; i++ {
		d := retryDelay(1)
		assert.True(t, d >= 2000*time.Millisecond && d < 3000*time.Millisecond, "delay %v out of [2000,3000)ms", d)
	}
}

func TestRetryDelayNegativeIndexClampedToZero(t *testing.T) {
	d := retryDelay(-1)
	assert.True(t, d >= 1000*time.Millisecond && d < 2000*time.Millisecond)
}
