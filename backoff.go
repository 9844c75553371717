package telemetry

import (
	"math/rand"
	"time"
)

const (
	retryBaseDelay = 1000 * time.Millisecond
	retryJitterMax = 1000 // ms
)

// retryDelay computes an exponential-backoff-with-jitter delay:
// baseDelay · 2^attempt + jitter, jitter drawn uniformly from [0, 1000)
// ms. retryIndex is zero for the first retry
// of a given event (i.e. Event.attempts == 1 after the failing
// attempt), one for the second, and so on.
func retryDelay(retryIndex int) time.Duration {
	if retryIndex < 0 {
		retryIndex = 0
	}
	// Cap the exponent so a pathological MaxRetries can't overflow the
	// shift; 20 retries already exceeds any sane config and saturates
	// to a multi-day delay well before that.
	if retryIndex > 20 {
		retryIndex = 20
	}
	exp := retryBaseDelay * time.Duration(int64(1)<<uint(retryIndex))
	jitter := time.Duration(rand.Intn(retryJitterMax)) * time.Millisecond
	return exp + jitter
}
