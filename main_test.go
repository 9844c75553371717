package telemetry

import (
	"testing"

	"go.uber.org/goleak"
)

// TestMain verifies that Dispose leaves no goroutines behind: the
// flushLoop goroutine, any in-flight persistWG/flushWG worker, and the
// scheduled retry timer must all have wound down by the time a test's
// Dispose call (registered via t.Cleanup in mustDispatcher/mustClient)
// returns.
func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}
