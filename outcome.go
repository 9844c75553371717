package telemetry

import "github.com/beacontrail/telemetry-go/transport"

// outcome is the result of classifying a transport call against the
// retry classification table: 2xx succeeds, 4xx is terminal, 5xx (or a
// transport-level error) is retryable.
type outcome int

const (
	outcomeSuccess outcome = iota
	outcomeTerminal
	outcomeRetry
)

// classify derives an outcome purely from resp.Status (2xx/4xx/5xx). A
// transport error (sendErr != nil) is always retryable: the batch never
// reached the server, so there is nothing to classify from the status
// code.
func classify(resp transport.Response, sendErr error) outcome {
	if sendErr != nil {
		return outcomeRetry
	}
	switch {
	case resp.Status >= 200 && resp.Status < 300:
		return outcomeSuccess
	case resp.Status >= 400 && resp.Status < 500:
		return outcomeTerminal
	default:
		// 5xx, and any other status the table doesn't name (1xx/3xx from
		// a misbehaving endpoint): treat conservatively as retryable
		// rather than silently dropping events the table never said to
		// drop.
		return outcomeRetry
	}
}
