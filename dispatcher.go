package telemetry

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/beacontrail/telemetry-go/internal/queue"
	"github.com/beacontrail/telemetry-go/internal/xsync"
	"github.com/beacontrail/telemetry-go/logging"
	"github.com/beacontrail/telemetry-go/persistence"
	"github.com/beacontrail/telemetry-go/transport"
)

// Dispatcher owns the event lifecycle from enqueue to acknowledged
// delivery (or terminal drop): buffered, batched, retrying, persisted,
// with a single in-flight flush and a clean re-entrant lifecycle.
//
// Quick queue/state mutations are guarded by mu, a plain sync.Mutex
// kept held only for O(1) critical sections. flushMu is a single-owner
// Mutex primitive, reserved for serializing the flush critical section,
// including the transport call itself: holding it across the whole
// call is simpler than releasing it around the network request, at
// the cost of a little throughput under concurrent Flush calls.
type Dispatcher struct {
	cfg Config
	log logging.Logger

	mu    sync.Mutex
	st    state
	queue *queue.Queue[Event]

	flushMu xsync.Mutex

	persistMu sync.Mutex
	persistWG sync.WaitGroup
	flushWG   sync.WaitGroup

	retryMu    sync.Mutex
	retryTimer *time.Timer

	bgCancel context.CancelFunc
	bg       *errgroup.Group
}

// NewDispatcher constructs a Dispatcher in the Uninitialized state. cfg
// must already have had defaults applied (see Config.withDefaults) and
// pass Validate.
func NewDispatcher(cfg Config) *Dispatcher {
	return &Dispatcher{
		cfg: cfg,
		log: cfg.Logger,
	}
}

// State reports the Dispatcher's current lifecycle state.
func (d *Dispatcher) State() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.st.String()
}

// Init is idempotent: a second call while Running is a no-op, and a
// call from Disposed cleanly re-initializes. A call while Initializing
// (from another goroutine) is a LifecycleError.
func (d *Dispatcher) Init(ctx context.Context) error {
	d.mu.Lock()
	switch d.st {
	case stateRunning:
		d.mu.Unlock()
		return nil
	case stateInitializing:
		d.mu.Unlock()
		return &LifecycleError{Operation: "init", State: d.st.String()}
	}
	d.st = stateInitializing
	d.mu.Unlock()

	loaded, err := d.cfg.Persistence.Load(ctx)
	if err != nil {
		perr := &PersistenceError{Op: "load", Err: err}
		d.log.Error(perr.Error(), "error", err)
		loaded = nil
	}

	q := queue.New[Event](d.cfg.MaxBufferSize, d.log)
	q.PushAll(toEvents(loaded))

	if d.cfg.MaxBufferSize > 0 && d.cfg.MaxBufferSize < d.cfg.MaxBatchSize {
		d.log.Warn("maxBufferSize is smaller than maxBatchSize; batch size will never be reached",
			"maxBufferSize", d.cfg.MaxBufferSize, "maxBatchSize", d.cfg.MaxBatchSize)
	}

	d.flushMu.Reset()

	bgCtx, cancel := context.WithCancel(context.Background())
	bg, bgCtx := errgroup.WithContext(bgCtx)
	bg.Go(func() error {
		d.flushLoop(bgCtx)
		return nil
	})

	d.mu.Lock()
	d.queue = q
	d.bgCancel = cancel
	d.bg = bg
	d.st = stateRunning
	d.mu.Unlock()

	return nil
}

// Enqueue takes the metadata/session/platform snapshot, stamps
// IssuedAt, and pushes the event. It never suspends on the transport or
// persistence path: the persistence sync this triggers, and any flush
// triggered by crossing MaxBatchSize, both run off the caller's stack.
func (d *Dispatcher) Enqueue(metadataOverrides map[string]string, name string, payload map[string]any) error {
	d.mu.Lock()
	if d.st != stateRunning {
		st := d.st
		d.mu.Unlock()
		return &LifecycleError{Operation: "enqueue", State: st.String()}
	}

	ev := Event{
		Name:     name,
		Payload:  payload,
		IssuedAt: time.Now().UnixMilli(),
	}
	if d.cfg.MetadataProvider != nil {
		ev.Metadata = d.cfg.MetadataProvider(metadataOverrides)
	} else {
		ev.Metadata = metadataOverrides
	}
	if d.cfg.SessionProvider != nil {
		ev.SessionID = d.cfg.SessionProvider()
	}
	if d.cfg.PlatformProvider != nil {
		ev.Platform = d.cfg.PlatformProvider()
	}
	ev = ev.clone()

	d.queue.Push(ev)
	length := d.queue.Len()
	d.mu.Unlock()

	d.syncPersistenceAsync()

	if length >= d.cfg.MaxBatchSize {
		d.triggerFlushAsync()
	}
	return nil
}

// Flush runs one flush cycle to completion: it blocks the caller until
// that cycle (including any concurrent one already in progress) has
// finished, per the Facade contract. Calling it before Init completes
// is handled by the Facade (a no-op returning success); calling it
// directly on a Disposed dispatcher is a LifecycleError.
func (d *Dispatcher) Flush(ctx context.Context) error {
	d.mu.Lock()
	st := d.st
	d.mu.Unlock()
	if st == stateDisposed {
		return &LifecycleError{Operation: "flush", State: st.String()}
	}
	if st == stateUninitialized || st == stateInitializing {
		return nil
	}
	return d.flushOnce(ctx)
}

// triggerFlushAsync schedules an immediate flush without blocking the
// caller, tracked in flushWG so Dispose can wait for it to finish. The
// Add happens under mu, re-checking that the dispatcher is still
// Running: Dispose flips st to Disposed under the same lock before it
// ever calls flushWG.Wait, so an Add that loses the race simply never
// happens, instead of racing a Wait that already saw the counter at
// zero. Both call sites -- the enqueue path and the scheduleRetry
// timer -- funnel through here, so one guard covers both.
func (d *Dispatcher) triggerFlushAsync() {
	d.mu.Lock()
	if d.st != stateRunning {
		d.mu.Unlock()
		return
	}
	d.flushWG.Add(1)
	d.mu.Unlock()

	go func() {
		defer d.flushWG.Done()
		_ = d.flushOnce(context.Background())
	}()
}

// flushOnce is the flush critical section. It acquires flushMu
// (blocking until any in-flight flush completes -- the "await" half of
// the concurrent-flush contract), takes the next batch, persists the
// remainder, invokes the transport, and classifies the outcome. The
// lock is held across the transport call itself.
func (d *Dispatcher) flushOnce(ctx context.Context) error {
	if err := d.flushMu.Acquire(); err != nil {
		return nil // disposed mid-flight: nothing left to flush
	}
	defer d.flushMu.Release()

	d.mu.Lock()
	if d.queue == nil {
		d.mu.Unlock()
		return nil
	}
	batch := d.queue.TakeBatch(d.cfg.MaxBatchSize)
	if len(batch) == 0 {
		d.mu.Unlock()
		return nil
	}
	remaining := d.queue.Snapshot()
	d.mu.Unlock()

	// Persist the remaining queue before the network call. The batch is
	// no longer in the persisted set while the request is in flight; a
	// retryable failure puts it back (handleRetryableFailure saves again).
	d.syncPersistence(ctx, remaining)

	resp, sendErr := d.cfg.Transport.Send(ctx, toTransportEvents(batch), d.cfg.Endpoint, d.cfg.APIKeyHeader, d.cfg.APIKey)
	outcome := classify(resp, sendErr)

	switch outcome {
	case outcomeSuccess:
		d.log.Debug("flush succeeded", "events", len(batch))

	case outcomeTerminal:
		d.log.Warn("transport rejected batch with a non-retryable status; dropping events",
			"status", resp.Status, "events", len(batch))
		// remaining already excludes this batch; persistence already
		// reflects the drop from the save above.

	case outcomeRetry:
		d.handleRetryableFailure(ctx, batch, sendErr, resp)
	}

	return nil
}

func (d *Dispatcher) handleRetryableFailure(ctx context.Context, batch []Event, sendErr error, resp transport.Response) {
	retryable := make([]Event, 0, len(batch))
	dropped := 0
	maxAttempts := 0
	for _, ev := range batch {
		ev.attempts++
		if ev.attempts > d.cfg.MaxRetries {
			dropped++
			continue
		}
		if ev.attempts > maxAttempts {
			maxAttempts = ev.attempts
		}
		retryable = append(retryable, ev)
	}

	if dropped > 0 {
		d.log.Warn("dropping events that exceeded max retries", "dropped", dropped, "maxRetries", d.cfg.MaxRetries)
	}

	if sendErr != nil {
		d.log.Warn("transport call failed; requeuing batch for retry", "error", sendErr, "events", len(retryable))
	} else {
		d.log.Warn("transport returned a retryable status; requeuing batch for retry",
			"status", resp.Status, "events", len(retryable))
	}

	if len(retryable) == 0 {
		return
	}

	d.mu.Lock()
	d.queue.Prepend(retryable)
	snapshot := d.queue.Snapshot()
	d.mu.Unlock()

	d.syncPersistence(ctx, snapshot)

	delay := retryDelay(maxAttempts - 1)
	d.scheduleRetry(delay)
}

// scheduleRetry arms a one-shot timer that triggers a flush attempt
// after delay. A newly scheduled retry replaces any pending one, since
// the requeued batch is already back at the head of the queue and a
// single timer is sufficient to reattempt it.
func (d *Dispatcher) scheduleRetry(delay time.Duration) {
	d.retryMu.Lock()
	defer d.retryMu.Unlock()
	if d.retryTimer != nil {
		d.retryTimer.Stop()
	}
	d.retryTimer = time.AfterFunc(delay, d.triggerFlushAsync)
}

// flushLoop runs the periodic flush timer until ctx is cancelled by
// Dispose. Each tick runs flushOnce synchronously: a slow transport
// call naturally skips the next tick rather than racing it, reinforcing
// (not replacing) the exclusivity flushMu already guarantees.
func (d *Dispatcher) flushLoop(ctx context.Context) {
	ticker := time.NewTicker(d.cfg.FlushInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			_ = d.flushOnce(ctx)
		}
	}
}

// syncPersistence synchronously saves the given queue snapshot,
// classifying the result: quota errors log at WARN with saved/dropped
// counts, any other error logs at ERROR, and neither ever propagates --
// the in-memory queue remains authoritative.
func (d *Dispatcher) syncPersistence(ctx context.Context, snapshot []Event) {
	d.persistMu.Lock()
	defer d.persistMu.Unlock()
	d.savePersistence(ctx, snapshot)
}

// syncPersistenceAsync is the non-blocking variant used on the enqueue
// path, since enqueue must never suspend on persistence. persistMu
// still serializes it against any other save so the adapter never sees
// overlapping calls, and the queue is read only once persistMu is held,
// so this save never writes contents older than a save that ran while
// it was waiting (such as flushOnce's save after TakeBatch). The Add is guarded by the same st re-check as
// triggerFlushAsync, for the same reason: Enqueue reads st and unlocks
// mu before calling this, so without the re-check a concurrent Dispose
// could reach persistWG.Wait with the counter at zero just before this
// Add runs.
func (d *Dispatcher) syncPersistenceAsync() {
	d.mu.Lock()
	if d.st != stateRunning {
		d.mu.Unlock()
		return
	}
	d.persistWG.Add(1)
	d.mu.Unlock()

	go func() {
		defer d.persistWG.Done()
		d.persistMu.Lock()
		defer d.persistMu.Unlock()
		d.mu.Lock()
		snapshot := d.queue.Snapshot()
		d.mu.Unlock()
		d.savePersistence(context.Background(), snapshot)
	}()
}

func (d *Dispatcher) savePersistence(ctx context.Context, snapshot []Event) {
	err := d.cfg.Persistence.Save(ctx, toPersistedEvents(snapshot))
	if err == nil {
		return
	}
	var qe *persistence.QuotaError
	if asQuotaError(err, &qe) {
		pqe := &PersistenceQuotaError{Saved: qe.Saved, Dropped: qe.Dropped}
		d.log.Warn(pqe.Error(), "saved", pqe.Saved, "dropped", pqe.Dropped)
		return
	}
	perr := &PersistenceError{Op: "save", Err: err}
	d.log.Error(perr.Error(), "error", err)
}

// Dispose transitions to Disposed: the periodic timer is cancelled, any
// in-flight flush is allowed to finish (its outcome is still honored
// for persistence correctness), the in-memory queue is cleared -- but
// persistence is deliberately left untouched so pending events survive
// process exit -- and internal state is reset to allow a fresh Init.
func (d *Dispatcher) Dispose() error {
	d.mu.Lock()
	if d.st == stateDisposed {
		d.mu.Unlock()
		return nil
	}
	d.st = stateDisposed
	cancel := d.bgCancel
	bg := d.bg
	d.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if bg != nil {
		_ = bg.Wait()
	}

	d.retryMu.Lock()
	if d.retryTimer != nil {
		d.retryTimer.Stop()
	}
	d.retryMu.Unlock()

	// Rejects further acquisitions, then acquire-and-release drains any
	// in-flight flush.
	d.flushMu.Dispose()

	d.flushWG.Wait()
	d.persistWG.Wait()

	d.mu.Lock()
	if d.queue != nil {
		d.queue.Clear()
	}
	d.mu.Unlock()

	return nil
}
