package persistence

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/fxamacker/cbor/v2"
	"github.com/zeebo/blake3"

	"github.com/beacontrail/telemetry-go/logging"
)

// File is a durable Persistence adapter backed by a single file on
// disk, one SDK instance to one slot. It follows ldfiledata's file-
// handling conventions (directory-relative paths, atomic replace-on-
// write) but serializes with CBOR rather than YAML/JSON, since
// persisted storage is a local implementation detail, not the wire
// format the transport layer is required to speak. The stored blob is
// prefixed with a BLAKE3 checksum of its body so a
// truncated or corrupted file (e.g. a crash mid-write on a filesystem
// without atomic rename support) is detected as empty on Load rather
// than causing a bad Unmarshal.
type File struct {
	mu   sync.Mutex
	path string
	log  logging.Logger

	watcher *fsnotify.Watcher
}

const checksumLen = 32

// FileOption configures a File persistence adapter.
type FileOption func(*File)

// WithFileLogger sets the logger used to report slot contents that Load
// treats as empty (too short, checksum mismatch, unmarshal failure) and
// file watcher errors. Save returns its write errors instead of logging
// them.
func WithFileLogger(log logging.Logger) FileOption {
	return func(f *File) { f.log = log }
}

// NewFile returns a File adapter storing its slot at path. The parent
// directory is created if it does not exist.
func NewFile(path string, opts ...FileOption) (*File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("persistence: create directory for %s: %w", path, err)
	}
	f := &File{path: path, log: logging.Noop{}}
	for _, opt := range opts {
		opt(f)
	}
	return f, nil
}

// Watch starts watching the slot file for external modification (e.g.
// another process sharing the same slot) and invokes onChange whenever
// the file is written or created. It is grounded on ldfilewatch's
// fsnotify-based reload trigger. Callers that never share a slot across
// processes do not need to call this.
func (f *File) Watch(onChange func()) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("persistence: start watcher: %w", err)
	}
	if err := w.Add(filepath.Dir(f.path)); err != nil {
		_ = w.Close()
		return fmt.Errorf("persistence: watch directory: %w", err)
	}
	f.watcher = w
	go func() {
		for {
			select {
			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				if filepath.Clean(ev.Name) == filepath.Clean(f.path) &&
					(ev.Op&(fsnotify.Write|fsnotify.Create) != 0) {
					onChange()
				}
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				f.log.Warn("persistence file watcher error", "error", err)
			}
		}
	}()
	return nil
}

// Close stops the file watcher, if one was started.
func (f *File) Close() error {
	if f.watcher == nil {
		return nil
	}
	return f.watcher.Close()
}

func (f *File) Save(_ context.Context, events []Event) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	body, err := cbor.Marshal(events)
	if err != nil {
		return fmt.Errorf("persistence: marshal events: %w", err)
	}
	sum := blake3.Sum256(body)

	blob := make([]byte, 0, checksumLen+len(body))
	blob = append(blob, sum[:]...)
	blob = append(blob, body...)

	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, blob, 0o600); err != nil {
		return fmt.Errorf("persistence: write temp file: %w", err)
	}
	// os.Rename is atomic on the same filesystem; this is what gives the
	// adapter its "save atomically replaces the slot" guarantee.
	if err := os.Rename(tmp, f.path); err != nil {
		return fmt.Errorf("persistence: atomic replace: %w", err)
	}
	return nil
}

func (f *File) Load(_ context.Context) ([]Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	blob, err := os.ReadFile(f.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("persistence: read file: %w", err)
	}
	if len(blob) < checksumLen {
		f.log.Error("persistence file too short to contain a checksum; treating as empty", "path", f.path)
		return nil, nil
	}
	want := blob[:checksumLen]
	body := blob[checksumLen:]
	got := blake3.Sum256(body)
	if !bytes.Equal(want, got[:]) {
		f.log.Error("persistence file checksum mismatch; treating as empty", "path", f.path)
		return nil, nil
	}

	var events []Event
	if err := cbor.Unmarshal(body, &events); err != nil {
		f.log.Error("persistence file unmarshal failed; treating as empty", "path", f.path, "error", err)
		return nil, nil
	}
	return events, nil
}

func (f *File) Clear(_ context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := os.Remove(f.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("persistence: remove file: %w", err)
	}
	return nil
}
