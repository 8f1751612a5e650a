// Package memstat tracks the live resource footprint of open tensorstore
// files: how many are memory-mapped right now and how many bytes that
// represents. It is adapted from the teacher's internal/memory.Monitor —
// the same point-in-time-snapshot-history idiom — narrowed from full
// runtime.MemStats GC tracking to the one thing this library actually
// manages itself: mmap handles it opened, since spec.md's resource model
// (§5) only promises bounded allocation per operation, not a GC-pressure
// budget this package should police.
package memstat

import (
	"sync"
	"time"

	"github.com/ragged-tensors/jnrtd/internal/obs"
)

// Snapshot is a point-in-time reading of live tensorstore resource usage.
type Snapshot struct {
	Timestamp  time.Time
	FilesOpen  int64
	BytesLive  int64
}

// Tracker accumulates Open/Close events from internal/tensorstore and
// exposes both the current counts and a bounded history of snapshots, the
// same ring-buffer-by-truncation approach as the teacher's Monitor.
type Tracker struct {
	mu           sync.Mutex
	filesOpen    int64
	bytesLive    int64
	history      []Snapshot
	maxHistory   int
	metrics      *obs.Metrics
}

// NewTracker creates a Tracker that also mirrors its counts into metrics
// (may be nil to track without exporting Prometheus gauges).
func NewTracker(maxHistory int, metrics *obs.Metrics) *Tracker {
	return &Tracker{maxHistory: maxHistory, metrics: metrics}
}

// FileOpened records that a new tensorstore file was memory-mapped.
func (t *Tracker) FileOpened(sizeBytes int64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.filesOpen++
	t.bytesLive += sizeBytes
	t.record()
}

// FileClosed records that a tensorstore file's mapping was released.
func (t *Tracker) FileClosed(sizeBytes int64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.filesOpen--
	t.bytesLive -= sizeBytes
	t.record()
}

// record appends a snapshot and mirrors current counts to Prometheus.
// Caller must hold t.mu.
func (t *Tracker) record() {
	snap := Snapshot{Timestamp: time.Now(), FilesOpen: t.filesOpen, BytesLive: t.bytesLive}
	t.history = append(t.history, snap)
	if len(t.history) > t.maxHistory {
		t.history = t.history[1:]
	}
	if t.metrics != nil {
		t.metrics.FilesOpen.Set(float64(t.filesOpen))
		t.metrics.MmapBytesLive.Set(float64(t.bytesLive))
	}
}

// Current returns the latest counts without allocating a snapshot.
func (t *Tracker) Current() (filesOpen, bytesLive int64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.filesOpen, t.bytesLive
}

// History returns a copy of the retained snapshot history.
func (t *Tracker) History() []Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]Snapshot, len(t.history))
	copy(out, t.history)
	return out
}
