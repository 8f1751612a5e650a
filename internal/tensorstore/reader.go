package tensorstore

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/ragged-tensors/jnrtd/internal/dtype"
	"github.com/ragged-tensors/jnrtd/internal/obs"
)

// File is a lazily-opened, memory-mapped tensorstore container. Opening a
// file reads only the index header (spec.md §6: "loading a file does not
// require reading any value array"); individual tensor ranges are decoded
// on demand from the shared mmap.
//
// The header and mapping are read-only after Open returns; the only mutable
// state is the owner count (guarded by mu) and the read guard's circuit
// breaker, which has its own lock. The backing mmap is released when the
// last owner calls Close; refCount counts the owners registered through
// AddRef plus the one created by Open.
type File struct {
	mm        *mmapFile
	header    map[string]entry
	dataStart int64

	mu       sync.Mutex
	refCount int
	closed   bool

	// guard trips open after repeated out-of-bounds/missing-key reads
	// against this handle, the same fault-tolerance pattern the teacher
	// uses for flaky remote calls (internal/obs/circuit.go), narrowed here
	// to protect a long-lived server process from a caller that keeps
	// replaying bad ranges against a handle it should have stopped using.
	guard *obs.CircuitBreaker
}

// Open memory-maps fp and decodes only its JSON index header.
func Open(fp string) (*File, error) {
	mm, err := openMmap(fp)
	if err != nil {
		return nil, err
	}

	if len(mm.data) < 8 {
		mm.Close()
		return nil, fmt.Errorf("tensorstore: corrupt file %s: too short for a header length", fp)
	}
	headerLen := binary.LittleEndian.Uint64(mm.data[:8])
	if uint64(len(mm.data)) < 8+headerLen {
		mm.Close()
		return nil, fmt.Errorf("tensorstore: corrupt file %s: header length %d exceeds file size", fp, headerLen)
	}

	var header map[string]entry
	if err := json.Unmarshal(mm.data[8:8+headerLen], &header); err != nil {
		mm.Close()
		return nil, fmt.Errorf("tensorstore: corrupt file %s: invalid header JSON: %w", fp, err)
	}

	dataStart := int64(8 + headerLen)
	for name, e := range header {
		if e.DataOffsets[0] < 0 || e.DataOffsets[1] < e.DataOffsets[0] {
			mm.Close()
			return nil, fmt.Errorf("tensorstore: corrupt file %s: invalid data offsets for %q", fp, name)
		}
		if dataStart+e.DataOffsets[1] > int64(len(mm.data)) {
			mm.Close()
			return nil, fmt.Errorf("tensorstore: corrupt file %s: tensor %q extends past end of file", fp, name)
		}
	}

	guard := obs.NewCircuitBreaker(obs.DefaultCircuitBreakerConfig(fmt.Sprintf("tensorstore:%s", fp)))
	return &File{mm: mm, header: header, dataStart: dataStart, refCount: 1, guard: guard}, nil
}

// Keys returns every tensor name stored in the file.
func (f *File) Keys() []string {
	out := make([]string, 0, len(f.header))
	for name := range f.header {
		out = append(out, name)
	}
	return out
}

// GetShape returns the length of the named 1-D tensor without reading its data.
func (f *File) GetShape(name string) (int, error) {
	e, ok := f.header[name]
	if !ok {
		return 0, fmt.Errorf("tensorstore: key %q not found", name)
	}
	if len(e.Shape) != 1 {
		return 0, fmt.Errorf("tensorstore: tensor %q is not 1-D", name)
	}
	return e.Shape[0], nil
}

// GetRange returns the sub-array [start, stop) of the named tensor, reading
// only the corresponding byte range out of the shared mmap (spec.md §6:
// "a slice of a file-backed JNRTD reads exactly the planned byte ranges").
func (f *File) GetRange(name string, start, stop int) (dtype.Array, error) {
	var out dtype.Array
	err := f.guard.Execute(context.Background(), func() error {
		e, ok := f.header[name]
		if !ok {
			return fmt.Errorf("tensorstore: key %q not found", name)
		}
		k, err := dtype.KindFromString(e.Dtype)
		if err != nil {
			return fmt.Errorf("tensorstore: tensor %q: %w", name, err)
		}
		n := e.Shape[0]
		if start < 0 || stop < start || stop > n {
			return fmt.Errorf("tensorstore: range [%d,%d) out of bounds for tensor %q of length %d", start, stop, name, n)
		}

		w := k.ByteWidth()
		base := f.dataStart + e.DataOffsets[0]
		byteStart := base + int64(start)*int64(w)
		byteStop := base + int64(stop)*int64(w)

		arr, err := dtype.FromBytesLE(k, f.mm.data[byteStart:byteStop])
		if err != nil {
			return err
		}
		out = arr
		return nil
	})
	return out, err
}

// AddRef increments the shared-handle reference count; used when a slice of
// a file-backed JNRTD is produced so the mapping outlives the parent.
func (f *File) AddRef() {
	f.mu.Lock()
	f.refCount++
	f.mu.Unlock()
}

// Close releases this owner's reference to the file; the underlying mmap
// is unmapped only once the last owner has called Close.
func (f *File) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return nil
	}
	f.refCount--
	if f.refCount > 0 {
		return nil
	}
	f.closed = true
	return f.mm.Close()
}
