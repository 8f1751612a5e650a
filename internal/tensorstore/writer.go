package tensorstore

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/ragged-tensors/jnrtd/internal/dtype"
)

// Save atomically writes tensors to fp in the format described in format.go.
// Atomicity is achieved the same way the teacher's own code always creates
// parent directories and writes via a temp file before rename (see
// internal/memory/mmap.go's directory handling for the parent-dir half of
// this idiom).
func Save(fp string, tensors map[string]dtype.Array) error {
	if len(tensors) == 0 {
		return fmt.Errorf("tensorstore: cannot save an empty tensor set")
	}

	names := make([]string, 0, len(tensors))
	for name := range tensors {
		names = append(names, name)
	}
	sort.Strings(names)

	header := make(map[string]entry, len(names))
	var dataLen int64
	for _, name := range names {
		arr := tensors[name]
		n := int64(arr.Len()) * int64(arr.Kind.ByteWidth())
		header[name] = entry{
			Dtype:       arr.Kind.DiskTag(),
			Shape:       []int{arr.Len()},
			DataOffsets: [2]int64{dataLen, dataLen + n},
		}
		dataLen += n
	}

	headerBytes, err := json.Marshal(header)
	if err != nil {
		return fmt.Errorf("tensorstore: failed to marshal header: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(fp), 0o755); err != nil {
		return fmt.Errorf("tensorstore: failed to create directory: %w", err)
	}

	tmp := fp + ".tmp"
	f, err := os.OpenFile(tmp, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("tensorstore: failed to create temp file: %w", err)
	}

	var lenBuf [8]byte
	binary.LittleEndian.PutUint64(lenBuf[:], uint64(len(headerBytes)))
	if _, err := f.Write(lenBuf[:]); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("tensorstore: failed to write header length: %w", err)
	}
	if _, err := f.Write(headerBytes); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("tensorstore: failed to write header: %w", err)
	}
	for _, name := range names {
		if _, err := f.Write(tensors[name].BytesLE()); err != nil {
			f.Close()
			os.Remove(tmp)
			return fmt.Errorf("tensorstore: failed to write tensor %q: %w", name, err)
		}
	}
	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("tensorstore: failed to sync file: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("tensorstore: failed to close file: %w", err)
	}
	if err := os.Rename(tmp, fp); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("tensorstore: failed to finalize file: %w", err)
	}
	return nil
}
