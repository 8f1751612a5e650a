package tensorstore

import (
	"fmt"
	"os"
	"syscall"
)

// mmapFile is a read-only memory mapping of an on-disk file. Adapted from
// the teacher's internal/memory/mmap.go: the same open/mmap/close lifecycle,
// narrowed to the read-only case because a tensorstore file is never
// mutated after Save (spec.md §5 resource model — "no operation mutates
// file contents after save").
type mmapFile struct {
	file *os.File
	data []byte
	size int64
}

func openMmap(path string) (*mmapFile, error) {
	f, err := os.OpenFile(path, os.O_RDONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("tensorstore: failed to open file: %w", err)
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("tensorstore: failed to stat file: %w", err)
	}
	size := info.Size()
	if size == 0 {
		f.Close()
		return nil, fmt.Errorf("tensorstore: cannot map empty file %s", path)
	}

	data, err := syscall.Mmap(int(f.Fd()), 0, int(size), syscall.PROT_READ, syscall.MAP_SHARED)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("tensorstore: failed to mmap file: %w", err)
	}

	return &mmapFile{file: f, data: data, size: size}, nil
}

func (m *mmapFile) Close() error {
	var firstErr error
	if m.data != nil {
		if err := syscall.Munmap(m.data); err != nil {
			firstErr = fmt.Errorf("tensorstore: failed to unmap memory: %w", err)
		}
		m.data = nil
	}
	if err := m.file.Close(); err != nil && firstErr == nil {
		firstErr = fmt.Errorf("tensorstore: failed to close file: %w", err)
	}
	return firstErr
}
