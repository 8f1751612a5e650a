package jnrtd

import (
	"fmt"
	"sort"

	"github.com/ragged-tensors/jnrtd/internal/memstat"
	"github.com/ragged-tensors/jnrtd/internal/obs"
	"github.com/ragged-tensors/jnrtd/internal/tensorstore"
)

// Save writes J's full canonical dictionary to path in the tensorstore
// format (spec.md §4.3 save, §5 "no operation mutates file contents after
// save").
func (j *JNRTD) Save(path string) error {
	const op = "Save"
	canonical, err := j.materialize()
	if err != nil {
		return wrapErr(ErrUnknown, op, "materializing dictionary", err)
	}
	if err := tensorstore.Save(path, canonical); err != nil {
		return wrapErr(ErrUnknown, op, "writing tensorstore file", err)
	}
	return nil
}

// Open lazily memory-maps an on-disk JNRTD: only the index header is read
// up front, so construction cost is independent of file size (spec.md §6).
func Open(path string) (*JNRTD, error) {
	const op = "Open"
	f, err := tensorstore.Open(path)
	if err != nil {
		return nil, wrapErr(ErrFileNotFound, op, "opening tensorstore file", err)
	}

	keysAtDepth := make(map[int][]string)
	maxDepth := 0
	for _, key := range f.Keys() {
		d, name, err := splitQualified(key)
		if err != nil {
			f.Close()
			return nil, wrapErr(ErrCorruptFile, op, "malformed tensor key in file", err)
		}
		if name == "bounds" {
			if d > maxDepth {
				maxDepth = d
			}
			continue
		}
		keysAtDepth[d] = append(keysAtDepth[d], name)
		if d > maxDepth {
			maxDepth = d
		}
	}
	for d := range keysAtDepth {
		sort.Strings(keysAtDepth[d])
	}

	outerLen, err := deriveOuterLenFromFile(f, keysAtDepth, maxDepth)
	if err != nil {
		f.Close()
		return nil, wrapErr(ErrCorruptFile, op, "deriving outer length", err)
	}

	metrics := obs.NewMetrics()
	metrics.Constructions.Inc()
	tracker := memstat.NewTracker(64, metrics)
	tracker.FileOpened(fileSizeHint(f))

	return &JNRTD{
		maxDepth:    maxDepth,
		outerLen:    outerLen,
		keysAtDepth: keysAtDepth,
		file:        f,
		metrics:     metrics,
		tracker:     tracker,
	}, nil
}

func deriveOuterLenFromFile(f *tensorstore.File, keysAtDepth map[int][]string, maxDepth int) (int, error) {
	for _, key := range keysAtDepth[0] {
		return f.GetShape(qualify(0, key))
	}
	if maxDepth >= 1 {
		if n, err := f.GetShape(qualify(1, "bounds")); err == nil {
			return n, nil
		}
	}
	return 0, fmt.Errorf("jnrtd: cannot derive outer length: no dim0 key and no dim1/bounds present")
}

// fileSizeHint approximates the live footprint for memstat accounting by
// summing every tensor's element count; tensorstore.File does not expose
// the underlying mmap's byte size, and an element-count proxy is close
// enough for the resource-accounting gauge it feeds.
func fileSizeHint(f *tensorstore.File) int64 {
	var total int64
	for _, key := range f.Keys() {
		n, err := f.GetShape(key)
		if err != nil {
			continue
		}
		total += int64(n)
	}
	return total
}
