// Package sliceexec implements C5: applying a planindex.Plan to a data
// source, producing a new canonical tensor dictionary (spec.md §3's
// dim{d}/<key>, dim{d}/bounds flat-array convention).
//
// Execute is deliberately source-agnostic: it only calls through the
// ArraySource interface, so the exact same plan can drive either an
// in-memory dictionary or a file-backed one (internal/tensorstore.File),
// reading only the byte ranges the plan names — no value array is ever
// read in full just to take a slice of it (spec.md §6, §9).
package sliceexec

import (
	"fmt"

	"github.com/ragged-tensors/jnrtd/internal/dtype"
	"github.com/ragged-tensors/jnrtd/internal/planindex"
)

// ArraySource is the read side of a canonical tensor dictionary, named by
// depth rather than by fully-qualified key so sliceexec can reason about
// "all keys at depth d" without caring whether they live in memory or in a
// memory-mapped file.
type ArraySource interface {
	// MaxDepth returns R, the deepest nesting level present.
	MaxDepth() int
	// KeysAtDepth returns the value-array key names stored at depth d
	// (excluding the synthetic "bounds" key).
	KeysAtDepth(d int) []string
	// BoundAt returns bounds_d[idx]; satisfies planindex.BoundsSource.
	BoundAt(d, idx int) (uint64, error)
	// GetBoundsRange returns the raw (not yet re-based) bounds_d[st:en].
	GetBoundsRange(d, st, en int) (dtype.Array, error)
	// GetValueRange returns dim{d}/key[st:en].
	GetValueRange(d int, key string, st, en int) (dtype.Array, error)
}

// Execute applies plan to src and returns a fresh canonical tensor
// dictionary keyed by "dim{d}/<name>" / "dim{d}/bounds". The caller is
// responsible for any outer-axis squeeze relabeling (jnrtd's index.go),
// since squeeze legality depends on facade-level knowledge (whether any
// key exists at depth 0) that sliceexec does not have.
func Execute(src ArraySource, plan *planindex.Plan) (map[string]dtype.Array, error) {
	out := make(map[string]dtype.Array)

	for d := 0; d <= plan.MaxDepth; d++ {
		iv := plan.Intervals[d]
		if iv.En < iv.St {
			return nil, fmt.Errorf("sliceexec: inverted interval at depth %d: [%d,%d)", d, iv.St, iv.En)
		}

		for _, key := range src.KeysAtDepth(d) {
			vals, err := src.GetValueRange(d, key, iv.St, iv.En)
			if err != nil {
				return nil, fmt.Errorf("sliceexec: reading dim%d/%s[%d:%d]: %w", d, key, iv.St, iv.En, err)
			}
			out[qualify(d, key)] = vals
		}

		if d == 0 {
			continue
		}

		// bounds_d is indexed by depth (d-1)'s flat position, not depth d's
		// own interval (iv) — it holds one entry per group at the parent
		// level, each naming where that group's children end within dim{d}'s
		// flat arrays. So the range to read here is the parent interval.
		parent := plan.Intervals[d-1]
		bounds, err := src.GetBoundsRange(d, parent.St, parent.En)
		if err != nil {
			return nil, fmt.Errorf("sliceexec: reading dim%d/bounds[%d:%d]: %w", d, parent.St, parent.En, err)
		}

		var anchor uint64
		if parent.St > 0 {
			anchor, err = src.BoundAt(d, parent.St-1)
			if err != nil {
				return nil, fmt.Errorf("sliceexec: reading anchor bound at depth %d: %w", d, err)
			}
		}
		out[qualify(d, "bounds")] = dtype.SubScalarUint(bounds, anchor)
	}

	return out, nil
}

func qualify(d int, name string) string {
	return fmt.Sprintf("dim%d/%s", d, name)
}
