// Package planindex implements C4: translating a single-axis index
// expression (an integer or a half-open range over the outermost axis) into
// a Plan — the half-open [start, stop) interval each depth's arrays must be
// read from. Tuple and index-array indexing (spec.md §4.4) are expressed at
// the facade layer as repeated single-axis planning + execution, since the
// original Python implementation never supported a tuple form to translate
// from and spec.md itself describes tuple handling as "apply successive
// axis selections" / "decomposes into per-element planning followed by
// stack" — i.e. composition of this single-axis primitive, not a distinct
// algorithm.
//
// Planning never materializes a full bounds array: it only asks its
// BoundsSource for individual bounds_d[idx] values, so the same Plan can
// drive either an in-memory executor or a file-backed one without either
// paying for data it will not read (spec.md §9: "Keep the plan first-class
// so file-backed and in-memory executors can share it").
package planindex

import "fmt"

// BoundsSource exposes just enough of a dictionary's bounds data for
// planning: one element at a time, at a given depth.
type BoundsSource interface {
	// BoundAt returns bounds_d[idx] (0-based) for 1 <= d <= MaxDepth.
	BoundAt(d, idx int) (uint64, error)
}

// AxisInterval is a half-open [St, En) interval within one depth's flat arrays.
type AxisInterval struct {
	St, En int
}

func (a AxisInterval) Len() int { return a.En - a.St }

// Plan is the output of C4: one interval per depth (0..MaxDepth), plus
// whether the outermost axis should be squeezed away by the executor
// (integer indexing).
type Plan struct {
	MaxDepth  int
	Intervals []AxisInterval // length MaxDepth+1; Intervals[d] applies to dim{d}/*
	Squeeze   bool
}

// PlanRange plans a half-open range [st, en) on the outermost axis,
// propagating the corresponding sub-interval to every deeper depth via
// BoundsSource lookups (spec.md §4.4's iterative planning algorithm).
func PlanRange(src BoundsSource, maxDepth, st, en int) (*Plan, error) {
	if st < 0 {
		return nil, fmt.Errorf("planindex: negative start index %d", st)
	}
	if en < st {
		return nil, fmt.Errorf("planindex: empty or reversed range [%d, %d)", st, en)
	}

	intervals := make([]AxisInterval, maxDepth+1)
	intervals[0] = AxisInterval{st, en}

	curSt, curEn := st, en
	for d := 1; d <= maxDepth; d++ {
		newSt, err := resolveBound(src, d, curSt)
		if err != nil {
			return nil, fmt.Errorf("planindex: resolving start bound at depth %d: %w", d, err)
		}
		newEn, err := resolveBound(src, d, curEn)
		if err != nil {
			return nil, fmt.Errorf("planindex: resolving end bound at depth %d: %w", d, err)
		}
		intervals[d] = AxisInterval{int(newSt), int(newEn)}
		curSt, curEn = int(newSt), int(newEn)
	}

	return &Plan{MaxDepth: maxDepth, Intervals: intervals}, nil
}

// PlanInt plans a single integer selection i on the outermost axis of an
// object with the given outer length, marking the outer axis for squeeze.
func PlanInt(src BoundsSource, maxDepth, i, outerLen int) (*Plan, error) {
	if i < 0 || i >= outerLen {
		return nil, fmt.Errorf("planindex: index %d out of range for outer length %d", i, outerLen)
	}
	p, err := PlanRange(src, maxDepth, i, i+1)
	if err != nil {
		return nil, err
	}
	p.Squeeze = true
	return p, nil
}

// resolveBound returns bounds_d[idx-1], or 0 when idx == 0 (there is no
// preceding group, so the anchor is the start of the array).
func resolveBound(src BoundsSource, d, idx int) (uint64, error) {
	if idx == 0 {
		return 0, nil
	}
	return src.BoundAt(d, idx-1)
}
