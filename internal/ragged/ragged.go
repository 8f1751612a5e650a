// Package ragged implements C2 (raggedification): converting a validated
// nested list of numeric values into a flat values slice plus, for each
// intermediate depth, the per-group lengths recorded in document order.
// Mirrors the original Python `_get_lengths_and_values` descent
// (original_source/src/nested_ragged_tensors/ragged_numpy.py) but expressed
// over an explicitly tagged Node tree instead of runtime type inspection,
// so an empty leaf and an empty nested group are never ambiguous the way
// Python's `is_ndim_list([], dim=1)` is on a bare empty list.
package ragged

import "fmt"

// Node is one level of a raw nested numeric input: either a leaf (a flat
// run of int64 or float64 values) or a group of child Nodes. Exactly one
// of Groups or (Ints, Floats) is meaningful, selected by Leaf.
type Node struct {
	Leaf    bool
	IsFloat bool
	Ints    []int64
	Floats  []float64
	Groups  []Node
}

// IntLeaf builds a leaf Node holding integer values.
func IntLeaf(v []int64) Node { return Node{Leaf: true, Ints: v} }

// FloatLeaf builds a leaf Node holding floating-point values.
func FloatLeaf(v []float64) Node { return Node{Leaf: true, Floats: v, IsFloat: true} }

// Group builds a nested Node from child Nodes.
func Group(children []Node) Node { return Node{Leaf: false, Groups: children} }

// Flatten descends a Group Node (t.Leaf must be false; a Leaf node is the
// depth-0 case and is handled directly by callers without raggedification)
// into the per-level group lengths (outermost first) and the fully
// flattened values, split into an integral or floating accumulator
// depending on whether any leaf anywhere in the tree is floating-point.
func Flatten(t Node) (lengths [][]int, isFloat bool, ints []int64, floats []float64, err error) {
	if t.Leaf {
		return nil, false, nil, nil, fmt.Errorf("ragged: Flatten called on a leaf node")
	}
	return flattenLevel(t.Groups, nil)
}

func flattenLevel(groups []Node, curr [][]int) ([][]int, bool, []int64, []float64, error) {
	if len(curr) == 0 && len(groups) == 0 {
		return nil, false, nil, nil, fmt.Errorf("ragged: empty sequence is not a valid tensor input")
	}

	allLeaf, allNested := true, true
	for _, g := range groups {
		if g.Leaf {
			allNested = false
		} else {
			allLeaf = false
		}
	}
	if len(groups) > 0 && allLeaf == allNested {
		return nil, false, nil, nil, fmt.Errorf(
			"ragged: non-rectangular input: siblings must be either all leaf numeric lists or all nested lists, not a mix",
		)
	}

	lengths := make([]int, len(groups))

	if allLeaf {
		isFloat := false
		for _, g := range groups {
			if g.IsFloat {
				isFloat = true
				break
			}
		}

		var ints []int64
		var floats []float64
		for i, g := range groups {
			if g.IsFloat {
				lengths[i] = len(g.Floats)
				floats = append(floats, g.Floats...)
			} else {
				lengths[i] = len(g.Ints)
				if isFloat {
					for _, x := range g.Ints {
						floats = append(floats, float64(x))
					}
				} else {
					ints = append(ints, g.Ints...)
				}
			}
		}
		return append(curr, lengths), isFloat, ints, floats, nil
	}

	// allNested (an empty groups list is vacuously allLeaf and was handled
	// above): flatten one level by
	// concatenating every group's children, recording each group's child
	// count (zero is permitted — a fully-empty inner group, SPEC_FULL.md
	// §14 decision 2), and recursing on the combined list.
	var combined []Node
	for i, g := range groups {
		lengths[i] = len(g.Groups)
		combined = append(combined, g.Groups...)
	}
	return flattenLevel(combined, append(curr, lengths))
}

// LengthsToBounds returns the cumulative sum of lengths, i.e. the bounds
// array for one depth level (spec.md §3: "bounds are the cumulative sum of
// the lengths of each d-th level group").
func LengthsToBounds(lengths []int) []uint64 {
	out := make([]uint64, len(lengths))
	var running uint64
	for i, l := range lengths {
		running += uint64(l)
		out[i] = running
	}
	return out
}

// BoundsToLengths recovers per-group lengths from a cumulative bounds array
// (spec.md §3 "Derived meta": lengths = diff(prepend(bounds, 0))).
func BoundsToLengths(bounds []uint64) []int {
	out := make([]int, len(bounds))
	var prev uint64
	for i, b := range bounds {
		out[i] = int(b - prev)
		prev = b
	}
	return out
}
