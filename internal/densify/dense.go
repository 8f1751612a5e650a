// Package densify implements C7: materializing a canonical ragged tensor
// dictionary into rectangular, zero-padded dense arrays plus a per-depth
// boolean presence mask.
//
// The placement walk is grounded directly on the original Python
// JointNestedRaggedTensorDict.to_dense (nested_ragged_tensors/ragged_numpy.py):
// at each depth it keeps a flat list of "index paths" — one per group at
// that depth — and expands it into the next depth's paths by fanning each
// path out over its group's length, the same carry-structure walk described
// for RaggedTensor.indices / utils.get_ragged_indices. The one addition
// beyond the original is PaddingSide: the original only ever right-pads,
// whereas spec.md §4.7 also requires left-padding (the occupied window at
// each depth shifts to [max-len, max) instead of [0, len)).
package densify

import (
	"fmt"

	"github.com/ragged-tensors/jnrtd/internal/dtype"
)

// PaddingSide selects where, within a padded axis, the real (unmasked)
// values are placed.
type PaddingSide int

const (
	PadRight PaddingSide = iota
	PadLeft
)

// Source is the read side of a canonical tensor dictionary that ToDense
// needs: full per-depth bounds and value arrays, read once each. Unlike
// sliceexec.ArraySource, densification always reads every element of every
// key (it materializes the whole dictionary), so there is no benefit to a
// narrower ranged-read interface here.
type Source interface {
	MaxDepth() int
	OuterLen() int
	KeysAtDepth(d int) []string
	KindAtDepth(d int, key string) dtype.Kind
	// FullBounds returns the complete dim{d}/bounds array (d >= 1).
	FullBounds(d int) (dtype.Array, error)
	// FullValues returns the complete dim{d}/<key> array.
	FullValues(d int, key string) (dtype.Array, error)
}

// DenseArray is a rectangular, row-major materialisation of one key.
type DenseArray struct {
	Shape []int
	Data  dtype.Array
}

// Mask is a rectangular, row-major boolean presence mask shared by every
// key living at one depth.
type Mask struct {
	Shape []int
	Data  []bool
}

// Result is the output of ToDense: one DenseArray per key, plus one Mask
// per depth d >= 1 at which any key lives.
type Result struct {
	Values map[string]DenseArray
	Masks  map[int]Mask
}

// group is one leaf position's coordinate path within the dense output so
// far, growing by one element per depth processed.
type group struct {
	path []int
}

// ToDense materializes src into rectangular arrays. side controls where the
// occupied (mask=true) region sits within each padded axis.
func ToDense(src Source, side PaddingSide) (Result, error) {
	res := Result{Values: map[string]DenseArray{}, Masks: map[int]Mask{}}

	n := src.OuterLen()
	shape := []int{n}
	groups := make([]group, n)
	for i := 0; i < n; i++ {
		groups[i] = group{path: []int{i}}
	}

	for _, key := range src.KeysAtDepth(0) {
		vals, err := src.FullValues(0, key)
		if err != nil {
			return Result{}, fmt.Errorf("densify: reading dim0/%s: %w", key, err)
		}
		res.Values[key] = DenseArray{Shape: append([]int(nil), shape...), Data: vals}
	}

	for d := 1; d <= src.MaxDepth(); d++ {
		bounds, err := src.FullBounds(d)
		if err != nil {
			return Result{}, fmt.Errorf("densify: reading dim%d/bounds: %w", d, err)
		}
		if bounds.Len() != len(groups) {
			return Result{}, fmt.Errorf("densify: dim%d/bounds has %d entries, want %d", d, bounds.Len(), len(groups))
		}

		lengths := make([]int, len(groups))
		starts := make([]uint64, len(groups))
		maxLen := 0
		var prev uint64
		for i := range groups {
			b := bounds.AtUint(i)
			starts[i] = prev
			ln := int(b - prev)
			if ln < 0 {
				return Result{}, fmt.Errorf("densify: non-monotonic bounds at dim%d[%d]", d, i)
			}
			lengths[i] = ln
			if ln > maxLen {
				maxLen = ln
			}
			prev = b
		}
		shape = append(shape, maxLen)

		hasKeys := len(src.KeysAtDepth(d)) > 0
		var mask Mask
		if hasKeys {
			mask = Mask{Shape: append([]int(nil), shape...), Data: make([]bool, product(shape))}
		}

		nextGroups := make([]group, 0, sum(lengths))
		for i, g := range groups {
			ln := lengths[i]
			offset := 0
			if side == PadLeft {
				offset = maxLen - ln
			}
			for j := 0; j < ln; j++ {
				p := append(append([]int(nil), g.path...), offset+j)
				if hasKeys {
					mask.Data[flatOffset(shape, p)] = true
				}
				nextGroups = append(nextGroups, group{path: p})
			}
		}
		if hasKeys {
			res.Masks[d] = mask
		}

		for _, key := range src.KeysAtDepth(d) {
			kind := src.KindAtDepth(d, key)
			full, err := src.FullValues(d, key)
			if err != nil {
				return Result{}, fmt.Errorf("densify: reading dim%d/%s: %w", d, key, err)
			}
			da := DenseArray{Shape: append([]int(nil), shape...), Data: dtype.Zeros(kind, product(shape))}

			for i, g := range groups {
				ln := lengths[i]
				if ln == 0 {
					continue
				}
				seg := full.Slice(int(starts[i]), int(starts[i])+ln)
				offset := 0
				if side == PadLeft {
					offset = maxLen - ln
				}
				p := append(append([]int(nil), g.path...), offset)
				dtype.CopyInto(da.Data, flatOffset(shape, p), seg)
			}
			res.Values[key] = da
		}

		groups = nextGroups
	}

	return res, nil
}

func product(shape []int) int {
	p := 1
	for _, s := range shape {
		p *= s
	}
	return p
}

func sum(xs []int) int {
	s := 0
	for _, x := range xs {
		s += x
	}
	return s
}

// flatOffset returns the row-major flat index of the full coordinate path
// (len(path) == len(shape)) within an array of the given shape.
func flatOffset(shape, path []int) int {
	off := 0
	stride := 1
	for i := len(shape) - 1; i >= 0; i-- {
		off += path[i] * stride
		stride *= shape[i]
	}
	return off
}
