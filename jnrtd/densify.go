package jnrtd

import (
	"time"

	"github.com/ragged-tensors/jnrtd/internal/densify"
	"github.com/ragged-tensors/jnrtd/internal/dtype"
)

// DenseArray is a rectangular, zero-padded materialisation of one key.
type DenseArray struct {
	Shape []int
	Data  dtype.Array
}

// Mask is a rectangular boolean presence mask shared by every key living at
// one depth.
type Mask struct {
	Shape []int
	Data  []bool
}

// DenseResult is the output of ToDense: one DenseArray per key, plus one
// Mask per depth d >= 1 at which any key lives (spec.md §4.7).
type DenseResult struct {
	Values map[string]DenseArray
	Masks  map[int]Mask
}

// ToDense materializes J into rectangular arrays padded on the requested
// side (default right; spec.md §4.7). The contract J[i].ToDense()[k] agrees
// with J.ToDense()[k][i] on occupied positions holds regardless of which
// backing store produced J.
func (j *JNRTD) ToDense(opts ...DenseOption) (DenseResult, error) {
	const op = "ToDense"
	o, err := resolveDenseOptions(opts)
	if err != nil {
		return DenseResult{}, wrapErr(ErrUnknown, op, "resolving options", err)
	}
	src, err := j.source()
	if err != nil {
		return DenseResult{}, err
	}

	side := densify.PadRight
	if o.side == PadLeft {
		side = densify.PadLeft
	}

	start := time.Now()
	res, err := densify.ToDense(src, side)
	if j.metrics != nil {
		j.metrics.DensifyLatency.Observe(time.Since(start).Seconds())
	}
	if err != nil {
		if j.metrics != nil {
			j.metrics.DensifyErrors.Inc()
		}
		return DenseResult{}, wrapErr(ErrUnknown, op, "densification failed", err)
	}
	if j.metrics != nil {
		j.metrics.DensifyOps.Inc()
	}

	out := DenseResult{Values: make(map[string]DenseArray, len(res.Values)), Masks: make(map[int]Mask, len(res.Masks))}
	for k, v := range res.Values {
		out.Values[k] = DenseArray{Shape: v.Shape, Data: v.Data}
	}
	for d, m := range res.Masks {
		out.Masks[d] = Mask{Shape: m.Shape, Data: m.Data}
	}
	return out, nil
}

// Indices returns the occupied coordinate paths of a right-padded dense
// materialisation at the given depth, without paying for the dense arrays
// themselves (ported from ragged_tensors.py's RaggedTensor.indices; see
// SPEC_FULL.md §13).
func (j *JNRTD) Indices(depth int) ([][]int, error) {
	const op = "Indices"
	if depth < 0 || depth > j.maxDepth {
		return nil, newErr(ErrAxisOutOfRange, op, "depth out of range")
	}
	src, err := j.source()
	if err != nil {
		return nil, err
	}
	out, err := densify.Indices(src, depth)
	if err != nil {
		return nil, wrapErr(ErrUnknown, op, "computing indices", err)
	}
	return out, nil
}

// NValues returns the flat element count of key (ragged_tensors.py's
// RaggedTensor.n_values; SPEC_FULL.md §13).
func (j *JNRTD) NValues(key string) (int, error) {
	const op = "NValues"
	for d := 0; d <= j.maxDepth; d++ {
		for _, k := range j.keysAtDepth[d] {
			if k != key {
				continue
			}
			src, err := j.source()
			if err != nil {
				return 0, err
			}
			arr, err := src.FullValues(d, key)
			if err != nil {
				return 0, wrapErr(ErrUnknown, op, "reading key", err)
			}
			return arr.Len(), nil
		}
	}
	return 0, &Error{Code: ErrKeyNotFound, Op: op, Key: key, Message: "key not found"}
}

// Shape returns the dense shape key would take under ToDense (spec.md §4.7
// shape computation; ragged_tensors.py's RaggedTensor.shape; SPEC_FULL.md
// §13).
func (j *JNRTD) Shape(key string) ([]int, error) {
	const op = "Shape"
	depth := -1
	for d := 0; d <= j.maxDepth; d++ {
		for _, k := range j.keysAtDepth[d] {
			if k == key {
				depth = d
			}
		}
	}
	if depth == -1 {
		return nil, &Error{Code: ErrKeyNotFound, Op: op, Key: key, Message: "key not found"}
	}

	src, err := j.source()
	if err != nil {
		return nil, err
	}
	shape := []int{j.outerLen}
	for d := 1; d <= depth; d++ {
		bounds, err := src.FullBounds(d)
		if err != nil {
			return nil, wrapErr(ErrUnknown, op, "reading bounds", err)
		}
		maxLen := 0
		var prev uint64
		for i := 0; i < bounds.Len(); i++ {
			b := bounds.AtUint(i)
			if ln := int(b - prev); ln > maxLen {
				maxLen = ln
			}
			prev = b
		}
		shape = append(shape, maxLen)
	}
	return shape, nil
}
