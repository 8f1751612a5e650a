package jnrtd

import (
	"fmt"

	"github.com/ragged-tensors/jnrtd/internal/densify"
	"github.com/ragged-tensors/jnrtd/internal/dtype"
	"github.com/ragged-tensors/jnrtd/internal/planindex"
	"github.com/ragged-tensors/jnrtd/internal/sliceexec"
)

// indexSource is the union of read interfaces internal/planindex,
// internal/sliceexec, and internal/densify need; both memSource and
// fileSource satisfy it, so every operation below runs identically over an
// in-memory or file-backed JNRTD.
type indexSource interface {
	sliceexec.ArraySource
	densify.Source
}

func (j *JNRTD) source() (indexSource, error) {
	if j.closed {
		return nil, ErrClosed
	}
	if j.file != nil {
		return fileSource{maxDepth: j.maxDepth, outer: j.outerLen, keys: j.keysAtDepth, file: j.file}, nil
	}
	return memSource{maxDepth: j.maxDepth, outer: j.outerLen, keys: j.keysAtDepth, mem: j.mem}, nil
}

// AxisSelector is one element of a Tuple index expression: either a single
// integer (axes squeeze away) or a half-open range (step 1 only), mirroring
// spec.md §4.4's "at most one non-integer, and it must be last" tuple rule.
type AxisSelector struct {
	isRange bool
	i       int
	a, b    int
}

// At selects a single element on an axis.
func At(i int) AxisSelector { return AxisSelector{i: i} }

// Span selects the half-open range [a, b) on an axis.
func Span(a, b int) AxisSelector { return AxisSelector{isRange: true, a: a, b: b} }

// Int selects a single element on the outermost axis, dropping it (spec.md
// §4.4 integer index form). Illegal if any key lives at depth 0.
func (j *JNRTD) Int(i int) (*JNRTD, error) {
	const op = "Int"
	src, err := j.source()
	if err != nil {
		return nil, err
	}
	plan, err := planindex.PlanInt(src, j.maxDepth, i, j.outerLen)
	if err != nil {
		return nil, wrapErr(ErrAxisOutOfRange, op, "index out of range", err)
	}
	canonical, err := sliceexec.Execute(src, plan)
	if err != nil {
		return nil, wrapErr(ErrUnknown, op, "slice execution failed", err)
	}
	squeezed, err := sliceexec.Squeeze(canonical, j.maxDepth)
	if err != nil {
		return nil, wrapErr(ErrAxisOutOfRange, op, "cannot squeeze outer axis", err)
	}
	outerLen, err := deriveOuterLen(squeezed, j.maxDepth-1)
	if err != nil {
		return nil, wrapErr(ErrUnknown, op, "deriving outer length after squeeze", err)
	}
	if j.metrics != nil {
		j.metrics.SliceOps.Inc()
	}
	return newFromCanonical(squeezed, j.maxDepth-1, outerLen, j.metrics), nil
}

// Slice selects the half-open range [a, b) on the outermost axis (spec.md
// §4.4 range index form, step 1 only by construction of the API).
func (j *JNRTD) Slice(a, b int) (*JNRTD, error) {
	const op = "Slice"
	src, err := j.source()
	if err != nil {
		return nil, err
	}
	if a < 0 || b > j.outerLen || b < a {
		return nil, newErr(ErrAxisOutOfRange, op, "range out of bounds")
	}
	plan, err := planindex.PlanRange(src, j.maxDepth, a, b)
	if err != nil {
		return nil, wrapErr(ErrAxisOutOfRange, op, "failed to plan range", err)
	}
	canonical, err := sliceexec.Execute(src, plan)
	if err != nil {
		return nil, wrapErr(ErrUnknown, op, "slice execution failed", err)
	}
	if j.metrics != nil {
		j.metrics.SliceOps.Inc()
	}
	return newFromCanonical(canonical, j.maxDepth, b-a, j.metrics), nil
}

// IndexArray produces the vertical stack of single-index selections, in the
// given order (spec.md §4.4: "index-array planning decomposes into
// per-element planning followed by stack").
func (j *JNRTD) IndexArray(idxs []int) (*JNRTD, error) {
	const op = "IndexArray"
	if len(idxs) == 0 {
		return nil, newErr(ErrEmptyConcatList, op, "index array must not be empty")
	}
	rows := make([]*JNRTD, 0, len(idxs))
	for _, idx := range idxs {
		row, err := j.Int(idx)
		if err != nil {
			return nil, wrapErr(ErrAxisOutOfRange, op, "selecting element of index array", err)
		}
		unsq, err := row.Unsqueeze0()
		if err != nil {
			return nil, wrapErr(ErrUnknown, op, "re-expanding selected row", err)
		}
		rows = append(rows, unsq)
	}
	return Concatenate(rows)
}

// Tuple applies successive single-axis selections (spec.md §4.4): interior
// selectors must be At(...); only the final selector may be Span(...).
// Violations return ErrUnsupportedMultiSlice.
func (j *JNRTD) Tuple(sel ...AxisSelector) (*JNRTD, error) {
	const op = "Tuple"
	if len(sel) == 0 {
		return nil, newErr(ErrUnsupportedMultiSlice, op, "empty index tuple")
	}
	for i, s := range sel {
		if s.isRange && i != len(sel)-1 {
			return nil, newErr(ErrUnsupportedMultiSlice, op, "only the final tuple element may be a range")
		}
	}

	cur := j
	for i, s := range sel {
		var next *JNRTD
		var err error
		if s.isRange {
			next, err = cur.Slice(s.a, s.b)
		} else {
			next, err = cur.Int(s.i)
		}
		if err != nil {
			return nil, wrapErr(ErrUnsupportedMultiSlice, op, "applying tuple element", err)
		}
		if i > 0 {
			cur.Close()
		}
		cur = next
	}
	return cur, nil
}

// deriveOuterLen recovers the dim0 length of a canonical dictionary that
// was not produced alongside an already-known outer length (the squeeze
// path): it is the length of any dim0 value key, or failing that, the
// length of dim1/bounds.
func deriveOuterLen(mem map[string]dtype.Array, maxDepth int) (int, error) {
	for key, arr := range mem {
		d, name, err := splitQualified(key)
		if err != nil {
			continue
		}
		if d == 0 && name != "bounds" {
			return arr.Len(), nil
		}
	}
	if maxDepth >= 1 {
		if b, ok := mem[qualify(1, "bounds")]; ok {
			return b.Len(), nil
		}
	}
	return 0, fmt.Errorf("jnrtd: cannot derive outer length: no dim0 key and no dim1/bounds present")
}
