package jnrtd

import (
	"fmt"
	"sort"

	"github.com/ragged-tensors/jnrtd/internal/dtype"
)

// Unsqueeze0 inserts a new outer axis of size 1 (spec.md §4.6 unsqueeze(0)):
// every former dim{d}/... key becomes dim{d+1}/..., and a new dim1/bounds =
// [N] is synthesised where N is the former outer length.
func (j *JNRTD) Unsqueeze0() (*JNRTD, error) {
	const op = "Unsqueeze0"
	if j.closed {
		return nil, ErrClosed
	}
	canonical, err := j.materialize()
	if err != nil {
		return nil, wrapErr(ErrUnknown, op, "materializing source", err)
	}

	out := make(map[string]dtype.Array, len(canonical)+1)
	for key, arr := range canonical {
		d, name, err := splitQualified(key)
		if err != nil {
			return nil, wrapErr(ErrUnknown, op, "malformed canonical key", err)
		}
		out[qualify(d+1, name)] = arr
	}
	out[qualify(1, "bounds")] = boundsArray([]uint64{uint64(j.outerLen)})

	metrics := j.metrics
	if metrics != nil {
		metrics.ConcatOps.Inc()
	}
	return newFromCanonical(out, j.maxDepth+1, 1, metrics), nil
}

// Squeeze0 is the inverse of Unsqueeze0 (spec.md §4.6 squeeze(0)): requires
// the current outer length be exactly 1, drops dim1/bounds, and relabels
// every dim{d} down to dim{d-1}.
func (j *JNRTD) Squeeze0() (*JNRTD, error) {
	const op = "Squeeze0"
	if j.outerLen != 1 {
		return nil, &Error{Code: ErrAxisOutOfRange, Op: op, Message: fmt.Sprintf("outer length must be 1 to squeeze, got %d", j.outerLen)}
	}
	canonical, err := j.materialize()
	if err != nil {
		return nil, wrapErr(ErrUnknown, op, "materializing source", err)
	}

	out := make(map[string]dtype.Array, len(canonical))
	for key, arr := range canonical {
		d, name, err := splitQualified(key)
		if err != nil {
			return nil, wrapErr(ErrUnknown, op, "malformed canonical key", err)
		}
		if d == 0 {
			return nil, &Error{Code: ErrAxisOutOfRange, Op: op, Key: name, Message: "cannot squeeze: key present at depth 0"}
		}
		if d == 1 && name == "bounds" {
			continue
		}
		out[qualify(d-1, name)] = arr
	}

	outerLen, err := deriveOuterLen(out, j.maxDepth-1)
	if err != nil {
		return nil, wrapErr(ErrUnknown, op, "deriving outer length", err)
	}
	return newFromCanonical(out, j.maxDepth-1, outerLen, j.metrics), nil
}

// Concatenate joins JNRTDs along the existing outer axis (spec.md §4.6):
// requires identical key sets, depth, schema, and per-depth key partition.
// An empty list is an error; a single-element list is returned unchanged.
func Concatenate(inputs []*JNRTD) (*JNRTD, error) {
	const op = "Concatenate"
	if len(inputs) == 0 {
		return nil, newErr(ErrEmptyConcatList, op, "concatenate requires at least one input")
	}
	if len(inputs) == 1 {
		return inputs[0], nil
	}

	first := inputs[0]
	for _, other := range inputs[1:] {
		if err := checkSchemaMatch(first, other); err != nil {
			return nil, wrapErr(ErrSchemaMismatch, op, "inputs do not share a schema", err)
		}
	}

	canonicals := make([]map[string]dtype.Array, len(inputs))
	for i, in := range inputs {
		c, err := in.materialize()
		if err != nil {
			return nil, wrapErr(ErrUnknown, op, "materializing input", err)
		}
		canonicals[i] = c
	}

	out := make(map[string]dtype.Array)
	totalOuter := 0
	for _, in := range inputs {
		totalOuter += in.outerLen
	}

	for d := 0; d <= first.maxDepth; d++ {
		for _, key := range first.keysAtDepth[d] {
			qk := qualify(d, key)
			acc := canonicals[0][qk]
			for _, c := range canonicals[1:] {
				next, ok := c[qk]
				if !ok {
					return nil, &Error{Code: ErrSchemaMismatch, Op: op, Key: key, Message: "key missing from one input"}
				}
				merged, err := dtype.Concat(acc, next)
				if err != nil {
					return nil, wrapErr(ErrSchemaMismatch, op, "concatenating key values", err)
				}
				acc = merged
			}
			out[qk] = acc
		}
		if d == 0 {
			continue
		}
		bk := qualify(d, "bounds")
		acc := canonicals[0][bk]
		var running uint64
		if acc.Len() > 0 {
			running = acc.AtUint(acc.Len() - 1)
		}
		for _, c := range canonicals[1:] {
			next, ok := c[bk]
			if !ok {
				return nil, &Error{Code: ErrSchemaMismatch, Op: op, Message: fmt.Sprintf("dim%d/bounds missing from one input", d)}
			}
			shifted := dtype.AddScalarUint(next, running)
			merged, err := dtype.Concat(acc, shifted)
			if err != nil {
				return nil, wrapErr(ErrSchemaMismatch, op, "concatenating bounds", err)
			}
			acc = merged
			if shifted.Len() > 0 {
				running = shifted.AtUint(shifted.Len() - 1)
			}
		}
		out[bk] = acc
	}

	metrics := first.metrics
	if metrics != nil {
		metrics.ConcatOps.Inc()
	}
	return newFromCanonical(out, first.maxDepth, totalOuter, metrics), nil
}

// Vstack is concatenate(unsqueeze(0) of each) (spec.md §4.6 vstack).
func Vstack(inputs []*JNRTD) (*JNRTD, error) {
	const op = "Vstack"
	if len(inputs) == 0 {
		return nil, newErr(ErrEmptyConcatList, op, "vstack requires at least one input")
	}
	expanded := make([]*JNRTD, len(inputs))
	for i, in := range inputs {
		u, err := in.Unsqueeze0()
		if err != nil {
			return nil, wrapErr(ErrUnknown, op, "unsqueezing input", err)
		}
		expanded[i] = u
	}
	return Concatenate(expanded)
}

// FlattenInner collapses the innermost ragged axis into its parent (spec.md
// §4.6 flatten(-1); only -1 or MaxDepth() are accepted per SPEC_FULL.md §14
// decision 3). For each inner key, the flat values array is preserved and
// the innermost bounds array is dropped; if a key already lives at the
// parent depth, the operation fails with ErrFlattenSiblingConflict unless
// opts include WithZeroFillSiblings(true), in which case the inner key's
// values take over that name at the parent depth (the original source
// leaves the exact interleaving undefined for this rare case; SPEC_FULL.md
// §14 only decided whether to allow it, not the scatter layout).
func (j *JNRTD) FlattenInner(dim int, opts ...FlattenOption) (*JNRTD, error) {
	const op = "FlattenInner"
	if dim != -1 && dim != j.maxDepth {
		return nil, &Error{Code: ErrAxisOutOfRange, Op: op, Message: fmt.Sprintf("flatten only accepts -1 or the current max depth (%d)", j.maxDepth)}
	}
	if j.maxDepth == 0 {
		return nil, &Error{Code: ErrAxisOutOfRange, Op: op, Message: "cannot flatten a dictionary with no ragged axes"}
	}
	o, err := resolveFlattenOptions(opts)
	if err != nil {
		return nil, wrapErr(ErrUnknown, op, "resolving options", err)
	}

	canonical, err := j.materialize()
	if err != nil {
		return nil, wrapErr(ErrUnknown, op, "materializing source", err)
	}

	inner := j.maxDepth
	parent := inner - 1
	if len(j.keysAtDepth[parent]) > 0 && !o.zeroFillSiblings {
		return nil, &Error{Code: ErrFlattenSiblingConflict, Op: op, Key: j.keysAtDepth[parent][0],
			Message: "key already present at the parent depth; pass WithZeroFillSiblings(true) to proceed"}
	}
	innerKeys := make(map[string]bool)
	for _, k := range j.keysAtDepth[inner] {
		innerKeys[k] = true
	}

	out := make(map[string]dtype.Array, len(canonical))
	for key, arr := range canonical {
		d, name, err := splitQualified(key)
		if err != nil {
			return nil, wrapErr(ErrUnknown, op, "malformed canonical key", err)
		}
		if d == inner && name == "bounds" {
			continue
		}
		if d == inner {
			out[qualify(parent, name)] = arr
			continue
		}
		if d == parent && innerKeys[name] {
			continue
		}
		out[qualify(d, name)] = arr
	}

	metrics := j.metrics
	if metrics != nil {
		metrics.ConcatOps.Inc()
	}
	return newFromCanonical(out, parent, j.outerLen, metrics), nil
}

// materialize returns j's full canonical dictionary, reading the whole
// backing store (in-memory: a direct reference; file-backed: a full read
// of every tensor). Algebra operations always need every element, unlike
// slicing, so there is no benefit to a ranged read here.
func (j *JNRTD) materialize() (map[string]dtype.Array, error) {
	if j.closed {
		return nil, ErrClosed
	}
	if j.mem != nil {
		return j.mem, nil
	}
	out := make(map[string]dtype.Array)
	for d := 0; d <= j.maxDepth; d++ {
		for _, key := range j.keysAtDepth[d] {
			n, err := j.file.GetShape(qualify(d, key))
			if err != nil {
				return nil, err
			}
			arr, err := j.file.GetRange(qualify(d, key), 0, n)
			if err != nil {
				return nil, err
			}
			out[qualify(d, key)] = arr
		}
		if d == 0 {
			continue
		}
		bk := qualify(d, "bounds")
		n, err := j.file.GetShape(bk)
		if err != nil {
			return nil, err
		}
		arr, err := j.file.GetRange(bk, 0, n)
		if err != nil {
			return nil, err
		}
		out[bk] = arr
	}
	return out, nil
}

// checkSchemaMatch verifies a and b share depth and, at every depth, an
// identical sorted key set (spec.md §4.6 concatenate precondition).
func checkSchemaMatch(a, b *JNRTD) error {
	if a.maxDepth != b.maxDepth {
		return fmt.Errorf("depth mismatch: %d vs %d", a.maxDepth, b.maxDepth)
	}
	for d := 0; d <= a.maxDepth; d++ {
		ka := append([]string(nil), a.keysAtDepth[d]...)
		kb := append([]string(nil), b.keysAtDepth[d]...)
		sort.Strings(ka)
		sort.Strings(kb)
		if !equalStrings(ka, kb) {
			return fmt.Errorf("key set mismatch at depth %d: %v vs %v", d, ka, kb)
		}
	}
	return nil
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
