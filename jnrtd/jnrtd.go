// Package jnrtd is the public facade (C8) for the joint nested ragged
// tensor dictionary engine: a dictionary of named numeric arrays that share
// a common hierarchy of ragged nesting, supporting compact persistence,
// O(slice-size) random access, and cheap densification into padded
// rectangular arrays.
package jnrtd

import (
	"fmt"
	"sort"

	"github.com/ragged-tensors/jnrtd/internal/dtype"
	"github.com/ragged-tensors/jnrtd/internal/memstat"
	"github.com/ragged-tensors/jnrtd/internal/obs"
	"github.com/ragged-tensors/jnrtd/internal/ragged"
	"github.com/ragged-tensors/jnrtd/internal/tensorstore"
)

// Nested is the raw input shape for one key passed to New: a leaf (a flat
// run of numeric values) or a group of child Nested nodes. It is a type
// alias for internal/ragged.Node so callers never construct the internal
// type directly while still avoiding any exported dependency on reflection.
type Nested = ragged.Node

// IntLeaf builds a Nested leaf holding integer values.
func IntLeaf(v []int64) Nested { return ragged.IntLeaf(v) }

// FloatLeaf builds a Nested leaf holding floating-point values.
func FloatLeaf(v []float64) Nested { return ragged.FloatLeaf(v) }

// Group builds a Nested group from child nodes.
func Group(children ...Nested) Nested { return ragged.Group(children) }

// JNRTD is an immutable joint nested ragged tensor dictionary. It is either
// in-memory (owns its canonical arrays) or file-backed (holds a shared,
// read-only tensorstore handle); exactly one of those backing stores is set
// at any time (spec.md §5).
type JNRTD struct {
	maxDepth    int
	outerLen    int
	keysAtDepth map[int][]string // sorted, excludes the synthetic "bounds" key

	mem  map[string]dtype.Array // in-memory canonical dict; nil if file-backed
	file *tensorstore.File      // shared handle; nil if in-memory

	metrics *obs.Metrics
	tracker *memstat.Tracker
	closed  bool
}

// New constructs a JNRTD from raw nested numeric inputs, inferring each
// key's dtype and depth and validating that keys sharing a depth agree on
// the ragged hierarchy (spec.md §2 I1, §3, §4.1-§4.3).
func New(inputs map[string]Nested) (*JNRTD, error) {
	const op = "New"
	if len(inputs) == 0 {
		return nil, newErr(ErrEmptyInput, op, "no keys provided")
	}

	mem := make(map[string]dtype.Array)
	keysAtDepth := make(map[int][]string)
	boundsAtDepth := make(map[int][]uint64)
	maxDepth := 0
	outerLen := -1

	names := make([]string, 0, len(inputs))
	for k := range inputs {
		names = append(names, k)
	}
	sort.Strings(names)

	for _, key := range names {
		if err := tensorstore.ValidateKeyName(key); err != nil {
			return nil, &Error{Code: ErrSchemaMismatch, Op: op, Key: key, Message: "invalid key name", Cause: err}
		}
		node := inputs[key]

		if node.Leaf {
			n := len(node.Ints)
			if node.IsFloat {
				n = len(node.Floats)
			}
			if n == 0 {
				return nil, &Error{Code: ErrEmptyInput, Op: op, Key: key, Message: "key is an empty sequence"}
			}
			var arr dtype.Array
			if node.IsFloat {
				arr = dtype.InferFloat(node.Floats)
			} else {
				var err error
				arr, err = dtype.InferInt(node.Ints)
				if err != nil {
					return nil, &Error{Code: ErrNoValidDtype, Op: op, Key: key, Message: "integer dtype inference failed", Cause: err}
				}
			}
			mem[qualify(0, key)] = arr
			keysAtDepth[0] = append(keysAtDepth[0], key)
			continue
		}

		if len(node.Groups) == 0 {
			return nil, &Error{Code: ErrEmptyInput, Op: op, Key: key, Message: "key is an empty sequence"}
		}

		lengths, isFloat, ints, floats, err := ragged.Flatten(node)
		if err != nil {
			return nil, &Error{Code: ErrNonRectangular, Op: op, Key: key, Message: "failed to raggedify input", Cause: err}
		}

		var valArr dtype.Array
		if isFloat {
			valArr = dtype.InferFloat(floats)
		} else if len(ints) > 0 {
			valArr, err = dtype.InferInt(ints)
			if err != nil {
				return nil, &Error{Code: ErrNoValidDtype, Op: op, Key: key, Message: "integer dtype inference failed", Cause: err}
			}
		} else {
			// Every leaf at the innermost level was empty (all groups
			// length-zero); no values to narrow, so default to the
			// smallest admissible kind.
			valArr = dtype.Array{Kind: dtype.KindUint8}
		}

		for i, L := range lengths {
			d := i + 1
			bounds := ragged.LengthsToBounds(L)
			if existing, ok := boundsAtDepth[d]; ok {
				if !equalUint64(existing, bounds) {
					return nil, &Error{Code: ErrInconsistentHierarchy, Op: op, Key: key,
						Message: fmt.Sprintf("dim%d bounds disagree with previously established hierarchy", d)}
				}
			} else {
				boundsAtDepth[d] = bounds
				mem[qualify(d, "bounds")] = boundsArray(bounds)
			}
			if i == 0 {
				if outerLen == -1 {
					outerLen = len(L)
				} else if outerLen != len(L) {
					return nil, &Error{Code: ErrInconsistentHierarchy, Op: op, Key: key,
						Message: fmt.Sprintf("outer length %d disagrees with previously established length %d", len(L), outerLen)}
				}
			}
		}

		depth := len(lengths)
		mem[qualify(depth, key)] = valArr
		keysAtDepth[depth] = append(keysAtDepth[depth], key)
		if depth > maxDepth {
			maxDepth = depth
		}
	}

	if outerLen == -1 {
		// Every key was a depth-0 leaf; outer length is just each array's length.
		for _, key := range keysAtDepth[0] {
			n := mem[qualify(0, key)].Len()
			if outerLen == -1 {
				outerLen = n
			} else if outerLen != n {
				return nil, &Error{Code: ErrInconsistentHierarchy, Op: op, Key: key,
					Message: fmt.Sprintf("depth-0 length %d disagrees with previously established length %d", n, outerLen)}
			}
		}
	} else {
		for _, key := range keysAtDepth[0] {
			if n := mem[qualify(0, key)].Len(); n != outerLen {
				return nil, &Error{Code: ErrInconsistentHierarchy, Op: op, Key: key,
					Message: fmt.Sprintf("depth-0 length %d disagrees with outer length %d", n, outerLen)}
			}
		}
	}

	for d := range keysAtDepth {
		sort.Strings(keysAtDepth[d])
	}

	metrics := obs.NewMetrics()
	metrics.Constructions.Inc()

	return &JNRTD{
		maxDepth:    maxDepth,
		outerLen:    outerLen,
		keysAtDepth: keysAtDepth,
		mem:         mem,
		metrics:     metrics,
	}, nil
}

// newFromCanonical wraps an already-validated canonical dictionary (the
// output of sliceexec or algebra operations) without re-running inference —
// spec.md §2's "pre-validated set of canonical arrays" construction path.
func newFromCanonical(mem map[string]dtype.Array, maxDepth, outerLen int, metrics *obs.Metrics) *JNRTD {
	keysAtDepth := make(map[int][]string)
	for key := range mem {
		d, name, err := splitQualified(key)
		if err != nil {
			continue
		}
		if name == "bounds" {
			continue
		}
		keysAtDepth[d] = append(keysAtDepth[d], name)
	}
	for d := range keysAtDepth {
		sort.Strings(keysAtDepth[d])
	}
	return &JNRTD{maxDepth: maxDepth, outerLen: outerLen, keysAtDepth: keysAtDepth, mem: mem, metrics: metrics}
}

// Len returns the outer (dim0) length of J.
func (j *JNRTD) Len() int { return j.outerLen }

// MaxDepth returns R, the deepest nesting level any key lives at.
func (j *JNRTD) MaxDepth() int { return j.maxDepth }

// MinDepth returns the shallowest depth any key lives at.
func (j *JNRTD) MinDepth() int {
	min := j.maxDepth
	for d := range j.keysAtDepth {
		if len(j.keysAtDepth[d]) > 0 && d < min {
			min = d
		}
	}
	return min
}

// Keys returns every key name stored in J, across all depths.
func (j *JNRTD) Keys() []string {
	var out []string
	for _, ks := range j.keysAtDepth {
		out = append(out, ks...)
	}
	sort.Strings(out)
	return out
}

// KeysAtDim returns the key names stored at depth d.
func (j *JNRTD) KeysAtDim(d int) []string {
	out := append([]string(nil), j.keysAtDepth[d]...)
	sort.Strings(out)
	return out
}

// Close releases J's backing file handle, if any. It is a no-op for
// in-memory JNRTDs.
func (j *JNRTD) Close() error {
	if j.closed {
		return nil
	}
	j.closed = true
	if j.file != nil {
		if j.tracker != nil {
			j.tracker.FileClosed(fileSizeHint(j.file))
		}
		return j.file.Close()
	}
	return nil
}

func qualify(d int, name string) string { return fmt.Sprintf("dim%d/%s", d, name) }

func splitQualified(key string) (int, string, error) {
	for i := 3; i < len(key); i++ {
		if key[i] == '/' {
			var d int
			if _, err := fmt.Sscanf(key[:i], "dim%d", &d); err != nil {
				return 0, "", err
			}
			return d, key[i+1:], nil
		}
	}
	return 0, "", fmt.Errorf("malformed key %q", key)
}

func equalUint64(a, b []uint64) bool {
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

func last(xs []uint64) uint64 {
	if len(xs) == 0 {
		return 0
	}
	return xs[len(xs)-1]
}

// boundsArray materializes a cumulative bounds array in the narrowest
// admissible unsigned width (spec.md §6: "Bounds arrays are unsigned
// integers (width >= 32)").
func boundsArray(xs []uint64) dtype.Array {
	k := dtype.BoundsKindFor(last(xs))
	out := dtype.Zeros(k, len(xs))
	for i, v := range xs {
		out.SetAt(i, float64(v))
	}
	return out
}
