package sliceexec

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ragged-tensors/jnrtd/internal/dtype"
)

// Squeeze drops the outermost axis of a canonical dictionary produced by
// executing an integer-index Plan (Plan.Squeeze == true), relabeling every
// remaining depth down by one and discarding the new depth-1-turned-bounds
// array, which described the single selected outer element's own group
// sizes and has no meaning once that element is gone.
//
// This mirrors the original RaggedTensor integer-indexing path (__getitem__
// for an int: slice to a length-1 window, then strip dim1/bounds and
// relabel every other dim{d} to dim{d-1}).
func Squeeze(canonical map[string]dtype.Array, maxDepth int) (map[string]dtype.Array, error) {
	out := make(map[string]dtype.Array, len(canonical))
	for key, arr := range canonical {
		d, name, err := splitQualified(key)
		if err != nil {
			return nil, err
		}
		if d == 0 {
			return nil, fmt.Errorf("sliceexec: cannot squeeze dictionary with a key at depth 0 (%q)", key)
		}
		if d == 1 && name == "bounds" {
			continue
		}
		out[qualify(d-1, name)] = arr
	}
	return out, nil
}

func splitQualified(key string) (int, string, error) {
	rest, name, ok := strings.Cut(key, "/")
	if !ok || !strings.HasPrefix(rest, "dim") {
		return 0, "", fmt.Errorf("sliceexec: malformed qualified key %q", key)
	}
	d, err := strconv.Atoi(strings.TrimPrefix(rest, "dim"))
	if err != nil {
		return 0, "", fmt.Errorf("sliceexec: malformed qualified key %q: %w", key, err)
	}
	return d, name, nil
}
