package densify

// Indices returns, for every occupied position of a fully-right-padded
// dense materialisation at the given depth, its coordinate path — the
// carry-structure walk used by the original RaggedTensor.indices /
// utils.get_ragged_indices. Exposed for callers that want the occupied
// index set without paying for a full ToDense pass (e.g. micro-benchmarks
// that only need occupancy, not values).
func Indices(src Source, depth int) ([][]int, error) {
	n := src.OuterLen()
	groups := make([]group, n)
	for i := 0; i < n; i++ {
		groups[i] = group{path: []int{i}}
	}
	if depth == 0 {
		out := make([][]int, len(groups))
		for i, g := range groups {
			out[i] = g.path
		}
		return out, nil
	}

	for d := 1; d <= depth; d++ {
		bounds, err := src.FullBounds(d)
		if err != nil {
			return nil, err
		}
		next := make([]group, 0, bounds.Len())
		var prev uint64
		for i := range groups {
			b := bounds.AtUint(i)
			ln := int(b - prev)
			for j := 0; j < ln; j++ {
				next = append(next, group{path: append(append([]int(nil), groups[i].path...), j)})
			}
			prev = b
		}
		groups = next
	}

	out := make([][]int, len(groups))
	for i, g := range groups {
		out[i] = g.path
	}
	return out, nil
}
