package sliceexec

import (
	"testing"

	"github.com/ragged-tensors/jnrtd/internal/dtype"
	"github.com/ragged-tensors/jnrtd/internal/planindex"
)

// memSource is a trivial in-memory ArraySource used only by tests; the real
// one lives in the jnrtd facade package and wraps the canonical map kept by
// the public type.
type memSource struct {
	maxDepth int
	keys     map[int][]string
	bounds   map[int]dtype.Array
	values   map[string]dtype.Array // "dim{d}/{key}"
}

func (m memSource) MaxDepth() int              { return m.maxDepth }
func (m memSource) KeysAtDepth(d int) []string { return m.keys[d] }

func (m memSource) BoundAt(d, idx int) (uint64, error) {
	return m.bounds[d].AtUint(idx), nil
}

func (m memSource) GetBoundsRange(d, st, en int) (dtype.Array, error) {
	return m.bounds[d].Slice(st, en), nil
}

func (m memSource) GetValueRange(d int, key string, st, en int) (dtype.Array, error) {
	return m.values[qualify(d, key)].Slice(st, en), nil
}

func newFixtureSource() memSource {
	dim0 := dtype.Array{Kind: dtype.KindUint32, U32: []uint32{10, 11, 12, 13}}
	dim1Bounds := dtype.Array{Kind: dtype.KindUint32, U32: []uint32{2, 5, 5, 8}}
	dim1Vals := dtype.Array{Kind: dtype.KindUint32, U32: []uint32{100, 101, 102, 103, 104, 105, 106, 107}}
	return memSource{
		maxDepth: 1,
		keys:     map[int][]string{0: {"id"}, 1: {"v"}},
		bounds:   map[int]dtype.Array{1: dim1Bounds},
		values: map[string]dtype.Array{
			"dim0/id": dim0,
			"dim1/v":  dim1Vals,
		},
	}
}

func TestExecute_MiddleWindow(t *testing.T) {
	src := newFixtureSource()
	plan, err := planindex.PlanRange(src, 1, 1, 3)
	if err != nil {
		t.Fatalf("PlanRange: %v", err)
	}
	out, err := Execute(src, plan)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}

	id := out["dim0/id"]
	if id.Len() != 2 || id.AtUint(0) != 11 || id.AtUint(1) != 12 {
		t.Errorf("dim0/id = %v, want [11 12]", id)
	}

	bounds := out["dim1/bounds"]
	if bounds.Len() != 2 || bounds.AtUint(0) != 3 || bounds.AtUint(1) != 3 {
		t.Errorf("dim1/bounds = %v, want [3 3] (re-based from anchor 2)", bounds)
	}

	v := out["dim1/v"]
	if v.Len() != 3 {
		t.Errorf("dim1/v length = %d, want 3", v.Len())
	}
}

func TestExecute_ThenSqueeze(t *testing.T) {
	src := memSource{
		maxDepth: 1,
		keys:     map[int][]string{0: {}, 1: {"v"}},
		bounds:   map[int]dtype.Array{1: {Kind: dtype.KindUint32, U32: []uint32{2, 5, 5, 8}}},
		values: map[string]dtype.Array{
			"dim1/v": {Kind: dtype.KindUint32, U32: []uint32{100, 101, 102, 103, 104, 105, 106, 107}},
		},
	}

	plan, err := planindex.PlanInt(src, 1, 1, 4)
	if err != nil {
		t.Fatalf("PlanInt: %v", err)
	}
	out, err := Execute(src, plan)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	squeezed, err := Squeeze(out, 1)
	if err != nil {
		t.Fatalf("Squeeze: %v", err)
	}

	if _, ok := squeezed["dim1/bounds"]; ok {
		t.Error("squeezed result must not retain dim1/bounds")
	}
	v, ok := squeezed["dim0/v"]
	if !ok {
		t.Fatal("squeezed result missing dim0/v")
	}
	if v.Len() != 3 {
		t.Errorf("dim0/v length = %d, want 3 (element 1 has 3 values)", v.Len())
	}
}

func TestExecute_EmptyRange(t *testing.T) {
	src := newFixtureSource()
	plan, err := planindex.PlanRange(src, 1, 2, 2)
	if err != nil {
		t.Fatalf("PlanRange: %v", err)
	}
	out, err := Execute(src, plan)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if out["dim0/id"].Len() != 0 {
		t.Errorf("expected empty dim0/id, got length %d", out["dim0/id"].Len())
	}
	if out["dim1/v"].Len() != 0 {
		t.Errorf("expected empty dim1/v, got length %d", out["dim1/v"].Len())
	}
}
