package densify

import (
	"testing"

	"github.com/ragged-tensors/jnrtd/internal/dtype"
)

// fixtureSource reproduces the worked example from spec.md:
//
//	T  = [[1,2,3],[4,5]]
//	id = [[[1,2,3],[3,4],[1,2]],[[3],[3,2,2]]]
type fixtureSource struct{}

func (fixtureSource) MaxDepth() int { return 2 }
func (fixtureSource) OuterLen() int { return 2 }

func (fixtureSource) KeysAtDepth(d int) []string {
	switch d {
	case 1:
		return []string{"T"}
	case 2:
		return []string{"id"}
	default:
		return nil
	}
}

func (fixtureSource) KindAtDepth(d int, key string) dtype.Kind { return dtype.KindUint8 }

func (fixtureSource) FullBounds(d int) (dtype.Array, error) {
	switch d {
	case 1:
		return dtype.Array{Kind: dtype.KindUint32, U32: []uint32{3, 5}}, nil
	case 2:
		return dtype.Array{Kind: dtype.KindUint32, U32: []uint32{3, 5, 7, 8, 11}}, nil
	default:
		return dtype.Array{}, nil
	}
}

func (fixtureSource) FullValues(d int, key string) (dtype.Array, error) {
	switch {
	case d == 1 && key == "T":
		return dtype.Array{Kind: dtype.KindUint8, U8: []uint8{1, 2, 3, 4, 5}}, nil
	case d == 2 && key == "id":
		return dtype.Array{Kind: dtype.KindUint8, U8: []uint8{1, 2, 3, 3, 4, 1, 2, 3, 3, 2, 2}}, nil
	default:
		return dtype.Array{}, nil
	}
}

func at(da DenseArray, path ...int) uint64 {
	return da.Data.AtUint(flatOffset(da.Shape, path))
}

func TestToDense_RightPad_MatchesWorkedExample(t *testing.T) {
	res, err := ToDense(fixtureSource{}, PadRight)
	if err != nil {
		t.Fatalf("ToDense: %v", err)
	}

	T, ok := res.Values["T"]
	if !ok {
		t.Fatal("missing T in result")
	}
	want := [][]uint64{{1, 2, 3}, {4, 5, 0}}
	for i := 0; i < 2; i++ {
		for j := 0; j < 3; j++ {
			if got := at(T, i, j); got != want[i][j] {
				t.Errorf("T[%d][%d] = %d, want %d", i, j, got, want[i][j])
			}
		}
	}

	mask, ok := res.Masks[2]
	if !ok {
		t.Fatal("missing dim2 mask")
	}
	for j := 0; j < 3; j++ {
		if mask.Data[flatOffset(mask.Shape, []int{1, 2, j})] {
			t.Errorf("mask[1][2][%d] should be False (padding row)", j)
		}
	}
	for j := 0; j < 3; j++ {
		if !mask.Data[flatOffset(mask.Shape, []int{1, 1, j})] {
			t.Errorf("mask[1][1][%d] should be True", j)
		}
	}
}

func TestToDense_LeftPad_ShiftsOccupiedWindow(t *testing.T) {
	res, err := ToDense(fixtureSource{}, PadLeft)
	if err != nil {
		t.Fatalf("ToDense: %v", err)
	}
	T := res.Values["T"]
	// S7: to_dense(padding_side='left')['T'] == [[1,2,3],[0,4,5]]
	want := [][]uint64{{1, 2, 3}, {0, 4, 5}}
	for i := 0; i < 2; i++ {
		for j := 0; j < 3; j++ {
			if got := at(T, i, j); got != want[i][j] {
				t.Errorf("T[%d][%d] = %d, want %d", i, j, got, want[i][j])
			}
		}
	}
}

func TestIndices_Depth1(t *testing.T) {
	idx, err := Indices(fixtureSource{}, 1)
	if err != nil {
		t.Fatalf("Indices: %v", err)
	}
	if len(idx) != 5 {
		t.Fatalf("got %d paths, want 5 (3 children of outer0 + 2 of outer1)", len(idx))
	}
}
