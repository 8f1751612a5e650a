package ragged

import (
	"reflect"
	"testing"
)

// s1Tensor reproduces spec.md's S1 worked example for id: a 2-level
// nesting, [[[1,2,3],[3,4],[1,2]], [[3],[3,2,2]]].
func s1Tensor() Node {
	return Group([]Node{
		Group([]Node{
			IntLeaf([]int64{1, 2, 3}),
			IntLeaf([]int64{3, 4}),
			IntLeaf([]int64{1, 2}),
		}),
		Group([]Node{
			IntLeaf([]int64{3}),
			IntLeaf([]int64{3, 2, 2}),
		}),
	})
}

func TestFlatten_S1_TwoLevelNesting(t *testing.T) {
	lengths, isFloat, ints, floats, err := Flatten(s1Tensor())
	if err != nil {
		t.Fatalf("Flatten: %v", err)
	}
	if isFloat {
		t.Error("expected an integral result")
	}
	if floats != nil {
		t.Errorf("expected no float values, got %v", floats)
	}
	wantLengths := [][]int{{3, 2}, {3, 2, 2, 1, 3}}
	if !reflect.DeepEqual(lengths, wantLengths) {
		t.Errorf("lengths = %v, want %v", lengths, wantLengths)
	}
	wantInts := []int64{1, 2, 3, 3, 4, 1, 2, 3, 3, 2, 2}
	if !reflect.DeepEqual(ints, wantInts) {
		t.Errorf("ints = %v, want %v", ints, wantInts)
	}
}

func TestFlatten_MixedIntAndFloatSiblingsPromotesToFloat(t *testing.T) {
	tree := Group([]Node{
		IntLeaf([]int64{1, 2}),
		FloatLeaf([]float64{3.5}),
	})
	_, isFloat, ints, floats, err := Flatten(tree)
	if err != nil {
		t.Fatalf("Flatten: %v", err)
	}
	if !isFloat {
		t.Error("expected promotion to float when any leaf is floating-point")
	}
	if ints != nil {
		t.Errorf("expected no integral accumulator once promoted, got %v", ints)
	}
	want := []float64{1, 2, 3.5}
	if !reflect.DeepEqual(floats, want) {
		t.Errorf("floats = %v, want %v", floats, want)
	}
}

func TestFlatten_NonRectangularSiblingsIsError(t *testing.T) {
	tree := Group([]Node{
		IntLeaf([]int64{1, 2}),
		Group([]Node{IntLeaf([]int64{3})}),
	})
	if _, _, _, _, err := Flatten(tree); err == nil {
		t.Error("expected an error mixing leaf and nested siblings")
	}
}

func TestFlatten_EmptyInnerGroupRetained(t *testing.T) {
	tree := Group([]Node{
		Group([]Node{IntLeaf([]int64{1, 2})}),
		Group(nil),
	})
	lengths, _, ints, _, err := Flatten(tree)
	if err != nil {
		t.Fatalf("Flatten: %v", err)
	}
	if lengths[0][1] != 0 {
		t.Errorf("expected the second outer group to have child count 0, got %d", lengths[0][1])
	}
	if len(ints) != 2 {
		t.Errorf("expected only the first group's values, got %v", ints)
	}
}

func TestFlatten_LeafNodeIsError(t *testing.T) {
	if _, _, _, _, err := Flatten(IntLeaf([]int64{1})); err == nil {
		t.Error("expected an error calling Flatten directly on a leaf")
	}
}

func TestLengthsBoundsRoundTrip(t *testing.T) {
	lengths := []int{3, 0, 2, 5}
	bounds := LengthsToBounds(lengths)
	wantBounds := []uint64{3, 3, 5, 10}
	if !reflect.DeepEqual(bounds, wantBounds) {
		t.Errorf("LengthsToBounds(%v) = %v, want %v", lengths, bounds, wantBounds)
	}
	back := BoundsToLengths(bounds)
	if !reflect.DeepEqual(back, lengths) {
		t.Errorf("BoundsToLengths(%v) = %v, want %v", bounds, back, lengths)
	}
}
