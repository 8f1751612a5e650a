package planindex

import "testing"

// fakeBounds implements BoundsSource over a fixed two-depth hierarchy:
// depth1 bounds = [2,5,5,8] (outer length 4, inner lengths 2,3,0,3)
// depth2 bounds = [3,3,7,8,8,8,9,13] (8 depth-1 groups, varying inner sizes)
type fakeBounds struct {
	byDepth map[int][]uint64
}

func (f fakeBounds) BoundAt(d, idx int) (uint64, error) {
	return f.byDepth[d][idx], nil
}

func newFixture() fakeBounds {
	return fakeBounds{byDepth: map[int][]uint64{
		1: {2, 5, 5, 8},
		2: {3, 3, 7, 8, 8, 8, 9, 13},
	}}
}

func TestPlanRange_FullWindow(t *testing.T) {
	src := newFixture()
	p, err := PlanRange(src, 2, 0, 4)
	if err != nil {
		t.Fatalf("PlanRange: %v", err)
	}
	want := []AxisInterval{{0, 4}, {0, 8}, {0, 13}}
	for d, w := range want {
		if p.Intervals[d] != w {
			t.Errorf("depth %d: got %+v, want %+v", d, p.Intervals[d], w)
		}
	}
	if p.Squeeze {
		t.Error("range plan should not set Squeeze")
	}
}

func TestPlanRange_MiddleWindow(t *testing.T) {
	src := newFixture()
	// select outer elements [1,3): depth1 window is [bounds1[0], bounds1[2]) = [2,5)
	p, err := PlanRange(src, 2, 1, 3)
	if err != nil {
		t.Fatalf("PlanRange: %v", err)
	}
	if p.Intervals[1] != (AxisInterval{2, 5}) {
		t.Errorf("depth1 interval = %+v, want {2,5}", p.Intervals[1])
	}
	// depth2 window is [bounds2[1], bounds2[4]) = [3,8)
	if p.Intervals[2] != (AxisInterval{3, 8}) {
		t.Errorf("depth2 interval = %+v, want {3,8}", p.Intervals[2])
	}
}

func TestPlanInt_SetsSqueeze(t *testing.T) {
	src := newFixture()
	p, err := PlanInt(src, 2, 1, 4)
	if err != nil {
		t.Fatalf("PlanInt: %v", err)
	}
	if !p.Squeeze {
		t.Error("PlanInt should set Squeeze")
	}
	if p.Intervals[0] != (AxisInterval{1, 2}) {
		t.Errorf("depth0 interval = %+v, want {1,2}", p.Intervals[0])
	}
}

func TestPlanInt_OutOfRange(t *testing.T) {
	src := newFixture()
	if _, err := PlanInt(src, 2, 4, 4); err == nil {
		t.Error("expected out-of-range error for index == outer length")
	}
	if _, err := PlanInt(src, 2, -1, 4); err == nil {
		t.Error("expected out-of-range error for negative index")
	}
}

func TestPlanRange_EmptySelection(t *testing.T) {
	src := newFixture()
	p, err := PlanRange(src, 2, 2, 2)
	if err != nil {
		t.Fatalf("PlanRange: %v", err)
	}
	if p.Intervals[1].Len() != 0 {
		t.Errorf("expected empty depth1 window, got %+v", p.Intervals[1])
	}
	if p.Intervals[2].Len() != 0 {
		t.Errorf("expected empty depth2 window, got %+v", p.Intervals[2])
	}
}

func TestPlanRange_RejectsReversed(t *testing.T) {
	src := newFixture()
	if _, err := PlanRange(src, 2, 3, 1); err == nil {
		t.Error("expected error for reversed range")
	}
}
