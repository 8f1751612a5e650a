package dtype

import "testing"

func TestInferInt_NarrowsToSmallestWidth(t *testing.T) {
	cases := []struct {
		name string
		vals []int64
		want Kind
	}{
		{"small unsigned", []int64{1, 2, 200}, KindUint8},
		{"needs uint16", []int64{0, 1000}, KindUint16},
		{"needs uint32", []int64{0, 70000}, KindUint32},
		{"negative fits int8", []int64{-5, 5}, KindInt8},
		{"negative needs int16", []int64{-300, 5}, KindInt16},
		{"negative needs int32", []int64{-70000, 5}, KindInt32},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			arr, err := InferInt(c.vals)
			if err != nil {
				t.Fatalf("InferInt(%v): %v", c.vals, err)
			}
			if arr.Kind != c.want {
				t.Errorf("InferInt(%v) = %s, want %s", c.vals, arr.Kind, c.want)
			}
			if arr.Len() != len(c.vals) {
				t.Errorf("Len() = %d, want %d", arr.Len(), len(c.vals))
			}
		})
	}
}

func TestInferInt_EmptyIsError(t *testing.T) {
	if _, err := InferInt(nil); err == nil {
		t.Error("expected an error for an empty sequence")
	}
}

func TestInferFloat_AlwaysFloat32(t *testing.T) {
	arr := InferFloat([]float64{1, 2, 3.5})
	if arr.Kind != KindFloat32 {
		t.Errorf("Kind = %s, want float32", arr.Kind)
	}
	if arr.At(2) != 3.5 {
		t.Errorf("At(2) = %v, want 3.5", arr.At(2))
	}
}

func TestSliceCopiesRatherThanAliases(t *testing.T) {
	a := Array{Kind: KindUint8, U8: []uint8{1, 2, 3, 4}}
	s := a.Slice(1, 3)
	s.U8[0] = 99
	if a.U8[1] != 2 {
		t.Errorf("Slice aliased the parent array: a.U8[1] = %d, want 2", a.U8[1])
	}
}

func TestConcatRejectsKindMismatch(t *testing.T) {
	a := Array{Kind: KindUint8, U8: []uint8{1}}
	b := Array{Kind: KindUint16, U16: []uint16{1}}
	if _, err := Concat(a, b); err == nil {
		t.Error("expected an error concatenating mismatched kinds")
	}
}

func TestAddSubScalarUintRoundTrip(t *testing.T) {
	a := Array{Kind: KindUint32, U32: []uint32{5, 8, 11}}
	shifted := AddScalarUint(a, 10)
	back := SubScalarUint(shifted, 10)
	if !Equal(a, back) {
		t.Errorf("AddScalarUint/SubScalarUint round trip: got %v, want %v", back, a)
	}
}

func TestBytesLERoundTrip(t *testing.T) {
	for _, arr := range []Array{
		{Kind: KindUint8, U8: []uint8{1, 255, 0}},
		{Kind: KindInt16, I16: []int16{-300, 0, 300}},
		{Kind: KindUint32, U32: []uint32{1, 70000}},
		{Kind: KindFloat32, F32: []float32{1.5, -2.25}},
		{Kind: KindInt64, I64: []int64{-1, 1 << 40}},
	} {
		buf := arr.BytesLE()
		got, err := FromBytesLE(arr.Kind, buf)
		if err != nil {
			t.Fatalf("FromBytesLE: %v", err)
		}
		if !Equal(arr, got) {
			t.Errorf("round trip for %s: got %v, want %v", arr.Kind, got, arr)
		}
	}
}

func TestKindFromStringRoundTrip(t *testing.T) {
	for _, k := range []Kind{KindUint8, KindUint16, KindUint32, KindUint64, KindInt8, KindInt16, KindInt32, KindInt64, KindFloat32} {
		got, err := KindFromString(k.DiskTag())
		if err != nil {
			t.Fatalf("KindFromString(%q): %v", k.DiskTag(), err)
		}
		if got != k {
			t.Errorf("KindFromString(%q) = %s, want %s", k.DiskTag(), got, k)
		}
	}
	if _, err := KindFromString("bogus"); err == nil {
		t.Error("expected an error for an unrecognized dtype tag")
	}
}

func TestBoundsKindFor(t *testing.T) {
	if k := BoundsKindFor(100); k != KindUint32 {
		t.Errorf("BoundsKindFor(100) = %s, want uint32", k)
	}
	if k := BoundsKindFor(uint64(1) << 33); k != KindUint64 {
		t.Errorf("BoundsKindFor(2^33) = %s, want uint64", k)
	}
}

func TestCopyIntoScattersAtOffset(t *testing.T) {
	dst := Zeros(KindUint8, 5)
	src := Array{Kind: KindUint8, U8: []uint8{7, 8}}
	CopyInto(dst, 2, src)
	want := []uint8{0, 0, 7, 8, 0}
	for i, v := range want {
		if dst.U8[i] != v {
			t.Errorf("dst.U8[%d] = %d, want %d", i, dst.U8[i], v)
		}
	}
}
