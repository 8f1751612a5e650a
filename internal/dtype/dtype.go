// Package dtype implements the narrow, numeric-only type system the joint
// nested ragged tensor dictionary stores values in: a closed set of integer
// and float widths, represented as a tagged union rather than via reflection.
package dtype

import (
	"fmt"
	"math"
)

// Kind identifies the concrete width/sign/class an Array is stored in.
type Kind int

const (
	KindInvalid Kind = iota
	KindUint8
	KindUint16
	KindUint32
	KindUint64
	KindInt8
	KindInt16
	KindInt32
	KindInt64
	KindFloat32
)

func (k Kind) String() string {
	switch k {
	case KindUint8:
		return "uint8"
	case KindUint16:
		return "uint16"
	case KindUint32:
		return "uint32"
	case KindUint64:
		return "uint64"
	case KindInt8:
		return "int8"
	case KindInt16:
		return "int16"
	case KindInt32:
		return "int32"
	case KindInt64:
		return "int64"
	case KindFloat32:
		return "float32"
	default:
		return "invalid"
	}
}

// IsFloat reports whether k is the (sole) floating-point kind.
func (k Kind) IsFloat() bool { return k == KindFloat32 }

// ByteWidth returns the size in bytes of one element of kind k.
func (k Kind) ByteWidth() int {
	switch k {
	case KindUint8, KindInt8:
		return 1
	case KindUint16, KindInt16:
		return 2
	case KindUint32, KindInt32, KindFloat32:
		return 4
	case KindUint64, KindInt64:
		return 8
	default:
		return 0
	}
}

// KindFromString maps the safetensors-style dtype tag used on disk back to a Kind.
func KindFromString(s string) (Kind, error) {
	switch s {
	case "U8":
		return KindUint8, nil
	case "U16":
		return KindUint16, nil
	case "U32":
		return KindUint32, nil
	case "U64":
		return KindUint64, nil
	case "I8":
		return KindInt8, nil
	case "I16":
		return KindInt16, nil
	case "I32":
		return KindInt32, nil
	case "I64":
		return KindInt64, nil
	case "F32":
		return KindFloat32, nil
	default:
		return KindInvalid, fmt.Errorf("dtype: unrecognized on-disk dtype tag %q", s)
	}
}

// DiskTag returns the safetensors-style dtype tag for k.
func (k Kind) DiskTag() string {
	switch k {
	case KindUint8:
		return "U8"
	case KindUint16:
		return "U16"
	case KindUint32:
		return "U32"
	case KindUint64:
		return "U64"
	case KindInt8:
		return "I8"
	case KindInt16:
		return "I16"
	case KindInt32:
		return "I32"
	case KindInt64:
		return "I64"
	case KindFloat32:
		return "F32"
	default:
		return ""
	}
}

// Array is a flat 1-D numeric array in exactly one admissible Kind. Exactly
// one of the typed slices below is non-nil, selected by Kind — the "tagged
// record" idiom mapping for the source's runtime-typed tensor (see
// SPEC_FULL.md §10).
type Array struct {
	Kind Kind

	U8  []uint8
	U16 []uint16
	U32 []uint32
	U64 []uint64
	I8  []int8
	I16 []int16
	I32 []int32
	I64 []int64
	F32 []float32
}

// Len returns the element count of the array.
func (a Array) Len() int {
	switch a.Kind {
	case KindUint8:
		return len(a.U8)
	case KindUint16:
		return len(a.U16)
	case KindUint32:
		return len(a.U32)
	case KindUint64:
		return len(a.U64)
	case KindInt8:
		return len(a.I8)
	case KindInt16:
		return len(a.I16)
	case KindInt32:
		return len(a.I32)
	case KindInt64:
		return len(a.I64)
	case KindFloat32:
		return len(a.F32)
	default:
		return 0
	}
}

// At returns element i widened to float64, for generic numeric use
// (e.g. formatting values in the facade's GoString).
func (a Array) At(i int) float64 {
	switch a.Kind {
	case KindUint8:
		return float64(a.U8[i])
	case KindUint16:
		return float64(a.U16[i])
	case KindUint32:
		return float64(a.U32[i])
	case KindUint64:
		return float64(a.U64[i])
	case KindInt8:
		return float64(a.I8[i])
	case KindInt16:
		return float64(a.I16[i])
	case KindInt32:
		return float64(a.I32[i])
	case KindInt64:
		return float64(a.I64[i])
	case KindFloat32:
		return float64(a.F32[i])
	default:
		return 0
	}
}

// AtUint widens element i to uint64; only meaningful for bounds/lengths arrays.
func (a Array) AtUint(i int) uint64 {
	switch a.Kind {
	case KindUint8:
		return uint64(a.U8[i])
	case KindUint16:
		return uint64(a.U16[i])
	case KindUint32:
		return uint64(a.U32[i])
	case KindUint64:
		return a.U64[i]
	case KindInt8:
		return uint64(a.I8[i])
	case KindInt16:
		return uint64(a.I16[i])
	case KindInt32:
		return uint64(a.I32[i])
	case KindInt64:
		return uint64(a.I64[i])
	default:
		return 0
	}
}

// Slice returns a new Array holding a copy of a[st:en]. Copying (rather than
// re-slicing) keeps sliced-in-memory JNRTDs from aliasing the parent's
// backing array, matching §3's "algebra operations ... must not alias
// mutable state of their inputs".
func (a Array) Slice(st, en int) Array {
	out := Array{Kind: a.Kind}
	switch a.Kind {
	case KindUint8:
		out.U8 = append([]uint8(nil), a.U8[st:en]...)
	case KindUint16:
		out.U16 = append([]uint16(nil), a.U16[st:en]...)
	case KindUint32:
		out.U32 = append([]uint32(nil), a.U32[st:en]...)
	case KindUint64:
		out.U64 = append([]uint64(nil), a.U64[st:en]...)
	case KindInt8:
		out.I8 = append([]int8(nil), a.I8[st:en]...)
	case KindInt16:
		out.I16 = append([]int16(nil), a.I16[st:en]...)
	case KindInt32:
		out.I32 = append([]int32(nil), a.I32[st:en]...)
	case KindInt64:
		out.I64 = append([]int64(nil), a.I64[st:en]...)
	case KindFloat32:
		out.F32 = append([]float32(nil), a.F32[st:en]...)
	}
	return out
}

// Concat returns a new Array holding the concatenation of a and b, which
// must share a Kind.
func Concat(a, b Array) (Array, error) {
	if a.Kind != b.Kind {
		return Array{}, fmt.Errorf("dtype: cannot concatenate %s with %s", a.Kind, b.Kind)
	}
	out := Array{Kind: a.Kind}
	switch a.Kind {
	case KindUint8:
		out.U8 = append(append([]uint8(nil), a.U8...), b.U8...)
	case KindUint16:
		out.U16 = append(append([]uint16(nil), a.U16...), b.U16...)
	case KindUint32:
		out.U32 = append(append([]uint32(nil), a.U32...), b.U32...)
	case KindUint64:
		out.U64 = append(append([]uint64(nil), a.U64...), b.U64...)
	case KindInt8:
		out.I8 = append(append([]int8(nil), a.I8...), b.I8...)
	case KindInt16:
		out.I16 = append(append([]int16(nil), a.I16...), b.I16...)
	case KindInt32:
		out.I32 = append(append([]int32(nil), a.I32...), b.I32...)
	case KindInt64:
		out.I64 = append(append([]int64(nil), a.I64...), b.I64...)
	case KindFloat32:
		out.F32 = append(append([]float32(nil), a.F32...), b.F32...)
	}
	return out, nil
}

// AddScalarUint returns a copy of a (an unsigned bounds/offset array) with
// delta added to every element. Used when re-basing a concatenated bounds
// array onto the running total of a prior segment.
func AddScalarUint(a Array, delta uint64) Array {
	out := Array{Kind: a.Kind}
	switch a.Kind {
	case KindUint32:
		out.U32 = make([]uint32, len(a.U32))
		for i, v := range a.U32 {
			out.U32[i] = v + uint32(delta)
		}
	case KindUint64:
		out.U64 = make([]uint64, len(a.U64))
		for i, v := range a.U64 {
			out.U64[i] = v + delta
		}
	default:
		return a
	}
	return out
}

// SubScalarUint returns a copy of a with delta subtracted from every
// element, used to re-zero a sliced bounds array onto its new origin.
func SubScalarUint(a Array, delta uint64) Array {
	out := Array{Kind: a.Kind}
	switch a.Kind {
	case KindUint32:
		out.U32 = make([]uint32, len(a.U32))
		for i, v := range a.U32 {
			out.U32[i] = v - uint32(delta)
		}
	case KindUint64:
		out.U64 = make([]uint64, len(a.U64))
		for i, v := range a.U64 {
			out.U64[i] = v - delta
		}
	default:
		return a
	}
	return out
}

// Equal reports whether a and b hold the same Kind and the same element
// values in order.
func Equal(a, b Array) bool {
	if a.Kind != b.Kind || a.Len() != b.Len() {
		return false
	}
	switch a.Kind {
	case KindUint8:
		return equalSlice(a.U8, b.U8)
	case KindUint16:
		return equalSlice(a.U16, b.U16)
	case KindUint32:
		return equalSlice(a.U32, b.U32)
	case KindUint64:
		return equalSlice(a.U64, b.U64)
	case KindInt8:
		return equalSlice(a.I8, b.I8)
	case KindInt16:
		return equalSlice(a.I16, b.I16)
	case KindInt32:
		return equalSlice(a.I32, b.I32)
	case KindInt64:
		return equalSlice(a.I64, b.I64)
	case KindFloat32:
		return equalSlice(a.F32, b.F32)
	default:
		return true
	}
}

func equalSlice[T comparable](a, b []T) bool {
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

// Zeros returns a freshly allocated, zero-filled Array of the given kind and length.
func Zeros(k Kind, n int) Array {
	out := Array{Kind: k}
	switch k {
	case KindUint8:
		out.U8 = make([]uint8, n)
	case KindUint16:
		out.U16 = make([]uint16, n)
	case KindUint32:
		out.U32 = make([]uint32, n)
	case KindUint64:
		out.U64 = make([]uint64, n)
	case KindInt8:
		out.I8 = make([]int8, n)
	case KindInt16:
		out.I16 = make([]int16, n)
	case KindInt32:
		out.I32 = make([]int32, n)
	case KindInt64:
		out.I64 = make([]int64, n)
	case KindFloat32:
		out.F32 = make([]float32, n)
	}
	return out
}

// SetAt assigns the float64-widened value v into element i of a, narrowing
// to a's Kind. Used when materializing bounds arrays from uint64 values.
func (a Array) SetAt(i int, v float64) {
	switch a.Kind {
	case KindUint8:
		a.U8[i] = uint8(v)
	case KindUint16:
		a.U16[i] = uint16(v)
	case KindUint32:
		a.U32[i] = uint32(v)
	case KindUint64:
		a.U64[i] = uint64(v)
	case KindInt8:
		a.I8[i] = int8(v)
	case KindInt16:
		a.I16[i] = int16(v)
	case KindInt32:
		a.I32[i] = int32(v)
	case KindInt64:
		a.I64[i] = int64(v)
	case KindFloat32:
		a.F32[i] = float32(v)
	}
}

// CopyInto copies every element of src into dst starting at dst index
// dstStart. dst and src must share a Kind and dst must have room for
// dstStart+src.Len() elements. Used by densification to scatter a ragged
// group's values into its padded position within a rectangular output.
func CopyInto(dst Array, dstStart int, src Array) {
	switch dst.Kind {
	case KindUint8:
		copy(dst.U8[dstStart:], src.U8)
	case KindUint16:
		copy(dst.U16[dstStart:], src.U16)
	case KindUint32:
		copy(dst.U32[dstStart:], src.U32)
	case KindUint64:
		copy(dst.U64[dstStart:], src.U64)
	case KindInt8:
		copy(dst.I8[dstStart:], src.I8)
	case KindInt16:
		copy(dst.I16[dstStart:], src.I16)
	case KindInt32:
		copy(dst.I32[dstStart:], src.I32)
	case KindInt64:
		copy(dst.I64[dstStart:], src.I64)
	case KindFloat32:
		copy(dst.F32[dstStart:], src.F32)
	}
}

// BytesLE returns the little-endian on-disk encoding of a.
func (a Array) BytesLE() []byte {
	w := a.Kind.ByteWidth()
	buf := make([]byte, a.Len()*w)
	switch a.Kind {
	case KindUint8:
		copy(buf, a.U8)
	case KindInt8:
		for i, v := range a.I8 {
			buf[i] = byte(v)
		}
	case KindUint16:
		for i, v := range a.U16 {
			putUint16(buf[i*2:], v)
		}
	case KindInt16:
		for i, v := range a.I16 {
			putUint16(buf[i*2:], uint16(v))
		}
	case KindUint32:
		for i, v := range a.U32 {
			putUint32(buf[i*4:], v)
		}
	case KindInt32:
		for i, v := range a.I32 {
			putUint32(buf[i*4:], uint32(v))
		}
	case KindFloat32:
		for i, v := range a.F32 {
			putUint32(buf[i*4:], math.Float32bits(v))
		}
	case KindUint64:
		for i, v := range a.U64 {
			putUint64(buf[i*8:], v)
		}
	case KindInt64:
		for i, v := range a.I64 {
			putUint64(buf[i*8:], uint64(v))
		}
	}
	return buf
}

// FromBytesLE decodes n elements of kind k from little-endian buf.
func FromBytesLE(k Kind, buf []byte) (Array, error) {
	w := k.ByteWidth()
	if w == 0 {
		return Array{}, fmt.Errorf("dtype: cannot decode invalid kind")
	}
	if len(buf)%w != 0 {
		return Array{}, fmt.Errorf("dtype: buffer length %d not a multiple of element width %d", len(buf), w)
	}
	n := len(buf) / w
	out := Array{Kind: k}
	switch k {
	case KindUint8:
		out.U8 = append([]byte(nil), buf...)
	case KindInt8:
		out.I8 = make([]int8, n)
		for i := range out.I8 {
			out.I8[i] = int8(buf[i])
		}
	case KindUint16:
		out.U16 = make([]uint16, n)
		for i := range out.U16 {
			out.U16[i] = getUint16(buf[i*2:])
		}
	case KindInt16:
		out.I16 = make([]int16, n)
		for i := range out.I16 {
			out.I16[i] = int16(getUint16(buf[i*2:]))
		}
	case KindUint32:
		out.U32 = make([]uint32, n)
		for i := range out.U32 {
			out.U32[i] = getUint32(buf[i*4:])
		}
	case KindInt32:
		out.I32 = make([]int32, n)
		for i := range out.I32 {
			out.I32[i] = int32(getUint32(buf[i*4:]))
		}
	case KindFloat32:
		out.F32 = make([]float32, n)
		for i := range out.F32 {
			out.F32[i] = math.Float32frombits(getUint32(buf[i*4:]))
		}
	case KindUint64:
		out.U64 = make([]uint64, n)
		for i := range out.U64 {
			out.U64[i] = getUint64(buf[i*8:])
		}
	case KindInt64:
		out.I64 = make([]int64, n)
		for i := range out.I64 {
			out.I64[i] = int64(getUint64(buf[i*8:]))
		}
	}
	return out, nil
}

func putUint16(b []byte, v uint16) { b[0] = byte(v); b[1] = byte(v >> 8) }
func getUint16(b []byte) uint16    { return uint16(b[0]) | uint16(b[1])<<8 }

func putUint32(b []byte, v uint32) {
	b[0] = byte(v)
	b[1] = byte(v >> 8)
	b[2] = byte(v >> 16)
	b[3] = byte(v >> 24)
}
func getUint32(b []byte) uint32 {
	return uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24
}

func putUint64(b []byte, v uint64) {
	for i := 0; i < 8; i++ {
		b[i] = byte(v >> (8 * i))
	}
}
func getUint64(b []byte) uint64 {
	var v uint64
	for i := 0; i < 8; i++ {
		v |= uint64(b[i]) << (8 * i)
	}
	return v
}
