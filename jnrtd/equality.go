package jnrtd

import (
	"fmt"
	"sort"
	"strings"

	"github.com/ragged-tensors/jnrtd/internal/dtype"
)

// Equal reports structural equality: both JNRTDs have the same key set and
// every stored array (including bounds) is element-wise equal. Grounded on
// the teacher's byte-for-byte array comparison idiom (internal/quant test
// helpers) rather than reflect.DeepEqual, since two JNRTDs with the same
// logical content may hold differently-capacitied backing slices.
func (j *JNRTD) Equal(other *JNRTD) bool {
	if j == other {
		return true
	}
	if other == nil || j.maxDepth != other.maxDepth || j.outerLen != other.outerLen {
		return false
	}

	a, err := j.materialize()
	if err != nil {
		return false
	}
	b, err := other.materialize()
	if err != nil {
		return false
	}
	if len(a) != len(b) {
		return false
	}
	for key, av := range a {
		bv, ok := b[key]
		if !ok || !dtype.Equal(av, bv) {
			return false
		}
	}
	return true
}

// GoString emits a Go-syntax composite literal of J's canonical
// map[string]dtype.Array, reconstructing an equal value when pasted into a
// test — the idiomatic-Go analogue of the original __repr__'s eval-able
// string (SPEC_FULL.md §13).
func (j *JNRTD) GoString() string {
	canonical, err := j.materialize()
	if err != nil {
		return fmt.Sprintf("jnrtd.JNRTD{ /* closed: %v */ }", err)
	}
	keys := make([]string, 0, len(canonical))
	for k := range canonical {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString("map[string]dtype.Array{\n")
	for _, k := range keys {
		arr := canonical[k]
		fmt.Fprintf(&b, "\t%q: {Kind: dtype.%s, %s: %s},\n", k, kindConstName(arr.Kind), fieldNameFor(arr.Kind), goSliceLiteral(arr))
	}
	b.WriteString("}")
	return b.String()
}

func kindConstName(k dtype.Kind) string {
	switch k {
	case dtype.KindUint8:
		return "KindUint8"
	case dtype.KindUint16:
		return "KindUint16"
	case dtype.KindUint32:
		return "KindUint32"
	case dtype.KindUint64:
		return "KindUint64"
	case dtype.KindInt8:
		return "KindInt8"
	case dtype.KindInt16:
		return "KindInt16"
	case dtype.KindInt32:
		return "KindInt32"
	case dtype.KindInt64:
		return "KindInt64"
	case dtype.KindFloat32:
		return "KindFloat32"
	default:
		return "KindInvalid"
	}
}

func fieldNameFor(k dtype.Kind) string {
	switch k {
	case dtype.KindUint8:
		return "U8"
	case dtype.KindUint16:
		return "U16"
	case dtype.KindUint32:
		return "U32"
	case dtype.KindUint64:
		return "U64"
	case dtype.KindInt8:
		return "I8"
	case dtype.KindInt16:
		return "I16"
	case dtype.KindInt32:
		return "I32"
	case dtype.KindInt64:
		return "I64"
	case dtype.KindFloat32:
		return "F32"
	default:
		return ""
	}
}

func goSliceLiteral(arr dtype.Array) string {
	n := arr.Len()
	parts := make([]string, n)
	for i := 0; i < n; i++ {
		switch arr.Kind {
		case dtype.KindFloat32:
			parts[i] = fmt.Sprintf("%v", arr.At(i))
		case dtype.KindUint8, dtype.KindUint16, dtype.KindUint32, dtype.KindUint64:
			parts[i] = fmt.Sprintf("%d", arr.AtUint(i))
		default:
			parts[i] = fmt.Sprintf("%d", int64(arr.At(i)))
		}
	}
	return fmt.Sprintf("{%s}", strings.Join(parts, ", "))
}
