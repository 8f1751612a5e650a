package jnrtd

import (
	"fmt"

	"github.com/ragged-tensors/jnrtd/internal/dtype"
	"github.com/ragged-tensors/jnrtd/internal/tensorstore"
)

// memSource adapts an in-memory canonical dictionary to the read
// interfaces internal/planindex, internal/sliceexec, and internal/densify
// need, so the exact same planning/execution/densification code runs
// whether J is in-memory or file-backed.
type memSource struct {
	maxDepth int
	outer    int
	keys     map[int][]string
	mem      map[string]dtype.Array
}

func (s memSource) MaxDepth() int              { return s.maxDepth }
func (s memSource) OuterLen() int              { return s.outer }
func (s memSource) KeysAtDepth(d int) []string { return s.keys[d] }

func (s memSource) KindAtDepth(d int, key string) dtype.Kind {
	return s.mem[qualify(d, key)].Kind
}

func (s memSource) BoundAt(d, idx int) (uint64, error) {
	b, ok := s.mem[qualify(d, "bounds")]
	if !ok {
		return 0, fmt.Errorf("jnrtd: no dim%d/bounds", d)
	}
	return b.AtUint(idx), nil
}

func (s memSource) GetBoundsRange(d, st, en int) (dtype.Array, error) {
	b, ok := s.mem[qualify(d, "bounds")]
	if !ok {
		return dtype.Array{}, fmt.Errorf("jnrtd: no dim%d/bounds", d)
	}
	return b.Slice(st, en), nil
}

func (s memSource) GetValueRange(d int, key string, st, en int) (dtype.Array, error) {
	v, ok := s.mem[qualify(d, key)]
	if !ok {
		return dtype.Array{}, fmt.Errorf("jnrtd: no dim%d/%s", d, key)
	}
	return v.Slice(st, en), nil
}

func (s memSource) FullBounds(d int) (dtype.Array, error) {
	b, ok := s.mem[qualify(d, "bounds")]
	if !ok {
		return dtype.Array{}, fmt.Errorf("jnrtd: no dim%d/bounds", d)
	}
	return b, nil
}

func (s memSource) FullValues(d int, key string) (dtype.Array, error) {
	v, ok := s.mem[qualify(d, key)]
	if !ok {
		return dtype.Array{}, fmt.Errorf("jnrtd: no dim%d/%s", d, key)
	}
	return v, nil
}

// fileSource adapts a tensorstore.File (the whole, unsliced file contents)
// to the same read interfaces, reading each requested range directly out
// of the shared mmap.
type fileSource struct {
	maxDepth int
	outer    int
	keys     map[int][]string
	file     *tensorstore.File
}

func (s fileSource) MaxDepth() int              { return s.maxDepth }
func (s fileSource) OuterLen() int              { return s.outer }
func (s fileSource) KeysAtDepth(d int) []string { return s.keys[d] }

func (s fileSource) KindAtDepth(d int, key string) dtype.Kind {
	n, err := s.file.GetShape(qualify(d, key))
	if err != nil || n == 0 {
		return dtype.KindInvalid
	}
	one, err := s.file.GetRange(qualify(d, key), 0, 1)
	if err != nil {
		return dtype.KindInvalid
	}
	return one.Kind
}

func (s fileSource) BoundAt(d, idx int) (uint64, error) {
	a, err := s.file.GetRange(qualify(d, "bounds"), idx, idx+1)
	if err != nil {
		return 0, err
	}
	return a.AtUint(0), nil
}

func (s fileSource) GetBoundsRange(d, st, en int) (dtype.Array, error) {
	return s.file.GetRange(qualify(d, "bounds"), st, en)
}

func (s fileSource) GetValueRange(d int, key string, st, en int) (dtype.Array, error) {
	return s.file.GetRange(qualify(d, key), st, en)
}

func (s fileSource) FullBounds(d int) (dtype.Array, error) {
	n, err := s.file.GetShape(qualify(d, "bounds"))
	if err != nil {
		return dtype.Array{}, err
	}
	return s.file.GetRange(qualify(d, "bounds"), 0, n)
}

func (s fileSource) FullValues(d int, key string) (dtype.Array, error) {
	n, err := s.file.GetShape(qualify(d, key))
	if err != nil {
		return dtype.Array{}, err
	}
	return s.file.GetRange(qualify(d, key), 0, n)
}
