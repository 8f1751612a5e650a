// Package tensorstore implements C3: a safetensors-compatible named flat
// array container used as a dumb byte-slice store. It is deliberately
// minimal — save, open, and zero-copy-ish ranged reads over named 1-D
// arrays — because the joint nested ragged tensor dictionary only needs a
// random-access-by-name byte store, not the rest of the safetensors
// ecosystem (no string/object tensors, no multi-dimensional shapes).
//
// On-disk layout, little-endian throughout:
//
//	[8 bytes]   header length N (uint64)
//	[N bytes]   JSON header: name -> {dtype, shape, data_offsets: [start, end]}
//	[...]       concatenated tensor data, each tensor's bytes at its declared
//	            data_offsets relative to the end of the header block.
//
// This mirrors the real safetensors format (see the gomlx/go-huggingface
// safetensors client in the retrieved examples) closely enough that the
// header's JSON shape is wire-compatible, while the section-offset/
// random-access-by-name design follows the teacher's own binary index file
// format (internal/index/hnsw/format.go).
package tensorstore

import "fmt"

// entry is one tensor's header record.
type entry struct {
	Dtype       string   `json:"dtype"`
	Shape       []int    `json:"shape"`
	DataOffsets [2]int64 `json:"data_offsets"`
}

// reservedNames must never be used as a user-chosen key component (spec.md §6).
var reservedNames = map[string]bool{
	"bounds":  true,
	"lengths": true,
	"mask":    true,
}

// ValidateKeyName checks a user-chosen key against the naming rules in spec.md §6.
func ValidateKeyName(key string) error {
	if key == "" {
		return fmt.Errorf("tensorstore: key name must not be empty")
	}
	for i := 0; i < len(key); i++ {
		if key[i] == '/' {
			return fmt.Errorf("tensorstore: key name %q must not contain '/'", key)
		}
	}
	if reservedNames[key] {
		return fmt.Errorf("tensorstore: key name %q is reserved", key)
	}
	return nil
}
