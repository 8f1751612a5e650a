package jnrtd

import "fmt"

// PaddingSide selects which side of a padded axis holds the real values
// when densifying (spec.md §4.7).
type PaddingSide int

const (
	PadRight PaddingSide = iota
	PadLeft
)

// denseOptions configures a ToDense call.
type denseOptions struct {
	side PaddingSide
}

// DenseOption configures ToDense, following the same functional-options
// shape as the teacher's libravdb.Option (libravdb/options.go).
type DenseOption func(*denseOptions) error

// WithPaddingSide selects left- or right-padding for ToDense.
func WithPaddingSide(side PaddingSide) DenseOption {
	return func(o *denseOptions) error {
		if side != PadLeft && side != PadRight {
			return fmt.Errorf("jnrtd: invalid padding side %d", side)
		}
		o.side = side
		return nil
	}
}

func resolveDenseOptions(opts []DenseOption) (denseOptions, error) {
	o := denseOptions{side: PadRight}
	for _, opt := range opts {
		if err := opt(&o); err != nil {
			return denseOptions{}, err
		}
	}
	return o, nil
}

// flattenOptions configures Flatten.
type flattenOptions struct {
	zeroFillSiblings bool
}

// FlattenOption configures Flatten.
type FlattenOption func(*flattenOptions) error

// WithZeroFillSiblings permits Flatten to proceed when a sibling key exists
// at the axis being flattened away, zero-filling that sibling's now-absent
// structure instead of returning ErrFlattenSiblingConflict (decided Open
// Question, SPEC_FULL.md §14).
func WithZeroFillSiblings(enabled bool) FlattenOption {
	return func(o *flattenOptions) error {
		o.zeroFillSiblings = enabled
		return nil
	}
}

func resolveFlattenOptions(opts []FlattenOption) (flattenOptions, error) {
	var o flattenOptions
	for _, opt := range opts {
		if err := opt(&o); err != nil {
			return flattenOptions{}, err
		}
	}
	return o, nil
}
