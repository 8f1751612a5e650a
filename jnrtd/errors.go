package jnrtd

import (
	"errors"
	"fmt"
)

// ErrorCode classifies why a jnrtd operation failed, adapted from the
// teacher's libravdb.ErrorCode enum (libravdb/errors.go) and narrowed to
// the failure modes a joint nested ragged tensor dictionary actually has —
// no retry/recovery metadata, since every operation here is a local,
// synchronous transformation with no transient failure to retry.
type ErrorCode int

const (
	ErrUnknown ErrorCode = iota
	ErrEmptyInput
	ErrNonNumeric
	ErrNoValidDtype
	ErrNonRectangular
	ErrInconsistentHierarchy
	ErrSchemaMismatch
	ErrKeyNotFound
	ErrAxisOutOfRange
	ErrUnsupportedStep
	ErrUnsupportedMultiSlice
	ErrEmptyConcatList
	ErrFileNotFound
	ErrCorruptFile
	ErrFlattenSiblingConflict
)

func (c ErrorCode) String() string {
	switch c {
	case ErrEmptyInput:
		return "empty_input"
	case ErrNonNumeric:
		return "non_numeric"
	case ErrNoValidDtype:
		return "no_valid_dtype"
	case ErrNonRectangular:
		return "non_rectangular"
	case ErrInconsistentHierarchy:
		return "inconsistent_hierarchy"
	case ErrSchemaMismatch:
		return "schema_mismatch"
	case ErrKeyNotFound:
		return "key_not_found"
	case ErrAxisOutOfRange:
		return "axis_out_of_range"
	case ErrUnsupportedStep:
		return "unsupported_step"
	case ErrUnsupportedMultiSlice:
		return "unsupported_multi_slice"
	case ErrEmptyConcatList:
		return "empty_concat_list"
	case ErrFileNotFound:
		return "file_not_found"
	case ErrCorruptFile:
		return "corrupt_file"
	case ErrFlattenSiblingConflict:
		return "flatten_sibling_conflict"
	default:
		return "unknown"
	}
}

// Error is the structured error type returned by this package, modeled on
// libravdb.VectorDBError but trimmed to Code/Op/Key/Message/Cause.
type Error struct {
	Code    ErrorCode
	Op      string // the operation that failed, e.g. "New", "Slice", "ToDense"
	Key     string // the tensor key involved, if any
	Message string
	Cause   error
}

func (e *Error) Error() string {
	s := fmt.Sprintf("jnrtd: %s: %s", e.Op, e.Message)
	if e.Key != "" {
		s = fmt.Sprintf("%s (key %q)", s, e.Key)
	}
	if e.Cause != nil {
		s = fmt.Sprintf("%s: %v", s, e.Cause)
	}
	return s
}

func (e *Error) Unwrap() error { return e.Cause }

func newErr(code ErrorCode, op, message string) *Error {
	return &Error{Code: code, Op: op, Message: message}
}

func wrapErr(code ErrorCode, op, message string, cause error) *Error {
	return &Error{Code: code, Op: op, Message: message, Cause: cause}
}

// ErrClosed is returned by operations on a JNRTD whose backing file handle
// has already been released.
var ErrClosed = errors.New("jnrtd: dictionary is closed")
