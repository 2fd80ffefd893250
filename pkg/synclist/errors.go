package synclist

import (
	"errors"
	"fmt"
)

// Sentinel errors for list operations.
var (
	ErrIndexOutOfRange = errors.New("synclist: index out of range")
	ErrTypeMismatch    = errors.New("synclist: type mismatch")
)

// IndexError wraps ErrIndexOutOfRange with the offending index and the
// length the index was validated against.
type IndexError struct {
	Index int
	Len   int
}

func (e *IndexError) Error() string {
	return fmt.Sprintf("synclist: index %d out of range (len %d)", e.Index, e.Len)
}

func (e *IndexError) Unwrap() error { return ErrIndexOutOfRange }

// TypeError wraps ErrTypeMismatch with the dynamic type of the rejected
// value and the element type it was checked against.
type TypeError struct {
	Value string // dynamic type of the offending value ("nil" for untyped nil)
	Elem  string
}

func (e *TypeError) Error() string {
	return fmt.Sprintf("synclist: value of type %s is not assignable to element type %s", e.Value, e.Elem)
}

func (e *TypeError) Unwrap() error { return ErrTypeMismatch }
