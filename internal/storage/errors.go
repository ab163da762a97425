package storage

import (
	"errors"
	"fmt"
)

var (
	// ErrWrongType is returned when an operation is applied to a key holding another kind of value
	ErrWrongType = errors.New("operation against a key holding the wrong kind of value")

	// ErrOutOfRange is returned for bad database indexes, list indexes and counts
	ErrOutOfRange = errors.New("index out of range")

	// ErrNotFound is returned where an operation requires the key to exist
	ErrNotFound = errors.New("no such key")

	// ErrNotInteger is returned when a string value cannot be used as an integer
	ErrNotInteger = errors.New("value is not an integer or out of range")

	// ErrNotFloat is returned for scores that are not valid numbers
	ErrNotFloat = errors.New("value is not a valid float")

	// ErrInvalidArgument is returned for malformed operation arguments
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrStreamID is returned when an explicit stream ID is not greater than the stream top item
	ErrStreamID = errors.New("the ID specified in XADD is equal or smaller than the target stream top item")
)

// RangeError reports a value outside its allowed bounds
type RangeError struct {
	What  string // "database", "index", "count"
	Value int64
	Min   int64
	Max   int64
}

// Error implements the error interface
func (e *RangeError) Error() string {
	return fmt.Sprintf("%s %d out of range [%d, %d]", e.What, e.Value, e.Min, e.Max)
}

// Unwrap returns ErrOutOfRange
func (e *RangeError) Unwrap() error {
	return ErrOutOfRange
}

// TypeMismatchError reports an operation applied to a key holding another kind of value
type TypeMismatchError struct {
	Key  string
	Want Kind
	Got  Kind
}

// Error implements the error interface
func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf("key %q holds a %s, not a %s", e.Key, e.Got, e.Want)
}

// Unwrap returns ErrWrongType
func (e *TypeMismatchError) Unwrap() error {
	return ErrWrongType
}
