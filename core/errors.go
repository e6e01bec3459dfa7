package core

import (
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
)

// ErrorKind classifies failures surfaced to the API boundary.
type ErrorKind int

const (
	KindUnknown ErrorKind = iota
	KindNotFound
	KindAlreadyExists
	KindInvalidArgument
	KindStoreUnavailable
	KindInconsistent
)

var kindNames = map[ErrorKind]string{
	KindUnknown:          "Unknown",
	KindNotFound:         "NotFound",
	KindAlreadyExists:    "AlreadyExists",
	KindInvalidArgument:  "InvalidArgument",
	KindStoreUnavailable: "StoreUnavailable",
	KindInconsistent:     "Inconsistent",
}

func (k ErrorKind) String() string {
	return kindNames[k]
}

// Error is a classified error. Sentinel values are compared with errors.Is.
type Error struct {
	Kind ErrorKind
	Msg  string
	Err  error
}

func NewError(kind ErrorKind, msg string) *Error {
	return &Error{Kind: kind, Msg: msg}
}

// NewStoreError wraps a persistence layer failure.
func NewStoreError(err error, msg string) error {
	if err == nil {
		return nil
	}
	return errors.WithStack(&Error{Kind: KindStoreUnavailable, Msg: msg, Err: err})
}

// NewInconsistentError reports counters or state observed out of sync.
func NewInconsistentError(err error, msg string) error {
	return errors.WithStack(&Error{Kind: KindInconsistent, Msg: msg, Err: err})
}

func (err *Error) Error() string {
	if err.Err == nil {
		return err.Msg
	}
	return err.Msg + ": " + err.Err.Error()
}

func (err *Error) Unwrap() error { return err.Err }

// KindOf returns the ErrorKind of the first classified error in err's chain.
func KindOf(err error) ErrorKind {
	if err == nil {
		return KindUnknown
	}
	var cErr *Error
	if errors.As(err, &cErr) {
		return cErr.Kind
	}
	var vErr *ValidationError
	if errors.As(err, &vErr) {
		return KindInvalidArgument
	}
	var fErrs validator.ValidationErrors
	if errors.As(err, &fErrs) {
		return KindInvalidArgument
	}
	return KindUnknown
}

// FieldError is used to indicate an error with a specific struct field.
type FieldError struct {
	Field string
	Error string
}

type ValidationError struct {
	Err    error
	Fields []FieldError
}

func NewValidationError(err error, flds ...FieldError) error {
	return &ValidationError{err, flds}
}

func (err *ValidationError) Error() string {
	if err.Err != nil {
		return err.Err.Error()
	}
	if len(err.Fields) > 0 {
		return err.Fields[0].Field + ": " + err.Fields[0].Error
	}
	return ""
}

type shutdown struct {
	message string
}

func NewShutdownError(msg string) error {
	return &shutdown{message: msg}
}

func (s shutdown) Error() string {
	return s.message
}

func IsShutdown(err error) bool {
	_, ok := errors.Cause(err).(*shutdown)
	return ok
}
