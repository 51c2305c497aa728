package apierr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies a failure for the request boundary.
type Kind string

const (
	KindInternal        Kind = "internal"
	KindConfiguration   Kind = "configuration"
	KindInputValidation Kind = "input_validation"
	KindExtraction      Kind = "extraction"
	KindGeneration      Kind = "generation"
	KindLookup          Kind = "lookup"
	KindPayloadTooLarge Kind = "payload_too_large"
	KindRateLimited     Kind = "rate_limited"
)

// Status maps a kind to its HTTP status code.
func (k Kind) Status() int {
	switch k {
	case KindInputValidation, KindExtraction, KindLookup:
		return http.StatusBadRequest
	case KindPayloadTooLarge:
		return http.StatusRequestEntityTooLarge
	case KindRateLimited:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	if e.Op != "" {
		return fmt.Sprintf("%s: %s error", e.Op, e.Kind)
	}
	return string(e.Kind) + " error"
}

func (e *Error) Unwrap() error { return e.Err }

func New(kind Kind, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err}
}

func Configuration(op string, err error) *Error   { return New(KindConfiguration, op, err) }
func InputValidation(op string, err error) *Error { return New(KindInputValidation, op, err) }
func Extraction(op string, err error) *Error      { return New(KindExtraction, op, err) }
func Generation(op string, err error) *Error      { return New(KindGeneration, op, err) }
func Lookup(op string, err error) *Error          { return New(KindLookup, op, err) }

// KindOf returns the kind of the first *Error in err's chain, or KindInternal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) && e.Kind != "" {
		return e.Kind
	}
	return KindInternal
}

// Status returns the HTTP status for err.
func Status(err error) int {
	return KindOf(err).Status()
}
