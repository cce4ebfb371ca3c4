// Package decoder defines the Decoder interface implemented by each wire
// format (rfc5424, rfc3164, gelf, ltsv) and the shared error taxonomy they
// report through.
package decoder

import (
	"errors"
	"fmt"

	"github.com/flowgger-go/flowgger/pkg/record"
)

// Decoder turns one framed message into a Record. Implementations are
// immutable value types, safe to use from any number of goroutines and
// freely copyable — there is no "clone" method because there is no
// internal mutable state to clone.
type Decoder interface {
	Decode(raw []byte) (record.Record, error)
}

// Kind names one of the error taxonomy entries from the decode error
// design (spec'd as MissingField, InvalidTimestamp, InvalidSeverity,
// UnsupportedVersion, Malformed, UnsupportedBOM, InvalidValueType).
type Kind string

const (
	KindMissingField    Kind = "missing_field"
	KindInvalidTS       Kind = "invalid_timestamp"
	KindInvalidSeverity Kind = "invalid_severity"
	KindUnsupportedVer  Kind = "unsupported_version"
	KindMalformed       Kind = "malformed"
	KindUnsupportedBOM  Kind = "unsupported_bom"
	KindInvalidValue    Kind = "invalid_value_type"
)

// Error wraps a decode failure with its taxonomy Kind, so a splitter can
// log "<kind>: [<raw>]" without string-matching error text.
type Error struct {
	Kind   Kind
	Detail string
}

func (e *Error) Error() string {
	if e.Detail == "" {
		return string(e.Kind)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Detail)
}

func newErr(k Kind, detail string) error { return &Error{Kind: k, Detail: detail} }

func ErrMissingField(name string) error    { return newErr(KindMissingField, name) }
func ErrInvalidTimestamp(detail string) error { return newErr(KindInvalidTS, detail) }
func ErrInvalidSeverity(detail string) error  { return newErr(KindInvalidSeverity, detail) }
func ErrUnsupportedVersion(detail string) error {
	return newErr(KindUnsupportedVer, detail)
}
func ErrMalformed(reason string) error     { return newErr(KindMalformed, reason) }
func ErrUnsupportedBOM() error              { return newErr(KindUnsupportedBOM, "") }
func ErrInvalidValueType(detail string) error { return newErr(KindInvalidValue, detail) }

// KindOf extracts the taxonomy Kind from err, or "" if err wasn't produced
// by this package.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}
