// Package rfc9110 implements the parts of HTTP Semantics (RFC 9110) needed for
// serving partial content: range requests, Content-Range, HTTP-date,
// Last-Modified and If-Range.
//
// Each file is named after the RFC section it implements and quotes the
// relevant text right above the code implementing it.
package rfc9110

import "fmt"

// ParseError is the reason a header field value was rejected.
// Returned errors carry context and match these values with errors.Is.
type ParseError int

const (
	// ErrEmpty means the field value was the empty string.
	ErrEmpty ParseError = iota + 1
	// ErrMalformed means the value does not follow the field's grammar.
	ErrMalformed
	// ErrArithmeticOverflow means a position could not be resolved
	// against the representation length without under- or overflowing.
	ErrArithmeticOverflow
)

func (e ParseError) Error() string {
	switch e {
	case ErrEmpty:
		return "empty field value"
	case ErrMalformed:
		return "malformed field value"
	case ErrArithmeticOverflow:
		return "range position overflows representation length"
	}
	return fmt.Sprintf("parse error %d", int(e))
}
