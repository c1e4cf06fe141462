package hash

import "fmt"

// ErrorKind tags a [ParseError] with its place in the taxonomy from spec
// §7, so callers can branch on kind without string matching.
type ErrorKind int

const (
	// KindMalformed means the hash is structurally invalid: wrong
	// delimiter count, bad alphabet, wrong checksum length. Identify
	// returns false for these.
	KindMalformed ErrorKind = iota
	// KindInvalid means the hash is well-formed but a parameter is out
	// of the scheme's accepted range. Identify returns true; Verify
	// raises.
	KindInvalid
	// KindUnknown means no configured scheme matched the hash at all.
	KindUnknown
)

func (k ErrorKind) String() string {
	switch k {
	case KindMalformed:
		return "malformed"
	case KindInvalid:
		return "invalid"
	case KindUnknown:
		return "unknown"
	default:
		return "unrecognized"
	}
}

// ParseError is satisfied by MalformedHashError, InvalidHashError, and
// UnknownHashError. Messages never embed the secret.
type ParseError interface {
	error
	Kind() ErrorKind
}

// MalformedHashError reports a structurally invalid hash string.
type MalformedHashError struct {
	Scheme string
	Reason string
}

func (e *MalformedHashError) Error() string {
	return fmt.Sprintf("hash: malformed %s hash: %s", e.Scheme, e.Reason)
}

// Kind implements [ParseError].
func (e *MalformedHashError) Kind() ErrorKind { return KindMalformed }

// InvalidHashError reports a well-formed hash with an out-of-range
// parameter.
type InvalidHashError struct {
	Scheme string
	Reason string
}

func (e *InvalidHashError) Error() string {
	return fmt.Sprintf("hash: invalid %s hash: %s", e.Scheme, e.Reason)
}

// Kind implements [ParseError].
func (e *InvalidHashError) Kind() ErrorKind { return KindInvalid }

// UnknownHashError reports that no configured scheme could identify a
// hash string.
type UnknownHashError struct{}

func (e *UnknownHashError) Error() string { return "hash: no configured scheme identifies this hash" }

// Kind implements [ParseError].
func (e *UnknownHashError) Kind() ErrorKind { return KindUnknown }

// MissingBackendError reports that a scheme is recognized but has no
// usable backend (a required dependency failed to initialize).
type MissingBackendError struct {
	Scheme string
	Reason string
}

func (e *MissingBackendError) Error() string {
	return fmt.Sprintf("hash: %s has no usable backend: %s", e.Scheme, e.Reason)
}

// PasswordSizeError reports a secret exceeding a scheme's limit when the
// policy forbids truncation.
type PasswordSizeError struct {
	Scheme string
	Limit  int
}

func (e *PasswordSizeError) Error() string {
	return fmt.Sprintf("hash: %s secret exceeds %d-byte limit", e.Scheme, e.Limit)
}

// PasswordTruncateError is the bcrypt-family-specific case: secret over 72
// bytes with truncate_error enabled.
type PasswordTruncateError struct {
	Limit int
}

func (e *PasswordTruncateError) Error() string {
	return fmt.Sprintf("hash: secret exceeds %d-byte bcrypt limit and truncation is disallowed", e.Limit)
}

// PasswordValueError reports a secret containing a byte value the scheme
// forbids (e.g. a NUL byte).
type PasswordValueError struct {
	Scheme string
	Reason string
}

func (e *PasswordValueError) Error() string {
	return fmt.Sprintf("hash: %s rejects this secret: %s", e.Scheme, e.Reason)
}
