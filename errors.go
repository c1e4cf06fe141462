package passlib

import (
	"errors"
	"fmt"

	"github.com/notypecheck/passlib/hash"
)

// MalformedHashError, InvalidHashError, and UnknownHashError are aliased
// from the hash package so callers never need to import it directly for
// error handling; schemes and the context engine both produce these.
type (
	MalformedHashError    = hash.MalformedHashError
	InvalidHashError      = hash.InvalidHashError
	UnknownHashError      = hash.UnknownHashError
	MissingBackendError   = hash.MissingBackendError
	PasswordSizeError     = hash.PasswordSizeError
	PasswordTruncateError = hash.PasswordTruncateError
	PasswordValueError    = hash.PasswordValueError
)

// ConfigError reports an invalid policy map or an out-of-range parameter
// discovered while constructing a [Context].
type ConfigError struct {
	Key    string
	Reason string
}

func (e *ConfigError) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("passlib: config error: %s", e.Reason)
	}
	return fmt.Sprintf("passlib: config error at %q: %s", e.Key, e.Reason)
}

// ErrUnknownScheme names the unknown-scheme condition. NewContext reports
// an unregistered scheme as a ConfigError and Registry.Get as a plain
// error; neither wraps ErrUnknownScheme.
var ErrUnknownScheme = errors.New("unknown scheme")
