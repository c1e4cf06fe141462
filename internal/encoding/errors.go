package encoding

import "errors"

var errInvalidH64 = errors.New("encoding: invalid h64 character or truncated input")
