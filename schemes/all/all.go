// Package all registers every scheme this module ships by blank-importing
// each scheme package, so that
//
//	import _ "github.com/notypecheck/passlib/schemes/all"
//
// is sufficient to populate the default registry with the full catalogue.
// Programs that want a smaller binary, or that only need a handful of
// schemes, should blank-import the specific schemes/* packages instead.
package all

import (
	_ "github.com/notypecheck/passlib/schemes/argon2"
	_ "github.com/notypecheck/passlib/schemes/bcrypt"
	_ "github.com/notypecheck/passlib/schemes/digest"
	_ "github.com/notypecheck/passlib/schemes/ldap"
	_ "github.com/notypecheck/passlib/schemes/md5crypt"
	_ "github.com/notypecheck/passlib/schemes/pbkdf2"
	_ "github.com/notypecheck/passlib/schemes/plaintext"
	_ "github.com/notypecheck/passlib/schemes/scrypt"
	_ "github.com/notypecheck/passlib/schemes/sha256crypt"
	_ "github.com/notypecheck/passlib/schemes/sha512crypt"
)
