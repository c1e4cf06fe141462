// Package passlib implements a password-hashing framework: given a user
// secret, it produces a self-describing hash string suitable for
// long-term storage, and later verifies a presented secret against that
// string. It supports a catalogue of historical and modern schemes
// (bcrypt, scrypt, argon2, the sha256_crypt/sha512_crypt/md5_crypt
// family, pbkdf2_*, LDAP wrappers, legacy digests, and plaintext) and
// composes them into [Context] policies that choose a default for new
// hashes, accept legacy hashes for verification, flag old hashes for
// upgrade, and apply per-category overrides.
//
// # Architecture boundaries
//
// passlib is the public surface: [Context], [Registry], the error
// taxonomy, and the TOTP helpers. The per-scheme contract lives in the
// hash subpackage; concrete schemes live under schemes/ and register
// themselves with a [Registry] via blank import (see schemes/all for a
// one-import bundle of the whole catalogue).
//
// # What this package must NOT do
//
//   - Own network I/O, credential storage, or CLI/web framework glue —
//     those are external collaborators that consume this package.
//   - Invent new cryptographic primitives; every scheme wraps a primitive
//     specified by its published standard.
//   - Log or error-wrap a plaintext secret.
package passlib
