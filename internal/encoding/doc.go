// Package encoding implements the handful of non-standard text encodings
// used by password-hashing wire formats: bcrypt's modified base64, the
// h64 little-endian triplet encoding shared by the sha256_crypt/
// sha512_crypt/md5_crypt family, and the passlib-flavoured base64 used by
// the pbkdf2_* schemes.
//
// Nothing here is cryptographic; it is pure byte<->text plumbing and has
// no opinion about salts, rounds, or checksums.
package encoding
