// Package digest implements unsalted legacy digest formats that predate
// the modular-crypt convention: mysql323 (MySQL's original pre-4.1
// OLD_PASSWORD(), a 16-hex-digit custom checksum with no real
// cryptographic strength), mysql41 (MySQL's PASSWORD() algorithm from
// 4.1 on, `*` + uppercase hex of SHA1(SHA1(password))) and
// postgres_md5 ("md5" + hex(md5(password+username)), which needs the
// username as a runtime context keyword rather than anything embedded in
// the hash itself — the only scheme in this catalogue that does).
package digest

import (
	"crypto/md5"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"strings"

	passlib "github.com/notypecheck/passlib"
	"github.com/notypecheck/passlib/hash"
)

func init() {
	passlib.Register("mysql323", newMySQL323Hasher, "mysql_323")
	passlib.Register("mysql41", newMySQL41Hasher, "mysql_41")
	passlib.Register("postgres_md5", newPostgresMD5Hasher, "postgres-md5")
}

// mysql323Hasher implements hash.Hasher for MySQL's original (pre-4.1)
// OLD_PASSWORD() algorithm: a bespoke 64-bit-ish checksum, not a real
// cryptographic hash, rendered as 16 lowercase hex digits with no ident
// and no salt. Superseded by mysql41 in MySQL 4.1; kept here only for
// reading legacy rows, same as passlib's own mysql323 handler.
type mysql323Hasher struct{}

func newMySQL323Hasher() (hash.Hasher, error) { return mysql323Hasher{}, nil }

func (mysql323Hasher) Descriptor() hash.Descriptor {
	return hash.Descriptor{
		Name:           "mysql323",
		Idents:         []string{""},
		SettingKwds:    nil,
		MinRounds:      1,
		MaxRounds:      1,
		DefaultRounds:  1,
		ChecksumSize:   16,
		TruncatePolicy: hash.TruncateNone,
	}
}

func (mysql323Hasher) Identify(hashStr string) bool {
	return len(hashStr) == 16 && isLowerHex(hashStr)
}

// mysql323Digest reimplements MySQL's hash_password() from sql/password.c:
// two 31-bit running checksums seeded from fixed constants, folding in
// every non-whitespace byte of the password, rendered as two 8-digit hex
// words concatenated.
func mysql323Digest(secret string) string {
	var nr, nr2 uint32 = 1345345333, 0x12345671
	var add uint32 = 7

	for i := 0; i < len(secret); i++ {
		c := secret[i]
		if c == ' ' || c == '\t' {
			continue
		}
		tmp := uint32(c)
		nr ^= (((nr & 63) + add) * tmp) + (nr << 8)
		nr2 += (nr2 << 8) ^ nr
		add += tmp
	}

	nr &= 0x7fffffff
	nr2 &= 0x7fffffff
	return fmt.Sprintf("%08x%08x", nr, nr2)
}

func (h mysql323Hasher) Hash(secret string, _ hash.Settings) (string, error) {
	return mysql323Digest(secret), nil
}

func (h mysql323Hasher) Verify(secret, hashStr string, _ map[string]string) (bool, error) {
	if !h.Identify(hashStr) {
		return false, &hash.MalformedHashError{Scheme: "mysql323", Reason: "expected 16 lowercase hex digits"}
	}
	return constantTimeEqualStr(mysql323Digest(secret), hashStr), nil
}

func (h mysql323Hasher) GenConfig(_ hash.Settings) (string, error) {
	return strings.Repeat("0", 16), nil
}

func (h mysql323Hasher) GenHash(secret, _ string) (string, error) {
	return mysql323Digest(secret), nil
}

func (h mysql323Hasher) NeedsUpdate(hashStr string, _ hash.UpdatePolicy) (bool, error) {
	if !h.Identify(hashStr) {
		return false, &hash.MalformedHashError{Scheme: "mysql323", Reason: "expected 16 lowercase hex digits"}
	}
	// mysql323 has no rounds/salt knob to report on, so this ignores the
	// policy and always reports false; a Context flags mysql323 hashes
	// through its own default-scheme and deprecated-scheme checks.
	return false, nil
}

// mysql41Hasher implements hash.Hasher for MySQL's 4.1+ PASSWORD()
// algorithm, `*` + SHA1(SHA1(password)) in uppercase hex.
type mysql41Hasher struct{}

func newMySQL41Hasher() (hash.Hasher, error) { return mysql41Hasher{}, nil }

func (mysql41Hasher) Descriptor() hash.Descriptor {
	return hash.Descriptor{
		Name:           "mysql41",
		Idents:         []string{"*"},
		SettingKwds:    nil,
		MinRounds:      1,
		MaxRounds:      1,
		DefaultRounds:  1,
		ChecksumSize:   41,
		TruncatePolicy: hash.TruncateNone,
	}
}

func (mysql41Hasher) Identify(hashStr string) bool {
	return len(hashStr) == 41 && hashStr[0] == '*' && isUpperHex(hashStr[1:])
}

func mysql41Digest(secret string) string {
	first := sha1.Sum([]byte(secret))
	second := sha1.Sum(first[:])
	return "*" + strings.ToUpper(hex.EncodeToString(second[:]))
}

func (h mysql41Hasher) Hash(secret string, _ hash.Settings) (string, error) {
	return mysql41Digest(secret), nil
}

func (h mysql41Hasher) Verify(secret, hashStr string, _ map[string]string) (bool, error) {
	if !h.Identify(hashStr) {
		return false, &hash.MalformedHashError{Scheme: "mysql41", Reason: "expected '*' + 40 hex digits"}
	}
	return constantTimeEqualStr(mysql41Digest(secret), hashStr), nil
}

func (h mysql41Hasher) GenConfig(_ hash.Settings) (string, error) {
	return "*" + strings.Repeat("0", 40), nil
}

func (h mysql41Hasher) GenHash(secret, _ string) (string, error) {
	return mysql41Digest(secret), nil
}

func (h mysql41Hasher) NeedsUpdate(hashStr string, _ hash.UpdatePolicy) (bool, error) {
	if !h.Identify(hashStr) {
		return false, &hash.MalformedHashError{Scheme: "mysql41", Reason: "expected '*' + 40 hex digits"}
	}
	return false, nil
}

// postgresMD5Hasher implements hash.Hasher for PostgreSQL's
// "md5"+md5(password+username) convention. Verify and Hash require the
// "user" context keyword; omitting it is a configuration error, not a
// parse error, since the hash string alone never carries the username.
type postgresMD5Hasher struct{}

func newPostgresMD5Hasher() (hash.Hasher, error) { return postgresMD5Hasher{}, nil }

func (postgresMD5Hasher) Descriptor() hash.Descriptor {
	return hash.Descriptor{
		Name:           "postgres_md5",
		Idents:         []string{"md5"},
		SettingKwds:    nil,
		ContextKwds:    []string{"user"},
		MinRounds:      1,
		MaxRounds:      1,
		DefaultRounds:  1,
		ChecksumSize:   32,
		TruncatePolicy: hash.TruncateNone,
	}
}

func (postgresMD5Hasher) Identify(hashStr string) bool {
	return strings.HasPrefix(hashStr, "md5") && len(hashStr) == 35 && isLowerHex(hashStr[3:])
}

func postgresDigest(secret, user string) string {
	sum := md5.Sum([]byte(secret + user))
	return "md5" + hex.EncodeToString(sum[:])
}

func (h postgresMD5Hasher) Hash(secret string, settings hash.Settings) (string, error) {
	user, ok := settings.String("user")
	if !ok || user == "" {
		return "", fmt.Errorf("postgres_md5: requires a 'user' setting")
	}
	return postgresDigest(secret, user), nil
}

func (h postgresMD5Hasher) Verify(secret, hashStr string, contextKwds map[string]string) (bool, error) {
	if !h.Identify(hashStr) {
		return false, &hash.MalformedHashError{Scheme: "postgres_md5", Reason: "expected 'md5' + 32 hex digits"}
	}
	user, ok := contextKwds["user"]
	if !ok || user == "" {
		return false, fmt.Errorf("postgres_md5: requires a 'user' context keyword")
	}
	return constantTimeEqualStr(postgresDigest(secret, user), hashStr), nil
}

func (h postgresMD5Hasher) GenConfig(_ hash.Settings) (string, error) {
	return "md5" + strings.Repeat("0", 32), nil
}

func (h postgresMD5Hasher) GenHash(secret, config string) (string, error) {
	return "", &hash.InvalidHashError{Scheme: "postgres_md5", Reason: "use Hash with the 'user' setting instead; the username is not recoverable from config"}
}

func (h postgresMD5Hasher) NeedsUpdate(hashStr string, _ hash.UpdatePolicy) (bool, error) {
	if !h.Identify(hashStr) {
		return false, &hash.MalformedHashError{Scheme: "postgres_md5", Reason: "expected 'md5' + 32 hex digits"}
	}
	return false, nil
}

func isUpperHex(s string) bool {
	for i := 0; i < len(s); i++ {
		c := s[i]
		if !(c >= '0' && c <= '9') && !(c >= 'A' && c <= 'F') {
			return false
		}
	}
	return true
}

func isLowerHex(s string) bool {
	for i := 0; i < len(s); i++ {
		c := s[i]
		if !(c >= '0' && c <= '9') && !(c >= 'a' && c <= 'f') {
			return false
		}
	}
	return true
}

func constantTimeEqualStr(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	var diff byte
	for i := 0; i < len(a); i++ {
		diff |= a[i] ^ b[i]
	}
	return diff == 0
}
