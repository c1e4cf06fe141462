// Package ldap implements the RFC 2307 {SCHEME}payload wrapper family:
// ldap_md5 ({MD5}base64(md5(secret))), ldap_sha1
// ({SHA}base64(sha1(secret))), ldap_salted_sha1
// ({SSHA}base64(sha1(secret+salt)+salt)), and ldap_crypt
// ({CRYPT}<inner crypt(3)-format hash>). The first three are thin
// encodings around a raw digest, not key-stretching schemes, so they
// carry no rounds/cost knobs — NeedsUpdate only ever reports based on
// deprecation, never on a tunable parameter. ldap_crypt instead wraps
// schemes/md5crypt's $1$ format verbatim behind the {CRYPT} prefix; it
// inherits md5_crypt's fixed 1000 rounds, so it has no cost knob either.
package ldap

import (
	"crypto/md5"
	"crypto/sha1"
	"encoding/base64"
	"hash"
	"strings"

	passlib "github.com/notypecheck/passlib"
	phash "github.com/notypecheck/passlib/hash"
	"github.com/notypecheck/passlib/schemes/md5crypt"
)

func init() {
	passlib.Register("ldap_md5", newHasher(variant{scheme: "ldap_md5", prefix: "{MD5}", newHash: md5.New, dsize: 16}))
	passlib.Register("ldap_sha1", newHasher(variant{scheme: "ldap_sha1", prefix: "{SHA}", newHash: sha1.New, dsize: 20}))
	passlib.Register("ldap_salted_sha1", newHasher(variant{scheme: "ldap_salted_sha1", prefix: "{SSHA}", newHash: sha1.New, dsize: 20, salted: true}), "ldap_ssha1")
	passlib.Register("ldap_crypt", newCryptHasher, "ldap_md5_crypt")
}

type variant struct {
	scheme  string
	prefix  string
	newHash func() hash.Hash
	dsize   int
	salted  bool
}

// Hasher implements phash.Hasher for one {SCHEME}payload wrapper.
type Hasher struct {
	v        variant
	saltSize phash.HasSalt
}

func newHasher(v variant) passlib.Factory {
	return func() (phash.Hasher, error) {
		return &Hasher{v: v, saltSize: phash.HasSalt{Min: 0, Max: 64, Default: 8, Chars: rawByteAlphabet}}, nil
	}
}

// rawByteAlphabet is a placeholder: ldap salts are raw bytes, not
// alphabet-restricted text, so HasSalt is only used here for its size
// bookkeeping, never its character validation.
const rawByteAlphabet = ""

// Descriptor implements phash.Hasher.
func (h *Hasher) Descriptor() phash.Descriptor {
	return phash.Descriptor{
		Name:            h.v.scheme,
		Idents:          []string{h.v.prefix},
		SettingKwds:     []string{"salt_size"},
		MinRounds:       1,
		MaxRounds:       1,
		DefaultRounds:   1,
		RoundsCost:      phash.RoundsLinear,
		MinSaltSize:     0,
		MaxSaltSize:     64,
		DefaultSaltSize: h.saltSize.Default,
		TruncatePolicy:  phash.TruncateNone,
	}
}

// Identify implements phash.Hasher.
func (h *Hasher) Identify(hashStr string) bool {
	_, _, err := h.parse(hashStr)
	return err == nil
}

func (h *Hasher) parse(s string) (digest, salt []byte, err error) {
	if !strings.HasPrefix(s, h.v.prefix) {
		return nil, nil, &phash.MalformedHashError{Scheme: h.v.scheme, Reason: "missing " + h.v.prefix + " prefix"}
	}
	payload, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(s, h.v.prefix))
	if err != nil {
		return nil, nil, &phash.MalformedHashError{Scheme: h.v.scheme, Reason: "bad base64 payload"}
	}
	if !h.v.salted {
		if len(payload) != h.v.dsize {
			return nil, nil, &phash.MalformedHashError{Scheme: h.v.scheme, Reason: "wrong digest length"}
		}
		return payload, nil, nil
	}
	if len(payload) < h.v.dsize {
		return nil, nil, &phash.MalformedHashError{Scheme: h.v.scheme, Reason: "payload shorter than digest"}
	}
	return payload[:h.v.dsize], payload[h.v.dsize:], nil
}

func (h *Hasher) build(digest, salt []byte) string {
	payload := append(append([]byte{}, digest...), salt...)
	return h.v.prefix + base64.StdEncoding.EncodeToString(payload)
}

func (h *Hasher) compute(secret string, salt []byte) []byte {
	hh := h.v.newHash()
	hh.Write([]byte(secret))
	hh.Write(salt)
	return hh.Sum(nil)
}

// Hash implements phash.Hasher.
func (h *Hasher) Hash(secret string, settings phash.Settings) (string, error) {
	var salt []byte
	if h.v.salted {
		size := h.saltSize.Default
		if v, ok := settings.Int("salt_size"); ok {
			size = v
		}
		var err error
		salt, err = phash.RandomBytes(size)
		if err != nil {
			return "", err
		}
	}
	return h.build(h.compute(secret, salt), salt), nil
}

// Verify implements phash.Hasher.
func (h *Hasher) Verify(secret, hashStr string, _ map[string]string) (bool, error) {
	digest, salt, err := h.parse(hashStr)
	if err != nil {
		return false, err
	}
	computed := h.compute(secret, salt)
	return constantTimeEqual(computed, digest), nil
}

// GenConfig implements phash.Hasher. It emits a placeholder payload: an
// all-zero digest plus, for salted variants, a fresh random salt. GenHash
// reads the salt back from that config and fills in the real digest.
func (h *Hasher) GenConfig(settings phash.Settings) (string, error) {
	var salt []byte
	if h.v.salted {
		size := h.saltSize.Default
		if v, ok := settings.Int("salt_size"); ok {
			size = v
		}
		var err error
		salt, err = phash.RandomBytes(size)
		if err != nil {
			return "", err
		}
	}
	return h.build(make([]byte, h.v.dsize), salt), nil
}

// GenHash implements phash.Hasher.
func (h *Hasher) GenHash(secret, config string) (string, error) {
	_, salt, err := h.parse(config)
	if err != nil {
		return "", err
	}
	return h.build(h.compute(secret, salt), salt), nil
}

// NeedsUpdate implements phash.Hasher.
func (h *Hasher) NeedsUpdate(hashStr string, _ phash.UpdatePolicy) (bool, error) {
	if _, _, err := h.parse(hashStr); err != nil {
		return false, err
	}
	return false, nil
}

const cryptPrefix = "{CRYPT}"

// cryptHasher implements phash.Hasher for ldap_crypt: the {CRYPT} prefix
// wrapping a crypt(3)-format inner hash verbatim. RFC 2307 leaves the
// inner format up to whatever crypt(3) on the LDAP server produces;
// this catalogue only has one scheme to delegate to, so ldap_crypt wraps
// schemes/md5crypt's $1$ format rather than every crypt(3) variant the
// underlying libc might support.
type cryptHasher struct {
	inner *md5crypt.Hasher
}

func newCryptHasher() (phash.Hasher, error) {
	inner, err := md5crypt.NewHasher()
	if err != nil {
		return nil, err
	}
	return &cryptHasher{inner: inner}, nil
}

// Descriptor implements phash.Hasher.
func (h *cryptHasher) Descriptor() phash.Descriptor {
	d := h.inner.Descriptor()
	d.Name = "ldap_crypt"
	d.Idents = []string{cryptPrefix + "$1$"}
	return d
}

// Identify implements phash.Hasher.
func (h *cryptHasher) Identify(hashStr string) bool {
	inner, ok := h.strip(hashStr)
	return ok && h.inner.Identify(inner)
}

func (h *cryptHasher) strip(s string) (string, bool) {
	if !strings.HasPrefix(s, cryptPrefix) {
		return "", false
	}
	return strings.TrimPrefix(s, cryptPrefix), true
}

// Hash implements phash.Hasher.
func (h *cryptHasher) Hash(secret string, settings phash.Settings) (string, error) {
	inner, err := h.inner.Hash(secret, settings)
	if err != nil {
		return "", err
	}
	return cryptPrefix + inner, nil
}

// Verify implements phash.Hasher.
func (h *cryptHasher) Verify(secret, hashStr string, contextKwds map[string]string) (bool, error) {
	inner, ok := h.strip(hashStr)
	if !ok {
		return false, &phash.MalformedHashError{Scheme: "ldap_crypt", Reason: "missing " + cryptPrefix + " prefix"}
	}
	return h.inner.Verify(secret, inner, contextKwds)
}

// GenConfig implements phash.Hasher.
func (h *cryptHasher) GenConfig(settings phash.Settings) (string, error) {
	inner, err := h.inner.GenConfig(settings)
	if err != nil {
		return "", err
	}
	return cryptPrefix + inner, nil
}

// GenHash implements phash.Hasher.
func (h *cryptHasher) GenHash(secret, config string) (string, error) {
	inner, ok := h.strip(config)
	if !ok {
		return "", &phash.MalformedHashError{Scheme: "ldap_crypt", Reason: "missing " + cryptPrefix + " prefix"}
	}
	innerHash, err := h.inner.GenHash(secret, inner)
	if err != nil {
		return "", err
	}
	return cryptPrefix + innerHash, nil
}

// NeedsUpdate implements phash.Hasher.
func (h *cryptHasher) NeedsUpdate(hashStr string, policy phash.UpdatePolicy) (bool, error) {
	inner, ok := h.strip(hashStr)
	if !ok {
		return false, &phash.MalformedHashError{Scheme: "ldap_crypt", Reason: "missing " + cryptPrefix + " prefix"}
	}
	return h.inner.NeedsUpdate(inner, policy)
}

func constantTimeEqual(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	var diff byte
	for i := range a {
		diff |= a[i] ^ b[i]
	}
	return diff == 0
}
