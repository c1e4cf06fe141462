// Package pbkdf2 implements the pbkdf2_{sha1,sha256,sha512} family:
// $pbkdf2[-<hash>]$<rounds>$<salt>$<checksum>, salt and checksum encoded
// with passlib's adapted base64 (ab64: standard alphabet, '+' -> '.', no
// padding). All three variants share one generic Hasher parameterized by
// the underlying HMAC hash and its digest size; golang.org/x/crypto/pbkdf2
// does the actual key derivation.
package pbkdf2

import (
	"crypto/sha1"
	"crypto/sha256"
	"crypto/sha512"
	"fmt"
	"hash"
	"strconv"
	"strings"

	xpbkdf2 "golang.org/x/crypto/pbkdf2"

	passlib "github.com/notypecheck/passlib"
	phash "github.com/notypecheck/passlib/hash"
	"github.com/notypecheck/passlib/internal/encoding"
)

func init() {
	passlib.Register("pbkdf2_sha1", newHasher(variant{scheme: "pbkdf2_sha1", ident: "pbkdf2", newHash: sha1.New, dsize: 20, defaultRounds: 131000}), "pbkdf2-sha1")
	passlib.Register("pbkdf2_sha256", newHasher(variant{scheme: "pbkdf2_sha256", ident: "pbkdf2-sha256", newHash: sha256.New, dsize: 32, defaultRounds: 29000}), "pbkdf2-sha256")
	passlib.Register("pbkdf2_sha512", newHasher(variant{scheme: "pbkdf2_sha512", ident: "pbkdf2-sha512", newHash: sha512.New, dsize: 64, defaultRounds: 25000}), "pbkdf2-sha512")
}

type variant struct {
	scheme        string
	ident         string
	newHash       func() hash.Hash
	dsize         int
	defaultRounds int
}

// Hasher implements phash.Hasher for one pbkdf2 variant.
type Hasher struct {
	v      variant
	rounds phash.HasRounds
	salt   phash.HasSalt
}

func newHasher(v variant) passlib.Factory {
	return func() (phash.Hasher, error) {
		return &Hasher{
			v:      v,
			rounds: phash.HasRounds{Min: 1, Max: 4294967295, Default: v.defaultRounds, Cost: phash.RoundsLinear},
			salt:   phash.HasSalt{Min: 1, Max: 1024, Default: 22, Chars: encoding.AB64Alphabet},
		}, nil
	}
}

// Descriptor implements phash.Hasher.
func (h *Hasher) Descriptor() phash.Descriptor {
	checksumSize := (h.v.dsize*8 + 5) / 6
	return phash.Descriptor{
		Name:            h.v.scheme,
		Idents:          []string{h.v.ident},
		SettingKwds:     []string{"salt", "salt_size", "rounds"},
		MinRounds:       h.rounds.Min,
		MaxRounds:       h.rounds.Max,
		DefaultRounds:   h.rounds.Default,
		RoundsCost:      phash.RoundsLinear,
		MinSaltSize:     h.salt.Min,
		MaxSaltSize:     h.salt.Max,
		DefaultSaltSize: h.salt.Default,
		SaltChars:       encoding.AB64Alphabet,
		ChecksumSize:    checksumSize,
		ChecksumChars:   encoding.AB64Alphabet,
		TruncatePolicy:  phash.TruncateNone,
	}
}

type parsed struct {
	rounds   int
	salt     string
	checksum string
}

func (h *Hasher) parse(s string) (*parsed, error) {
	m, err := phash.ParseMCF(s, h.v.scheme)
	if err != nil {
		return nil, err
	}
	if m.Ident != h.v.ident {
		return nil, &phash.MalformedHashError{Scheme: h.v.scheme, Reason: "wrong ident"}
	}
	if len(m.Fields) != 1 {
		return nil, &phash.MalformedHashError{Scheme: h.v.scheme, Reason: "expected exactly one rounds field"}
	}
	rounds, err := strconv.Atoi(m.Fields[0])
	if err != nil {
		return nil, &phash.MalformedHashError{Scheme: h.v.scheme, Reason: "rounds is not numeric"}
	}
	if !encoding.ValidAlphabet(m.Salt, encoding.AB64Alphabet) {
		return nil, &phash.MalformedHashError{Scheme: h.v.scheme, Reason: "salt outside ab64 alphabet"}
	}
	wantChecksum := h.Descriptor().ChecksumSize
	if len(m.Checksum) != wantChecksum || !encoding.ValidAlphabet(m.Checksum, encoding.AB64Alphabet) {
		return nil, &phash.MalformedHashError{Scheme: h.v.scheme, Reason: "bad checksum"}
	}
	return &parsed{rounds: rounds, salt: m.Salt, checksum: m.Checksum}, nil
}

func (h *Hasher) build(p *parsed) string {
	m := &phash.MCF{Ident: h.v.ident, Fields: []string{strconv.Itoa(p.rounds)}, Salt: p.salt, Checksum: p.checksum}
	return m.Build()
}

// Identify implements phash.Hasher.
func (h *Hasher) Identify(hashStr string) bool {
	_, err := h.parse(hashStr)
	return err == nil
}

// Hash implements phash.Hasher.
func (h *Hasher) Hash(secret string, settings phash.Settings) (string, error) {
	rounds, err := h.resolveRounds(settings)
	if err != nil {
		return "", err
	}
	salt, err := h.resolveSalt(settings)
	if err != nil {
		return "", err
	}
	checksum, err := h.computeChecksum(secret, salt, rounds)
	if err != nil {
		return "", err
	}
	return h.build(&parsed{rounds: rounds, salt: salt, checksum: checksum}), nil
}

// Verify implements phash.Hasher.
func (h *Hasher) Verify(secret, hashStr string, _ map[string]string) (bool, error) {
	p, err := h.parse(hashStr)
	if err != nil {
		return false, err
	}
	computed, err := h.computeChecksum(secret, p.salt, p.rounds)
	if err != nil {
		return false, err
	}
	return constantTimeEqual(computed, p.checksum), nil
}

// GenConfig implements phash.Hasher.
func (h *Hasher) GenConfig(settings phash.Settings) (string, error) {
	rounds, err := h.resolveRounds(settings)
	if err != nil {
		return "", err
	}
	salt, err := h.resolveSalt(settings)
	if err != nil {
		return "", err
	}
	placeholder := strings.Repeat(".", h.Descriptor().ChecksumSize)
	return h.build(&parsed{rounds: rounds, salt: salt, checksum: placeholder}), nil
}

// GenHash implements phash.Hasher.
func (h *Hasher) GenHash(secret, config string) (string, error) {
	p, err := h.parse(config)
	if err != nil {
		return "", err
	}
	checksum, err := h.computeChecksum(secret, p.salt, p.rounds)
	if err != nil {
		return "", err
	}
	p.checksum = checksum
	return h.build(p), nil
}

// NeedsUpdate implements phash.Hasher.
func (h *Hasher) NeedsUpdate(hashStr string, policy phash.UpdatePolicy) (bool, error) {
	p, err := h.parse(hashStr)
	if err != nil {
		return false, err
	}
	if p.rounds < policy.MinRounds {
		return true, nil
	}
	if len(p.salt) < policy.MinSaltSize {
		return true, nil
	}
	return false, nil
}

func (h *Hasher) resolveRounds(settings phash.Settings) (int, error) {
	var explicit *int
	if v, ok := settings.Int("rounds"); ok {
		explicit = &v
	}
	vary, _ := settings["vary_rounds"].(float64)
	return h.rounds.Resolve(explicit, nil, vary)
}

func (h *Hasher) resolveSalt(settings phash.Settings) (string, error) {
	explicit, _ := settings.String("salt")
	size, _ := settings.Int("salt_size")
	return h.salt.Resolve(explicit, size)
}

func (h *Hasher) computeChecksum(secret, salt string, rounds int) (string, error) {
	rawSalt, err := encoding.AB64Encoding.DecodeString(salt)
	if err != nil {
		return "", &phash.MalformedHashError{Scheme: h.v.scheme, Reason: "bad salt encoding"}
	}
	dk := xpbkdf2.Key([]byte(secret), rawSalt, rounds, h.v.dsize, h.v.newHash)
	out := encoding.AB64Encoding.EncodeToString(dk)
	want := h.Descriptor().ChecksumSize
	if len(out) < want {
		return "", fmt.Errorf("pbkdf2: checksum encoding produced %d chars, wanted %d", len(out), want)
	}
	return out[:want], nil
}

func constantTimeEqual(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	var diff byte
	for i := 0; i < len(a); i++ {
		diff |= a[i] ^ b[i]
	}
	return diff == 0
}
