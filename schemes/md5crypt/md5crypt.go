// Package md5crypt implements the $1$ scheme, the original BSD/Linux
// "crypt-md5" algorithm predating the SHA-crypt family it inspired.
// Rounds are fixed at 1000 and not configurable; the final 16-byte
// digest is permuted and h64-encoded into a 22-character checksum.
package md5crypt

import (
	"crypto/md5"
	"strings"

	passlib "github.com/notypecheck/passlib"
	"github.com/notypecheck/passlib/hash"
	"github.com/notypecheck/passlib/internal/encoding"
)

const (
	schemeName   = "md5_crypt"
	ident        = "1"
	checksumSize = 22
	rounds       = 1000
)

func init() {
	passlib.Register(schemeName, newHasher, "md5-crypt")
}

// Hasher implements hash.Hasher for md5_crypt.
type Hasher struct {
	salt hash.HasSalt
}

func newHasher() (hash.Hasher, error) {
	return NewHasher()
}

// NewHasher returns an md5_crypt Hasher directly, for packages that wrap
// this scheme rather than go through the registry (e.g. ldap_crypt).
func NewHasher() (*Hasher, error) {
	return &Hasher{salt: hash.HasSalt{Min: 0, Max: 8, Default: 8, Chars: encoding.H64Alphabet}}, nil
}

// Descriptor implements hash.Hasher.
func (h *Hasher) Descriptor() hash.Descriptor {
	return hash.Descriptor{
		Name:            schemeName,
		Idents:          []string{ident},
		SettingKwds:     []string{"salt", "salt_size"},
		MinRounds:       rounds,
		MaxRounds:       rounds,
		DefaultRounds:   rounds,
		RoundsCost:      hash.RoundsLinear,
		MinSaltSize:     h.salt.Min,
		MaxSaltSize:     h.salt.Max,
		DefaultSaltSize: h.salt.Default,
		SaltChars:       encoding.H64Alphabet,
		ChecksumSize:    checksumSize,
		ChecksumChars:   encoding.H64Alphabet,
		TruncatePolicy:  hash.TruncateNone,
	}
}

type parsed struct {
	salt     string
	checksum string
}

func parse(s string) (*parsed, error) {
	m, err := hash.ParseMCF(s, schemeName)
	if err != nil {
		return nil, err
	}
	if m.Ident != ident {
		return nil, &hash.MalformedHashError{Scheme: schemeName, Reason: "wrong ident"}
	}
	if len(m.Fields) != 0 {
		return nil, &hash.MalformedHashError{Scheme: schemeName, Reason: "md5_crypt takes no extra fields"}
	}
	if len(m.Salt) > 8 || !encoding.ValidAlphabet(m.Salt, encoding.H64Alphabet) {
		return nil, &hash.MalformedHashError{Scheme: schemeName, Reason: "bad salt"}
	}
	if len(m.Checksum) != checksumSize || !encoding.ValidAlphabet(m.Checksum, encoding.H64Alphabet) {
		return nil, &hash.MalformedHashError{Scheme: schemeName, Reason: "bad checksum"}
	}
	return &parsed{salt: m.Salt, checksum: m.Checksum}, nil
}

func (p *parsed) build() string {
	m := &hash.MCF{Ident: ident, Salt: p.salt, Checksum: p.checksum}
	return m.Build()
}

// Identify implements hash.Hasher.
func (h *Hasher) Identify(hashStr string) bool {
	_, err := parse(hashStr)
	return err == nil
}

// Hash implements hash.Hasher.
func (h *Hasher) Hash(secret string, settings hash.Settings) (string, error) {
	if err := rejectNUL(secret); err != nil {
		return "", err
	}
	salt, err := h.resolveSalt(settings)
	if err != nil {
		return "", err
	}
	p := &parsed{salt: salt, checksum: computeChecksum(secret, salt)}
	return p.build(), nil
}

// Verify implements hash.Hasher.
func (h *Hasher) Verify(secret, hashStr string, _ map[string]string) (bool, error) {
	p, err := parse(hashStr)
	if err != nil {
		return false, err
	}
	if err := rejectNUL(secret); err != nil {
		return false, err
	}
	return constantTimeEqual(computeChecksum(secret, p.salt), p.checksum), nil
}

// GenConfig implements hash.Hasher.
func (h *Hasher) GenConfig(settings hash.Settings) (string, error) {
	salt, err := h.resolveSalt(settings)
	if err != nil {
		return "", err
	}
	p := &parsed{salt: salt, checksum: strings.Repeat(".", checksumSize)}
	return p.build(), nil
}

// GenHash implements hash.Hasher.
func (h *Hasher) GenHash(secret, config string) (string, error) {
	p, err := parse(config)
	if err != nil {
		return "", err
	}
	if err := rejectNUL(secret); err != nil {
		return "", err
	}
	p.checksum = computeChecksum(secret, p.salt)
	return p.build(), nil
}

// NeedsUpdate implements hash.Hasher. md5_crypt has no tunable cost, so it
// always reports false for a well-formed hash; a Context reports an
// md5_crypt hash as needing an update when md5_crypt is not its default
// scheme or is deprecated.
func (h *Hasher) NeedsUpdate(hashStr string, _ hash.UpdatePolicy) (bool, error) {
	if _, err := parse(hashStr); err != nil {
		return false, err
	}
	return false, nil
}

func (h *Hasher) resolveSalt(settings hash.Settings) (string, error) {
	explicit, _ := settings.String("salt")
	size, _ := settings.Int("salt_size")
	return h.salt.Resolve(explicit, size)
}

func rejectNUL(secret string) error {
	if strings.IndexByte(secret, 0) >= 0 {
		return &hash.PasswordValueError{Scheme: schemeName, Reason: "secret must not contain a NUL byte"}
	}
	return nil
}

func computeChecksum(secret, salt string) string {
	pw := []byte(secret)
	sp := []byte(salt)

	hb := md5.New()
	hb.Write(pw)
	hb.Write(sp)
	hb.Write(pw)
	b := hb.Sum(nil)

	ha := md5.New()
	ha.Write(pw)
	ha.Write([]byte("$1$"))
	ha.Write(sp)
	for pl := len(pw); pl > 0; pl -= 16 {
		n := pl
		if n > 16 {
			n = 16
		}
		ha.Write(b[:n])
	}
	for i := len(pw); i != 0; i >>= 1 {
		if i&1 != 0 {
			ha.Write([]byte{0})
		} else {
			ha.Write(pw[:1])
		}
	}
	final := ha.Sum(nil)

	for i := 0; i < rounds; i++ {
		hc := md5.New()
		if i&1 != 0 {
			hc.Write(pw)
		} else {
			hc.Write(final)
		}
		if i%3 != 0 {
			hc.Write(sp)
		}
		if i%7 != 0 {
			hc.Write(pw)
		}
		if i&1 != 0 {
			hc.Write(final)
		} else {
			hc.Write(pw)
		}
		final = hc.Sum(nil)
	}

	return encodeChecksum(final)
}

func encodeChecksum(buf []byte) string {
	var sb strings.Builder
	sb.WriteString(encoding.H64FromTriplet(buf[0], buf[6], buf[12], 4))
	sb.WriteString(encoding.H64FromTriplet(buf[1], buf[7], buf[13], 4))
	sb.WriteString(encoding.H64FromTriplet(buf[2], buf[8], buf[14], 4))
	sb.WriteString(encoding.H64FromTriplet(buf[3], buf[9], buf[15], 4))
	sb.WriteString(encoding.H64FromTriplet(buf[4], buf[10], buf[5], 4))
	sb.WriteString(encoding.H64FromTriplet(0, 0, buf[11], 2))
	return sb.String()
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
