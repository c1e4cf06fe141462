// Package scrypt implements the scrypt scheme:
// $scrypt$ln=<log2 N>,r=<r>,p=<p>$<salt>$<checksum>, salt and checksum
// encoded with passlib's adapted base64 (ab64), consistent with the other
// non-crypt-family schemes in this catalogue. Key derivation is delegated
// to golang.org/x/crypto/scrypt.
package scrypt

import (
	"fmt"
	"strconv"
	"strings"

	xscrypt "golang.org/x/crypto/scrypt"

	passlib "github.com/notypecheck/passlib"
	"github.com/notypecheck/passlib/hash"
	"github.com/notypecheck/passlib/internal/encoding"
)

const (
	schemeName      = "scrypt"
	ident           = "scrypt"
	defaultLogN     = 16
	defaultR        = 8
	defaultP        = 1
	defaultKeyLen   = 32
	defaultSaltSize = 22 // ~16 raw bytes, ab64-encoded
)

func init() {
	passlib.Register(schemeName, newHasher)
}

// Hasher implements hash.Hasher for scrypt.
type Hasher struct {
	salt hash.HasSalt
}

func newHasher() (hash.Hasher, error) {
	return &Hasher{salt: hash.HasSalt{Min: 1, Max: 1024, Default: defaultSaltSize, Chars: encoding.AB64Alphabet}}, nil
}

// Descriptor implements hash.Hasher.
func (h *Hasher) Descriptor() hash.Descriptor {
	return hash.Descriptor{
		Name:            schemeName,
		Idents:          []string{ident},
		SettingKwds:     []string{"salt", "salt_size", "log_n", "r", "p", "key_len"},
		MinRounds:       10,
		MaxRounds:       30,
		DefaultRounds:   defaultLogN,
		RoundsCost:      hash.RoundsLog2,
		MinSaltSize:     h.salt.Min,
		MaxSaltSize:     h.salt.Max,
		DefaultSaltSize: h.salt.Default,
		SaltChars:       encoding.AB64Alphabet,
		ChecksumSize:    (defaultKeyLen*8 + 5) / 6,
		ChecksumChars:   encoding.AB64Alphabet,
		TruncatePolicy:  hash.TruncateNone,
	}
}

type params struct {
	logN     int
	r, p     int
	salt     string
	keyLen   int
	checksum string
}

func parse(s string) (*params, error) {
	m, err := hash.ParseMCF(s, schemeName)
	if err != nil {
		return nil, err
	}
	if m.Ident != ident {
		return nil, &hash.MalformedHashError{Scheme: schemeName, Reason: "wrong ident"}
	}
	if len(m.Fields) != 1 {
		return nil, &hash.MalformedHashError{Scheme: schemeName, Reason: "expected one ln=,r=,p= field"}
	}
	logN, r, p, err := parseCostField(m.Fields[0])
	if err != nil {
		return nil, err
	}
	if !encoding.ValidAlphabet(m.Salt, encoding.AB64Alphabet) {
		return nil, &hash.MalformedHashError{Scheme: schemeName, Reason: "salt outside ab64 alphabet"}
	}
	if !encoding.ValidAlphabet(m.Checksum, encoding.AB64Alphabet) {
		return nil, &hash.MalformedHashError{Scheme: schemeName, Reason: "checksum outside ab64 alphabet"}
	}
	rawChecksum, err := encoding.AB64Encoding.DecodeString(m.Checksum)
	if err != nil {
		return nil, &hash.MalformedHashError{Scheme: schemeName, Reason: "bad checksum encoding"}
	}
	return &params{logN: logN, r: r, p: p, salt: m.Salt, keyLen: len(rawChecksum), checksum: m.Checksum}, nil
}

func parseCostField(f string) (logN, r, p int, err error) {
	parts := strings.Split(f, ",")
	if len(parts) != 3 {
		return 0, 0, 0, &hash.MalformedHashError{Scheme: schemeName, Reason: "cost field must have ln=,r=,p="}
	}
	n, err1 := parseUintParam(parts[0], "ln=")
	rr, err2 := parseUintParam(parts[1], "r=")
	pp, err3 := parseUintParam(parts[2], "p=")
	if err1 != nil || err2 != nil || err3 != nil {
		return 0, 0, 0, &hash.MalformedHashError{Scheme: schemeName, Reason: "malformed cost field " + f}
	}
	return n, rr, pp, nil
}

func parseUintParam(s, prefix string) (int, error) {
	if !strings.HasPrefix(s, prefix) {
		return 0, fmt.Errorf("missing prefix %q", prefix)
	}
	return strconv.Atoi(strings.TrimPrefix(s, prefix))
}

func (p *params) build() string {
	m := &hash.MCF{
		Ident:    ident,
		Fields:   []string{fmt.Sprintf("ln=%d,r=%d,p=%d", p.logN, p.r, p.p)},
		Salt:     p.salt,
		Checksum: p.checksum,
	}
	return m.Build()
}

func (p *params) derive(secret string) (string, error) {
	rawSalt, err := encoding.AB64Encoding.DecodeString(p.salt)
	if err != nil {
		return "", &hash.MalformedHashError{Scheme: schemeName, Reason: "bad salt encoding"}
	}
	n := 1 << uint(p.logN)
	dk, err := xscrypt.Key([]byte(secret), rawSalt, n, p.r, p.p, p.keyLen)
	if err != nil {
		return "", &hash.InvalidHashError{Scheme: schemeName, Reason: err.Error()}
	}
	return encoding.AB64Encoding.EncodeToString(dk), nil
}

// Identify implements hash.Hasher.
func (h *Hasher) Identify(hashStr string) bool {
	_, err := parse(hashStr)
	return err == nil
}

// Hash implements hash.Hasher.
func (h *Hasher) Hash(secret string, settings hash.Settings) (string, error) {
	p, err := h.buildParams(settings)
	if err != nil {
		return "", err
	}
	p.checksum, err = p.derive(secret)
	if err != nil {
		return "", err
	}
	return p.build(), nil
}

// Verify implements hash.Hasher.
func (h *Hasher) Verify(secret, hashStr string, _ map[string]string) (bool, error) {
	p, err := parse(hashStr)
	if err != nil {
		return false, err
	}
	computed, err := p.derive(secret)
	if err != nil {
		return false, err
	}
	return constantTimeEqual(computed, p.checksum), nil
}

// GenConfig implements hash.Hasher.
func (h *Hasher) GenConfig(settings hash.Settings) (string, error) {
	p, err := h.buildParams(settings)
	if err != nil {
		return "", err
	}
	p.checksum = strings.Repeat(".", h.Descriptor().ChecksumSize)
	return p.build(), nil
}

// GenHash implements hash.Hasher.
func (h *Hasher) GenHash(secret, config string) (string, error) {
	p, err := parse(config)
	if err != nil {
		return "", err
	}
	p.checksum, err = p.derive(secret)
	if err != nil {
		return "", err
	}
	return p.build(), nil
}

// NeedsUpdate implements hash.Hasher.
func (h *Hasher) NeedsUpdate(hashStr string, policy hash.UpdatePolicy) (bool, error) {
	p, err := parse(hashStr)
	if err != nil {
		return false, err
	}
	if p.logN < policy.MinRounds {
		return true, nil
	}
	if len(p.salt) < policy.MinSaltSize {
		return true, nil
	}
	return false, nil
}

func (h *Hasher) buildParams(settings hash.Settings) (*params, error) {
	logN := defaultLogN
	if v, ok := settings.Int("log_n"); ok {
		logN = v
	}
	r := defaultR
	if v, ok := settings.Int("r"); ok {
		r = v
	}
	p := defaultP
	if v, ok := settings.Int("p"); ok {
		p = v
	}
	keyLen := defaultKeyLen
	if v, ok := settings.Int("key_len"); ok {
		keyLen = v
	}

	saltExplicit, _ := settings.String("salt")
	saltSize, _ := settings.Int("salt_size")
	salt, err := h.salt.Resolve(saltExplicit, saltSize)
	if err != nil {
		return nil, err
	}

	return &params{logN: logN, r: r, p: p, salt: salt, keyLen: keyLen}, nil
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
