// Package argon2 implements the argon2i/argon2id schemes using the PHC
// string format: $argon2id$v=19$m=<memory>,t=<time>,p=<threads>$<salt>$<hash>,
// salt and hash encoded as raw (unpadded) standard base64 — unlike the
// crypt-family schemes, this is vanilla RFC 4648 base64, not ab64 or the
// bcrypt/h64 variants, so encoding/base64's RawStdEncoding is used
// directly with no custom alphabet. Key derivation itself is delegated to
// golang.org/x/crypto/argon2.
package argon2

import (
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/crypto/argon2"

	passlib "github.com/notypecheck/passlib"
	"github.com/notypecheck/passlib/hash"
)

const schemeName = "argon2"
const version = 19

var idents = []string{"argon2id", "argon2i"}

func init() {
	passlib.Register(schemeName, newHasher)
}

// Hasher implements hash.Hasher for the argon2 family.
type Hasher struct {
	idents hash.HasManyIdents
	salt   hash.HasSalt
}

func newHasher() (hash.Hasher, error) {
	return &Hasher{
		idents: hash.HasManyIdents{Idents: idents, Default: "argon2id"},
		salt:   hash.HasSalt{Min: 8, Max: 64, Default: 16, Chars: base64RawAlphabet},
	}, nil
}

const base64RawAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789+/"

// Descriptor implements hash.Hasher.
func (h *Hasher) Descriptor() hash.Descriptor {
	return hash.Descriptor{
		Name:            schemeName,
		Idents:          idents,
		SettingKwds:     []string{"salt", "salt_size", "memory", "time", "threads", "key_len"},
		MinRounds:       1,
		MaxRounds:       4294967295,
		DefaultRounds:   3,
		RoundsCost:      hash.RoundsLinear,
		MinSaltSize:     h.salt.Min,
		MaxSaltSize:     h.salt.Max,
		DefaultSaltSize: h.salt.Default,
		SaltChars:       base64RawAlphabet,
		ChecksumSize:    0,
		ChecksumChars:   base64RawAlphabet,
		TruncatePolicy:  hash.TruncateNone,
	}
}

type params struct {
	ident    string
	memory   uint32
	time     uint32
	threads  uint8
	salt     []byte
	keyLen   uint32
	checksum []byte
}

func parse(s string) (*params, error) {
	m, err := hash.ParseMCF(s, schemeName)
	if err != nil {
		return nil, err
	}
	if !matchesIdent(m.Ident) {
		return nil, &hash.MalformedHashError{Scheme: schemeName, Reason: "unrecognized ident " + m.Ident}
	}
	if len(m.Fields) != 2 {
		return nil, &hash.MalformedHashError{Scheme: schemeName, Reason: "expected v= and m=,t=,p= fields"}
	}
	if m.Fields[0] != fmt.Sprintf("v=%d", version) {
		return nil, &hash.MalformedHashError{Scheme: schemeName, Reason: "unsupported version field " + m.Fields[0]}
	}
	memory, time, threads, err := parseCostField(m.Fields[1])
	if err != nil {
		return nil, err
	}
	salt, err := base64.RawStdEncoding.DecodeString(m.Salt)
	if err != nil {
		return nil, &hash.MalformedHashError{Scheme: schemeName, Reason: "bad salt encoding"}
	}
	checksum, err := base64.RawStdEncoding.DecodeString(m.Checksum)
	if err != nil {
		return nil, &hash.MalformedHashError{Scheme: schemeName, Reason: "bad checksum encoding"}
	}
	return &params{
		ident: m.Ident, memory: memory, time: time, threads: threads,
		salt: salt, keyLen: uint32(len(checksum)), checksum: checksum,
	}, nil
}

func parseCostField(f string) (memory, time uint32, threads uint8, err error) {
	parts := strings.Split(f, ",")
	if len(parts) != 3 {
		return 0, 0, 0, &hash.MalformedHashError{Scheme: schemeName, Reason: "cost field must have m=,t=,p="}
	}
	m, err1 := parseUintParam(parts[0], "m=")
	t, err2 := parseUintParam(parts[1], "t=")
	p, err3 := parseUintParam(parts[2], "p=")
	if err1 != nil || err2 != nil || err3 != nil {
		return 0, 0, 0, &hash.MalformedHashError{Scheme: schemeName, Reason: "malformed cost field " + f}
	}
	return uint32(m), uint32(t), uint8(p), nil
}

func parseUintParam(s, prefix string) (int, error) {
	if !strings.HasPrefix(s, prefix) {
		return 0, fmt.Errorf("missing prefix %q", prefix)
	}
	return strconv.Atoi(strings.TrimPrefix(s, prefix))
}

func matchesIdent(ident string) bool {
	for _, id := range idents {
		if id == ident {
			return true
		}
	}
	return false
}

func (p *params) build() string {
	m := &hash.MCF{
		Ident:    p.ident,
		Fields:   []string{fmt.Sprintf("v=%d", version), fmt.Sprintf("m=%d,t=%d,p=%d", p.memory, p.time, p.threads)},
		Salt:     base64.RawStdEncoding.EncodeToString(p.salt),
		Checksum: base64.RawStdEncoding.EncodeToString(p.checksum),
	}
	return m.Build()
}

func (p *params) derive(secret string) []byte {
	if p.ident == "argon2i" {
		return argon2.Key([]byte(secret), p.salt, p.time, p.memory, p.threads, p.keyLen)
	}
	return argon2.IDKey([]byte(secret), p.salt, p.time, p.memory, p.threads, p.keyLen)
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
	p.checksum = p.derive(secret)
	return p.build(), nil
}

// Verify implements hash.Hasher.
func (h *Hasher) Verify(secret, hashStr string, _ map[string]string) (bool, error) {
	p, err := parse(hashStr)
	if err != nil {
		return false, err
	}
	computed := p.derive(secret)
	return constantTimeEqual(computed, p.checksum), nil
}

// GenConfig implements hash.Hasher.
func (h *Hasher) GenConfig(settings hash.Settings) (string, error) {
	p, err := h.buildParams(settings)
	if err != nil {
		return "", err
	}
	p.checksum = make([]byte, p.keyLen)
	return p.build(), nil
}

// GenHash implements hash.Hasher.
func (h *Hasher) GenHash(secret, config string) (string, error) {
	p, err := parse(config)
	if err != nil {
		return "", err
	}
	p.checksum = p.derive(secret)
	return p.build(), nil
}

// NeedsUpdate implements hash.Hasher.
func (h *Hasher) NeedsUpdate(hashStr string, policy hash.UpdatePolicy) (bool, error) {
	p, err := parse(hashStr)
	if err != nil {
		return false, err
	}
	if int(p.time) < policy.MinRounds {
		return true, nil
	}
	if len(p.salt) < policy.MinSaltSize {
		return true, nil
	}
	if policy.DeprecatedIdents[p.ident] {
		return true, nil
	}
	return false, nil
}

func (h *Hasher) buildParams(settings hash.Settings) (*params, error) {
	ident, _ := settings.String("ident")
	resolvedIdent, err := h.idents.Normalize(ident)
	if err != nil {
		return nil, err
	}

	memory := 65536
	if v, ok := settings.Int("memory"); ok {
		memory = v
	}
	t := 3
	if v, ok := settings.Int("time"); ok {
		t = v
	}
	threads := 4
	if v, ok := settings.Int("threads"); ok {
		threads = v
	}
	keyLen := 32
	if v, ok := settings.Int("key_len"); ok {
		keyLen = v
	}

	saltExplicit, _ := settings.String("salt")
	saltSize, _ := settings.Int("salt_size")
	var salt []byte
	if saltExplicit != "" {
		salt, err = base64.RawStdEncoding.DecodeString(saltExplicit)
		if err != nil {
			return nil, &hash.MalformedHashError{Scheme: schemeName, Reason: "bad salt encoding"}
		}
	} else {
		if saltSize == 0 {
			saltSize = h.salt.Default
		}
		salt, err = hash.RandomBytes(saltSize)
		if err != nil {
			return nil, err
		}
	}

	return &params{
		ident:   resolvedIdent,
		memory:  uint32(memory),
		time:    uint32(t),
		threads: uint8(threads),
		salt:    salt,
		keyLen:  uint32(keyLen),
	}, nil
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
