// Package sha512crypt implements the $6$ scheme: Ulrich Drepper's
// SHA-crypt applied to SHA-512. See sha256crypt for the sibling
// implementation sharing the same round-stretching core.
package sha512crypt

import (
	"crypto/sha512"
	"fmt"
	"strconv"
	"strings"

	passlib "github.com/notypecheck/passlib"
	"github.com/notypecheck/passlib/hash"
	"github.com/notypecheck/passlib/internal/encoding"
	"github.com/notypecheck/passlib/internal/shacrypt"
)

const (
	schemeName    = "sha512_crypt"
	ident         = "6"
	dsize         = 64
	checksumSize  = 86
	defaultRounds = 5000
)

func init() {
	passlib.Register(schemeName, newHasher, "sha512-crypt", "sha512crypt")
}

// Hasher implements hash.Hasher for sha512_crypt.
type Hasher struct {
	rounds hash.HasRounds
	salt   hash.HasSalt
}

func newHasher() (hash.Hasher, error) {
	return &Hasher{
		rounds: hash.HasRounds{Min: 1000, Max: 999999999, Default: defaultRounds, Cost: hash.RoundsLinear},
		salt:   hash.HasSalt{Min: 1, Max: 16, Default: 16, Chars: encoding.H64Alphabet},
	}, nil
}

// Descriptor implements hash.Hasher.
func (h *Hasher) Descriptor() hash.Descriptor {
	return hash.Descriptor{
		Name:            schemeName,
		Idents:          []string{ident},
		SettingKwds:     []string{"salt", "salt_size", "rounds", "vary_rounds"},
		MinRounds:       h.rounds.Min,
		MaxRounds:       h.rounds.Max,
		DefaultRounds:   h.rounds.Default,
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
	rounds         int
	roundsExplicit bool
	salt           string
	checksum       string
}

func parse(s string) (*parsed, error) {
	m, err := hash.ParseMCF(s, schemeName)
	if err != nil {
		return nil, err
	}
	if m.Ident != ident {
		return nil, &hash.MalformedHashError{Scheme: schemeName, Reason: "wrong ident"}
	}
	if len(m.Fields) > 1 {
		return nil, &hash.MalformedHashError{Scheme: schemeName, Reason: "too many fields"}
	}
	p := &parsed{rounds: defaultRounds, salt: m.Salt, checksum: m.Checksum}
	if len(m.Fields) == 1 {
		f := m.Fields[0]
		n, ok := parseRoundsField(f)
		if !ok {
			return nil, &hash.MalformedHashError{Scheme: schemeName, Reason: "unrecognized field " + f}
		}
		p.rounds = n
		p.roundsExplicit = true
	}
	if len(p.salt) == 0 || len(p.salt) > 16 || !encoding.ValidAlphabet(p.salt, encoding.H64Alphabet) {
		return nil, &hash.MalformedHashError{Scheme: schemeName, Reason: "bad salt"}
	}
	if len(p.checksum) != checksumSize || !encoding.ValidAlphabet(p.checksum, encoding.H64Alphabet) {
		return nil, &hash.MalformedHashError{Scheme: schemeName, Reason: "bad checksum"}
	}
	return p, nil
}

func parseRoundsField(f string) (int, bool) {
	if !strings.HasPrefix(f, "rounds=") {
		return 0, false
	}
	n, err := strconv.Atoi(strings.TrimPrefix(f, "rounds="))
	if err != nil {
		return 0, false
	}
	return n, true
}

func (p *parsed) build() string {
	m := &hash.MCF{Ident: ident, Salt: p.salt, Checksum: p.checksum}
	if p.roundsExplicit {
		m.Fields = []string{fmt.Sprintf("rounds=%d", p.rounds)}
	}
	return m.Build()
}

// Identify implements hash.Hasher.
func (h *Hasher) Identify(hashStr string) bool {
	_, err := parse(hashStr)
	return err == nil
}

// Hash implements hash.Hasher.
func (h *Hasher) Hash(secret string, settings hash.Settings) (string, error) {
	rounds, roundsExplicit, err := h.resolveRounds(settings)
	if err != nil {
		return "", err
	}
	salt, err := h.resolveSalt(settings)
	if err != nil {
		return "", err
	}
	checksum := computeChecksum(secret, salt, rounds)
	p := &parsed{rounds: rounds, roundsExplicit: roundsExplicit, salt: salt, checksum: checksum}
	return p.build(), nil
}

// Verify implements hash.Hasher.
func (h *Hasher) Verify(secret, hashStr string, _ map[string]string) (bool, error) {
	p, err := parse(hashStr)
	if err != nil {
		return false, err
	}
	computed := computeChecksum(secret, p.salt, p.rounds)
	return constantTimeEqual(computed, p.checksum), nil
}

// GenConfig implements hash.Hasher.
func (h *Hasher) GenConfig(settings hash.Settings) (string, error) {
	rounds, roundsExplicit, err := h.resolveRounds(settings)
	if err != nil {
		return "", err
	}
	salt, err := h.resolveSalt(settings)
	if err != nil {
		return "", err
	}
	p := &parsed{rounds: rounds, roundsExplicit: roundsExplicit, salt: salt, checksum: strings.Repeat(".", checksumSize)}
	return p.build(), nil
}

// GenHash implements hash.Hasher.
func (h *Hasher) GenHash(secret, config string) (string, error) {
	p, err := parse(config)
	if err != nil {
		return "", err
	}
	p.checksum = computeChecksum(secret, p.salt, p.rounds)
	return p.build(), nil
}

// NeedsUpdate implements hash.Hasher.
func (h *Hasher) NeedsUpdate(hashStr string, policy hash.UpdatePolicy) (bool, error) {
	p, err := parse(hashStr)
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

func (h *Hasher) resolveRounds(settings hash.Settings) (rounds int, explicit bool, err error) {
	var explicitPtr *int
	if v, ok := settings.Int("rounds"); ok {
		explicitPtr = &v
	}
	vary, _ := settings["vary_rounds"].(float64)
	rounds, err = h.rounds.Resolve(explicitPtr, nil, vary)
	if err != nil {
		return 0, false, err
	}
	if rounds != defaultRounds {
		explicit = true
	}
	return rounds, explicit, nil
}

func (h *Hasher) resolveSalt(settings hash.Settings) (string, error) {
	explicit, _ := settings.String("salt")
	size, _ := settings.Int("salt_size")
	return h.salt.Resolve(explicit, size)
}

func computeChecksum(secret, salt string, rounds int) string {
	buf := shacrypt.Digest(sha512.New, dsize, []byte(secret), []byte(salt), rounds)
	return encodeChecksum(buf)
}

func encodeChecksum(buf []byte) string {
	var sb strings.Builder
	sb.WriteString(encoding.H64FromTriplet(buf[0], buf[21], buf[42], 4))
	sb.WriteString(encoding.H64FromTriplet(buf[22], buf[43], buf[1], 4))
	sb.WriteString(encoding.H64FromTriplet(buf[44], buf[2], buf[23], 4))
	sb.WriteString(encoding.H64FromTriplet(buf[3], buf[24], buf[45], 4))
	sb.WriteString(encoding.H64FromTriplet(buf[25], buf[46], buf[4], 4))
	sb.WriteString(encoding.H64FromTriplet(buf[47], buf[5], buf[26], 4))
	sb.WriteString(encoding.H64FromTriplet(buf[6], buf[27], buf[48], 4))
	sb.WriteString(encoding.H64FromTriplet(buf[28], buf[49], buf[7], 4))
	sb.WriteString(encoding.H64FromTriplet(buf[50], buf[8], buf[29], 4))
	sb.WriteString(encoding.H64FromTriplet(buf[9], buf[30], buf[51], 4))
	sb.WriteString(encoding.H64FromTriplet(buf[31], buf[52], buf[10], 4))
	sb.WriteString(encoding.H64FromTriplet(buf[53], buf[11], buf[32], 4))
	sb.WriteString(encoding.H64FromTriplet(buf[12], buf[33], buf[54], 4))
	sb.WriteString(encoding.H64FromTriplet(buf[34], buf[55], buf[13], 4))
	sb.WriteString(encoding.H64FromTriplet(buf[56], buf[14], buf[35], 4))
	sb.WriteString(encoding.H64FromTriplet(buf[15], buf[36], buf[57], 4))
	sb.WriteString(encoding.H64FromTriplet(buf[37], buf[58], buf[16], 4))
	sb.WriteString(encoding.H64FromTriplet(buf[59], buf[17], buf[38], 4))
	sb.WriteString(encoding.H64FromTriplet(buf[18], buf[39], buf[60], 4))
	sb.WriteString(encoding.H64FromTriplet(buf[40], buf[61], buf[19], 4))
	sb.WriteString(encoding.H64FromTriplet(buf[62], buf[20], buf[41], 4))
	sb.WriteString(encoding.H64FromTriplet(0, 0, buf[63], 2))
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
