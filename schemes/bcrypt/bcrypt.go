// Package bcrypt implements the bcrypt family of password hashes
// ($2a$/$2b$/$2x$/$2y$). Unlike most schemes in the catalogue, bcrypt's
// wire format is not Modular Crypt Format: salt and checksum are packed
// into one 53-character field with no delimiter between them
// ($2b$<cost>$<22-char-salt><31-char-checksum>), so this package parses
// and builds that shape directly instead of using hash.MCF.
//
// The cryptographic core (EKS-Blowfish key setup plus 64 ECB encryptions
// of a fixed magic string) is implemented here against
// golang.org/x/crypto/blowfish rather than calling into
// golang.org/x/crypto/bcrypt, because the latter has no public API for
// pinning an explicit salt — needed for genconfig/genhash parity and for
// reproducing published test vectors.
package bcrypt

import (
	"crypto/subtle"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/crypto/blowfish"

	passlib "github.com/notypecheck/passlib"
	"github.com/notypecheck/passlib/hash"
	"github.com/notypecheck/passlib/internal/encoding"
)

const schemeName = "bcrypt"

var idents = []string{"2a", "2b", "2x", "2y"}

func init() {
	passlib.Register(schemeName, newHasher, "bcrypt_2b", "bcrypt-sha256-shim")
}

// Hasher implements hash.Hasher for the bcrypt family.
type Hasher struct {
	rounds hash.HasRounds
	idents hash.HasManyIdents
	trunc  hash.HasTruncation
}

func newHasher() (hash.Hasher, error) {
	return &Hasher{
		rounds: hash.HasRounds{Min: 4, Max: 31, Default: 10, Cost: hash.RoundsLog2},
		idents: hash.HasManyIdents{Idents: idents, Default: "2b"},
		trunc:  hash.HasTruncation{Size: 72, Policy: hash.TruncateSilent},
	}, nil
}

// Descriptor implements hash.Hasher.
func (h *Hasher) Descriptor() hash.Descriptor {
	return hash.Descriptor{
		Name:            schemeName,
		Idents:          idents,
		SettingKwds:     []string{"salt", "ident", "rounds", "truncate_error"},
		MinRounds:       h.rounds.Min,
		MaxRounds:       h.rounds.Max,
		DefaultRounds:   h.rounds.Default,
		RoundsCost:      hash.RoundsLog2,
		MinSaltSize:     22,
		MaxSaltSize:     22,
		DefaultSaltSize: 22,
		SaltChars:       encoding.BcryptAlphabet,
		ChecksumSize:    31,
		ChecksumChars:   encoding.BcryptAlphabet,
		TruncateSize:    72,
		TruncatePolicy:  hash.TruncateSilent,
	}
}

type parsed struct {
	ident    string
	cost     int
	salt     string
	checksum string
}

// Identify implements hash.Hasher.
func (h *Hasher) Identify(hashStr string) bool {
	_, err := parseBcrypt(hashStr)
	return err == nil
}

func parseBcrypt(s string) (*parsed, error) {
	if !strings.HasPrefix(s, "$2") {
		return nil, &hash.MalformedHashError{Scheme: schemeName, Reason: "missing $2 prefix"}
	}
	parts := strings.Split(s, "$")
	// "$2b$05$<53 chars>" -> Split gives ["", "2b", "05", "<53 chars>"]
	if len(parts) != 4 || parts[0] != "" {
		return nil, &hash.MalformedHashError{Scheme: schemeName, Reason: "expected exactly 3 '$'-delimited fields"}
	}
	ident := parts[1]
	if !matchesIdent(ident) {
		return nil, &hash.MalformedHashError{Scheme: schemeName, Reason: "unrecognized ident " + ident}
	}
	if len(parts[2]) != 2 {
		return nil, &hash.MalformedHashError{Scheme: schemeName, Reason: "cost field must be 2 digits"}
	}
	cost, err := strconv.Atoi(parts[2])
	if err != nil {
		return nil, &hash.MalformedHashError{Scheme: schemeName, Reason: "cost field is not numeric"}
	}
	tail := parts[3]
	if len(tail) != 53 {
		return nil, &hash.MalformedHashError{Scheme: schemeName, Reason: "expected 53-character salt+checksum field"}
	}
	salt, checksum := tail[:22], tail[22:]
	if !encoding.ValidAlphabet(salt, encoding.BcryptAlphabet) || !encoding.ValidAlphabet(checksum, encoding.BcryptAlphabet) {
		return nil, &hash.MalformedHashError{Scheme: schemeName, Reason: "salt or checksum outside bcrypt alphabet"}
	}
	return &parsed{ident: ident, cost: cost, salt: salt, checksum: checksum}, nil
}

func matchesIdent(ident string) bool {
	for _, id := range idents {
		if id == ident {
			return true
		}
	}
	return false
}

func (p *parsed) build() string {
	return fmt.Sprintf("$%s$%02d$%s%s", p.ident, p.cost, p.salt, p.checksum)
}

// Hash implements hash.Hasher.
func (h *Hasher) Hash(secret string, settings hash.Settings) (string, error) {
	secretBytes, err := h.prepareSecret(secret, settings)
	if err != nil {
		return "", err
	}

	ident, err := h.resolveIdent(settings)
	if err != nil {
		return "", err
	}
	if ident == "2x" {
		return "", &hash.InvalidHashError{Scheme: schemeName, Reason: "2x variant is not implemented (known PHP mcrypt incompatibility)"}
	}

	cost, err := h.resolveCost(settings)
	if err != nil {
		return "", err
	}

	salt, rawSalt, err := h.resolveSalt(settings)
	if err != nil {
		return "", err
	}

	checksumRaw, err := bcryptCore(secretBytes, cost, rawSalt)
	if err != nil {
		return "", err
	}

	p := &parsed{
		ident:    ident,
		cost:     cost,
		salt:     salt,
		checksum: encoding.BcryptEncoding.EncodeToString(checksumRaw),
	}
	return p.build(), nil
}

// Verify implements hash.Hasher.
func (h *Hasher) Verify(secret, hashStr string, _ map[string]string) (bool, error) {
	p, err := parseBcrypt(hashStr)
	if err != nil {
		return false, err
	}
	if p.ident == "2x" {
		return false, &hash.InvalidHashError{Scheme: schemeName, Reason: "2x variant is not implemented"}
	}
	if p.cost < h.rounds.Min || p.cost > h.rounds.Max {
		return false, &hash.InvalidHashError{Scheme: schemeName, Reason: "cost outside accepted range"}
	}

	secretBytes, err := prepareSecretBytes(secret, h.trunc)
	if err != nil {
		return false, err
	}

	rawSalt, err := encoding.BcryptEncoding.DecodeString(p.salt)
	if err != nil {
		return false, &hash.MalformedHashError{Scheme: schemeName, Reason: "bad salt encoding"}
	}

	computed, err := bcryptCore(secretBytes, p.cost, rawSalt)
	if err != nil {
		return false, err
	}
	computedStr := encoding.BcryptEncoding.EncodeToString(computed)
	return subtle.ConstantTimeCompare([]byte(computedStr), []byte(p.checksum)) == 1, nil
}

// GenConfig implements hash.Hasher.
func (h *Hasher) GenConfig(settings hash.Settings) (string, error) {
	ident, err := h.resolveIdent(settings)
	if err != nil {
		return "", err
	}
	cost, err := h.resolveCost(settings)
	if err != nil {
		return "", err
	}
	salt, _, err := h.resolveSalt(settings)
	if err != nil {
		return "", err
	}
	p := &parsed{ident: ident, cost: cost, salt: salt, checksum: strings.Repeat(".", 31)}
	return p.build(), nil
}

// GenHash implements hash.Hasher.
func (h *Hasher) GenHash(secret, config string) (string, error) {
	p, err := parseBcrypt(config)
	if err != nil {
		return "", err
	}
	if p.ident == "2x" {
		return "", &hash.InvalidHashError{Scheme: schemeName, Reason: "2x variant is not implemented"}
	}
	secretBytes, err := prepareSecretBytes(secret, h.trunc)
	if err != nil {
		return "", err
	}
	rawSalt, err := encoding.BcryptEncoding.DecodeString(p.salt)
	if err != nil {
		return "", &hash.MalformedHashError{Scheme: schemeName, Reason: "bad salt encoding"}
	}
	checksumRaw, err := bcryptCore(secretBytes, p.cost, rawSalt)
	if err != nil {
		return "", err
	}
	p.checksum = encoding.BcryptEncoding.EncodeToString(checksumRaw)
	return p.build(), nil
}

// NeedsUpdate implements hash.Hasher.
func (h *Hasher) NeedsUpdate(hashStr string, policy hash.UpdatePolicy) (bool, error) {
	p, err := parseBcrypt(hashStr)
	if err != nil {
		return false, err
	}
	if p.ident == "2a" {
		// $2a$ is known-weaker for passwords with high-bit characters;
		// spec §4.3 calls this upgrade out explicitly.
		return true, nil
	}
	if policy.DeprecatedIdents[p.ident] {
		return true, nil
	}
	if p.cost < policy.MinRounds {
		return true, nil
	}
	if h.trunc.Risky(policy.Secret) {
		return true, nil
	}
	return false, nil
}

func (h *Hasher) resolveIdent(settings hash.Settings) (string, error) {
	explicit, _ := settings.String("ident")
	return h.idents.Normalize(explicit)
}

func (h *Hasher) resolveCost(settings hash.Settings) (int, error) {
	var explicit *int
	if v, ok := settings.Int("rounds"); ok {
		explicit = &v
	}
	vary, _ := settings["vary_rounds"].(float64)
	return h.rounds.Resolve(explicit, nil, vary)
}

func (h *Hasher) resolveSalt(settings hash.Settings) (encoded string, raw []byte, err error) {
	explicit, _ := settings.String("salt")
	if explicit != "" {
		if len(explicit) != 22 || !encoding.ValidAlphabet(explicit, encoding.BcryptAlphabet) {
			return "", nil, fmt.Errorf("hash: bcrypt salt must be 22 characters from the bcrypt alphabet")
		}
		raw, err = encoding.BcryptEncoding.DecodeString(explicit)
		if err != nil {
			return "", nil, &hash.MalformedHashError{Scheme: schemeName, Reason: "bad salt encoding"}
		}
		return explicit, raw, nil
	}
	raw, err = hash.RandomBytes(16)
	if err != nil {
		return "", nil, err
	}
	return encoding.BcryptEncoding.EncodeToString(raw), raw, nil
}

func (h *Hasher) prepareSecret(secret string, settings hash.Settings) ([]byte, error) {
	trunc := h.trunc
	trunc.Policy = hash.TruncateSilent
	if truncErr, ok := settings.Bool("truncate_error"); ok && truncErr {
		trunc.Policy = hash.TruncateError
	}
	return prepareSecretBytes(secret, trunc)
}

func prepareSecretBytes(secret string, trunc hash.HasTruncation) ([]byte, error) {
	if strings.IndexByte(secret, 0) >= 0 {
		return nil, &hash.PasswordValueError{Scheme: schemeName, Reason: "secret must not contain a NUL byte"}
	}
	return trunc.Check([]byte(secret))
}

// magicCipherData is the fixed 24-byte plaintext bcrypt encrypts 64 times
// per 8-byte block.
var magicCipherData = []byte("OrpheanBeholderScryDoubt")

func bcryptCore(secret []byte, cost int, rawSalt []byte) ([]byte, error) {
	c, err := eksBlowfishSetup(secret, uint32(cost), rawSalt)
	if err != nil {
		return nil, err
	}

	out := make([]byte, len(magicCipherData))
	copy(out, magicCipherData)
	for i := 0; i < len(out); i += 8 {
		block := out[i : i+8]
		for j := 0; j < 64; j++ {
			c.Encrypt(block, block)
		}
	}
	// Bug-compatible with reference bcrypt implementations: only the
	// first 23 of the 24 encrypted bytes are encoded.
	return out[:23], nil
}

func eksBlowfishSetup(key []byte, cost uint32, salt []byte) (*blowfish.Cipher, error) {
	// Bug-compatible with reference bcrypt implementations: the key is
	// treated as NUL-terminated, so a trailing zero byte is always
	// appended even though we reject embedded NULs elsewhere.
	ckey := make([]byte, len(key)+1)
	copy(ckey, key)

	c, err := blowfish.NewSaltedCipher(ckey, salt)
	if err != nil {
		return nil, err
	}

	rounds := uint64(1) << cost
	for i := uint64(0); i < rounds; i++ {
		blowfish.ExpandKey(ckey, c)
		blowfish.ExpandKey(salt, c)
	}
	return c, nil
}
