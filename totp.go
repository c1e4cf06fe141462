package passlib

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha1"
	"crypto/sha256"
	"crypto/sha512"
	"crypto/subtle"
	"encoding/base32"
	"encoding/binary"
	"errors"
	"fmt"
	"hash"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// ErrTOTPUnsupportedAlgorithm reports a TOTPConfig.Algorithm this package
// does not implement.
var ErrTOTPUnsupportedAlgorithm = errors.New("passlib: unsupported totp algorithm")

// ErrTOTPEmptySecret reports a zero-length secret passed to VerifyCode.
var ErrTOTPEmptySecret = errors.New("passlib: empty totp secret")

// TOTPConfig carries the RFC 6238 parameters for one TOTP instance:
// period and digit count, the HMAC algorithm, an issuer name for
// provisioning URIs, and a skew window of adjacent time steps to accept
// for clock drift between client and server.
type TOTPConfig struct {
	Issuer    string
	Period    int
	Digits    int
	Algorithm string // "SHA1" (default), "SHA256", or "SHA512"
	Skew      int
}

// defaulted returns a copy of cfg with zero fields filled with the
// conventional Google-Authenticator-compatible defaults.
func (cfg TOTPConfig) defaulted() TOTPConfig {
	if cfg.Period <= 0 {
		cfg.Period = 30
	}
	if cfg.Digits <= 0 {
		cfg.Digits = 6
	}
	if cfg.Algorithm == "" {
		cfg.Algorithm = "SHA1"
	}
	return cfg
}

const totpSecretBytes = 20

// TOTP generates and verifies time-based one-time passwords per RFC 6238,
// layered over the RFC 4226 HOTP counter algorithm. A TOTP value is
// immutable once constructed and safe for concurrent use.
type TOTP struct {
	config TOTPConfig
}

// NewTOTP returns a TOTP using cfg, with Period, Digits, and Algorithm
// defaulted when left zero.
func NewTOTP(cfg TOTPConfig) *TOTP {
	return &TOTP{config: cfg.defaulted()}
}

// GenerateSecret returns a fresh random secret (raw bytes, and the same
// bytes base32-encoded without padding for display/QR-code use).
func (t *TOTP) GenerateSecret() (raw []byte, base32Secret string, err error) {
	raw = make([]byte, totpSecretBytes)
	if _, err := rand.Read(raw); err != nil {
		return nil, "", err
	}
	enc := base32.StdEncoding.WithPadding(base32.NoPadding)
	return raw, enc.EncodeToString(raw), nil
}

// ProvisionURI builds an otpauth:// URI suitable for rendering as a QR
// code, identifying account under the configured issuer.
func (t *TOTP) ProvisionURI(secretBase32, account string) string {
	issuer := t.config.Issuer
	label := url.PathEscape(issuer + ":" + account)

	v := url.Values{}
	v.Set("secret", secretBase32)
	v.Set("issuer", issuer)
	v.Set("period", strconv.Itoa(t.config.Period))
	v.Set("digits", strconv.Itoa(t.config.Digits))
	v.Set("algorithm", strings.ToUpper(t.config.Algorithm))

	return "otpauth://totp/" + label + "?" + v.Encode()
}

// VerifyCode reports whether code is a valid TOTP for secret at now,
// accepting any time step within the configured skew window. On success
// it also returns the matched counter, so callers can enforce replay
// protection by rejecting any counter no greater than the last one
// accepted for this secret.
func (t *TOTP) VerifyCode(secret []byte, code string, now time.Time) (ok bool, counter int64, err error) {
	trimmed := strings.TrimSpace(code)
	if len(trimmed) != t.config.Digits || !isNumericString(trimmed) {
		return false, 0, nil
	}
	if len(secret) == 0 {
		return false, 0, ErrTOTPEmptySecret
	}

	base := now.Unix() / int64(t.config.Period)
	for step := -t.config.Skew; step <= t.config.Skew; step++ {
		c := base + int64(step)
		if c < 0 {
			continue
		}
		generated, err := hotpCode(secret, c, t.config.Digits, t.config.Algorithm)
		if err != nil {
			return false, 0, err
		}
		if subtle.ConstantTimeCompare([]byte(generated), []byte(trimmed)) == 1 {
			return true, c, nil
		}
	}
	return false, 0, nil
}

// CurrentCode returns the TOTP value for secret at now, for tests and for
// display-your-own-code flows. Production verification should use
// VerifyCode, which tolerates clock skew.
func (t *TOTP) CurrentCode(secret []byte, now time.Time) (string, error) {
	counter := now.Unix() / int64(t.config.Period)
	return hotpCode(secret, counter, t.config.Digits, t.config.Algorithm)
}

func hotpCode(secret []byte, counter int64, digits int, algorithm string) (string, error) {
	var msg [8]byte
	binary.BigEndian.PutUint64(msg[:], uint64(counter))

	hf, err := hmacFunc(algorithm)
	if err != nil {
		return "", err
	}
	mac := hmac.New(hf, secret)
	_, _ = mac.Write(msg[:])
	sum := mac.Sum(nil)

	offset := sum[len(sum)-1] & 0x0f
	bin := (int(sum[offset])&0x7f)<<24 |
		(int(sum[offset+1])&0xff)<<16 |
		(int(sum[offset+2])&0xff)<<8 |
		(int(sum[offset+3]) & 0xff)

	mod := 1
	for i := 0; i < digits; i++ {
		mod *= 10
	}

	return fmt.Sprintf("%0*d", digits, bin%mod), nil
}

func hmacFunc(algorithm string) (func() hash.Hash, error) {
	switch strings.ToUpper(algorithm) {
	case "", "SHA1":
		return sha1.New, nil
	case "SHA256":
		return sha256.New, nil
	case "SHA512":
		return sha512.New, nil
	default:
		return nil, ErrTOTPUnsupportedAlgorithm
	}
}

func isNumericString(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
