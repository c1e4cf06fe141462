package hash

import (
	"fmt"
)

// HasRounds factors out rounds handling: clamping, validation, and
// vary_rounds jitter, shared by every rounds-based scheme.
type HasRounds struct {
	Min     int
	Max     int
	Default int
	Cost    RoundsCost
}

// Resolve returns the effective rounds for a Hash call: explicit wins over
// override wins over Default, then jitter and clamping are applied.
func (h HasRounds) Resolve(explicit, override *int, varyRounds float64) (int, error) {
	return ResolveRounds(explicit, override, h.Default, h.Min, h.Max, h.Cost, varyRounds)
}

// Validate returns a range error if rounds is outside [Min, Max], without
// clamping. GenConfig and Hash do not call it: they resolve rounds through
// Resolve, which clamps out-of-range input.
func (h HasRounds) Validate(rounds int) error {
	return ValidateRounds(rounds, h.Min, h.Max)
}

// HasSalt factors out salt generation and validation.
type HasSalt struct {
	Min     int
	Max     int
	Default int
	Chars   string
}

// Resolve returns explicit if non-empty (after validating it), otherwise
// generates a fresh salt of size (or Default if size is 0).
func (h HasSalt) Resolve(explicit string, size int) (string, error) {
	if explicit != "" {
		if err := h.Validate(explicit); err != nil {
			return "", err
		}
		return explicit, nil
	}
	if size == 0 {
		size = h.Default
	}
	if size < h.Min || size > h.Max {
		return "", fmt.Errorf("hash: salt size %d outside [%d, %d]", size, h.Min, h.Max)
	}
	return GenerateSalt(size, h.Chars)
}

// Validate checks an explicit salt's length and alphabet.
func (h HasSalt) Validate(salt string) error {
	if len(salt) < h.Min || len(salt) > h.Max {
		return fmt.Errorf("hash: salt length %d outside [%d, %d]", len(salt), h.Min, h.Max)
	}
	for i := 0; i < len(salt); i++ {
		if indexByteLocal(h.Chars, salt[i]) < 0 {
			return fmt.Errorf("hash: salt contains character %q outside scheme alphabet", salt[i])
		}
	}
	return nil
}

func indexByteLocal(s string, c byte) int {
	for i := 0; i < len(s); i++ {
		if s[i] == c {
			return i
		}
	}
	return -1
}

// HasManyIdents factors out schemes with more than one valid ident prefix
// (e.g. bcrypt's $2a$/$2b$/$2x$/$2y$).
type HasManyIdents struct {
	Idents  []string
	Default string
}

// Normalize returns explicit if it names one of Idents, otherwise Default.
// An explicit ident naming something outside Idents is a config error.
func (h HasManyIdents) Normalize(explicit string) (string, error) {
	if explicit == "" {
		return h.Default, nil
	}
	for _, id := range h.Idents {
		if id == explicit {
			return explicit, nil
		}
	}
	return "", fmt.Errorf("hash: ident %q is not one of %v", explicit, h.Idents)
}

// Matches reports whether ident is one of the scheme's known idents.
func (h HasManyIdents) Matches(ident string) bool {
	for _, id := range h.Idents {
		if id == ident {
			return true
		}
	}
	return false
}

// HasTruncation factors out the bcrypt-family truncation policy: a secret
// over TruncateSize bytes is either an error, silently cut, or (for
// schemes without a limit) left alone.
type HasTruncation struct {
	Size   int
	Policy TruncatePolicy
}

// Check applies the truncation policy to secret, returning the (possibly
// shortened) bytes to hash, or an error if the policy is TruncateError and
// secret is too long.
func (h HasTruncation) Check(secret []byte) ([]byte, error) {
	if h.Policy == TruncateNone || h.Size <= 0 || len(secret) <= h.Size {
		return secret, nil
	}
	if h.Policy == TruncateError {
		return nil, &PasswordTruncateError{Limit: h.Size}
	}
	return secret[:h.Size], nil
}

// Risky reports whether secret (if provided) would be silently truncated
// under the current policy — used by NeedsUpdate's truncation-risk check.
func (h HasTruncation) Risky(secret *string) bool {
	if secret == nil || h.Policy != TruncateSilent || h.Size <= 0 {
		return false
	}
	return len(*secret) > h.Size
}
