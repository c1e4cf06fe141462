package hash

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
)

// GenerateSalt draws cryptographically secure entropy and maps it onto
// alphabet to produce a salt string of exactly size characters.
//
// When alphabet has exactly 64 symbols, each 6 bits of input map cleanly
// onto one symbol, so encoding/base64 (with alphabet substituted in) is
// used directly. For any other alphabet size, rejection sampling draws one
// byte per candidate character and discards out-of-range draws, avoiding
// the modulo bias a naive `byte % len(alphabet)` would introduce.
func GenerateSalt(size int, alphabet string) (string, error) {
	if size <= 0 {
		return "", fmt.Errorf("hash: salt size must be positive, got %d", size)
	}
	if len(alphabet) == 64 {
		return generateSaltBase64(size, alphabet)
	}
	return generateSaltRejection(size, alphabet)
}

func generateSaltBase64(size int, alphabet string) (string, error) {
	enc := base64.NewEncoding(alphabet).WithPadding(base64.NoPadding)
	// size output chars need ceil(size*6/8) input bytes.
	nBytes := (size*6 + 7) / 8
	raw := make([]byte, nBytes)
	if _, err := rand.Read(raw); err != nil {
		return "", err
	}
	out := enc.EncodeToString(raw)
	if len(out) < size {
		return "", fmt.Errorf("hash: salt encoding produced %d chars, wanted %d", len(out), size)
	}
	return out[:size], nil
}

func generateSaltRejection(size int, alphabet string) (string, error) {
	n := len(alphabet)
	if n == 0 {
		return "", fmt.Errorf("hash: empty salt alphabet")
	}
	// Reject draws >= the largest multiple of n that fits in a byte, so
	// every kept draw maps uniformly onto the alphabet.
	limit := byte((256 / n) * n)

	out := make([]byte, size)
	buf := make([]byte, 1)
	for i := 0; i < size; {
		if _, err := rand.Read(buf); err != nil {
			return "", err
		}
		if limit != 0 && buf[0] >= limit {
			continue
		}
		out[i] = alphabet[int(buf[0])%n]
		i++
	}
	return string(out), nil
}

// RandomBytes returns n cryptographically secure random bytes.
func RandomBytes(n int) ([]byte, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return nil, err
	}
	return b, nil
}
