package pbkdf2

import (
	"crypto/sha1"
	"crypto/sha256"
	"crypto/sha512"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	phash "github.com/notypecheck/passlib/hash"
)

func TestPbkdf2Sha1RFC6070Vector(t *testing.T) {
	h, err := newHasher(variant{scheme: "pbkdf2_sha1", ident: "pbkdf2", newHash: sha1.New, dsize: 20, defaultRounds: 131000})()
	require.NoError(t, err)

	config := "$pbkdf2$1$c2FsdA$" + strings.Repeat(".", 27)
	full, err := h.GenHash("password", config)
	require.NoError(t, err)
	require.Equal(t, "$pbkdf2$1$c2FsdA$DGDID5YfDnHzqbUkr2ASBi/gN6Y", full)

	ok, err := h.Verify("password", full, nil)
	require.NoError(t, err)
	require.True(t, ok)
}

func TestPbkdf2Sha256RoundTrip(t *testing.T) {
	h, err := newHasher(variant{scheme: "pbkdf2_sha256", ident: "pbkdf2-sha256", newHash: sha256.New, dsize: 32, defaultRounds: 29000})()
	require.NoError(t, err)

	out, err := h.Hash("correct horse battery staple", phash.Settings{"rounds": 1000})
	require.NoError(t, err)
	require.True(t, h.Identify(out))

	ok, err := h.Verify("correct horse battery staple", out, nil)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = h.Verify("wrong", out, nil)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestPbkdf2Sha512ChecksumLength(t *testing.T) {
	h, err := newHasher(variant{scheme: "pbkdf2_sha512", ident: "pbkdf2-sha512", newHash: sha512.New, dsize: 64, defaultRounds: 25000})()
	require.NoError(t, err)

	out, err := h.Hash("x", phash.Settings{"rounds": 1000})
	require.NoError(t, err)
	require.Equal(t, 86, h.Descriptor().ChecksumSize)
	require.Contains(t, out, "$pbkdf2-sha512$1000$")
}

func TestPbkdf2GenConfigGenHashParity(t *testing.T) {
	h, err := newHasher(variant{scheme: "pbkdf2_sha256", ident: "pbkdf2-sha256", newHash: sha256.New, dsize: 32, defaultRounds: 29000})()
	require.NoError(t, err)

	config, err := h.GenConfig(phash.Settings{"rounds": 1000})
	require.NoError(t, err)

	full, err := h.GenHash("shared secret", config)
	require.NoError(t, err)

	ok, err := h.Verify("shared secret", full, nil)
	require.NoError(t, err)
	require.True(t, ok)
}
