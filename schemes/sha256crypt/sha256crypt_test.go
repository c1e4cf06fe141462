package sha256crypt

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/notypecheck/passlib/hash"
)

func TestSha256CryptRoundTrip(t *testing.T) {
	h, err := newHasher()
	require.NoError(t, err)

	out, err := h.Hash("correct horse battery staple", hash.Settings{"salt": "saltstring", "rounds": 1000})
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(out, "$5$rounds=1000$saltstring$"))

	ok, err := h.Verify("correct horse battery staple", out, nil)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = h.Verify("wrong", out, nil)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestSha256CryptOmitsDefaultRounds(t *testing.T) {
	h, err := newHasher()
	require.NoError(t, err)

	out, err := h.Hash("x", hash.Settings{"salt": "saltstring"})
	require.NoError(t, err)
	require.Equal(t, "$5$saltstring$", out[:len("$5$saltstring$")])
	require.NotContains(t, out, "rounds=")
}

func TestSha256CryptGenConfigGenHashParity(t *testing.T) {
	h, err := newHasher()
	require.NoError(t, err)

	config, err := h.GenConfig(hash.Settings{"rounds": 1000})
	require.NoError(t, err)

	full, err := h.GenHash("shared secret", config)
	require.NoError(t, err)

	ok, err := h.Verify("shared secret", full, nil)
	require.NoError(t, err)
	require.True(t, ok)
}

func TestSha256CryptRejectsMalformed(t *testing.T) {
	h, err := newHasher()
	require.NoError(t, err)
	require.False(t, h.Identify("$5$"))
	require.False(t, h.Identify("$6$saltstring$"+strings.Repeat("a", 86)))
}

func TestSha256CryptNeedsUpdateOnLowRounds(t *testing.T) {
	h, err := newHasher()
	require.NoError(t, err)

	out, err := h.Hash("x", hash.Settings{"salt": "saltstring", "rounds": 1000})
	require.NoError(t, err)

	needs, err := h.NeedsUpdate(out, hash.UpdatePolicy{MinRounds: 29000, MinSaltSize: 16})
	require.NoError(t, err)
	require.True(t, needs)
}
