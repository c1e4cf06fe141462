package scrypt

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/notypecheck/passlib/hash"
)

func TestScryptRoundTrip(t *testing.T) {
	h, err := newHasher()
	require.NoError(t, err)

	out, err := h.Hash("correct horse battery staple", hash.Settings{"log_n": 10, "r": 8, "p": 1})
	require.NoError(t, err)
	require.True(t, h.Identify(out))
	require.Contains(t, out, "$scrypt$ln=10,r=8,p=1$")

	ok, err := h.Verify("correct horse battery staple", out, nil)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = h.Verify("wrong", out, nil)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestScryptGenConfigGenHashParity(t *testing.T) {
	h, err := newHasher()
	require.NoError(t, err)

	config, err := h.GenConfig(hash.Settings{"log_n": 10})
	require.NoError(t, err)

	full, err := h.GenHash("shared secret", config)
	require.NoError(t, err)

	ok, err := h.Verify("shared secret", full, nil)
	require.NoError(t, err)
	require.True(t, ok)
}

func TestScryptRejectsMalformed(t *testing.T) {
	h, err := newHasher()
	require.NoError(t, err)
	require.False(t, h.Identify("$scrypt$"))
	require.False(t, h.Identify("not a hash"))
}
