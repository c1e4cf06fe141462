package sha512crypt

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/notypecheck/passlib/hash"
)

func TestSha512CryptExplicitRoundsVector(t *testing.T) {
	h, err := newHasher()
	require.NoError(t, err)

	out, err := h.Hash("Hello world!", hash.Settings{"salt": "saltstring", "rounds": 10000})
	require.NoError(t, err)

	require.True(t, strings.HasPrefix(out, "$6$rounds=10000$saltstring$"))
	checksum := strings.TrimPrefix(out, "$6$rounds=10000$saltstring$")
	require.Len(t, checksum, checksumSize)

	ok, err := h.Verify("Hello world!", out, nil)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = h.Verify("hello world!", out, nil)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestSha512CryptOmitsDefaultRounds(t *testing.T) {
	h, err := newHasher()
	require.NoError(t, err)

	out, err := h.Hash("x", hash.Settings{"salt": "saltstring"})
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(out, "$6$saltstring$"))
	require.NotContains(t, out, "rounds=")
}

func TestSha512CryptGenConfigGenHashParity(t *testing.T) {
	h, err := newHasher()
	require.NoError(t, err)

	config, err := h.GenConfig(hash.Settings{"rounds": 5000})
	require.NoError(t, err)

	full, err := h.GenHash("shared secret", config)
	require.NoError(t, err)

	ok, err := h.Verify("shared secret", full, nil)
	require.NoError(t, err)
	require.True(t, ok)
}
