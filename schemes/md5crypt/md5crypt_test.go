package md5crypt

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/notypecheck/passlib/hash"
)

func TestMd5CryptRoundTrip(t *testing.T) {
	h, err := newHasher()
	require.NoError(t, err)

	out, err := h.Hash("correct horse battery staple", hash.Settings{"salt": "saltsalt"})
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(out, "$1$saltsalt$"))
	require.Len(t, strings.TrimPrefix(out, "$1$saltsalt$"), checksumSize)

	ok, err := h.Verify("correct horse battery staple", out, nil)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = h.Verify("wrong", out, nil)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestMd5CryptGenConfigGenHashParity(t *testing.T) {
	h, err := newHasher()
	require.NoError(t, err)

	config, err := h.GenConfig(hash.Settings{"salt": "abcdefgh"})
	require.NoError(t, err)

	full, err := h.GenHash("shared secret", config)
	require.NoError(t, err)

	ok, err := h.Verify("shared secret", full, nil)
	require.NoError(t, err)
	require.True(t, ok)
}

func TestMd5CryptRejectsMalformed(t *testing.T) {
	h, err := newHasher()
	require.NoError(t, err)
	require.False(t, h.Identify("$5$saltstring$"+strings.Repeat("a", 43)))
	require.False(t, h.Identify("not-a-hash"))
}

func TestMd5CryptRejectsNUL(t *testing.T) {
	h, err := newHasher()
	require.NoError(t, err)
	_, err = h.Hash("bad\x00secret", hash.Settings{"salt": "saltsalt"})
	require.Error(t, err)
}
