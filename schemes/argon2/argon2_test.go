package argon2

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/notypecheck/passlib/hash"
)

func TestArgon2RoundTrip(t *testing.T) {
	h, err := newHasher()
	require.NoError(t, err)

	out, err := h.Hash("correct horse battery staple", hash.Settings{"memory": 8192, "time": 2, "threads": 1})
	require.NoError(t, err)
	require.True(t, h.Identify(out))
	require.Contains(t, out, "$argon2id$v=19$m=8192,t=2,p=1$")

	ok, err := h.Verify("correct horse battery staple", out, nil)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = h.Verify("wrong", out, nil)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestArgon2ArgonIVariant(t *testing.T) {
	h, err := newHasher()
	require.NoError(t, err)

	out, err := h.Hash("x", hash.Settings{"ident": "argon2i", "memory": 8192, "time": 2, "threads": 1})
	require.NoError(t, err)
	require.Contains(t, out, "$argon2i$")

	ok, err := h.Verify("x", out, nil)
	require.NoError(t, err)
	require.True(t, ok)
}

func TestArgon2GenConfigGenHashParity(t *testing.T) {
	h, err := newHasher()
	require.NoError(t, err)

	config, err := h.GenConfig(hash.Settings{"memory": 8192, "time": 2, "threads": 1})
	require.NoError(t, err)

	full, err := h.GenHash("shared secret", config)
	require.NoError(t, err)

	ok, err := h.Verify("shared secret", full, nil)
	require.NoError(t, err)
	require.True(t, ok)
}

func TestArgon2RejectsMalformed(t *testing.T) {
	h, err := newHasher()
	require.NoError(t, err)
	require.False(t, h.Identify("$argon2id$v=18$m=8192,t=2,p=1$c29tZXNhbHQ$c29tZWhhc2g"))
	require.False(t, h.Identify("not a hash"))
}

func TestArgon2NeedsUpdateOnLowTime(t *testing.T) {
	h, err := newHasher()
	require.NoError(t, err)

	out, err := h.Hash("x", hash.Settings{"memory": 8192, "time": 2, "threads": 1})
	require.NoError(t, err)

	needs, err := h.NeedsUpdate(out, hash.UpdatePolicy{MinRounds: 3, DeprecatedIdents: map[string]bool{}})
	require.NoError(t, err)
	require.True(t, needs)
}
