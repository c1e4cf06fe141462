package plaintext

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/notypecheck/passlib/hash"
)

func TestPlaintextRoundTrip(t *testing.T) {
	h, err := newHasher()
	require.NoError(t, err)

	out, err := h.Hash("secret", nil)
	require.NoError(t, err)
	require.Equal(t, "secret", out)

	ok, err := h.Verify("secret", out, nil)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = h.Verify("wrong", out, nil)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestPlaintextIdentifiesAnything(t *testing.T) {
	h, err := newHasher()
	require.NoError(t, err)
	require.True(t, h.Identify(""))
	require.True(t, h.Identify("$2b$12$anything"))
}

func TestPlaintextAlwaysNeedsUpdateWhenAnythingDeprecated(t *testing.T) {
	h, err := newHasher()
	require.NoError(t, err)

	needs, err := h.NeedsUpdate("secret", hash.UpdatePolicy{})
	require.NoError(t, err)
	require.False(t, needs)

	needs, err = h.NeedsUpdate("secret", hash.UpdatePolicy{DeprecatedIdents: map[string]bool{"md5_crypt": true}})
	require.NoError(t, err)
	require.True(t, needs)
}
