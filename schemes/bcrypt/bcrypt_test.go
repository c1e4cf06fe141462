package bcrypt

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/notypecheck/passlib/hash"
)

func TestBcryptLiteralVector(t *testing.T) {
	h, err := newHasher()
	require.NoError(t, err)

	config := "$2b$05$CCCCCCCCCCCCCCCCCCCCC." + strings.Repeat(".", 31)
	out, err := h.GenHash("", config)
	require.NoError(t, err)
	require.Equal(t, "$2b$05$CCCCCCCCCCCCCCCCCCCCC.7uG0VCzI2bS7j6ymqJi9CdcdxiRTWNy", out)
}

func TestBcryptRoundTrip(t *testing.T) {
	h, err := newHasher()
	require.NoError(t, err)

	out, err := h.Hash("correct horse battery staple", hash.Settings{"rounds": 4})
	require.NoError(t, err)
	require.True(t, h.Identify(out))

	ok, err := h.Verify("correct horse battery staple", out, nil)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = h.Verify("wrong password", out, nil)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestBcryptGenConfigGenHashParity(t *testing.T) {
	h, err := newHasher()
	require.NoError(t, err)

	config, err := h.GenConfig(hash.Settings{"rounds": 4})
	require.NoError(t, err)

	full, err := h.GenHash("shared secret", config)
	require.NoError(t, err)

	ok, err := h.Verify("shared secret", full, nil)
	require.NoError(t, err)
	require.True(t, ok)
}

func TestBcryptRejectsNUL(t *testing.T) {
	h, err := newHasher()
	require.NoError(t, err)

	_, err = h.Hash("bad\x00secret", hash.Settings{"rounds": 4})
	require.Error(t, err)
	var valueErr *hash.PasswordValueError
	require.ErrorAs(t, err, &valueErr)
}

func TestBcryptIdentifyRejectsGarbage(t *testing.T) {
	h, err := newHasher()
	require.NoError(t, err)
	require.False(t, h.Identify("not a bcrypt hash"))
	require.False(t, h.Identify("$2b$05$tooshort"))
}

func TestBcrypt2aAlwaysNeedsUpdate(t *testing.T) {
	h, err := newHasher()
	require.NoError(t, err)

	config := "$2a$04$CCCCCCCCCCCCCCCCCCCCCO" + strings.Repeat(".", 31)
	full, err := h.GenHash("password", config)
	require.NoError(t, err)

	needs, err := h.NeedsUpdate(full, hash.UpdatePolicy{MinRounds: 4, DeprecatedIdents: map[string]bool{}})
	require.NoError(t, err)
	require.True(t, needs)
}

func TestBcryptTruncatesSilentlyByDefault(t *testing.T) {
	h, err := newHasher()
	require.NoError(t, err)

	long := strings.Repeat("a", 80)
	truncated := strings.Repeat("a", 72)

	out, err := h.Hash(long, hash.Settings{"rounds": 4})
	require.NoError(t, err)

	ok, err := h.Verify(truncated, out, nil)
	require.NoError(t, err)
	require.True(t, ok, "secrets sharing the first 72 bytes must verify identically")
}
