package ldap

import (
	"crypto/md5"
	"crypto/sha1"
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/require"

	phash "github.com/notypecheck/passlib/hash"
)

func TestLdapMD5MatchesDirectComputation(t *testing.T) {
	h, err := newHasher(variant{scheme: "ldap_md5", prefix: "{MD5}", newHash: md5.New, dsize: 16})()
	require.NoError(t, err)

	out, err := h.Hash("secret", phash.Settings{})
	require.NoError(t, err)

	sum := md5.Sum([]byte("secret"))
	want := "{MD5}" + base64.StdEncoding.EncodeToString(sum[:])
	require.Equal(t, want, out)

	ok, err := h.Verify("secret", out, nil)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = h.Verify("wrong", out, nil)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestLdapSHA1MatchesDirectComputation(t *testing.T) {
	h, err := newHasher(variant{scheme: "ldap_sha1", prefix: "{SHA}", newHash: sha1.New, dsize: 20})()
	require.NoError(t, err)

	out, err := h.Hash("secret", phash.Settings{})
	require.NoError(t, err)

	sum := sha1.Sum([]byte("secret"))
	want := "{SHA}" + base64.StdEncoding.EncodeToString(sum[:])
	require.Equal(t, want, out)
}

func TestLdapSaltedSHA1RoundTrip(t *testing.T) {
	h, err := newHasher(variant{scheme: "ldap_salted_sha1", prefix: "{SSHA}", newHash: sha1.New, dsize: 20, salted: true})()
	require.NoError(t, err)

	out, err := h.Hash("secret", phash.Settings{"salt_size": 8})
	require.NoError(t, err)
	require.True(t, h.Identify(out))

	ok, err := h.Verify("secret", out, nil)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = h.Verify("wrong", out, nil)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestLdapCryptRoundTrip(t *testing.T) {
	h, err := newCryptHasher()
	require.NoError(t, err)

	out, err := h.Hash("secret", phash.Settings{})
	require.NoError(t, err)
	require.True(t, h.Identify(out))
	require.Equal(t, "{CRYPT}$1$", out[:len("{CRYPT}$1$")])

	ok, err := h.Verify("secret", out, nil)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = h.Verify("wrong", out, nil)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestLdapCryptGenConfigThenGenHash(t *testing.T) {
	h, err := newCryptHasher()
	require.NoError(t, err)

	config, err := h.GenConfig(phash.Settings{})
	require.NoError(t, err)
	require.True(t, h.Identify(config))

	out, err := h.GenHash("secret", config)
	require.NoError(t, err)
	ok, err := h.Verify("secret", out, nil)
	require.NoError(t, err)
	require.True(t, ok)
}

func TestLdapCryptRejectsMissingPrefix(t *testing.T) {
	h, err := newCryptHasher()
	require.NoError(t, err)
	require.False(t, h.Identify("$1$abcdefgh$checksumchecksumchecksumAB"))
	require.False(t, h.Identify("not a hash"))
}

func TestLdapRejectsMalformed(t *testing.T) {
	h, err := newHasher(variant{scheme: "ldap_sha1", prefix: "{SHA}", newHash: sha1.New, dsize: 20})()
	require.NoError(t, err)
	require.False(t, h.Identify("{MD5}Xxx=="))
	require.False(t, h.Identify("not a hash"))
}
