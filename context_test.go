package passlib_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	passlib "github.com/notypecheck/passlib"
	_ "github.com/notypecheck/passlib/schemes/md5crypt"
	_ "github.com/notypecheck/passlib/schemes/sha256crypt"
)

func TestContextUpgradesDeprecatedSchemeOnVerifyAndUpdate(t *testing.T) {
	ctx, err := passlib.NewContext(passlib.PolicyMap{
		"schemes":    "[sha256_crypt, md5_crypt]",
		"default":    "sha256_crypt",
		"deprecated": "[md5_crypt]",
	})
	require.NoError(t, err)

	oldHash, err := ctx.Hash("correct horse battery staple", passlib.WithScheme("md5_crypt"))
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(oldHash, "$1$"))

	needs, err := ctx.NeedsUpdate(oldHash)
	require.NoError(t, err)
	require.True(t, needs, "md5_crypt is deprecated, so it should need an update")

	ok, newHash, err := ctx.VerifyAndUpdate("correct horse battery staple", oldHash)
	require.NoError(t, err)
	require.True(t, ok)
	require.NotEmpty(t, newHash)
	require.True(t, strings.HasPrefix(newHash, "$5$"), "upgraded hash should be sha256_crypt, got %q", newHash)

	ok, err = ctx.Verify("correct horse battery staple", newHash)
	require.NoError(t, err)
	require.True(t, ok)
}

func TestContextVerifyAndUpdateLeavesCurrentSchemeAlone(t *testing.T) {
	ctx, err := passlib.NewContext(passlib.PolicyMap{
		"schemes":    "[sha256_crypt, md5_crypt]",
		"default":    "sha256_crypt",
		"deprecated": "[md5_crypt]",
	})
	require.NoError(t, err)

	h, err := ctx.Hash("correct horse battery staple")
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(h, "$5$"))

	ok, newHash, err := ctx.VerifyAndUpdate("correct horse battery staple", h)
	require.NoError(t, err)
	require.True(t, ok)
	require.Empty(t, newHash, "already-current scheme should not trigger a rehash")
}

func TestContextCategoryOverridesRoundsIndependently(t *testing.T) {
	ctx, err := passlib.NewContext(passlib.PolicyMap{
		"schemes":                "[sha256_crypt]",
		"default":                "sha256_crypt",
		"sha256_crypt.rounds":    "29000",
		"admin__sha256_crypt.rounds": "40000",
	})
	require.NoError(t, err)

	globalHash, err := ctx.Hash("hunter2")
	require.NoError(t, err)
	require.Contains(t, globalHash, "rounds=29000")

	adminHash, err := ctx.Hash("hunter2", passlib.WithCategory("admin"))
	require.NoError(t, err)
	require.Contains(t, adminHash, "rounds=40000")

	ok, err := ctx.Verify("hunter2", globalHash)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = ctx.Verify("hunter2", adminHash)
	require.NoError(t, err)
	require.True(t, ok)
}

func TestContextCallSiteSettingOverridesCategoryAndGlobal(t *testing.T) {
	ctx, err := passlib.NewContext(passlib.PolicyMap{
		"schemes":                    "[sha256_crypt]",
		"default":                    "sha256_crypt",
		"sha256_crypt.rounds":        "29000",
		"admin__sha256_crypt.rounds": "40000",
	})
	require.NoError(t, err)

	out, err := ctx.Hash("hunter2", passlib.WithCategory("admin"), passlib.WithSetting("rounds", 50000))
	require.NoError(t, err)
	require.Contains(t, out, "rounds=50000")
}

func TestContextVerifyUnknownHashReturnsUnknownHashError(t *testing.T) {
	ctx, err := passlib.NewContext(passlib.PolicyMap{
		"schemes": "[sha256_crypt]",
		"default": "sha256_crypt",
	})
	require.NoError(t, err)

	_, err = ctx.Verify("whatever", "not-a-recognized-hash-format")
	require.Error(t, err)
	var unknown *passlib.UnknownHashError
	require.ErrorAs(t, err, &unknown)
}

func TestContextHardenVerifyStillReportsUnknownHashError(t *testing.T) {
	ctx, err := passlib.NewContext(passlib.PolicyMap{
		"schemes":       "[sha256_crypt]",
		"default":       "sha256_crypt",
		"harden_verify": "true",
	})
	require.NoError(t, err)

	ok, err := ctx.Verify("whatever", "garbage")
	require.Error(t, err)
	require.False(t, ok)
}

func TestContextRejectsUnregisteredScheme(t *testing.T) {
	_, err := passlib.NewContext(passlib.PolicyMap{
		"schemes": "[does_not_exist]",
	})
	require.Error(t, err)
	var cfgErr *passlib.ConfigError
	require.ErrorAs(t, err, &cfgErr)
}

func TestContextRejectsOutOfRangeOverride(t *testing.T) {
	_, err := passlib.NewContext(passlib.PolicyMap{
		"schemes":             "[sha256_crypt]",
		"sha256_crypt.rounds": "1",
	})
	require.Error(t, err)
}

func TestContextIdentifyPicksFirstMatchingSchemeInPolicyOrder(t *testing.T) {
	ctx, err := passlib.NewContext(passlib.PolicyMap{
		"schemes": "[sha256_crypt, md5_crypt]",
		"default": "sha256_crypt",
	})
	require.NoError(t, err)

	md5Hash, err := ctx.Hash("hunter2", passlib.WithScheme("md5_crypt"))
	require.NoError(t, err)

	name, ok := ctx.Identify(md5Hash)
	require.True(t, ok)
	require.Equal(t, "md5_crypt", name)

	_, ok = ctx.Identify("not a hash at all")
	require.False(t, ok)
}

func TestContextUpdateReturnsIndependentCopy(t *testing.T) {
	base, err := passlib.NewContext(passlib.PolicyMap{
		"schemes": "[sha256_crypt]",
		"default": "sha256_crypt",
	})
	require.NoError(t, err)

	updated, err := base.Update(passlib.PolicyMap{"sha256_crypt.rounds": "12000"})
	require.NoError(t, err)

	baseHash, err := base.Hash("hunter2")
	require.NoError(t, err)
	updatedHash, err := updated.Hash("hunter2")
	require.NoError(t, err)

	require.NotContains(t, baseHash, "rounds=12000")
	require.Contains(t, updatedHash, "rounds=12000")
}
