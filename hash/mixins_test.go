package hash

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHasRoundsResolveAndValidate(t *testing.T) {
	hr := HasRounds{Min: 1000, Max: 999999, Default: 5000, Cost: RoundsLinear}

	rounds, err := hr.Resolve(nil, nil, 0)
	require.NoError(t, err)
	require.Equal(t, 5000, rounds)

	require.NoError(t, hr.Validate(5000))
	require.Error(t, hr.Validate(1))
}

func TestHasSaltResolveExplicitVsGenerated(t *testing.T) {
	hs := HasSalt{Min: 1, Max: 16, Default: 8, Chars: testH64Alphabet}

	generated, err := hs.Resolve("", 0)
	require.NoError(t, err)
	require.Len(t, generated, 8)

	explicit, err := hs.Resolve("abcdefgh", 0)
	require.NoError(t, err)
	require.Equal(t, "abcdefgh", explicit)

	_, err = hs.Resolve("toolongtoolongtoolong", 0)
	require.Error(t, err)

	_, err = hs.Resolve("", 100)
	require.Error(t, err)
}

func TestHasSaltValidateRejectsBadAlphabet(t *testing.T) {
	hs := HasSalt{Min: 1, Max: 16, Default: 8, Chars: testH64Alphabet}
	require.Error(t, hs.Validate("has spaces"))
}

func TestHasManyIdentsNormalize(t *testing.T) {
	hi := HasManyIdents{Idents: []string{"2a", "2b", "2y"}, Default: "2b"}

	got, err := hi.Normalize("")
	require.NoError(t, err)
	require.Equal(t, "2b", got)

	got, err = hi.Normalize("2y")
	require.NoError(t, err)
	require.Equal(t, "2y", got)

	_, err = hi.Normalize("3z")
	require.Error(t, err)

	require.True(t, hi.Matches("2a"))
	require.False(t, hi.Matches("3z"))
}

func TestHasTruncationCheck(t *testing.T) {
	silent := HasTruncation{Size: 8, Policy: TruncateSilent}
	out, err := silent.Check([]byte("0123456789"))
	require.NoError(t, err)
	require.Equal(t, []byte("01234567"), out)
	require.True(t, silent.Risky(strPtr("0123456789")))
	require.False(t, silent.Risky(strPtr("short")))

	strict := HasTruncation{Size: 8, Policy: TruncateError}
	_, err = strict.Check([]byte("0123456789"))
	require.Error(t, err)

	none := HasTruncation{Size: 8, Policy: TruncateNone}
	out, err = none.Check([]byte("0123456789"))
	require.NoError(t, err)
	require.Equal(t, []byte("0123456789"), out)
}

func strPtr(s string) *string { return &s }
