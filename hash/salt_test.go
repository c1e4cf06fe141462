package hash

import (
	"testing"

	"github.com/stretchr/testify/require"
)

const testH64Alphabet = "./0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"

func TestGenerateSaltBase64FastPath(t *testing.T) {
	salt, err := GenerateSalt(16, testH64Alphabet)
	require.NoError(t, err)
	require.Len(t, salt, 16)
	for _, c := range salt {
		require.Contains(t, testH64Alphabet, string(c))
	}
}

func TestGenerateSaltRejectionSamplingPath(t *testing.T) {
	const oddAlphabet = "abcdefghijklmnopqrstuvwxyz" // 26 symbols, not 64
	salt, err := GenerateSalt(12, oddAlphabet)
	require.NoError(t, err)
	require.Len(t, salt, 12)
	for _, c := range salt {
		require.Contains(t, oddAlphabet, string(c))
	}
}

func TestGenerateSaltRejectsNonPositiveSize(t *testing.T) {
	_, err := GenerateSalt(0, testH64Alphabet)
	require.Error(t, err)
}

func TestGenerateSaltIsNotConstant(t *testing.T) {
	a, err := GenerateSalt(16, testH64Alphabet)
	require.NoError(t, err)
	b, err := GenerateSalt(16, testH64Alphabet)
	require.NoError(t, err)
	require.NotEqual(t, a, b)
}

func TestRandomBytesLength(t *testing.T) {
	b, err := RandomBytes(20)
	require.NoError(t, err)
	require.Len(t, b, 20)
}
