package passlib

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestTOTPVerifyRFCVectorsSHA1(t *testing.T) {
	totp := NewTOTP(TOTPConfig{Issuer: "passlib", Digits: 8, Period: 30, Algorithm: "SHA1"})
	secret := []byte("12345678901234567890")
	cases := []struct {
		ts   int64
		code string
	}{
		{59, "94287082"},
		{1111111109, "07081804"},
		{1111111111, "14050471"},
		{1234567890, "89005924"},
		{2000000000, "69279037"},
		{20000000000, "65353130"},
	}
	for _, tc := range cases {
		ok, _, err := totp.VerifyCode(secret, tc.code, time.Unix(tc.ts, 0))
		require.NoError(t, err)
		require.True(t, ok, "t=%d", tc.ts)
	}
}

func TestTOTPVerifyRFCVectorsSHA256(t *testing.T) {
	totp := NewTOTP(TOTPConfig{Issuer: "passlib", Digits: 8, Period: 30, Algorithm: "SHA256"})
	secret := []byte("12345678901234567890123456789012")
	cases := []struct {
		ts   int64
		code string
	}{
		{59, "46119246"},
		{1111111109, "68084774"},
		{1111111111, "67062674"},
		{1234567890, "91819424"},
		{2000000000, "90698825"},
		{20000000000, "77737706"},
	}
	for _, tc := range cases {
		ok, _, err := totp.VerifyCode(secret, tc.code, time.Unix(tc.ts, 0))
		require.NoError(t, err)
		require.True(t, ok, "t=%d", tc.ts)
	}
}

func TestTOTPVerifyRFCVectorsSHA512(t *testing.T) {
	totp := NewTOTP(TOTPConfig{Issuer: "passlib", Digits: 8, Period: 30, Algorithm: "SHA512"})
	secret := []byte("1234567890123456789012345678901234567890123456789012345678901234")
	cases := []struct {
		ts   int64
		code string
	}{
		{59, "90693936"},
		{1111111109, "25091201"},
		{1111111111, "99943326"},
		{1234567890, "93441116"},
		{2000000000, "38618901"},
		{20000000000, "47863826"},
	}
	for _, tc := range cases {
		ok, _, err := totp.VerifyCode(secret, tc.code, time.Unix(tc.ts, 0))
		require.NoError(t, err)
		require.True(t, ok, "t=%d", tc.ts)
	}
}

func TestTOTPDriftWindowAcceptsAdjacentStep(t *testing.T) {
	totp := NewTOTP(TOTPConfig{Issuer: "passlib", Digits: 6, Period: 30, Algorithm: "SHA1", Skew: 1})
	secret := []byte("12345678901234567890")
	now := time.Unix(1234567890, 0)
	prevCounter := (now.Unix() / 30) - 1
	code, err := hotpCode(secret, prevCounter, 6, "SHA1")
	require.NoError(t, err)

	ok, counter, err := totp.VerifyCode(secret, code, now)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, prevCounter, counter)
}

func TestTOTPWrongDigitsRejected(t *testing.T) {
	totp := NewTOTP(TOTPConfig{Issuer: "passlib", Digits: 6, Period: 30, Algorithm: "SHA1", Skew: 1})
	secret := []byte("12345678901234567890")
	ok, _, err := totp.VerifyCode(secret, "12345678", time.Now())
	require.NoError(t, err)
	require.False(t, ok)
}

func TestTOTPRejectsEmptySecret(t *testing.T) {
	totp := NewTOTP(TOTPConfig{})
	_, _, err := totp.VerifyCode(nil, "123456", time.Now())
	require.ErrorIs(t, err, ErrTOTPEmptySecret)
}

func TestTOTPGenerateSecretRoundTrip(t *testing.T) {
	totp := NewTOTP(TOTPConfig{Issuer: "passlib", Period: 30, Digits: 6})
	raw, b32, err := totp.GenerateSecret()
	require.NoError(t, err)
	require.Len(t, raw, totpSecretBytes)
	require.NotEmpty(t, b32)

	code, err := totp.CurrentCode(raw, time.Now())
	require.NoError(t, err)

	ok, _, err := totp.VerifyCode(raw, code, time.Now())
	require.NoError(t, err)
	require.True(t, ok)
}

func TestTOTPProvisionURIContainsAccountAndIssuer(t *testing.T) {
	totp := NewTOTP(TOTPConfig{Issuer: "passlib", Period: 30, Digits: 6, Algorithm: "SHA1"})
	uri := totp.ProvisionURI("JBSWY3DPEHPK3PXP", "alice@example.com")
	require.Contains(t, uri, "otpauth://totp/")
	require.Contains(t, uri, "secret=JBSWY3DPEHPK3PXP")
	require.Contains(t, uri, "issuer=passlib")
}

func TestTOTPUnsupportedAlgorithmRejected(t *testing.T) {
	totp := NewTOTP(TOTPConfig{Algorithm: "MD5", Period: 30, Digits: 6})
	_, _, err := totp.VerifyCode([]byte("12345678901234567890"), "123456", time.Now())
	require.ErrorIs(t, err, ErrTOTPUnsupportedAlgorithm)
}
