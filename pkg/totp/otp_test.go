package totp_test

import (
	"testing"
	"time"

	"github.com/rundetips/platform/pkg/totp"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateSecretKey(t *testing.T) {
	t.Parallel()
	secret, err := totp.GenerateSecretKey()
	require.NoError(t, err)
	assert.NotEmpty(t, secret)
	assert.Regexp(t, totp.ValidateSecretKeyRegex, secret)

	other, err := totp.GenerateSecretKey()
	require.NoError(t, err)
	assert.NotEqual(t, secret, other)
}

func TestGenerate(t *testing.T) {
	t.Parallel()

	t.Run("derives fresh secret when none given", func(t *testing.T) {
		t.Parallel()
		code, err := totp.Generate(totp.GenerateParams{Algorithm: totp.AlgorithmSHA256, Period: 300})
		require.NoError(t, err)
		assert.Regexp(t, `^\d{6}$`, code.OTP)
		assert.Regexp(t, totp.ValidateSecretKeyRegex, code.Secret)
		assert.Equal(t, 300, code.Period)
	})

	t.Run("reuses provided secret", func(t *testing.T) {
		t.Parallel()
		secret, err := totp.GenerateSecretKey()
		require.NoError(t, err)

		code, err := totp.Generate(totp.GenerateParams{Secret: secret, Algorithm: totp.AlgorithmSHA1, Period: 30})
		require.NoError(t, err)
		assert.Equal(t, secret, code.Secret)
	})

	tests := []struct {
		name    string
		params  totp.GenerateParams
		wantErr error
	}{
		{
			name:    "unsupported algorithm",
			params:  totp.GenerateParams{Algorithm: "MD5", Period: 30},
			wantErr: totp.ErrUnsupportedAlgorithm,
		},
		{
			name:    "zero period",
			params:  totp.GenerateParams{Algorithm: totp.AlgorithmSHA256, Period: 0},
			wantErr: totp.ErrInvalidPeriod,
		},
		{
			name:    "invalid secret",
			params:  totp.GenerateParams{Secret: "not-base32!", Algorithm: totp.AlgorithmSHA256, Period: 30},
			wantErr: totp.ErrInvalidSecret,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := totp.Generate(tt.params)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestVerify(t *testing.T) {
	t.Parallel()

	secret, err := totp.GenerateSecretKey()
	require.NoError(t, err)

	now := time.Unix(1700000000, 0)
	gen := totp.GenerateParams{Secret: secret, Algorithm: totp.AlgorithmSHA256, Period: 300}
	code, err := totp.GenerateWithTime(gen, now)
	require.NoError(t, err)

	verify := func(otp string, window int, at time.Time) (bool, error) {
		return totp.VerifyWithTime(totp.VerifyParams{
			OTP:       otp,
			Secret:    secret,
			Algorithm: totp.AlgorithmSHA256,
			Period:    300,
			Window:    window,
		}, at)
	}

	t.Run("matches within current step", func(t *testing.T) {
		t.Parallel()
		ok, err := verify(code.OTP, 0, now)
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("rejects one full step later with window 0", func(t *testing.T) {
		t.Parallel()
		ok, err := verify(code.OTP, 0, now.Add(300*time.Second))
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("accepts adjacent step with window 1", func(t *testing.T) {
		t.Parallel()
		ok, err := verify(code.OTP, 1, now.Add(300*time.Second))
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("rejects wrong code", func(t *testing.T) {
		t.Parallel()
		wrong := "000000"
		if wrong == code.OTP {
			wrong = "000001"
		}
		ok, err := verify(wrong, 1, now)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	tests := []struct {
		name    string
		params  totp.VerifyParams
		wantErr error
	}{
		{
			name:    "malformed otp",
			params:  totp.VerifyParams{OTP: "12a45", Secret: secret, Algorithm: totp.AlgorithmSHA256, Period: 300},
			wantErr: totp.ErrInvalidOTP,
		},
		{
			name:    "otp too short",
			params:  totp.VerifyParams{OTP: "12345", Secret: secret, Algorithm: totp.AlgorithmSHA256, Period: 300},
			wantErr: totp.ErrInvalidOTP,
		},
		{
			name:    "invalid secret",
			params:  totp.VerifyParams{OTP: "123456", Secret: "invalid-base32!", Algorithm: totp.AlgorithmSHA256, Period: 300},
			wantErr: totp.ErrInvalidSecret,
		},
		{
			name:    "unsupported algorithm",
			params:  totp.VerifyParams{OTP: "123456", Secret: secret, Algorithm: "SHA3", Period: 300},
			wantErr: totp.ErrUnsupportedAlgorithm,
		},
		{
			name:    "negative window",
			params:  totp.VerifyParams{OTP: "123456", Secret: secret, Algorithm: totp.AlgorithmSHA256, Period: 300, Window: -1},
			wantErr: totp.ErrInvalidWindow,
		},
		{
			name:    "zero period",
			params:  totp.VerifyParams{OTP: "123456", Secret: secret, Algorithm: totp.AlgorithmSHA256, Period: 0},
			wantErr: totp.ErrInvalidPeriod,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := totp.Verify(tt.params)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestVerify_AlgorithmMismatch(t *testing.T) {
	t.Parallel()

	secret, err := totp.GenerateSecretKey()
	require.NoError(t, err)

	now := time.Unix(1700000000, 0)
	code, err := totp.GenerateWithTime(totp.GenerateParams{Secret: secret, Algorithm: totp.AlgorithmSHA256, Period: 300}, now)
	require.NoError(t, err)

	ok, err := totp.VerifyWithTime(totp.VerifyParams{
		OTP:       code.OTP,
		Secret:    secret,
		Algorithm: totp.AlgorithmSHA1,
		Period:    300,
		Window:    1,
	}, now)
	require.NoError(t, err)
	assert.False(t, ok)
}
