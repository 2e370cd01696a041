package totp

import "errors"

var (
	ErrFailedToGenerateSecretKey = errors.New("failed to generate TOTP secret key")
	ErrUnsupportedAlgorithm      = errors.New("unsupported TOTP algorithm")
	ErrInvalidPeriod             = errors.New("invalid TOTP period")
	ErrInvalidWindow             = errors.New("invalid TOTP verification window")
	ErrInvalidSecret             = errors.New("invalid secret")
	ErrInvalidOTP                = errors.New("invalid OTP format")
)
