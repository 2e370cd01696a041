// Package totp implements time-based one-time passwords (RFC 6238) on top of
// the RFC 4226 HOTP algorithm.
//
// The package is pure: it performs no I/O and holds no state. Codes are
// fixed-length decimal strings, zero-padded to six digits. Generation and
// verification share the same algorithm and period parameters; verification
// additionally takes a window of adjacent time steps tolerated for clock
// drift. A window of 0 accepts the current step only, which is the strictest
// policy and the one the login flow uses, since code lifetime is already
// bounded by an explicit expiry timestamp on the account record.
//
// # Usage
//
//	code, err := totp.Generate(totp.GenerateParams{
//		Algorithm: totp.AlgorithmSHA256,
//		Period:    300,
//	})
//	// deliver code.OTP, persist code.Secret
//
//	ok, err := totp.Verify(totp.VerifyParams{
//		OTP:       submitted,
//		Secret:    code.Secret,
//		Algorithm: totp.AlgorithmSHA256,
//		Period:    300,
//		Window:    0,
//	})
//
// All failure modes are sentinel errors (ErrUnsupportedAlgorithm,
// ErrInvalidPeriod, ErrInvalidSecret, ErrInvalidOTP) suitable for errors.Is.
package totp
