package auth

import (
	"context"
	"errors"
	"regexp"
	"time"

	"github.com/rundetips/platform/pkg/totp"
	"github.com/rundetips/platform/pkg/validator"
)

// otpPattern matches a complete login code: exactly six digits.
var otpPattern = regexp.MustCompile(`^\d{6}$`)

// Credentials is the email/code pair submitted for verification.
type Credentials struct {
	Email string
	OTP   string
}

// Validate checks the syntactic shape of the credentials. Failures here
// never touch the store.
func (c Credentials) Validate() error {
	return validator.Apply(
		validator.RequiredWithMessage("email", c.Email, "Keine Email-Adresse angegeben."),
		validator.ValidEmailWithMessage("email", c.Email, "Ungültige Email-Adresse."),
		validator.MatchesWithMessage("otp", c.OTP, otpPattern, "Ein gültiger Code hat genau 6 Ziffern."),
	)
}

// VerifyCredentials resolves an email/code pair to a user.
//
// The account's challenge is cleared before the code is checked, so a
// challenge is consumed by its first verification attempt whatever the
// outcome. A second attempt with the same code fails with
// ErrNoActiveChallenge.
//
// An unknown email resolves to ErrUnauthorized without any store
// mutation; the error deliberately matches no specific cause so the
// endpoint cannot be used to probe which addresses are registered.
//
// The code is checked with a zero verification window: only the current
// time step counts. The challenge expiry, ten steps after issuance,
// defines how long a code lives; widening the window would only blur
// that boundary.
func VerifyCredentials(ctx context.Context, store AccountStore, creds Credentials) (User, error) {
	return VerifyCredentialsWithTime(ctx, store, creds, time.Now())
}

// VerifyCredentialsWithTime is VerifyCredentials evaluated at t.
func VerifyCredentialsWithTime(ctx context.Context, store AccountStore, creds Credentials, t time.Time) (User, error) {
	if err := creds.Validate(); err != nil {
		return User{}, err
	}

	account, err := store.FindByEmail(ctx, creds.Email)
	if errors.Is(err, ErrAccountNotFound) {
		return User{}, ErrUnauthorized
	}
	if err != nil {
		return User{}, err
	}

	// Single use: the challenge is gone after this attempt regardless
	// of how the checks below turn out.
	if err := store.ClearChallenge(ctx, account.ID); err != nil {
		return User{}, err
	}

	if account.Challenge == nil {
		return User{}, ErrNoActiveChallenge
	}
	if account.Challenge.Expired(t) {
		return User{}, ErrChallengeExpired
	}

	ok, err := totp.VerifyWithTime(totp.VerifyParams{
		OTP:       creds.OTP,
		Secret:    account.Challenge.Secret,
		Algorithm: codeAlgorithm,
		Period:    codePeriod,
		Window:    0,
	}, t)
	if err != nil {
		return User{}, errors.Join(ErrInvalidCode, err)
	}
	if !ok {
		return User{}, ErrInvalidCode
	}

	return account.User(), nil
}
