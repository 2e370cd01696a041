package auth

import "errors"

var (
	// ErrAccountNotFound indicates no unique account matched the email.
	// Handlers must not reveal whether the address exists.
	ErrAccountNotFound = errors.New("auth.account_not_found")

	// ErrUnauthorized is the generic credential failure. It deliberately
	// carries no detail about which part of the credentials was wrong.
	ErrUnauthorized = errors.New("auth.unauthorized")

	// ErrNoActiveChallenge indicates a code was submitted without a
	// preceding code request, or the challenge was already consumed.
	ErrNoActiveChallenge = errors.New("auth.no_active_challenge")

	// ErrChallengeExpired indicates the challenge outlived its expiry.
	ErrChallengeExpired = errors.New("auth.challenge_expired")

	// ErrInvalidCode indicates the submitted code did not verify.
	ErrInvalidCode = errors.New("auth.invalid_code")

	// ErrDeliveryFailed indicates the login email could not be sent.
	// The attached challenge stays usable.
	ErrDeliveryFailed = errors.New("auth.delivery_failed")
)
