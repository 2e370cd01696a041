// Package auth implements passwordless login with one-time codes sent
// by email.
//
// The flow has two phases over the same form. First the user requests a
// code for their registered address: a time-based one-time password is
// derived from a fresh secret, the secret and its expiry are attached
// to the account as an open challenge, and the code goes out by email
// together with a deep link back into the form. Then the user submits
// code and address for verification.
//
// A challenge is single use. Verification consumes it before the code
// is checked, so a failed attempt requires requesting a new code.
// Verification accepts only the current time step; the challenge expiry
// bounds how long a code lives.
//
// The package wires together an AccountStore (MongoDB implementation
// included), the LoginCodeService for issuing codes, the plain
// VerifyCredentials function for checking them, and an HTTP Service
// exposing login, logout and current-user endpoints.
package auth
