package auth

import (
	"context"

	"github.com/google/uuid"
)

// AccountStore defines the persistence operations the login flow needs.
type AccountStore interface {
	// FindByEmail returns the account whose email exactly matches the
	// given address. Returns ErrAccountNotFound unless exactly one
	// account matches.
	FindByEmail(ctx context.Context, email string) (*Account, error)

	// AttachChallenge stores a challenge on the account, replacing any
	// open one.
	AttachChallenge(ctx context.Context, accountID uuid.UUID, challenge Challenge) error

	// ClearChallenge removes the account's challenge. Clearing an
	// account without a challenge is a no-op.
	ClearChallenge(ctx context.Context, accountID uuid.UUID) error
}
