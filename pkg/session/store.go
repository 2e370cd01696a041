package session

import "context"

// Store defines the interface for session persistence
type Store interface {
	// Save persists a session. It creates a new record or replaces the
	// existing one with the same token.
	Save(ctx context.Context, session *Session) error

	// Get retrieves a session by token. Returns ErrSessionNotFound if
	// no session exists for the token and ErrSessionExpired if the
	// stored session is past its expiry.
	Get(ctx context.Context, token string) (*Session, error)

	// Delete removes a session by token. Deleting a missing session is
	// not an error.
	Delete(ctx context.Context, token string) error

	// DeleteExpired removes all expired sessions.
	DeleteExpired(ctx context.Context) error
}
