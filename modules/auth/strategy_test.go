package auth_test

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rundetips/platform/modules/auth"
	"github.com/rundetips/platform/pkg/totp"
	"github.com/rundetips/platform/pkg/validator"
)

// memStore is an in-memory AccountStore with call counters, so tests
// can assert which operations ran.
type memStore struct {
	mu       sync.Mutex
	accounts map[uuid.UUID]*auth.Account

	findCalls   int
	attachCalls int
	clearCalls  int
}

func newMemStore(accounts ...*auth.Account) *memStore {
	s := &memStore{accounts: make(map[uuid.UUID]*auth.Account)}
	for _, a := range accounts {
		cp := *a
		s.accounts[a.ID] = &cp
	}
	return s
}

func (s *memStore) FindByEmail(_ context.Context, email string) (*auth.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.findCalls++

	var found []*auth.Account
	for _, a := range s.accounts {
		if a.Email == email {
			found = append(found, a)
		}
	}
	if len(found) != 1 {
		return nil, auth.ErrAccountNotFound
	}

	cp := *found[0]
	if found[0].Challenge != nil {
		ch := *found[0].Challenge
		cp.Challenge = &ch
	}
	return &cp, nil
}

func (s *memStore) AttachChallenge(_ context.Context, accountID uuid.UUID, challenge auth.Challenge) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.attachCalls++

	account, ok := s.accounts[accountID]
	if !ok {
		return auth.ErrAccountNotFound
	}
	account.Challenge = &challenge
	return nil
}

func (s *memStore) ClearChallenge(_ context.Context, accountID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clearCalls++

	account, ok := s.accounts[accountID]
	if !ok {
		return auth.ErrAccountNotFound
	}
	account.Challenge = nil
	return nil
}

func (s *memStore) challenge(accountID uuid.UUID) *auth.Challenge {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.accounts[accountID].Challenge
}

func testAccount() *auth.Account {
	return &auth.Account{
		ID:    uuid.New(),
		Name:  "Erika Musterfrau",
		Email: "erika@example.com",
		Role:  auth.RoleUser,
	}
}

// challengeFor attaches a fresh challenge to the account and returns
// the code valid at the given time.
func challengeFor(t *testing.T, account *auth.Account, at time.Time) string {
	t.Helper()

	code, err := totp.GenerateWithTime(totp.GenerateParams{
		Algorithm: totp.AlgorithmSHA256,
		Period:    300,
	}, at)
	require.NoError(t, err)

	account.Challenge = &auth.Challenge{
		Secret:    code.Secret,
		ExpiresAt: at.Add(300 * time.Second),
	}
	return code.OTP
}

func TestVerifyCredentials_Success(t *testing.T) {
	t.Parallel()

	now := time.Unix(1700000000, 0)
	account := testAccount()
	otp := challengeFor(t, account, now)
	store := newMemStore(account)

	user, err := auth.VerifyCredentialsWithTime(context.Background(), store, auth.Credentials{
		Email: account.Email,
		OTP:   otp,
	}, now)
	require.NoError(t, err)

	assert.Equal(t, account.ID, user.ID)
	assert.Equal(t, account.Name, user.Name)
	assert.Equal(t, account.Email, user.Email)
	assert.Equal(t, auth.RoleUser, user.Role)
	assert.Nil(t, store.challenge(account.ID), "challenge must be consumed")
}

func TestVerifyCredentials_SingleUse(t *testing.T) {
	t.Parallel()

	now := time.Unix(1700000000, 0)
	account := testAccount()
	otp := challengeFor(t, account, now)
	store := newMemStore(account)

	creds := auth.Credentials{Email: account.Email, OTP: otp}

	_, err := auth.VerifyCredentialsWithTime(context.Background(), store, creds, now)
	require.NoError(t, err)

	// Same valid code again: the challenge is already consumed.
	_, err = auth.VerifyCredentialsWithTime(context.Background(), store, creds, now)
	assert.ErrorIs(t, err, auth.ErrNoActiveChallenge)
}

func TestVerifyCredentials_WrongCodeConsumesChallenge(t *testing.T) {
	t.Parallel()

	now := time.Unix(1700000000, 0)
	account := testAccount()
	otp := challengeFor(t, account, now)
	store := newMemStore(account)

	wrong := "000000"
	if wrong == otp {
		wrong = "000001"
	}

	_, err := auth.VerifyCredentialsWithTime(context.Background(), store, auth.Credentials{
		Email: account.Email,
		OTP:   wrong,
	}, now)
	assert.ErrorIs(t, err, auth.ErrInvalidCode)
	assert.Nil(t, store.challenge(account.ID), "failed attempt must consume the challenge")

	// The correct code is dead now too.
	_, err = auth.VerifyCredentialsWithTime(context.Background(), store, auth.Credentials{
		Email: account.Email,
		OTP:   otp,
	}, now)
	assert.ErrorIs(t, err, auth.ErrNoActiveChallenge)
}

func TestVerifyCredentials_Expired(t *testing.T) {
	t.Parallel()

	now := time.Unix(1700000000, 0)
	account := testAccount()
	otp := challengeFor(t, account, now)
	account.Challenge.ExpiresAt = now.Add(-time.Second)
	store := newMemStore(account)

	_, err := auth.VerifyCredentialsWithTime(context.Background(), store, auth.Credentials{
		Email: account.Email,
		OTP:   otp,
	}, now)
	assert.ErrorIs(t, err, auth.ErrChallengeExpired)
	assert.Nil(t, store.challenge(account.ID))
}

func TestVerifyCredentials_ZeroWindow(t *testing.T) {
	t.Parallel()

	issued := time.Unix(1700000000, 0)
	account := testAccount()
	otp := challengeFor(t, account, issued)
	// Challenge still open, but the clock moved past the code's step.
	account.Challenge.ExpiresAt = issued.Add(600 * time.Second)
	store := newMemStore(account)

	_, err := auth.VerifyCredentialsWithTime(context.Background(), store, auth.Credentials{
		Email: account.Email,
		OTP:   otp,
	}, issued.Add(300*time.Second))
	assert.ErrorIs(t, err, auth.ErrInvalidCode)
}

func TestVerifyCredentials_NoChallenge(t *testing.T) {
	t.Parallel()

	account := testAccount()
	store := newMemStore(account)

	_, err := auth.VerifyCredentials(context.Background(), store, auth.Credentials{
		Email: account.Email,
		OTP:   "123456",
	})
	assert.ErrorIs(t, err, auth.ErrNoActiveChallenge)
}

func TestVerifyCredentials_UnknownEmail(t *testing.T) {
	t.Parallel()

	store := newMemStore()

	_, err := auth.VerifyCredentials(context.Background(), store, auth.Credentials{
		Email: "nobody@example.com",
		OTP:   "123456",
	})
	assert.ErrorIs(t, err, auth.ErrUnauthorized)
	assert.Zero(t, store.attachCalls)
	assert.Zero(t, store.clearCalls, "unknown email must not mutate anything")
}

func TestVerifyCredentials_MalformedInput(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		creds auth.Credentials
		field string
	}{
		{"missing email", auth.Credentials{OTP: "123456"}, "email"},
		{"invalid email", auth.Credentials{Email: "not-an-address", OTP: "123456"}, "email"},
		{"otp too short", auth.Credentials{Email: "erika@example.com", OTP: "12345"}, "otp"},
		{"otp with letters", auth.Credentials{Email: "erika@example.com", OTP: "12a456"}, "otp"},
		{"otp empty", auth.Credentials{Email: "erika@example.com"}, "otp"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			store := newMemStore()
			_, err := auth.VerifyCredentials(context.Background(), store, tt.creds)
			require.Error(t, err)

			verrs := validator.ExtractValidationErrors(err)
			require.NotEmpty(t, verrs)
			assert.True(t, verrs.Has(tt.field))
			assert.Zero(t, store.findCalls, "malformed input must not reach the store")
		})
	}
}

func TestVerifyCredentials_DuplicateEmail(t *testing.T) {
	t.Parallel()

	a := testAccount()
	b := testAccount()
	b.Email = a.Email
	store := newMemStore(a, b)

	_, err := auth.VerifyCredentials(context.Background(), store, auth.Credentials{
		Email: a.Email,
		OTP:   "123456",
	})
	assert.ErrorIs(t, err, auth.ErrUnauthorized)
}

func TestChallenge_Expired(t *testing.T) {
	t.Parallel()

	now := time.Now()
	ch := auth.Challenge{Secret: "SECRET", ExpiresAt: now}
	assert.False(t, ch.Expired(now))
	assert.True(t, ch.Expired(now.Add(time.Millisecond)))
}

func TestRole_Valid(t *testing.T) {
	t.Parallel()

	assert.True(t, auth.RoleAdmin.Valid())
	assert.True(t, auth.RoleUser.Valid())
	assert.False(t, auth.Role("").Valid())
	assert.False(t, auth.Role(strings.ToLower(string(auth.RoleAdmin))).Valid())
}
