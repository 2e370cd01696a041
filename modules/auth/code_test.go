package auth_test

import (
	"context"
	"regexp"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rundetips/platform/modules/auth"
	"github.com/rundetips/platform/pkg/email"
)

// captureSender records outgoing mails and optionally fails after
// recording, imitating a provider outage.
type captureSender struct {
	mu   sync.Mutex
	sent []email.SendEmailParams
	fail error
}

func (c *captureSender) SendEmail(_ context.Context, params email.SendEmailParams) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sent = append(c.sent, params)
	return c.fail
}

func (c *captureSender) last(t *testing.T) email.SendEmailParams {
	t.Helper()
	c.mu.Lock()
	defer c.mu.Unlock()
	require.NotEmpty(t, c.sent)
	return c.sent[len(c.sent)-1]
}

var codeInBody = regexp.MustCompile(`\b\d{6}\b`)

func codeFromMail(t *testing.T, params email.SendEmailParams) string {
	t.Helper()
	otp := codeInBody.FindString(params.BodyText)
	require.Len(t, otp, 6, "mail body must contain the code")
	return otp
}

func TestLoginCodeService_RequestCode(t *testing.T) {
	t.Parallel()

	account := testAccount()
	store := newMemStore(account)
	sender := &captureSender{}
	svc := auth.NewLoginCodeService(store, sender, "https://runde.tips")

	require.NoError(t, svc.RequestCode(context.Background(), account.Email))

	challenge := store.challenge(account.ID)
	require.NotNil(t, challenge, "challenge must be persisted")
	assert.NotEmpty(t, challenge.Secret)

	mail := sender.last(t)
	assert.Equal(t, account.Email, mail.SendTo)
	assert.Equal(t, "Tipprunde Login", mail.Subject)

	otp := codeFromMail(t, mail)
	assert.Contains(t, mail.BodyText, otp)
	assert.Contains(t, mail.BodyText, "https://runde.tips/login?email=erika%40example.com&otp="+otp)

	// The mailed code actually logs in.
	user, err := auth.VerifyCredentials(context.Background(), store, auth.Credentials{
		Email: account.Email,
		OTP:   otp,
	})
	require.NoError(t, err)
	assert.Equal(t, account.ID, user.ID)
}

func TestLoginCodeService_UnknownEmail(t *testing.T) {
	t.Parallel()

	store := newMemStore()
	sender := &captureSender{}
	svc := auth.NewLoginCodeService(store, sender, "https://runde.tips")

	err := svc.RequestCode(context.Background(), "nobody@example.com")
	assert.ErrorIs(t, err, auth.ErrAccountNotFound)
	assert.Empty(t, sender.sent, "no mail for unknown addresses")
	assert.Zero(t, store.attachCalls)
}

func TestLoginCodeService_RerequestReplacesChallenge(t *testing.T) {
	t.Parallel()

	account := testAccount()
	store := newMemStore(account)
	sender := &captureSender{}
	svc := auth.NewLoginCodeService(store, sender, "https://runde.tips")

	require.NoError(t, svc.RequestCode(context.Background(), account.Email))
	first := *store.challenge(account.ID)

	require.NoError(t, svc.RequestCode(context.Background(), account.Email))
	second := *store.challenge(account.ID)

	assert.NotEqual(t, first.Secret, second.Secret, "re-request must mint a fresh secret")
	assert.Equal(t, 2, store.attachCalls)

	// Only the latest mailed code verifies.
	otp := codeFromMail(t, sender.last(t))
	user, err := auth.VerifyCredentials(context.Background(), store, auth.Credentials{
		Email: account.Email,
		OTP:   otp,
	})
	require.NoError(t, err)
	assert.Equal(t, account.ID, user.ID)
}

func TestLoginCodeService_DeliveryFailureKeepsChallenge(t *testing.T) {
	t.Parallel()

	account := testAccount()
	store := newMemStore(account)
	sender := &captureSender{fail: assert.AnError}
	svc := auth.NewLoginCodeService(store, sender, "https://runde.tips")

	err := svc.RequestCode(context.Background(), account.Email)
	assert.ErrorIs(t, err, auth.ErrDeliveryFailed)

	// The challenge was persisted before the send attempt, so a code
	// that reached the user despite the error still works.
	require.NotNil(t, store.challenge(account.ID))

	otp := codeFromMail(t, sender.last(t))
	_, err = auth.VerifyCredentials(context.Background(), store, auth.Credentials{
		Email: account.Email,
		OTP:   otp,
	})
	assert.NoError(t, err)
}

func TestLoginCodeService_HasOpenChallenge(t *testing.T) {
	t.Parallel()

	account := testAccount()
	store := newMemStore(account)
	sender := &captureSender{}
	svc := auth.NewLoginCodeService(store, sender, "https://runde.tips")

	assert.False(t, svc.HasOpenChallenge(context.Background(), account.Email))
	assert.False(t, svc.HasOpenChallenge(context.Background(), "nobody@example.com"))

	require.NoError(t, svc.RequestCode(context.Background(), account.Email))
	assert.True(t, svc.HasOpenChallenge(context.Background(), account.Email))
}
