package auth

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/rundetips/platform/pkg/email"
	"github.com/rundetips/platform/pkg/totp"
)

const (
	// codePeriod is the validity window of a login code. Ten standard
	// TOTP steps give users enough time to switch to their inbox.
	codePeriod = 10 * 30

	codeAlgorithm = totp.AlgorithmSHA256

	loginEmailSubject = "Tipprunde Login"
)

// LoginCodeService issues login challenges and delivers the matching
// code by email.
type LoginCodeService struct {
	store  AccountStore
	mailer email.EmailSender
	appURL string
	now    func() time.Time
}

// NewLoginCodeService creates a login code service. appURL is the
// public base URL used to build the deep link in the email.
func NewLoginCodeService(store AccountStore, mailer email.EmailSender, appURL string) *LoginCodeService {
	return &LoginCodeService{
		store:  store,
		mailer: mailer,
		appURL: appURL,
		now:    time.Now,
	}
}

// RequestCode generates a fresh challenge for the account matching the
// email, persists it, and mails the code together with a deep link.
// Any previously open challenge is replaced, invalidating its code.
//
// The challenge is persisted before the email goes out. When delivery
// fails the caller gets ErrDeliveryFailed but the challenge stays
// attached, so a code that did reach the user remains valid.
func (s *LoginCodeService) RequestCode(ctx context.Context, address string) error {
	account, err := s.store.FindByEmail(ctx, address)
	if err != nil {
		return err
	}

	code, err := totp.GenerateWithTime(totp.GenerateParams{
		Algorithm: codeAlgorithm,
		Period:    codePeriod,
	}, s.now())
	if err != nil {
		return err
	}

	challenge := Challenge{
		Secret:    code.Secret,
		ExpiresAt: s.now().Add(time.Duration(code.Period) * time.Second),
	}
	if err := s.store.AttachChallenge(ctx, account.ID, challenge); err != nil {
		return err
	}

	if err := s.mailer.SendEmail(ctx, email.SendEmailParams{
		SendTo:   account.Email,
		Subject:  loginEmailSubject,
		BodyText: fmt.Sprintf("Zum Einloggen den Code %s nutzen oder den Link %s", code.OTP, s.loginLink(account.Email, code.OTP)),
		Tag:      "login-code",
	}); err != nil {
		return errors.Join(ErrDeliveryFailed, err)
	}

	return nil
}

// HasOpenChallenge reports whether the email belongs to an account with
// a challenge attached. Used by the deep-link loader to detect stale
// links; any lookup failure reads as "no".
func (s *LoginCodeService) HasOpenChallenge(ctx context.Context, address string) bool {
	account, err := s.store.FindByEmail(ctx, address)
	if err != nil {
		return false
	}
	return account.Challenge != nil
}

func (s *LoginCodeService) loginLink(address, otp string) string {
	q := url.Values{}
	q.Set("email", address)
	q.Set("otp", otp)
	return s.appURL + "/login?" + q.Encode()
}
