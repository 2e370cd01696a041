package auth

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/rundetips/platform/pkg/binder"
	"github.com/rundetips/platform/pkg/logger"
	"github.com/rundetips/platform/pkg/session"
	"github.com/rundetips/platform/pkg/validator"
)

// Form intents of the two-phase login flow.
const (
	intentRequestCode  = "request-code"
	intentValidateCode = "validate-code"
)

// User-facing messages. German, matching the rest of the platform.
const (
	msgUnauthorized   = "Anmeldung fehlgeschlagen."
	msgStaleLink      = "Das ist ein veralteter Link. Du musst erst einen neuen Code anfordern."
	msgDeliveryFailed = "Fehler beim Email-Versand."
	msgNoChallenge    = "Es liegt kein Anmeldeversuch vor."
	msgExpiredCode    = "Dieser Code ist abgelaufen. Du musst einen neuen anfordern."
	msgInvalidCode    = "Ungültiger Code. Du musst einen neuen anfordern."
	msgMissingCode    = "Kein Code eingeben"
	msgMissingEmail   = "Keine Email-Adresse angegeben."
	msgInvalidEmail   = "Ungültige Email-Adresse."
	msgMalformedCode  = "Ein gültiger Code hat genau 6 Ziffern."
	msgMalformedInput = "Ungültige Eingabe."
)

// Service serves the login flow over HTTP: code request, code
// validation, logout and the current-user endpoint.
type Service struct {
	codes    *LoginCodeService
	sessions *session.Manager
	log      *slog.Logger
}

// NewService creates the auth HTTP service.
func NewService(codes *LoginCodeService, sessions *session.Manager, log *slog.Logger) *Service {
	return &Service{
		codes:    codes,
		sessions: sessions,
		log:      log,
	}
}

// Handle returns the router for the auth routes.
func (s *Service) Handle() http.Handler {
	r := chi.NewRouter()
	r.Get("/login", s.loginLoader)
	r.Post("/login", s.loginAction)
	r.HandleFunc("/logout", s.logout)
	r.Get("/me", s.me)
	return r
}

// loginRequest carries the login form state. Deep links deliver email
// and otp as query parameters, the form posts them as fields; posted
// values win when both are present.
type loginRequest struct {
	Email  string `form:"email" query:"email"`
	OTP    string `form:"otp" query:"otp"`
	Intent string `form:"intent"`
}

// submission mirrors the form state back to the client: which phase the
// flow is in, the field values to render, and any errors keyed by field
// name. The empty key carries form-level errors.
type submission struct {
	Intent  string            `json:"intent"`
	Payload submissionPayload `json:"payload"`
	Error   map[string]string `json:"error"`
}

type submissionPayload struct {
	Email string `json:"email"`
	OTP   string `json:"otp,omitempty"`
}

func newSubmission(intent, email, otp string) submission {
	return submission{
		Intent:  intent,
		Payload: submissionPayload{Email: email, OTP: otp},
		Error:   map[string]string{},
	}
}

// loginLoader handles deep links and bookmarks: GET /login with
// optional email and otp query parameters. A link whose code request is
// no longer open (reused onboarding mail, stale bookmark) degrades to
// the request-code phase with an explanatory message.
func (s *Service) loginLoader(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := binder.Query()(r, &req); err != nil {
		s.respondJSON(w, http.StatusBadRequest, newSubmission(intentRequestCode, "", ""))
		return
	}

	sub := newSubmission(intentRequestCode, req.Email, "")
	if req.OTP != "" {
		if s.codes.HasOpenChallenge(r.Context(), req.Email) {
			sub.Intent = intentValidateCode
			sub.Payload.OTP = req.OTP
		} else {
			sub.Error[""] = msgStaleLink
		}
	}

	s.respondJSON(w, http.StatusOK, sub)
}

// loginAction dispatches the two form intents over the same endpoint.
func (s *Service) loginAction(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := errors.Join(
		binder.Query()(r, &req),
		binder.Form()(r, &req),
	); err != nil {
		sub := newSubmission(intentRequestCode, "", "")
		sub.Error[""] = msgMalformedInput
		s.respondJSON(w, http.StatusBadRequest, sub)
		return
	}

	sub := newSubmission(req.Intent, req.Email, req.OTP)

	// Shape checks first; nothing below runs with malformed input. The
	// otp is optional here so a bare code request passes.
	rules := []validator.Rule{
		validator.RequiredWithMessage("email", req.Email, msgMissingEmail),
		validator.ValidEmailWithMessage("email", req.Email, msgInvalidEmail),
	}
	if req.OTP != "" {
		rules = append(rules, validator.MatchesWithMessage("otp", req.OTP, otpPattern, msgMalformedCode))
	}
	if err := validator.Apply(rules...); err != nil {
		s.respondValidationErrors(w, sub, err)
		return
	}

	switch req.Intent {
	case intentRequestCode:
		s.requestCode(w, r, sub)
	case intentValidateCode:
		s.validateCode(w, r, sub)
	default:
		sub.Intent = intentRequestCode
		sub.Error[""] = msgMalformedInput
		s.respondJSON(w, http.StatusBadRequest, sub)
	}
}

func (s *Service) requestCode(w http.ResponseWriter, r *http.Request, sub submission) {
	err := s.codes.RequestCode(r.Context(), sub.Payload.Email)
	switch {
	case err == nil:
		// Code is out; the same form now asks for it.
		sub.Intent = intentValidateCode
		s.respondJSON(w, http.StatusOK, sub)
	case errors.Is(err, ErrAccountNotFound):
		sub.Error[""] = msgUnauthorized
		s.respondJSON(w, http.StatusBadRequest, sub)
	case errors.Is(err, ErrDeliveryFailed):
		s.log.ErrorContext(r.Context(), "login code delivery failed",
			logger.Email(sub.Payload.Email), logger.Error(err))
		sub.Error[""] = msgDeliveryFailed
		s.respondJSON(w, http.StatusInternalServerError, sub)
	default:
		s.serverError(w, r, err)
	}
}

func (s *Service) validateCode(w http.ResponseWriter, r *http.Request, sub submission) {
	if sub.Payload.OTP == "" {
		sub.Error["otp"] = msgMissingCode
		s.respondJSON(w, http.StatusBadRequest, sub)
		return
	}

	user, err := VerifyCredentials(r.Context(), s.codes.store, Credentials{
		Email: sub.Payload.Email,
		OTP:   sub.Payload.OTP,
	})
	if err != nil {
		if msg, ok := rejectionMessage(err); ok {
			// Back to the first step; the challenge is consumed.
			sub.Intent = intentRequestCode
			sub.Payload.OTP = ""
			sub.Error[""] = msg
			s.respondJSON(w, http.StatusBadRequest, sub)
			return
		}
		if validator.IsValidationError(err) {
			s.respondValidationErrors(w, sub, err)
			return
		}
		s.serverError(w, r, err)
		return
	}

	if _, err := s.sessions.Authenticate(w, r, user.ID, SessionData(user)); err != nil {
		s.serverError(w, r, err)
		return
	}

	s.log.InfoContext(r.Context(), "user logged in",
		logger.UserID(user.ID.String()), logger.Email(user.Email))
	http.Redirect(w, r, "/", http.StatusFound)
}

// logout destroys the session and returns to the start page.
func (s *Service) logout(w http.ResponseWriter, r *http.Request) {
	if err := s.sessions.Logout(w, r); err != nil {
		s.serverError(w, r, err)
		return
	}
	http.Redirect(w, r, "/", http.StatusFound)
}

// me returns the logged-in user's projection, or null for anonymous
// requests.
func (s *Service) me(w http.ResponseWriter, r *http.Request) {
	user, ok := UserFromContext(r.Context())
	if !ok {
		s.respondJSON(w, http.StatusOK, nil)
		return
	}
	s.respondJSON(w, http.StatusOK, user)
}

// rejectionMessage maps credential failures to their user-facing
// message. The unknown-email case shares the generic message so the
// endpoint does not reveal which addresses are registered.
func rejectionMessage(err error) (string, bool) {
	switch {
	case errors.Is(err, ErrUnauthorized):
		return msgUnauthorized, true
	case errors.Is(err, ErrNoActiveChallenge):
		return msgNoChallenge, true
	case errors.Is(err, ErrChallengeExpired):
		return msgExpiredCode, true
	case errors.Is(err, ErrInvalidCode):
		return msgInvalidCode, true
	default:
		return "", false
	}
}

func (s *Service) respondValidationErrors(w http.ResponseWriter, sub submission, err error) {
	verrs := validator.ExtractValidationErrors(err)
	if len(verrs) == 0 {
		sub.Error[""] = msgMalformedInput
	}
	for _, ve := range verrs {
		if _, exists := sub.Error[ve.Field]; !exists {
			sub.Error[ve.Field] = ve.Message
		}
	}
	s.respondJSON(w, http.StatusBadRequest, sub)
}

func (s *Service) respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (s *Service) serverError(w http.ResponseWriter, r *http.Request, err error) {
	s.log.ErrorContext(r.Context(), "auth request failed", logger.Error(err))
	http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
}
