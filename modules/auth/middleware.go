package auth

import (
	"context"
	"net/http"

	"github.com/rundetips/platform/pkg/session"
)

// Session data keys for the logged-in user projection.
const (
	sessionKeyName  = "user_name"
	sessionKeyEmail = "user_email"
	sessionKeyRole  = "user_role"
)

type userContextKey struct{}

// SessionData returns the projection fields stored alongside the user
// ID when a session is authenticated.
func SessionData(user User) map[string]any {
	return map[string]any{
		sessionKeyName:  user.Name,
		sessionKeyEmail: user.Email,
		sessionKeyRole:  string(user.Role),
	}
}

// userFromSession rebuilds the user projection from an authenticated
// session. Returns false for anonymous or malformed sessions.
func userFromSession(sess *session.Session) (User, bool) {
	if !sess.IsAuthenticated() {
		return User{}, false
	}

	name, _ := sess.GetString(sessionKeyName)
	email, _ := sess.GetString(sessionKeyEmail)
	role, _ := sess.GetString(sessionKeyRole)
	if !Role(role).Valid() {
		return User{}, false
	}

	return User{
		ID:    *sess.UserID,
		Name:  name,
		Email: email,
		Role:  Role(role),
	}, true
}

// CurrentUser exposes the logged-in user to downstream handlers via the
// request context. Anonymous requests pass through unchanged. Must be
// mounted after session.Middleware.
func CurrentUser() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if sess, ok := session.FromContext(r.Context()); ok {
				if user, ok := userFromSession(sess); ok {
					r = r.WithContext(context.WithValue(r.Context(), userContextKey{}, user))
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

// UserFromContext retrieves the logged-in user, if any.
func UserFromContext(ctx context.Context) (User, bool) {
	user, ok := ctx.Value(userContextKey{}).(User)
	return user, ok
}

// RequireRole rejects requests whose user does not hold the given role.
// Anonymous requests are redirected to the start page, matching the
// behavior of the protected areas in the web UI.
func RequireRole(role Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := UserFromContext(r.Context())
			if !ok || user.Role != role {
				http.Redirect(w, r, "/", http.StatusFound)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
