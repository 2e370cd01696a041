package session_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rundetips/platform/pkg/cookie"
	"github.com/rundetips/platform/pkg/session"
)

func newTestManager(t *testing.T) *session.Manager {
	t.Helper()

	cookies, err := cookie.New([]string{"test-secret-key-32-characters-ok"})
	require.NoError(t, err)

	cfg := session.DefaultConfig()
	cfg.CleanupInterval = 0

	m := session.New(
		session.WithConfig(cfg),
		session.WithStore(session.NewMemoryStore()),
		session.WithTransport(session.NewCookieTransport(cookies, cfg.CookieName, false)),
	)
	t.Cleanup(m.Close)
	return m
}

func TestMemoryStore_SaveGetDelete(t *testing.T) {
	t.Parallel()

	store := session.NewMemoryStore()
	ctx := context.Background()

	sess := session.NewSession("tok-1", nil, time.Hour)
	sess.Set("color", "green")
	require.NoError(t, store.Save(ctx, sess))

	got, err := store.Get(ctx, "tok-1")
	require.NoError(t, err)
	assert.Equal(t, sess.ID, got.ID)
	val, ok := got.GetString("color")
	assert.True(t, ok)
	assert.Equal(t, "green", val)

	require.NoError(t, store.Delete(ctx, "tok-1"))
	_, err = store.Get(ctx, "tok-1")
	assert.ErrorIs(t, err, session.ErrSessionNotFound)
}

func TestMemoryStore_Expiry(t *testing.T) {
	t.Parallel()

	store := session.NewMemoryStore()
	ctx := context.Background()

	sess := session.NewSession("tok-exp", nil, -time.Minute)
	require.NoError(t, store.Save(ctx, sess))

	_, err := store.Get(ctx, "tok-exp")
	assert.ErrorIs(t, err, session.ErrSessionExpired)

	require.NoError(t, store.DeleteExpired(ctx))
	_, err = store.Get(ctx, "tok-exp")
	assert.ErrorIs(t, err, session.ErrSessionNotFound)
}

func TestManager_LoadCreatesAnonymousSession(t *testing.T) {
	t.Parallel()

	m := newTestManager(t)

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/", nil)

	sess, err := m.Load(w, r)
	require.NoError(t, err)
	assert.False(t, sess.IsAuthenticated())
	assert.NotEmpty(t, sess.Token)
	require.NotEmpty(t, w.Result().Cookies())
}

func TestManager_LoadReusesExistingSession(t *testing.T) {
	t.Parallel()

	m := newTestManager(t)

	w1 := httptest.NewRecorder()
	r1 := httptest.NewRequest(http.MethodGet, "/", nil)
	first, err := m.Load(w1, r1)
	require.NoError(t, err)

	r2 := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, c := range w1.Result().Cookies() {
		r2.AddCookie(c)
	}
	second, err := m.Load(httptest.NewRecorder(), r2)
	require.NoError(t, err)
	assert.Equal(t, first.Token, second.Token)
}

func TestManager_AuthenticateRotatesToken(t *testing.T) {
	t.Parallel()

	m := newTestManager(t)

	w1 := httptest.NewRecorder()
	r1 := httptest.NewRequest(http.MethodGet, "/", nil)
	anon, err := m.Load(w1, r1)
	require.NoError(t, err)

	userID := uuid.New()
	w2 := httptest.NewRecorder()
	r2 := httptest.NewRequest(http.MethodPost, "/login", nil)
	for _, c := range w1.Result().Cookies() {
		r2.AddCookie(c)
	}

	authed, err := m.Authenticate(w2, r2, userID, map[string]any{"user_email": "a@b.de"})
	require.NoError(t, err)
	assert.True(t, authed.IsAuthenticated())
	assert.Equal(t, userID, *authed.UserID)
	assert.NotEqual(t, anon.Token, authed.Token)

	email, ok := authed.GetString("user_email")
	assert.True(t, ok)
	assert.Equal(t, "a@b.de", email)

	// old anonymous session must be gone
	r3 := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, c := range w1.Result().Cookies() {
		r3.AddCookie(c)
	}
	replacement, err := m.Load(httptest.NewRecorder(), r3)
	require.NoError(t, err)
	assert.NotEqual(t, anon.Token, replacement.Token)
	assert.False(t, replacement.IsAuthenticated())
}

func TestManager_Logout(t *testing.T) {
	t.Parallel()

	m := newTestManager(t)

	w1 := httptest.NewRecorder()
	r1 := httptest.NewRequest(http.MethodGet, "/", nil)
	sess, err := m.Load(w1, r1)
	require.NoError(t, err)

	w2 := httptest.NewRecorder()
	r2 := httptest.NewRequest(http.MethodPost, "/logout", nil)
	for _, c := range w1.Result().Cookies() {
		r2.AddCookie(c)
	}
	require.NoError(t, m.Logout(w2, r2))

	r3 := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, c := range w1.Result().Cookies() {
		r3.AddCookie(c)
	}
	fresh, err := m.Load(httptest.NewRecorder(), r3)
	require.NoError(t, err)
	assert.NotEqual(t, sess.Token, fresh.Token)
}

func TestMiddleware_InjectsSession(t *testing.T) {
	t.Parallel()

	m := newTestManager(t)

	var seen *session.Session
	handler := session.Middleware(m)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess, ok := session.FromContext(r.Context())
		require.True(t, ok)
		seen = sess
	}))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	require.NotNil(t, seen)
	assert.NotEmpty(t, seen.Token)
}
