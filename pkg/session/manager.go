package session

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Manager coordinates session lifecycle: creation, resolution,
// authentication and teardown. Tokens travel via the configured
// Transport while session records live in the Store.
type Manager struct {
	store     Store
	transport Transport
	config    Config

	// activity updates are debounced through a background worker so
	// that hot request paths never block on the store
	activityCh chan *Session
	stopCh     chan struct{}
	wg         sync.WaitGroup
	closeOnce  sync.Once
}

// New creates a session Manager. A Store and a Transport must be
// provided via options.
func New(opts ...Option) *Manager {
	m := &Manager{
		config:     DefaultConfig(),
		activityCh: make(chan *Session, 128),
		stopCh:     make(chan struct{}),
	}

	for _, opt := range opts {
		opt(m)
	}

	m.wg.Add(1)
	go m.activityWorker()

	if m.config.CleanupInterval > 0 && m.store != nil {
		m.wg.Add(1)
		go m.cleanupWorker()
	}

	return m
}

// Load resolves the session attached to the request. When the request
// carries no token, or the token resolves to a missing or expired
// session, a fresh anonymous session is created and its token set on
// the response.
func (m *Manager) Load(w http.ResponseWriter, r *http.Request) (*Session, error) {
	if m.store == nil {
		return nil, ErrNoStore
	}
	if m.transport == nil {
		return nil, ErrNoTransport
	}

	token, err := m.transport.GetToken(r)
	if err == nil && token != "" {
		sess, err := m.store.Get(r.Context(), token)
		if err == nil && !sess.IsExpired() {
			m.queueActivityUpdate(sess)
			return sess, nil
		}
		if err == nil || errors.Is(err, ErrSessionExpired) {
			// stale record, drop it before issuing a new session
			_ = m.store.Delete(r.Context(), token)
		}
	}

	return m.newSession(r.Context(), w, nil, nil)
}

// Authenticate binds the request's session to the given user. The old
// session is destroyed and a new token is issued to prevent session
// fixation. Additional data is stored on the new session.
func (m *Manager) Authenticate(w http.ResponseWriter, r *http.Request, userID uuid.UUID, data map[string]any) (*Session, error) {
	if m.store == nil {
		return nil, ErrNoStore
	}
	if m.transport == nil {
		return nil, ErrNoTransport
	}

	if token, err := m.transport.GetToken(r); err == nil && token != "" {
		_ = m.store.Delete(r.Context(), token)
	}

	return m.newSession(r.Context(), w, &userID, data)
}

// Logout destroys the request's session and clears the token from the
// response. Logging out without a session is not an error.
func (m *Manager) Logout(w http.ResponseWriter, r *http.Request) error {
	if m.store == nil {
		return ErrNoStore
	}
	if m.transport == nil {
		return ErrNoTransport
	}

	token, err := m.transport.GetToken(r)
	if err == nil && token != "" {
		if err := m.store.Delete(r.Context(), token); err != nil {
			return err
		}
	}

	return m.transport.ClearToken(w)
}

// Save persists session data changes made by the caller.
func (m *Manager) Save(ctx context.Context, sess *Session) error {
	if m.store == nil {
		return ErrNoStore
	}
	if sess == nil {
		return ErrInvalidSession
	}
	return m.store.Save(ctx, sess)
}

// Close stops background workers and waits for them to finish.
func (m *Manager) Close() {
	m.closeOnce.Do(func() {
		close(m.stopCh)
	})
	m.wg.Wait()
}

func (m *Manager) newSession(ctx context.Context, w http.ResponseWriter, userID *uuid.UUID, data map[string]any) (*Session, error) {
	token, err := generateToken()
	if err != nil {
		return nil, errors.Join(ErrTokenGeneration, err)
	}

	_, maxLifetime := m.config.GetTimeouts(userID != nil)
	sess := NewSession(token, userID, maxLifetime)
	for k, v := range data {
		sess.Set(k, v)
	}

	if err := m.store.Save(ctx, sess); err != nil {
		return nil, err
	}

	if err := m.transport.SetToken(w, token, time.Until(sess.ExpiresAt)); err != nil {
		return nil, err
	}

	return sess, nil
}

// queueActivityUpdate schedules a non-blocking last-activity refresh.
// Updates within the configured threshold are skipped.
func (m *Manager) queueActivityUpdate(sess *Session) {
	if time.Since(sess.LastActivityAt) < m.config.ActivityUpdateThreshold {
		return
	}
	select {
	case m.activityCh <- sess:
	default:
		// channel full, skip this update rather than block the request
	}
}

func (m *Manager) activityWorker() {
	defer m.wg.Done()
	for {
		select {
		case sess := <-m.activityCh:
			sess.Touch()
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			_ = m.store.Save(ctx, sess)
			cancel()
		case <-m.stopCh:
			return
		}
	}
}

func (m *Manager) cleanupWorker() {
	defer m.wg.Done()
	ticker := time.NewTicker(m.config.CleanupInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			_ = m.store.DeleteExpired(ctx)
			cancel()
		case <-m.stopCh:
			return
		}
	}
}

func generateToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
