// Package session provides server-side HTTP session management with
// pluggable storage and token transport.
//
// A Manager resolves sessions from incoming requests, creates anonymous
// sessions for first-time visitors, and rotates the token on
// authentication to prevent session fixation. Session records live in a
// Store (in-memory, MongoDB or Redis implementations are included) and
// the token travels in a signed cookie via CookieTransport.
//
// Basic usage:
//
//	cookies, _ := cookie.New([]string{secret})
//	manager := session.New(
//		session.WithStore(session.NewMemoryStore()),
//		session.WithTransport(session.NewCookieTransport(cookies, "sid", true)),
//	)
//	defer manager.Close()
//
//	r.Use(session.Middleware(manager))
//
// Handlers access the current session through the request context:
//
//	sess, ok := session.FromContext(r.Context())
package session
