// Package cookie manages HTTP cookies with optional HMAC signing and
// AES-256-GCM encryption.
//
// A Manager is constructed with one or more secrets of at least 32
// characters; multiple secrets enable key rotation, where the first secret
// signs and encrypts new cookies and older secrets keep previously issued
// cookies readable. Defaults (Path=/, HttpOnly, SameSite=Lax) can be
// overridden per call with functional options.
//
// The session transport stores its token through SetEncrypted/GetEncrypted so
// the raw token never reaches the client unprotected.
package cookie
