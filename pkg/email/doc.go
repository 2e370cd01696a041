// Package email provides a provider-agnostic interface for sending
// transactional emails, with built-in support for Postmark and a development
// sender that writes emails to disk.
//
// The package is built around the EmailSender interface, allowing providers
// to be swapped without changing application code:
//   - PostmarkClient for production delivery with open/click tracking
//   - DevSender for local development (saves emails to a directory)
//
// All implementations validate parameters before sending and report failures
// through the ErrFailedToSendEmail sentinel so callers can distinguish
// delivery problems from invalid input (ErrInvalidParams).
package email
