// Package logger provides a context-aware wrapper around Go's slog package
// adding functional options for configuration, helper attribute constructors,
// and transparent injection of values stored in context.Context.
//
// A single factory, New, creates a *slog.Logger configured by Option
// functions: output format (text or json), minimum level, static attributes,
// and ContextExtractor callbacks that pull request-scoped values (such as a
// request id) out of the context on every log call.
//
// Helper constructors such as Error, UserID and Email live in attr.go and
// keep attribute naming consistent across the codebase.
package logger
