// Package auth implements the application's authentication subsystem: a set
// of pluggable credential strategies, an identity serializer that keeps
// sessions down to a single key, and the guard predicate route handlers use.
//
// Failure semantics matter here. Any rejected credential set yields
// ErrInvalidCredentials with no hint of which field was wrong; internal
// faults are wrapped in ErrStrategyFailure, logged with full detail, and
// surfaced to users as a generic failure.
package auth
