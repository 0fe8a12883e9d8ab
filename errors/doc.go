// Package errors provides the structured error type shared by wirekit
// packages. Every failure carries a machine-readable ErrorCode, and
// errors.Is matches AppErrors by code so callers can test for a failure
// kind without comparing messages.
package errors
