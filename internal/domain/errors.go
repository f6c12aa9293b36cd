package domain

import "errors"

// Sentinel errors for domain-level error discrimination.
// Services wrap these so handlers can map to HTTP status codes without leaking infrastructure details.
var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrBadRequest   = errors.New("bad request")
)

// Password-reset flow outcomes. All of these are expected, user-facing
// results of the reset endpoints, never internal faults.
var (
	ErrNoChallenge         = errors.New("no pending reset code")
	ErrChallengeExpired    = errors.New("reset code expired")
	ErrCodeMismatch        = errors.New("reset code does not match")
	ErrWeakPassword        = errors.New("password must be at least 6 characters")
	ErrMissingFields       = errors.New("missing required fields")
	ErrNotifierUnavailable = errors.New("notifier unavailable")
	ErrPersistence         = errors.New("persistence failure")
)
