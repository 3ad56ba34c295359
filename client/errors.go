package client

import (
	"errors"
	"fmt"
)

// Sentinel errors for every condition the polling clients branch on.
// Everything else the server can say is wrapped in *APIError.
var (
	ErrNotFound            = errors.New("order not found")
	ErrInvalidTransition   = errors.New("invalid transition")
	ErrOtpMismatch         = errors.New("delivery otp mismatch")
	ErrCancellationBlocked = errors.New("cancellation blocked")
	ErrAuthExpired         = errors.New("session ended")
	ErrUnavailable         = errors.New("service unavailable")
)

// APIError carries the server's human-readable message alongside the
// sentinel it maps to, so callers can both branch and display.
type APIError struct {
	Status  int
	Code    string
	Message string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("request failed with status %d", e.Status)
}

// Unwrap maps the wire code (and status, as fallback) to a sentinel.
func (e *APIError) Unwrap() error {
	switch e.Code {
	case "not_found":
		return ErrNotFound
	case "otp_mismatch":
		return ErrOtpMismatch
	case "cancellation_blocked":
		return ErrCancellationBlocked
	case "invalid_transition":
		return ErrInvalidTransition
	case "token_expired", "invalid_token", "auth_required":
		return ErrAuthExpired
	}
	switch e.Status {
	case 404:
		return ErrNotFound
	case 401:
		return ErrAuthExpired
	}
	if e.Status >= 500 {
		return ErrUnavailable
	}
	return nil
}
