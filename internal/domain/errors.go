package domain

import "errors"

// Business errors returned by the ledger, withdrawal and referral services.
// Handlers map these to HTTP status codes with errors.Is.
var (
	ErrInvalidAmount          = errors.New("amount must be a positive value with at most 2 decimal places")
	ErrInsufficientBalance    = errors.New("insufficient wallet balance")
	ErrBelowMinimum           = errors.New("withdrawal amount below the configured minimum")
	ErrExistingPendingRequest = errors.New("a pending withdrawal request already exists")
	ErrInvalidStateTransition = errors.New("withdrawal is not in a state that allows this action")

	// ErrCycleDetected signals a corrupted referral graph. It is logged and the
	// traversal truncated; it must never surface as a normal user-facing error.
	ErrCycleDetected = errors.New("cycle detected in referral graph")
)
