package domain

import "errors"

var (
	// Ledger errors
	ErrAccountNotFound     = errors.New("account not found")
	ErrInsufficientBalance = errors.New("insufficient credit balance")
	ErrInvalidAmount       = errors.New("amount must be positive")

	// Request errors
	ErrRequestNotFound       = errors.New("service request not found")
	ErrForbidden             = errors.New("service request belongs to a different account")
	ErrRequestNotCancellable = errors.New("service request can no longer be cancelled")
	ErrUnknownServiceType    = errors.New("unknown service type")

	// Validation errors
	ErrValidation = errors.New("invalid input")
)
