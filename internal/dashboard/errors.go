package dashboard

import "errors"

var (
	// ErrUnauthorized is returned when the signer does not match the dashboard authority (has_one = authority)
	ErrUnauthorized = errors.New("signer is not the dashboard authority")

	// ErrMissingSignature is returned when an account that must sign did not
	ErrMissingSignature = errors.New("missing required signature")

	// ErrAlreadyInitialized is returned when initializing an address that already holds an account
	ErrAlreadyInitialized = errors.New("dashboard account already in use")

	// ErrAccountNotFound is returned when the dashboard account does not exist
	ErrAccountNotFound = errors.New("dashboard account not found")

	// ErrInvalidAccountOwner is returned when the dashboard account is not owned by the program
	ErrInvalidAccountOwner = errors.New("dashboard account owned by a different program")

	// ErrInvalidAccountData is returned when account bytes cannot be decoded as a dashboard
	ErrInvalidAccountData = errors.New("invalid dashboard account data")

	// ErrInvalidInstruction is returned for instruction data or accounts the program does not understand
	ErrInvalidInstruction = errors.New("invalid dashboard instruction")
)
