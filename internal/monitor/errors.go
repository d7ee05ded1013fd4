package monitor

import (
	"errors"
	"fmt"
)

// ErrValidatorNotFound is returned when the node pubkey is in neither the current nor the delinquent set
var ErrValidatorNotFound = errors.New("validator not found")

// ConfigurationError is returned by New when the monitor cannot be built from its Config
type ConfigurationError struct {
	Field  string
	Reason string
	Err    error
}

func (e *ConfigurationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("invalid %s: %s: %v", e.Field, e.Reason, e.Err)
	}
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func (e *ConfigurationError) Unwrap() error {
	return e.Err
}

// FetchError wraps a failed vote accounts query. The current tick is abandoned and the loop carries on
type FetchError struct {
	Err error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("failed to fetch vote accounts: %v", e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}
