package contract

import (
	"errors"
	"fmt"
)

// Validation errors. Rejected before any state change; the caller can retry
// with corrected input.
var (
	ErrInvalidMaxFeePercentage = errors.New("invalid max fee percentage: must be between 0 and 10")
	ErrNoFunds                 = errors.New("no funds attached: swap requires exactly one coin")
	ErrTooManyDenoms           = errors.New("too many denominations attached: swap requires exactly one coin")
)

// Protocol-invariant errors. These signal environment misbehavior or an
// internal bug, never normal operation.
var (
	ErrActiveSwapExists   = errors.New("another swap is already in progress")
	ErrAlreadyInitialized = errors.New("max fee percentage is already set")
	ErrUnexpected         = errors.New("unexpected contract state")
)

// ErrAmountOverflow is the arithmetic failure surfaced when a token amount
// leaves the 128-bit range the chain supports.
var ErrAmountOverflow = errors.New("amount overflow: exceeds 128-bit range")

// InvalidAddressError reports a fee collector that failed bech32 validation.
type InvalidAddressError struct {
	Address string
	Err     error
}

func (e *InvalidAddressError) Error() string {
	return fmt.Sprintf("invalid fee collector address %q: %v", e.Address, e.Err)
}

func (e *InvalidAddressError) Unwrap() error { return e.Err }

// FailedSwapError wraps the failure reason reported by the swap engine,
// verbatim, so downstream diagnostics survive the round trip.
type FailedSwapError struct {
	Reason string
}

func (e *FailedSwapError) Error() string {
	return fmt.Sprintf("swap failed: %s", e.Reason)
}
