package contract

import "github.com/shopspring/decimal"

// Store persists the contract's two single-value slots. Implementations must
// be safe for use from a single serialized caller; the contract itself never
// runs operations concurrently.
type Store interface {
	// MaxFeePercentage returns the configured ceiling. ok is false when the
	// contract has not been instantiated yet.
	MaxFeePercentage() (value decimal.Decimal, ok bool, err error)
	// SetMaxFeePercentage writes the ceiling. Called exactly once.
	SetMaxFeePercentage(value decimal.Decimal) error

	// ActiveSwap returns the pending swap slot. ok is false when no swap is
	// in flight.
	ActiveSwap() (swap *PendingSwap, ok bool, err error)
	// PutActiveSwap fills the pending swap slot.
	PutActiveSwap(swap *PendingSwap) error
	// DeleteActiveSwap clears the pending swap slot. Clearing an already
	// empty slot is not an error.
	DeleteActiveSwap() error
}

// AddressValidator decides whether an address-like string is a valid identity
// on the target chain. The contract treats it as an opaque predicate.
type AddressValidator interface {
	ValidateAddress(address string) error
}
