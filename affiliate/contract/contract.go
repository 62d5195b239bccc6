// Package contract implements the affiliate swap contract semantics: deduct a
// bounded affiliate fee from a single-coin deposit, forward the remainder into
// a pool manager swap, and pay the swap output back to the original sender
// once the asynchronous completion reply arrives.
package contract

import (
	"github.com/shopspring/decimal"
)

// Contract binds the swap orchestration logic to its persistent store, the
// address validation capability, and the hub's own account (the sender of the
// scheduled swap, so the output lands here before the payout).
type Contract struct {
	store     Store
	validator AddressValidator
	self      string
}

// New creates a contract over the given store and validator. selfAddress is
// the hub's own account on the target chain.
func New(store Store, validator AddressValidator, selfAddress string) *Contract {
	return &Contract{
		store:     store,
		validator: validator,
		self:      selfAddress,
	}
}

// Instantiate sets the max fee percentage ceiling, exactly once. A nil value
// selects DefaultMaxFee. Values outside [0, TrueMaxFee] are rejected before
// anything is written.
func (c *Contract) Instantiate(maxFeePercentage *decimal.Decimal) (*Response, error) {
	maxFee := DefaultMaxFee
	if maxFeePercentage != nil {
		maxFee = *maxFeePercentage
	}
	if maxFee.IsNegative() || maxFee.GreaterThan(TrueMaxFee) {
		return nil, ErrInvalidMaxFeePercentage
	}

	if _, ok, err := c.store.MaxFeePercentage(); err != nil {
		return nil, err
	} else if ok {
		return nil, ErrAlreadyInitialized
	}

	if err := c.store.SetMaxFeePercentage(maxFee); err != nil {
		return nil, err
	}

	return &Response{
		Attributes: []Attribute{
			{Key: "method", Value: "instantiate"},
			{Key: "max_fee_percentage", Value: maxFee.String()},
		},
	}, nil
}

// ActiveSwap reports the in-flight swap, if one is waiting on completion.
func (c *Contract) ActiveSwap() (*PendingSwap, bool, error) {
	return c.store.ActiveSwap()
}

// MaxFeePercentage answers the single query the contract exposes.
func (c *Contract) MaxFeePercentage() (decimal.Decimal, error) {
	maxFee, ok, err := c.store.MaxFeePercentage()
	if err != nil {
		return decimal.Zero, err
	}
	if !ok {
		return decimal.Zero, ErrUnexpected
	}
	return maxFee, nil
}
