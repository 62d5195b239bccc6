// Package broker holds the chain-facing capabilities the hub plugs into the
// contract: bech32 identity validation and the Osmosis swap engine.
package broker

import (
	"fmt"

	"github.com/btcsuite/btcutil/bech32"
)

// Bech32Validator validates addresses by decoding them as bech32 and checking
// the human-readable prefix of the target chain.
type Bech32Validator struct {
	prefix string
}

// NewBech32Validator creates a validator for the given prefix (e.g. "osmo").
func NewBech32Validator(prefix string) *Bech32Validator {
	return &Bech32Validator{prefix: prefix}
}

// ValidateAddress implements the contract's address validation predicate.
func (v *Bech32Validator) ValidateAddress(address string) error {
	hrp, _, err := bech32.Decode(address)
	if err != nil {
		return fmt.Errorf("failed to decode address: %w", err)
	}
	if v.prefix != "" && hrp != v.prefix {
		return fmt.Errorf("wrong address prefix: expected %q, got %q", v.prefix, hrp)
	}
	return nil
}
