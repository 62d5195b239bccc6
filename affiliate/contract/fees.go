package contract

import (
	"math/big"

	"github.com/shopspring/decimal"
)

// TrueMaxFee is the hard ceiling for the configurable max fee percentage.
// Instantiation rejects anything above it.
var TrueMaxFee = decimal.NewFromInt(10)

// DefaultMaxFee is used when instantiation does not provide a ceiling.
var DefaultMaxFee = decimal.RequireFromString("1.5")

// maxUint128 bounds token amounts: (2^128)-1, the widest integer the target
// chain represents.
var maxUint128 = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 128), big.NewInt(1))

// ClampFeePercentage resolves the caller-requested percentage against the
// configured ceiling. A nil or negative request means zero; anything above the
// ceiling is capped, not rejected.
func ClampFeePercentage(requested *decimal.Decimal, ceiling decimal.Decimal) decimal.Decimal {
	if requested == nil || requested.IsNegative() {
		return decimal.Zero
	}
	if requested.GreaterThan(ceiling) {
		return ceiling
	}
	return *requested
}

// CalculateFee splits a deposited amount into the affiliate fee and the
// remainder that goes into the swap.
//
// fee = floor(amount * effective / 100), computed with exact integer
// arithmetic on the decimal's coefficient — no floats, no rounding drift.
// remaining = amount - fee, non-negative for any effective <= 100.
func CalculateFee(amount *big.Int, requested *decimal.Decimal, ceiling decimal.Decimal) (fee, remaining *big.Int, err error) {
	if amount == nil || amount.Sign() < 0 {
		return nil, nil, ErrNoFunds
	}
	if amount.Cmp(maxUint128) > 0 {
		return nil, nil, ErrAmountOverflow
	}

	effective := ClampFeePercentage(requested, ceiling)

	// effective = coefficient * 10^exponent, so
	// fee = floor(amount * coefficient / (100 * 10^-exponent)).
	num := new(big.Int).Mul(amount, effective.Coefficient())
	den := big.NewInt(100)
	if exp := int64(effective.Exponent()); exp > 0 {
		num.Mul(num, pow10(exp))
	} else if exp < 0 {
		den.Mul(den, pow10(-exp))
	}
	fee = new(big.Int).Quo(num, den)

	if fee.Cmp(maxUint128) > 0 {
		return nil, nil, ErrAmountOverflow
	}
	if fee.Cmp(amount) > 0 {
		// Only reachable with an effective percentage above 100, which the
		// clamp rules out. Guard anyway.
		return nil, nil, ErrUnexpected
	}

	remaining = new(big.Int).Sub(amount, fee)
	return fee, remaining, nil
}

func pow10(n int64) *big.Int {
	return new(big.Int).Exp(big.NewInt(10), big.NewInt(n), nil)
}
