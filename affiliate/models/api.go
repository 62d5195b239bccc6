// Package models defines the JSON shapes of the hub's HTTP API.
package models

// Coin - a token amount with its denom, both as strings on the wire
type Coin struct {
	Denom  string `json:"denom"`  // e.g., "uosmo"
	Amount string `json:"amount"` // e.g., "1000000"
}

// Route - one pool hop of the requested swap path
type Route struct {
	PoolID        uint64 `json:"poolId"`        // e.g., 1
	TokenOutDenom string `json:"tokenOutDenom"` // e.g., "uion"
}

// SwapRequest - API POST body for /v1/swap
type SwapRequest struct {
	Sender            string  `json:"sender"`                  // caller address, receives the swap output
	Deposit           Coin    `json:"deposit"`                 // the single coin attached to the call
	Routes            []Route `json:"routes"`                  // swap path; validated by the swap engine
	TokenOutMinAmount Coin    `json:"tokenOutMinAmount"`       // slippage bound, passed through
	FeePercentage     *string `json:"feePercentage,omitempty"` // e.g., "1.5"; absent means no fee
	FeeCollector      string  `json:"feeCollector"`            // affiliate address receiving the fee
}

// SwapResult mirrors the contract's machine-readable completion data.
type SwapResult struct {
	OriginalSender string `json:"originalSender"`
	Fee            string `json:"fee"`
	FeeCollector   string `json:"feeCollector"`
	SwapInDenom    string `json:"swapInDenom"`
	SwapInAmount   string `json:"swapInAmount"`
	TokenOutDenom  string `json:"tokenOutDenom"`
	TokenOutAmount string `json:"tokenOutAmount"`
}

// MaxFeeResponse answers GET /v1/max-fee-percentage.
type MaxFeeResponse struct {
	MaxFeePercentage string `json:"maxFeePercentage"`
}

// ActiveSwapResponse answers GET /v1/active-swap.
type ActiveSwapResponse struct {
	Active         bool   `json:"active"`
	OriginalSender string `json:"originalSender,omitempty"`
	TokenIn        string `json:"tokenIn,omitempty"`
	Fee            string `json:"fee,omitempty"`
}

// ErrorResponse carries a plain-text failure reason.
type ErrorResponse struct {
	Error string `json:"error"`
}
