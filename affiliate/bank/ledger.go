// Package bank tracks the hub's token inventory and settles the transfers
// the contract schedules: fee payouts to collectors and swap-output payouts
// to senders.
package bank

import (
	"context"
	"fmt"
	"math/big"
	"sync"

	"github.com/rs/zerolog"

	"github.com/Cogwheel-Validator/affiliate-swap-hub/affiliate/contract"
)

// Ledger is an in-process balance ledger: address -> denom -> amount. The hub
// account funds every outgoing transfer, so sends debit the hub and credit
// the recipient.
type Ledger struct {
	mu       sync.Mutex
	hub      string
	balances map[string]map[string]*big.Int
	log      zerolog.Logger
}

// NewLedger creates a ledger with the given hub account.
func NewLedger(hubAddress string, log zerolog.Logger) *Ledger {
	return &Ledger{
		hub:      hubAddress,
		balances: make(map[string]map[string]*big.Int),
		log:      log,
	}
}

// Credit adds coins to an account. Used to seed the hub inventory.
func (l *Ledger) Credit(address string, coins []contract.Coin) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, coin := range coins {
		l.credit(address, coin)
	}
}

// Deposit books coins attached to an execute call onto the hub account.
func (l *Ledger) Deposit(ctx context.Context, from string, coins []contract.Coin) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, coin := range coins {
		if coin.Amount == nil || coin.Amount.Sign() <= 0 {
			return fmt.Errorf("bank: invalid deposit amount %s", coin)
		}
		l.credit(l.hub, coin)
		l.log.Info().Str("from", from).Str("amount", coin.String()).Msg("deposit")
	}
	return nil
}

// Send moves coins from the hub account to the recipient. It fails without
// partial effect when any coin exceeds the hub's balance.
func (l *Ledger) Send(ctx context.Context, to string, coins []contract.Coin) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	// Check the whole batch before touching balances.
	for _, coin := range coins {
		if coin.Amount == nil || coin.Amount.Sign() <= 0 {
			return fmt.Errorf("bank: invalid send amount %s", coin)
		}
		if l.balance(l.hub, coin.Denom).Cmp(coin.Amount) < 0 {
			return fmt.Errorf("bank: insufficient hub balance for %s", coin)
		}
	}

	for _, coin := range coins {
		l.balance(l.hub, coin.Denom).Sub(l.balance(l.hub, coin.Denom), coin.Amount)
		l.credit(to, coin)
		l.log.Info().
			Str("to", to).
			Str("amount", coin.String()).
			Msg("bank send")
	}
	return nil
}

// Settle books a completed swap on the hub account: the input coin leaves
// the inventory, the output coin arrives.
func (l *Ledger) Settle(ctx context.Context, tokenIn, tokenOut contract.Coin) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if tokenIn.Amount == nil || tokenOut.Amount == nil {
		return fmt.Errorf("bank: settlement with nil amount")
	}
	if l.balance(l.hub, tokenIn.Denom).Cmp(tokenIn.Amount) < 0 {
		return fmt.Errorf("bank: insufficient hub balance for swap input %s", tokenIn)
	}

	l.balance(l.hub, tokenIn.Denom).Sub(l.balance(l.hub, tokenIn.Denom), tokenIn.Amount)
	l.credit(l.hub, tokenOut)
	l.log.Info().
		Str("token_in", tokenIn.String()).
		Str("token_out", tokenOut.String()).
		Msg("swap settled")
	return nil
}

// Balance reports an account's balance in one denom.
func (l *Ledger) Balance(address, denom string) *big.Int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return new(big.Int).Set(l.balance(address, denom))
}

func (l *Ledger) balance(address, denom string) *big.Int {
	denoms, ok := l.balances[address]
	if !ok {
		denoms = make(map[string]*big.Int)
		l.balances[address] = denoms
	}
	amount, ok := denoms[denom]
	if !ok {
		amount = big.NewInt(0)
		denoms[denom] = amount
	}
	return amount
}

func (l *Ledger) credit(address string, coin contract.Coin) {
	if coin.Amount == nil {
		return
	}
	l.balance(address, coin.Denom).Add(l.balance(address, coin.Denom), coin.Amount)
}
