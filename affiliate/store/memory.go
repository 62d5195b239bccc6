// Package store provides the contract's persistent slot storage: an
// in-memory implementation for tests and a bbolt-backed one for real runs.
package store

import (
	"math/big"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/Cogwheel-Validator/affiliate-swap-hub/affiliate/contract"
)

// MemoryStore keeps the two contract slots in process memory. Useful in tests
// and for ephemeral hubs.
type MemoryStore struct {
	mu         sync.Mutex
	maxFee     decimal.Decimal
	maxFeeSet  bool
	activeSwap *contract.PendingSwap
}

var _ contract.Store = (*MemoryStore)(nil)

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) MaxFeePercentage() (decimal.Decimal, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.maxFee, s.maxFeeSet, nil
}

func (s *MemoryStore) SetMaxFeePercentage(value decimal.Decimal) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.maxFee = value
	s.maxFeeSet = true
	return nil
}

func (s *MemoryStore) ActiveSwap() (*contract.PendingSwap, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.activeSwap == nil {
		return nil, false, nil
	}
	return clonePending(s.activeSwap), true, nil
}

func (s *MemoryStore) PutActiveSwap(swap *contract.PendingSwap) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.activeSwap = clonePending(swap)
	return nil
}

func (s *MemoryStore) DeleteActiveSwap() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.activeSwap = nil
	return nil
}

// clonePending copies a pending swap all the way down. The amounts and the
// route slice must not stay aliased between the stored record and its copies.
func clonePending(swap *contract.PendingSwap) *contract.PendingSwap {
	copied := *swap
	copied.Fee.Amount = cloneAmount(swap.Fee.Amount)
	copied.SwapMsg.TokenIn.Amount = cloneAmount(swap.SwapMsg.TokenIn.Amount)
	if swap.SwapMsg.Routes != nil {
		copied.SwapMsg.Routes = make([]contract.SwapAmountInRoute, len(swap.SwapMsg.Routes))
		copy(copied.SwapMsg.Routes, swap.SwapMsg.Routes)
	}
	return &copied
}

func cloneAmount(amount *big.Int) *big.Int {
	if amount == nil {
		return nil
	}
	return new(big.Int).Set(amount)
}
