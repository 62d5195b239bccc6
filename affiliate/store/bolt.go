package store

import (
	"encoding/json"
	"fmt"
	"math/big"

	"github.com/shopspring/decimal"
	bolt "go.etcd.io/bbolt"

	"github.com/Cogwheel-Validator/affiliate-swap-hub/affiliate/contract"
)

var (
	bucketContract = []byte("affiliate_swap")
	keyMaxFee      = []byte("max_fee")
	keyActiveSwap  = []byte("active_swap")
)

// storedCoin and friends are the serialized forms of the contract types.
// Amounts travel as decimal strings so the records stay readable and the
// big.Int range survives the round trip.
type storedCoin struct {
	Denom  string `json:"denom"`
	Amount string `json:"amount"`
}

type storedRoute struct {
	PoolID        uint64 `json:"pool_id"`
	TokenOutDenom string `json:"token_out_denom"`
}

type storedSwapMsg struct {
	Sender            string        `json:"sender"`
	Routes            []storedRoute `json:"routes"`
	TokenIn           storedCoin    `json:"token_in"`
	TokenOutMinAmount string        `json:"token_out_min_amount"`
}

type storedPendingSwap struct {
	OriginalSender string        `json:"original_sender"`
	FeeCollector   string        `json:"fee_collector"`
	Fee            storedCoin    `json:"fee"`
	SwapMsg        storedSwapMsg `json:"swap_msg"`
}

// BoltStore persists the contract slots in a single bbolt bucket.
type BoltStore struct {
	db *bolt.DB
}

var _ contract.Store = (*BoltStore)(nil)

// OpenBolt opens (or creates) the database file and ensures the bucket
// exists. The caller owns Close.
func OpenBolt(path string) (*BoltStore, error) {
	db, err := bolt.Open(path, 0o600, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open store %s: %w", path, err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketContract)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create store bucket: %w", err)
	}
	return &BoltStore{db: db}, nil
}

// Close releases the underlying database file.
func (s *BoltStore) Close() error {
	return s.db.Close()
}

func (s *BoltStore) MaxFeePercentage() (decimal.Decimal, bool, error) {
	var raw []byte
	err := s.db.View(func(tx *bolt.Tx) error {
		if v := tx.Bucket(bucketContract).Get(keyMaxFee); v != nil {
			raw = append([]byte(nil), v...)
		}
		return nil
	})
	if err != nil {
		return decimal.Zero, false, err
	}
	if raw == nil {
		return decimal.Zero, false, nil
	}
	value, err := decimal.NewFromString(string(raw))
	if err != nil {
		return decimal.Zero, false, fmt.Errorf("corrupt max fee record: %w", err)
	}
	return value, true, nil
}

func (s *BoltStore) SetMaxFeePercentage(value decimal.Decimal) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketContract).Put(keyMaxFee, []byte(value.String()))
	})
}

func (s *BoltStore) ActiveSwap() (*contract.PendingSwap, bool, error) {
	var raw []byte
	err := s.db.View(func(tx *bolt.Tx) error {
		if v := tx.Bucket(bucketContract).Get(keyActiveSwap); v != nil {
			raw = append([]byte(nil), v...)
		}
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	if raw == nil {
		return nil, false, nil
	}

	var stored storedPendingSwap
	if err := json.Unmarshal(raw, &stored); err != nil {
		return nil, false, fmt.Errorf("corrupt active swap record: %w", err)
	}
	swap, err := stored.toContract()
	if err != nil {
		return nil, false, err
	}
	return swap, true, nil
}

func (s *BoltStore) PutActiveSwap(swap *contract.PendingSwap) error {
	stored := storedPendingSwap{
		OriginalSender: swap.OriginalSender,
		FeeCollector:   swap.FeeCollector,
		Fee:            coinToStored(swap.Fee),
		SwapMsg: storedSwapMsg{
			Sender:            swap.SwapMsg.Sender,
			TokenIn:           coinToStored(swap.SwapMsg.TokenIn),
			TokenOutMinAmount: swap.SwapMsg.TokenOutMinAmount,
		},
	}
	for _, route := range swap.SwapMsg.Routes {
		stored.SwapMsg.Routes = append(stored.SwapMsg.Routes, storedRoute{
			PoolID:        route.PoolID,
			TokenOutDenom: route.TokenOutDenom,
		})
	}

	raw, err := json.Marshal(stored)
	if err != nil {
		return err
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketContract).Put(keyActiveSwap, raw)
	})
}

func (s *BoltStore) DeleteActiveSwap() error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketContract).Delete(keyActiveSwap)
	})
}

func (s storedPendingSwap) toContract() (*contract.PendingSwap, error) {
	fee, err := storedToCoin(s.Fee)
	if err != nil {
		return nil, fmt.Errorf("corrupt active swap record: %w", err)
	}
	tokenIn, err := storedToCoin(s.SwapMsg.TokenIn)
	if err != nil {
		return nil, fmt.Errorf("corrupt active swap record: %w", err)
	}

	swap := &contract.PendingSwap{
		OriginalSender: s.OriginalSender,
		FeeCollector:   s.FeeCollector,
		Fee:            fee,
		SwapMsg: contract.SwapExactAmountInMsg{
			Sender:            s.SwapMsg.Sender,
			TokenIn:           tokenIn,
			TokenOutMinAmount: s.SwapMsg.TokenOutMinAmount,
		},
	}
	for _, route := range s.SwapMsg.Routes {
		swap.SwapMsg.Routes = append(swap.SwapMsg.Routes, contract.SwapAmountInRoute{
			PoolID:        route.PoolID,
			TokenOutDenom: route.TokenOutDenom,
		})
	}
	return swap, nil
}

func coinToStored(c contract.Coin) storedCoin {
	amount := "0"
	if c.Amount != nil {
		amount = c.Amount.String()
	}
	return storedCoin{Denom: c.Denom, Amount: amount}
}

func storedToCoin(c storedCoin) (contract.Coin, error) {
	amount, ok := new(big.Int).SetString(c.Amount, 10)
	if !ok {
		return contract.Coin{}, fmt.Errorf("bad amount %q", c.Amount)
	}
	return contract.Coin{Denom: c.Denom, Amount: amount}, nil
}
