package host_test

import (
	"context"
	"errors"
	"math/big"
	"testing"

	"github.com/Cogwheel-Validator/affiliate-swap-hub/affiliate/bank"
	"github.com/Cogwheel-Validator/affiliate-swap-hub/affiliate/contract"
	"github.com/Cogwheel-Validator/affiliate-swap-hub/affiliate/host"
	"github.com/Cogwheel-Validator/affiliate-swap-hub/affiliate/store"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/zeebo/assert"
)

const (
	hubAddress       = "osmo1hub"
	senderAddress    = "osmo1sender"
	collectorAddress = "osmo1collector"
)

type okValidator struct{}

func (okValidator) ValidateAddress(string) error { return nil }

// stubEngine fills every swap with a fixed output, or fails with a fixed
// error.
type stubEngine struct {
	out *big.Int
	err error
}

func (e stubEngine) ExecuteSwap(ctx context.Context, msg contract.SwapExactAmountInMsg) (*big.Int, error) {
	if e.err != nil {
		return nil, e.err
	}
	return new(big.Int).Set(e.out), nil
}

func newHost(t *testing.T, engine host.SwapEngine) (*host.Host, *bank.Ledger, *store.MemoryStore) {
	t.Helper()
	st := store.NewMemoryStore()
	c := contract.New(st, okValidator{}, hubAddress)
	_, err := c.Instantiate(nil)
	assert.NoError(t, err)
	ledger := bank.NewLedger(hubAddress, zerolog.Nop())
	return host.New(c, ledger, engine, zerolog.Nop()), ledger, st
}

func swapRequest(amount int64, feePct string) (contract.MsgInfo, contract.SwapMsg) {
	info := contract.MsgInfo{
		Sender: senderAddress,
		Funds:  []contract.Coin{{Denom: "uosmo", Amount: big.NewInt(amount)}},
	}
	msg := contract.SwapMsg{
		Routes: []contract.SwapAmountInRoute{
			{PoolID: 1, TokenOutDenom: "uion"},
		},
		TokenOutMinAmount: contract.Coin{Denom: "uion", Amount: big.NewInt(1)},
		FeeCollector:      collectorAddress,
	}
	if feePct != "" {
		d := decimal.RequireFromString(feePct)
		msg.FeePercentage = &d
	}
	return info, msg
}

func TestExecuteSwap_FullCycle(t *testing.T) {
	hub, ledger, st := newHost(t, stubEngine{out: big.NewInt(980)})

	info, msg := swapRequest(1000, "1")
	outcome, err := hub.ExecuteSwap(context.Background(), info, msg)
	assert.NoError(t, err)

	// The reconciled response
	assert.Equal(t, outcome.Response.OriginalSender, senderAddress)
	assert.Equal(t, outcome.Response.Fee, "10")
	assert.Equal(t, outcome.Response.FeeCollector, collectorAddress)
	assert.Equal(t, outcome.Response.SwapInAmount, "990")
	assert.Equal(t, outcome.Response.TokenOutDenom, "uion")
	assert.Equal(t, outcome.Response.TokenOutAmount, "980")
	assert.Equal(t, len(outcome.Events), 1)

	// Money went where it should
	assert.Equal(t, ledger.Balance(collectorAddress, "uosmo").String(), "10")
	assert.Equal(t, ledger.Balance(senderAddress, "uion").String(), "980")
	assert.Equal(t, ledger.Balance(hubAddress, "uosmo").Sign(), 0)
	assert.Equal(t, ledger.Balance(hubAddress, "uion").Sign(), 0)

	// The slot is clear for the next swap
	_, ok, err := st.ActiveSwap()
	assert.NoError(t, err)
	assert.False(t, ok)
}

func TestExecuteSwap_ZeroFeeSingleTransfer(t *testing.T) {
	hub, ledger, _ := newHost(t, stubEngine{out: big.NewInt(9)})

	// 10 * 1.5% floors to zero: no fee transfer at all
	info, msg := swapRequest(10, "")
	outcome, err := hub.ExecuteSwap(context.Background(), info, msg)
	assert.NoError(t, err)

	assert.Equal(t, outcome.Response.Fee, "0")
	assert.Equal(t, ledger.Balance(collectorAddress, "uosmo").Sign(), 0)
	assert.Equal(t, ledger.Balance(senderAddress, "uion").String(), "9")
}

func TestExecuteSwap_EngineFailureClearsSlotKeepsFee(t *testing.T) {
	hub, ledger, st := newHost(t, stubEngine{err: errors.New("slippage exceeded")})

	info, msg := swapRequest(1000, "1")
	_, err := hub.ExecuteSwap(context.Background(), info, msg)

	// The engine reason comes back verbatim inside the failure
	var failed *contract.FailedSwapError
	assert.True(t, errors.As(err, &failed))
	assert.Equal(t, failed.Reason, "slippage exceeded")

	// The fee transfer ran before the swap; there is no rollback for it
	assert.Equal(t, ledger.Balance(collectorAddress, "uosmo").String(), "10")
	// The unswapped remainder never left the hub account
	assert.Equal(t, ledger.Balance(hubAddress, "uosmo").String(), "990")

	// The slot cleared, the next swap may run
	_, ok, _ := st.ActiveSwap()
	assert.False(t, ok)

	info, msg = swapRequest(100, "1")
	_, err = hub.ExecuteSwap(context.Background(), info, msg)
	assert.Error(t, err) // still the stub failure, but the cycle ran
}

func TestExecuteSwap_ValidationFailureMovesNoFunds(t *testing.T) {
	hub, ledger, _ := newHost(t, stubEngine{out: big.NewInt(1)})

	// Two denoms attached: rejected before the deposit books
	info := contract.MsgInfo{
		Sender: senderAddress,
		Funds: []contract.Coin{
			{Denom: "uosmo", Amount: big.NewInt(100)},
			{Denom: "uion", Amount: big.NewInt(100)},
		},
	}
	_, msg := swapRequest(100, "1")
	_, err := hub.ExecuteSwap(context.Background(), info, msg)
	assert.True(t, errors.Is(err, contract.ErrTooManyDenoms))

	assert.Equal(t, ledger.Balance(hubAddress, "uosmo").Sign(), 0)
	assert.Equal(t, ledger.Balance(hubAddress, "uion").Sign(), 0)
}

func TestExecuteSwap_SecondSwapAfterSuccess(t *testing.T) {
	hub, _, _ := newHost(t, stubEngine{out: big.NewInt(50)})

	info, msg := swapRequest(100, "1")
	_, err := hub.ExecuteSwap(context.Background(), info, msg)
	assert.NoError(t, err)

	info, msg = swapRequest(200, "1")
	outcome, err := hub.ExecuteSwap(context.Background(), info, msg)
	assert.NoError(t, err)
	assert.Equal(t, outcome.Response.SwapInAmount, "198")
}
