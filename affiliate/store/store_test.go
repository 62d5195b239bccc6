package store_test

import (
	"math/big"
	"path/filepath"
	"testing"

	"github.com/Cogwheel-Validator/affiliate-swap-hub/affiliate/contract"
	"github.com/Cogwheel-Validator/affiliate-swap-hub/affiliate/store"
	"github.com/shopspring/decimal"
	"github.com/zeebo/assert"
)

func pendingFixture() *contract.PendingSwap {
	return &contract.PendingSwap{
		OriginalSender: "osmo1sender",
		FeeCollector:   "osmo1collector",
		Fee:            contract.Coin{Denom: "uosmo", Amount: big.NewInt(1)},
		SwapMsg: contract.SwapExactAmountInMsg{
			Sender: "osmo1hub",
			Routes: []contract.SwapAmountInRoute{
				{PoolID: 1, TokenOutDenom: "uatom"},
				{PoolID: 2, TokenOutDenom: "uion"},
			},
			TokenIn:           contract.Coin{Denom: "uosmo", Amount: big.NewInt(99)},
			TokenOutMinAmount: "95",
		},
	}
}

// exerciseStore runs the slot lifecycle against any Store implementation.
func exerciseStore(t *testing.T, st contract.Store) {
	t.Helper()

	// Fresh store holds nothing
	_, ok, err := st.MaxFeePercentage()
	assert.NoError(t, err)
	assert.False(t, ok)
	_, ok, err = st.ActiveSwap()
	assert.NoError(t, err)
	assert.False(t, ok)

	// Max fee round trip
	assert.NoError(t, st.SetMaxFeePercentage(decimal.RequireFromString("1.5")))
	maxFee, ok, err := st.MaxFeePercentage()
	assert.NoError(t, err)
	assert.True(t, ok)
	assert.True(t, maxFee.Equal(decimal.RequireFromString("1.5")))

	// Pending swap round trip, all fields intact
	assert.NoError(t, st.PutActiveSwap(pendingFixture()))
	got, ok, err := st.ActiveSwap()
	assert.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, got.OriginalSender, "osmo1sender")
	assert.Equal(t, got.FeeCollector, "osmo1collector")
	assert.Equal(t, got.Fee.String(), "1uosmo")
	assert.Equal(t, got.SwapMsg.Sender, "osmo1hub")
	assert.Equal(t, got.SwapMsg.TokenIn.String(), "99uosmo")
	assert.Equal(t, got.SwapMsg.TokenOutMinAmount, "95")
	assert.Equal(t, len(got.SwapMsg.Routes), 2)
	assert.Equal(t, got.SwapMsg.Routes[1].PoolID, uint64(2))
	assert.Equal(t, got.SwapMsg.Routes[1].TokenOutDenom, "uion")

	// Delete frees the slot; deleting again is harmless
	assert.NoError(t, st.DeleteActiveSwap())
	_, ok, err = st.ActiveSwap()
	assert.NoError(t, err)
	assert.False(t, ok)
	assert.NoError(t, st.DeleteActiveSwap())
}

func TestMemoryStore(t *testing.T) {
	exerciseStore(t, store.NewMemoryStore())
}

func TestMemoryStore_CopiesOnRead(t *testing.T) {
	st := store.NewMemoryStore()
	assert.NoError(t, st.PutActiveSwap(pendingFixture()))

	got, _, err := st.ActiveSwap()
	assert.NoError(t, err)
	got.OriginalSender = "mutated"
	got.Fee.Amount.SetInt64(999)
	got.SwapMsg.TokenIn.Amount.SetInt64(999)
	got.SwapMsg.Routes[1].TokenOutDenom = "mutated"

	again, _, err := st.ActiveSwap()
	assert.NoError(t, err)
	assert.Equal(t, again.OriginalSender, "osmo1sender")
	assert.Equal(t, again.Fee.String(), "1uosmo")
	assert.Equal(t, again.SwapMsg.TokenIn.String(), "99uosmo")
	assert.Equal(t, again.SwapMsg.Routes[1].TokenOutDenom, "uion")
}

func TestMemoryStore_CopiesOnWrite(t *testing.T) {
	st := store.NewMemoryStore()
	pending := pendingFixture()
	assert.NoError(t, st.PutActiveSwap(pending))

	pending.Fee.Amount.SetInt64(999)
	pending.SwapMsg.Routes[0].TokenOutDenom = "mutated"

	got, _, err := st.ActiveSwap()
	assert.NoError(t, err)
	assert.Equal(t, got.Fee.String(), "1uosmo")
	assert.Equal(t, got.SwapMsg.Routes[0].TokenOutDenom, "uatom")
}

func TestBoltStore(t *testing.T) {
	st, err := store.OpenBolt(filepath.Join(t.TempDir(), "hub.db"))
	assert.NoError(t, err)
	defer st.Close()

	exerciseStore(t, st)
}

func TestBoltStore_SurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hub.db")

	st, err := store.OpenBolt(path)
	assert.NoError(t, err)
	assert.NoError(t, st.SetMaxFeePercentage(decimal.RequireFromString("2.5")))
	assert.NoError(t, st.PutActiveSwap(pendingFixture()))
	assert.NoError(t, st.Close())

	// Same file, fresh handle: both slots are still there
	st, err = store.OpenBolt(path)
	assert.NoError(t, err)
	defer st.Close()

	maxFee, ok, err := st.MaxFeePercentage()
	assert.NoError(t, err)
	assert.True(t, ok)
	assert.True(t, maxFee.Equal(decimal.RequireFromString("2.5")))

	pending, ok, err := st.ActiveSwap()
	assert.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, pending.SwapMsg.TokenIn.String(), "99uosmo")
}
