package rpc_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"math/big"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Cogwheel-Validator/affiliate-swap-hub/affiliate/bank"
	"github.com/Cogwheel-Validator/affiliate-swap-hub/affiliate/contract"
	"github.com/Cogwheel-Validator/affiliate-swap-hub/affiliate/host"
	"github.com/Cogwheel-Validator/affiliate-swap-hub/affiliate/models"
	"github.com/Cogwheel-Validator/affiliate-swap-hub/affiliate/rpc"
	"github.com/Cogwheel-Validator/affiliate-swap-hub/affiliate/store"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/zeebo/assert"
)

type okValidator struct{}

func (okValidator) ValidateAddress(string) error { return nil }

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

func newTestServer(t *testing.T, engine host.SwapEngine) *httptest.Server {
	t.Helper()
	st := store.NewMemoryStore()
	c := contract.New(st, okValidator{}, "osmo1hub")
	_, err := c.Instantiate(nil)
	assert.NoError(t, err)
	ledger := bank.NewLedger("osmo1hub", zerolog.Nop())
	hub := host.New(c, ledger, engine, zerolog.Nop())

	mux := chi.NewMux()
	rpc.NewHubServer(hub).Routes(mux)
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func swapBody(t *testing.T, amount string) *bytes.Buffer {
	t.Helper()
	fee := "1"
	body, err := json.Marshal(models.SwapRequest{
		Sender:  "osmo1sender",
		Deposit: models.Coin{Denom: "uosmo", Amount: amount},
		Routes: []models.Route{
			{PoolID: 1, TokenOutDenom: "uion"},
		},
		TokenOutMinAmount: models.Coin{Denom: "uion", Amount: "1"},
		FeePercentage:     &fee,
		FeeCollector:      "osmo1collector",
	})
	assert.NoError(t, err)
	return bytes.NewBuffer(body)
}

func TestSwapEndpoint_Success(t *testing.T) {
	server := newTestServer(t, stubEngine{out: big.NewInt(980)})

	resp, err := http.Post(server.URL+"/v1/swap", "application/json", swapBody(t, "1000"))
	assert.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, resp.StatusCode, http.StatusOK)

	var result models.SwapResult
	assert.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	assert.Equal(t, result.OriginalSender, "osmo1sender")
	assert.Equal(t, result.Fee, "10")
	assert.Equal(t, result.SwapInAmount, "990")
	assert.Equal(t, result.TokenOutDenom, "uion")
	assert.Equal(t, result.TokenOutAmount, "980")
}

func TestSwapEndpoint_BadAmount(t *testing.T) {
	server := newTestServer(t, stubEngine{out: big.NewInt(1)})

	resp, err := http.Post(server.URL+"/v1/swap", "application/json", swapBody(t, "not-a-number"))
	assert.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, resp.StatusCode, http.StatusBadRequest)
}

func TestSwapEndpoint_MalformedBody(t *testing.T) {
	server := newTestServer(t, stubEngine{out: big.NewInt(1)})

	resp, err := http.Post(server.URL+"/v1/swap", "application/json", bytes.NewBufferString("{oops"))
	assert.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, resp.StatusCode, http.StatusBadRequest)
}

func TestSwapEndpoint_EngineFailureIsBadGateway(t *testing.T) {
	server := newTestServer(t, stubEngine{err: errors.New("slippage exceeded")})

	resp, err := http.Post(server.URL+"/v1/swap", "application/json", swapBody(t, "1000"))
	assert.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, resp.StatusCode, http.StatusBadGateway)

	var body models.ErrorResponse
	assert.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, body.Error, "swap failed: slippage exceeded")
}

func TestMaxFeeEndpoint(t *testing.T) {
	server := newTestServer(t, stubEngine{out: big.NewInt(1)})

	resp, err := http.Get(server.URL + "/v1/max-fee-percentage")
	assert.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, resp.StatusCode, http.StatusOK)

	var body models.MaxFeeResponse
	assert.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, body.MaxFeePercentage, "1.5")
}

func TestActiveSwapEndpoint_Idle(t *testing.T) {
	server := newTestServer(t, stubEngine{out: big.NewInt(1)})

	resp, err := http.Get(server.URL + "/v1/active-swap")
	assert.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, resp.StatusCode, http.StatusOK)

	var body models.ActiveSwapResponse
	assert.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.False(t, body.Active)
}
