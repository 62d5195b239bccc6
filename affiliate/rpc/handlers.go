package rpc

import (
	"encoding/json"
	"errors"
	"math/big"
	"net/http"
	"strconv"

	"github.com/Cogwheel-Validator/affiliate-swap-hub/affiliate/contract"
	"github.com/Cogwheel-Validator/affiliate-swap-hub/affiliate/host"
	"github.com/Cogwheel-Validator/affiliate-swap-hub/affiliate/models"
	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
)

// HubServer exposes the swap hub over plain JSON endpoints
type HubServer struct {
	hub *host.Host
}

// NewHubServer creates a new HubServer
func NewHubServer(hub *host.Host) *HubServer {
	return &HubServer{hub: hub}
}

// Routes mounts the hub endpoints on the given router
func (s *HubServer) Routes(mux *chi.Mux) {
	mux.Post("/v1/swap", s.Swap)
	mux.Get("/v1/max-fee-percentage", s.MaxFeePercentage)
	mux.Get("/v1/active-swap", s.ActiveSwap)
}

// Swap handles POST /v1/swap: it runs one full swap cycle and answers with
// the reconciled result.
func (s *HubServer) Swap(w http.ResponseWriter, r *http.Request) {
	var req models.SwapRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body: "+err.Error())
		return
	}

	info, msg, err := convertSwapRequest(&req)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	swapsStarted.Inc()
	outcome, err := s.hub.ExecuteSwap(r.Context(), info, msg)
	if err != nil {
		swapsFailed.Inc()
		writeError(w, statusForError(err), err.Error())
		return
	}
	swapsCompleted.Inc()
	if fee, err := strconv.ParseFloat(outcome.Response.Fee, 64); err == nil && fee > 0 {
		feesCharged.WithLabelValues(outcome.Response.SwapInDenom).Add(fee)
	}

	writeJSON(w, http.StatusOK, convertSwapOutcome(outcome))
}

// MaxFeePercentage handles GET /v1/max-fee-percentage
func (s *HubServer) MaxFeePercentage(w http.ResponseWriter, r *http.Request) {
	maxFee, err := s.hub.Contract().MaxFeePercentage()
	if err != nil {
		writeError(w, statusForError(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, models.MaxFeeResponse{MaxFeePercentage: maxFee.String()})
}

// ActiveSwap handles GET /v1/active-swap
func (s *HubServer) ActiveSwap(w http.ResponseWriter, r *http.Request) {
	pending, ok, err := s.hub.Contract().ActiveSwap()
	if err != nil {
		writeError(w, statusForError(err), err.Error())
		return
	}
	resp := models.ActiveSwapResponse{Active: ok}
	if ok {
		resp.OriginalSender = pending.OriginalSender
		resp.TokenIn = pending.SwapMsg.TokenIn.String()
		resp.Fee = pending.Fee.String()
	}
	writeJSON(w, http.StatusOK, resp)
}

// CONVERT FUNCTIONS
// These convert between API models and the contract's internal types

func convertSwapRequest(req *models.SwapRequest) (contract.MsgInfo, contract.SwapMsg, error) {
	deposit, err := convertCoin(req.Deposit)
	if err != nil {
		return contract.MsgInfo{}, contract.SwapMsg{}, err
	}
	minOut, err := convertCoin(req.TokenOutMinAmount)
	if err != nil {
		return contract.MsgInfo{}, contract.SwapMsg{}, err
	}

	routes := make([]contract.SwapAmountInRoute, len(req.Routes))
	for i, r := range req.Routes {
		routes[i] = contract.SwapAmountInRoute{
			PoolID:        r.PoolID,
			TokenOutDenom: r.TokenOutDenom,
		}
	}

	var feePct *decimal.Decimal
	if req.FeePercentage != nil {
		parsed, err := decimal.NewFromString(*req.FeePercentage)
		if err != nil {
			return contract.MsgInfo{}, contract.SwapMsg{}, errors.New("malformed feePercentage: " + err.Error())
		}
		feePct = &parsed
	}

	info := contract.MsgInfo{
		Sender: req.Sender,
		Funds:  []contract.Coin{deposit},
	}
	msg := contract.SwapMsg{
		Routes:            routes,
		TokenOutMinAmount: minOut,
		FeePercentage:     feePct,
		FeeCollector:      req.FeeCollector,
	}
	return info, msg, nil
}

func convertCoin(c models.Coin) (contract.Coin, error) {
	amount, ok := new(big.Int).SetString(c.Amount, 10)
	if !ok {
		return contract.Coin{}, errors.New("malformed coin amount " + c.Amount)
	}
	return contract.Coin{Denom: c.Denom, Amount: amount}, nil
}

func convertSwapOutcome(outcome *host.SwapOutcome) models.SwapResult {
	return models.SwapResult{
		OriginalSender: outcome.Response.OriginalSender,
		Fee:            outcome.Response.Fee,
		FeeCollector:   outcome.Response.FeeCollector,
		SwapInDenom:    outcome.Response.SwapInDenom,
		SwapInAmount:   outcome.Response.SwapInAmount,
		TokenOutDenom:  outcome.Response.TokenOutDenom,
		TokenOutAmount: outcome.Response.TokenOutAmount,
	}
}

// statusForError maps the contract error taxonomy onto HTTP status codes:
// caller mistakes are 400s, the busy slot is a conflict, an engine-reported
// swap failure is an upstream error, anything else is internal.
func statusForError(err error) int {
	var invalidAddr *contract.InvalidAddressError
	var failedSwap *contract.FailedSwapError

	switch {
	case errors.Is(err, contract.ErrNoFunds),
		errors.Is(err, contract.ErrTooManyDenoms),
		errors.Is(err, contract.ErrInvalidMaxFeePercentage),
		errors.Is(err, contract.ErrAmountOverflow),
		errors.As(err, &invalidAddr):
		return http.StatusBadRequest
	case errors.Is(err, contract.ErrActiveSwapExists):
		return http.StatusConflict
	case errors.As(err, &failedSwap):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		Logger.Error().Err(err).Msg("Failed to encode response body")
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, models.ErrorResponse{Error: msg})
}
