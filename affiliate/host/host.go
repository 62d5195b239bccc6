// Package host plays the role of the execution environment around the
// contract: it dispatches the scheduled messages in their emitted order, runs
// the swap through the engine, and delivers the completion reply back to the
// contract exactly once — for success and failure alike.
package host

import (
	"context"
	"encoding/json"
	"fmt"
	"math/big"

	"github.com/rs/zerolog"

	"github.com/Cogwheel-Validator/affiliate-swap-hub/affiliate/contract"
)

// Bank settles the transfer messages the contract schedules and books the
// swap settlement on the hub account.
type Bank interface {
	// Deposit books coins a caller attached to an execute call onto the hub
	// account. Runs before the contract sees the call, like funds moving to
	// a contract account on-chain.
	Deposit(ctx context.Context, from string, coins []contract.Coin) error
	Send(ctx context.Context, to string, coins []contract.Coin) error
	// Settle books a completed swap against the hub account: the input coin
	// leaves, the output coin arrives.
	Settle(ctx context.Context, tokenIn, tokenOut contract.Coin) error
}

// SwapEngine executes the pool manager swap and reports the output amount of
// the route's final denomination, or an error carrying the failure reason.
type SwapEngine interface {
	ExecuteSwap(ctx context.Context, msg contract.SwapExactAmountInMsg) (*big.Int, error)
}

// SwapOutcome is the fully reconciled result of one swap cycle.
type SwapOutcome struct {
	Response contract.SwapResponse
	Events   []contract.Event
}

// Host wires the contract to its collaborators.
type Host struct {
	contract *contract.Contract
	bank     Bank
	engine   SwapEngine
	log      zerolog.Logger
}

// New creates a host around the given contract and capabilities.
func New(c *contract.Contract, bank Bank, engine SwapEngine, log zerolog.Logger) *Host {
	return &Host{contract: c, bank: bank, engine: engine, log: log}
}

// Contract exposes the wrapped contract for queries.
func (h *Host) Contract() *contract.Contract { return h.contract }

// ExecuteSwap runs one full orchestrate-and-complete cycle.
//
// There is no cross-message rollback here: once the fee transfer settles, a
// later swap failure does not claw it back. Every dispatch failure after
// orchestration still goes through the failure-reply path, so the pending
// slot always ends up clear.
func (h *Host) ExecuteSwap(ctx context.Context, info contract.MsgInfo, msg contract.SwapMsg) (*SwapOutcome, error) {
	resp, err := h.contract.Swap(info, msg)
	if err != nil {
		// Validation failed before any state or funds moved; the attached
		// coins never leave the caller.
		return nil, err
	}

	if err := h.bank.Deposit(ctx, info.Sender, info.Funds); err != nil {
		return nil, h.abortSwap(fmt.Sprintf("deposit failed: %v", err))
	}

	for _, sub := range resp.Messages {
		switch m := sub.Msg.(type) {
		case contract.BankSendMsg:
			if err := h.bank.Send(ctx, m.ToAddress, m.Amount); err != nil {
				h.log.Error().Err(err).Str("to", m.ToAddress).Msg("fee transfer failed")
				return nil, h.abortSwap(fmt.Sprintf("fee transfer failed: %v", err))
			}
		case contract.SwapExactAmountInMsg:
			if sub.ReplyID != contract.SwapReplyID || !sub.ReplyAlways {
				return nil, fmt.Errorf("%w: swap scheduled without completion reply", contract.ErrUnexpected)
			}
			return h.runSwap(ctx, m)
		default:
			return nil, fmt.Errorf("%w: unknown scheduled message %T", contract.ErrUnexpected, sub.Msg)
		}
	}

	// The orchestrator always schedules the swap message last, so falling
	// through the loop means it never did.
	return nil, fmt.Errorf("%w: no swap message scheduled", contract.ErrUnexpected)
}

// runSwap executes the swap sub-message and delivers its reply.
func (h *Host) runSwap(ctx context.Context, msg contract.SwapExactAmountInMsg) (*SwapOutcome, error) {
	amountOut, err := h.engine.ExecuteSwap(ctx, msg)
	if err != nil {
		h.log.Warn().Err(err).Str("token_in", msg.TokenIn.String()).Msg("swap engine reported failure")
		return nil, h.deliverReply(ctx, contract.Reply{
			ID:     contract.SwapReplyID,
			Result: contract.ReplyResult{Err: err.Error()},
		})
	}

	if len(msg.Routes) == 0 {
		return nil, fmt.Errorf("%w: engine filled a swap with no route", contract.ErrUnexpected)
	}
	tokenOut := contract.Coin{
		Denom:  msg.Routes[len(msg.Routes)-1].TokenOutDenom,
		Amount: amountOut,
	}
	if err := h.bank.Settle(ctx, msg.TokenIn, tokenOut); err != nil {
		h.log.Error().Err(err).Msg("swap settlement failed")
		return nil, h.deliverReply(ctx, contract.Reply{
			ID:     contract.SwapReplyID,
			Result: contract.ReplyResult{Err: fmt.Sprintf("settlement failed: %v", err)},
		})
	}

	payload, err := json.Marshal(contract.MsgSwapExactAmountInResponse{
		TokenOutAmount: amountOut.String(),
	})
	if err != nil {
		return nil, err
	}
	return h.outcome(h.deliverReplyResponse(ctx, contract.Reply{
		ID:     contract.SwapReplyID,
		Result: contract.ReplyResult{Ok: &contract.ReplyData{Data: payload}},
	}))
}

// abortSwap tears the pending slot down through the regular failure-reply
// path and surfaces the reason.
func (h *Host) abortSwap(reason string) error {
	return h.deliverReply(context.Background(), contract.Reply{
		ID:     contract.SwapReplyID,
		Result: contract.ReplyResult{Err: reason},
	})
}

func (h *Host) deliverReply(ctx context.Context, reply contract.Reply) error {
	_, err := h.deliverReplyResponse(ctx, reply)
	return err
}

// deliverReplyResponse hands the reply to the contract and dispatches the
// payout it schedules.
func (h *Host) deliverReplyResponse(ctx context.Context, reply contract.Reply) (*contract.Response, error) {
	resp, err := h.contract.HandleReply(reply)
	if err != nil {
		return nil, err
	}
	for _, sub := range resp.Messages {
		send, ok := sub.Msg.(contract.BankSendMsg)
		if !ok {
			return nil, fmt.Errorf("%w: unknown reply message %T", contract.ErrUnexpected, sub.Msg)
		}
		if err := h.bank.Send(ctx, send.ToAddress, send.Amount); err != nil {
			// The slot is already clear; the payout itself is stuck and
			// needs operator attention.
			h.log.Error().Err(err).Str("to", send.ToAddress).Msg("payout failed after completed swap")
			return nil, fmt.Errorf("payout failed: %w", err)
		}
	}
	return resp, nil
}

func (h *Host) outcome(resp *contract.Response, err error) (*SwapOutcome, error) {
	if err != nil {
		return nil, err
	}
	var swapResp contract.SwapResponse
	if err := json.Unmarshal(resp.Data, &swapResp); err != nil {
		return nil, err
	}
	return &SwapOutcome{Response: swapResp, Events: resp.Events}, nil
}
