package contract

import (
	"encoding/json"
	"fmt"
	"math/big"
)

// EventTypeAffiliateSwap tags the audit event emitted for every completed
// swap.
const EventTypeAffiliateSwap = "affiliate_swap"

// HandleReply consumes the completion notification for the in-flight swap.
// The pending slot is deleted before the outcome branch runs, so the slot is
// free again whether the swap succeeded or failed.
//
// On success it schedules the payout of the full swap output to the original
// sender and attaches the SwapResponse data plus the affiliate_swap audit
// event. On failure it surfaces the engine's reason verbatim.
func (c *Contract) HandleReply(reply Reply) (*Response, error) {
	if reply.ID != SwapReplyID {
		return nil, fmt.Errorf("%w: reply id %d", ErrUnexpected, reply.ID)
	}

	pending, ok, err := c.store.ActiveSwap()
	if err != nil {
		return nil, err
	}
	if !ok {
		// A reply without a pending swap means the orchestration invariant
		// broke somewhere outside this contract.
		return nil, fmt.Errorf("%w: reply without active swap", ErrUnexpected)
	}

	if err := c.store.DeleteActiveSwap(); err != nil {
		return nil, err
	}

	if reply.Result.Err != "" {
		return nil, &FailedSwapError{Reason: reply.Result.Err}
	}
	// A success with no result payload is a decoding problem, not a swap
	// failure.
	if reply.Result.Ok == nil {
		return nil, fmt.Errorf("malformed swap reply payload: no result data")
	}

	var swapResp MsgSwapExactAmountInResponse
	if err := json.Unmarshal(reply.Result.Ok.Data, &swapResp); err != nil {
		return nil, fmt.Errorf("malformed swap reply payload: %w", err)
	}
	tokenOutAmount, parsed := new(big.Int).SetString(swapResp.TokenOutAmount, 10)
	if !parsed {
		return nil, fmt.Errorf("malformed swap reply payload: bad token_out_amount %q", swapResp.TokenOutAmount)
	}

	// The output denom is whatever the last hop of the recorded route leaves
	// behind. An empty route cannot have produced a swap result.
	if len(pending.SwapMsg.Routes) == 0 {
		return nil, fmt.Errorf("%w: completed swap recorded no route", ErrUnexpected)
	}
	tokenOut := Coin{
		Denom:  pending.SwapMsg.Routes[len(pending.SwapMsg.Routes)-1].TokenOutDenom,
		Amount: tokenOutAmount,
	}
	tokenIn := pending.SwapMsg.TokenIn

	data, err := json.Marshal(SwapResponse{
		OriginalSender: pending.OriginalSender,
		Fee:            pending.Fee.Amount.String(),
		FeeCollector:   pending.FeeCollector,
		SwapInDenom:    tokenIn.Denom,
		SwapInAmount:   tokenIn.Amount.String(),
		TokenOutDenom:  tokenOut.Denom,
		TokenOutAmount: tokenOut.Amount.String(),
	})
	if err != nil {
		return nil, err
	}

	return &Response{
		Messages: []SubMsg{{
			Msg: BankSendMsg{
				ToAddress: pending.OriginalSender,
				Amount:    []Coin{tokenOut},
			},
		}},
		Events: []Event{{
			Type: EventTypeAffiliateSwap,
			Attributes: []Attribute{
				{Key: "sender", Value: pending.OriginalSender},
				{Key: "fee", Value: pending.Fee.String()},
				{Key: "fee_collector", Value: pending.FeeCollector},
				{Key: "swap_token_in", Value: tokenIn.String()},
				{Key: "token_out", Value: tokenOut.String()},
			},
		}},
		Data: data,
	}, nil
}
