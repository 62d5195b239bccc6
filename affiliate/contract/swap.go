package contract

import (
	"github.com/shopspring/decimal"
)

// MsgInfo describes the inbound call: who sent it and which coins were
// attached to it.
type MsgInfo struct {
	Sender string
	Funds  []Coin
}

// SwapMsg is the execute-swap request.
type SwapMsg struct {
	Routes            []SwapAmountInRoute
	TokenOutMinAmount Coin
	FeePercentage     *decimal.Decimal
	FeeCollector      string
}

// Swap validates the request, deducts the affiliate fee, and schedules the
// fee transfer followed by the pool manager swap. The pending swap slot is
// filled before returning; HandleReply clears it when the completion arrives.
//
// The response carries one message when the fee rounds to zero (swap only)
// and two otherwise (fee transfer first). Callers depend on that count.
func (c *Contract) Swap(info MsgInfo, msg SwapMsg) (*Response, error) {
	// Reentrancy guard. The environment serializes calls and never re-enters
	// before completion, but the invariant is enforced here independently.
	if _, ok, err := c.store.ActiveSwap(); err != nil {
		return nil, err
	} else if ok {
		return nil, ErrActiveSwapExists
	}

	deposit, err := oneCoin(info.Funds)
	if err != nil {
		return nil, err
	}

	if err := c.validator.ValidateAddress(msg.FeeCollector); err != nil {
		return nil, &InvalidAddressError{Address: msg.FeeCollector, Err: err}
	}

	maxFee, ok, err := c.store.MaxFeePercentage()
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrUnexpected
	}

	fee, remaining, err := CalculateFee(deposit.Amount, msg.FeePercentage, maxFee)
	if err != nil {
		return nil, err
	}

	resp := &Response{
		Attributes: []Attribute{{Key: "method", Value: "swap"}},
	}

	// Skip the fee transfer entirely when it rounds to zero.
	if fee.Sign() > 0 {
		resp.Messages = append(resp.Messages, SubMsg{
			Msg: BankSendMsg{
				ToAddress: msg.FeeCollector,
				Amount:    []Coin{{Denom: deposit.Denom, Amount: fee}},
			},
		})
	}

	swapMsg := SwapExactAmountInMsg{
		Sender:            c.self,
		Routes:            msg.Routes,
		TokenIn:           Coin{Denom: deposit.Denom, Amount: remaining},
		TokenOutMinAmount: msg.TokenOutMinAmount.Amount.String(),
	}
	// Reply on success and failure both: a failed swap must still clear the
	// pending slot.
	resp.Messages = append(resp.Messages, SubMsg{
		Msg:         swapMsg,
		ReplyID:     SwapReplyID,
		ReplyAlways: true,
	})

	pending := &PendingSwap{
		OriginalSender: info.Sender,
		FeeCollector:   msg.FeeCollector,
		Fee:            Coin{Denom: deposit.Denom, Amount: fee},
		SwapMsg:        swapMsg,
	}
	if err := c.store.PutActiveSwap(pending); err != nil {
		return nil, err
	}

	return resp, nil
}

// oneCoin enforces the single-denomination deposit rule: exactly one attached
// coin with a positive amount.
func oneCoin(funds []Coin) (Coin, error) {
	switch len(funds) {
	case 0:
		return Coin{}, ErrNoFunds
	case 1:
		coin := funds[0]
		if coin.Amount == nil || coin.Amount.Sign() <= 0 {
			return Coin{}, ErrNoFunds
		}
		return coin, nil
	default:
		return Coin{}, ErrTooManyDenoms
	}
}
