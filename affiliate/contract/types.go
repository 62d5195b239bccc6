package contract

import (
	"math/big"
)

// SwapReplyID is the correlation identifier attached to the swap sub-message.
// The hub runs at most one swap at a time, so a single fixed id is enough —
// there is deliberately no multiplexing of concurrent swaps.
const SwapReplyID uint64 = 1

// Coin is a token amount paired with its denomination.
type Coin struct {
	Denom  string   `json:"denom"`
	Amount *big.Int `json:"amount"`
}

// NewCoin creates a coin from an int64 amount. Test and wiring helper.
func NewCoin(amount int64, denom string) Coin {
	return Coin{Denom: denom, Amount: big.NewInt(amount)}
}

// String renders the coin in the compact chain format, e.g. "99uosmo".
func (c Coin) String() string {
	if c.Amount == nil {
		return "0" + c.Denom
	}
	return c.Amount.String() + c.Denom
}

// SwapAmountInRoute is a single pool hop: swap whatever came in through the
// pool and leave with TokenOutDenom.
type SwapAmountInRoute struct {
	PoolID        uint64 `json:"pool_id"`
	TokenOutDenom string `json:"token_out_denom"`
}

// Msg is a message scheduled by the contract for the host environment to
// execute. The set is closed: bank sends and poolmanager swaps.
type Msg interface {
	isMsg()
}

// BankSendMsg transfers coins to a single recipient.
type BankSendMsg struct {
	ToAddress string `json:"to_address"`
	Amount    []Coin `json:"amount"`
}

func (BankSendMsg) isMsg() {}

// SwapExactAmountInMsg asks the pool manager to swap TokenIn along Routes.
// Sender is the hub's own account so the output lands here before the payout.
type SwapExactAmountInMsg struct {
	Sender            string              `json:"sender"`
	Routes            []SwapAmountInRoute `json:"routes"`
	TokenIn           Coin                `json:"token_in"`
	TokenOutMinAmount string              `json:"token_out_min_amount"`
}

func (SwapExactAmountInMsg) isMsg() {}

// SubMsg wraps a scheduled message with its reply request. When ReplyAlways is
// set the host must deliver a completion reply for both success and failure.
type SubMsg struct {
	Msg         Msg
	ReplyID     uint64
	ReplyAlways bool
}

// Attribute is a key/value pair attached to responses and events for
// off-chain observers.
type Attribute struct {
	Key   string
	Value string
}

// Event is a typed group of attributes emitted with a response.
type Event struct {
	Type       string
	Attributes []Attribute
}

// Response carries everything a contract operation produced: scheduled
// messages in execution order, response attributes, audit events, and an
// optional machine-readable data payload.
type Response struct {
	Messages   []SubMsg
	Attributes []Attribute
	Events     []Event
	Data       []byte
}

// PendingSwap is the durable record of the one in-flight swap. It is the only
// state that survives the gap between scheduling the swap and receiving its
// completion reply.
type PendingSwap struct {
	OriginalSender string
	FeeCollector   string
	Fee            Coin
	SwapMsg        SwapExactAmountInMsg
}

// Reply is the completion notification delivered by the host environment
// after the swap sub-message finished executing.
type Reply struct {
	ID     uint64
	Result ReplyResult
}

// ReplyResult is the outcome of the swap: exactly one of Ok or Err is set.
type ReplyResult struct {
	Ok  *ReplyData
	Err string
}

// ReplyData holds the opaque result payload of a successful swap.
type ReplyData struct {
	Data []byte
}

// MsgSwapExactAmountInResponse is the decoded shape of a successful swap
// reply payload.
type MsgSwapExactAmountInResponse struct {
	TokenOutAmount string `json:"token_out_amount"`
}

// SwapResponse is the machine-readable data payload attached to a completed
// swap, mirroring the audit event attributes.
type SwapResponse struct {
	OriginalSender string `json:"original_sender"`
	Fee            string `json:"fee"`
	FeeCollector   string `json:"fee_collector"`
	SwapInDenom    string `json:"swap_in_denom"`
	SwapInAmount   string `json:"swap_in_amount"`
	TokenOutDenom  string `json:"token_out_denom"`
	TokenOutAmount string `json:"token_out_amount"`
}
