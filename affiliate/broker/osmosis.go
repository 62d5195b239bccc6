package broker

import (
	"context"
	"fmt"
	"math/big"

	"github.com/rs/zerolog"

	"github.com/Cogwheel-Validator/affiliate-swap-hub/affiliate/contract"
	sqsquery "github.com/Cogwheel-Validator/affiliate-swap-hub/affiliate/sqs_query"
)

// OsmosisSqsEngine executes swap requests by filling them at the rate quoted
// by the Osmosis Sidecar Query Server. The requested route fixes the output
// denomination (last hop); the fill itself follows the best route SQS knows.
type OsmosisSqsEngine struct {
	client      *sqsquery.Client
	singleRoute bool
	log         zerolog.Logger
}

// NewOsmosisSqsEngine creates an engine over the given SQS client.
// singleRoute restricts quotes to one pool path instead of a split fill.
func NewOsmosisSqsEngine(client *sqsquery.Client, singleRoute bool, log zerolog.Logger) *OsmosisSqsEngine {
	return &OsmosisSqsEngine{client: client, singleRoute: singleRoute, log: log}
}

// ExecuteSwap runs the swap and returns the output amount in the route's
// final denomination. A quote below the requested minimum fails with a
// slippage reason; the caller is expected to surface that reason verbatim.
func (e *OsmosisSqsEngine) ExecuteSwap(ctx context.Context, msg contract.SwapExactAmountInMsg) (*big.Int, error) {
	if len(msg.Routes) == 0 {
		return nil, fmt.Errorf("swap route is empty")
	}
	tokenOutDenom := msg.Routes[len(msg.Routes)-1].TokenOutDenom

	tokenIn := sqsquery.TokenRequest{
		Denom:  msg.TokenIn.Denom,
		Amount: msg.TokenIn.Amount.String(),
	}
	quote, err := e.client.GetRoute(ctx, tokenIn, tokenOutDenom, e.singleRoute)
	if err != nil {
		return nil, fmt.Errorf("quote failed: %w", err)
	}

	amountOut, ok := new(big.Int).SetString(quote.AmountOut, 10)
	if !ok {
		return nil, fmt.Errorf("bad quote amount_out %q", quote.AmountOut)
	}

	minOut, ok := new(big.Int).SetString(msg.TokenOutMinAmount, 10)
	if !ok {
		return nil, fmt.Errorf("bad token_out_min_amount %q", msg.TokenOutMinAmount)
	}
	if amountOut.Cmp(minOut) < 0 {
		return nil, fmt.Errorf("slippage exceeded: wanted at least %s%s, quoted %s%s",
			minOut, tokenOutDenom, amountOut, tokenOutDenom)
	}

	e.log.Debug().
		Str("token_in", msg.TokenIn.String()).
		Str("token_out", amountOut.String()+tokenOutDenom).
		Str("price_impact", quote.PriceImpact).
		Str("effective_fee", quote.EffectiveFee).
		Msg("swap filled at SQS quote")

	return amountOut, nil
}
