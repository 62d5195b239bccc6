package sqsquery

// TokenRequest pairs an amount with a denom for the route query.
type TokenRequest struct {
	Denom  string
	Amount string
}

// RouteTokenResponse is the subset of the SQS /route answer the hub consumes.
type RouteTokenResponse struct {
	AmountIn struct {
		Denom  string `json:"denom"`
		Amount string `json:"amount"`
	} `json:"amount_in"`
	AmountOut               string  `json:"amount_out"`
	Route                   []Route `json:"route"`
	EffectiveFee            string  `json:"effective_fee"`
	PriceImpact             string  `json:"price_impact"`
	InBaseOutQuoteSpotPrice string  `json:"in_base_out_quote_spot_price"`
}

// Route is a single candidate route with its pool hops.
type Route struct {
	Pools     []Pool `json:"pools"`
	HasCwPool bool   `json:"has-cw-pool"`
	OutAmount string `json:"out_amount"`
	InAmount  string `json:"in_amount"`
}

// Pool is one hop inside a route.
type Pool struct {
	ID            int    `json:"id"`
	Type          int    `json:"type"`
	SpreadFactor  string `json:"spread_factor"`
	TokenOutDenom string `json:"token_out_denom"`
	TakerFee      string `json:"taker_fee"`
}
