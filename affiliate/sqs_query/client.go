// Package sqsquery is a thin client for the Osmosis Sidecar Query Server
// (SQS) router API.
package sqsquery

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// Client queries an SQS endpoint, falling back to backup endpoints when the
// primary is unreachable.
type Client struct {
	httpClient *http.Client
	urls       []string
}

// NewClient creates a client for the given primary URL.
func NewClient(apiURL string) (*Client, error) {
	return NewClientWithFailover(apiURL, nil)
}

// NewClientWithFailover creates a client that tries backup URLs in order when
// the primary fails.
func NewClientWithFailover(apiURL string, backupURLs []string) (*Client, error) {
	urls := append([]string{apiURL}, backupURLs...)
	for _, u := range urls {
		if _, err := url.Parse(u); err != nil {
			return nil, fmt.Errorf("failed to parse API URL %q: %w", u, err)
		}
	}
	return &Client{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		urls:       urls,
	}, nil
}

// SetTimeout overrides the default per-request timeout.
func (c *Client) SetTimeout(d time.Duration) {
	c.httpClient.Timeout = d
}

/*
GetRoute returns the best quote SQS can compute for an exact-amount-in swap of
tokenIn into tokenOutDenom.

When singleRoute is true the quote excludes split routes, so the answer is one
ordered pool list.
*/
func (c *Client) GetRoute(ctx context.Context, tokenIn TokenRequest, tokenOutDenom string, singleRoute bool) (RouteTokenResponse, error) {
	if tokenIn.Denom == "" || tokenIn.Amount == "" {
		return RouteTokenResponse{}, errors.New("tokenIn denom and amount are required")
	}
	if tokenOutDenom == "" {
		return RouteTokenResponse{}, errors.New("tokenOutDenom is required")
	}

	query := fmt.Sprintf(
		"route?tokenIn=%s&tokenOutDenom=%s&singleRoute=%t&humanDenoms=false&applyExponents=false&appendBaseFee=true",
		url.QueryEscape(tokenIn.Amount+tokenIn.Denom),
		url.QueryEscape(tokenOutDenom),
		singleRoute,
	)

	var lastErr error
	for _, base := range c.urls {
		resp, err := c.get(ctx, base+"/"+query)
		if err == nil {
			return resp, nil
		}
		lastErr = err
	}
	return RouteTokenResponse{}, fmt.Errorf("all SQS endpoints failed: %w", lastErr)
}

func (c *Client) get(ctx context.Context, fullURL string) (RouteTokenResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return RouteTokenResponse{}, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return RouteTokenResponse{}, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return RouteTokenResponse{}, err
	}
	if resp.StatusCode != http.StatusOK {
		return RouteTokenResponse{}, fmt.Errorf("SQS returned %d: %s", resp.StatusCode, string(body))
	}

	var routeTokenResponse RouteTokenResponse
	if err := json.Unmarshal(body, &routeTokenResponse); err != nil {
		return RouteTokenResponse{}, err
	}
	return routeTokenResponse, nil
}
