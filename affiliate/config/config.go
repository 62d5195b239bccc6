// Package config loads and validates the hub's TOML configuration.
package config

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// HubConfig is the top-level configuration for the affiliate swap hub.
type HubConfig struct {
	Hub    HubSection    `toml:"hub"`
	Server ServerSection `toml:"server"`
	Sqs    SqsSection    `toml:"sqs"`
}

// HubSection configures the contract side: the hub's own account, the
// address format it accepts, and its persistent store.
type HubSection struct {
	// SelfAddress is the hub's account on the target chain; swap output
	// lands here before the payout.
	SelfAddress string `toml:"self_address"`
	// Bech32Prefix is the HRP fee collector addresses must carry.
	Bech32Prefix string `toml:"bech32_prefix"`
	// MaxFeePercentage seeds the fee ceiling on first start. Empty means
	// the built-in default. Ignored once the store is initialized.
	MaxFeePercentage string `toml:"max_fee_percentage"`
	// StorePath is the bbolt database file.
	StorePath string `toml:"store_path"`
}

// ServerSection configures the HTTP API server.
type ServerSection struct {
	Address        string   `toml:"address"`
	AllowedOrigins []string `toml:"allowed_origins"`
	EnableMetrics  bool     `toml:"enable_metrics"`
	RatePerMinute  *int     `toml:"rate_per_minute"`
	Burst          *int     `toml:"burst"`
}

// SqsSection configures the Osmosis SQS router the swap engine quotes
// against.
type SqsSection struct {
	// URLs are tried in order; the first reachable one wins.
	URLs []string `toml:"urls"`
	// TimeoutSeconds bounds each quote request. Zero means the default.
	TimeoutSeconds int `toml:"timeout_seconds"`
	// SingleRoute restricts quotes to one pool path.
	SingleRoute bool `toml:"single_route"`
}

// Validate checks the loaded configuration for the fields the hub cannot
// start without.
func (c *HubConfig) Validate() error {
	if c.Hub.SelfAddress == "" {
		return fmt.Errorf("hub.self_address is required")
	}
	if c.Hub.Bech32Prefix == "" {
		return fmt.Errorf("hub.bech32_prefix is required")
	}
	if c.Hub.StorePath == "" {
		return fmt.Errorf("hub.store_path is required")
	}
	if c.Hub.MaxFeePercentage != "" {
		if _, err := decimal.NewFromString(c.Hub.MaxFeePercentage); err != nil {
			return fmt.Errorf("hub.max_fee_percentage is not a decimal: %w", err)
		}
	}
	if c.Server.Address == "" {
		return fmt.Errorf("server.address is required")
	}
	if len(c.Sqs.URLs) == 0 {
		return fmt.Errorf("sqs.urls requires at least one URL")
	}
	return nil
}

// SeedMaxFee parses the configured fee ceiling seed, or nil when the config
// leaves it to the built-in default.
func (c *HubConfig) SeedMaxFee() (*decimal.Decimal, error) {
	if c.Hub.MaxFeePercentage == "" {
		return nil, nil
	}
	parsed, err := decimal.NewFromString(c.Hub.MaxFeePercentage)
	if err != nil {
		return nil, fmt.Errorf("hub.max_fee_percentage is not a decimal: %w", err)
	}
	return &parsed, nil
}
