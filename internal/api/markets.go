package api

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
)

// GetMarkets fetches one page of coins with market data. The call is authenticated,
// bounded by the client timeout, and never retried.
func (c *Client) GetMarkets(ctx context.Context, opts MarketsOptions) ([]MarketCoin, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	query := url.Values{}
	query.Set("vs_currency", opts.VsCurrency)
	if opts.Order != "" {
		query.Set("order", opts.Order)
	}
	if opts.PerPage > 0 {
		query.Set("per_page", strconv.Itoa(opts.PerPage))
	}
	if opts.Page > 0 {
		query.Set("page", strconv.Itoa(opts.Page))
	}
	query.Set("sparkline", strconv.FormatBool(opts.Sparkline))

	var coins []MarketCoin
	if err := c.get(ctx, "/coins/markets", query, true, 0, &coins); err != nil {
		return nil, fmt.Errorf("get markets: %w", err)
	}

	for i := range coins {
		if err := coins[i].validate(); err != nil {
			return nil, fmt.Errorf("get markets: %w", err)
		}
	}

	return coins, nil
}

// GetTopCoins fetches the top 50 coins by market cap in USD.
func (c *Client) GetTopCoins(ctx context.Context) ([]MarketCoin, error) {
	return c.GetMarkets(ctx, TopCoinsOptions())
}
