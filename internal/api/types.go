package api

import "github.com/shopspring/decimal"

// MarketCoin represents one entry from GET /coins/markets.
type MarketCoin struct {
	ID            string              `json:"id"`
	Symbol        string              `json:"symbol"`
	Name          string              `json:"name"`
	CurrentPrice  decimal.NullDecimal `json:"current_price"`
	MarketCap     decimal.NullDecimal `json:"market_cap"`
	MarketCapRank *int                `json:"market_cap_rank"`
	LastUpdated   string              `json:"last_updated"`
}

// CoinListEntry represents one entry from GET /coins/list.
type CoinListEntry struct {
	ID     string `json:"id"`
	Symbol string `json:"symbol"`
	Name   string `json:"name"`
}

// MarketsOptions configures a GetMarkets request.
type MarketsOptions struct {
	VsCurrency string
	Order      string
	PerPage    int
	Page       int
	Sparkline  bool
}

// TopCoinsOptions is the fixed request used for refreshes: the first 50 coins by
// market cap, priced in USD, without sparkline data.
func TopCoinsOptions() MarketsOptions {
	return MarketsOptions{
		VsCurrency: "usd",
		Order:      "market_cap_desc",
		PerPage:    50,
		Page:       1,
		Sparkline:  false,
	}
}
