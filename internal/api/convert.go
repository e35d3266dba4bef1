package api

import (
	"strings"

	"github.com/shopspring/decimal"
)

// validate rejects records that lack the fields every market entry carries.
func (m *MarketCoin) validate() error {
	if strings.TrimSpace(m.Symbol) == "" {
		return &FetchError{Kind: KindMalformedResponse, Message: "market entry without symbol (id " + m.ID + ")"}
	}
	if m.CurrentPrice.Valid && m.CurrentPrice.Decimal.IsNegative() {
		return &FetchError{Kind: KindMalformedResponse, Message: "negative price for " + m.Symbol}
	}
	return nil
}

// PriceUSD returns the current price. ok is false when the provider sent null.
func (m *MarketCoin) PriceUSD() (price decimal.Decimal, ok bool) {
	if !m.CurrentPrice.Valid {
		return decimal.Zero, false
	}
	return m.CurrentPrice.Decimal, true
}

// MarketCapInt returns the market cap truncated to an integer, 0 when null or negative.
func (m *MarketCoin) MarketCapInt() int64 {
	if !m.MarketCap.Valid || m.MarketCap.Decimal.IsNegative() {
		return 0
	}
	return m.MarketCap.Decimal.IntPart()
}
