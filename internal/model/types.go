package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PricePrecision is the number of decimal places kept for PriceUSD.
const PricePrecision = 2

// CoinSnapshot is one tracked coin as of the most recent refresh.
type CoinSnapshot struct {
	ID         int64           // Row id assigned by the store
	BatchID    uuid.UUID       // Shared by every row of one refresh
	Symbol     string          // Upper-cased ticker (e.g., "BTC"), unique within a batch
	Name       string          // Display name as reported by the provider
	PriceUSD   decimal.Decimal // Non-negative, PricePrecision places
	MarketCap  int64           // Non-negative
	Timestamp  time.Time       // Fetch instant, identical across the batch
	ProviderID *string         // CoinGecko id, nil when resolution missed
}

// HasProviderID reports whether the snapshot carries a resolved provider id.
func (s CoinSnapshot) HasProviderID() bool {
	return s.ProviderID != nil && *s.ProviderID != ""
}

// RefreshMarker records when the snapshot set was last replaced.
// A zero LastUpdated means no refresh has ever completed.
type RefreshMarker struct {
	LastUpdated time.Time
}

// IsStale reports whether the window has elapsed since the last refresh.
func (m RefreshMarker) IsStale(now time.Time, window time.Duration) bool {
	return now.Sub(m.LastUpdated) >= window
}

// Exists reports whether a refresh has ever been recorded.
func (m RefreshMarker) Exists() bool {
	return !m.LastUpdated.IsZero()
}
