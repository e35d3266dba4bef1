// Package model defines shared data types used across coinsnap.
//
// Conventions:
//   - Prices: shopspring decimal, USD, rounded to PricePrecision places
//   - Timestamps: time.Time in UTC; one timestamp per refresh batch
//   - IDs: int64 row ids, uuid.UUID batch ids, CoinGecko string ids for provider ids
package model
