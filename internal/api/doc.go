// Package api provides the CoinGecko REST client.
//
// Endpoints:
//   - Public/demo: https://api.coingecko.com/api/v3
//   - Pro: https://pro-api.coingecko.com/api/v3
//
// Calls used:
//   - GET /coins/markets (authenticated): top coins by market cap
//   - GET /coins/list (unauthenticated): full id/symbol/name directory
//
// Failures surface as *FetchError and match ErrRateLimited, ErrUpstream or
// ErrMalformedResponse with errors.Is.
package api
