package api

import (
	"context"
	"fmt"
)

// GetCoinList fetches the full coin directory. The call is unauthenticated and
// bounded by the directory timeout across all retry attempts.
func (c *Client) GetCoinList(ctx context.Context) ([]CoinListEntry, error) {
	ctx, cancel := context.WithTimeout(ctx, c.directoryTimeout)
	defer cancel()

	var entries []CoinListEntry
	if err := c.get(ctx, "/coins/list", nil, false, c.maxRetries, &entries); err != nil {
		return nil, fmt.Errorf("get coin list: %w", err)
	}

	return entries, nil
}
