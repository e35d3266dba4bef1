package refresh

import (
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/rickgao/coinsnap/internal/api"
	"github.com/rickgao/coinsnap/internal/model"
)

// MaxBatchSize is the number of coins kept per refresh.
const MaxBatchSize = 20

// DustThreshold is the price at or below which a coin is dropped.
var DustThreshold = decimal.NewFromInt(1)

// ResolveFunc looks up a provider id. A miss returns ok false.
type ResolveFunc func(symbol, name string) (id string, ok bool)

type candidate struct {
	symbol    string
	name      string
	price     decimal.Decimal
	marketCap int64
}

// BuildBatch turns raw market entries into one snapshot batch: drop dust and
// null prices, sort by price descending, keep the first MaxBatchSize, then
// normalize symbol and price and attach provider ids. Every row gets the same
// timestamp and batch id. resolve may be nil.
func BuildBatch(coins []api.MarketCoin, ts time.Time, batchID uuid.UUID, resolve ResolveFunc) []model.CoinSnapshot {
	candidates := make([]candidate, 0, len(coins))
	for i := range coins {
		price, ok := coins[i].PriceUSD()
		if !ok || price.LessThanOrEqual(DustThreshold) {
			continue
		}
		candidates = append(candidates, candidate{
			symbol:    coins[i].Symbol,
			name:      coins[i].Name,
			price:     price,
			marketCap: coins[i].MarketCapInt(),
		})
	}

	slices.SortStableFunc(candidates, func(a, b candidate) int {
		return b.price.Cmp(a.price)
	})

	batch := make([]model.CoinSnapshot, 0, min(len(candidates), MaxBatchSize))
	seen := make(map[string]struct{}, MaxBatchSize)
	for _, c := range candidates {
		if len(batch) == MaxBatchSize {
			break
		}

		// Symbols are unique within a batch; the higher-priced entry wins.
		symbol := strings.ToUpper(c.symbol)
		if _, dup := seen[symbol]; dup {
			continue
		}
		seen[symbol] = struct{}{}

		snap := model.CoinSnapshot{
			BatchID:   batchID,
			Symbol:    symbol,
			Name:      c.name,
			PriceUSD:  c.price.Round(model.PricePrecision),
			MarketCap: c.marketCap,
			Timestamp: ts,
		}
		if resolve != nil {
			if id, ok := resolve(c.symbol, c.name); ok {
				snap.ProviderID = &id
			}
		}

		batch = append(batch, snap)
	}

	return batch
}
