package server

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/rickgao/coinsnap/internal/model"
)

// snapshotView is the JSON shape of one snapshot.
type snapshotView struct {
	ID         int64     `json:"id"`
	Symbol     string    `json:"symbol"`
	Name       string    `json:"name"`
	PriceUSD   string    `json:"price_usd"`
	MarketCap  int64     `json:"market_cap"`
	Timestamp  time.Time `json:"timestamp"`
	ProviderID *string   `json:"provider_id"`
}

func newSnapshotView(s model.CoinSnapshot) snapshotView {
	return snapshotView{
		ID:         s.ID,
		Symbol:     s.Symbol,
		Name:       s.Name,
		PriceUSD:   s.PriceUSD.StringFixed(model.PricePrecision),
		MarketCap:  s.MarketCap,
		Timestamp:  s.Timestamp.UTC(),
		ProviderID: s.ProviderID,
	}
}

type refreshStatusView struct {
	LastUpdated *time.Time `json:"last_updated"`
}

type errorView struct {
	Detail string `json:"detail"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Default().Warn("failed to write JSON response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, errorView{Detail: detail})
}
