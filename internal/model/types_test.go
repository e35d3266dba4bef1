package model

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func TestCoinSnapshot(t *testing.T) {
	id := "bitcoin"
	s := CoinSnapshot{
		BatchID:    uuid.New(),
		Symbol:     "BTC",
		Name:       "Bitcoin",
		PriceUSD:   decimal.RequireFromString("50000.00"),
		MarketCap:  900000000000,
		Timestamp:  time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC),
		ProviderID: &id,
	}

	if !s.HasProviderID() {
		t.Error("HasProviderID() = false, want true")
	}
	if got := s.PriceUSD.StringFixed(PricePrecision); got != "50000.00" {
		t.Errorf("PriceUSD = %q, want %q", got, "50000.00")
	}

	s.ProviderID = nil
	if s.HasProviderID() {
		t.Error("HasProviderID() = true for nil id, want false")
	}

	empty := ""
	s.ProviderID = &empty
	if s.HasProviderID() {
		t.Error("HasProviderID() = true for empty id, want false")
	}
}

func TestRefreshMarker(t *testing.T) {
	now := time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)
	window := 5 * time.Minute

	tests := []struct {
		name      string
		marker    RefreshMarker
		wantStale bool
		wantExist bool
	}{
		{"never refreshed", RefreshMarker{}, true, false},
		{"just refreshed", RefreshMarker{LastUpdated: now}, false, true},
		{"one second ago", RefreshMarker{LastUpdated: now.Add(-time.Second)}, false, true},
		{"exactly at window", RefreshMarker{LastUpdated: now.Add(-window)}, true, true},
		{"past window", RefreshMarker{LastUpdated: now.Add(-10 * time.Minute)}, true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.marker.IsStale(now, window); got != tt.wantStale {
				t.Errorf("IsStale() = %v, want %v", got, tt.wantStale)
			}
			if got := tt.marker.Exists(); got != tt.wantExist {
				t.Errorf("Exists() = %v, want %v", got, tt.wantExist)
			}
		})
	}
}
