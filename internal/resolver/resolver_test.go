package resolver

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rickgao/coinsnap/internal/api"
)

// fakeSource returns a fixed directory and counts calls.
type fakeSource struct {
	entries []api.CoinListEntry
	err     error
	delay   time.Duration
	calls   atomic.Int32
}

func (f *fakeSource) GetCoinList(ctx context.Context) ([]api.CoinListEntry, error) {
	f.calls.Add(1)
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	if f.err != nil {
		return nil, f.err
	}
	return f.entries, nil
}

func testDirectory() []api.CoinListEntry {
	return []api.CoinListEntry{
		{ID: "bitcoin", Symbol: "btc", Name: "Bitcoin"},
		{ID: "ethereum", Symbol: "eth", Name: "Ethereum"},
		{ID: "wrapped-bitcoin", Symbol: "wbtc", Name: "Wrapped Bitcoin"},
		{ID: "binance-usd", Symbol: "busd", Name: "Binance USD"},
		{ID: "usd-coin", Symbol: "usdc", Name: "USD Coin (Bridged)"},
		{ID: "bitcoin-fork", Symbol: "btc", Name: "Bitcoin Fork"},
		{ID: "staked-ether", Symbol: "steth", Name: "Lido Staked Ether"},
	}
}

func TestNormalizeName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Bitcoin", "bitcoin"},
		{"Wrapped Bitcoin", "wrapped-bitcoin"},
		{"USD Coin (Bridged)", "usd-coin-bridged"},
		{"Dog.Wif.Hat", "dogwifhat"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := NormalizeName(tt.in); got != tt.want {
			t.Errorf("NormalizeName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestResolve(t *testing.T) {
	r := New(&fakeSource{entries: testDirectory()}, nil)
	ctx := context.Background()

	tests := []struct {
		name     string
		symbol   string
		coinName string
		wantID   string
		wantOK   bool
	}{
		{"symbol hit", "btc", "", "bitcoin", true},
		{"symbol is case-insensitive", "ETH", "", "ethereum", true},
		{"first occurrence wins", "BTC", "Bitcoin Fork", "bitcoin", true},
		{"name fallback", "xyz", "Lido Staked Ether", "staked-ether", true},
		{"name fallback normalizes", "nope", "USD Coin (Bridged)", "usd-coin", true},
		{"empty name skips fallback", "nope", "", "", false},
		{"miss", "nope", "No Such Coin", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, ok := r.Resolve(ctx, tt.symbol, tt.coinName)
			if ok != tt.wantOK || id != tt.wantID {
				t.Errorf("Resolve(%q, %q) = (%q, %v), want (%q, %v)", tt.symbol, tt.coinName, id, ok, tt.wantID, tt.wantOK)
			}
		})
	}
}

func TestResolve_Idempotent(t *testing.T) {
	src := &fakeSource{entries: testDirectory()}
	r := New(src, nil)
	ctx := context.Background()

	if r.Loaded() {
		t.Fatal("Loaded() = true before first Resolve")
	}

	id1, ok1 := r.Resolve(ctx, "btc", "Bitcoin")
	id2, ok2 := r.Resolve(ctx, "btc", "Bitcoin")

	if id1 != id2 || ok1 != ok2 {
		t.Errorf("results differ: (%q, %v) vs (%q, %v)", id1, ok1, id2, ok2)
	}
	if got := src.calls.Load(); got != 1 {
		t.Errorf("directory fetches = %d, want 1", got)
	}
	if !r.Loaded() {
		t.Error("Loaded() = false after Resolve")
	}
	if r.Len() != len(testDirectory()) {
		t.Errorf("Len() = %d, want %d", r.Len(), len(testDirectory()))
	}
}

func TestResolve_ConcurrentFirstAccess(t *testing.T) {
	src := &fakeSource{entries: testDirectory(), delay: 50 * time.Millisecond}
	r := New(src, nil)

	const callers = 32
	var wg sync.WaitGroup
	results := make([]string, callers)

	start := make(chan struct{})
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			results[i], _ = r.Resolve(context.Background(), "eth", "Ethereum")
		}(i)
	}
	close(start)
	wg.Wait()

	if got := src.calls.Load(); got != 1 {
		t.Errorf("directory fetches = %d, want 1", got)
	}
	for i, id := range results {
		if id != "ethereum" {
			t.Errorf("results[%d] = %q, want %q", i, id, "ethereum")
		}
	}
}

func TestResolve_LoadFailure(t *testing.T) {
	src := &fakeSource{err: errors.New("connection refused")}
	r := New(src, nil)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		id, ok := r.Resolve(ctx, "eth", "Ethereum")
		if ok || id != "" {
			t.Errorf("call %d: Resolve() = (%q, %v), want (\"\", false)", i, id, ok)
		}
	}

	if got := src.calls.Load(); got != 1 {
		t.Errorf("directory fetches = %d, want 1", got)
	}
	if !r.Loaded() {
		t.Error("Loaded() = false after failed load")
	}
	if r.Len() != 0 {
		t.Errorf("Len() = %d, want 0", r.Len())
	}
}

// A cancelled caller must not leave the directory empty.
func TestResolve_CancelledCallerLoadsDirectory(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		if r.URL.Path != "/coins/list" {
			t.Errorf("path = %q, want %q", r.URL.Path, "/coins/list")
		}
		json.NewEncoder(w).Encode(testDirectory())
	}))
	defer server.Close()

	client := api.NewClient(server.URL, "key")
	r := New(client, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	id, ok := r.Resolve(ctx, "WBTC", "")
	if !ok || id != "wrapped-bitcoin" {
		t.Errorf("Resolve() = (%q, %v), want (%q, true)", id, ok, "wrapped-bitcoin")
	}
	if calls.Load() != 1 {
		t.Errorf("server calls = %d, want 1", calls.Load())
	}
}

func TestResolve_APIFailureDegrades(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	client := api.NewClient(server.URL, "key", api.WithRetries(2, time.Millisecond))
	r := New(client, nil)

	if _, ok := r.Resolve(context.Background(), "eth", "Ethereum"); ok {
		t.Error("Resolve() ok = true after directory failure")
	}
	if r.Fetches() != 1 {
		t.Errorf("Fetches() = %d, want 1", r.Fetches())
	}
}
