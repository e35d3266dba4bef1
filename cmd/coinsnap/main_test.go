package main

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/rickgao/coinsnap/internal/config"
)

func runCmd(t *testing.T, args ...string) (string, error) {
	t.Helper()

	prev := slog.Default()
	defer slog.SetDefault(prev)

	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)

	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "coinsnap.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestVersionCmd(t *testing.T) {
	out, err := runCmd(t, "version", "--env-file", filepath.Join(t.TempDir(), "missing.env"))
	if err != nil {
		t.Fatalf("version: %v", err)
	}
	if !strings.HasPrefix(out, "coinsnap dev") {
		t.Errorf("output = %q, want coinsnap dev prefix", out)
	}
}

func TestFetchRequiresAPIKey(t *testing.T) {
	t.Setenv(config.EnvAPIKey, "")

	path := writeConfig(t, "store:\n  driver: memory\n")
	_, err := runCmd(t, "fetch", "--config", path, "--env-file", filepath.Join(t.TempDir(), "none.env"))
	if err == nil {
		t.Fatal("fetch without API key succeeded")
	}
	if !strings.Contains(err.Error(), "api.api_key") {
		t.Errorf("error = %v, want mention of api.api_key", err)
	}
}

func TestFetchThenStatus(t *testing.T) {
	var marketCalls atomic.Int32
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/coins/markets":
			marketCalls.Add(1)
			if r.Header.Get("x-cg-demo-api-key") != "env-key" {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			w.Write([]byte(`[
				{"id":"bitcoin","symbol":"btc","name":"Bitcoin","current_price":50000,"market_cap":900000000000},
				{"id":"ethereum","symbol":"eth","name":"Ethereum","current_price":3000,"market_cap":360000000000},
				{"id":"dust","symbol":"dust","name":"Dust","current_price":0.5,"market_cap":100}
			]`))
		case "/coins/list":
			w.Write([]byte(`[]`))
		}
	}))
	defer upstream.Close()

	dir := t.TempDir()
	envFile := filepath.Join(dir, ".env")
	if err := os.WriteFile(envFile, []byte("COINGECKO_API_KEY=env-key\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	// The key must come from the .env file; godotenv never overrides a set variable.
	t.Setenv(config.EnvAPIKey, "")
	os.Unsetenv(config.EnvAPIKey)

	path := writeConfig(t, `
api:
  base_url: `+upstream.URL+`
store:
  driver: sqlite
  sqlite_path: `+filepath.Join(dir, "coinsnap.db")+`
logging:
  level: error
`)

	out, err := runCmd(t, "fetch", "--config", path, "--env-file", envFile)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if !strings.Contains(out, "Stored 2 of 3 coins") {
		t.Errorf("fetch output = %q, want 'Stored 2 of 3 coins'", out)
	}
	if marketCalls.Load() != 1 {
		t.Errorf("markets calls = %d, want 1", marketCalls.Load())
	}

	out, err = runCmd(t, "status", "--config", path, "--env-file", envFile)
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if !strings.Contains(out, "fresh") || !strings.Contains(out, "snapshots:    2") {
		t.Errorf("status output = %q", out)
	}
}

func TestStatusNeverRefreshed(t *testing.T) {
	t.Setenv(config.EnvAPIKey, "")

	path := writeConfig(t, "store:\n  driver: memory\nlogging:\n  level: error\n")
	out, err := runCmd(t, "status", "--config", path, "--env-file", filepath.Join(t.TempDir(), "none.env"))
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if !strings.Contains(out, "last updated: never") {
		t.Errorf("output = %q, want 'last updated: never'", out)
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"", slog.LevelInfo},
		{"verbose", slog.LevelInfo},
	}

	for _, tt := range tests {
		if got := parseLevel(tt.in); got != tt.want {
			t.Errorf("parseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestNewLoggerJSON(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	var buf bytes.Buffer
	logger := newLogger(config.LoggingConfig{Level: "info", Format: "json"}, &buf)
	logger.Debug("hidden")
	logger.Info("shown", "k", "v")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Error("debug line written at info level")
	}
	if !strings.Contains(out, `"msg":"shown"`) || !strings.Contains(out, `"k":"v"`) {
		t.Errorf("output = %q, want JSON record", out)
	}
}
