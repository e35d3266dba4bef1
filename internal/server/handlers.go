package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/rickgao/coinsnap/internal/api"
	"github.com/rickgao/coinsnap/internal/store"
)

// RefreshErrorHeader carries the failure kind when a read served stale data.
const RefreshErrorHeader = "X-Refresh-Error"

const symbolNotFound = "Crypto symbol not found."

// ensureFresh runs the staleness check. A failure is logged and reported in a
// response header; the caller still serves what is stored.
func (s *Server) ensureFresh(w http.ResponseWriter, r *http.Request) error {
	_, err := s.refresher.EnsureFresh(r.Context())
	if err == nil {
		return nil
	}

	kind := "internal"
	if k, ok := api.KindOf(err); ok {
		kind = k.String()
	}
	w.Header().Set(RefreshErrorHeader, kind)

	s.logger.Warn("refresh failed, serving stored snapshots",
		"error", err,
		"kind", kind,
		"path", r.URL.Path,
	)
	return err
}

func (s *Server) handlePrices(w http.ResponseWriter, r *http.Request) {
	s.ensureFresh(w, r)

	rows, err := s.store.All(r.Context())
	if err != nil {
		s.logger.Error("list snapshots failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to load prices.")
		return
	}

	views := make([]snapshotView, 0, len(rows))
	for _, row := range rows {
		views = append(views, newSnapshotView(row))
	}

	writeJSON(w, http.StatusOK, views)
}

func (s *Server) handleSymbol(w http.ResponseWriter, r *http.Request) {
	refreshErr := s.ensureFresh(w, r)

	symbol := chi.URLParam(r, "symbol")
	snap, err := s.store.LatestBySymbol(r.Context(), symbol)
	switch {
	case errors.Is(err, store.ErrNotFound):
		if refreshErr != nil {
			// Nothing stored to fall back on, so the refresh failure is the answer.
			status, detail := refreshFailure(refreshErr)
			writeError(w, status, detail)
			return
		}
		writeError(w, http.StatusNotFound, symbolNotFound)
		return
	case err != nil:
		s.logger.Error("lookup snapshot failed", "symbol", symbol, "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to load price.")
		return
	}

	writeJSON(w, http.StatusOK, newSnapshotView(snap))
}

// refreshFailure maps a refresh error to a response when no stored data exists.
func refreshFailure(err error) (int, string) {
	switch {
	case errors.Is(err, api.ErrRateLimited):
		return http.StatusServiceUnavailable, "Market data provider rate limit reached. Try again later."
	case errors.Is(err, api.ErrUpstream), errors.Is(err, api.ErrMalformedResponse):
		return http.StatusBadGateway, "Market data provider unavailable."
	}
	return http.StatusInternalServerError, "Failed to refresh prices."
}

func (s *Server) handleRefreshStatus(w http.ResponseWriter, r *http.Request) {
	t, ok, err := s.store.LastUpdated(r.Context())
	if err != nil {
		s.logger.Error("read refresh marker failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to load refresh status.")
		return
	}

	var view refreshStatusView
	if ok {
		t = t.UTC()
		view.LastUpdated = &t
	}

	writeJSON(w, http.StatusOK, view)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	health := struct {
		Status     string         `json:"status"`
		Components map[string]any `json:"components"`
	}{
		Status:     "healthy",
		Components: make(map[string]any),
	}

	// Check store
	if err := s.store.Ping(ctx); err != nil {
		health.Status = "unhealthy"
		health.Components["store"] = map[string]string{
			"status": "disconnected",
			"error":  err.Error(),
		}
	} else {
		health.Components["store"] = "connected"
	}

	// Check resolver
	if s.resolver != nil {
		health.Components["resolver"] = map[string]any{
			"loaded":  s.resolver.Loaded(),
			"entries": s.resolver.Len(),
		}
		if s.resolver.Loaded() && s.resolver.Len() == 0 && health.Status == "healthy" {
			health.Status = "degraded"
		}
	}

	status := http.StatusOK
	if health.Status == "unhealthy" {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, health)
}
