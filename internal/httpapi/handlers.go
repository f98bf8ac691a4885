package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/benkosiek/Turn-based-Game/internal/hub"
)

func Healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

// ListMatches serves the running matches as JSON.
func ListMatches(h *hub.Hub, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		infos, err := h.List(r.Context())
		if errors.Is(err, hub.ErrShuttingDown) {
			http.Error(w, "shutting down", http.StatusServiceUnavailable)
			return
		}
		if err != nil {
			log.Debug("list matches", zap.Error(err))
			http.Error(w, "failed to list matches", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(struct {
			Matches []hub.MatchInfo `json:"matches"`
		}{Matches: infos})
	}
}

// GetMatch serves the summary of one running match.
func GetMatch(h *hub.Hub, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		info, err := h.Get(r.Context(), chi.URLParam(r, "id"))
		switch {
		case errors.Is(err, hub.ErrNotFound):
			http.Error(w, "match not found", http.StatusNotFound)
			return
		case errors.Is(err, hub.ErrShuttingDown):
			http.Error(w, "shutting down", http.StatusServiceUnavailable)
			return
		case err != nil:
			log.Debug("get match", zap.Error(err))
			http.Error(w, "failed to get match", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(info)
	}
}
