package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/benkosiek/Turn-based-Game/internal/hub"
	"github.com/benkosiek/Turn-based-Game/internal/lobby"
	"github.com/benkosiek/Turn-based-Game/internal/ws"
)

func SetupRoutes(h *hub.Hub, lb *lobby.Lobby, log *zap.Logger) http.Handler {
	if log == nil {
		log = zap.NewNop()
	}
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	// Public routes
	r.Get("/healthz", Healthz)
	r.Get("/matches", ListMatches(h, log))
	r.Get("/matches/{id}", GetMatch(h, log))
	r.Get("/ws", ws.Handler(lb, log.Named("ws")))
	return r
}
