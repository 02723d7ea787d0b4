package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"towncrier/internal/catalog"
	"towncrier/internal/history"
	"towncrier/internal/hub"
	"towncrier/internal/ws"
)

func SetupRoutes(h *hub.Hub, cat *catalog.Catalog, store *history.Store, limiter *rate.Limiter, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Route("/api", func(r chi.Router) {
		r.Use(rateLimit(limiter))
		r.Post("/rooms", CreateRoom(h, logger))
		r.Post("/rooms/join", JoinRoom(h))
		r.Get("/rooms/{roomID}/logs", RoomLogs(h))
		r.Get("/scripts", ListScripts(cat))
		r.Get("/records", ListRecords(store))
	})

	r.Get("/healthz", Healthz)
	r.Get("/ws", ws.Handler(h, logger))
	return r
}

// rateLimit sheds load on the REST surface. The websocket stream is exempt;
// it is already bounded by the per-room actor inbox.
func rateLimit(limiter *rate.Limiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !limiter.Allow() {
				writeError(w, http.StatusTooManyRequests, "rate_limited", "too many requests")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
