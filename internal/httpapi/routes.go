package httpapi

import (
	"net/http"
	"time"

	"github.com/DoyleJ11/hex-tactics-backend/internal/hub"
	"github.com/DoyleJ11/hex-tactics-backend/internal/ws"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

func SetupRoutes(h *hub.Hub, opts ws.Options) http.Handler {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(requestLogger(log))

	// Public routes
	r.Post("/rooms", CreateRoom(h, opts.InviteBaseURL, log))
	r.Get("/cards", Cards)
	r.Get("/healthz", Healthz)
	r.Get("/health", Health)
	r.Get("/ws", ws.Handler(h, opts))
	return r
}

func requestLogger(log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			log.Debug("request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("elapsed", time.Since(start)))
		})
	}
}
