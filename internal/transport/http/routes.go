package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"millionaire-service/internal/app"
	"millionaire-service/internal/solo"
)

// NewRouter wires every HTTP and websocket route.
func NewRouter(service *app.Service, games *solo.Manager, log *zap.Logger) http.Handler {
	if log == nil {
		log = zap.NewNop()
	}
	r := chi.NewRouter()
	r.Use(requestLogger(log))

	r.Get("/healthz", Healthz)

	r.Route("/rooms", func(r chi.Router) {
		r.Post("/", CreateRoom(service))
		r.Route("/{code}", func(r chi.Router) {
			r.Get("/", GetRoom(service))
			r.Post("/players", JoinRoom(service))
			r.Post("/start", StartGame(service))
			r.Post("/restart", RestartGame(service))
			r.Get("/results", Results(service))
			r.Get("/qr", JoinQR(service))
		})
	})

	r.Route("/solo", func(r chi.Router) {
		r.Post("/", StartSolo(games))
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", GetSolo(games))
			r.Post("/{action}", SoloAction(games))
		})
	})

	r.Get("/ws", NewWSHandler(service, log).ServeWS)
	return r
}

func Healthz(w http.ResponseWriter, _ *http.Request) {
	_, _ = w.Write([]byte("ok"))
}

func requestLogger(log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			next.ServeHTTP(w, r)
			log.Debug("http request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Duration("took", time.Since(start)))
		})
	}
}
