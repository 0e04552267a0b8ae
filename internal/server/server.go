package server

import (
	"net/http"
	"time"

	"github.com/rs/cors"
	"go.uber.org/zap"
)

// Options configures the HTTP server.
type Options struct {
	Addr      string
	CORSAllow []string
}

// New creates a configured HTTP server with all routes registered.
func New(hub *Hub, metrics *Metrics, log *zap.Logger, opts Options) *http.Server {
	mux := http.NewServeMux()
	h := &Handlers{
		Hub:       hub,
		Log:       log,
		StartTime: time.Now(),
	}

	// Liveness and metrics.
	mux.HandleFunc("GET /healthz", h.Liveness)
	mux.Handle("GET /metrics", metrics.Handler())

	// REST API routes.
	mux.HandleFunc("GET /api/health", h.Health)
	mux.HandleFunc("GET /api/rooms", h.ListRooms)
	mux.HandleFunc("POST /api/rooms/{room}/status", h.UpdateRoom)

	// WebSocket route.
	mux.HandleFunc("/ws", h.HandleWS)

	c := cors.New(cors.Options{
		AllowedOrigins: opts.CORSAllow,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type"},
	})
	handler := loggingMiddleware(log, c.Handler(mux))

	return &http.Server{
		Addr:              opts.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
}

func loggingMiddleware(log *zap.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		log.Debug("http request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Duration("took", time.Since(start).Round(time.Microsecond)),
		)
	})
}
