// internal/server/server.go

package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/nats-io/nats.go"

	"memewatch/internal/config"
	"memewatch/internal/server/handlers"
	"memewatch/internal/service/aggregate"
	"memewatch/internal/service/pipeline"
)

// Server represents the HTTP server
type Server struct {
	server *http.Server
	router *chi.Mux
}

// NewServer creates a new HTTP server. insight may be nil when no API key is
// configured.
func NewServer(
	cfg config.ServerConfig,
	natsConn *nats.Conn,
	pipelineSvc *pipeline.Service,
	engine *aggregate.Engine,
	insight handlers.InsightGenerator,
	feedTopic string,
) *Server {
	router := chi.NewRouter()

	// Middleware
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(middleware.Timeout(60 * time.Second))

	// CORS configuration
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CorsOrigins,
		AllowedMethods:   []string{"GET", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Create handler dependencies
	contentHandler := handlers.NewContentHandler(pipelineSvc, engine)
	tickerHandler := handlers.NewTickerHandler(engine, insight)

	// Routes
	router.Route("/api", func(r chi.Router) {
		// Health check
		r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("OK"))
		})

		// API version
		r.Route("/v1", func(r chi.Router) {
			// Analyzed content API
			r.Route("/content", func(r chi.Router) {
				r.Get("/trending", contentHandler.GetTrending)
				r.Get("/{fingerprint}", contentHandler.GetByFingerprint)
			})

			// Ticker signals API
			r.Route("/tickers", func(r chi.Router) {
				r.Get("/trending", tickerHandler.GetTrending)
				r.Get("/{symbol}", tickerHandler.GetTicker)
			})
		})
	})

	// WebSocket endpoint for the live analysis feed
	router.Get("/ws/feed", handlers.FeedWebSocketHandler(natsConn, feedTopic))

	// Create HTTP server
	httpServer := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	return &Server{
		server: httpServer,
		router: router,
	}
}

// ListenAndServe starts the HTTP server
func (s *Server) ListenAndServe() error {
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the HTTP server
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}
