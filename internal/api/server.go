package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/paperloc/paperloc/internal/config"
	"github.com/paperloc/paperloc/internal/embed"
	"github.com/paperloc/paperloc/internal/pipeline"
)

// Server is the HTTP API server for paperloc.
type Server struct {
	router       chi.Router
	orchestrator *pipeline.Orchestrator
	embedClient  *embed.Client
	log          *slog.Logger
	cfg          config.Config
}

// NewServer creates and configures the HTTP server. embedClient may be
// nil when embedding is disabled.
func NewServer(orch *pipeline.Orchestrator, embedClient *embed.Client, log *slog.Logger, cfg config.Config) *Server {
	s := &Server{
		orchestrator: orch,
		embedClient:  embedClient,
		log:          log,
		cfg:          cfg,
	}
	s.setupRoutes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(RequestLogger(s.log))

	// Public endpoints.
	r.Get("/health", s.handleHealth)

	// Authenticated endpoints.
	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware(s.cfg.APIKey, s.log))

		r.Post("/api/ingest", s.handleIngest)
		r.Get("/api/ingest/{jobID}/status", s.handleIngestStatus)
		r.Post("/api/ingest/batch", s.handleBatchIngest)

		r.Get("/api/chunks", s.handleChunksByDOI)
		r.Get("/api/chunks/{chunkID}", s.handleGetChunk)
		r.Get("/api/chunks/{chunkID}/context", s.handleChunkContext)
		r.Get("/api/sentences", s.handleSentencesByDOI)
		r.Post("/api/locate", s.handleLocate)

		r.Get("/api/stats/embedding", s.handleEmbeddingStats)
	})

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}
