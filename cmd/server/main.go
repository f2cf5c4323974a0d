package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/paperloc/paperloc/internal/api"
	"github.com/paperloc/paperloc/internal/config"
	"github.com/paperloc/paperloc/internal/embed"
	"github.com/paperloc/paperloc/internal/pipeline"
	"github.com/paperloc/paperloc/internal/store"
)

func main() {
	_ = godotenv.Load()

	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Record store backend.
	var st store.Store
	var remote *store.Remote
	switch cfg.StoreBackend {
	case "remote":
		remote = store.NewRemote(cfg.StoreURL, cfg.StoreAPIKey)
		st = remote
	default:
		st = store.NewMemory()
	}

	// Embedding client.
	var embedClient *embed.Client
	var embedder embed.Embedder
	if cfg.EmbedEnabled {
		embedClient = embed.NewClient(cfg.EmbedBaseURL, cfg.EmbedAPIKey, cfg.EmbedModel, cfg.EmbedDim)
		embedder = embedClient
	}

	// Initialize pipeline.
	orch := pipeline.NewOrchestrator(cfg, embedder, st, log)
	orch.Start(ctx)

	// Initialize HTTP server.
	srv := api.NewServer(orch, embedClient, log, cfg)

	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      srv,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown.
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Info("shutting down...")

		orch.Stop()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		httpServer.Shutdown(shutdownCtx)

		if remote != nil {
			remote.Close()
		}
	}()

	log.Info("starting paperloc", "port", cfg.Port, "store", cfg.StoreBackend, "embedding", cfg.EmbedEnabled)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
}
