package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	Port string

	// Auth
	APIKey string

	// Record store
	StoreBackend string // "memory" or "remote"
	StoreURL     string
	StoreAPIKey  string

	// Embedding service (OpenAI protocol)
	EmbedEnabled bool
	EmbedBaseURL string
	EmbedAPIKey  string
	EmbedModel   string
	EmbedDim     int

	// Worker pool
	WorkerCount        int
	MaxQueueSize       int
	EmbedBatchSize     int
	MaxConcurrentEmbed int
	StoreBatchSize     int
	MaxConcurrentStore int

	// Upload limits
	MaxUploadBytes int64

	// Chunking defaults
	ChunkSize    int
	ChunkOverlap int
	MinChunk     int
	MinPageChars int

	// Sentence extraction
	MinSentenceWords int

	// Job state
	JobTTL time.Duration

	// PDF
	PDFFallbackPdftotext bool
}

func Load() Config {
	cfg := Config{
		Port: envOr("PORT", "8090"),

		APIKey: os.Getenv("PAPERLOC_API_KEY"),

		StoreBackend: envOr("STORE_BACKEND", "memory"),
		StoreURL:     envOr("STORE_URL", "http://localhost:8080"),
		StoreAPIKey:  os.Getenv("STORE_API_KEY"),

		EmbedEnabled: envBool("EMBED_ENABLED", true),
		EmbedBaseURL: envOr("EMBED_BASE_URL", "http://localhost:9200/v1"),
		EmbedAPIKey:  os.Getenv("EMBED_API_KEY"),
		EmbedModel:   envOr("EMBED_MODEL", "bge-m3"),
		EmbedDim:     envInt("EMBED_DIM", 1024),

		WorkerCount:        envInt("WORKER_COUNT", 4),
		MaxQueueSize:       envInt("MAX_QUEUE_SIZE", 100),
		EmbedBatchSize:     envInt("EMBED_BATCH_SIZE", 32),
		MaxConcurrentEmbed: envInt("MAX_CONCURRENT_EMBED", 4),
		StoreBatchSize:     envInt("STORE_BATCH_SIZE", 100),
		MaxConcurrentStore: envInt("MAX_CONCURRENT_STORE", 10),

		MaxUploadBytes: envInt64("MAX_UPLOAD_BYTES", 52428800), // 50MB

		ChunkSize:    envInt("CHUNK_SIZE", 600),
		ChunkOverlap: envInt("CHUNK_OVERLAP", 100),
		MinChunk:     envInt("MIN_CHUNK", 30),
		MinPageChars: envInt("MIN_PAGE_CHARS", 50),

		MinSentenceWords: envInt("MIN_SENTENCE_WORDS", 3),

		JobTTL: envDuration("JOB_TTL", 1*time.Hour),

		PDFFallbackPdftotext: envBool("PDF_FALLBACK_PDFTOTEXT", true),
	}

	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = 4
	}
	if cfg.MaxQueueSize <= 0 {
		cfg.MaxQueueSize = 100
	}
	if cfg.EmbedBatchSize <= 0 {
		cfg.EmbedBatchSize = 32
	}
	if cfg.MaxConcurrentEmbed <= 0 {
		cfg.MaxConcurrentEmbed = 4
	}
	if cfg.StoreBatchSize <= 0 {
		cfg.StoreBatchSize = 100
	}
	if cfg.MaxConcurrentStore <= 0 {
		cfg.MaxConcurrentStore = 10
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 52428800
	}
	if cfg.ChunkSize <= 0 {
		cfg.ChunkSize = 600
	}
	if cfg.ChunkOverlap < 0 || cfg.ChunkOverlap >= cfg.ChunkSize {
		cfg.ChunkOverlap = 100
	}
	if cfg.MinChunk <= 0 {
		cfg.MinChunk = 30
	}
	if cfg.MinPageChars <= 0 {
		cfg.MinPageChars = 50
	}
	if cfg.MinSentenceWords <= 0 {
		cfg.MinSentenceWords = 3
	}
	if cfg.JobTTL <= 0 {
		cfg.JobTTL = 1 * time.Hour
	}

	return cfg
}

func (c Config) Validate() error {
	if c.APIKey == "" {
		return fmt.Errorf("PAPERLOC_API_KEY is required")
	}
	switch c.StoreBackend {
	case "memory":
	case "remote":
		if c.StoreURL == "" {
			return fmt.Errorf("STORE_URL is required for the remote store backend")
		}
		if c.StoreAPIKey == "" {
			return fmt.Errorf("STORE_API_KEY is required for the remote store backend")
		}
	default:
		return fmt.Errorf("unknown STORE_BACKEND %q (want memory or remote)", c.StoreBackend)
	}
	if c.EmbedEnabled {
		if c.EmbedBaseURL == "" {
			return fmt.Errorf("EMBED_BASE_URL is required when embedding is enabled")
		}
		if c.EmbedModel == "" {
			return fmt.Errorf("EMBED_MODEL is required when embedding is enabled")
		}
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
