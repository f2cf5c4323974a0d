package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/paperloc/paperloc/internal/chunker"
	"github.com/paperloc/paperloc/internal/cleaner"
	"github.com/paperloc/paperloc/internal/config"
	"github.com/paperloc/paperloc/internal/embed"
	"github.com/paperloc/paperloc/internal/store"
)

// Orchestrator manages the document ingestion pipeline.
type Orchestrator struct {
	jobs     *JobStore
	queue    chan *Job
	embedder embed.Embedder
	st       store.Store
	log      *slog.Logger
	cfg      config.Config
	workOpts WorkerOptions

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewOrchestrator creates the pipeline. embedder may be nil when
// embedding is disabled.
func NewOrchestrator(cfg config.Config, embedder embed.Embedder, st store.Store, log *slog.Logger) *Orchestrator {
	return &Orchestrator{
		jobs:     NewJobStore(cfg.JobTTL),
		queue:    make(chan *Job, cfg.MaxQueueSize),
		embedder: embedder,
		st:       st,
		log:      log,
		cfg:      cfg,
		workOpts: WorkerOptions{
			CleanOptions: cleaner.DefaultOptions(),
			ChunkConfig: chunker.Config{
				ChunkSize:    cfg.ChunkSize,
				ChunkOverlap: cfg.ChunkOverlap,
				MinChunk:     cfg.MinChunk,
				MinPageChars: cfg.MinPageChars,
				SnippetLen:   150,
			},
			MinWords:           cfg.MinSentenceWords,
			EmbedBatchSize:     cfg.EmbedBatchSize,
			MaxConcurrentEmbed: cfg.MaxConcurrentEmbed,
			StoreBatchSize:     cfg.StoreBatchSize,
			MaxConcurrentStore: cfg.MaxConcurrentStore,
		},
	}
}

// Start launches worker goroutines.
func (o *Orchestrator) Start(ctx context.Context) {
	workerCtx, cancel := context.WithCancel(ctx)
	o.cancel = cancel

	for i := 0; i < o.cfg.WorkerCount; i++ {
		o.wg.Add(1)
		go func() {
			defer o.wg.Done()
			w := NewWorker(o.embedder, o.st, o.log, o.workOpts)
			for {
				select {
				case <-workerCtx.Done():
					return
				case job, ok := <-o.queue:
					if !ok {
						return
					}
					w.Process(workerCtx, job)
				}
			}
		}()
	}

	// Start job store cleanup.
	o.wg.Add(1)
	go func() {
		defer o.wg.Done()
		ticker := time.NewTicker(5 * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-workerCtx.Done():
				return
			case <-ticker.C:
				o.jobs.Cleanup()
			}
		}
	}()
}

// Stop gracefully shuts down the pipeline.
func (o *Orchestrator) Stop() {
	if o.cancel != nil {
		o.cancel()
	}
	close(o.queue)
	o.wg.Wait()
}

// Submit queues a new job for processing.
func (o *Orchestrator) Submit(job *Job) error {
	o.jobs.Put(job)
	select {
	case o.queue <- job:
		return nil
	default:
		job.SetStatus(StatusFailed, "queue_full")
		return fmt.Errorf("job queue is full (%d)", o.cfg.MaxQueueSize)
	}
}

// GetJob returns a job by ID.
func (o *Orchestrator) GetJob(id string) *Job {
	return o.jobs.Get(id)
}

// QueueDepth returns current queue depth.
func (o *Orchestrator) QueueDepth() int {
	return len(o.queue)
}

// Store exposes the record store for the context and locate endpoints.
func (o *Orchestrator) Store() store.Store {
	return o.st
}
