package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/paperloc/paperloc/internal/chunker"
	"github.com/paperloc/paperloc/internal/cleaner"
	"github.com/paperloc/paperloc/internal/doctree"
	"github.com/paperloc/paperloc/internal/embed"
	"github.com/paperloc/paperloc/internal/extract"
	"github.com/paperloc/paperloc/internal/parser"
	"github.com/paperloc/paperloc/internal/store"
)

// WorkerOptions tunes one worker's processing behavior.
type WorkerOptions struct {
	CleanOptions cleaner.Options
	ChunkConfig  chunker.Config
	MinWords     int

	EmbedBatchSize     int
	MaxConcurrentEmbed int
	StoreBatchSize     int
	MaxConcurrentStore int
}

// Worker processes a single document job.
type Worker struct {
	embedder embed.Embedder // nil skips the embedding phase
	st       store.Store
	log      *slog.Logger
	opts     WorkerOptions
}

func NewWorker(embedder embed.Embedder, st store.Store, log *slog.Logger, opts WorkerOptions) *Worker {
	if opts.MinWords <= 0 {
		opts.MinWords = extract.DefaultMinWords
	}
	if opts.EmbedBatchSize <= 0 {
		opts.EmbedBatchSize = 32
	}
	if opts.MaxConcurrentEmbed <= 0 {
		opts.MaxConcurrentEmbed = 4
	}
	if opts.StoreBatchSize <= 0 {
		opts.StoreBatchSize = 100
	}
	if opts.MaxConcurrentStore <= 0 {
		opts.MaxConcurrentStore = 4
	}
	return &Worker{
		embedder: embedder,
		st:       st,
		log:      log,
		opts:     opts,
	}
}

// Process runs the full ingest pipeline for a job.
func (w *Worker) Process(ctx context.Context, job *Job) {
	log := w.log.With("job_id", job.ID, "doi", job.DOI, "filename", job.Filename)

	// Phase 1: Parse
	job.SetStatus(StatusParsing, "parsing")
	p, err := parser.ForFile(job.Filename)
	if err != nil {
		log.Error("unsupported format", "error", err)
		job.AddError(err.Error())
		job.SetStatus(StatusFailed, "parsing")
		return
	}

	doc, err := p.Parse(bytes.NewReader(job.FileData()), job.Filename)
	if err != nil {
		log.Error("parse failed", "error", err)
		job.AddError(fmt.Sprintf("parse: %s", err))
		job.SetStatus(StatusFailed, "parsing")
		return
	}
	if job.Title == "" {
		job.Title = doc.Title
	}

	contentHash := ContentHashHex([]byte(doc.Markdown))
	docID := DocID(contentHash)
	job.SetDocID(docID, contentHash)

	// Phase 1.5: Dedup check against already-stored chunks.
	dup, err := w.checkDuplicate(ctx, job.DOI, docID)
	if err != nil {
		log.Warn("dedup check failed, proceeding", "error", err)
	} else if dup {
		log.Info("duplicate document, skipping", "doc_id", docID)
		job.SetStatus(StatusDupSkipped, "dedup")
		return
	}

	// Phase 2: Clean
	job.SetStatus(StatusCleaning, "cleaning")
	cleaned := cleaner.New(w.opts.CleanOptions).Clean(doc.Markdown)
	log.Info("cleaned document",
		"lines_before", cleaned.OriginalLineCount,
		"lines_after", cleaned.CleanedLineCount,
		"tables", len(cleaned.Tables))

	// Phase 3: Structure
	job.SetStatus(StatusStructuring, "structuring")
	tree := doctree.Build(cleaned.Text)

	// Phase 4: Extract sentences
	job.SetStatus(StatusExtracting, "extracting sentences")
	sentences, stats := extract.New(w.opts.MinWords).Extract(cleaned, tree)
	job.SetExtraction(len(sentences), stats.Tables)
	log.Info("extracted sentences",
		"sentences", stats.Sentences,
		"tables", stats.Tables,
		"dropped_short", stats.DroppedShort)

	records := make([]store.SentenceRecord, len(sentences))
	for i, s := range sentences {
		records[i] = store.SentenceRecord{
			ID:       SentenceID(docID, s.Location.SectionID, s.Location.ParagraphIndex, s.Location.SentenceIndex),
			DOI:      job.DOI,
			Filename: job.Filename,
			Index:    i,
			Sentence: s,
		}
	}

	// Phase 5: Chunk pages and link neighbors.
	job.SetStatus(StatusChunking, "chunking")
	chunks := chunker.Build(doc.Pages, docID, job.DOI, job.Filename, w.opts.ChunkConfig)
	chunker.Link(chunks)
	job.SetTotals(len(doc.Pages), len(chunks))
	log.Info("chunked document", "pages", len(doc.Pages), "chunks", len(chunks))

	if len(chunks) == 0 && len(records) == 0 {
		log.Warn("no extractable content")
		job.AddError("no extractable content")
		job.SetStatus(StatusFailed, "chunking")
		return
	}

	hadErrors := false

	// Phase 6: Embed with bounded concurrency.
	if w.embedder != nil {
		job.SetStatus(StatusEmbedding, "embedding chunks")
		chunkTexts := make([]string, len(chunks))
		for i := range chunks {
			chunkTexts[i] = chunks[i].Text
		}
		if w.embedTexts(ctx, log, job, "chunks", chunkTexts, func(i int, vec []float32) {
			chunks[i].Embedding = vec
		}) {
			hadErrors = true
		}

		job.SetStatus(StatusEmbedding, "embedding sentences")
		sentenceTexts := make([]string, len(records))
		for i := range records {
			sentenceTexts[i] = records[i].Sentence.Text
		}
		if w.embedTexts(ctx, log, job, "sentences", sentenceTexts, func(i int, vec []float32) {
			records[i].Embedding = vec
		}) {
			hadErrors = true
		}
	}

	// Phase 7: Store batches.
	job.SetStatus(StatusStoring, "storing")
	chunksStored, chunkErrs := w.storeChunks(ctx, log, job, chunks)
	sentencesStored, sentenceErrs := w.storeSentences(ctx, log, job, records)
	hadErrors = hadErrors || chunkErrs || sentenceErrs
	log.Info("storage complete",
		"chunks_stored", chunksStored,
		"sentences_stored", sentencesStored)

	storedAnything := chunksStored > 0 || sentencesStored > 0
	switch {
	case hadErrors && storedAnything:
		job.SetStatus(StatusPartial, "done")
	case hadErrors:
		job.SetStatus(StatusFailed, "storing")
	default:
		job.SetStatus(StatusCompleted, "done")
	}
}

// embedTexts embeds texts in batches and hands each vector to assign.
// Returns true when any batch ultimately failed.
func (w *Worker) embedTexts(ctx context.Context, log *slog.Logger, job *Job, label string, texts []string, assign func(int, []float32)) bool {
	if len(texts) == 0 {
		return false
	}

	batchSize := w.opts.EmbedBatchSize
	numBatches := (len(texts) + batchSize - 1) / batchSize

	type result struct {
		start int
		vecs  [][]float32
		err   error
	}
	results := make(chan result, numBatches)
	sem := make(chan struct{}, w.opts.MaxConcurrentEmbed)

	for start := 0; start < len(texts); start += batchSize {
		end := min(start+batchSize, len(texts))
		sem <- struct{}{}
		go func(start, end int) {
			defer func() { <-sem }()
			var vecs [][]float32
			var lastErr error
			for attempt := 0; attempt < MaxRetries; attempt++ {
				vecs, lastErr = w.embedder.EmbedBatch(ctx, texts[start:end])
				if lastErr == nil || !IsRetryable(lastErr) {
					break
				}
				log.Warn("retryable embedding error", "batch_start", start, "attempt", attempt, "error", lastErr)
				select {
				case <-time.After(Backoff(attempt)):
				case <-ctx.Done():
					results <- result{start: start, err: ctx.Err()}
					return
				}
			}
			results <- result{start: start, vecs: vecs, err: lastErr}
		}(start, end)
	}

	hadErrors := false
	embedded := 0
	for i := 0; i < numBatches; i++ {
		r := <-results
		if r.err != nil {
			log.Error("embedding failed", "what", label, "batch_start", r.start, "error", r.err)
			job.AddError(fmt.Sprintf("embed %s batch %d: %s", label, r.start, r.err))
			hadErrors = true
			continue
		}
		for i, vec := range r.vecs {
			assign(r.start+i, vec)
		}
		embedded += len(r.vecs)
	}
	if label == "chunks" {
		job.AddChunksEmbedded(embedded)
	}
	return hadErrors
}

// storeChunks persists chunks in batches with bounded concurrency.
func (w *Worker) storeChunks(ctx context.Context, log *slog.Logger, job *Job, chunks []chunker.Chunk) (int, bool) {
	if len(chunks) == 0 {
		return 0, false
	}

	batchSize := w.opts.StoreBatchSize
	numBatches := (len(chunks) + batchSize - 1) / batchSize

	type result struct {
		n   int
		err error
	}
	results := make(chan result, numBatches)
	sem := make(chan struct{}, w.opts.MaxConcurrentStore)

	for start := 0; start < len(chunks); start += batchSize {
		end := min(start+batchSize, len(chunks))
		sem <- struct{}{}
		go func(batch []chunker.Chunk) {
			defer func() { <-sem }()
			if err := w.st.PutChunks(ctx, batch); err != nil {
				results <- result{err: err}
				return
			}
			results <- result{n: len(batch)}
		}(chunks[start:end])
	}

	stored := 0
	hadErrors := false
	for i := 0; i < numBatches; i++ {
		r := <-results
		if r.err != nil {
			log.Error("chunk store failed", "error", r.err)
			job.AddError(fmt.Sprintf("store chunks: %s", r.err))
			hadErrors = true
			continue
		}
		stored += r.n
	}
	job.AddStored(stored, 0)
	return stored, hadErrors
}

// storeSentences persists sentence records in batches with bounded
// concurrency.
func (w *Worker) storeSentences(ctx context.Context, log *slog.Logger, job *Job, records []store.SentenceRecord) (int, bool) {
	if len(records) == 0 {
		return 0, false
	}

	batchSize := w.opts.StoreBatchSize
	numBatches := (len(records) + batchSize - 1) / batchSize

	type result struct {
		n   int
		err error
	}
	results := make(chan result, numBatches)
	sem := make(chan struct{}, w.opts.MaxConcurrentStore)

	for start := 0; start < len(records); start += batchSize {
		end := min(start+batchSize, len(records))
		sem <- struct{}{}
		go func(batch []store.SentenceRecord) {
			defer func() { <-sem }()
			if err := w.st.PutSentences(ctx, batch); err != nil {
				results <- result{err: err}
				return
			}
			results <- result{n: len(batch)}
		}(records[start:end])
	}

	stored := 0
	hadErrors := false
	for i := 0; i < numBatches; i++ {
		r := <-results
		if r.err != nil {
			log.Error("sentence store failed", "error", r.err)
			job.AddError(fmt.Sprintf("store sentences: %s", r.err))
			hadErrors = true
			continue
		}
		stored += r.n
	}
	job.AddStored(0, stored)
	return stored, hadErrors
}

// checkDuplicate reports whether this content is already stored for the
// DOI. Chunk IDs carry the content-derived document ID as their prefix.
func (w *Worker) checkDuplicate(ctx context.Context, doi, docID string) (bool, error) {
	if doi == "" {
		return false, nil
	}
	existing, err := w.st.ChunksByDOI(ctx, doi)
	if err != nil {
		return false, err
	}
	prefix := docID + "_"
	for _, c := range existing {
		if strings.HasPrefix(c.ID, prefix) {
			return true, nil
		}
	}
	return false, nil
}
