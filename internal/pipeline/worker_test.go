package pipeline

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/paperloc/paperloc/internal/chunker"
	"github.com/paperloc/paperloc/internal/cleaner"
	"github.com/paperloc/paperloc/internal/store"
)

const sampleMarkdown = `# Attention Is All You Need

## Introduction

The transformer architecture replaces recurrence with attention. This design allows far better parallelism during training. Results improved across every translation benchmark we measured.

## Methods

We trained the base model on eight GPUs for three days. The final configuration reached 28.4 BLEU on the WMT translation task.
`

type stubEmbedder struct{}

func (s *stubEmbedder) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i := range out {
		out[i] = []float32{1, 0, 0}
	}
	return out, nil
}

func (s *stubEmbedder) Dimension() int    { return 3 }
func (s *stubEmbedder) ModelInfo() string { return "stub" }

func newTestWorker(m *store.Memory, embedder *stubEmbedder) *Worker {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	opts := WorkerOptions{
		CleanOptions: cleaner.DefaultOptions(),
		ChunkConfig:  chunker.DefaultConfig(),
	}
	if embedder != nil {
		return NewWorker(embedder, m, logger, opts)
	}
	return NewWorker(nil, m, logger, opts)
}

func newTestJob(filename, doi string) *Job {
	job := &Job{
		ID:        NewJobID(),
		DOI:       doi,
		Filename:  filename,
		Status:    StatusQueued,
		Phase:     "queued",
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	job.SetFileData([]byte(sampleMarkdown))
	return job
}

func TestWorker_ProcessMarkdownEndToEnd(t *testing.T) {
	m := store.NewMemory()
	w := newTestWorker(m, nil)
	job := newTestJob("paper.md", "10.1000/txf")

	w.Process(context.Background(), job)

	snap := job.Snapshot()
	if snap.Status != StatusCompleted {
		t.Fatalf("expected completed, got %s (%s): %v", snap.Status, snap.Phase, snap.Progress.Errors)
	}
	if snap.Title != "Attention Is All You Need" {
		t.Errorf("expected title from h1, got %q", snap.Title)
	}
	if snap.DocID == "" || len(snap.DocID) != 16 {
		t.Errorf("expected 16-char doc ID, got %q", snap.DocID)
	}

	chunks, err := m.ChunksByDOI(context.Background(), "10.1000/txf")
	if err != nil {
		t.Fatalf("chunks by doi: %v", err)
	}
	if len(chunks) == 0 {
		t.Fatal("expected stored chunks")
	}
	for _, c := range chunks {
		if !strings.HasPrefix(c.ID, snap.DocID+"_") {
			t.Errorf("chunk ID %q missing doc ID prefix", c.ID)
		}
	}
	if snap.Progress.ChunksStored != len(chunks) {
		t.Errorf("progress reports %d chunks stored, store has %d", snap.Progress.ChunksStored, len(chunks))
	}

	sentences, err := m.SentencesByDOI(context.Background(), "10.1000/txf")
	if err != nil {
		t.Fatalf("sentences by doi: %v", err)
	}
	if len(sentences) == 0 {
		t.Fatal("expected stored sentences")
	}
	for _, r := range sentences {
		if r.Sentence.Location.SectionID == "" {
			t.Errorf("sentence %q missing section ID", r.ID)
		}
	}
	if snap.Progress.SentencesStored != len(sentences) {
		t.Errorf("progress reports %d sentences stored, store has %d", snap.Progress.SentencesStored, len(sentences))
	}
}

func TestWorker_ProcessEmbedsChunksAndSentences(t *testing.T) {
	m := store.NewMemory()
	w := newTestWorker(m, &stubEmbedder{})
	job := newTestJob("paper.md", "10.1000/embed")

	w.Process(context.Background(), job)

	snap := job.Snapshot()
	if snap.Status != StatusCompleted {
		t.Fatalf("expected completed, got %s: %v", snap.Status, snap.Progress.Errors)
	}

	chunks, _ := m.ChunksByDOI(context.Background(), "10.1000/embed")
	for _, c := range chunks {
		if len(c.Embedding) != 3 {
			t.Errorf("chunk %s missing embedding", c.ID)
		}
	}
	if snap.Progress.ChunksEmbedded != len(chunks) {
		t.Errorf("expected %d chunks embedded, got %d", len(chunks), snap.Progress.ChunksEmbedded)
	}

	sentences, _ := m.SentencesByDOI(context.Background(), "10.1000/embed")
	for _, r := range sentences {
		if len(r.Embedding) != 3 {
			t.Errorf("sentence %s missing embedding", r.ID)
		}
	}
}

func TestWorker_ProcessSkipsDuplicateContent(t *testing.T) {
	m := store.NewMemory()
	w := newTestWorker(m, nil)

	first := newTestJob("paper.md", "10.1000/dup")
	w.Process(context.Background(), first)
	if first.Snapshot().Status != StatusCompleted {
		t.Fatalf("first ingest should complete, got %s", first.Snapshot().Status)
	}

	second := newTestJob("paper.md", "10.1000/dup")
	w.Process(context.Background(), second)
	if got := second.Snapshot().Status; got != StatusDupSkipped {
		t.Errorf("expected duplicate_skipped, got %s", got)
	}
}

func TestWorker_ProcessUnsupportedExtension(t *testing.T) {
	m := store.NewMemory()
	w := newTestWorker(m, nil)
	job := newTestJob("paper.xyz", "10.1000/bad")

	w.Process(context.Background(), job)

	snap := job.Snapshot()
	if snap.Status != StatusFailed {
		t.Fatalf("expected failed, got %s", snap.Status)
	}
	if len(snap.Progress.Errors) == 0 {
		t.Error("expected recorded error")
	}
}

func TestWorker_ProcessEmptyDocumentFails(t *testing.T) {
	m := store.NewMemory()
	w := newTestWorker(m, nil)
	job := newTestJob("empty.md", "10.1000/empty")
	job.SetFileData([]byte(""))

	w.Process(context.Background(), job)

	if got := job.Snapshot().Status; got != StatusFailed {
		t.Errorf("expected failed for empty document, got %s", got)
	}
}
