// Package store is the persistence boundary for chunk and sentence records.
// The pipeline only writes batches; the resolvers only need get-by-id and
// get-by-DOI. Everything richer (vector search, graph queries) lives in the
// external collaborator behind these interfaces.
package store

import (
	"context"
	"errors"

	"github.com/paperloc/paperloc/internal/chunker"
	"github.com/paperloc/paperloc/internal/extract"
)

// ErrNotFound reports an absent record. Resolvers surface it to callers,
// who treat it as "location unknown" rather than a fault.
var ErrNotFound = errors.New("record not found")

// SentenceRecord pairs an extracted sentence with its document identity.
// The ID derives from document, section, paragraph and sentence indices.
type SentenceRecord struct {
	ID        string           `json:"id"`
	DOI       string           `json:"doi"`
	Filename  string           `json:"filename"`
	Index     int              `json:"index"` // document-order ordinal
	Sentence  extract.Sentence `json:"sentence"`
	Embedding []float32        `json:"embedding,omitempty"`
}

// ChunkStore persists and retrieves chunk records. ChunksByDOI returns the
// document's chunks ordered by ChunkIndexGlobal.
type ChunkStore interface {
	PutChunks(ctx context.Context, chunks []chunker.Chunk) error
	GetChunk(ctx context.Context, id string) (chunker.Chunk, error)
	ChunksByDOI(ctx context.Context, doi string) ([]chunker.Chunk, error)
}

// SentenceStore persists and retrieves sentence records in document order.
type SentenceStore interface {
	PutSentences(ctx context.Context, records []SentenceRecord) error
	GetSentence(ctx context.Context, id string) (SentenceRecord, error)
	SentencesByDOI(ctx context.Context, doi string) ([]SentenceRecord, error)
}

// Store is the full boundary the pipeline and resolvers share.
type Store interface {
	ChunkStore
	SentenceStore
}
