package store

import (
	"context"
	"sort"
	"sync"

	"github.com/paperloc/paperloc/internal/chunker"
)

// Memory is an in-process Store for development and tests. Writes replace
// by ID, so replaying a document is idempotent.
type Memory struct {
	mu        sync.RWMutex
	chunks    map[string]chunker.Chunk
	sentences map[string]SentenceRecord
}

func NewMemory() *Memory {
	return &Memory{
		chunks:    make(map[string]chunker.Chunk),
		sentences: make(map[string]SentenceRecord),
	}
}

func (m *Memory) PutChunks(_ context.Context, chunks []chunker.Chunk) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range chunks {
		m.chunks[c.ID] = c
	}
	return nil
}

func (m *Memory) GetChunk(_ context.Context, id string) (chunker.Chunk, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.chunks[id]
	if !ok {
		return chunker.Chunk{}, ErrNotFound
	}
	return c, nil
}

func (m *Memory) ChunksByDOI(_ context.Context, doi string) ([]chunker.Chunk, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []chunker.Chunk
	for _, c := range m.chunks {
		if c.DOI == doi {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].ChunkIndexGlobal < out[j].ChunkIndexGlobal
	})
	return out, nil
}

func (m *Memory) PutSentences(_ context.Context, records []SentenceRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range records {
		m.sentences[r.ID] = r
	}
	return nil
}

func (m *Memory) GetSentence(_ context.Context, id string) (SentenceRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.sentences[id]
	if !ok {
		return SentenceRecord{}, ErrNotFound
	}
	return r, nil
}

func (m *Memory) SentencesByDOI(_ context.Context, doi string) ([]SentenceRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []SentenceRecord
	for _, r := range m.sentences {
		if r.DOI == doi {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Index < out[j].Index })
	return out, nil
}
