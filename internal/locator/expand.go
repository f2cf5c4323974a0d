// Package locator answers the two query-time questions about persisted
// records: "show me this chunk with its neighbors" and "which page/chunk
// contains this sentence".
package locator

import (
	"context"
	"errors"
	"strings"

	"github.com/paperloc/paperloc/internal/chunker"
	"github.com/paperloc/paperloc/internal/store"
)

// ContextWindow is an ordered run of neighboring chunks assembled around a
// main chunk for expanded display. It is built on demand and never
// persisted.
type ContextWindow struct {
	MainChunkID    string          `json:"main_chunk_id"`
	Chunks         []chunker.Chunk `json:"chunks"`
	MainChunkIndex int             `json:"main_chunk_index"`
	PageStart      int             `json:"page_start"`
	PageEnd        int             `json:"page_end"`
	GlobalStart    int             `json:"global_index_start"`
	GlobalEnd      int             `json:"global_index_end"`
	FullText       string          `json:"full_text"`
	MainText       string          `json:"main_text"`
}

const textSeparator = "\n\n"

// Expand walks the neighbor links up to window steps in each direction,
// stopping early at document ends. window = 0 is valid and yields a
// single-chunk window. An unknown chunk id returns store.ErrNotFound; a
// broken link mid-walk truncates the window instead of failing.
func Expand(ctx context.Context, s store.ChunkStore, chunkID string, window int) (*ContextWindow, error) {
	if window < 0 {
		window = 0
	}

	main, err := s.GetChunk(ctx, chunkID)
	if err != nil {
		return nil, err
	}

	before, err := walk(ctx, s, main.PrevChunkID, window, func(c chunker.Chunk) string { return c.PrevChunkID })
	if err != nil {
		return nil, err
	}
	after, err := walk(ctx, s, main.NextChunkID, window, func(c chunker.Chunk) string { return c.NextChunkID })
	if err != nil {
		return nil, err
	}

	chunks := make([]chunker.Chunk, 0, len(before)+1+len(after))
	for i := len(before) - 1; i >= 0; i-- {
		chunks = append(chunks, before[i])
	}
	mainIndex := len(chunks)
	chunks = append(chunks, main)
	chunks = append(chunks, after...)

	w := &ContextWindow{
		MainChunkID:    chunkID,
		Chunks:         chunks,
		MainChunkIndex: mainIndex,
		PageStart:      chunks[0].Page,
		PageEnd:        chunks[0].Page,
		GlobalStart:    chunks[0].ChunkIndexGlobal,
		GlobalEnd:      chunks[0].ChunkIndexGlobal,
		MainText:       main.Text,
	}
	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Text
		if c.Page < w.PageStart {
			w.PageStart = c.Page
		}
		if c.Page > w.PageEnd {
			w.PageEnd = c.Page
		}
		if c.ChunkIndexGlobal < w.GlobalStart {
			w.GlobalStart = c.ChunkIndexGlobal
		}
		if c.ChunkIndexGlobal > w.GlobalEnd {
			w.GlobalEnd = c.ChunkIndexGlobal
		}
	}
	w.FullText = strings.Join(texts, textSeparator)
	return w, nil
}

// walk follows one link direction up to limit steps, starting at id.
func walk(ctx context.Context, s store.ChunkStore, id string, limit int, next func(chunker.Chunk) string) ([]chunker.Chunk, error) {
	var out []chunker.Chunk
	for steps := 0; steps < limit && id != ""; steps++ {
		c, err := s.GetChunk(ctx, id)
		if errors.Is(err, store.ErrNotFound) {
			break
		}
		if err != nil {
			return nil, err
		}
		out = append(out, c)
		id = next(c)
	}
	return out, nil
}
