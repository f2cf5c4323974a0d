package locator

import (
	"context"
	"strings"

	"github.com/paperloc/paperloc/internal/store"
)

// PrefixLen is how much of the sentence must appear verbatim in a chunk
// for a match. A fixed prefix tolerates the tail-end divergence the two
// cleaning passes introduce.
const PrefixLen = 50

// Position is where a sentence-level hit lands in the chunk-level index.
type Position struct {
	ChunkID          string `json:"chunk_id"`
	Page             int    `json:"page"`
	ChunkIndexInPage int    `json:"chunk_index_in_page"`
	ChunkIndexGlobal int    `json:"chunk_index_global"`
}

// Locate finds the chunk containing the sentence within the given
// document. It scans the document's chunks in global order and takes the
// first whose text contains the sentence prefix; when repeated boilerplate
// makes several chunks match, the lowest global index wins by policy.
// store.ErrNotFound means "no precise location available", an expected
// outcome since the sentence and chunk indexes are cleaned independently.
func Locate(ctx context.Context, s store.ChunkStore, sentenceText, doi string) (Position, error) {
	prefix := matchPrefix(sentenceText)
	if prefix == "" {
		return Position{}, store.ErrNotFound
	}

	chunks, err := s.ChunksByDOI(ctx, doi)
	if err != nil {
		return Position{}, err
	}
	for _, c := range chunks {
		if strings.Contains(c.Text, prefix) {
			return Position{
				ChunkID:          c.ID,
				Page:             c.Page,
				ChunkIndexInPage: c.ChunkIndexInPage,
				ChunkIndexGlobal: c.ChunkIndexGlobal,
			}, nil
		}
	}
	return Position{}, store.ErrNotFound
}

func matchPrefix(sentence string) string {
	sentence = strings.TrimSpace(sentence)
	runes := []rune(sentence)
	if len(runes) > PrefixLen {
		runes = runes[:PrefixLen]
	}
	return string(runes)
}
