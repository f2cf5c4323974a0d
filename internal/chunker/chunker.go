// Package chunker splits per-page text into fixed-size overlapping chunks,
// the retrieval units of the chunk-level index. Chunks carry page-relative
// and document-global positions plus bidirectional neighbor links.
package chunker

import (
	"fmt"
	"regexp"
	"strings"
)

// Chunk is one page-anchored retrieval unit. IDs derive from the document
// ID and the global index, so reprocessing identical input reproduces
// identical records.
type Chunk struct {
	ID                string    `json:"id"`
	Text              string    `json:"text"`
	DOI               string    `json:"doi"`
	Filename          string    `json:"filename"`
	Page              int       `json:"page"` // 1-based
	ChunkIndexInPage  int       `json:"chunk_index_in_page"`
	TotalChunksInPage int       `json:"total_chunks_in_page"`
	ChunkIndexGlobal  int       `json:"chunk_index_global"`
	PrevChunkID       string    `json:"prev_chunk_id,omitempty"`
	NextChunkID       string    `json:"next_chunk_id,omitempty"`
	SourceSnippet     string    `json:"source_snippet"`
	CharCount         int       `json:"char_count"`
	Embedding         []float32 `json:"embedding,omitempty"`
}

// Config controls chunking behavior. Sizes are in characters.
type Config struct {
	ChunkSize    int // target chunk size
	ChunkOverlap int // carried from the end of one chunk into the next
	MinChunk     int // fragments below this are dropped
	MinPageChars int // pages below this after cleaning are skipped
	SnippetLen   int // bounded display prefix
}

// DefaultConfig returns the sizes tuned for OCR'd scientific papers.
func DefaultConfig() Config {
	return Config{
		ChunkSize:    600,
		ChunkOverlap: 100,
		MinChunk:     30,
		MinPageChars: 50,
		SnippetLen:   150,
	}
}

var (
	multiSpace   = regexp.MustCompile(`[ \t]+`)
	multiNewline = regexp.MustCompile(`\n{3,}`)
)

// CleanPageText lightly normalizes raw page text: undo end-of-line
// hyphenation, collapse space runs and squeeze blank-line runs down to one
// paragraph break. Line structure survives so the splitter can prefer
// paragraph and line boundaries.
func CleanPageText(text string) string {
	text = strings.ReplaceAll(text, "-\n", "")
	text = multiSpace.ReplaceAllString(text, " ")
	text = multiNewline.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}

// Build produces chunks for one document. Near-empty pages are skipped,
// fragments below MinChunk are dropped before page totals are counted, and
// ChunkIndexGlobal increases strictly in (page, indexInPage) order.
func Build(pages []string, docID, doi, filename string, cfg Config) []Chunk {
	if cfg.ChunkSize <= 0 {
		cfg = DefaultConfig()
	}

	var chunks []Chunk
	global := 0

	for pageIdx, raw := range pages {
		pageNum := pageIdx + 1
		text := CleanPageText(raw)
		if len(text) < cfg.MinPageChars {
			continue
		}

		var kept []string
		for _, frag := range splitText(text, cfg.ChunkSize, cfg.ChunkOverlap) {
			if len(frag) >= cfg.MinChunk {
				kept = append(kept, frag)
			}
		}
		total := len(kept)

		for inPage, frag := range kept {
			chunks = append(chunks, Chunk{
				ID:                fmt.Sprintf("%s_%d", docID, global),
				Text:              frag,
				DOI:               doi,
				Filename:          filename,
				Page:              pageNum,
				ChunkIndexInPage:  inPage,
				TotalChunksInPage: total,
				ChunkIndexGlobal:  global,
				SourceSnippet:     snippet(frag, cfg.SnippetLen),
				CharCount:         len(frag),
			})
			global++
		}
	}
	return chunks
}

func snippet(text string, limit int) string {
	if limit <= 0 || len(text) <= limit {
		return text
	}
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return string(runes[:limit]) + "..."
}
