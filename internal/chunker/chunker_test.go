package chunker

import (
	"fmt"
	"strings"
	"testing"
)

func pageOfText(sentences int) string {
	var b strings.Builder
	for i := 0; i < sentences; i++ {
		fmt.Fprintf(&b, "Sentence number %d reports a capacity retention figure for the cell. ", i)
	}
	return b.String()
}

func TestBuild_SmallPageSingleChunk(t *testing.T) {
	pages := []string{"This single page easily fits inside one chunk of the default size budget."}
	chunks := Build(pages, "doc1", "10.1000/x", "paper.pdf", DefaultConfig())

	if len(chunks) != 1 {
		t.Fatalf("expected 1 chunk, got %d", len(chunks))
	}
	c := chunks[0]
	if c.ID != "doc1_0" {
		t.Errorf("expected deterministic id doc1_0, got %q", c.ID)
	}
	if c.Page != 1 || c.ChunkIndexInPage != 0 || c.TotalChunksInPage != 1 || c.ChunkIndexGlobal != 0 {
		t.Errorf("unexpected positions: %+v", c)
	}
	if c.DOI != "10.1000/x" || c.Filename != "paper.pdf" {
		t.Errorf("document fields lost: %+v", c)
	}
}

func TestBuild_SkipsNearEmptyPages(t *testing.T) {
	pages := []string{pageOfText(20), "   \n ", pageOfText(20)}
	chunks := Build(pages, "doc1", "doi", "f.pdf", DefaultConfig())

	for _, c := range chunks {
		if c.Page == 2 {
			t.Errorf("chunk produced for near-empty page: %+v", c)
		}
	}
	sawPage3 := false
	for _, c := range chunks {
		if c.Page == 3 {
			sawPage3 = true
		}
	}
	if !sawPage3 {
		t.Errorf("page numbering must stay 1-based over skipped pages")
	}
}

func TestBuild_GlobalIndexOrdering(t *testing.T) {
	pages := []string{pageOfText(40), pageOfText(40), pageOfText(40)}
	chunks := Build(pages, "doc1", "doi", "f.pdf", DefaultConfig())

	if len(chunks) < 6 {
		t.Fatalf("expected several chunks, got %d", len(chunks))
	}
	for i, c := range chunks {
		if c.ChunkIndexGlobal != i {
			t.Errorf("chunk %d: expected global index %d, got %d", i, i, c.ChunkIndexGlobal)
		}
		if c.ID != fmt.Sprintf("doc1_%d", i) {
			t.Errorf("chunk %d: unexpected id %q", i, c.ID)
		}
	}
	// Global order consistent with (page, indexInPage).
	for i := 1; i < len(chunks); i++ {
		prev, cur := chunks[i-1], chunks[i]
		if cur.Page < prev.Page {
			t.Errorf("page order violated at %d: %d after %d", i, cur.Page, prev.Page)
		}
		if cur.Page == prev.Page && cur.ChunkIndexInPage != prev.ChunkIndexInPage+1 {
			t.Errorf("in-page order violated at %d", i)
		}
		if cur.Page > prev.Page && cur.ChunkIndexInPage != 0 {
			t.Errorf("in-page index must reset on page change, got %d", cur.ChunkIndexInPage)
		}
	}
}

func TestBuild_InPageIndexBelowTotal(t *testing.T) {
	pages := []string{pageOfText(60)}
	chunks := Build(pages, "doc1", "doi", "f.pdf", DefaultConfig())

	for _, c := range chunks {
		if c.ChunkIndexInPage < 0 || c.ChunkIndexInPage >= c.TotalChunksInPage {
			t.Errorf("index %d outside total %d", c.ChunkIndexInPage, c.TotalChunksInPage)
		}
	}
}

func TestBuild_ChunkSizesBounded(t *testing.T) {
	cfg := DefaultConfig()
	chunks := Build([]string{pageOfText(80)}, "doc1", "doi", "f.pdf", cfg)

	for i, c := range chunks {
		if len(c.Text) < cfg.MinChunk {
			t.Errorf("chunk %d below minimum: %d chars", i, len(c.Text))
		}
		if len(c.Text) > cfg.ChunkSize*2 {
			t.Errorf("chunk %d far above target: %d chars", i, len(c.Text))
		}
	}
}

func TestBuild_OverlapSharedBetweenNeighbors(t *testing.T) {
	cfg := DefaultConfig()
	chunks := Build([]string{pageOfText(40)}, "doc1", "doi", "f.pdf", cfg)

	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}
	first, second := chunks[0].Text, chunks[1].Text
	words := strings.Fields(first)
	tail := strings.Join(words[len(words)-3:], " ")
	if !strings.Contains(second, tail) {
		t.Errorf("expected tail %q of chunk 0 inside chunk 1: %q", tail, second[:min(len(second), 200)])
	}
}

func TestBuild_EmptyInput(t *testing.T) {
	if chunks := Build(nil, "doc1", "doi", "f.pdf", DefaultConfig()); len(chunks) != 0 {
		t.Errorf("expected no chunks, got %d", len(chunks))
	}
}

func TestCleanPageText(t *testing.T) {
	got := CleanPageText("electro-\nchemical   cell\n\n\n\nnext paragraph")
	if !strings.Contains(got, "electrochemical cell") {
		t.Errorf("dehyphenation failed: %q", got)
	}
	if strings.Contains(got, "\n\n\n") {
		t.Errorf("blank-line run survived: %q", got)
	}
}

func TestLink_BidirectionalConsistency(t *testing.T) {
	chunks := Build([]string{pageOfText(40), pageOfText(40)}, "doc1", "doi", "f.pdf", DefaultConfig())
	Link(chunks)

	if len(chunks) < 3 {
		t.Fatalf("expected at least 3 chunks, got %d", len(chunks))
	}

	byID := make(map[string]*Chunk, len(chunks))
	for i := range chunks {
		byID[chunks[i].ID] = &chunks[i]
	}

	noPrev, noNext := 0, 0
	for i := range chunks {
		c := &chunks[i]
		if c.PrevChunkID == "" {
			noPrev++
		} else if byID[c.PrevChunkID].NextChunkID != c.ID {
			t.Errorf("prev/next mismatch at %s", c.ID)
		}
		if c.NextChunkID == "" {
			noNext++
		} else if byID[c.NextChunkID].PrevChunkID != c.ID {
			t.Errorf("next/prev mismatch at %s", c.ID)
		}
	}
	if noPrev != 1 || noNext != 1 {
		t.Errorf("expected exactly one head and one tail, got %d/%d", noPrev, noNext)
	}
}

func TestLink_SingleChunk(t *testing.T) {
	chunks := []Chunk{{ID: "only"}}
	Link(chunks)
	if chunks[0].PrevChunkID != "" || chunks[0].NextChunkID != "" {
		t.Errorf("single chunk must have empty links: %+v", chunks[0])
	}
}

func TestSplitText_NoSeparators(t *testing.T) {
	text := strings.Repeat("x", 1500)
	parts := splitText(text, 600, 100)

	if len(parts) < 2 {
		t.Fatalf("expected hard split, got %d parts", len(parts))
	}
	var rebuilt strings.Builder
	rebuilt.WriteString(parts[0])
	for i := 1; i < len(parts); i++ {
		// Each part overlaps the previous by 100 chars.
		if len(parts[i]) > 100 {
			rebuilt.WriteString(parts[i][100:])
		}
	}
	if rebuilt.String() != text {
		t.Errorf("hard split lost content: rebuilt %d of %d chars", rebuilt.Len(), len(text))
	}
}

func TestSplitText_ShortTextPassthrough(t *testing.T) {
	parts := splitText("short text", 600, 100)
	if len(parts) != 1 || parts[0] != "short text" {
		t.Errorf("expected passthrough, got %q", parts)
	}
}
