package locator

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/paperloc/paperloc/internal/chunker"
	"github.com/paperloc/paperloc/internal/store"
)

// tenChunks seeds the store with one linked 10-chunk document.
func tenChunks(t *testing.T) (*store.Memory, []chunker.Chunk) {
	t.Helper()
	chunks := make([]chunker.Chunk, 10)
	for i := range chunks {
		chunks[i] = chunker.Chunk{
			ID:               fmt.Sprintf("doc_%d", i),
			Text:             fmt.Sprintf("Chunk body number %d with plenty of context text.", i),
			DOI:              "10.1000/test",
			Page:             i/3 + 1,
			ChunkIndexInPage: i % 3,
			ChunkIndexGlobal: i,
		}
	}
	chunker.Link(chunks)
	m := store.NewMemory()
	if err := m.PutChunks(context.Background(), chunks); err != nil {
		t.Fatalf("seed: %v", err)
	}
	return m, chunks
}

func TestExpand_WindowTwoAroundMiddle(t *testing.T) {
	m, chunks := tenChunks(t)

	w, err := Expand(context.Background(), m, chunks[4].ID, 2)
	if err != nil {
		t.Fatalf("expand: %v", err)
	}

	if len(w.Chunks) != 5 {
		t.Fatalf("expected 5 chunks, got %d", len(w.Chunks))
	}
	if w.MainChunkIndex != 2 {
		t.Errorf("expected main index 2, got %d", w.MainChunkIndex)
	}
	for i, c := range w.Chunks {
		if want := i + 2; c.ChunkIndexGlobal != want {
			t.Errorf("window position %d: expected global %d, got %d", i, want, c.ChunkIndexGlobal)
		}
	}
	if w.GlobalStart != 2 || w.GlobalEnd != 6 {
		t.Errorf("expected global range 2..6, got %d..%d", w.GlobalStart, w.GlobalEnd)
	}
	if w.MainText != chunks[4].Text {
		t.Errorf("main text mismatch: %q", w.MainText)
	}
	if !strings.Contains(w.FullText, chunks[2].Text) || !strings.Contains(w.FullText, chunks[6].Text) {
		t.Errorf("full text missing window members")
	}
	if got := strings.Count(w.FullText, "\n\n"); got != 4 {
		t.Errorf("expected 4 separators, got %d", got)
	}
}

func TestExpand_StopsAtDocumentStart(t *testing.T) {
	m, chunks := tenChunks(t)

	w, err := Expand(context.Background(), m, chunks[1].ID, 3)
	if err != nil {
		t.Fatalf("expand: %v", err)
	}
	// Only one chunk exists before index 1.
	if len(w.Chunks) != 5 {
		t.Fatalf("expected 5 chunks (1 before, main, 3 after), got %d", len(w.Chunks))
	}
	if w.MainChunkIndex != 1 {
		t.Errorf("expected main index 1, got %d", w.MainChunkIndex)
	}
	if w.Chunks[0].ChunkIndexGlobal != 0 {
		t.Errorf("window must start at document head")
	}
}

func TestExpand_WindowZero(t *testing.T) {
	m, chunks := tenChunks(t)

	w, err := Expand(context.Background(), m, chunks[7].ID, 0)
	if err != nil {
		t.Fatalf("expand: %v", err)
	}
	if len(w.Chunks) != 1 || w.MainChunkIndex != 0 {
		t.Errorf("expected single-chunk window, got %d chunks main %d", len(w.Chunks), w.MainChunkIndex)
	}
	if w.FullText != chunks[7].Text {
		t.Errorf("full text must equal main text for window 0")
	}
}

func TestExpand_UnknownChunk(t *testing.T) {
	m, _ := tenChunks(t)

	_, err := Expand(context.Background(), m, "doc_99", 2)
	if !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestExpand_PageRange(t *testing.T) {
	m, chunks := tenChunks(t)

	w, err := Expand(context.Background(), m, chunks[3].ID, 2)
	if err != nil {
		t.Fatalf("expand: %v", err)
	}
	if w.PageStart > w.PageEnd {
		t.Errorf("inverted page range %d..%d", w.PageStart, w.PageEnd)
	}
	if w.PageStart != chunks[1].Page || w.PageEnd != chunks[5].Page {
		t.Errorf("expected pages %d..%d, got %d..%d", chunks[1].Page, chunks[5].Page, w.PageStart, w.PageEnd)
	}
}

func TestLocate_FindsContainingChunk(t *testing.T) {
	m, chunks := tenChunks(t)

	sentence := "Chunk body number 6 with plenty of context text."
	pos, err := Locate(context.Background(), m, sentence, "10.1000/test")
	if err != nil {
		t.Fatalf("locate: %v", err)
	}
	if pos.ChunkID != chunks[6].ID {
		t.Errorf("expected %s, got %s", chunks[6].ID, pos.ChunkID)
	}
	if pos.Page != chunks[6].Page || pos.ChunkIndexInPage != chunks[6].ChunkIndexInPage {
		t.Errorf("position fields wrong: %+v", pos)
	}
}

func TestLocate_LowestGlobalIndexWinsOnTies(t *testing.T) {
	m := store.NewMemory()
	boilerplate := "All rights reserved by the publisher of this journal volume."
	chunks := []chunker.Chunk{
		{ID: "d_0", DOI: "x", Text: "Intro. " + boilerplate, ChunkIndexGlobal: 0, Page: 1},
		{ID: "d_1", DOI: "x", Text: "Body. " + boilerplate, ChunkIndexGlobal: 1, Page: 2},
	}
	if err := m.PutChunks(context.Background(), chunks); err != nil {
		t.Fatalf("seed: %v", err)
	}

	pos, err := Locate(context.Background(), m, boilerplate, "x")
	if err != nil {
		t.Fatalf("locate: %v", err)
	}
	if pos.ChunkID != "d_0" {
		t.Errorf("tie must resolve to lowest global index, got %s", pos.ChunkID)
	}
}

func TestLocate_NoMatchIsNotFound(t *testing.T) {
	m, _ := tenChunks(t)

	_, err := Locate(context.Background(), m, "This sentence never appeared in any chunk anywhere.", "10.1000/test")
	if !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}

	_, err = Locate(context.Background(), m, "Chunk body number 1 with plenty of context text.", "10.9999/other")
	if !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected ErrNotFound for wrong doi, got %v", err)
	}
}

func TestLocate_ShortSentenceUsesWholeText(t *testing.T) {
	m, chunks := tenChunks(t)

	pos, err := Locate(context.Background(), m, "number 3", "10.1000/test")
	if err != nil {
		t.Fatalf("locate: %v", err)
	}
	if pos.ChunkID != chunks[3].ID {
		t.Errorf("expected %s, got %s", chunks[3].ID, pos.ChunkID)
	}
}

func TestLocate_EmptySentence(t *testing.T) {
	m, _ := tenChunks(t)
	if _, err := Locate(context.Background(), m, "   ", "10.1000/test"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected ErrNotFound for empty sentence, got %v", err)
	}
}
