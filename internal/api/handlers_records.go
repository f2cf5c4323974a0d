package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/paperloc/paperloc/internal/locator"
	"github.com/paperloc/paperloc/internal/store"
)

// DefaultContextWindow is the neighbor count used when the request does
// not specify one.
const DefaultContextWindow = 2

// MaxContextWindow caps how far a single request may expand.
const MaxContextWindow = 10

// handleChunksByDOI returns a document's chunks in global order.
func (s *Server) handleChunksByDOI(w http.ResponseWriter, r *http.Request) {
	doi := r.URL.Query().Get("doi")
	if doi == "" {
		jsonError(w, "doi query parameter is required", http.StatusBadRequest)
		return
	}

	chunks, err := s.orchestrator.Store().ChunksByDOI(r.Context(), doi)
	if err != nil {
		jsonError(w, "failed to list chunks: "+err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"doi":    doi,
		"count":  len(chunks),
		"chunks": chunks,
	})
}

// handleGetChunk returns a single chunk by ID.
func (s *Server) handleGetChunk(w http.ResponseWriter, r *http.Request) {
	chunkID := chi.URLParam(r, "chunkID")
	chunk, err := s.orchestrator.Store().GetChunk(r.Context(), chunkID)
	if errors.Is(err, store.ErrNotFound) {
		jsonError(w, "chunk not found", http.StatusNotFound)
		return
	}
	if err != nil {
		jsonError(w, "failed to get chunk: "+err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(chunk)
}

// handleChunkContext expands a chunk into its neighbor window.
func (s *Server) handleChunkContext(w http.ResponseWriter, r *http.Request) {
	chunkID := chi.URLParam(r, "chunkID")

	window := DefaultContextWindow
	if v := r.URL.Query().Get("window"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			jsonError(w, "window must be a non-negative integer", http.StatusBadRequest)
			return
		}
		window = n
	}
	if window > MaxContextWindow {
		window = MaxContextWindow
	}

	ctxWindow, err := locator.Expand(r.Context(), s.orchestrator.Store(), chunkID, window)
	if errors.Is(err, store.ErrNotFound) {
		jsonError(w, "chunk not found", http.StatusNotFound)
		return
	}
	if err != nil {
		jsonError(w, "failed to expand context: "+err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(ctxWindow)
}

// handleSentencesByDOI returns a document's sentence records in document
// order.
func (s *Server) handleSentencesByDOI(w http.ResponseWriter, r *http.Request) {
	doi := r.URL.Query().Get("doi")
	if doi == "" {
		jsonError(w, "doi query parameter is required", http.StatusBadRequest)
		return
	}

	sentences, err := s.orchestrator.Store().SentencesByDOI(r.Context(), doi)
	if err != nil {
		jsonError(w, "failed to list sentences: "+err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"doi":       doi,
		"count":     len(sentences),
		"sentences": sentences,
	})
}

type locateRequest struct {
	Sentence string `json:"sentence"`
	DOI      string `json:"doi"`
}

// handleLocate maps a sentence back to the chunk that contains it.
func (s *Server) handleLocate(w http.ResponseWriter, r *http.Request) {
	var req locateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.Sentence) == "" {
		jsonError(w, "sentence is required", http.StatusBadRequest)
		return
	}
	if req.DOI == "" {
		jsonError(w, "doi is required", http.StatusBadRequest)
		return
	}

	pos, err := locator.Locate(r.Context(), s.orchestrator.Store(), req.Sentence, req.DOI)
	if errors.Is(err, store.ErrNotFound) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{"found": false})
		return
	}
	if err != nil {
		jsonError(w, "locate failed: "+err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"found":    true,
		"position": pos,
	})
}
