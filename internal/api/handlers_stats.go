package api

import (
	"encoding/json"
	"net/http"
)

func (s *Server) handleEmbeddingStats(w http.ResponseWriter, r *http.Request) {
	if s.embedClient == nil {
		jsonError(w, "embedding stats unavailable", http.StatusServiceUnavailable)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"model":       s.embedClient.ModelInfo(),
		"dimension":   s.embedClient.Dimension(),
		"queue_depth": s.orchestrator.QueueDepth(),
		"stats":       s.embedClient.Stats(),
	})
}
