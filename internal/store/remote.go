package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/paperloc/paperloc/internal/chunker"
)

// Remote talks to the external record-store service over HTTP/JSON with
// bearer auth. It implements Store.
type Remote struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

func NewRemote(baseURL, apiKey string) *Remote {
	return &Remote{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

func (r *Remote) PutChunks(ctx context.Context, chunks []chunker.Chunk) error {
	return r.putBatch(ctx, "/records/chunks", chunks)
}

func (r *Remote) GetChunk(ctx context.Context, id string) (chunker.Chunk, error) {
	var c chunker.Chunk
	err := r.getJSON(ctx, "/records/chunks/"+url.PathEscape(id), &c)
	return c, err
}

func (r *Remote) ChunksByDOI(ctx context.Context, doi string) ([]chunker.Chunk, error) {
	var out struct {
		Chunks []chunker.Chunk `json:"chunks"`
	}
	if err := r.getJSON(ctx, "/records/chunks?doi="+url.QueryEscape(doi), &out); err != nil {
		return nil, err
	}
	return out.Chunks, nil
}

func (r *Remote) PutSentences(ctx context.Context, records []SentenceRecord) error {
	return r.putBatch(ctx, "/records/sentences", records)
}

func (r *Remote) GetSentence(ctx context.Context, id string) (SentenceRecord, error) {
	var rec SentenceRecord
	err := r.getJSON(ctx, "/records/sentences/"+url.PathEscape(id), &rec)
	return rec, err
}

func (r *Remote) SentencesByDOI(ctx context.Context, doi string) ([]SentenceRecord, error) {
	var out struct {
		Sentences []SentenceRecord `json:"sentences"`
	}
	if err := r.getJSON(ctx, "/records/sentences?doi="+url.QueryEscape(doi), &out); err != nil {
		return nil, err
	}
	return out.Sentences, nil
}

func (r *Remote) putBatch(ctx context.Context, path string, batch any) error {
	body, err := json.Marshal(batch)
	if err != nil {
		return fmt.Errorf("marshal batch: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, r.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+r.apiKey)

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("put %s: %w", path, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("put %s: status %d: %s", path, resp.StatusCode, string(respBody))
	}
	return nil
}

func (r *Remote) getJSON(ctx context.Context, path string, into any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+r.apiKey)

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("get %s: %w", path, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusNotFound {
		return ErrNotFound
	}
	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("get %s: status %d: %s", path, resp.StatusCode, string(respBody))
	}
	if err := json.NewDecoder(resp.Body).Decode(into); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

// Close releases idle connections.
func (r *Remote) Close() {
	r.httpClient.CloseIdleConnections()
}
