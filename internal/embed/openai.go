package embed

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

// Client speaks the OpenAI embeddings protocol. BaseURL is configurable so
// a local BGE-style server exposing /v1/embeddings works the same way as
// the hosted API.
type Client struct {
	client *openai.Client
	model  string
	dim    int
	stats  *LatencyStats
}

func NewClient(baseURL, apiKey, model string, dim int) *Client {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	if dim <= 0 {
		dim = 1024
	}
	return &Client{
		client: openai.NewClientWithConfig(cfg),
		model:  model,
		dim:    dim,
		stats:  NewLatencyStats(time.Hour),
	}
}

// EmbedBatch embeds all texts in one request and L2-normalizes the result.
// Rate limits and server errors come back as *RetryableError so the
// pipeline can back off and retry.
func (c *Client) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	start := time.Now()
	resp, err := c.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Model: openai.EmbeddingModel(c.model),
		Input: texts,
	})
	c.stats.Record(time.Since(start).Milliseconds())

	if err != nil {
		var apiErr *openai.APIError
		if errors.As(err, &apiErr) &&
			(apiErr.HTTPStatusCode == http.StatusTooManyRequests || apiErr.HTTPStatusCode >= 500) {
			return nil, &RetryableError{StatusCode: apiErr.HTTPStatusCode, Message: apiErr.Message}
		}
		return nil, fmt.Errorf("embeddings api: %w", err)
	}
	if len(resp.Data) != len(texts) {
		return nil, fmt.Errorf("embeddings api returned %d vectors for %d inputs", len(resp.Data), len(texts))
	}

	out := make([][]float32, len(resp.Data))
	for i, d := range resp.Data {
		v := make([]float32, len(d.Embedding))
		copy(v, d.Embedding)
		l2normalize(v)
		out[i] = v
	}
	return out, nil
}

// Dimension returns the configured embedding dimension.
func (c *Client) Dimension() int {
	return c.dim
}

// ModelInfo identifies the backing model.
func (c *Client) ModelInfo() string {
	return "openai-protocol/" + c.model
}

// Stats returns the rolling latency snapshot for the stats endpoint.
func (c *Client) Stats() StatsSnapshot {
	return c.stats.Snapshot()
}

// l2normalize scales a vector to unit length so downstream cosine
// similarity reduces to a dot product.
func l2normalize(v []float32) {
	var sum float32
	for _, x := range v {
		sum += x * x
	}
	if sum == 0 {
		return
	}
	inv := float32(1.0 / math.Sqrt(float64(sum)))
	for i := range v {
		v[i] *= inv
	}
}

// RetryableError indicates a transient embedding-service failure.
type RetryableError struct {
	StatusCode int
	Message    string
}

func (e *RetryableError) Error() string {
	msg := e.Message
	if len(msg) > 200 {
		msg = msg[:200] + "..."
	}
	return fmt.Sprintf("retryable error (status %d): %s", e.StatusCode, msg)
}
