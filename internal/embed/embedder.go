// Package embed is the boundary to the external embedding service. The
// pipeline hands over chunk and sentence texts and receives equal-length
// vectors back; nothing in this repository inspects vector contents.
package embed

import "context"

// Embedder turns a batch of texts into one vector per text.
type Embedder interface {
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
	Dimension() int
	ModelInfo() string
}
