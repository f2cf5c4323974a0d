package pipeline

import (
	"fmt"

	"github.com/oklog/ulid/v2"
)

// NewJobID returns a sortable unique job identifier.
func NewJobID() string {
	return ulid.Make().String()
}

// DocID derives the document identifier from the content hash, so
// re-ingesting identical content yields identical record IDs.
func DocID(contentHash string) string {
	if len(contentHash) > 16 {
		return contentHash[:16]
	}
	return contentHash
}

// SentenceID names one extracted sentence by its position in the document
// structure.
func SentenceID(docID, sectionID string, paragraph, sentence int) string {
	return fmt.Sprintf("%s_%s_%d_%d", docID, sectionID, paragraph, sentence)
}
