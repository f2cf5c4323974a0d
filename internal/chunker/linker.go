package chunker

// Link sets PrevChunkID/NextChunkID along the chunk sequence in one linear
// pass. The first chunk keeps an empty prev and the last an empty next.
// Callers pass a single document's chunks, so links never cross documents.
func Link(chunks []Chunk) {
	for i := range chunks {
		if i > 0 {
			chunks[i].PrevChunkID = chunks[i-1].ID
		}
		if i < len(chunks)-1 {
			chunks[i].NextChunkID = chunks[i+1].ID
		}
	}
}
