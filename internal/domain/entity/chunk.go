package entity

// Chunk is one overlapping span of extracted document text together with
// its embedding. Chunks are owned by the index artifact that contains them
// and are read-only once the index is built.
type Chunk struct {
	Text      string
	Embedding []float32
}

// ScoredChunk is a retrieval hit: a chunk plus its cosine similarity to
// the question embedding.
type ScoredChunk struct {
	Text  string
	Score float64
}
