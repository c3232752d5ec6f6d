package document

import (
	"context"
	"fmt"
	"log"

	"pdfqa/internal/adapter/indexstore"
	"pdfqa/internal/domain/entity"
	"pdfqa/internal/vectorindex"
)

type Embedder interface {
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}

// Indexer turns a stored PDF into a persisted vector index. The build is
// all-or-nothing: any failure removes the document's index directory so a
// loader can never pick up a partial artifact.
type Indexer struct {
	extractor *TextExtractor
	chunker   *Chunker
	embedder  Embedder
	indexes   *indexstore.Store
}

func NewIndexer(embedder Embedder, indexes *indexstore.Store, chunkSize, chunkOverlap int) *Indexer {
	return &Indexer{
		extractor: NewTextExtractor(),
		chunker:   NewChunker(chunkSize, chunkOverlap),
		embedder:  embedder,
		indexes:   indexes,
	}
}

// BuildIndex extracts, chunks, embeds and persists the document's index,
// returning the extracted page count.
func (ix *Indexer) BuildIndex(ctx context.Context, doc *entity.Document) (int, error) {
	pages, err := ix.buildIndex(ctx, doc)
	if err != nil {
		ix.indexes.Delete(doc.ID)
		return 0, err
	}
	return pages, nil
}

func (ix *Indexer) buildIndex(ctx context.Context, doc *entity.Document) (int, error) {
	pages, err := ix.extractor.ExtractPages(doc.FilePath)
	if err != nil {
		return 0, fmt.Errorf("failed to extract text: %w", err)
	}
	if len(pages) == 0 {
		return 0, fmt.Errorf("no extractable pages in %s", doc.Filename)
	}
	log.Printf("extracted %d pages from document %d", len(pages), doc.ID)

	texts := ix.chunker.ChunkPages(pages)
	if len(texts) == 0 {
		return 0, fmt.Errorf("no chunks generated")
	}
	log.Printf("generated %d chunks from document %d", len(texts), doc.ID)

	vectors, err := ix.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return 0, fmt.Errorf("failed to generate embeddings: %w", err)
	}

	chunks := make([]entity.Chunk, len(texts))
	for i := range texts {
		chunks[i] = entity.Chunk{Text: texts[i], Embedding: vectors[i]}
	}

	idx, err := vectorindex.Build(chunks)
	if err != nil {
		return 0, fmt.Errorf("failed to build index: %w", err)
	}

	if err := ix.indexes.Save(doc.ID, idx); err != nil {
		return 0, err
	}

	log.Printf("vector index created for document %d (%d chunks)", doc.ID, idx.Len())
	return len(pages), nil
}
