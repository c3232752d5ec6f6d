package qa

import (
	"context"
	"fmt"
	"strings"

	"pdfqa/internal/domain/entity"
	"pdfqa/internal/domain/repository"
	"pdfqa/internal/vectorindex"
)

// sourcePreviewLen bounds the chunk text echoed back with an answer.
const sourcePreviewLen = 500

type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

type ChatService interface {
	GenerateAnswer(ctx context.Context, question, docContext string) (string, error)
}

// IndexLoader returns a document's index, or nil when none is loadable.
type IndexLoader interface {
	Load(documentID int64) (*vectorindex.Index, error)
}

type QAUsecase struct {
	docRepo  repository.DocumentRepository
	indexes  IndexLoader
	embedder Embedder
	chat     ChatService
	topK     int
}

func NewQAUsecase(
	docRepo repository.DocumentRepository,
	indexes IndexLoader,
	embedder Embedder,
	chat ChatService,
	topK int,
) *QAUsecase {
	return &QAUsecase{
		docRepo:  docRepo,
		indexes:  indexes,
		embedder: embedder,
		chat:     chat,
		topK:     topK,
	}
}

// Answer retrieves the top-k chunks most similar to the question and has
// the completion model answer from them. ErrNotFound means no such
// document, ErrIndexNotFound means it is not queryable (yet), and
// ErrEmptyAnswer means the model produced nothing.
func (uc *QAUsecase) Answer(ctx context.Context, documentID int64, question string) (string, []entity.ScoredChunk, error) {
	if _, err := uc.docRepo.FindByID(ctx, documentID); err != nil {
		return "", nil, err
	}

	idx, err := uc.indexes.Load(documentID)
	if err != nil {
		return "", nil, err
	}
	if idx == nil {
		return "", nil, entity.ErrIndexNotFound
	}

	queryVec, err := uc.embedder.Embed(ctx, question)
	if err != nil {
		return "", nil, fmt.Errorf("failed to embed question: %w", err)
	}

	hits, err := idx.Search(queryVec, uc.topK)
	if err != nil {
		return "", nil, fmt.Errorf("failed to search index: %w", err)
	}

	var contextBuilder strings.Builder
	for i, hit := range hits {
		fmt.Fprintf(&contextBuilder, "[Source %d - Similarity: %.2f]\n%s\n\n", i+1, hit.Score, hit.Text)
	}

	answer, err := uc.chat.GenerateAnswer(ctx, question, contextBuilder.String())
	if err != nil {
		return "", nil, err
	}

	answer = strings.TrimSpace(answer)
	if answer == "" {
		return "", nil, entity.ErrEmptyAnswer
	}

	sources := make([]entity.ScoredChunk, len(hits))
	for i, hit := range hits {
		text := hit.Text
		if len(text) > sourcePreviewLen {
			text = text[:sourcePreviewLen]
		}
		sources[i] = entity.ScoredChunk{Text: text, Score: hit.Score}
	}

	return answer, sources, nil
}
