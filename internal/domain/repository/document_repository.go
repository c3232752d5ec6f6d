package repository

import (
	"context"

	"pdfqa/internal/domain/entity"
)

type DocumentRepository interface {
	// CreateWithIndexPath inserts the record and persists the index path
	// derived from the generated id in the same transaction, so the two
	// are never observable apart.
	CreateWithIndexPath(ctx context.Context, doc *entity.Document, indexPathFor func(id int64) string) error
	FindByID(ctx context.Context, id int64) (*entity.Document, error)
	List(ctx context.Context) ([]entity.Document, error)
	UpdatePageCount(ctx context.Context, id int64, pages int) error
	Delete(ctx context.Context, id int64) error
}
