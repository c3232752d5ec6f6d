package document

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"path/filepath"
	"strings"

	"pdfqa/internal/adapter/blobstore"
	"pdfqa/internal/adapter/indexstore"
	"pdfqa/internal/domain/entity"
	"pdfqa/internal/domain/repository"
	"pdfqa/internal/worker"
)

// IndexBuilder builds and persists the vector index for one document,
// returning the extracted page count.
type IndexBuilder interface {
	BuildIndex(ctx context.Context, doc *entity.Document) (int, error)
}

type DocumentUsecase struct {
	docRepo       repository.DocumentRepository
	blobs         *blobstore.Store
	indexes       *indexstore.Store
	builder       IndexBuilder
	pool          *worker.Pool
	maxUploadSize int64
}

func NewDocumentUsecase(
	docRepo repository.DocumentRepository,
	blobs *blobstore.Store,
	indexes *indexstore.Store,
	builder IndexBuilder,
	pool *worker.Pool,
	maxUploadSize int64,
) *DocumentUsecase {
	return &DocumentUsecase{
		docRepo:       docRepo,
		blobs:         blobs,
		indexes:       indexes,
		builder:       builder,
		pool:          pool,
		maxUploadSize: maxUploadSize,
	}
}

// Upload validates and persists the PDF, inserts the record with its
// index path, and schedules the index build. It returns as soon as the
// record exists; the index is built in the background and a failed build
// removes the document again.
func (uc *DocumentUsecase) Upload(ctx context.Context, filename, title string, r io.Reader, size int64) (*entity.Document, error) {
	if strings.TrimSpace(filename) == "" {
		return nil, entity.NewValidationError("filename is required")
	}
	if !strings.HasSuffix(strings.ToLower(filename), ".pdf") {
		return nil, entity.NewValidationError("only PDF files are allowed")
	}
	if uc.maxUploadSize > 0 && size > uc.maxUploadSize {
		return nil, entity.NewValidationError(fmt.Sprintf("file exceeds the %d byte upload limit", uc.maxUploadSize))
	}

	path, written, err := uc.blobs.Save(r, filename)
	if err != nil {
		if entity.IsValidation(err) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to save uploaded file: %w", err)
	}

	if title = strings.TrimSpace(title); title == "" {
		title = filename
	}

	doc := &entity.Document{
		Title:    title,
		Filename: filepath.Base(path),
		FilePath: path,
		FileSize: &written,
	}

	if err := uc.docRepo.CreateWithIndexPath(ctx, doc, uc.indexes.Dir); err != nil {
		uc.blobs.Delete(path)
		return nil, fmt.Errorf("failed to insert document record: %w", err)
	}

	build := *doc
	uc.pool.Submit(func() {
		uc.runBuild(&build)
	})

	return doc, nil
}

// runBuild executes on the worker pool with its own context, never the
// upload request's.
func (uc *DocumentUsecase) runBuild(doc *entity.Document) {
	ctx := context.Background()
	log.Printf("starting index build for document %d", doc.ID)

	pages, err := uc.buildIndex(ctx, doc)
	if err != nil {
		log.Printf("index build failed for document %d: %v", doc.ID, err)
		uc.reconcileAbsent(ctx, doc)
		return
	}

	if err := uc.docRepo.UpdatePageCount(ctx, doc.ID, pages); err != nil {
		log.Printf("could not record page count for document %d: %v", doc.ID, err)
	}
	log.Printf("document %d indexed successfully", doc.ID)
}

// buildIndex converts a builder panic into a build failure so the
// rollback below always runs. The PDF parser panics on some malformed
// files instead of returning an error.
func (uc *DocumentUsecase) buildIndex(ctx context.Context, doc *entity.Document) (pages int, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("index build panicked: %v", r)
		}
	}()
	return uc.builder.BuildIndex(ctx, doc)
}

func (uc *DocumentUsecase) Get(ctx context.Context, id int64) (*entity.Document, error) {
	return uc.docRepo.FindByID(ctx, id)
}

func (uc *DocumentUsecase) List(ctx context.Context) ([]entity.Document, error) {
	return uc.docRepo.List(ctx)
}

// Delete removes the blob, the index directory and the record. Unknown
// ids return ErrNotFound without touching the filesystem.
func (uc *DocumentUsecase) Delete(ctx context.Context, id int64) error {
	doc, err := uc.docRepo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	uc.reconcileAbsent(ctx, doc)
	return nil
}

// reconcileAbsent restores "as if never uploaded": blob and index
// directory best effort, record last, so a crash mid-cleanup leaves a
// record a later delete can still find, never an unreferenced file.
func (uc *DocumentUsecase) reconcileAbsent(ctx context.Context, doc *entity.Document) {
	uc.blobs.Delete(doc.FilePath)
	uc.indexes.Delete(doc.ID)
	if err := uc.docRepo.Delete(ctx, doc.ID); err != nil && !errors.Is(err, entity.ErrNotFound) {
		log.Printf("could not delete record for document %d: %v", doc.ID, err)
	}
}
