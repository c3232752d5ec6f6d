package sqldb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"pdfqa/internal/adapter/repository/sqldb/migrations"
	"pdfqa/internal/domain/entity"
	"pdfqa/internal/domain/repository"
)

type documentRepository struct {
	db *sqlx.DB
}

func NewDocumentRepository(db *sqlx.DB) repository.DocumentRepository {
	return &documentRepository{db: db}
}

// Migrate applies the schema for the given driver ("sqlite" or "pgx").
func Migrate(db *sqlx.DB, driver string) error {
	name := "sqlite.sql"
	if driver == "pgx" {
		name = "postgres.sql"
	}

	schema, err := migrations.FS.ReadFile(name)
	if err != nil {
		return fmt.Errorf("failed to read migration %s: %w", name, err)
	}

	if _, err := db.Exec(string(schema)); err != nil {
		return fmt.Errorf("failed to apply migration %s: %w", name, err)
	}
	return nil
}

// create document record and its index path in one transaction
func (r *documentRepository) CreateWithIndexPath(ctx context.Context, doc *entity.Document, indexPathFor func(id int64) string) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	doc.UploadDate = time.Now().UTC()

	query := `
		INSERT INTO documents (title, filename, file_path, upload_date, file_size, page_count)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`
	row := tx.QueryRowxContext(ctx, query,
		doc.Title,
		doc.Filename,
		doc.FilePath,
		doc.UploadDate,
		doc.FileSize,
		doc.PageCount,
	)
	if err := row.Scan(&doc.ID); err != nil {
		return err
	}

	indexPath := indexPathFor(doc.ID)
	doc.IndexPath = &indexPath

	query = `UPDATE documents SET index_path = $1 WHERE id = $2`
	if _, err := tx.ExecContext(ctx, query, indexPath, doc.ID); err != nil {
		return err
	}

	return tx.Commit()
}

// find document by id
func (r *documentRepository) FindByID(ctx context.Context, id int64) (*entity.Document, error) {
	var doc entity.Document
	query := `SELECT * FROM documents WHERE id = $1`
	err := r.db.GetContext(ctx, &doc, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, entity.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

// list documents, newest first
func (r *documentRepository) List(ctx context.Context) ([]entity.Document, error) {
	var docs []entity.Document
	query := `SELECT * FROM documents ORDER BY upload_date DESC, id DESC`
	if err := r.db.SelectContext(ctx, &docs, query); err != nil {
		return nil, err
	}
	return docs, nil
}

// update page count once a build has measured it
func (r *documentRepository) UpdatePageCount(ctx context.Context, id int64, pages int) error {
	query := `UPDATE documents SET page_count = $1 WHERE id = $2`
	_, err := r.db.ExecContext(ctx, query, pages, id)
	return err
}

// delete document record
func (r *documentRepository) Delete(ctx context.Context, id int64) error {
	query := `DELETE FROM documents WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return entity.ErrNotFound
	}
	return nil
}
