package sqldb

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pdfqa/internal/domain/entity"
	"pdfqa/internal/domain/repository"
	"pdfqa/pkg/database"
)

func newTestRepo(t *testing.T) repository.DocumentRepository {
	t.Helper()

	db, err := database.Connect(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, Migrate(db, "sqlite"))
	return NewDocumentRepository(db)
}

func indexPathFor(id int64) string {
	return filepath.Join("indices", fmt.Sprintf("%d", id))
}

func createDoc(t *testing.T, repo repository.DocumentRepository, title string) *entity.Document {
	t.Helper()
	size := int64(1234)
	doc := &entity.Document{
		Title:    title,
		Filename: title + ".pdf",
		FilePath: filepath.Join("documents", title+".pdf"),
		FileSize: &size,
	}
	require.NoError(t, repo.CreateWithIndexPath(context.Background(), doc, indexPathFor))
	return doc
}

func TestCreateWithIndexPath(t *testing.T) {
	repo := newTestRepo(t)

	doc := createDoc(t, repo, "report")
	assert.Positive(t, doc.ID)
	require.NotNil(t, doc.IndexPath)
	assert.Equal(t, indexPathFor(doc.ID), *doc.IndexPath)
	assert.False(t, doc.UploadDate.IsZero())
	assert.True(t, doc.IsIndexed())
}

func TestFindByID(t *testing.T) {
	repo := newTestRepo(t)
	created := createDoc(t, repo, "findme")

	t.Run("found", func(t *testing.T) {
		found, err := repo.FindByID(context.Background(), created.ID)
		require.NoError(t, err)
		assert.Equal(t, created.ID, found.ID)
		assert.Equal(t, "findme", found.Title)
		assert.Equal(t, "findme.pdf", found.Filename)
		require.NotNil(t, found.IndexPath)
		assert.Equal(t, indexPathFor(created.ID), *found.IndexPath)
		require.NotNil(t, found.FileSize)
		assert.Equal(t, int64(1234), *found.FileSize)
		assert.Nil(t, found.PageCount)
	})

	t.Run("missing", func(t *testing.T) {
		_, err := repo.FindByID(context.Background(), 99999)
		assert.ErrorIs(t, err, entity.ErrNotFound)
	})
}

func TestList(t *testing.T) {
	repo := newTestRepo(t)
	first := createDoc(t, repo, "older")
	second := createDoc(t, repo, "newer")

	docs, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, docs, 2)
	// newest first
	assert.Equal(t, second.ID, docs[0].ID)
	assert.Equal(t, first.ID, docs[1].ID)
}

func TestUpdatePageCount(t *testing.T) {
	repo := newTestRepo(t)
	doc := createDoc(t, repo, "paged")

	require.NoError(t, repo.UpdatePageCount(context.Background(), doc.ID, 12))

	found, err := repo.FindByID(context.Background(), doc.ID)
	require.NoError(t, err)
	require.NotNil(t, found.PageCount)
	assert.Equal(t, 12, *found.PageCount)
}

func TestDelete(t *testing.T) {
	repo := newTestRepo(t)
	doc := createDoc(t, repo, "doomed")

	require.NoError(t, repo.Delete(context.Background(), doc.ID))

	_, err := repo.FindByID(context.Background(), doc.ID)
	assert.ErrorIs(t, err, entity.ErrNotFound)

	assert.ErrorIs(t, repo.Delete(context.Background(), doc.ID), entity.ErrNotFound)
}
