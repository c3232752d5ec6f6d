package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pdfqa/internal/adapter/blobstore"
	"pdfqa/internal/adapter/indexstore"
	"pdfqa/internal/adapter/repository/sqldb"
	"pdfqa/internal/delivery/http/dto"
	"pdfqa/internal/domain/entity"
	"pdfqa/internal/usecase/document"
	"pdfqa/internal/usecase/qa"
	"pdfqa/internal/vectorindex"
	"pdfqa/internal/worker"
	"pdfqa/pkg/database"
)

// testBuilder stands in for the embedding pipeline: it fails on empty
// blobs (like a PDF with no extractable pages) and otherwise persists a
// small real index so the ask route works end to end.
type testBuilder struct {
	indexes *indexstore.Store
	done    chan int64
}

func (b *testBuilder) BuildIndex(_ context.Context, doc *entity.Document) (int, error) {
	defer func() { b.done <- doc.ID }()

	info, err := os.Stat(doc.FilePath)
	if err != nil {
		return 0, err
	}
	if info.Size() == 0 {
		return 0, fmt.Errorf("no extractable pages in %s", doc.Filename)
	}

	idx, err := vectorindex.Build([]entity.Chunk{
		{Text: "this document is a sample report", Embedding: []float32{1, 0, 0}},
		{Text: "it contains test content", Embedding: []float32{0.5, 0.5, 0}},
	})
	if err != nil {
		return 0, err
	}
	return 1, b.indexes.Save(doc.ID, idx)
}

type fakeEmbedder struct{}

func (fakeEmbedder) Embed(context.Context, string) ([]float32, error) {
	return []float32{1, 0, 0}, nil
}

type fakeChat struct{ answer string }

func (f fakeChat) GenerateAnswer(context.Context, string, string) (string, error) {
	return f.answer, nil
}

type apiFixture struct {
	app     *fiber.App
	pool    *worker.Pool
	built   chan int64
	blobDir string
}

func newAPI(t *testing.T, answer string) *apiFixture {
	t.Helper()
	dir := t.TempDir()

	db, err := database.Connect(filepath.Join(dir, "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, sqldb.Migrate(db, "sqlite"))
	repo := sqldb.NewDocumentRepository(db)

	blobDir := filepath.Join(dir, "documents")
	blobs, err := blobstore.New(blobDir)
	require.NoError(t, err)
	indexes, err := indexstore.New(filepath.Join(dir, "indices"))
	require.NoError(t, err)

	built := make(chan int64, 8)
	pool := worker.NewPool(1)
	t.Cleanup(pool.Close)

	docUsecase := document.NewDocumentUsecase(repo, blobs, indexes, &testBuilder{indexes: indexes, done: built}, pool, 1024*1024)
	qaUsecase := qa.NewQAUsecase(repo, indexes, fakeEmbedder{}, fakeChat{answer: answer}, 3)

	docHandler := NewDocumentHandler(docUsecase)
	questionHandler := NewQuestionHandler(qaUsecase)

	app := fiber.New()
	api := app.Group("/api")
	api.Post("/documents/upload", docHandler.Upload)
	api.Get("/documents", docHandler.List)
	api.Get("/documents/:id", docHandler.GetByID)
	api.Delete("/documents/:id", docHandler.Delete)
	api.Post("/documents/:id/ask", questionHandler.Ask)

	return &apiFixture{app: app, pool: pool, built: built, blobDir: blobDir}
}

func (fx *apiFixture) upload(t *testing.T, filename, title, content string) *http.Response {
	t.Helper()
	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	fw, err := w.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = fw.Write([]byte(content))
	require.NoError(t, err)
	if title != "" {
		require.NoError(t, w.WriteField("title", title))
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/documents/upload", body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	resp, err := fx.app.Test(req, 5000)
	require.NoError(t, err)
	return resp
}

func (fx *apiFixture) do(t *testing.T, method, path string, payload any) *http.Response {
	t.Helper()
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, body)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := fx.app.Test(req, 5000)
	require.NoError(t, err)
	return resp
}

func (fx *apiFixture) waitForBuild(t *testing.T) int64 {
	t.Helper()
	select {
	case id := <-fx.built:
		return id
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for index build")
		return 0
	}
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var out T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	resp.Body.Close()
	return out
}

func TestUploadAndAskFlow(t *testing.T) {
	fx := newAPI(t, "This document is a sample report about testing.")

	// upload returns 201 with the index path already assigned
	resp := fx.upload(t, "sample.pdf", "My Report", "%PDF-1.4 sample content")
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	created := decode[dto.DocumentInfo](t, resp)
	assert.Positive(t, created.ID)
	assert.Equal(t, "My Report", created.Title)
	assert.Regexp(t, `^sample.*\.pdf$`, created.Filename)
	assert.True(t, created.IsIndexed)

	fx.waitForBuild(t)

	// fields are unchanged after the build, page count filled in
	resp = fx.do(t, http.MethodGet, fmt.Sprintf("/api/documents/%d", created.ID), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	fetched := decode[dto.DocumentInfo](t, resp)
	assert.Equal(t, created.ID, fetched.ID)
	assert.Equal(t, created.Filename, fetched.Filename)
	assert.True(t, fetched.IsIndexed)

	// asking returns a grounded answer with up to 3 sources
	resp = fx.do(t, http.MethodPost, fmt.Sprintf("/api/documents/%d/ask", created.ID), dto.QuestionRequest{Question: "What is this about?"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	answered := decode[dto.QuestionResponse](t, resp)
	assert.NotEmpty(t, answered.Answer)
	assert.Equal(t, created.ID, answered.DocumentID)
	assert.NotEmpty(t, answered.SourceNodes)
	assert.LessOrEqual(t, len(answered.SourceNodes), 3)
}

func TestUploadValidation(t *testing.T) {
	fx := newAPI(t, "unused")

	resp := fx.upload(t, "notes.txt", "", "plain text")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = fx.do(t, http.MethodPost, "/api/documents/upload", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestFailedBuildRemovesDocument(t *testing.T) {
	fx := newAPI(t, "unused")

	// a zero-byte PDF extracts no pages, so the build fails
	resp := fx.upload(t, "empty.pdf", "", "")
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	created := decode[dto.DocumentInfo](t, resp)

	fx.waitForBuild(t)

	// rollback runs right after the build reports failure
	assert.Eventually(t, func() bool {
		resp := fx.do(t, http.MethodGet, fmt.Sprintf("/api/documents/%d", created.ID), nil)
		resp.Body.Close()
		return resp.StatusCode == http.StatusNotFound
	}, 5*time.Second, 10*time.Millisecond)

	// the blob is gone from disk as well
	entries, err := os.ReadDir(fx.blobDir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestAskBeforeIndexExists(t *testing.T) {
	fx := newAPI(t, "unused")

	resp := fx.upload(t, "pending.pdf", "", "%PDF-1.4 content")
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	created := decode[dto.DocumentInfo](t, resp)
	id := fx.waitForBuild(t)
	require.Equal(t, created.ID, id)

	// remove the artifact to simulate asking before any build finished
	require.NoError(t, os.RemoveAll(filepath.Join(filepath.Dir(fx.blobDir), "indices")))

	resp = fx.do(t, http.MethodPost, fmt.Sprintf("/api/documents/%d/ask", created.ID), dto.QuestionRequest{Question: "What is this about?"})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestAskValidation(t *testing.T) {
	fx := newAPI(t, "unused")

	resp := fx.do(t, http.MethodPost, "/api/documents/1/ask", dto.QuestionRequest{Question: "hi"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = fx.do(t, http.MethodPost, "/api/documents/999/ask", dto.QuestionRequest{Question: "What is this about?"})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestDeleteDocument(t *testing.T) {
	fx := newAPI(t, "unused")

	resp := fx.upload(t, "doomed.pdf", "", "%PDF-1.4 content")
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	created := decode[dto.DocumentInfo](t, resp)
	fx.waitForBuild(t)

	resp = fx.do(t, http.MethodDelete, fmt.Sprintf("/api/documents/%d", created.ID), nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = fx.do(t, http.MethodGet, fmt.Sprintf("/api/documents/%d", created.ID), nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = fx.do(t, http.MethodDelete, "/api/documents/424242", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestListDocuments(t *testing.T) {
	fx := newAPI(t, "unused")

	resp := fx.upload(t, "first.pdf", "", "%PDF-1.4 one")
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()
	fx.waitForBuild(t)
	resp = fx.upload(t, "second.pdf", "", "%PDF-1.4 two")
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()
	fx.waitForBuild(t)

	resp = fx.do(t, http.MethodGet, "/api/documents", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	docs := decode[[]dto.DocumentInfo](t, resp)
	require.Len(t, docs, 2)
	assert.Equal(t, "second.pdf", docs[0].Filename)
	assert.Equal(t, "first.pdf", docs[1].Filename)
}
