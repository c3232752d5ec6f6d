package dto

import (
	"time"

	"pdfqa/internal/domain/entity"
)

// DocumentInfo mirrors one documents row. IsIndexed means an index build
// has been accepted, not that the artifact exists yet: clients polling
// right after an upload will see true before the build finishes.
type DocumentInfo struct {
	ID         int64     `json:"id"`
	Title      string    `json:"title"`
	Filename   string    `json:"filename"`
	UploadDate time.Time `json:"upload_date"`
	IndexPath  *string   `json:"index_path"`
	IsIndexed  bool      `json:"is_indexed"`
	FileSize   *int64    `json:"file_size,omitempty"`
	PageCount  *int      `json:"page_count,omitempty"`
}

func NewDocumentInfo(doc *entity.Document) DocumentInfo {
	return DocumentInfo{
		ID:         doc.ID,
		Title:      doc.Title,
		Filename:   doc.Filename,
		UploadDate: doc.UploadDate,
		IndexPath:  doc.IndexPath,
		IsIndexed:  doc.IsIndexed(),
		FileSize:   doc.FileSize,
		PageCount:  doc.PageCount,
	}
}

type ErrorResponse struct {
	Error string `json:"error"`
}
