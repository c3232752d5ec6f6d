package entity

import "time"

// Document is the relational record for one uploaded PDF.
//
// IndexPath is assigned inside the insert transaction, before the vector
// index is actually built: a non-null value means an index build has been
// accepted for this id, not that the artifact exists yet. A failed build
// removes the whole record, so a document is never observable as "failed".
type Document struct {
	ID         int64     `db:"id" json:"id"`
	Title      string    `db:"title" json:"title"`
	Filename   string    `db:"filename" json:"filename"`
	FilePath   string    `db:"file_path" json:"filePath"`
	IndexPath  *string   `db:"index_path" json:"indexPath"`
	UploadDate time.Time `db:"upload_date" json:"uploadDate"`
	FileSize   *int64    `db:"file_size" json:"fileSize"`
	PageCount  *int      `db:"page_count" json:"pageCount"`
}

// IsIndexed reports whether an index build has been accepted for the
// document. See the IndexPath note above for what that does and does not
// guarantee.
func (d *Document) IsIndexed() bool {
	return d.IndexPath != nil && *d.IndexPath != ""
}
