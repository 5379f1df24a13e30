package entities

import "time"

// Document is the metadata row for a file stored in Google Drive. Created on
// upload, read on demand, never updated.
type Document struct {
	ID          string    `json:"id"`
	StudentID   int       `json:"student_id"`
	Phone       string    `json:"phone"`
	DocType     string    `json:"doc_type"` // e.g. "dni", "titulo", "analitico"
	DriveFileID string    `json:"drive_file_id"`
	FileName    string    `json:"file_name"`
	MimeType    string    `json:"mime_type"`
	UploadedAt  time.Time `json:"uploaded_at"`
}
