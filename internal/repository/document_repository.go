package repository

import (
	"context"

	"punto_kennedy_crm/internal/entities"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type DocumentRepository struct {
	db *pgxpool.Pool
}

func NewDocumentRepository(db *pgxpool.Pool) *DocumentRepository {
	return &DocumentRepository{db: db}
}

func (r *DocumentRepository) ListByStudent(ctx context.Context, studentID int) ([]entities.Document, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, student_id, COALESCE(phone,''), COALESCE(doc_type,''), drive_file_id, file_name, COALESCE(mime_type,''), uploaded_at
		FROM documents WHERE student_id = $1 ORDER BY uploaded_at
	`, studentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	docs := []entities.Document{}
	for rows.Next() {
		var d entities.Document
		if err := rows.Scan(&d.ID, &d.StudentID, &d.Phone, &d.DocType, &d.DriveFileID, &d.FileName, &d.MimeType, &d.UploadedAt); err != nil {
			return nil, err
		}
		docs = append(docs, d)
	}
	return docs, rows.Err()
}

func (r *DocumentRepository) GetByID(ctx context.Context, id string) (*entities.Document, error) {
	var d entities.Document
	err := r.db.QueryRow(ctx, `
		SELECT id, student_id, COALESCE(phone,''), COALESCE(doc_type,''), drive_file_id, file_name, COALESCE(mime_type,''), uploaded_at
		FROM documents WHERE id = $1
	`, id).Scan(&d.ID, &d.StudentID, &d.Phone, &d.DocType, &d.DriveFileID, &d.FileName, &d.MimeType, &d.UploadedAt)
	if err == pgx.ErrNoRows {
		return nil, nil // Not found
	}
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *DocumentRepository) Create(ctx context.Context, d *entities.Document) error {
	return r.db.QueryRow(ctx, `
		INSERT INTO documents (id, student_id, phone, doc_type, drive_file_id, file_name, mime_type)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING uploaded_at
	`, d.ID, d.StudentID, d.Phone, d.DocType, d.DriveFileID, d.FileName, d.MimeType).Scan(&d.UploadedAt)
}
