package repository

import (
	"context"

	"punto_kennedy_crm/internal/entities"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type StudentRepository struct {
	db *pgxpool.Pool
}

func NewStudentRepository(db *pgxpool.Pool) *StudentRepository {
	return &StudentRepository{db: db}
}

const studentColumns = "id, full_name, COALESCE(dni,''), COALESCE(phone,''), COALESCE(email,''), COALESCE(status,''), COALESCE(site,''), COALESCE(career,''), COALESCE(notes,''), created_at, updated_at"

func scanStudent(row pgx.Row) (*entities.Student, error) {
	var s entities.Student
	err := row.Scan(&s.ID, &s.FullName, &s.DNI, &s.Phone, &s.Email, &s.Status, &s.Site, &s.Career, &s.Notes, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *StudentRepository) GetByID(ctx context.Context, id int) (*entities.Student, error) {
	s, err := scanStudent(r.db.QueryRow(ctx,
		"SELECT "+studentColumns+" FROM students WHERE id = $1", id))
	if err == pgx.ErrNoRows {
		return nil, nil // Not found
	}
	if err != nil {
		return nil, err
	}
	return s, nil
}

func (r *StudentRepository) List(ctx context.Context) ([]entities.Student, error) {
	rows, err := r.db.Query(ctx, "SELECT "+studentColumns+" FROM students ORDER BY id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectStudents(rows)
}

// Search matches name, DNI or phone by substring, case-insensitive.
func (r *StudentRepository) Search(ctx context.Context, query string) ([]entities.Student, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+studentColumns+` FROM students
		WHERE full_name ILIKE '%' || $1 || '%'
		   OR dni LIKE '%' || $1 || '%'
		   OR phone LIKE '%' || $1 || '%'
		ORDER BY id
	`, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectStudents(rows)
}

func (r *StudentRepository) Create(ctx context.Context, s *entities.Student) error {
	return r.db.QueryRow(ctx, `
		INSERT INTO students (full_name, dni, phone, email, status, site, career, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at, updated_at
	`, s.FullName, s.DNI, s.Phone, s.Email, s.Status, s.Site, s.Career, s.Notes).
		Scan(&s.ID, &s.CreatedAt, &s.UpdatedAt)
}

func (r *StudentRepository) Update(ctx context.Context, s *entities.Student) error {
	_, err := r.db.Exec(ctx, `
		UPDATE students
		SET full_name=$1, dni=$2, phone=$3, email=$4, status=$5, site=$6, career=$7, notes=$8, updated_at=NOW()
		WHERE id=$9
	`, s.FullName, s.DNI, s.Phone, s.Email, s.Status, s.Site, s.Career, s.Notes, s.ID)
	return err
}

func (r *StudentRepository) Delete(ctx context.Context, id int) error {
	_, err := r.db.Exec(ctx, "DELETE FROM students WHERE id=$1", id)
	return err
}

func collectStudents(rows pgx.Rows) ([]entities.Student, error) {
	students := []entities.Student{}
	for rows.Next() {
		s, err := scanStudent(rows)
		if err != nil {
			return nil, err
		}
		students = append(students, *s)
	}
	return students, rows.Err()
}
