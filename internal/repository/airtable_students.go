package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"punto_kennedy_crm/internal/entities"

	"github.com/mehanizm/airtable"
)

// AirtableStudentStore is the alternate student-records backend. The table is
// expected to carry an autonumber "ID" field plus the profile columns below.
// Lookups by numeric id go through a filter formula, so every operation costs
// at least one remote call.
type AirtableStudentStore struct {
	table *airtable.Table
}

func NewAirtableStudentStore(apiKey, baseID, tableName string) *AirtableStudentStore {
	client := airtable.NewClient(apiKey)
	return &AirtableStudentStore{table: client.GetTable(baseID, tableName)}
}

func recordToStudent(rec *airtable.Record) entities.Student {
	s := entities.Student{
		FullName: fieldStr(rec, "FullName"),
		DNI:      fieldStr(rec, "DNI"),
		Phone:    fieldStr(rec, "Phone"),
		Email:    fieldStr(rec, "Email"),
		Status:   fieldStr(rec, "Status"),
		Site:     fieldStr(rec, "Site"),
		Career:   fieldStr(rec, "Career"),
		Notes:    fieldStr(rec, "Notes"),
	}
	if v, ok := rec.Fields["ID"].(float64); ok {
		s.ID = int(v)
	}
	if t, err := time.Parse(time.RFC3339, rec.CreatedTime); err == nil {
		s.CreatedAt = t
		s.UpdatedAt = t
	}
	return s
}

func fieldStr(rec *airtable.Record, name string) string {
	if v, ok := rec.Fields[name].(string); ok {
		return v
	}
	return ""
}

func studentFields(s *entities.Student) map[string]interface{} {
	return map[string]interface{}{
		"FullName": s.FullName,
		"DNI":      s.DNI,
		"Phone":    s.Phone,
		"Email":    s.Email,
		"Status":   s.Status,
		"Site":     s.Site,
		"Career":   s.Career,
		"Notes":    s.Notes,
	}
}

// findRecord resolves the Airtable record behind a numeric id.
func (r *AirtableStudentStore) findRecord(id int) (*airtable.Record, error) {
	records, err := r.table.GetRecords().
		WithFilterFormula(fmt.Sprintf("{ID} = %d", id)).
		MaxRecords(1).
		Do()
	if err != nil {
		return nil, fmt.Errorf("airtable lookup id %d: %w", id, err)
	}
	if len(records.Records) == 0 {
		return nil, nil
	}
	return records.Records[0], nil
}

func (r *AirtableStudentStore) GetByID(ctx context.Context, id int) (*entities.Student, error) {
	rec, err := r.findRecord(id)
	if err != nil || rec == nil {
		return nil, err
	}
	s := recordToStudent(rec)
	return &s, nil
}

func (r *AirtableStudentStore) List(ctx context.Context) ([]entities.Student, error) {
	students := []entities.Student{}
	offset := ""
	for {
		cfg := r.table.GetRecords()
		if offset != "" {
			cfg = cfg.WithOffset(offset)
		}
		page, err := cfg.Do()
		if err != nil {
			return nil, fmt.Errorf("airtable list: %w", err)
		}
		for _, rec := range page.Records {
			students = append(students, recordToStudent(rec))
		}
		if page.Offset == "" {
			break
		}
		offset = page.Offset
	}
	return students, nil
}

// Search filters client side; Airtable formulas cannot express the same
// case-insensitive substring match over three columns portably.
func (r *AirtableStudentStore) Search(ctx context.Context, query string) ([]entities.Student, error) {
	all, err := r.List(ctx)
	if err != nil {
		return nil, err
	}
	q := strings.ToLower(query)
	matched := []entities.Student{}
	for _, s := range all {
		if strings.Contains(strings.ToLower(s.FullName), q) ||
			strings.Contains(s.DNI, query) ||
			strings.Contains(s.Phone, query) {
			matched = append(matched, s)
		}
	}
	return matched, nil
}

func (r *AirtableStudentStore) Create(ctx context.Context, s *entities.Student) error {
	created, err := r.table.AddRecords(&airtable.Records{
		Records: []*airtable.Record{{Fields: studentFields(s)}},
	})
	if err != nil {
		return fmt.Errorf("airtable create: %w", err)
	}
	if len(created.Records) > 0 {
		*s = recordToStudent(created.Records[0])
	}
	return nil
}

func (r *AirtableStudentStore) Update(ctx context.Context, s *entities.Student) error {
	rec, err := r.findRecord(s.ID)
	if err != nil {
		return err
	}
	if rec == nil {
		return fmt.Errorf("airtable update: student %d not found", s.ID)
	}
	if _, err := rec.UpdateRecordPartial(studentFields(s)); err != nil {
		return fmt.Errorf("airtable update: %w", err)
	}
	return nil
}

func (r *AirtableStudentStore) Delete(ctx context.Context, id int) error {
	rec, err := r.findRecord(id)
	if err != nil {
		return err
	}
	if rec == nil {
		return nil
	}
	if _, err := rec.DeleteRecord(); err != nil {
		return fmt.Errorf("airtable delete: %w", err)
	}
	return nil
}
