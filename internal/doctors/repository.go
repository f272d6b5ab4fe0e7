package doctors

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
)

const summaryColumns = `
	SELECT d.doctor_id,
	       s.first_name || ' ' || s.last_name AS doctor_name,
	       COALESCE(ds.specialty_name, ''),
	       COALESCE(d.consultation_fee, 0)
	FROM doctors d
	INNER JOIN staff s ON d.staff_id = s.staff_id
	LEFT JOIN doctor_specialties ds ON d.specialization_id = ds.specialty_id
`

// Repository reads doctor summaries from the relational store.
type Repository struct {
	db DB
}

// NewRepository initializes a repo backed by pgxpool.
func NewRepository(db DB) *Repository {
	if db == nil {
		panic("doctors: db required")
	}
	return &Repository{db: db}
}

// FindByName matches a doctor by case-insensitive substring against first
// name, last name, or the concatenated full name. Ties break by doctor id
// ascending so the result is stable across runs.
func (r *Repository) FindByName(ctx context.Context, name string) (*Summary, error) {
	pattern := "%" + name + "%"
	query := summaryColumns + `
		WHERE s.first_name ILIKE $1
		   OR s.last_name ILIKE $1
		   OR s.first_name || ' ' || s.last_name ILIKE $1
		ORDER BY d.doctor_id ASC
		LIMIT 1
	`
	return r.one(ctx, query, pattern)
}

// FindBySpecialty matches a doctor whose specialty name contains the target,
// falling back to General Medicine only when no specialist exists. The match
// flag leads the ordering so a lower-id generalist cannot shadow a specialist.
func (r *Repository) FindBySpecialty(ctx context.Context, specialty string) (*Summary, error) {
	query := summaryColumns + `
		WHERE ds.specialty_name ILIKE $1 OR ds.specialty_name = 'General Medicine'
		ORDER BY (ds.specialty_name ILIKE $1) DESC, d.doctor_id ASC
		LIMIT 1
	`
	return r.one(ctx, query, "%"+specialty+"%")
}

// GetByID fetches a single doctor summary.
func (r *Repository) GetByID(ctx context.Context, id int64) (*Summary, error) {
	query := summaryColumns + ` WHERE d.doctor_id = $1`
	return r.one(ctx, query, id)
}

// ListActive returns up to limit active doctors ordered by doctor id.
func (r *Repository) ListActive(ctx context.Context, limit int) ([]Summary, error) {
	query := summaryColumns + `
		WHERE d.status = 'Active'
		ORDER BY d.doctor_id ASC
		LIMIT $1
	`
	rows, err := r.db.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("doctors: list active: %w", err)
	}
	defer rows.Close()

	var out []Summary
	for rows.Next() {
		var s Summary
		if err := rows.Scan(&s.ID, &s.Name, &s.Specialty, &s.ConsultationFee); err != nil {
			return nil, fmt.Errorf("doctors: scan active: %w", err)
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("doctors: list active rows: %w", err)
	}
	return out, nil
}

// FirstActiveExcluding returns the first active doctor other than excludeID,
// used when offering a substitute for an unavailable doctor.
func (r *Repository) FirstActiveExcluding(ctx context.Context, excludeID int64) (*Summary, error) {
	query := summaryColumns + `
		WHERE d.status = 'Active' AND d.doctor_id != $1
		ORDER BY d.doctor_id ASC
		LIMIT 1
	`
	return r.one(ctx, query, excludeID)
}

func (r *Repository) one(ctx context.Context, query string, args ...any) (*Summary, error) {
	var s Summary
	err := r.db.QueryRow(ctx, query, args...).Scan(&s.ID, &s.Name, &s.Specialty, &s.ConsultationFee)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("doctors: select: %w", err)
	}
	return &s, nil
}
