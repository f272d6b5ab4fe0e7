// Package patients reads patient identity rows for the patient-facing auth
// and chat flow. Full patient record management lives in the admin API.
package patients

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// ErrNotFound is returned when no patient row matches.
var ErrNotFound = errors.New("patients: not found")

// Patient is the identity projection used at login and in the chat session.
type Patient struct {
	PatientID    int64  `json:"patient_id"`
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	Email        string `json:"email"`
	PasswordHash string `json:"-"`
}

// DB is the subset of pgxpool.Pool the repository needs; pgxmock satisfies it.
type DB interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// Repository reads patient rows from the relational database.
type Repository struct {
	db DB
}

// NewRepository initializes a repo backed by pgxpool.
func NewRepository(db DB) *Repository {
	if db == nil {
		panic("patients: db required")
	}
	return &Repository{db: db}
}

// GetByEmail loads the credential projection for patient login.
func (r *Repository) GetByEmail(ctx context.Context, email string) (*Patient, error) {
	query := `
		SELECT patient_id, first_name, last_name, email, COALESCE(password_hash, '')
		FROM patients
		WHERE email = $1
	`
	return r.one(ctx, query, email)
}

// GetByID loads a patient by id.
func (r *Repository) GetByID(ctx context.Context, id int64) (*Patient, error) {
	query := `
		SELECT patient_id, first_name, last_name, email, COALESCE(password_hash, '')
		FROM patients
		WHERE patient_id = $1
	`
	return r.one(ctx, query, id)
}

func (r *Repository) one(ctx context.Context, query string, args ...any) (*Patient, error) {
	var p Patient
	err := r.db.QueryRow(ctx, query, args...).Scan(
		&p.PatientID, &p.FirstName, &p.LastName, &p.Email, &p.PasswordHash,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("patients: select: %w", err)
	}
	return &p, nil
}
