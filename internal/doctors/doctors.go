// Package doctors exposes read-only doctor projections used by the booking
// flow and the doctor directory endpoints. The chatbot never mutates doctor
// records; the relational schema owns those invariants.
package doctors

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Summary is the doctor projection surfaced to the chatbot and the API:
// the doctor row joined with its staff identity and specialty.
type Summary struct {
	ID              int64   `json:"doctor_id"`
	Name            string  `json:"doctor_name"`
	Specialty       string  `json:"specialty_name,omitempty"`
	ConsultationFee float64 `json:"consultation_fee,omitempty"`
}

// Directory is the read surface the resolver and cache operate over.
// All lookups return (nil, nil) when no doctor matches.
type Directory interface {
	FindByName(ctx context.Context, name string) (*Summary, error)
	FindBySpecialty(ctx context.Context, specialty string) (*Summary, error)
	GetByID(ctx context.Context, id int64) (*Summary, error)
	ListActive(ctx context.Context, limit int) ([]Summary, error)
	FirstActiveExcluding(ctx context.Context, excludeID int64) (*Summary, error)
}

// DB is the subset of pgxpool.Pool the repository needs; pgxmock satisfies it.
type DB interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}
