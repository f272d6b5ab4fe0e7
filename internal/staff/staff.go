// Package staff reads staff identity rows for authentication and role
// resolution. Writes go through the admin tooling, not this service.
package staff

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Member is the credential-facing projection used at login.
type Member struct {
	StaffID      int64
	EmployeeID   string
	Email        string
	RoleID       int64
	Status       string
	PasswordHash string // empty when credentials were provisioned without one
}

// Profile is the full identity returned by /auth/me.
type Profile struct {
	StaffID      int64  `json:"staff_id"`
	EmployeeID   string `json:"employee_id"`
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	Email        string `json:"email"`
	Phone        string `json:"phone,omitempty"`
	RoleID       int64  `json:"role_id"`
	RoleName     string `json:"role_name,omitempty"`
	Department   string `json:"department_name,omitempty"`
	Status       string `json:"status"`
	DoctorID     *int64 `json:"doctor_id,omitempty"`
}

// DB is the subset of pgxpool.Pool the repository needs; pgxmock satisfies it.
type DB interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}
