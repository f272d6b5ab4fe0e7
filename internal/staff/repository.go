package staff

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// ErrNotFound is returned when no staff row matches.
var ErrNotFound = errors.New("staff: not found")

// Repository reads staff rows from the relational database.
type Repository struct {
	db DB
}

// NewRepository initializes a repo backed by pgxpool.
func NewRepository(db DB) *Repository {
	if db == nil {
		panic("staff: db required")
	}
	return &Repository{db: db}
}

// GetByEmail loads the credential projection for login.
func (r *Repository) GetByEmail(ctx context.Context, email string) (*Member, error) {
	query := `
		SELECT staff_id, employee_id, email, role_id, status, COALESCE(password_hash, '')
		FROM staff
		WHERE email = $1
	`
	var m Member
	err := r.db.QueryRow(ctx, query, email).Scan(
		&m.StaffID, &m.EmployeeID, &m.Email, &m.RoleID, &m.Status, &m.PasswordHash,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("staff: select by email: %w", err)
	}
	return &m, nil
}

// GetProfile loads the full identity with role, department and doctor links.
func (r *Repository) GetProfile(ctx context.Context, staffID int64) (*Profile, error) {
	query := `
		SELECT s.staff_id, s.employee_id, s.first_name, s.last_name, s.email,
		       COALESCE(s.phone, ''), s.role_id, COALESCE(sr.role_name, ''),
		       COALESCE(d.department_name, ''), s.status, doc.doctor_id
		FROM staff s
		LEFT JOIN staff_roles sr ON s.role_id = sr.role_id
		LEFT JOIN departments d ON s.department_id = d.department_id
		LEFT JOIN doctors doc ON s.staff_id = doc.staff_id
		WHERE s.staff_id = $1
	`
	var p Profile
	err := r.db.QueryRow(ctx, query, staffID).Scan(
		&p.StaffID, &p.EmployeeID, &p.FirstName, &p.LastName, &p.Email,
		&p.Phone, &p.RoleID, &p.RoleName, &p.Department, &p.Status, &p.DoctorID,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("staff: select profile: %w", err)
	}
	return &p, nil
}

// RoleName resolves a role id to its display name, empty when unknown.
func (r *Repository) RoleName(ctx context.Context, roleID int64) (string, error) {
	var name string
	err := r.db.QueryRow(ctx, `SELECT role_name FROM staff_roles WHERE role_id = $1`, roleID).Scan(&name)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("staff: select role name: %w", err)
	}
	return name, nil
}
