package appointments

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
)

// Repository stores appointments in the relational database.
type Repository struct {
	db DB
}

// NewRepository initializes a repo backed by pgxpool.
func NewRepository(db DB) *Repository {
	if db == nil {
		panic("appointments: db required")
	}
	return &Repository{db: db}
}

// SlotTaken reports whether an active appointment already occupies the
// doctor/date/time triple. Best-effort read: the insert-time unique index is
// the authoritative guard against double booking.
func (r *Repository) SlotTaken(ctx context.Context, doctorID int64, date, clock string) (bool, error) {
	query := `
		SELECT COUNT(*)
		FROM appointments a
		INNER JOIN appointment_statuses st ON a.status_id = st.status_id
		WHERE a.doctor_id = $1
		  AND a.appointment_date = $2::date
		  AND a.appointment_time = $3::time
		  AND st.status_name IN (` + statusList() + `)
	`
	var count int
	if err := r.db.QueryRow(ctx, query, doctorID, date, clock).Scan(&count); err != nil {
		return false, fmt.Errorf("appointments: availability check: %w", err)
	}
	return count > 0, nil
}

// Create inserts a Scheduled appointment. A unique-index violation maps to
// ErrSlotConflict so callers can distinguish a lost race from a failure.
func (r *Repository) Create(ctx context.Context, req *CreateRequest) (*Appointment, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	query := `
		INSERT INTO appointments (patient_id, doctor_id, appointment_date, appointment_time, status_id, reason_for_visit, notes)
		VALUES ($1, $2, $3::date, $4::time,
		        (SELECT status_id FROM appointment_statuses WHERE status_name = 'Scheduled'),
		        $5, $6)
		RETURNING appointment_id
	`
	var id int64
	err := r.db.QueryRow(ctx, query,
		req.PatientID,
		req.DoctorID,
		req.Date,
		req.Time,
		req.Reason,
		req.Notes,
	).Scan(&id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, ErrSlotConflict
		}
		return nil, fmt.Errorf("appointments: insert: %w", err)
	}

	return &Appointment{
		ID:        id,
		PatientID: req.PatientID,
		DoctorID:  req.DoctorID,
		Date:      req.Date,
		Time:      req.Time,
		Status:    StatusScheduled,
		Reason:    req.Reason,
		Notes:     req.Notes,
	}, nil
}

// ListForDoctor returns a doctor's appointments for one date, time ascending.
func (r *Repository) ListForDoctor(ctx context.Context, doctorID int64, date string) ([]Appointment, error) {
	query := `
		SELECT a.appointment_id, a.patient_id, a.doctor_id,
		       to_char(a.appointment_date, 'YYYY-MM-DD'),
		       to_char(a.appointment_time, 'HH24:MI'),
		       st.status_name,
		       COALESCE(a.reason_for_visit, ''),
		       COALESCE(a.notes, '')
		FROM appointments a
		INNER JOIN appointment_statuses st ON a.status_id = st.status_id
		WHERE a.doctor_id = $1 AND a.appointment_date = $2::date
		ORDER BY a.appointment_time ASC
	`
	return r.list(ctx, query, doctorID, date)
}

// ListForPatient returns a patient's appointments, most recent date first.
func (r *Repository) ListForPatient(ctx context.Context, patientID int64) ([]Appointment, error) {
	query := `
		SELECT a.appointment_id, a.patient_id, a.doctor_id,
		       to_char(a.appointment_date, 'YYYY-MM-DD'),
		       to_char(a.appointment_time, 'HH24:MI'),
		       st.status_name,
		       COALESCE(a.reason_for_visit, ''),
		       COALESCE(a.notes, '')
		FROM appointments a
		INNER JOIN appointment_statuses st ON a.status_id = st.status_id
		WHERE a.patient_id = $1
		ORDER BY a.appointment_date DESC, a.appointment_time ASC
	`
	return r.list(ctx, query, patientID)
}

func (r *Repository) list(ctx context.Context, query string, args ...any) ([]Appointment, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("appointments: select: %w", err)
	}
	defer rows.Close()

	var out []Appointment
	for rows.Next() {
		var a Appointment
		if err := rows.Scan(&a.ID, &a.PatientID, &a.DoctorID, &a.Date, &a.Time, &a.Status, &a.Reason, &a.Notes); err != nil {
			return nil, fmt.Errorf("appointments: scan: %w", err)
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("appointments: rows: %w", err)
	}
	return out, nil
}
