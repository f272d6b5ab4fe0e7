// Package appointments persists and serves appointment bookings. The
// database owns the real scheduling invariant: a partial unique index on
// (doctor_id, appointment_date, appointment_time) over active statuses.
// Availability checks elsewhere are advisory hints on top of that guard.
package appointments

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Appointment statuses as stored in appointment_statuses.status_name.
const (
	StatusScheduled = "Scheduled"
	StatusConfirmed = "Confirmed"
	StatusCompleted = "Completed"
	StatusCancelled = "Cancelled"
	StatusNoShow    = "No Show"
)

// BlockingStatuses are the statuses that occupy a slot. Cancelled, completed
// and no-show appointments free their slot for rebooking.
var BlockingStatuses = []string{StatusScheduled, StatusConfirmed}

// ErrSlotConflict is returned when the database rejects a booking because an
// active appointment already holds the slot.
var ErrSlotConflict = errors.New("appointments: slot already booked")

// Appointment is a booked visit projection.
type Appointment struct {
	ID        int64  `json:"appointment_id"`
	PatientID int64  `json:"patient_id"`
	DoctorID  int64  `json:"doctor_id"`
	Date      string `json:"appointment_date"` // YYYY-MM-DD
	Time      string `json:"appointment_time"` // HH:MM
	Status    string `json:"status"`
	Reason    string `json:"reason_for_visit,omitempty"`
	Notes     string `json:"notes,omitempty"`
}

// CreateRequest carries a booking submission.
type CreateRequest struct {
	PatientID int64  `json:"patient_id"`
	DoctorID  int64  `json:"doctor_id"`
	Date      string `json:"appointment_date"`
	Time      string `json:"appointment_time"`
	Reason    string `json:"reason_for_visit,omitempty"`
	Notes     string `json:"notes,omitempty"`
}

// Validate checks required fields and formats.
func (r *CreateRequest) Validate() error {
	if r.PatientID <= 0 {
		return errors.New("appointments: patient_id is required")
	}
	if r.DoctorID <= 0 {
		return errors.New("appointments: doctor_id is required")
	}
	if !isISODate(r.Date) {
		return fmt.Errorf("appointments: invalid appointment_date %q", r.Date)
	}
	if !isClockTime(r.Time) {
		return fmt.Errorf("appointments: invalid appointment_time %q", r.Time)
	}
	return nil
}

func isISODate(s string) bool {
	if len(s) != 10 || s[4] != '-' || s[7] != '-' {
		return false
	}
	for i, c := range s {
		if i == 4 || i == 7 {
			continue
		}
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

func isClockTime(s string) bool {
	if len(s) != 5 || s[2] != ':' {
		return false
	}
	hh := int(s[0]-'0')*10 + int(s[1]-'0')
	mm := int(s[3]-'0')*10 + int(s[4]-'0')
	for i, c := range s {
		if i == 2 {
			continue
		}
		if c < '0' || c > '9' {
			return false
		}
	}
	return hh < 24 && mm < 60
}

// DB is the subset of pgxpool.Pool the repository needs; pgxmock satisfies it.
type DB interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

func statusList() string {
	quoted := make([]string, len(BlockingStatuses))
	for i, s := range BlockingStatuses {
		quoted[i] = "'" + s + "'"
	}
	return strings.Join(quoted, ", ")
}
