package appointments

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
)

func newMock(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock pool: %v", err)
	}
	t.Cleanup(mock.Close)
	return mock
}

func validCreate() *CreateRequest {
	return &CreateRequest{
		PatientID: 7,
		DoctorID:  3,
		Date:      "2026-09-01",
		Time:      "10:00",
		Reason:    "checkup",
	}
}

func TestSlotTaken(t *testing.T) {
	mock := newMock(t)
	repo := NewRepository(mock)

	mock.ExpectQuery(`SELECT COUNT\(\*\)`).
		WithArgs(int64(3), "2026-09-01", "10:00").
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(1))

	taken, err := repo.SlotTaken(context.Background(), 3, "2026-09-01", "10:00")
	if err != nil {
		t.Fatalf("SlotTaken returned error: %v", err)
	}
	if !taken {
		t.Fatal("expected slot to be taken")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestSlotFree(t *testing.T) {
	mock := newMock(t)
	repo := NewRepository(mock)

	mock.ExpectQuery(`SELECT COUNT\(\*\)`).
		WithArgs(int64(3), "2026-09-01", "14:00").
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(0))

	taken, err := repo.SlotTaken(context.Background(), 3, "2026-09-01", "14:00")
	if err != nil {
		t.Fatalf("SlotTaken returned error: %v", err)
	}
	if taken {
		t.Fatal("expected slot to be free")
	}
}

func TestCreateInsertsScheduled(t *testing.T) {
	mock := newMock(t)
	repo := NewRepository(mock)
	req := validCreate()

	mock.ExpectQuery(`INSERT INTO appointments`).
		WithArgs(req.PatientID, req.DoctorID, req.Date, req.Time, req.Reason, req.Notes).
		WillReturnRows(pgxmock.NewRows([]string{"appointment_id"}).AddRow(int64(42)))

	appt, err := repo.Create(context.Background(), req)
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if appt.ID != 42 || appt.Status != StatusScheduled {
		t.Fatalf("unexpected appointment: %+v", appt)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestCreateUniqueViolationIsSlotConflict(t *testing.T) {
	mock := newMock(t)
	repo := NewRepository(mock)
	req := validCreate()

	mock.ExpectQuery(`INSERT INTO appointments`).
		WithArgs(req.PatientID, req.DoctorID, req.Date, req.Time, req.Reason, req.Notes).
		WillReturnError(&pgconn.PgError{Code: "23505"})

	_, err := repo.Create(context.Background(), req)
	if !errors.Is(err, ErrSlotConflict) {
		t.Fatalf("err = %v, want ErrSlotConflict", err)
	}
}

func TestCreateRejectsInvalidRequest(t *testing.T) {
	mock := newMock(t)
	repo := NewRepository(mock)

	req := validCreate()
	req.Time = "25:00"

	if _, err := repo.Create(context.Background(), req); err == nil {
		t.Fatal("expected validation error")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestListForDoctor(t *testing.T) {
	mock := newMock(t)
	repo := NewRepository(mock)

	rows := pgxmock.NewRows([]string{
		"appointment_id", "patient_id", "doctor_id", "appointment_date",
		"appointment_time", "status_name", "reason_for_visit", "notes",
	}).
		AddRow(int64(1), int64(7), int64(3), "2026-09-01", "09:00", StatusScheduled, "checkup", "").
		AddRow(int64(2), int64(8), int64(3), "2026-09-01", "10:00", StatusConfirmed, "", "walk-in")

	mock.ExpectQuery(`SELECT a\.appointment_id`).
		WithArgs(int64(3), "2026-09-01").
		WillReturnRows(rows)

	appts, err := repo.ListForDoctor(context.Background(), 3, "2026-09-01")
	if err != nil {
		t.Fatalf("ListForDoctor returned error: %v", err)
	}
	if len(appts) != 2 {
		t.Fatalf("got %d appointments, want 2", len(appts))
	}
	if appts[1].Time != "10:00" || appts[1].Notes != "walk-in" {
		t.Fatalf("unexpected row: %+v", appts[1])
	}
}

func TestListForPatientEmpty(t *testing.T) {
	mock := newMock(t)
	repo := NewRepository(mock)

	mock.ExpectQuery(`SELECT a\.appointment_id`).
		WithArgs(int64(7)).
		WillReturnRows(pgxmock.NewRows([]string{
			"appointment_id", "patient_id", "doctor_id", "appointment_date",
			"appointment_time", "status_name", "reason_for_visit", "notes",
		}))

	appts, err := repo.ListForPatient(context.Background(), 7)
	if err != nil {
		t.Fatalf("ListForPatient returned error: %v", err)
	}
	if len(appts) != 0 {
		t.Fatalf("got %d appointments, want 0", len(appts))
	}
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*CreateRequest)
		ok     bool
	}{
		{"valid", func(r *CreateRequest) {}, true},
		{"missing patient", func(r *CreateRequest) { r.PatientID = 0 }, false},
		{"missing doctor", func(r *CreateRequest) { r.DoctorID = 0 }, false},
		{"bad date", func(r *CreateRequest) { r.Date = "01-09-2026" }, false},
		{"bad time", func(r *CreateRequest) { r.Time = "10am" }, false},
		{"hour out of range", func(r *CreateRequest) { r.Time = "24:00" }, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := validCreate()
			tc.mutate(req)
			err := req.Validate()
			if tc.ok && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !tc.ok && err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}
