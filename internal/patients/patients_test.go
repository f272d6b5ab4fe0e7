package patients

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
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

func patientRows() *pgxmock.Rows {
	return pgxmock.NewRows([]string{"patient_id", "first_name", "last_name", "email", "password_hash"})
}

func TestGetByEmail(t *testing.T) {
	mock := newMock(t)
	repo := NewRepository(mock)

	mock.ExpectQuery(`SELECT patient_id`).
		WithArgs("mona@example.com").
		WillReturnRows(patientRows().AddRow(int64(7), "Mona", "Said", "mona@example.com", "$2a$10$hash"))

	p, err := repo.GetByEmail(context.Background(), "mona@example.com")
	if err != nil {
		t.Fatalf("GetByEmail: %v", err)
	}
	if p.PatientID != 7 || p.FirstName != "Mona" {
		t.Fatalf("patient = %+v", p)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestGetByEmailNotFound(t *testing.T) {
	mock := newMock(t)
	repo := NewRepository(mock)

	mock.ExpectQuery(`SELECT patient_id`).
		WithArgs("ghost@example.com").
		WillReturnError(pgx.ErrNoRows)

	_, err := repo.GetByEmail(context.Background(), "ghost@example.com")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestGetByID(t *testing.T) {
	mock := newMock(t)
	repo := NewRepository(mock)

	mock.ExpectQuery(`SELECT patient_id`).
		WithArgs(int64(7)).
		WillReturnRows(patientRows().AddRow(int64(7), "Mona", "Said", "mona@example.com", ""))

	p, err := repo.GetByID(context.Background(), 7)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if p.PatientID != 7 || p.PasswordHash != "" {
		t.Fatalf("patient = %+v", p)
	}
}
