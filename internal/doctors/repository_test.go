package doctors

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

func summaryRows() *pgxmock.Rows {
	return pgxmock.NewRows([]string{"doctor_id", "doctor_name", "specialty_name", "consultation_fee"})
}

func TestFindByNameMatches(t *testing.T) {
	mock := newMock(t)
	repo := NewRepository(mock)

	mock.ExpectQuery(`SELECT d\.doctor_id`).
		WithArgs("%ahmed%").
		WillReturnRows(summaryRows().AddRow(int64(3), "Ahmed Hassan", "Cardiology", 150.0))

	doc, err := repo.FindByName(context.Background(), "ahmed")
	if err != nil {
		t.Fatalf("FindByName returned error: %v", err)
	}
	if doc == nil || doc.ID != 3 || doc.Name != "Ahmed Hassan" {
		t.Fatalf("unexpected doctor: %+v", doc)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestFindByNameNoMatchReturnsNil(t *testing.T) {
	mock := newMock(t)
	repo := NewRepository(mock)

	mock.ExpectQuery(`SELECT d\.doctor_id`).
		WithArgs("%nobody%").
		WillReturnError(pgx.ErrNoRows)

	doc, err := repo.FindByName(context.Background(), "nobody")
	if err != nil {
		t.Fatalf("no rows should not be an error, got %v", err)
	}
	if doc != nil {
		t.Fatalf("expected nil doctor, got %+v", doc)
	}
}

func TestFindByNameWrapsQueryError(t *testing.T) {
	mock := newMock(t)
	repo := NewRepository(mock)

	mock.ExpectQuery(`SELECT d\.doctor_id`).
		WithArgs("%x%").
		WillReturnError(errors.New("connection reset"))

	if _, err := repo.FindByName(context.Background(), "x"); err == nil {
		t.Fatal("expected error to propagate")
	}
}

func TestListActiveScansAllRows(t *testing.T) {
	mock := newMock(t)
	repo := NewRepository(mock)

	mock.ExpectQuery(`WHERE d\.status = 'Active'`).
		WithArgs(5).
		WillReturnRows(summaryRows().
			AddRow(int64(1), "Ahmed Hassan", "Cardiology", 150.0).
			AddRow(int64(2), "Mona Khalil", "", 100.0))

	active, err := repo.ListActive(context.Background(), 5)
	if err != nil {
		t.Fatalf("ListActive returned error: %v", err)
	}
	if len(active) != 2 {
		t.Fatalf("expected 2 doctors, got %d", len(active))
	}
	if active[1].Specialty != "" {
		t.Fatalf("expected empty specialty for unassigned doctor, got %q", active[1].Specialty)
	}
}

func TestFirstActiveExcluding(t *testing.T) {
	mock := newMock(t)
	repo := NewRepository(mock)

	mock.ExpectQuery(`d\.doctor_id != \$1`).
		WithArgs(int64(1)).
		WillReturnRows(summaryRows().AddRow(int64(2), "Mona Khalil", "Neurology", 120.0))

	doc, err := repo.FirstActiveExcluding(context.Background(), 1)
	if err != nil {
		t.Fatalf("FirstActiveExcluding returned error: %v", err)
	}
	if doc == nil || doc.ID != 2 {
		t.Fatalf("unexpected substitute: %+v", doc)
	}
}

func TestFindBySpecialty(t *testing.T) {
	mock := newMock(t)
	repo := NewRepository(mock)

	mock.ExpectQuery(`specialty_name ILIKE \$1 OR ds\.specialty_name = 'General Medicine'`).
		WithArgs("%Cardiology%").
		WillReturnRows(summaryRows().AddRow(int64(1), "Ahmed Hassan", "Cardiology", 150.0))

	doc, err := repo.FindBySpecialty(context.Background(), "Cardiology")
	if err != nil {
		t.Fatalf("FindBySpecialty returned error: %v", err)
	}
	if doc == nil || doc.Specialty != "Cardiology" {
		t.Fatalf("unexpected doctor: %+v", doc)
	}
}

func TestFindBySpecialtyOrdersSpecialistBeforeGeneralist(t *testing.T) {
	mock := newMock(t)
	repo := NewRepository(mock)

	// The match flag must lead the ordering; a lower-id General Medicine
	// doctor otherwise shadows an existing specialist.
	mock.ExpectQuery(`ORDER BY \(ds\.specialty_name ILIKE \$1\) DESC, d\.doctor_id ASC`).
		WithArgs("%Cardiology%").
		WillReturnRows(summaryRows().AddRow(int64(9), "Ahmed Hassan", "Cardiology", 150.0))

	doc, err := repo.FindBySpecialty(context.Background(), "Cardiology")
	if err != nil {
		t.Fatalf("FindBySpecialty returned error: %v", err)
	}
	if doc == nil || doc.ID != 9 || doc.Specialty != "Cardiology" {
		t.Fatalf("expected the specialist row, got %+v", doc)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}
