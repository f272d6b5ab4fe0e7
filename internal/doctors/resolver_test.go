package doctors

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/alshifa-health/hms-platform/pkg/logging"
)

type stubDirectory struct {
	byName      *Summary
	bySpecialty *Summary
	active      []Summary
	substitute  *Summary
	err         error

	lastSpecialty string
}

func (s *stubDirectory) FindByName(ctx context.Context, name string) (*Summary, error) {
	return s.byName, s.err
}

func (s *stubDirectory) FindBySpecialty(ctx context.Context, specialty string) (*Summary, error) {
	s.lastSpecialty = specialty
	return s.bySpecialty, s.err
}

func (s *stubDirectory) GetByID(ctx context.Context, id int64) (*Summary, error) {
	for i := range s.active {
		if s.active[i].ID == id {
			return &s.active[i], s.err
		}
	}
	return nil, s.err
}

func (s *stubDirectory) ListActive(ctx context.Context, limit int) ([]Summary, error) {
	return s.active, s.err
}

func (s *stubDirectory) FirstActiveExcluding(ctx context.Context, excludeID int64) (*Summary, error) {
	return s.substitute, s.err
}

func quietLogger() *logging.Logger {
	return logging.NewWithWriter("error", io.Discard)
}

func TestSpecialtyForSymptom(t *testing.T) {
	tests := []struct {
		symptom string
		want    string
	}{
		{"stomach", "Gastroenterology"},
		{"بطن", "Gastroenterology"},
		{"head", "Neurology"},
		{"chest", "Cardiology"},
		{"صدر", "Cardiology"},
		{"back", "Orthopedics"},
		{"tooth", "Dentistry"},
		{"أسنان", "Dentistry"},
		{"dizzy", GeneralMedicine},
		{"", GeneralMedicine},
	}
	for _, tt := range tests {
		if got := SpecialtyForSymptom(tt.symptom); got != tt.want {
			t.Errorf("SpecialtyForSymptom(%q) = %q, want %q", tt.symptom, got, tt.want)
		}
	}
}

func TestBySymptomUsesSpecialtyMapping(t *testing.T) {
	dir := &stubDirectory{bySpecialty: &Summary{ID: 1, Name: "Ahmed Hassan", Specialty: "Cardiology"}}
	r := NewResolver(dir, quietLogger())

	doc := r.BySymptom(context.Background(), "chest")
	if doc == nil || doc.Specialty != "Cardiology" {
		t.Fatalf("unexpected doctor: %+v", doc)
	}
	if dir.lastSpecialty != "Cardiology" {
		t.Fatalf("resolver queried specialty %q, want Cardiology", dir.lastSpecialty)
	}
}

func TestLookupErrorsDegradeToNil(t *testing.T) {
	dir := &stubDirectory{err: errors.New("db down")}
	r := NewResolver(dir, quietLogger())
	ctx := context.Background()

	if doc := r.ByName(ctx, "ahmed"); doc != nil {
		t.Errorf("ByName should return nil on error, got %+v", doc)
	}
	if doc := r.BySymptom(ctx, "chest"); doc != nil {
		t.Errorf("BySymptom should return nil on error, got %+v", doc)
	}
	if doc := r.AnyActive(ctx); doc != nil {
		t.Errorf("AnyActive should return nil on error, got %+v", doc)
	}
	if doc := r.Substitute(ctx, 1); doc != nil {
		t.Errorf("Substitute should return nil on error, got %+v", doc)
	}
}

func TestByNameEmptyInputShortCircuits(t *testing.T) {
	dir := &stubDirectory{byName: &Summary{ID: 9}}
	r := NewResolver(dir, quietLogger())
	if doc := r.ByName(context.Background(), "  "); doc != nil {
		t.Fatalf("blank name should resolve to nil, got %+v", doc)
	}
}

func TestAnyActiveReturnsFirstCandidate(t *testing.T) {
	dir := &stubDirectory{active: []Summary{{ID: 4, Name: "Mona Khalil"}, {ID: 7}}}
	r := NewResolver(dir, quietLogger())
	doc := r.AnyActive(context.Background())
	if doc == nil || doc.ID != 4 {
		t.Fatalf("expected first active doctor, got %+v", doc)
	}
}
