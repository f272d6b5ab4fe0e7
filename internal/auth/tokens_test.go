package auth

import (
	"errors"
	"testing"
	"time"
)

const secret = "test-secret"

func TestStaffTokenRoundTrip(t *testing.T) {
	issuer := NewIssuer(secret, time.Hour)

	token, err := issuer.IssueStaff(5, 2, "nurse@alshifa.example")
	if err != nil {
		t.Fatalf("IssueStaff: %v", err)
	}

	claims, err := ParseStaff(token, secret)
	if err != nil {
		t.Fatalf("ParseStaff: %v", err)
	}
	if claims.StaffID != 5 || claims.RoleID != 2 || claims.Email != "nurse@alshifa.example" {
		t.Fatalf("claims = %+v", claims)
	}
}

func TestPatientTokenRoundTrip(t *testing.T) {
	issuer := NewIssuer(secret, time.Hour)

	token, err := issuer.IssuePatient(7, "mona@example.com")
	if err != nil {
		t.Fatalf("IssuePatient: %v", err)
	}

	claims, err := ParsePatient(token, secret)
	if err != nil {
		t.Fatalf("ParsePatient: %v", err)
	}
	if claims.PatientID != 7 || claims.Email != "mona@example.com" {
		t.Fatalf("claims = %+v", claims)
	}
}

func TestParseRejectsWrongSecret(t *testing.T) {
	token, err := NewIssuer(secret, time.Hour).IssueStaff(5, 2, "s@example.com")
	if err != nil {
		t.Fatalf("IssueStaff: %v", err)
	}

	if _, err := ParseStaff(token, "other-secret"); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("err = %v, want ErrInvalidToken", err)
	}
}

func TestParseRejectsExpiredToken(t *testing.T) {
	issuer := NewIssuer(secret, time.Hour).WithClock(func() time.Time {
		return time.Now().Add(-2 * time.Hour)
	})
	token, err := issuer.IssueStaff(5, 2, "s@example.com")
	if err != nil {
		t.Fatalf("IssueStaff: %v", err)
	}

	if _, err := ParseStaff(token, secret); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("err = %v, want ErrInvalidToken", err)
	}
}

func TestParseRejectsGarbage(t *testing.T) {
	if _, err := ParseStaff("not.a.token", secret); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("err = %v, want ErrInvalidToken", err)
	}
	if _, err := ParsePatient("", secret); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("err = %v, want ErrInvalidToken", err)
	}
}

func TestParseRejectsCrossTypeToken(t *testing.T) {
	// A patient token has no staff_id, so the staff parser must refuse it.
	token, err := NewIssuer(secret, time.Hour).IssuePatient(7, "mona@example.com")
	if err != nil {
		t.Fatalf("IssuePatient: %v", err)
	}

	if _, err := ParseStaff(token, secret); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("err = %v, want ErrInvalidToken", err)
	}
}

func TestZeroExpiryDefaultsToSevenDays(t *testing.T) {
	fixed := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)
	issuer := NewIssuer(secret, 0).WithClock(func() time.Time { return fixed })

	token, err := issuer.IssuePatient(7, "mona@example.com")
	if err != nil {
		t.Fatalf("IssuePatient: %v", err)
	}
	claims, err := ParsePatient(token, secret)
	if err != nil {
		t.Fatalf("ParsePatient: %v", err)
	}
	want := fixed.Add(168 * time.Hour)
	if !claims.ExpiresAt.Time.Equal(want) {
		t.Fatalf("expires at %v, want %v", claims.ExpiresAt.Time, want)
	}
}
