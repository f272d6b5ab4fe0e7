package chatbot

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alshifa-health/hms-platform/internal/auth"
)

const patientSecret = "patient-test-secret"

func newTestHandler(t *testing.T) http.Handler {
	t.Helper()
	svc := newTestService(t, rosterDirectory(), &fakeChecker{}, nil)
	h := NewHandler(svc, quietLogger())
	return auth.PatientJWT(patientSecret)(http.HandlerFunc(h.Message))
}

func patientToken(t *testing.T) string {
	t.Helper()
	token, err := auth.NewIssuer(patientSecret, time.Hour).IssuePatient(7, "mona@example.com")
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	return token
}

func postMessage(t *testing.T, handler http.Handler, body, token string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/chatbot/message", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestMessageRequiresPatientToken(t *testing.T) {
	rec := postMessage(t, newTestHandler(t), `{"message":"hello"}`, "")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

func TestMessageRejectsEmptyBody(t *testing.T) {
	handler := newTestHandler(t)
	token := patientToken(t)

	for _, body := range []string{`{}`, `{"message":"   "}`, `not json`} {
		rec := postMessage(t, handler, body, token)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("body %q: status = %d, want 400", body, rec.Code)
		}
	}
}

func TestMessageReturnsProposal(t *testing.T) {
	rec := postMessage(t, newTestHandler(t),
		`{"message":"book an appointment with dr ahmed tomorrow at 10am"}`, patientToken(t))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var resp Response
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Action == nil || resp.Action.Type != ProposalType {
		t.Fatalf("response = %+v", resp)
	}
	if resp.Action.DoctorName != "Ahmed Hassan" {
		t.Errorf("doctor = %q", resp.Action.DoctorName)
	}
}

func TestMessageHonorsLangFlag(t *testing.T) {
	rec := postMessage(t, newTestHandler(t), `{"message":"hello","lang":"ar"}`, patientToken(t))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var resp Response
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !strings.Contains(resp.Message, "مرحباً") {
		t.Errorf("expected Arabic reply, got %q", resp.Message)
	}
}
