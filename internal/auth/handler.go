package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/alshifa-health/hms-platform/internal/patients"
	"github.com/alshifa-health/hms-platform/internal/roles"
	"github.com/alshifa-health/hms-platform/internal/staff"
	"github.com/alshifa-health/hms-platform/pkg/logging"
)

// StaffStore is the staff read surface the handler needs.
type StaffStore interface {
	GetByEmail(ctx context.Context, email string) (*staff.Member, error)
	GetProfile(ctx context.Context, staffID int64) (*staff.Profile, error)
}

// PatientStore is the patient read surface the handler needs.
type PatientStore interface {
	GetByEmail(ctx context.Context, email string) (*patients.Patient, error)
}

// Handler serves login and session endpoints.
type Handler struct {
	staffStore    StaffStore
	patientStore  PatientStore
	staffIssuer   *Issuer
	patientIssuer *Issuer
	logger        *logging.Logger
}

// NewHandler creates an auth handler.
func NewHandler(staffStore StaffStore, patientStore PatientStore, staffIssuer, patientIssuer *Issuer, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{
		staffStore:    staffStore,
		patientStore:  patientStore,
		staffIssuer:   staffIssuer,
		patientIssuer: patientIssuer,
		logger:        logger,
	}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login authenticates a staff member and issues a session token.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	req.Email = strings.TrimSpace(req.Email)
	if req.Email == "" || req.Password == "" {
		http.Error(w, "email and password are required", http.StatusBadRequest)
		return
	}

	member, err := h.staffStore.GetByEmail(r.Context(), req.Email)
	if err != nil {
		if !errors.Is(err, staff.ErrNotFound) {
			h.logger.Error("staff login lookup failed", "error", err)
		}
		http.Error(w, "invalid credentials", http.StatusUnauthorized)
		return
	}
	if member.Status != "Active" {
		http.Error(w, "account is not active", http.StatusForbidden)
		return
	}
	if !verifyPassword(member.PasswordHash, req.Password) {
		http.Error(w, "invalid credentials", http.StatusUnauthorized)
		return
	}

	token, err := h.staffIssuer.IssueStaff(member.StaffID, member.RoleID, member.Email)
	if err != nil {
		h.logger.Error("staff token issue failed", "error", err)
		http.Error(w, "login failed", http.StatusInternalServerError)
		return
	}

	h.logger.Info("staff login", "staff_id", member.StaffID, "role_id", member.RoleID)
	writeJSON(w, http.StatusOK, map[string]any{
		"token": token,
		"user": map[string]any{
			"staff_id":    member.StaffID,
			"employee_id": member.EmployeeID,
			"email":       member.Email,
			"role_id":     member.RoleID,
		},
	})
}

// PatientLogin authenticates a patient and issues a session token.
func (h *Handler) PatientLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	req.Email = strings.TrimSpace(req.Email)
	if req.Email == "" || req.Password == "" {
		http.Error(w, "email and password are required", http.StatusBadRequest)
		return
	}

	patient, err := h.patientStore.GetByEmail(r.Context(), req.Email)
	if err != nil {
		if !errors.Is(err, patients.ErrNotFound) {
			h.logger.Error("patient login lookup failed", "error", err)
		}
		http.Error(w, "invalid credentials", http.StatusUnauthorized)
		return
	}
	if !verifyPassword(patient.PasswordHash, req.Password) {
		http.Error(w, "invalid credentials", http.StatusUnauthorized)
		return
	}

	token, err := h.patientIssuer.IssuePatient(patient.PatientID, patient.Email)
	if err != nil {
		h.logger.Error("patient token issue failed", "error", err)
		http.Error(w, "login failed", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"token": token,
		"patient": map[string]any{
			"patient_id": patient.PatientID,
			"first_name": patient.FirstName,
			"last_name":  patient.LastName,
			"email":      patient.Email,
		},
	})
}

// Me returns the authenticated staff profile with its resolved role name.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	user, ok := StaffFromContext(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	profile, err := h.staffStore.GetProfile(r.Context(), user.StaffID)
	if err != nil {
		if errors.Is(err, staff.ErrNotFound) {
			http.Error(w, "user not found", http.StatusNotFound)
			return
		}
		h.logger.Error("profile lookup failed", "staff_id", user.StaffID, "error", err)
		http.Error(w, "failed to load profile", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

// Dashboard returns the caller's landing route and visible navigation,
// derived from the single role registry.
func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	user, ok := StaffFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusOK, map[string]any{"route": roles.LoginRoute})
		return
	}
	if user.RoleName != "" && !roles.Known(user.RoleName) {
		// A role row added to the database without a registry entry lands on
		// the shared dashboard with an empty menu; worth surfacing.
		h.logger.Warn("role missing from navigation registry", "staff_id", user.StaffID, "role", user.RoleName)
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"route": roles.DashboardFor(user.RoleName),
		"menu":  roles.MenuFor(user.RoleName),
	})
}

// verifyPassword checks a bcrypt hash. Accounts provisioned before password
// hashing was rolled out have no hash yet; those log in with any non-empty
// password until the backfill completes.
func verifyPassword(hash, password string) bool {
	if hash == "" {
		return password != ""
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
