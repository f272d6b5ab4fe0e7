package appointments

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/alshifa-health/hms-platform/internal/auth"
	"github.com/alshifa-health/hms-platform/pkg/logging"
)

// Handler exposes booking and schedule endpoints.
type Handler struct {
	service *Service
	logger  *logging.Logger
}

func NewHandler(service *Service, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{service: service, logger: logger}
}

// Create handles POST /appointments. Patient callers book for themselves:
// the patient_id in the body is overridden by the token identity. Staff
// callers book on behalf of any patient.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if patient, ok := auth.PatientFromContext(r.Context()); ok {
		req.PatientID = patient.PatientID
	} else if _, ok := auth.StaffFromContext(r.Context()); !ok {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	if err := req.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	appt, err := h.service.Create(r.Context(), &req)
	if err != nil {
		if errors.Is(err, ErrSlotConflict) {
			writeError(w, http.StatusConflict, "slot already booked")
			return
		}
		h.logger.Error("create appointment", "error", err)
		writeError(w, http.StatusInternalServerError, "could not book appointment")
		return
	}

	writeJSON(w, http.StatusCreated, appt)
}

// List handles GET /appointments. Staff filter by doctor_id and date;
// patient callers always get their own history.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	if patient, ok := auth.PatientFromContext(r.Context()); ok {
		appts, err := h.service.ListForPatient(r.Context(), patient.PatientID)
		if err != nil {
			h.logger.Error("list patient appointments", "error", err)
			writeError(w, http.StatusInternalServerError, "could not list appointments")
			return
		}
		writeJSON(w, http.StatusOK, appts)
		return
	}

	if _, ok := auth.StaffFromContext(r.Context()); !ok {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	doctorID, err := strconv.ParseInt(r.URL.Query().Get("doctor_id"), 10, 64)
	if err != nil || doctorID <= 0 {
		writeError(w, http.StatusBadRequest, "doctor_id is required")
		return
	}
	date := r.URL.Query().Get("date")
	if !isISODate(date) {
		writeError(w, http.StatusBadRequest, "date must be YYYY-MM-DD")
		return
	}

	appts, err := h.service.ListForDoctor(r.Context(), doctorID, date)
	if err != nil {
		h.logger.Error("list doctor appointments", "doctor_id", doctorID, "error", err)
		writeError(w, http.StatusInternalServerError, "could not list appointments")
		return
	}
	writeJSON(w, http.StatusOK, appts)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
