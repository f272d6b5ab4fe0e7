package doctors

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/alshifa-health/hms-platform/pkg/logging"
)

const defaultListLimit = 50

// Handler serves the doctor directory endpoints.
type Handler struct {
	dir    Directory
	logger *logging.Logger
}

func NewHandler(dir Directory, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{dir: dir, logger: logger}
}

// List handles GET /doctors, optionally filtered by ?specialty=.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	if specialty := r.URL.Query().Get("specialty"); specialty != "" {
		doc, err := h.dir.FindBySpecialty(r.Context(), specialty)
		if err != nil {
			h.logger.Error("doctor lookup by specialty", "specialty", specialty, "error", err)
			writeError(w, http.StatusInternalServerError, "could not list doctors")
			return
		}
		if doc == nil {
			writeJSON(w, http.StatusOK, []Summary{})
			return
		}
		writeJSON(w, http.StatusOK, []Summary{*doc})
		return
	}

	limit := defaultListLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 || n > 200 {
			writeError(w, http.StatusBadRequest, "limit must be between 1 and 200")
			return
		}
		limit = n
	}

	active, err := h.dir.ListActive(r.Context(), limit)
	if err != nil {
		h.logger.Error("doctor listing", "error", err)
		writeError(w, http.StatusInternalServerError, "could not list doctors")
		return
	}
	if active == nil {
		active = []Summary{}
	}
	writeJSON(w, http.StatusOK, active)
}

// Get handles GET /doctors/{doctorID}.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "doctorID"), 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "invalid doctor id")
		return
	}

	doc, err := h.dir.GetByID(r.Context(), id)
	if err != nil {
		h.logger.Error("doctor lookup", "doctor_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "could not load doctor")
		return
	}
	if doc == nil {
		writeError(w, http.StatusNotFound, "doctor not found")
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
