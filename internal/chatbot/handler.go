package chatbot

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/alshifa-health/hms-platform/internal/auth"
	"github.com/alshifa-health/hms-platform/pkg/logging"
)

// Handler exposes the chatbot over HTTP.
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

type messageRequest struct {
	Message string `json:"message"`
	Lang    string `json:"lang,omitempty"`
}

// Message handles POST /chatbot/message. The caller must carry a patient
// token; the middleware guarantees that before this runs.
func (h *Handler) Message(w http.ResponseWriter, r *http.Request) {
	patient, ok := auth.PatientFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var req messageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	req.Message = strings.TrimSpace(req.Message)
	if req.Message == "" {
		writeError(w, http.StatusBadRequest, "message is required")
		return
	}

	var lang Language
	switch strings.ToLower(req.Lang) {
	case "ar":
		lang = Arabic
	case "en":
		lang = English
	}

	resp := h.service.HandleMessage(r.Context(), req.Message, lang)
	h.logger.Info("chatbot turn", "patient_id", patient.PatientID)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		h.logger.Error("encode chatbot response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
