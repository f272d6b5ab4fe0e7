// Package router assembles the HTTP surface: public health and login
// endpoints, the patient-facing chatbot, and the staff API.
package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/alshifa-health/hms-platform/internal/appointments"
	"github.com/alshifa-health/hms-platform/internal/auth"
	"github.com/alshifa-health/hms-platform/internal/chatbot"
	"github.com/alshifa-health/hms-platform/internal/chatws"
	"github.com/alshifa-health/hms-platform/internal/doctors"
	httpmiddleware "github.com/alshifa-health/hms-platform/internal/http/middleware"
	"github.com/alshifa-health/hms-platform/pkg/logging"
)

// Config holds router configuration.
type Config struct {
	Logger *logging.Logger

	AuthHandler         *auth.Handler
	ChatbotHandler      *chatbot.Handler
	ChatWSHandler       *chatws.Handler
	DoctorsHandler      *doctors.Handler
	AppointmentsHandler *appointments.Handler

	RoleResolver  auth.RoleResolver
	JWTSecret     string
	PatientSecret string

	MetricsHandler     http.Handler
	CORSAllowedOrigins []string

	// Requests/sec and burst applied to the login endpoints.
	LoginRateLimit float64
	LoginBurst     int
}

// New creates a chi router with all routes configured.
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(httpmiddleware.CORS(cfg.CORSAllowedOrigins))
	}
	if cfg.Logger != nil {
		r.Use(httpmiddleware.RequestLogger(cfg.Logger))
	}

	staffOnly := auth.StaffJWT(cfg.JWTSecret, cfg.RoleResolver, cfg.Logger)
	patientOnly := auth.PatientJWT(cfg.PatientSecret)
	anyUser := auth.AnyJWT(cfg.JWTSecret, cfg.PatientSecret, cfg.RoleResolver, cfg.Logger)

	// Public endpoints
	r.Group(func(public chi.Router) {
		public.Get("/health", handleHealth)
		if cfg.MetricsHandler != nil {
			public.Handle("/metrics", cfg.MetricsHandler)
		}

		loginLimit := cfg.LoginRateLimit
		burst := cfg.LoginBurst
		if loginLimit <= 0 {
			loginLimit = 1
		}
		if burst <= 0 {
			burst = 5
		}
		public.Route("/auth", func(ar chi.Router) {
			ar.Use(httpmiddleware.RateLimit(loginLimit, burst))
			ar.Post("/login", cfg.AuthHandler.Login)
			ar.Post("/patient/login", cfg.AuthHandler.PatientLogin)
		})

		// WebSocket upgrade carries the patient token as a query parameter,
		// so it bypasses the header middleware.
		if cfg.ChatWSHandler != nil {
			public.Get("/chatbot/ws", cfg.ChatWSHandler.HandleWebSocket)
		}
	})

	// Patient endpoints
	r.Group(func(patient chi.Router) {
		patient.Use(patientOnly)
		patient.Post("/chatbot/message", cfg.ChatbotHandler.Message)
		if cfg.ChatWSHandler != nil {
			patient.Get("/chatbot/history", cfg.ChatWSHandler.HandleHistory)
		}
	})

	// Booking endpoints accept either identity; the handler scopes patients
	// to their own records.
	r.Group(func(booking chi.Router) {
		booking.Use(anyUser)
		booking.Post("/appointments", cfg.AppointmentsHandler.Create)
		booking.Get("/appointments", cfg.AppointmentsHandler.List)
	})

	// Staff endpoints
	r.Group(func(staff chi.Router) {
		staff.Use(staffOnly)
		staff.Get("/auth/me", cfg.AuthHandler.Me)
		staff.Get("/roles/dashboard", cfg.AuthHandler.Dashboard)
		staff.Get("/doctors", cfg.DoctorsHandler.List)
		staff.Get("/doctors/{doctorID}", cfg.DoctorsHandler.Get)
	})

	return r
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}
