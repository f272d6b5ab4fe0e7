package appointments

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/alshifa-health/hms-platform/pkg/logging"
)

var tracer = otel.Tracer("hms.internal.appointments")

// Booker is the write/read surface the HTTP handler depends on.
type Booker interface {
	Create(ctx context.Context, req *CreateRequest) (*Appointment, error)
	ListForDoctor(ctx context.Context, doctorID int64, date string) ([]Appointment, error)
	ListForPatient(ctx context.Context, patientID int64) ([]Appointment, error)
}

// Notifier pushes a booked appointment to the patient's open chat sessions,
// so a booking made through the REST API shows up in the widget immediately.
type Notifier interface {
	BookingConfirmed(patientID int64, appt *Appointment)
}

// Service books appointments and reads schedules.
type Service struct {
	repo     Booker
	notifier Notifier
	logger   *logging.Logger
}

// NewService constructs an appointments service.
func NewService(repo Booker, logger *logging.Logger) *Service {
	if repo == nil {
		panic("appointments: repository required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{repo: repo, logger: logger}
}

// WithNotifier connects the chat push channel. Nil leaves pushes off.
func (s *Service) WithNotifier(n Notifier) *Service {
	s.notifier = n
	return s
}

// Create books a Scheduled appointment. Slot conflicts surface as
// ErrSlotConflict for the handler to translate.
func (s *Service) Create(ctx context.Context, req *CreateRequest) (*Appointment, error) {
	ctx, span := tracer.Start(ctx, "appointments.create")
	defer span.End()
	span.SetAttributes(
		attribute.Int64("hms.doctor_id", req.DoctorID),
		attribute.String("hms.date", req.Date),
		attribute.String("hms.time", req.Time),
	)

	appt, err := s.repo.Create(ctx, req)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	s.logger.Info("appointment booked",
		"appointment_id", appt.ID,
		"doctor_id", appt.DoctorID,
		"patient_id", appt.PatientID,
		"date", appt.Date,
		"time", appt.Time,
	)
	if s.notifier != nil {
		s.notifier.BookingConfirmed(appt.PatientID, appt)
	}
	return appt, nil
}

// ListForDoctor returns a doctor's schedule for one date.
func (s *Service) ListForDoctor(ctx context.Context, doctorID int64, date string) ([]Appointment, error) {
	return s.repo.ListForDoctor(ctx, doctorID, date)
}

// ListForPatient returns a patient's booking history.
func (s *Service) ListForPatient(ctx context.Context, patientID int64) ([]Appointment, error) {
	return s.repo.ListForPatient(ctx, patientID)
}
