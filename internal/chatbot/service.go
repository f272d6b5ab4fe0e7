package chatbot

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/alshifa-health/hms-platform/internal/doctors"
	"github.com/alshifa-health/hms-platform/internal/observability/metrics"
	"github.com/alshifa-health/hms-platform/pkg/logging"
)

var tracer = otel.Tracer("hms.internal.chatbot")

// Assistant generates a free-form AI reply; llm.GroqClient implements it.
// A nil assistant or any error silently degrades to the rule-based catalog.
type Assistant interface {
	Reply(ctx context.Context, message string, roster []doctors.Summary) (string, error)
}

// medicalDefaultSlot is the next-day slot suggested for symptom triage.
const medicalDefaultSlot = "10:00"

// Service runs one chatbot turn: extract, resolve, negotiate, compose.
type Service struct {
	extractor  *Extractor
	resolver   *doctors.Resolver
	negotiator *Negotiator
	assistant  Assistant
	metrics    *metrics.ChatbotMetrics
	logger     *logging.Logger
	now        func() time.Time
}

// NewService wires the conversation pipeline. assistant and m may be nil.
func NewService(extractor *Extractor, resolver *doctors.Resolver, negotiator *Negotiator, assistant Assistant, m *metrics.ChatbotMetrics, logger *logging.Logger) *Service {
	if extractor == nil {
		extractor = NewExtractor()
	}
	if resolver == nil {
		panic("chatbot: doctor resolver required")
	}
	if negotiator == nil {
		panic("chatbot: negotiator required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{
		extractor:  extractor,
		resolver:   resolver,
		negotiator: negotiator,
		assistant:  assistant,
		metrics:    m,
		logger:     logger,
		now:        time.Now,
	}
}

// WithClock fixes the service clock; tests use this.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	s.extractor.WithClock(now)
	return s
}

// HandleMessage processes one inbound patient message. lang may be empty, in
// which case the reply language follows the message script. The returned
// response always carries a usable message; extraction and lookup problems
// degrade the reply, they never fail the turn.
func (s *Service) HandleMessage(ctx context.Context, message string, lang Language) Response {
	start := s.now()
	ctx, span := tracer.Start(ctx, "chatbot.turn")
	defer span.End()

	if lang == "" {
		lang = DetectLanguage(message)
	}
	intent := s.extractor.Extract(message)
	span.SetAttributes(
		attribute.String("hms.intent", string(intent.Kind)),
		attribute.String("hms.language", string(lang)),
	)

	var resp Response
	switch intent.Kind {
	case IntentBookAppointment:
		resp = s.handleBooking(ctx, intent, message, lang)
	case IntentMedicalQuestion:
		resp = s.handleMedical(ctx, intent, message, lang)
	default:
		resp = s.handleSmallTalk(ctx, intent.Kind, message, lang)
	}

	s.metrics.ObserveTurn(string(intent.Kind), string(lang), time.Since(start).Seconds())
	return resp
}

func (s *Service) handleBooking(ctx context.Context, intent Intent, message string, lang Language) Response {
	doctor := s.resolver.ByName(ctx, intent.DoctorName)
	if doctor == nil {
		// No named doctor or no match: pick any active doctor so the flow
		// never dead-ends, even if the specialty may not fit.
		doctor = s.resolver.AnyActive(ctx)
	}
	if doctor == nil {
		s.metrics.ObserveProposal("no_doctor")
		return ComposeBooking(BookingOutcome{}, lang)
	}

	date := intent.Date
	if date == "" {
		date = s.now().AddDate(0, 0, 1).Format("2006-01-02")
	}
	requested := NormalizeTime(intent.Time)
	if requested == "" {
		requested = DefaultSlot
	}

	outcome := BookingOutcome{
		RequestedName: intent.DoctorName,
		Doctor:        doctor,
		Date:          date,
		RequestedTime: requested,
		Reason:        message,
	}

	negotiation, err := s.negotiator.Negotiate(ctx, doctor.ID, date, requested)
	if err != nil {
		s.logger.Info("no free slots", "doctor_id", doctor.ID, "date", date)
		s.metrics.ObserveProposal("no_slots")
		outcome.NoSlots = true
		return ComposeBooking(outcome, lang)
	}
	outcome.Result = negotiation

	if negotiation.Changed && intent.DoctorName != "" {
		outcome.Alternative = s.resolver.Substitute(ctx, doctor.ID)
		if outcome.Alternative != nil {
			s.metrics.ObserveProposal("substituted")
		} else {
			s.metrics.ObserveProposal("rescheduled")
		}
	} else {
		s.metrics.ObserveProposal("offered")
	}

	return ComposeBooking(outcome, lang)
}

func (s *Service) handleMedical(ctx context.Context, intent Intent, message string, lang Language) Response {
	doctor := s.resolver.BySymptom(ctx, intent.Symptom)
	if doctor == nil {
		return ComposeMedical(intent.Symptom, nil, "", "", lang, message)
	}
	date := s.now().AddDate(0, 0, 1).Format("2006-01-02")
	return ComposeMedical(intent.Symptom, doctor, date, medicalDefaultSlot, lang, message)
}

func (s *Service) handleSmallTalk(ctx context.Context, kind IntentKind, message string, lang Language) Response {
	if kind == IntentUnknown {
		kind = IntentGeneralInquiry
	}

	var aiMessage string
	if s.assistant != nil {
		roster := s.resolver.Roster(ctx, 10)
		reply, err := s.assistant.Reply(ctx, message, roster)
		if err != nil {
			// Assistant failures are never fatal; the canned catalog answers.
			s.logger.Warn("assistant call failed", "error", err)
			s.metrics.ObserveAssistantCall("error")
		} else {
			s.metrics.ObserveAssistantCall("ok")
			aiMessage = reply
		}
	}

	return ComposeSmallTalk(kind, aiMessage, lang)
}
