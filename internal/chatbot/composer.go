package chatbot

import (
	"fmt"

	"github.com/alshifa-health/hms-platform/internal/doctors"
)

// ProposalType tags booking actions on the wire.
const ProposalType = "book_appointment"

// BookingProposal is a structured, unconfirmed booking suggestion. It is
// never executed by the chatbot; the client must submit it through the
// appointments API after explicit patient confirmation.
type BookingProposal struct {
	Type       string `json:"type"`
	DoctorID   int64  `json:"doctor_id"`
	DoctorName string `json:"doctor_name"`
	Date       string `json:"appointment_date"`
	Time       string `json:"appointment_time"`
	Reason     string `json:"reason,omitempty"`
}

// Response is one chatbot turn: a user-facing message and an optional
// advisory action.
type Response struct {
	Message string           `json:"message"`
	Action  *BookingProposal `json:"action,omitempty"`
}

// BookingOutcome gathers everything resolution and negotiation produced for
// a booking intent; the composer turns it into a reply.
type BookingOutcome struct {
	RequestedName string // doctor name as extracted, empty when none given
	Doctor        *doctors.Summary
	Alternative   *doctors.Summary // substitute offer, set only when slot moved off a named doctor
	Date          string
	RequestedTime string
	Result        Negotiation
	NoSlots       bool
	Reason        string // original message, carried onto the proposal
}

type catalog struct {
	noDoctors      string
	confirm        string // doctor, date, time
	altDoctor      string // requested, date, time, substitute, new time
	sameDoctor     string // requested, date, time, doctor, new time
	noSlots        string // doctor, date
	medicalAdvice  string // symptom, doctor, specialty, time
	medicalGeneric string
	greeting       string
	general        string
}

var catalogs = map[Language]catalog{
	English: {
		noDoctors:      "I'm sorry, but no doctors are currently available. Please contact our reception for assistance.",
		confirm:        "Great! I can book an appointment with Dr. %s on %s at %s. Would you like me to proceed?",
		altDoctor:      "Dr. %s isn't available on %s at %s. Would you like me to book with Dr. %s instead at %s?",
		sameDoctor:     "Dr. %s isn't available on %s at %s. Would you like me to book with Dr. %s at %s?",
		noSlots:        "I'm sorry, Dr. %s is fully booked on %s. Please try another day or contact our reception.",
		medicalAdvice:  "Yes, I can help! For %s problems, I recommend booking with Dr. %s who specializes in %s. Would you like me to book an appointment for tomorrow at %s?",
		medicalGeneric: "I understand you're experiencing some discomfort. I recommend booking an appointment with one of our doctors. Would you like me to help you find an available doctor?",
		greeting:       "Hello! I'm here to help you. You can ask me to book an appointment, ask medical questions, or get general information. How can I assist you today?",
		general:        "I'm here to help! You can ask me to book an appointment with a doctor, ask medical questions, or get information about our services. What would you like to do?",
	},
	Arabic: {
		noDoctors:      "عذراً، لا يوجد أطباء متاحون حالياً. يرجى التواصل مع الاستقبال للمساعدة.",
		confirm:        "رائع! يمكنني حجز موعد مع د. %s بتاريخ %s الساعة %s. هل تريد المتابعة؟",
		altDoctor:      "د. %s غير متاح بتاريخ %s الساعة %s. هل تريد الحجز مع د. %s بدلاً منه الساعة %s؟",
		sameDoctor:     "د. %s غير متاح بتاريخ %s الساعة %s. هل تريد الحجز مع د. %s الساعة %s؟",
		noSlots:        "عذراً، جدول د. %s ممتلئ بالكامل بتاريخ %s. يرجى تجربة يوم آخر أو التواصل مع الاستقبال.",
		medicalAdvice:  "نعم، يمكنني المساعدة! لمشاكل %s أنصح بالحجز مع د. %s المتخصص في %s. هل تريد حجز موعد غداً الساعة %s؟",
		medicalGeneric: "أتفهم أنك تشعر ببعض الانزعاج. أنصح بحجز موعد مع أحد أطبائنا. هل تريد أن أساعدك في إيجاد طبيب متاح؟",
		greeting:       "مرحباً! أنا هنا لمساعدتك. يمكنك طلب حجز موعد، أو طرح أسئلة طبية، أو الحصول على معلومات عامة. كيف يمكنني مساعدتك اليوم؟",
		general:        "أنا هنا للمساعدة! يمكنك طلب حجز موعد مع طبيب، أو طرح أسئلة طبية، أو الاستفسار عن خدماتنا. ماذا تريد أن تفعل؟",
	},
}

func catalogFor(lang Language) catalog {
	if c, ok := catalogs[lang]; ok {
		return c
	}
	return catalogs[English]
}

// ComposeBooking renders a booking outcome into a reply plus proposal.
func ComposeBooking(o BookingOutcome, lang Language) Response {
	c := catalogFor(lang)

	if o.Doctor == nil {
		return Response{Message: c.noDoctors}
	}
	if o.NoSlots {
		return Response{Message: fmt.Sprintf(c.noSlots, o.Doctor.Name, o.Date)}
	}

	// A moved slot for an explicitly named doctor reads as an apology plus
	// an offer; an unnamed request just gets the negotiated time confirmed.
	if o.Result.Changed && o.RequestedName != "" {
		if o.Alternative != nil {
			return Response{
				Message: fmt.Sprintf(c.altDoctor, o.RequestedName, o.Date, o.RequestedTime, o.Alternative.Name, o.Result.Time),
				Action:  proposal(o.Alternative, o.Date, o.Result.Time, o.Reason),
			}
		}
		return Response{
			Message: fmt.Sprintf(c.sameDoctor, o.RequestedName, o.Date, o.RequestedTime, o.Doctor.Name, o.Result.Time),
			Action:  proposal(o.Doctor, o.Date, o.Result.Time, o.Reason),
		}
	}

	return Response{
		Message: fmt.Sprintf(c.confirm, o.Doctor.Name, o.Date, o.Result.Time),
		Action:  proposal(o.Doctor, o.Date, o.Result.Time, o.Reason),
	}
}

// ComposeMedical renders a symptom triage reply, recommending a specialist
// with a next-day slot when one resolved.
func ComposeMedical(symptom string, doc *doctors.Summary, date, clock string, lang Language, reason string) Response {
	c := catalogFor(lang)
	if doc == nil {
		return Response{Message: c.medicalGeneric}
	}
	specialty := doc.Specialty
	if specialty == "" {
		specialty = doctors.GeneralMedicine
	}
	return Response{
		Message: fmt.Sprintf(c.medicalAdvice, symptom, doc.Name, specialty, clock),
		Action:  proposal(doc, date, clock, reason),
	}
}

// ComposeSmallTalk serves greetings and general inquiries, preferring an
// assistant-generated message when one is available.
func ComposeSmallTalk(kind IntentKind, aiMessage string, lang Language) Response {
	if aiMessage != "" {
		return Response{Message: aiMessage}
	}
	c := catalogFor(lang)
	if kind == IntentGreeting {
		return Response{Message: c.greeting}
	}
	return Response{Message: c.general}
}

func proposal(doc *doctors.Summary, date, clock, reason string) *BookingProposal {
	return &BookingProposal{
		Type:       ProposalType,
		DoctorID:   doc.ID,
		DoctorName: doc.Name,
		Date:       date,
		Time:       clock,
		Reason:     reason,
	}
}
