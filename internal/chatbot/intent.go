// Package chatbot implements the appointment-intake conversation: intent and
// slot extraction from free text, availability negotiation against the
// appointment store, and bilingual response composition. Nothing in this
// package commits a booking; proposals are advisory and must be confirmed
// through the appointments API.
package chatbot

import (
	"regexp"
	"strings"
	"time"
	"unicode"
)

// IntentKind classifies the purpose of a patient message.
type IntentKind string

const (
	IntentBookAppointment IntentKind = "book_appointment"
	IntentMedicalQuestion IntentKind = "medical_question"
	IntentGreeting        IntentKind = "greeting"
	IntentGeneralInquiry  IntentKind = "general_inquiry"
	IntentUnknown         IntentKind = "unknown"
)

// Language selects the response catalog.
type Language string

const (
	English Language = "en"
	Arabic  Language = "ar"
)

// Intent is the classified purpose of a message plus any extracted slots.
// Booking intents never carry a symptom and medical intents never carry
// booking slots; keyword priority makes the two mutually exclusive.
type Intent struct {
	Kind       IntentKind
	DoctorName string
	Date       string // YYYY-MM-DD once normalized, empty when unspecified
	Time       string // raw match, normalize with NormalizeTime before use
	Symptom    string
}

// Keyword sets evaluated in priority order: booking beats medical beats
// greeting. English and Arabic terms share each set.
var (
	bookingKeywords  = []string{"book", "appointment", "schedule", "reserve", "حجز", "موعد"}
	medicalKeywords  = []string{"pain", "ache", "hurt", "symptom", "feel", "problem", "ألم", "وجع", "أشعر", "مشكلة"}
	greetingKeywords = []string{"hello", "hi", "hey", "مرحبا", "أهلا", "سلام"}
	symptomKeywords  = []string{"stomach", "head", "chest", "back", "tooth", "بطن", "رأس", "صدر", "ظهر", "أسنان"}
)

var (
	doctorNameRE = regexp.MustCompile(`(?:dr|doctor|دكتور|د\.)\s*([\p{L} ]+)`)
	clockRE      = regexp.MustCompile(`(\d{1,2})(?::(\d{2}))?\s*(am|pm|ص|م)?`)
	isoDateRE    = regexp.MustCompile(`\d{4}-\d{2}-\d{2}`)
	slashDateRE  = regexp.MustCompile(`(\d{1,2})/(\d{1,2})/(\d{4})`)
	timeStrictRE = regexp.MustCompile(`^(\d{1,2})(?::(\d{2}))?\s*(am|pm|ص|م)?$`)
)

// nameStopwords end a captured doctor name; anything after them belongs to
// the date/time part of the sentence, not the name.
var nameStopwords = map[string]bool{
	"tomorrow": true, "today": true, "at": true, "on": true, "for": true,
	"غدا": true, "غداً": true, "اليوم": true, "في": true, "الساعة": true,
}

// Extractor parses free-text messages into intents. The clock is injectable
// so "today"/"tomorrow" resolution is deterministic under test.
type Extractor struct {
	now func() time.Time
}

// NewExtractor builds an extractor on the wall clock.
func NewExtractor() *Extractor {
	return &Extractor{now: time.Now}
}

// WithClock fixes the extractor clock; tests use this.
func (e *Extractor) WithClock(now func() time.Time) *Extractor {
	e.now = now
	return e
}

// Extract classifies a message and pulls its slots. Pure and deterministic
// for a given message and clock; no match degrades to IntentUnknown.
func (e *Extractor) Extract(message string) Intent {
	lower := strings.ToLower(message)

	if containsAny(lower, bookingKeywords) {
		return Intent{
			Kind:       IntentBookAppointment,
			DoctorName: extractDoctorName(lower),
			Time:       extractTime(stripDates(lower)),
			Date:       e.extractDate(lower),
		}
	}

	if containsAny(lower, medicalKeywords) {
		return Intent{
			Kind:    IntentMedicalQuestion,
			Symptom: firstMatch(lower, symptomKeywords),
		}
	}

	if containsAny(lower, greetingKeywords) {
		return Intent{Kind: IntentGreeting}
	}

	return Intent{Kind: IntentUnknown}
}

func containsAny(text string, keywords []string) bool {
	return firstMatch(text, keywords) != ""
}

func firstMatch(text string, keywords []string) string {
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			return kw
		}
	}
	return ""
}

// extractDoctorName captures the words following a doctor marker, trimmed at
// the first stopword or digit so "dr ahmed tomorrow at 10am" yields "ahmed".
func extractDoctorName(text string) string {
	m := doctorNameRE.FindStringSubmatch(text)
	if len(m) < 2 {
		return ""
	}
	var kept []string
	for _, word := range strings.Fields(m[1]) {
		if nameStopwords[word] || startsWithDigit(word) {
			break
		}
		kept = append(kept, word)
	}
	return strings.Join(kept, " ")
}

func startsWithDigit(s string) bool {
	r := []rune(s)
	return len(r) > 0 && unicode.IsDigit(r[0])
}

// extractTime returns the first loose clock match ("10am", "4:30 pm", "14:00").
// The match is unvalidated; NormalizeTime decides whether it is usable.
func extractTime(text string) string {
	return strings.TrimSpace(clockRE.FindString(text))
}

// stripDates blanks explicit date substrings so their digits are never
// mistaken for a requested clock time ("book me on 2026-09-15" names no time).
func stripDates(text string) string {
	text = isoDateRE.ReplaceAllString(text, " ")
	return slashDateRE.ReplaceAllString(text, " ")
}

func (e *Extractor) extractDate(text string) string {
	switch {
	case strings.Contains(text, "tomorrow") || strings.Contains(text, "غدا"):
		return e.now().AddDate(0, 0, 1).Format("2006-01-02")
	case strings.Contains(text, "today") || strings.Contains(text, "اليوم"):
		return e.now().Format("2006-01-02")
	}
	if m := isoDateRE.FindString(text); m != "" {
		return m
	}
	if m := slashDateRE.FindStringSubmatch(text); len(m) == 4 {
		// DD/MM/YYYY normalized to ISO
		day, month := m[1], m[2]
		if len(day) == 1 {
			day = "0" + day
		}
		if len(month) == 1 {
			month = "0" + month
		}
		return m[3] + "-" + month + "-" + day
	}
	return ""
}

// NormalizeTime converts a loose extracted time to HH:MM, honoring am/pm and
// the Arabic ص/م markers. Unparseable or out-of-range input returns "" and
// the caller falls back to the default slot.
func NormalizeTime(raw string) string {
	m := timeStrictRE.FindStringSubmatch(strings.TrimSpace(strings.ToLower(raw)))
	if len(m) == 0 {
		return ""
	}
	hour := atoi(m[1])
	minute := 0
	if m[2] != "" {
		minute = atoi(m[2])
	}
	switch m[3] {
	case "pm", "م":
		if hour != 12 {
			hour += 12
		}
	case "am", "ص":
		if hour == 12 {
			hour = 0
		}
	}
	if hour > 23 || minute > 59 {
		return ""
	}
	return pad2(hour) + ":" + pad2(minute)
}

func atoi(s string) int {
	n := 0
	for _, c := range s {
		n = n*10 + int(c-'0')
	}
	return n
}

func pad2(n int) string {
	if n < 10 {
		return "0" + string(rune('0'+n))
	}
	return string(rune('0'+n/10)) + string(rune('0'+n%10))
}

// DetectLanguage falls back to script detection when the caller supplies no
// language flag: any Arabic rune selects the Arabic catalog.
func DetectLanguage(message string) Language {
	for _, r := range message {
		if unicode.Is(unicode.Arabic, r) {
			return Arabic
		}
	}
	return English
}
