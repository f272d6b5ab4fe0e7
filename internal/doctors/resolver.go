package doctors

import (
	"context"
	"strings"

	"github.com/alshifa-health/hms-platform/pkg/logging"
)

// GeneralMedicine is the catch-all specialty for symptoms without a mapping.
const GeneralMedicine = "General Medicine"

// symptomSpecialties maps symptom keywords to the specialty that treats them.
// Arabic keys duplicate the English mapping so either language resolves.
var symptomSpecialties = map[string]string{
	"stomach": "Gastroenterology",
	"بطن":     "Gastroenterology",
	"head":    "Neurology",
	"رأس":     "Neurology",
	"chest":   "Cardiology",
	"صدر":     "Cardiology",
	"back":    "Orthopedics",
	"ظهر":     "Orthopedics",
	"tooth":   "Dentistry",
	"أسنان":   "Dentistry",
}

// SpecialtyForSymptom returns the specialty treating a symptom keyword,
// falling back to General Medicine for anything unrecognized.
func SpecialtyForSymptom(symptom string) string {
	if specialty, ok := symptomSpecialties[strings.ToLower(strings.TrimSpace(symptom))]; ok {
		return specialty
	}
	return GeneralMedicine
}

// Resolver maps chatbot slots (doctor name, symptom) onto concrete doctor
// records. Lookup failures are logged and surfaced as "no match" so a data
// store hiccup degrades the conversation instead of crashing it.
type Resolver struct {
	dir    Directory
	logger *logging.Logger
}

// NewResolver constructs a resolver over a doctor directory.
func NewResolver(dir Directory, logger *logging.Logger) *Resolver {
	if dir == nil {
		panic("doctors: directory required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Resolver{dir: dir, logger: logger}
}

// ByName resolves an extracted doctor name, nil when nothing matches.
func (r *Resolver) ByName(ctx context.Context, name string) *Summary {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil
	}
	doc, err := r.dir.FindByName(ctx, name)
	if err != nil {
		r.logger.Error("doctor lookup by name failed", "name", name, "error", err)
		return nil
	}
	return doc
}

// BySymptom resolves a symptom keyword to a doctor in the matching specialty.
func (r *Resolver) BySymptom(ctx context.Context, symptom string) *Summary {
	if strings.TrimSpace(symptom) == "" {
		return nil
	}
	specialty := SpecialtyForSymptom(symptom)
	doc, err := r.dir.FindBySpecialty(ctx, specialty)
	if err != nil {
		r.logger.Error("doctor lookup by symptom failed", "symptom", symptom, "specialty", specialty, "error", err)
		return nil
	}
	return doc
}

// AnyActive returns a default doctor so the booking flow never dead-ends for
// lack of a named doctor. First of up to 5 active candidates, id ascending.
func (r *Resolver) AnyActive(ctx context.Context) *Summary {
	active, err := r.dir.ListActive(ctx, 5)
	if err != nil {
		r.logger.Error("active doctor listing failed", "error", err)
		return nil
	}
	if len(active) == 0 {
		return nil
	}
	return &active[0]
}

// Substitute returns one active doctor other than excludeID, nil when the
// roster has no one else.
func (r *Resolver) Substitute(ctx context.Context, excludeID int64) *Summary {
	doc, err := r.dir.FirstActiveExcluding(ctx, excludeID)
	if err != nil {
		r.logger.Error("substitute doctor lookup failed", "exclude_id", excludeID, "error", err)
		return nil
	}
	return doc
}

// Roster lists active doctors for assistant context and the directory API.
func (r *Resolver) Roster(ctx context.Context, limit int) []Summary {
	active, err := r.dir.ListActive(ctx, limit)
	if err != nil {
		r.logger.Error("doctor roster listing failed", "error", err)
		return nil
	}
	return active
}
