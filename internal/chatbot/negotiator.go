package chatbot

import (
	"context"
	"errors"
)

// CandidateSlots is the fixed ladder searched when a requested time is
// occupied, in offer order.
var CandidateSlots = []string{"09:00", "10:00", "11:00", "13:00", "14:00", "15:00", "16:00"}

// DefaultSlot is proposed when the patient named no time.
const DefaultSlot = "13:00"

// ErrNoSlots reports that every candidate slot is occupied for the
// doctor/date pair. Callers compose a "fully booked" reply rather than
// proposing an occupied slot.
var ErrNoSlots = errors.New("chatbot: no free slots")

// SlotChecker answers whether an active appointment occupies a slot.
// The appointments repository implements it.
type SlotChecker interface {
	SlotTaken(ctx context.Context, doctorID int64, date, clock string) (bool, error)
}

// Negotiation is the outcome of a slot search.
type Negotiation struct {
	Time    string `json:"time"`
	Changed bool   `json:"changed"`
}

// Negotiator finds a free appointment slot for a doctor and date. The check
// is best-effort and non-atomic: two concurrent negotiations can both see a
// slot as free. The partial unique index on active appointments is the real
// guard; a lost race surfaces as a conflict at booking time.
type Negotiator struct {
	checker SlotChecker
}

// NewNegotiator constructs a negotiator over an appointment store.
func NewNegotiator(checker SlotChecker) *Negotiator {
	if checker == nil {
		panic("chatbot: slot checker required")
	}
	return &Negotiator{checker: checker}
}

// Negotiate returns the requested time unchanged when free, otherwise the
// first free candidate slot. An empty requested time means the default slot.
// A store error during a check counts the slot as occupied so the
// conversation degrades instead of failing; if nothing is free the result is
// ErrNoSlots.
func (n *Negotiator) Negotiate(ctx context.Context, doctorID int64, date, requested string) (Negotiation, error) {
	if requested == "" {
		requested = DefaultSlot
	}

	if !n.taken(ctx, doctorID, date, requested) {
		return Negotiation{Time: requested, Changed: false}, nil
	}

	for _, slot := range CandidateSlots {
		if slot == requested {
			continue
		}
		if !n.taken(ctx, doctorID, date, slot) {
			return Negotiation{Time: slot, Changed: true}, nil
		}
	}

	return Negotiation{}, ErrNoSlots
}

func (n *Negotiator) taken(ctx context.Context, doctorID int64, date, clock string) bool {
	taken, err := n.checker.SlotTaken(ctx, doctorID, date, clock)
	if err != nil {
		return true
	}
	return taken
}
