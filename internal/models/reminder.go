package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/julianstephens/waterme/internal/constants"
)

// KindType identifies the care task a reminder stands for.
type KindType string

const (
	KindWater     KindType = "water"
	KindFertilize KindType = "fertilize"
	KindTrim      KindType = "trim"
	KindMist      KindType = "mist"
	KindMove      KindType = "move"
	KindOther     KindType = "other"
)

// KindTypes lists every reminder kind in display order.
var KindTypes = []KindType{KindWater, KindFertilize, KindTrim, KindMist, KindMove, KindOther}

// ParseKindType converts user input into a KindType.
func ParseKindType(s string) (KindType, error) {
	k := KindType(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range KindTypes {
		if k == known {
			return k, nil
		}
	}
	return "", fmt.Errorf("unknown reminder kind %q", s)
}

// ReminderKind is a tagged variant. Location is only meaningful for KindMove,
// Title and Description only for KindOther.
type ReminderKind struct {
	Type        KindType `json:"type"`
	Location    string   `json:"location,omitempty"`
	Title       string   `json:"title,omitempty"`
	Description string   `json:"description,omitempty"`
}

// DisplayName returns a short human readable label for the kind.
func (k ReminderKind) DisplayName() string {
	switch k.Type {
	case KindWater:
		return "Water"
	case KindFertilize:
		return "Fertilize"
	case KindTrim:
		return "Trim"
	case KindMist:
		return "Mist"
	case KindMove:
		if k.Location != "" {
			return "Move to " + k.Location
		}
		return "Move"
	case KindOther:
		if k.Title != "" {
			return k.Title
		}
		return "Other"
	}
	return string(k.Type)
}

// PerformEvent records a single completion of a reminder.
type PerformEvent struct {
	Date time.Time `json:"date"`
}

type Reminder struct {
	ID              string         `json:"id"`
	VesselID        string         `json:"vessel_id"`
	Kind            ReminderKind   `json:"kind"`
	IntervalDays    int            `json:"interval_days"`
	Note            string         `json:"note,omitempty"`
	IsEnabled       bool           `json:"is_enabled"`
	NextPerformDate *time.Time     `json:"next_perform_date,omitempty"` // nil means never performed
	Performed       []PerformEvent `json:"performed,omitempty"`
	CreatedAt       time.Time      `json:"created_at"`
}

// NewReminder returns an enabled reminder with a fresh ID and the default interval.
func NewReminder(vesselID string, kind ReminderKind) Reminder {
	return Reminder{
		ID:           uuid.New().String(),
		VesselID:     vesselID,
		Kind:         kind,
		IntervalDays: constants.DefaultInterval,
		IsEnabled:    true,
		CreatedAt:    time.Now(),
	}
}

// ClampInterval bounds an interval to the allowed range.
func ClampInterval(days int) int {
	if days < constants.MinimumInterval {
		return constants.MinimumInterval
	}
	if days > constants.MaximumInterval {
		return constants.MaximumInterval
	}
	return days
}

func (r *Reminder) Validate() error {
	if r.ID == "" {
		return fmt.Errorf("reminder id cannot be empty")
	}
	if r.VesselID == "" {
		return fmt.Errorf("reminder must belong to a vessel")
	}
	if _, err := ParseKindType(string(r.Kind.Type)); err != nil {
		return err
	}
	if r.IntervalDays < constants.MinimumInterval || r.IntervalDays > constants.MaximumInterval {
		return fmt.Errorf("interval must be between %d and %d days, got %d",
			constants.MinimumInterval, constants.MaximumInterval, r.IntervalDays)
	}
	return nil
}

// Perform appends a completion at the given instant and moves the next
// perform date forward by the reminder's interval.
func (r *Reminder) Perform(at time.Time) {
	r.Performed = append(r.Performed, PerformEvent{Date: at})
	r.RecomputeNextPerformDate()
}

// RecomputeNextPerformDate derives NextPerformDate from the last completion.
func (r *Reminder) RecomputeNextPerformDate() {
	last := r.LastPerformed()
	if last == nil {
		r.NextPerformDate = nil
		return
	}
	next := last.Date.AddDate(0, 0, r.IntervalDays)
	r.NextPerformDate = &next
}

// LastPerformed returns the most recent completion, or nil.
func (r Reminder) LastPerformed() *PerformEvent {
	if len(r.Performed) == 0 {
		return nil
	}
	e := r.Performed[len(r.Performed)-1]
	return &e
}

// DueDate returns the next perform date, treating a never performed reminder as due now.
func (r Reminder) DueDate(now time.Time) time.Time {
	if r.NextPerformDate == nil {
		return now
	}
	return *r.NextPerformDate
}

// Clone returns a copy that shares no memory with r.
func (r Reminder) Clone() Reminder {
	c := r
	if r.NextPerformDate != nil {
		next := *r.NextPerformDate
		c.NextPerformDate = &next
	}
	if r.Performed != nil {
		c.Performed = make([]PerformEvent, len(r.Performed))
		copy(c.Performed, r.Performed)
	}
	return c
}

// Equal reports whether two reminders carry the same content.
func (r Reminder) Equal(o Reminder) bool {
	if r.ID != o.ID || r.VesselID != o.VesselID || r.Kind != o.Kind ||
		r.IntervalDays != o.IntervalDays || r.Note != o.Note || r.IsEnabled != o.IsEnabled {
		return false
	}
	if (r.NextPerformDate == nil) != (o.NextPerformDate == nil) {
		return false
	}
	if r.NextPerformDate != nil && !r.NextPerformDate.Equal(*o.NextPerformDate) {
		return false
	}
	if len(r.Performed) != len(o.Performed) {
		return false
	}
	for i := range r.Performed {
		if !r.Performed[i].Date.Equal(o.Performed[i].Date) {
			return false
		}
	}
	return true
}
