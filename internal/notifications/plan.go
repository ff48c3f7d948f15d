// Package notifications turns the reminder snapshot into at most one
// scheduled notification per day and keeps the badge in step with it.
package notifications

import (
	"math/rand/v2"
	"time"

	"github.com/julianstephens/waterme/internal/constants"
	"github.com/julianstephens/waterme/internal/models"
	"github.com/julianstephens/waterme/internal/utils"
)

// PlanEntry is one day's worth of due reminders.
type PlanEntry struct {
	FireAt      time.Time `json:"fire_at"`
	ItemCount   int       `json:"item_count"`
	SampleNames []string  `json:"sample_names,omitempty"`
	IsImmediate bool      `json:"is_immediate"`
	VesselCount int       `json:"vessel_count"`
}

// VesselNamer resolves a vessel id to the name shown to the user.
type VesselNamer interface {
	VesselName(id string) string
}

// VesselNamerFunc adapts a plain function to VesselNamer.
type VesselNamerFunc func(id string) string

func (f VesselNamerFunc) VesselName(id string) string { return f(id) }

type PlanConfig struct {
	ReminderHour  int
	LookaheadDays int
	// NotificationLimit caps the number of entries regardless of the window.
	NotificationLimit int
	SampleSize        int
	// ExtendToLastDue widens the window so it reaches the latest due date.
	ExtendToLastDue bool
}

// ConfigFromSettings builds a plan configuration from user settings.
func ConfigFromSettings(s models.Settings) PlanConfig {
	return PlanConfig{
		ReminderHour:      s.ReminderHour,
		LookaheadDays:     s.LookaheadDays,
		NotificationLimit: s.NotificationLimit,
		SampleSize:        s.SampleSize,
		ExtendToLastDue:   s.NotifyExtendToLastDue,
	}
}

// BuildPlan walks the lookahead window day by day. Each day matches every
// reminder due on or before it, so overdue reminders repeat until performed.
// Days without matches produce nothing. rng may be nil.
func BuildPlan(reminders []models.Reminder, names VesselNamer, cfg PlanConfig, now time.Time, rng *rand.Rand) []PlanEntry {
	if len(reminders) == 0 || cfg.LookaheadDays <= 0 {
		return nil
	}
	if rng == nil {
		rng = rand.New(rand.NewPCG(uint64(now.UnixNano()), 0))
	}
	loc := now.Location()

	// end of the due day of every reminder, in now's zone
	dueEnds := make([]time.Time, len(reminders))
	var last time.Time
	for i, r := range reminders {
		due := r.DueDate(now).In(loc)
		dueEnds[i] = utils.EndOfDay(due)
		if due.After(last) {
			last = due
		}
	}

	days := cfg.LookaheadDays
	if cfg.ExtendToLastDue && cfg.NotificationLimit > cfg.LookaheadDays {
		days += utils.DaysBetween(now, last, cfg.NotificationLimit-cfg.LookaheadDays)
	}

	var plan []PlanEntry
	for day := 0; day < days; day++ {
		if cfg.NotificationLimit > 0 && len(plan) >= cfg.NotificationLimit {
			break
		}
		testDate := utils.AddDays(now, day)
		endOfTestDay := utils.EndOfDay(testDate)

		var matches []models.Reminder
		for i, r := range reminders {
			if !dueEnds[i].After(endOfTestDay) {
				matches = append(matches, r)
			}
		}
		if len(matches) == 0 {
			continue
		}

		entry := PlanEntry{
			FireAt:    utils.DateWithExactHour(cfg.ReminderHour, testDate),
			ItemCount: len(matches),
		}
		vesselNames, vessels := uniqueNames(matches, names)
		entry.VesselCount = vessels
		if !entry.FireAt.After(now) {
			entry.IsImmediate = true
		} else {
			entry.SampleNames = sample(vesselNames, cfg.SampleSize, rng)
		}
		plan = append(plan, entry)
	}
	return plan
}

// uniqueNames returns the distinct vessel names of the matches in first
// seen order, and the number of distinct vessels.
func uniqueNames(matches []models.Reminder, names VesselNamer) ([]string, int) {
	seenVessel := make(map[string]bool)
	seenName := make(map[string]bool)
	var out []string
	for _, r := range matches {
		if seenVessel[r.VesselID] {
			continue
		}
		seenVessel[r.VesselID] = true
		name := constants.UntitledVesselName
		if names != nil {
			name = names.VesselName(r.VesselID)
		}
		if name == "" {
			name = constants.UntitledVesselName
		}
		if seenName[name] {
			continue
		}
		seenName[name] = true
		out = append(out, name)
	}
	return out, len(seenVessel)
}

// sample draws up to n names without replacement.
func sample(names []string, n int, rng *rand.Rand) []string {
	shuffled := append([]string(nil), names...)
	rng.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })
	if n > 0 && len(shuffled) > n {
		shuffled = shuffled[:n]
	}
	return shuffled
}
