// Package bucket splits time into the five urgency windows reminders are
// grouped by.
package bucket

import (
	"time"

	"github.com/julianstephens/waterme/internal/utils"
)

// Kind identifies one of the five buckets. The zero value is Late.
type Kind int

const (
	Late Kind = iota
	Today
	Tomorrow
	ThisWeek
	Later
)

// Count is the fixed number of buckets.
const Count = 5

// All lists every bucket in chronological order.
var All = [Count]Kind{Late, Today, Tomorrow, ThisWeek, Later}

var (
	// DistantPast and DistantFuture stand in for the open ends of time.
	DistantPast   = time.Date(1, time.January, 1, 0, 0, 0, 0, time.UTC)
	DistantFuture = time.Date(4001, time.January, 1, 0, 0, 0, 0, time.UTC)
)

func (k Kind) String() string {
	switch k {
	case Late:
		return "Late"
	case Today:
		return "Today"
	case Tomorrow:
		return "Tomorrow"
	case ThisWeek:
		return "This Week"
	case Later:
		return "Later"
	}
	return "Unknown"
}

// Interval is the half-open range [Start, End).
type Interval struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Contains reports whether t lies in [Start, End).
func (i Interval) Contains(t time.Time) bool {
	return !t.Before(i.Start) && t.Before(i.End)
}

// Empty reports whether the interval has zero width.
func (i Interval) Empty() bool {
	return !i.Start.Before(i.End)
}

// Set holds the intervals of all five buckets, indexed by Kind.
type Set [Count]Interval

// Compute returns the bucket intervals relative to now. Each bucket starts
// where the previous one ended, so the set has no gaps or overlaps.
func Compute(now time.Time, firstWeekday time.Weekday) Set {
	var s Set

	s[Late] = Interval{Start: DistantPast, End: utils.StartOfDay(now)}
	s[Today] = Interval{Start: s[Late].End, End: utils.StartOfNextDay(now)}
	s[Tomorrow] = Interval{Start: s[Today].End, End: utils.StartOfNextDay(utils.AddDays(now, 1))}

	// Near the end of a week the next week can begin before Tomorrow ends.
	// ThisWeek then collapses to zero width instead of running backwards.
	nextWeek := utils.StartOfNextWeek(now, firstWeekday)
	thisWeekEnd := s[Tomorrow].End
	if !nextWeek.Before(thisWeekEnd) {
		thisWeekEnd = nextWeek
	}
	s[ThisWeek] = Interval{Start: s[Tomorrow].End, End: thisWeekEnd}
	s[Later] = Interval{Start: s[ThisWeek].End, End: DistantFuture}

	return s
}

// Of returns the bucket containing t. Instants outside the representable
// range are clamped to Late or Later.
func (s Set) Of(t time.Time) Kind {
	for _, k := range All {
		if s[k].Contains(t) {
			return k
		}
	}
	if t.Before(s[Late].Start) {
		return Late
	}
	return Later
}
