package utils

import (
	"fmt"
	"time"

	"github.com/julianstephens/waterme/internal/constants"
)

// LoadLocation loads a timezone location from an IANA timezone name.
// If the timezone is "Local" or empty, it returns the system's local timezone.
func LoadLocation(timezone string) (*time.Location, error) {
	if timezone == "" || timezone == "Local" {
		return time.Local, nil
	}
	return time.LoadLocation(timezone)
}

// NowInTimezone returns the current time in the specified timezone.
func NowInTimezone(timezone string) (time.Time, error) {
	loc, err := LoadLocation(timezone)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid timezone %q: %w", timezone, err)
	}
	return time.Now().In(loc), nil
}

// ParseDateInLocation parses a date string (YYYY-MM-DD) in the specified timezone.
func ParseDateInLocation(dateStr string, loc *time.Location) (time.Time, error) {
	t, err := time.Parse(constants.DateFormat, dateStr)
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc), nil
}

// ValidateTimezone checks if the timezone name is valid.
func ValidateTimezone(timezone string) bool {
	if timezone == "" || timezone == "Local" {
		return true
	}
	_, err := time.LoadLocation(timezone)
	return err == nil
}

// StartOfDay returns midnight of the day containing t, in t's location.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// StartOfNextDay returns the first instant of the calendar day after t.
func StartOfNextDay(t time.Time) time.Time {
	return AddDays(StartOfDay(t), 1)
}

// EndOfDay returns one second before the start of the next day.
func EndOfDay(t time.Time) time.Time {
	return StartOfNextDay(t).Add(-time.Second)
}

// AddDays moves t by n calendar days, keeping the wall clock time.
func AddDays(t time.Time, n int) time.Time {
	return t.AddDate(0, 0, n)
}

// IsSameDay reports whether a and b fall on the same calendar day in a's location.
func IsSameDay(a, b time.Time) bool {
	b = b.In(a.Location())
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// DateWithExactHour returns the given hour on the same day as t. The hour is
// added to the start of the day, so days whose start is not midnight still
// land the right number of hours later.
func DateWithExactHour(hour int, t time.Time) time.Time {
	start := StartOfDay(t)
	return start.Add(time.Duration(hour-start.Hour()) * time.Hour)
}

// StartOfWeek returns the start of the week containing t.
func StartOfWeek(t time.Time, firstWeekday time.Weekday) time.Time {
	start := StartOfDay(t)
	offset := (int(start.Weekday()) - int(firstWeekday) + 7) % 7
	return AddDays(start, -offset)
}

// StartOfNextWeek returns the start of the week following the one containing t.
func StartOfNextWeek(t time.Time, firstWeekday time.Weekday) time.Time {
	return AddDays(StartOfWeek(t, firstWeekday), 7)
}

// DaysBetween counts the day boundaries crossed walking from start to the day
// of end, giving up after maxDays. An end before start yields maxDays.
func DaysBetween(start, end time.Time, maxDays int) int {
	n := 0
	for n < maxDays {
		if IsSameDay(AddDays(start, n), end) {
			break
		}
		n++
	}
	return n
}
