package daemon

import (
	"context"
	"time"

	"github.com/julianstephens/waterme/internal/utils"
)

// DayChangeDetector notices when the calendar day rolls over, or when the
// clock jumped far enough that the process was probably suspended.
type DayChangeDetector struct {
	interval time.Duration
	now      func() time.Time
	onChange func(now time.Time)
	last     time.Time
}

func NewDayChangeDetector(interval time.Duration, now func() time.Time, onChange func(time.Time)) *DayChangeDetector {
	return &DayChangeDetector{interval: interval, now: now, onChange: onChange, last: now()}
}

// Check compares now with the previous check and calls onChange when the
// day differs or more than two intervals passed.
func (d *DayChangeDetector) Check(now time.Time) bool {
	last := d.last
	d.last = now
	changed := !utils.IsSameDay(last, now) || now.Sub(last) > 2*d.interval || now.Before(last)
	if changed {
		d.onChange(now)
	}
	return changed
}

func (d *DayChangeDetector) Run(ctx context.Context) error {
	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			d.Check(d.now())
		}
	}
}
