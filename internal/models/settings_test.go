package models

import (
	"testing"
	"time"
)

func TestSettingsMapRoundTrip(t *testing.T) {
	s := DefaultSettings()
	s.ReminderHour = 0
	s.NotifyExtendToLastDue = true
	s.WeekStart = "monday"

	got, err := MapToSettings(SettingsToMap(s))
	if err != nil {
		t.Fatalf("MapToSettings() error = %v", err)
	}
	if got != s {
		t.Errorf("round trip = %+v, want %+v", got, s)
	}
}

func TestMapToSettings_InvalidNumber(t *testing.T) {
	if _, err := MapToSettings(map[string]string{"reminder_hour": "eight"}); err == nil {
		t.Error("expected parse error")
	}
}

func TestSettings_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Settings)
		wantErr bool
	}{
		{"defaults", func(*Settings) {}, false},
		{"midnight", func(s *Settings) { s.ReminderHour = 0 }, false},
		{"hour too large", func(s *Settings) { s.ReminderHour = 24 }, true},
		{"no lookahead", func(s *Settings) { s.LookaheadDays = 0 }, true},
		{"bad week start", func(s *Settings) { s.WeekStart = "someday" }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := DefaultSettings()
			tt.mutate(&s)
			if err := s.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestFirstWeekday(t *testing.T) {
	tests := []struct {
		in   string
		want time.Weekday
	}{
		{"", time.Sunday},
		{"Monday", time.Monday},
		{"sat", time.Saturday},
		{"nonsense", time.Sunday},
	}
	for _, tt := range tests {
		if got := (Settings{WeekStart: tt.in}).FirstWeekday(); got != tt.want {
			t.Errorf("FirstWeekday(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
