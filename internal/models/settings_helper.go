package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/julianstephens/waterme/internal/constants"
)

// MapToSettings converts a map of key-value pairs to a Settings struct.
func MapToSettings(data map[string]string) (Settings, error) {
	settings := Settings{}

	for key, value := range data {
		switch key {
		case constants.SettingReminderHour:
			if _, err := fmt.Sscanf(value, "%d", &settings.ReminderHour); err != nil {
				return Settings{}, fmt.Errorf("parsing reminder_hour: %w", err)
			}
		case constants.SettingLookaheadDays:
			if _, err := fmt.Sscanf(value, "%d", &settings.LookaheadDays); err != nil {
				return Settings{}, fmt.Errorf("parsing lookahead_days: %w", err)
			}
		case constants.SettingNotificationLimit:
			if _, err := fmt.Sscanf(value, "%d", &settings.NotificationLimit); err != nil {
				return Settings{}, fmt.Errorf("parsing notification_limit: %w", err)
			}
		case constants.SettingSampleSize:
			if _, err := fmt.Sscanf(value, "%d", &settings.SampleSize); err != nil {
				return Settings{}, fmt.Errorf("parsing sample_size: %w", err)
			}
		case constants.SettingNotificationsEnabled:
			settings.NotificationsEnabled = value == "true"
		case constants.SettingNotifyExtendToLastDue:
			settings.NotifyExtendToLastDue = value == "true"
		case constants.SettingTimezone:
			settings.Timezone = value
		case constants.SettingWeekStart:
			settings.WeekStart = value
		}
	}
	return settings, nil
}

// SettingsToMap converts a Settings struct to a map of key-value pairs.
func SettingsToMap(settings Settings) map[string]string {
	return map[string]string{
		constants.SettingReminderHour:          fmt.Sprintf("%d", settings.ReminderHour),
		constants.SettingLookaheadDays:         fmt.Sprintf("%d", settings.LookaheadDays),
		constants.SettingNotificationLimit:     fmt.Sprintf("%d", settings.NotificationLimit),
		constants.SettingSampleSize:            fmt.Sprintf("%d", settings.SampleSize),
		constants.SettingNotificationsEnabled:  fmt.Sprintf("%v", settings.NotificationsEnabled),
		constants.SettingNotifyExtendToLastDue: fmt.Sprintf("%v", settings.NotifyExtendToLastDue),
		constants.SettingTimezone:              settings.Timezone,
		constants.SettingWeekStart:             settings.WeekStart,
	}
}

// DefaultSettings returns a Settings struct populated with default values.
func DefaultSettings() Settings {
	return Settings{
		ReminderHour:          constants.DefaultReminderHour,
		LookaheadDays:         constants.DefaultLookaheadDays,
		NotificationLimit:     constants.DefaultNotificationLimit,
		NotificationsEnabled:  constants.DefaultNotificationsEnabled,
		SampleSize:            constants.DefaultSampleSize,
		NotifyExtendToLastDue: constants.DefaultNotifyExtendToLastDue,
		Timezone:              constants.DefaultTimezone,
		WeekStart:             constants.DefaultWeekStart,
	}
}

// ApplyDefaultSettings applies default values to missing settings.
// A zero ReminderHour is a valid hour (midnight) and is left alone.
func ApplyDefaultSettings(settings *Settings) {
	if settings.LookaheadDays == 0 {
		settings.LookaheadDays = constants.DefaultLookaheadDays
	}
	if settings.NotificationLimit == 0 {
		settings.NotificationLimit = constants.DefaultNotificationLimit
	}
	if settings.SampleSize == 0 {
		settings.SampleSize = constants.DefaultSampleSize
	}
	if settings.Timezone == "" {
		settings.Timezone = constants.DefaultTimezone
	}
	if settings.WeekStart == "" {
		settings.WeekStart = constants.DefaultWeekStart
	}
}

// Validate checks that settings are within their allowed ranges.
func (s Settings) Validate() error {
	if s.ReminderHour < 0 || s.ReminderHour > 23 {
		return fmt.Errorf("reminder hour must be between 0 and 23, got %d", s.ReminderHour)
	}
	if s.LookaheadDays < 1 {
		return fmt.Errorf("lookahead days must be positive, got %d", s.LookaheadDays)
	}
	if s.NotificationLimit < 1 {
		return fmt.Errorf("notification limit must be positive, got %d", s.NotificationLimit)
	}
	if s.SampleSize < 0 {
		return fmt.Errorf("sample size cannot be negative, got %d", s.SampleSize)
	}
	if _, err := ParseWeekday(s.WeekStart); err != nil {
		return err
	}
	return nil
}

// FirstWeekday returns the configured first day of the week, defaulting to Sunday.
func (s Settings) FirstWeekday() time.Weekday {
	wd, err := ParseWeekday(s.WeekStart)
	if err != nil {
		return time.Sunday
	}
	return wd
}

// ParseWeekday parses an English weekday name. An empty string means Sunday.
func ParseWeekday(s string) (time.Weekday, error) {
	if s == "" {
		return time.Sunday, nil
	}
	for d := time.Sunday; d <= time.Saturday; d++ {
		if strings.EqualFold(d.String(), s) || strings.EqualFold(d.String()[:3], s) {
			return d, nil
		}
	}
	return time.Sunday, fmt.Errorf("invalid week start %q", s)
}
