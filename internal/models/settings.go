package models

// Settings represents user preferences stored alongside the garden data
type Settings struct {
	ReminderHour          int    `json:"reminder_hour"`             // hour of day notifications fire, 0-23
	LookaheadDays         int    `json:"lookahead_days"`            // number of days to schedule notifications for
	NotificationLimit     int    `json:"notification_limit"`        // hard cap on scheduled notifications
	NotificationsEnabled  bool   `json:"notifications_enabled"`     // whether the user granted notifications
	SampleSize            int    `json:"sample_size"`               // vessel names shown per notification
	NotifyExtendToLastDue bool   `json:"notify_extend_to_last_due"` // extend the lookahead to the last due reminder
	Timezone              string `json:"timezone"`                  // IANA timezone name or "Local"
	WeekStart             string `json:"week_start"`                // first day of the week, e.g. "sunday"
}
