package constants

const (
	// Notification Settings
	SettingReminderHour          = "reminder_hour"
	SettingLookaheadDays         = "lookahead_days"
	SettingNotificationLimit     = "notification_limit"
	SettingNotificationsEnabled  = "notifications_enabled"
	SettingSampleSize            = "sample_size"
	SettingNotifyExtendToLastDue = "notify_extend_to_last_due"
	SettingTimezone              = "timezone"
	SettingWeekStart             = "week_start"

	// Default Settings Values
	DefaultReminderHour          = 8
	DefaultLookaheadDays         = 14
	DefaultNotificationLimit     = 50 // observed platform cap, a safety bound only
	DefaultNotificationsEnabled  = true
	DefaultSampleSize            = 3
	DefaultNotifyExtendToLastDue = false
	DefaultTimezone              = "Local" // Use system local timezone by default
	DefaultWeekStart             = "sunday"
)
