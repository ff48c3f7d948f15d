package constants

import "time"

const (
	AppName             = "waterme"
	DefaultKeyringUser  = "database-connection"
	TelegramKeyringUser = "telegram-bot-token"
	DefaultConfigPath   = "~/.config/waterme/waterme.db"
	DefaultDaemonConf   = "~/.config/waterme/config.yaml"
	Version             = "v0.3.0"

	// DateFormat is the standard date format used throughout the application (YYYY-MM-DD)
	DateFormat = "2006-01-02"

	// TimeFormat is the standard time format used throughout the application (HH:MM)
	TimeFormat = "15:04"

	// Reminder interval bounds, in days
	MinimumInterval = 1
	MaximumInterval = 180
	DefaultInterval = 7

	// UntitledVesselName is shown wherever a vessel has no display name
	UntitledVesselName = "Untitled Plant"
	DefaultVesselKind  = "plant"

	// Recompute debounce
	DefaultQuietPeriod = 10 * time.Second
	DefaultRunTimeout  = 30 * time.Second

	// Delivery
	DefaultDeliveryInterval = time.Minute
	NotifyMaxRetries        = 3
	NotifyRetryDelay        = 100 * time.Millisecond
	NotifierLockfileName    = "waterme-notifier.lock"
	TrayAppIdentifier       = "com.julianstephens.waterme"
	NotificationDurationMs  = 5000
	NotificationChannel     = "waterme_changes"
)
