package settings

import (
	"fmt"

	"github.com/gosuri/uitable"

	"github.com/julianstephens/waterme/internal/cli"
	"github.com/julianstephens/waterme/internal/models"
	"github.com/julianstephens/waterme/internal/utils"
)

type SettingsCmd struct {
	List bool `help:"List current settings."`

	ReminderHour          *int    `help:"Hour of day (0-23) notifications fire."`
	LookaheadDays         *int    `help:"Days ahead to schedule notifications for."`
	NotificationLimit     *int    `help:"Maximum number of scheduled notifications."`
	NotificationsEnabled  *bool   `help:"Enable or disable notifications."`
	SampleSize            *int    `help:"Plant names shown in a notification."`
	NotifyExtendToLastDue *bool   `help:"Extend the lookahead to the last due reminder."`
	Timezone              *string `help:"IANA timezone name, or Local."`
	WeekStart             *string `help:"First day of the week, e.g. monday."`
}

func (c *SettingsCmd) Run(ctx *cli.Context) error {
	settings, err := ctx.Store.GetSettings()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	if c.List {
		printSettings(settings)
		return nil
	}

	updated := false
	setInt := func(dst *int, v *int) {
		if v != nil {
			*dst = *v
			updated = true
		}
	}
	setBool := func(dst *bool, v *bool) {
		if v != nil {
			*dst = *v
			updated = true
		}
	}
	setInt(&settings.ReminderHour, c.ReminderHour)
	setInt(&settings.LookaheadDays, c.LookaheadDays)
	setInt(&settings.NotificationLimit, c.NotificationLimit)
	setInt(&settings.SampleSize, c.SampleSize)
	setBool(&settings.NotificationsEnabled, c.NotificationsEnabled)
	setBool(&settings.NotifyExtendToLastDue, c.NotifyExtendToLastDue)
	if c.Timezone != nil {
		if _, err := utils.LoadLocation(*c.Timezone); err != nil {
			return fmt.Errorf("unknown timezone %q: %w", *c.Timezone, err)
		}
		settings.Timezone = *c.Timezone
		updated = true
	}
	if c.WeekStart != nil {
		settings.WeekStart = *c.WeekStart
		updated = true
	}

	if !updated {
		fmt.Println("No changes specified. Use --list to view settings or flags to update them.")
		return nil
	}
	if err := settings.Validate(); err != nil {
		return err
	}
	if err := ctx.Store.SaveSettings(settings); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}
	fmt.Println("Settings updated successfully.")
	return nil
}

func printSettings(s models.Settings) {
	tbl := uitable.New()
	tbl.Separator = "  "
	tbl.AddRow("Reminder hour:", fmt.Sprintf("%02d:00", s.ReminderHour))
	tbl.AddRow("Lookahead:", fmt.Sprintf("%d days", s.LookaheadDays))
	tbl.AddRow("Notification limit:", s.NotificationLimit)
	tbl.AddRow("Notifications enabled:", s.NotificationsEnabled)
	tbl.AddRow("Sample size:", s.SampleSize)
	tbl.AddRow("Extend to last due:", s.NotifyExtendToLastDue)
	tbl.AddRow("Timezone:", s.Timezone)
	tbl.AddRow("Week starts:", s.FirstWeekday())
	fmt.Println("Current Settings:")
	fmt.Println(tbl)
}
