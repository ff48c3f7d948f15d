package settings

import (
	"path/filepath"
	"testing"

	"github.com/julianstephens/waterme/internal/cli"
	"github.com/julianstephens/waterme/internal/models"
	"github.com/julianstephens/waterme/internal/storage/sqlite"
)

func setupTestDB(t *testing.T) *cli.Context {
	t.Helper()
	store := sqlite.NewStore(filepath.Join(t.TempDir(), "test.db"))
	if err := store.Init(); err != nil {
		t.Fatalf("failed to init store: %v", err)
	}
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Errorf("failed to close store: %v", err)
		}
	})
	return &cli.Context{Store: store}
}

func ptr[T any](v T) *T { return &v }

func TestSettingsCmd_List(t *testing.T) {
	ctx := setupTestDB(t)
	if err := (&SettingsCmd{List: true}).Run(ctx); err != nil {
		t.Errorf("settings list failed: %v", err)
	}
}

func TestSettingsCmd_NoChanges(t *testing.T) {
	ctx := setupTestDB(t)
	if err := (&SettingsCmd{}).Run(ctx); err != nil {
		t.Fatalf("settings without flags failed: %v", err)
	}
	got, err := ctx.Store.GetSettings()
	if err != nil {
		t.Fatal(err)
	}
	if got != models.DefaultSettings() {
		t.Errorf("settings changed without flags: %+v", got)
	}
}

func TestSettingsCmd_Update(t *testing.T) {
	tests := []struct {
		name    string
		cmd     SettingsCmd
		wantErr bool
		check   func(models.Settings) bool
	}{
		{
			name:  "reminder hour",
			cmd:   SettingsCmd{ReminderHour: ptr(7)},
			check: func(s models.Settings) bool { return s.ReminderHour == 7 },
		},
		{
			name:  "midnight is a valid hour",
			cmd:   SettingsCmd{ReminderHour: ptr(0)},
			check: func(s models.Settings) bool { return s.ReminderHour == 0 },
		},
		{
			name: "notifications and lookahead",
			cmd:  SettingsCmd{NotificationsEnabled: ptr(false), LookaheadDays: ptr(14), NotifyExtendToLastDue: ptr(true)},
			check: func(s models.Settings) bool {
				return !s.NotificationsEnabled && s.LookaheadDays == 14 && s.NotifyExtendToLastDue
			},
		},
		{
			name:  "timezone and week start",
			cmd:   SettingsCmd{Timezone: ptr("Europe/Berlin"), WeekStart: ptr("monday")},
			check: func(s models.Settings) bool { return s.Timezone == "Europe/Berlin" && s.WeekStart == "monday" },
		},
		{name: "hour out of range", cmd: SettingsCmd{ReminderHour: ptr(24)}, wantErr: true},
		{name: "zero limit", cmd: SettingsCmd{NotificationLimit: ptr(0)}, wantErr: true},
		{name: "negative sample size", cmd: SettingsCmd{SampleSize: ptr(-1)}, wantErr: true},
		{name: "unknown timezone", cmd: SettingsCmd{Timezone: ptr("Mars/Olympus")}, wantErr: true},
		{name: "unknown week start", cmd: SettingsCmd{WeekStart: ptr("someday")}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := setupTestDB(t)
			err := tt.cmd.Run(ctx)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Run() error = %v, wantErr %v", err, tt.wantErr)
			}
			got, err := ctx.Store.GetSettings()
			if err != nil {
				t.Fatal(err)
			}
			if tt.wantErr {
				if got != models.DefaultSettings() {
					t.Errorf("rejected update was saved: %+v", got)
				}
				return
			}
			if !tt.check(got) {
				t.Errorf("settings after update = %+v", got)
			}
		})
	}
}
