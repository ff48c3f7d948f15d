package reminders

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/julianstephens/waterme/internal/cli"
	"github.com/julianstephens/waterme/internal/models"
	"github.com/julianstephens/waterme/internal/storage"
	"github.com/julianstephens/waterme/internal/storage/sqlite"
)

// testNow is a Tuesday.
var testNow = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

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
	settings := models.DefaultSettings()
	settings.Timezone = "UTC"
	settings.WeekStart = "monday"
	if err := store.SaveSettings(settings); err != nil {
		t.Fatal(err)
	}
	return &cli.Context{Store: store, Now: func() time.Time { return testNow }}
}

// addPlant adds a vessel whose water reminder was last performed daysAgo
// days before testNow, or never when daysAgo is negative.
func addPlant(t *testing.T, ctx *cli.Context, name string, every, daysAgo int) (models.Vessel, models.Reminder) {
	t.Helper()
	v := models.NewVessel(name)
	r := models.NewReminder(v.ID, models.ReminderKind{Type: models.KindWater})
	r.IntervalDays = every
	if daysAgo >= 0 {
		r.Perform(testNow.AddDate(0, 0, -daysAgo))
	}
	if err := ctx.Store.AddVessel(v, r); err != nil {
		t.Fatal(err)
	}
	return v, r
}

func TestReminderAddCmd(t *testing.T) {
	ctx := setupTestDB(t)
	v, _ := addPlant(t, ctx, "Lemon", 7, -1)

	cmd := &ReminderAddCmd{
		Vessel:    "lemon",
		KindFlags: cli.KindFlags{Kind: "other", Title: "Check for aphids", Description: "under the leaves"},
		Every:     14,
		Note:      "  use the loupe ",
	}
	if err := cmd.Run(ctx); err != nil {
		t.Fatalf("add failed: %v", err)
	}

	v, err := ctx.Store.GetVessel(v.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(v.ReminderIDs) != 2 {
		t.Fatalf("expected 2 reminders, got %d", len(v.ReminderIDs))
	}
	r, err := ctx.Store.GetReminder(v.ReminderIDs[1])
	if err != nil {
		t.Fatal(err)
	}
	want := models.ReminderKind{Type: models.KindOther, Title: "Check for aphids", Description: "under the leaves"}
	if r.Kind != want || r.IntervalDays != 14 || r.Note != "use the loupe" {
		t.Errorf("reminder = %+v", r)
	}

	if err := (&ReminderAddCmd{Vessel: "nobody", KindFlags: cli.KindFlags{Kind: "water"}, Every: 7}).Run(ctx); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("unknown plant error = %v, want ErrNotFound", err)
	}
}

func TestReminderEditCmd(t *testing.T) {
	ctx := setupTestDB(t)
	_, r := addPlant(t, ctx, "Fern", 7, 2)

	every := 3
	note := "bottom water"
	if err := (&ReminderEditCmd{Reminder: r.ID[:8], Every: &every, Note: &note}).Run(ctx); err != nil {
		t.Fatalf("edit failed: %v", err)
	}
	got, err := ctx.Store.GetReminder(r.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.IntervalDays != 3 || got.Note != note {
		t.Errorf("reminder = %+v", got)
	}
	wantNext := testNow.AddDate(0, 0, -2+3)
	if got.NextPerformDate == nil || !got.NextPerformDate.Equal(wantNext) {
		t.Errorf("next perform = %v, want %v", got.NextPerformDate, wantNext)
	}

	if err := (&ReminderEditCmd{Reminder: r.ID, Disable: true}).Run(ctx); err != nil {
		t.Fatal(err)
	}
	if got, _ := ctx.Store.GetReminder(r.ID); got.IsEnabled {
		t.Error("reminder still enabled after --disable")
	}

	bad := 500
	if err := (&ReminderEditCmd{Reminder: r.ID, Every: &bad}).Run(ctx); err == nil {
		t.Error("expected an out of range interval to fail")
	}
}

func TestReminderDeleteCmd_KeepsLastReminder(t *testing.T) {
	ctx := setupTestDB(t)
	v, first := addPlant(t, ctx, "Fern", 7, -1)

	err := (&ReminderDeleteCmd{Reminder: first.ID}).Run(ctx)
	if !errors.Is(err, storage.ErrLastReminder) {
		t.Fatalf("delete error = %v, want ErrLastReminder", err)
	}

	if err := (&ReminderAddCmd{Vessel: v.ID, KindFlags: cli.KindFlags{Kind: "mist"}, Every: 2}).Run(ctx); err != nil {
		t.Fatal(err)
	}
	if err := (&ReminderDeleteCmd{Reminder: first.ID}).Run(ctx); err != nil {
		t.Fatalf("delete with a sibling left failed: %v", err)
	}
	if _, err := ctx.Store.GetReminder(first.ID); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("reminder still present: %v", err)
	}
}

func TestPerformCmd(t *testing.T) {
	ctx := setupTestDB(t)
	_, fern := addPlant(t, ctx, "Fern", 7, -1)     // never done, due today
	_, cactus := addPlant(t, ctx, "Cactus", 7, 10) // late
	_, palm := addPlant(t, ctx, "Palm", 30, 1)     // later

	tests := []struct {
		name    string
		cmd     PerformCmd
		wantErr bool
		done    []string
	}{
		{name: "no arguments", cmd: PerformCmd{}, wantErr: true},
		{name: "unknown id", cmd: PerformCmd{Reminders: []string{"zzz"}}, wantErr: true},
		{name: "due performs late and today", cmd: PerformCmd{Due: true}, done: []string{fern.ID, cactus.ID}},
		{name: "nothing left due", cmd: PerformCmd{Due: true}},
		{name: "explicit id", cmd: PerformCmd{Reminders: []string{palm.ID[:8], palm.ID}}, done: []string{palm.ID}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := map[string]int{}
			for _, id := range tt.done {
				r, _ := ctx.Store.GetReminder(id)
				before[id] = len(r.Performed)
			}
			err := tt.cmd.Run(ctx)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Run() error = %v, wantErr %v", err, tt.wantErr)
			}
			for _, id := range tt.done {
				r, err := ctx.Store.GetReminder(id)
				if err != nil {
					t.Fatal(err)
				}
				if len(r.Performed) != before[id]+1 {
					t.Errorf("reminder %s performed %d times, want %d", id, len(r.Performed), before[id]+1)
				}
				if last := r.LastPerformed(); last == nil || !last.Date.Equal(testNow) {
					t.Errorf("reminder %s last performed %v, want %v", id, last, testNow)
				}
			}
		})
	}
}

func TestReminderListCmd(t *testing.T) {
	ctx := setupTestDB(t)
	if err := (&ReminderListCmd{}).Run(ctx); err != nil {
		t.Fatalf("list on an empty garden failed: %v", err)
	}
	addPlant(t, ctx, "Fern", 7, 3)
	if err := (&ReminderListCmd{}).Run(ctx); err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if err := (&ReminderListCmd{Vessel: "Fern"}).Run(ctx); err != nil {
		t.Fatalf("list by plant failed: %v", err)
	}
	if err := (&ReminderListCmd{Vessel: "Rose"}).Run(ctx); err == nil {
		t.Error("expected an error listing an unknown plant")
	}
}

func TestDedupe(t *testing.T) {
	got := dedupe([]string{"a", "b", "a", "c", "b"})
	if len(got) != 3 || got[0] != "a" || got[1] != "b" || got[2] != "c" {
		t.Errorf("dedupe = %v", got)
	}
}
