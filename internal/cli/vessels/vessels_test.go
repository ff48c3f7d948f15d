package vessels

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/julianstephens/waterme/internal/backup"
	"github.com/julianstephens/waterme/internal/cli"
	"github.com/julianstephens/waterme/internal/iconstore"
	"github.com/julianstephens/waterme/internal/models"
	"github.com/julianstephens/waterme/internal/storage/sqlite"
)

var testNow = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

func setupTestDB(t *testing.T) (*cli.Context, string) {
	t.Helper()
	dir := t.TempDir()
	store := sqlite.NewStore(filepath.Join(dir, "test.db"))
	if err := store.Init(); err != nil {
		t.Fatalf("failed to init store: %v", err)
	}
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Errorf("failed to close store: %v", err)
		}
	})

	iconDir := filepath.Join(dir, "icons")
	configPath := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(configPath, []byte("api:\n  icon_dir: "+iconDir+"\n"), 0600); err != nil {
		t.Fatal(err)
	}
	return &cli.Context{
		Store:      store,
		ConfigPath: configPath,
		Now:        func() time.Time { return testNow },
	}, iconDir
}

func onlyVessel(t *testing.T, ctx *cli.Context) models.Vessel {
	t.Helper()
	vessels, err := ctx.Store.GetAllVessels()
	if err != nil {
		t.Fatal(err)
	}
	if len(vessels) != 1 {
		t.Fatalf("expected one plant, got %d", len(vessels))
	}
	return vessels[0]
}

func TestVesselAddCmd(t *testing.T) {
	tests := []struct {
		name     string
		cmd      VesselAddCmd
		wantErr  bool
		wantName string
		wantKind models.ReminderKind
	}{
		{
			name:     "named plant",
			cmd:      VesselAddCmd{Name: " Fern ", KindFlags: cli.KindFlags{Kind: "water"}, Every: 3},
			wantName: "Fern",
			wantKind: models.ReminderKind{Type: models.KindWater},
		},
		{
			name:     "untitled plant",
			cmd:      VesselAddCmd{KindFlags: cli.KindFlags{Kind: "mist"}, Every: 7},
			wantName: "Untitled Plant",
			wantKind: models.ReminderKind{Type: models.KindMist},
		},
		{
			name:     "move keeps its location",
			cmd:      VesselAddCmd{Name: "Lemon", KindFlags: cli.KindFlags{Kind: "move", Location: "patio", Title: "ignored"}, Every: 30},
			wantName: "Lemon",
			wantKind: models.ReminderKind{Type: models.KindMove, Location: "patio"},
		},
		{
			name:    "unknown kind",
			cmd:     VesselAddCmd{Name: "Fern", KindFlags: cli.KindFlags{Kind: "sing"}, Every: 7},
			wantErr: true,
		},
		{
			name:    "interval out of range",
			cmd:     VesselAddCmd{Name: "Fern", KindFlags: cli.KindFlags{Kind: "water"}, Every: 0},
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx, _ := setupTestDB(t)
			err := tt.cmd.Run(ctx)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Run() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			v := onlyVessel(t, ctx)
			if v.Name() != tt.wantName {
				t.Errorf("name = %q, want %q", v.Name(), tt.wantName)
			}
			r, err := ctx.Store.GetReminder(v.ReminderIDs[0])
			if err != nil {
				t.Fatal(err)
			}
			if r.Kind != tt.wantKind {
				t.Errorf("kind = %+v, want %+v", r.Kind, tt.wantKind)
			}
			if r.IntervalDays != tt.cmd.Every {
				t.Errorf("interval = %d, want %d", r.IntervalDays, tt.cmd.Every)
			}
			if r.NextPerformDate != nil {
				t.Error("a new reminder should never have been performed")
			}
		})
	}
}

func TestVesselEditCmd(t *testing.T) {
	ctx, _ := setupTestDB(t)
	if err := (&VesselAddCmd{Name: "Fern", KindFlags: cli.KindFlags{Kind: "water"}, Every: 7}).Run(ctx); err != nil {
		t.Fatal(err)
	}

	name := "Boston Fern"
	if err := (&VesselEditCmd{Vessel: "fern", Name: &name, Emoji: "🌿"}).Run(ctx); err != nil {
		t.Fatalf("edit failed: %v", err)
	}
	v := onlyVessel(t, ctx)
	if v.DisplayName != name || v.Icon.Emoji != "🌿" {
		t.Errorf("vessel = %+v", v)
	}

	if err := (&VesselEditCmd{Vessel: "nope"}).Run(ctx); err == nil {
		t.Error("expected an error for an unknown plant")
	}
	if err := (&VesselEditCmd{Vessel: v.ID[:6], Emoji: "🌵", Image: "x.png"}).Run(ctx); err == nil {
		t.Error("expected --emoji and --image to conflict")
	}
}

func TestVesselEditCmd_Image(t *testing.T) {
	ctx, iconDir := setupTestDB(t)
	if err := (&VesselAddCmd{Name: "Fern", KindFlags: cli.KindFlags{Kind: "water"}, Every: 7}).Run(ctx); err != nil {
		t.Fatal(err)
	}
	v := onlyVessel(t, ctx)

	var buf bytes.Buffer
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	img.Set(0, 0, color.RGBA{G: 200, A: 255})
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	imgPath := filepath.Join(t.TempDir(), "fern.png")
	if err := os.WriteFile(imgPath, buf.Bytes(), 0600); err != nil {
		t.Fatal(err)
	}

	if err := (&VesselEditCmd{Vessel: v.ID, Image: imgPath}).Run(ctx); err != nil {
		t.Fatalf("edit failed: %v", err)
	}
	if got := onlyVessel(t, ctx); got.Icon.Kind != models.IconImage {
		t.Errorf("icon kind = %q, want image", got.Icon.Kind)
	}
	icons := iconstore.New(iconDir)
	if !icons.Has(v.ID) {
		t.Fatal("icon image was not stored")
	}

	if err := (&VesselDeleteCmd{Vessel: v.ID, Yes: true}).Run(ctx); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if icons.Has(v.ID) {
		t.Error("icon image survived deleting the plant")
	}
}

func TestVesselDeleteCmd(t *testing.T) {
	ctx, _ := setupTestDB(t)
	for _, name := range []string{"Fern", "Cactus"} {
		if err := (&VesselAddCmd{Name: name, KindFlags: cli.KindFlags{Kind: "water"}, Every: 7}).Run(ctx); err != nil {
			t.Fatal(err)
		}
	}

	if err := (&VesselDeleteCmd{Vessel: "Cactus", Yes: true}).Run(ctx); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if v := onlyVessel(t, ctx); v.Name() != "Fern" {
		t.Errorf("remaining plant = %q, want Fern", v.Name())
	}
	reminders, err := ctx.Store.GetAllReminders()
	if err != nil {
		t.Fatal(err)
	}
	if len(reminders) != 1 {
		t.Errorf("expected the cactus reminder to go with it, %d left", len(reminders))
	}

	backups, err := backup.NewManager(ctx.Store.GetConfigPath()).List()
	if err != nil {
		t.Fatal(err)
	}
	if len(backups) != 1 {
		t.Errorf("expected an automatic backup before delete, got %d", len(backups))
	}
}

func TestVesselListCmd(t *testing.T) {
	ctx, _ := setupTestDB(t)
	if err := (&VesselListCmd{}).Run(ctx); err != nil {
		t.Fatalf("list on an empty garden failed: %v", err)
	}
	if err := (&VesselAddCmd{Name: "Fern", KindFlags: cli.KindFlags{Kind: "water"}, Every: 7}).Run(ctx); err != nil {
		t.Fatal(err)
	}
	if err := (&VesselListCmd{}).Run(ctx); err != nil {
		t.Fatalf("list failed: %v", err)
	}
}
