package cli

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/mitchellh/go-homedir"

	"github.com/julianstephens/waterme/internal/backup"
	"github.com/julianstephens/waterme/internal/bucket"
	"github.com/julianstephens/waterme/internal/constants"
	"github.com/julianstephens/waterme/internal/logger"
	"github.com/julianstephens/waterme/internal/models"
	"github.com/julianstephens/waterme/internal/projection"
	"github.com/julianstephens/waterme/internal/source"
	"github.com/julianstephens/waterme/internal/storage"
	"github.com/julianstephens/waterme/internal/utils"
)

type Context struct {
	Store storage.Provider
	// ConfigPath is the daemon configuration file.
	ConfigPath string
	Debug      bool
	// Now defaults to time.Now.
	Now func() time.Time
}

// IsPostgres reports whether the store is addressed by a connection string
// rather than a file path.
func IsPostgres(path string) bool {
	return strings.HasPrefix(path, "postgres://") || strings.HasPrefix(path, "postgresql://") ||
		strings.Contains(path, "host=")
}

// DataDir is where logs live: next to a sqlite database, or the default
// config directory for postgres.
func DataDir(store storage.Provider) string {
	path := store.GetConfigPath()
	if IsPostgres(path) {
		path = constants.DefaultConfigPath
	}
	if expanded, err := homedir.Expand(path); err == nil {
		path = expanded
	}
	return filepath.Dir(path)
}

// PerformAutomaticBackup snapshots a sqlite database before a destructive
// command and only logs on failure.
func (c *Context) PerformAutomaticBackup() {
	path := c.Store.GetConfigPath()
	if IsPostgres(path) {
		return
	}
	if _, err := backup.NewManager(path).Create(); err != nil {
		logger.Warn("Automatic backup failed", "error", err)
	}
}

func (c *Context) clock() time.Time {
	if c.Now != nil {
		return c.Now()
	}
	return time.Now()
}

// LocalNow returns the current time in the garden's configured timezone.
func (c *Context) LocalNow() time.Time {
	now := c.clock()
	settings, err := c.Store.GetSettings()
	if err != nil {
		return now
	}
	loc, err := utils.LoadLocation(settings.Timezone)
	if err != nil {
		return now
	}
	return now.In(loc)
}

// ShortID is the id prefix shown in tables.
func ShortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// ResolveVessel finds a vessel by id, unique id prefix, or display name.
func (c *Context) ResolveVessel(ref string) (models.Vessel, error) {
	if v, err := c.Store.GetVessel(ref); err == nil {
		return v, nil
	} else if !errors.Is(err, storage.ErrNotFound) {
		return models.Vessel{}, err
	}

	vessels, err := c.Store.GetAllVessels()
	if err != nil {
		return models.Vessel{}, fmt.Errorf("failed to list plants: %w", err)
	}
	var matches []models.Vessel
	for _, v := range vessels {
		if strings.EqualFold(v.DisplayName, ref) {
			return v, nil
		}
		if strings.HasPrefix(v.ID, ref) {
			matches = append(matches, v)
		}
	}
	switch len(matches) {
	case 0:
		return models.Vessel{}, fmt.Errorf("plant %q %w", ref, storage.ErrNotFound)
	case 1:
		return matches[0], nil
	}
	return models.Vessel{}, fmt.Errorf("plant %q is ambiguous, %d ids match", ref, len(matches))
}

// ResolveReminder finds a reminder by id or unique id prefix.
func (c *Context) ResolveReminder(ref string) (models.Reminder, error) {
	if r, err := c.Store.GetReminder(ref); err == nil {
		return r, nil
	} else if !errors.Is(err, storage.ErrNotFound) {
		return models.Reminder{}, err
	}

	reminders, err := c.Store.GetAllReminders()
	if err != nil {
		return models.Reminder{}, fmt.Errorf("failed to list reminders: %w", err)
	}
	var match *models.Reminder
	for i := range reminders {
		if !strings.HasPrefix(reminders[i].ID, ref) {
			continue
		}
		if match != nil {
			return models.Reminder{}, fmt.Errorf("reminder %q is ambiguous", ref)
		}
		match = &reminders[i]
	}
	if match == nil {
		return models.Reminder{}, fmt.Errorf("reminder %q %w", ref, storage.ErrNotFound)
	}
	return c.Store.GetReminder(match.ID)
}

// Garden is a one-shot bucketed view of the reminders, for commands that
// print sections and exit.
type Garden struct {
	Col   *source.Collection
	gedeg *projection.Gedeg
}

func (c *Context) OpenGarden() *Garden {
	settings, err := c.Store.GetSettings()
	if err != nil {
		settings = models.DefaultSettings()
	}
	col := source.New(c.Store)
	g := projection.New(col,
		projection.WithClock(c.LocalNow),
		projection.WithFirstWeekday(settings.FirstWeekday()),
	)
	g.SetObserver(func(projection.Change) {})
	col.Sync()
	g.Sync()
	return &Garden{Col: col, gedeg: g}
}

// Section returns the reminders in bucket k, most urgent first.
func (g *Garden) Section(k bucket.Kind) []models.Reminder {
	var out []models.Reminder
	for row := 0; row < g.gedeg.NumberOfRows(k); row++ {
		if r, ok := g.gedeg.Item(projection.IndexPath{Section: k, Row: row}); ok {
			out = append(out, r)
		}
	}
	return out
}

func (g *Garden) Close() {
	g.gedeg.Close()
	g.Col.Close()
}

// FormatDue renders a reminder's next perform date for tables.
func FormatDue(r models.Reminder) string {
	if r.NextPerformDate == nil {
		return "never done"
	}
	return r.NextPerformDate.Format("Mon Jan 2")
}

// KindFlags are the reminder kind flags shared by the add commands.
type KindFlags struct {
	Kind        string `help:"Care task: water, fertilize, trim, mist, move or other." default:"water"`
	Location    string `help:"Where to move the plant, for --kind move."`
	Title       string `help:"Short title, for --kind other."`
	Description string `help:"Longer description, for --kind other."`
}

func (f KindFlags) ReminderKind() (models.ReminderKind, error) {
	t, err := models.ParseKindType(f.Kind)
	if err != nil {
		return models.ReminderKind{}, err
	}
	k := models.ReminderKind{Type: t}
	switch t {
	case models.KindMove:
		k.Location = strings.TrimSpace(f.Location)
	case models.KindOther:
		k.Title = strings.TrimSpace(f.Title)
		k.Description = strings.TrimSpace(f.Description)
	}
	return k, nil
}
