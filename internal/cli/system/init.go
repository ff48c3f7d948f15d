package system

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/julianstephens/waterme/internal/cli"
	"github.com/julianstephens/waterme/internal/constants"
	"github.com/julianstephens/waterme/internal/storage"
	"github.com/julianstephens/waterme/internal/storage/postgres"
	"github.com/julianstephens/waterme/internal/storage/sqlite"
)

type InitCmd struct {
	Force  bool   `help:"Delete the existing database before initialization. A backup is taken first."`
	Source string `help:"Source database path or connection string to copy the garden from."`
}

func (c *InitCmd) Run(ctx *cli.Context) error {
	if c.Force {
		if err := c.reset(ctx); err != nil {
			return err
		}
	}

	if err := ctx.Store.Init(); err != nil {
		return err
	}
	fmt.Printf("Initialized %s storage at: %s\n", constants.AppName, ctx.Store.GetConfigPath())

	if c.Source != "" {
		fmt.Printf("Migrating data from: %s\n", c.Source)
		if err := migrateData(ctx, c.Source); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
		fmt.Println("Migration completed successfully!")
	}
	return nil
}

func (c *InitCmd) reset(ctx *cli.Context) error {
	dbPath := ctx.Store.GetConfigPath()
	if cli.IsPostgres(dbPath) {
		return errors.New("--force only applies to sqlite databases")
	}
	if abs, err := filepath.Abs(dbPath); err == nil {
		dbPath = abs
	}
	if c.Source != "" {
		if abs, err := filepath.Abs(c.Source); err == nil && abs == dbPath {
			return fmt.Errorf("cannot use --force when source and destination are the same: %s", dbPath)
		}
	}

	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		return nil
	} else if err != nil {
		return fmt.Errorf("failed to access existing database: %w", err)
	}

	ctx.PerformAutomaticBackup()
	if err := ctx.Store.Close(); err != nil {
		return fmt.Errorf("failed to close existing database: %w", err)
	}
	for _, p := range []string{dbPath, dbPath + "-wal", dbPath + "-shm"} {
		if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to delete existing database: %w", err)
		}
	}
	fmt.Printf("Deleted existing database at: %s\n", dbPath)
	return nil
}

func openSource(path string) (storage.Provider, error) {
	if !cli.IsPostgres(path) {
		return sqlite.NewStore(path), nil
	}
	if valid, err := postgres.ValidateConnString(path); !valid {
		if errors.Is(err, postgres.ErrEmbeddedCredentials) {
			return nil, errors.New("PostgreSQL source connection string contains embedded credentials. Use environment variables or .pgpass instead")
		}
		return nil, err
	}
	return postgres.New(path), nil
}

// migrateData copies settings, plants and reminders with their history.
// Scheduled notifications are derived state and are rebuilt by the daemon.
func migrateData(ctx *cli.Context, sourcePath string) error {
	src, err := openSource(sourcePath)
	if err != nil {
		return err
	}
	if err := src.Load(); err != nil {
		return fmt.Errorf("failed to load source database: %w", err)
	}
	defer src.Close()

	fmt.Println("  Migrating settings...")
	settings, err := src.GetSettings()
	if err != nil {
		return fmt.Errorf("failed to get settings from source: %w", err)
	}
	if err := ctx.Store.SaveSettings(settings); err != nil {
		return fmt.Errorf("failed to save settings to destination: %w", err)
	}

	fmt.Println("  Migrating plants...")
	vessels, err := src.GetAllVessels()
	if err != nil {
		return fmt.Errorf("failed to get plants from source: %w", err)
	}
	reminderCount := 0
	for _, v := range vessels {
		if len(v.ReminderIDs) == 0 {
			return fmt.Errorf("plant %s has no reminders", v.ID)
		}
		for i, id := range v.ReminderIDs {
			r, err := src.GetReminder(id)
			if err != nil {
				return fmt.Errorf("failed to get reminder %s: %w", id, err)
			}
			if i == 0 {
				err = ctx.Store.AddVessel(v, r)
			} else {
				err = ctx.Store.AddReminder(r)
			}
			if err != nil {
				return fmt.Errorf("failed to copy reminder %s of plant %s: %w", id, v.ID, err)
			}
			reminderCount++
		}
	}
	fmt.Printf("    Migrated %d plants and %d reminders\n", len(vessels), reminderCount)
	return nil
}
