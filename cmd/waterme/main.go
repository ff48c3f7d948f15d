package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/mitchellh/go-homedir"

	"github.com/julianstephens/waterme/internal/cli"
	"github.com/julianstephens/waterme/internal/cli/backups"
	"github.com/julianstephens/waterme/internal/cli/plans"
	"github.com/julianstephens/waterme/internal/cli/reminders"
	"github.com/julianstephens/waterme/internal/cli/settings"
	"github.com/julianstephens/waterme/internal/cli/system"
	"github.com/julianstephens/waterme/internal/cli/vessels"
	"github.com/julianstephens/waterme/internal/constants"
	errs "github.com/julianstephens/waterme/internal/errors"
	"github.com/julianstephens/waterme/internal/keyring"
	"github.com/julianstephens/waterme/internal/logger"
	"github.com/julianstephens/waterme/internal/storage"
	"github.com/julianstephens/waterme/internal/storage/postgres"
	"github.com/julianstephens/waterme/internal/storage/sqlite"
)

// keyringDB selects the connection string stored with 'keyring set'.
const keyringDB = "keyring"

var CLI struct {
	Version kong.VersionFlag
	DB      string `name:"db" help:"SQLite database path, PostgreSQL connection string, or 'keyring'. Passwords must NOT be embedded in connection strings." default:"${db}" env:"WATERME_DB"`
	Config  string `help:"Daemon configuration file." default:"${config}" type:"path"`
	Debug   bool   `help:"Log at debug level."`

	Init   system.InitCmd   `cmd:"" help:"Initialize waterme storage."`
	Tui    system.TuiCmd    `cmd:"" help:"Launch the interactive TUI." default:"1"`
	Daemon system.DaemonCmd `cmd:"" help:"Keep notifications and the badge up to date."`
	Mcp    system.McpCmd    `cmd:"" help:"Serve the garden to MCP clients over stdio."`
	Doctor system.DoctorCmd `cmd:"" help:"Run health checks and diagnostics."`

	Garden  plans.GardenCmd      `cmd:"" help:"Show what needs attention."`
	Perform reminders.PerformCmd `cmd:"" help:"Mark reminders as done."`
	Plan    plans.PlanCmd        `cmd:"" help:"Preview scheduled notifications."`
	Badge   plans.BadgeCmd       `cmd:"" help:"Print the number of reminders due today."`

	Vessel struct {
		Add    vessels.VesselAddCmd    `cmd:"" help:"Add a plant with its first reminder."`
		List   vessels.VesselListCmd   `cmd:"" help:"List plants." default:"1"`
		Edit   vessels.VesselEditCmd   `cmd:"" help:"Rename a plant or change its icon."`
		Delete vessels.VesselDeleteCmd `cmd:"" help:"Delete a plant and its reminders."`
	} `cmd:"" aliases:"plant" help:"Manage plants."`
	Reminder struct {
		Add    reminders.ReminderAddCmd    `cmd:"" help:"Add a reminder to a plant."`
		List   reminders.ReminderListCmd   `cmd:"" help:"List reminders." default:"1"`
		Edit   reminders.ReminderEditCmd   `cmd:"" help:"Edit a reminder."`
		Delete reminders.ReminderDeleteCmd `cmd:"" help:"Delete a reminder."`
	} `cmd:"" help:"Manage reminders."`
	Settings settings.SettingsCmd `cmd:"" help:"Manage application settings."`
	Backup   struct {
		Create  backups.BackupCreateCmd  `cmd:"" help:"Create a manual backup." default:"1"`
		List    backups.BackupListCmd    `cmd:"" help:"List available backups."`
		Restore backups.BackupRestoreCmd `cmd:"" help:"Restore from a backup."`
	} `cmd:"" help:"Manage database backups."`
	Keyring struct {
		Set    system.KeyringSetCmd    `cmd:"" help:"Store a secret in the OS keyring."`
		Get    system.KeyringGetCmd    `cmd:"" help:"Show a stored secret, masked."`
		Delete system.KeyringDeleteCmd `cmd:"" help:"Remove a stored secret."`
		Status system.KeyringStatusCmd `cmd:"" help:"Check keyring availability."`
	} `cmd:"" help:"Manage credentials in the OS keyring."`
}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name(constants.AppName),
		kong.Description("Plant care reminders"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact:             true,
			NoExpandSubcommands: true,
		}),
		kong.Vars{
			"version": constants.Version,
			"db":      constants.DefaultConfigPath,
			"config":  constants.DefaultDaemonConf,
		},
	)

	command := ctx.Command()
	appCtx := &cli.Context{
		ConfigPath: CLI.Config,
		Debug:      CLI.Debug,
	}

	// keyring commands manage the credentials openStore may need
	if strings.HasPrefix(command, "keyring") {
		initLogger(filepath.Dir(constants.DefaultConfigPath))
		if err := ctx.Run(appCtx); err != nil {
			errs.Fatal(err)
		}
		return
	}

	store, err := openStore(CLI.DB)
	if err != nil {
		errs.Fatal(err)
	}
	appCtx.Store = store
	initLogger(cli.DataDir(store))

	// init creates the store itself and doctor reports load failures
	if command != "init" && command != "doctor" {
		if err := store.Load(); err != nil {
			errs.Fatal(err)
		}
	}

	err = ctx.Run(appCtx)
	store.Close()
	if err != nil {
		errs.Fatal(err)
	}
}

func initLogger(dir string) {
	if expanded, err := homedir.Expand(dir); err == nil {
		dir = expanded
	}
	if err := logger.Init(logger.Config{Debug: CLI.Debug, ConfigDir: dir}); err != nil {
		fmt.Fprintln(os.Stderr, errs.Formatf("failed to initialize logger: %v", err))
	}
}

func openStore(db string) (storage.Provider, error) {
	if db == keyringDB {
		connStr, err := keyring.GetConnectionString()
		if err != nil {
			if errors.Is(err, keyring.ErrNotFound) {
				return nil, fmt.Errorf("no connection string in keyring, store one with '%s keyring set'", constants.AppName)
			}
			return nil, err
		}
		// stored strings may carry a password; the keyring is the safe place for it
		return postgres.New(connStr), nil
	}

	if cli.IsPostgres(db) {
		if _, err := postgres.ValidateConnString(db); err != nil {
			if errors.Is(err, postgres.ErrEmbeddedCredentials) {
				return nil, fmt.Errorf("PostgreSQL connection strings with embedded credentials are not allowed. "+
					"Store it with '%s keyring set' and pass --db keyring, or use PGPASSWORD or .pgpass", constants.AppName)
			}
			return nil, err
		}
		return postgres.New(db), nil
	}

	path, err := homedir.Expand(db)
	if err != nil {
		return nil, fmt.Errorf("failed to expand database path: %w", err)
	}
	return sqlite.NewStore(path), nil
}
