package system

import (
	"errors"
	"fmt"
	"time"

	"github.com/julianstephens/waterme/internal/backup"
	"github.com/julianstephens/waterme/internal/cli"
	"github.com/julianstephens/waterme/internal/config"
	"github.com/julianstephens/waterme/internal/keyring"
	"github.com/julianstephens/waterme/internal/models"
	"github.com/julianstephens/waterme/internal/utils"
)

type DoctorCmd struct{}

type check struct {
	name string
	run  func(*cli.Context) error
	// needsDB checks are skipped when the database cannot be loaded.
	needsDB bool
	// warnOnly failures do not fail the command.
	warnOnly bool
}

var checks = []check{
	{name: "Database reachable", run: checkDBReachable},
	{name: "Settings", run: checkSettings, needsDB: true},
	{name: "Garden integrity", run: checkGarden, needsDB: true},
	{name: "Daemon config", run: checkConfig},
	{name: "Backups present", run: checkBackups, warnOnly: true},
	{name: "OS keyring", run: checkKeyring, warnOnly: true},
}

func (cmd *DoctorCmd) Run(ctx *cli.Context) error {
	fmt.Println("Running diagnostics...")
	fmt.Println()

	failed, dbOK := false, true
	for i, c := range checks {
		if c.needsDB && !dbOK {
			fmt.Printf("⊘ %s: SKIPPED (database not reachable)\n", c.name)
			continue
		}
		err := c.run(ctx)
		switch {
		case err == nil:
			fmt.Printf("✓ %s: OK\n", c.name)
		case c.warnOnly:
			fmt.Printf("⚠ %s: WARNING\n   %v\n", c.name, err)
		default:
			fmt.Printf("❌ %s: FAIL\n   Error: %v\n", c.name, err)
			failed = true
			if i == 0 {
				dbOK = false
			}
		}
	}

	fmt.Println()
	if failed {
		fmt.Println("Diagnostics completed with errors.")
		return errors.New("one or more health checks failed")
	}
	fmt.Println("All diagnostics passed!")
	return nil
}

func checkDBReachable(ctx *cli.Context) error {
	if err := ctx.Store.Load(); err != nil {
		return fmt.Errorf("failed to load database: %w", err)
	}
	_, err := ctx.Store.GetSettings()
	return err
}

func checkSettings(ctx *cli.Context) error {
	s, err := ctx.Store.GetSettings()
	if err != nil {
		return err
	}
	if err := s.Validate(); err != nil {
		return err
	}
	if _, err := utils.LoadLocation(s.Timezone); err != nil {
		return fmt.Errorf("unknown timezone %q: %w", s.Timezone, err)
	}
	return nil
}

// checkGarden verifies that every plant keeps at least one reminder and that
// stored next perform dates agree with the perform history.
func checkGarden(ctx *cli.Context) error {
	vessels, err := ctx.Store.GetAllVessels()
	if err != nil {
		return err
	}
	reminders, err := ctx.Store.GetAllReminders()
	if err != nil {
		return err
	}

	known := make(map[string]bool, len(vessels))
	var problems []string
	for _, v := range vessels {
		known[v.ID] = true
		if len(v.ReminderIDs) == 0 {
			problems = append(problems, fmt.Sprintf("plant %q has no reminders", v.Name()))
		}
	}
	for _, r := range reminders {
		if err := r.Validate(); err != nil {
			problems = append(problems, fmt.Sprintf("reminder %s: %v", cli.ShortID(r.ID), err))
		}
		if !known[r.VesselID] {
			problems = append(problems, fmt.Sprintf("reminder %s belongs to a missing plant", cli.ShortID(r.ID)))
		}
		if !nextDateConsistent(r) {
			problems = append(problems, fmt.Sprintf("reminder %s has a stale next perform date", cli.ShortID(r.ID)))
		}
	}
	if len(problems) > 0 {
		return fmt.Errorf("%d problem(s): %v", len(problems), problems)
	}
	return nil
}

func nextDateConsistent(r models.Reminder) bool {
	want := r.Clone()
	want.RecomputeNextPerformDate()
	if want.NextPerformDate == nil || r.NextPerformDate == nil {
		return want.NextPerformDate == nil && r.NextPerformDate == nil
	}
	// stored dates may carry a fixed offset, so a DST shift is tolerated
	d := want.NextPerformDate.Sub(*r.NextPerformDate)
	return d <= time.Hour && d >= -time.Hour
}

func checkConfig(ctx *cli.Context) error {
	cfg, err := config.Load(ctx.ConfigPath)
	if err != nil {
		return err
	}
	return cfg.Validate()
}

func checkBackups(ctx *cli.Context) error {
	path := ctx.Store.GetConfigPath()
	if cli.IsPostgres(path) {
		return nil
	}
	mgr := backup.NewManager(path)
	backups, err := mgr.List()
	if err != nil {
		return err
	}
	if len(backups) == 0 {
		return fmt.Errorf("no backups found in %s", mgr.Dir())
	}
	return nil
}

func checkKeyring(*cli.Context) error {
	if !keyring.IsAvailable() {
		return keyring.ErrKeyringUnavailable
	}
	return nil
}
