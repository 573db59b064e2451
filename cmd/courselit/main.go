package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/julianstephens/courselit/internal/cli"
	"github.com/julianstephens/courselit/internal/cli/backups"
	"github.com/julianstephens/courselit/internal/cli/curricula"
	"github.com/julianstephens/courselit/internal/cli/plans"
	"github.com/julianstephens/courselit/internal/cli/schedules"
	"github.com/julianstephens/courselit/internal/cli/students"
	"github.com/julianstephens/courselit/internal/cli/system"
	"github.com/julianstephens/courselit/internal/config"
	"github.com/julianstephens/courselit/internal/constants"
	cerrors "github.com/julianstephens/courselit/internal/errors"
	"github.com/julianstephens/courselit/internal/keyring"
	"github.com/julianstephens/courselit/internal/logger"
	"github.com/julianstephens/courselit/internal/storage"
	"github.com/julianstephens/courselit/internal/storage/postgres"
	"github.com/julianstephens/courselit/internal/storage/sqlite"
)

var CLI struct {
	Version kong.VersionFlag
	Config  string `help:"SQLite database path or PostgreSQL connection string. Credentials must NOT be embedded in the connection string; use the keyring, the environment or .pgpass." env:"COURSELIT_CONFIG"`
	Debug   bool   `help:"Log debug output to stderr."`

	Init     system.InitCmd     `cmd:"" help:"Initialize courselit storage."`
	Migrate  system.MigrateCmd  `cmd:"" help:"Run database migrations."`
	Tui      system.TuiCmd      `cmd:"" help:"Launch the interactive TUI." default:"1"`
	Validate system.ValidateCmd `cmd:"" help:"Report data-integrity problems of the active plan."`
	Settings system.SettingsCmd `cmd:"" help:"Manage the active student, curriculum, schedule and plan."`
	Keyring  struct {
		Set    system.KeyringSetCmd    `cmd:"" help:"Store the PostgreSQL connection string."`
		Get    system.KeyringGetCmd    `cmd:"" help:"Show the stored connection string, password masked."`
		Delete system.KeyringDeleteCmd `cmd:"" help:"Remove the stored connection string."`
		Status system.KeyringStatusCmd `cmd:"" help:"Check keyring availability." default:"1"`
	} `cmd:"" help:"Manage the PostgreSQL connection string in the OS keyring."`

	Curriculum struct {
		Import curricula.ImportCmd `cmd:"" help:"Import a curriculum from JSON, YAML or TOML."`
		List   curricula.ListCmd   `cmd:"" help:"List imported curricula." default:"1"`
		Show   curricula.ShowCmd   `cmd:"" help:"Show the laid-out curriculum."`
	} `cmd:"" help:"Manage curricula."`
	Deps curricula.DepsCmd `cmd:"" help:"Show the prerequisite or dependent closure of a course."`

	Student struct {
		Import students.ImportCmd `cmd:"" help:"Import a student record and make it active."`
		Show   students.ShowCmd   `cmd:"" help:"Summarize the active student." default:"1"`
		Export students.ExportCmd `cmd:"" help:"Write the current plan back as a student record."`
	} `cmd:"" help:"Manage student records."`

	Plan struct {
		Show      plans.ShowCmd      `cmd:"" help:"Show the plan by semester." default:"1"`
		Add       plans.AddCmd       `cmd:"" help:"Add a course to a semester."`
		Move      plans.MoveCmd      `cmd:"" help:"Move a course to another semester."`
		Remove    plans.RemoveCmd    `cmd:"" help:"Remove a course from the plan."`
		Status    plans.StatusCmd    `cmd:"" help:"Change the status of a course."`
		Grade     plans.GradeCmd     `cmd:"" help:"Record or clear a grade."`
		Available plans.AvailableCmd `cmd:"" help:"List courses whose prerequisites are met."`
	} `cmd:"" help:"View and edit the active plan."`

	Schedule struct {
		Import schedules.ImportCmd `cmd:"" help:"Import a class schedule from JSON or CSV."`
		Select schedules.SelectCmd `cmd:"" help:"Choose the professor whose schedule a course follows."`
	} `cmd:"" help:"Manage class schedules."`
	Timetable schedules.TimetableCmd `cmd:"" help:"Show the weekly timetable of in-progress courses."`

	Backup struct {
		Create  backups.BackupCreateCmd  `cmd:"" help:"Create a manual backup." default:"1"`
		List    backups.BackupListCmd    `cmd:"" help:"List available backups."`
		Restore backups.BackupRestoreCmd `cmd:"" help:"Restore from a backup."`
	} `cmd:"" help:"Manage database backups."`
}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name(constants.AppName),
		kong.Description("Academic planning companion: curricula, plans, prerequisites and timetables"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact:             true,
			NoExpandSubcommands: true,
		}),
		kong.Vars{"version": "v0.1.0"},
	)

	if err := logger.Init(logger.Config{Debug: CLI.Debug, ConfigDir: config.DefaultDir()}); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to initialize logger: %v\n", err)
	}

	target, err := resolveTarget(CLI.Config)
	if err != nil {
		cerrors.Fatal(err)
	}

	isConn := postgres.IsConnString(target) || strings.Contains(target, "host=")
	var store storage.Provider
	if isConn {
		store = postgres.New(target)
	} else {
		store = sqlite.NewStore(target)
	}

	cfgPath := config.PathFor(target, isConn)
	cfg, err := config.Load(cfgPath)
	if err != nil {
		cerrors.Fatal(err)
	}

	appCtx := &cli.Context{
		Store:      store,
		Config:     cfg,
		ConfigPath: cfgPath,
	}

	if !strings.HasPrefix(ctx.Command(), "init") && !strings.HasPrefix(ctx.Command(), "keyring") {
		if err := store.Load(); err != nil {
			cerrors.Fatal(err)
		}
	}

	err = ctx.Run(appCtx)
	if closeErr := store.Close(); closeErr != nil {
		logger.Warn("Failed to close store", "error", closeErr)
	}
	cerrors.Fatal(err)
}

// resolveTarget picks the database: --config or COURSELIT_CONFIG, then a
// connection string from COURSELIT_DB_CONNECTION or the keyring, then the
// default SQLite file.
func resolveTarget(flag string) (string, error) {
	target := strings.TrimSpace(flag)
	if target == "" {
		if connStr, origin := keyring.Resolve(); connStr != "" {
			logger.Debug("Using connection string", "origin", origin)
			return connStr, nil
		}
		return filepath.Join(config.DefaultDir(), constants.DefaultDBFile), nil
	}

	if postgres.IsConnString(target) || strings.Contains(target, "host=") {
		if err := postgres.ValidateConnString(target); err != nil {
			if errors.Is(err, postgres.ErrEmbeddedCredentials) {
				return "", fmt.Errorf("%w; store it with 'courselit keyring set' or set %s instead", err, constants.EnvConnectionString)
			}
			return "", err
		}
		return target, nil
	}

	if rest, ok := strings.CutPrefix(target, "~/"); ok {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to resolve home directory: %w", err)
		}
		target = filepath.Join(home, rest)
	}
	return target, nil
}
