package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/julianstephens/courselit/internal/backup"
	"github.com/julianstephens/courselit/internal/config"
	"github.com/julianstephens/courselit/internal/layout"
	"github.com/julianstephens/courselit/internal/logger"
	"github.com/julianstephens/courselit/internal/session"
	"github.com/julianstephens/courselit/internal/storage"
)

type Context struct {
	Store      storage.Provider
	Config     config.Config
	ConfigPath string
	// Out receives command output; nil means stdout.
	Out io.Writer
}

func (c *Context) Stdout() io.Writer {
	if c.Out == nil {
		return os.Stdout
	}
	return c.Out
}

func (c *Context) Print(args ...any) {
	fmt.Fprint(c.Stdout(), args...)
}

func (c *Context) Printf(format string, args ...any) {
	fmt.Fprintf(c.Stdout(), format, args...)
}

func (c *Context) Println(args ...any) {
	fmt.Fprintln(c.Stdout(), args...)
}

func (c *Context) Layout() *layout.Engine {
	return layout.New(c.Config.LayoutConfig())
}

// Loader builds a load chain over the store for the active plan number.
func (c *Context) Loader() (*session.Loader, error) {
	settings, err := c.Store.GetSettings()
	if err != nil {
		return nil, fmt.Errorf("failed to get settings: %w", err)
	}
	return session.NewLoader(session.NewStoreSource(c.Store), c.Config.PlanOptions(settings.PlanNumber)), nil
}

// Session loads the active student's data through the load chain.
func (c *Context) Session(ctx context.Context) (*session.Snapshot, error) {
	loader, err := c.Loader()
	if err != nil {
		return nil, err
	}
	return loader.Load(ctx)
}

// SavePlan persists the current state of the snapshot's plan store.
func (c *Context) SavePlan(snap *session.Snapshot) error {
	if err := c.Store.SavePlan(snap.Saved()); err != nil {
		return fmt.Errorf("failed to save plan: %w", err)
	}
	return nil
}

// PerformAutomaticBackup snapshots a SQLite store before a destructive
// change. Failures are logged and otherwise ignored.
func (c *Context) PerformAutomaticBackup() {
	path := c.Store.GetConfigPath()
	if _, err := os.Stat(path); err != nil {
		return
	}
	if _, err := backup.NewManager(path).Create(); err != nil {
		logger.Warn("Automatic backup failed", "error", err)
	}
}
