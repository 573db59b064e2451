package system

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/courselit/internal/cli"
	"github.com/julianstephens/courselit/internal/tui"
)

type TuiCmd struct{}

func (c *TuiCmd) Run(ctx *cli.Context) error {
	loader, err := ctx.Loader()
	if err != nil {
		return err
	}

	ctx.PerformAutomaticBackup()

	m := tui.NewModel(loader, ctx.Config, ctx.SavePlan)
	if _, err := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion()).Run(); err != nil {
		return fmt.Errorf("tui failed: %w", err)
	}
	return nil
}
