package cli

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sadopc/clearway/internal/tui"
)

type TuiCmd struct {
	ExportDir string `help:"Directory for exports started from the TUI." default:"." type:"path"`
}

func (c *TuiCmd) Run(ctx *Context) error {
	app := tui.NewApp(tui.Deps{
		Store:       ctx.Store,
		Repo:        ctx.Repo,
		Goals:       ctx.Goals,
		Flow:        ctx.Flow(),
		Counselor:   ctx.Counselor(),
		ChartWindow: ctx.Config.ChartWindow,
		ExportDir:   c.ExportDir,
	})
	p := tea.NewProgram(app, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run tui: %w", err)
	}
	return nil
}
