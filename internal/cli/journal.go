package cli

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/sadopc/clearway/internal/export"
	"github.com/sadopc/clearway/internal/journal"
)

type JournalListCmd struct {
	Limit int `help:"Show at most this many entries, newest first. 0 shows all." default:"0"`
}

func (c *JournalListCmd) Run(ctx *Context) error {
	entries, err := ctx.Repo.LoadAll(context.Background())
	if err != nil {
		return fmt.Errorf("load journal: %w", err)
	}
	if len(entries) == 0 {
		fmt.Fprintln(ctx.Out, "No journal entries yet.")
		return nil
	}

	sort.SliceStable(entries, func(i, j int) bool { return entries[i].Date > entries[j].Date })
	if c.Limit > 0 && len(entries) > c.Limit {
		entries = entries[:c.Limit]
	}
	for _, e := range entries {
		fmt.Fprintln(ctx.Out, entryLine(e))
	}
	return nil
}

func entryLine(e journal.Entry) string {
	status := "Didn't drink"
	switch {
	case e.Amount == 1:
		status = "Drank 1 drink"
	case e.Amount > 1:
		status = fmt.Sprintf("Drank %d drinks", e.Amount)
	case e.Drank:
		status = "Drank"
	}
	return fmt.Sprintf("%-10s  %-16s %s Feeling: %s", e.Date, status, e.Feeling.Emoji(), e.Feeling)
}

type JournalExportCmd struct {
	Format string `help:"Export format." enum:"csv,json" default:"csv"`
	Out    string `help:"Output file. Defaults to clearway-export-<date>.<format>." type:"path"`
}

func (c *JournalExportCmd) Run(ctx *Context) error {
	entries, err := ctx.Repo.LoadAll(context.Background())
	if err != nil {
		return fmt.Errorf("load journal: %w", err)
	}
	path := c.Out
	if path == "" {
		path = fmt.Sprintf("clearway-export-%s.%s", journal.DateOf(time.Now()), strings.ToLower(c.Format))
	}
	if err := export.Write(entries, c.Format, path); err != nil {
		return err
	}
	fmt.Fprintf(ctx.Out, "Exported %d entries to %s\n", len(entries), path)
	return nil
}

type TrendCmd struct {
	Window int `help:"Trailing number of entries to chart. 0 uses the configured window." default:"0"`
}

func (c *TrendCmd) Run(ctx *Context) error {
	window := c.Window
	if window <= 0 {
		window = ctx.Config.ChartWindow
	}
	entries, err := ctx.Repo.LoadAll(context.Background())
	if err != nil {
		return fmt.Errorf("load journal: %w", err)
	}

	s := journal.DeriveSeries(entries, window)
	if s.Empty {
		fmt.Fprintln(ctx.Out, journal.NoDataLabel)
		return nil
	}
	fmt.Fprintf(ctx.Out, "%-6s %7s %8s\n", "Day", "Drinks", "Feeling")
	for i, label := range s.Labels {
		fmt.Fprintf(ctx.Out, "%-6s %7.0f %8.1f\n", label, s.Drinks[i], s.Feelings[i])
	}
	return nil
}
