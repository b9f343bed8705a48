package main

import (
	"context"
	"fmt"
	"os"

	"github.com/alecthomas/kong"

	"github.com/sadopc/clearway/internal/cli"
	"github.com/sadopc/clearway/internal/config"
	"github.com/sadopc/clearway/internal/logger"
)

var CLI struct {
	Version kong.VersionFlag
	DB      string `help:"SQLite database path. Overrides CLEARWAY_DB_PATH." type:"path"`
	Backend string `help:"Journal backend: local, postgres or firestore. Overrides CLEARWAY_BACKEND."`
	Debug   bool   `help:"Mirror logs to stderr at debug level."`

	Tui     cli.TuiCmd     `cmd:"" help:"Launch the interactive TUI." default:"1"`
	CheckIn cli.CheckInCmd `cmd:"" name:"checkin" help:"Record today's check-in."`
	Journal struct {
		List   cli.JournalListCmd   `cmd:"" help:"List journal entries." default:"1"`
		Export cli.JournalExportCmd `cmd:"" help:"Export the journal to CSV or JSON."`
	} `cmd:"" help:"Read and export the journal."`
	Trend cli.TrendCmd `cmd:"" help:"Show drinks and feelings for recent entries."`
	Goal  struct {
		Show cli.GoalShowCmd `cmd:"" help:"Show your streak and goal." default:"1"`
		Set  cli.GoalSetCmd  `cmd:"" help:"Set your goal in days."`
	} `cmd:"" help:"Show or change your goal."`
	Chat  cli.ChatCmd  `cmd:"" help:"Ask the AI counselor a question."`
	Serve cli.ServeCmd `cmd:"" help:"Serve the journal over a local HTTP API."`
}

func main() {
	kctx := kong.Parse(&CLI,
		kong.Name("clearway"),
		kong.Description("Daily sobriety check-ins, journal and support"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact:             true,
			NoExpandSubcommands: true,
		}),
		kong.Vars{"version": "v0.1.0"},
	)

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if CLI.DB != "" {
		cfg.DBPath = CLI.DB
	}
	if CLI.Backend != "" {
		cfg.Backend = CLI.Backend
	}
	cfg.Debug = cfg.Debug || CLI.Debug
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(logger.Config{Debug: cfg.Debug, Dir: cfg.DataDir}); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: logging disabled: %v\n", err)
	}

	appCtx, err := cli.Open(context.Background(), cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	err = kctx.Run(appCtx)
	appCtx.Close()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
