package cli

import (
	"context"
	"fmt"
)

type GoalShowCmd struct{}

func (c *GoalShowCmd) Run(ctx *Context) error {
	g, err := ctx.Goals.Load(context.Background())
	if err != nil {
		return fmt.Errorf("load goal: %w", err)
	}
	fmt.Fprintf(ctx.Out, "Days clear: %d\n", g.DaysClear)
	fmt.Fprintf(ctx.Out, "Goal:       %s (%.0f%%)\n", days(g.GoalDays), g.Progress()*100)
	if g.Met() {
		fmt.Fprintln(ctx.Out, "Goal reached!")
	}
	return nil
}

type GoalSetCmd struct {
	Days int `arg:"" help:"Number of days clear to aim for."`
}

func (c *GoalSetCmd) Run(ctx *Context) error {
	if err := ctx.Goals.SetGoalDays(context.Background(), c.Days); err != nil {
		return err
	}
	fmt.Fprintf(ctx.Out, "Goal set to %s.\n", days(c.Days))
	return nil
}
