package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/sadopc/clearway/internal/checkin"
	"github.com/sadopc/clearway/internal/journal"
)

type CheckInCmd struct {
	Drank   bool   `help:"You drank yesterday." negatable:""`
	Amount  string `help:"How many drinks, when --drank is set."`
	Feeling string `help:"How you feel today: Awful, Not Great, Okay, Good or Fantastic."`
}

func (c *CheckInCmd) Run(ctx *Context) error {
	mood, ok := journal.ParseMood(c.Feeling)
	if !ok {
		return fmt.Errorf("%w: %q", checkin.ErrUnknownMood, c.Feeling)
	}

	s, err := ctx.Flow().Run(context.Background(), c.Drank, c.Amount, mood)
	switch {
	case errors.Is(err, checkin.ErrInactive):
		fmt.Fprintf(ctx.Out, "Already checked in for %s. %s clear.\n", s.Date, days(s.DaysClear))
		return nil
	case errors.Is(err, checkin.ErrPersist):
		return fmt.Errorf("check-in for %s completed but was not fully saved: %w", s.Date, err)
	case err != nil:
		return err
	}

	fmt.Fprintf(ctx.Out, "Congrats! Checked in for %s. %s clear.\n", s.Date, days(s.DaysClear))
	return nil
}

func days(n int) string {
	if n == 1 {
		return "1 day"
	}
	return fmt.Sprintf("%d days", n)
}
