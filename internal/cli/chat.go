package cli

import (
	"context"
	"fmt"
	"strings"
)

type ChatCmd struct {
	Message []string `arg:"" help:"What you want to say to the counselor."`
}

func (c *ChatCmd) Run(ctx *Context) error {
	reply, err := ctx.Counselor().Ask(context.Background(), strings.Join(c.Message, " "))
	if err != nil {
		return err
	}
	fmt.Fprintln(ctx.Out, reply)
	return nil
}
