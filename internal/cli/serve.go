package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/sadopc/clearway/internal/server"
)

type ServeCmd struct {
	Addr string `help:"Listen address. Defaults to CLEARWAY_HTTP_ADDR."`
}

func (c *ServeCmd) Run(ctx *Context) error {
	cfg := server.Config{
		Addr:        ctx.Config.HTTPAddr,
		RateLimit:   ctx.Config.RateLimit,
		RateBurst:   ctx.Config.RateBurst,
		ChartWindow: ctx.Config.ChartWindow,
	}
	if c.Addr != "" {
		cfg.Addr = c.Addr
	}

	flow := ctx.Flow()
	flow.Start(context.Background())

	sigCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return server.New(cfg, ctx.Repo, ctx.Goals, flow).Run(sigCtx)
}
