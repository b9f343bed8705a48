package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/sadopc/clearway/internal/checkin"
	"github.com/sadopc/clearway/internal/config"
	"github.com/sadopc/clearway/internal/counsel"
	"github.com/sadopc/clearway/internal/goal"
	"github.com/sadopc/clearway/internal/journal"
	"github.com/sadopc/clearway/internal/logger"
	"github.com/sadopc/clearway/internal/remote"
	"github.com/sadopc/clearway/internal/store"
)

// Context is passed to every command's Run method.
type Context struct {
	Config config.Config
	Store  *store.Store
	Goals  *goal.Store
	Repo   journal.Repository
	Out    io.Writer

	closers []func()
}

// Open opens the on-device store and the journal backend selected by
// cfg.Backend. Streak state always stays on the device.
func Open(ctx context.Context, cfg config.Config) (*Context, error) {
	s, err := store.New(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	c := &Context{
		Config:  cfg,
		Store:   s,
		Goals:   goal.NewStore(s),
		Out:     os.Stdout,
		closers: []func(){func() { s.Close() }},
	}

	switch cfg.Backend {
	case config.BackendPostgres:
		pg, err := journal.OpenPostgres(ctx, cfg.PostgresURL)
		if err != nil {
			c.Close()
			return nil, err
		}
		c.Repo = pg
		c.closers = append(c.closers, pg.Close)
	case config.BackendFirestore:
		repo, closeDocs, err := openRemote(ctx, cfg)
		if err != nil {
			c.Close()
			return nil, err
		}
		c.Repo = repo
		c.closers = append(c.closers, closeDocs)
	default:
		c.Repo = journal.NewKVRepository(s)
	}

	logger.Debug("Opened backend", "backend", cfg.Backend, "db", cfg.DBPath)
	return c, nil
}

func openRemote(ctx context.Context, cfg config.Config) (journal.Repository, func(), error) {
	app, err := remote.NewApp(ctx, remote.Config{
		ProjectID:       cfg.FirebaseProjectID,
		CredentialsFile: cfg.FirebaseCredentialsFile,
	})
	if err != nil {
		return nil, nil, err
	}
	users, err := remote.NewAuth(ctx, app)
	if err != nil {
		return nil, nil, err
	}
	user, err := remote.CurrentUser(ctx, users, cfg.FirebaseUserEmail)
	if err != nil {
		return nil, nil, err
	}
	docs, err := remote.NewDocuments(ctx, app)
	if err != nil {
		return nil, nil, err
	}
	return journal.NewRemoteRepository(docs, user.UID), func() { docs.Close() }, nil
}

// Close releases backends in reverse open order.
func (c *Context) Close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
	c.closers = nil
}

func (c *Context) Flow() *checkin.Flow {
	return checkin.NewFlow(c.Repo, c.Goals, c.Config.AmountStep)
}

func (c *Context) Counselor() *counsel.Client {
	return counsel.New(counsel.Config{
		APIKey:  c.Config.OpenAIKey,
		Model:   c.Config.OpenAIModel,
		BaseURL: c.Config.OpenAIBaseURL,
	})
}
