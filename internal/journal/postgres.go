package journal

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresRepository keeps entries in a journal_entries table. The serial
// position column preserves storage order.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// OpenPostgres connects and creates the table if needed.
func OpenPostgres(ctx context.Context, connStr string) (*PostgresRepository, error) {
	cfg, err := pgxpool.ParseConfig(connStr)
	if err != nil {
		return nil, fmt.Errorf("parse postgres url: %w", err)
	}
	cfg.MaxConns = 4

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("%w: connect: %v", ErrRemoteUnavailable, err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("%w: ping: %v", ErrRemoteUnavailable, err)
	}

	r := &PostgresRepository{pool: pool}
	if err := r.migrate(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return r, nil
}

func (r *PostgresRepository) Close() {
	r.pool.Close()
}

func (r *PostgresRepository) migrate(ctx context.Context) error {
	const ddl = `
	CREATE TABLE IF NOT EXISTS journal_entries (
		position   BIGSERIAL PRIMARY KEY,
		date       TEXT NOT NULL,
		drank      BOOLEAN NOT NULL DEFAULT FALSE,
		amount     INTEGER NOT NULL DEFAULT 0 CHECK (amount >= 0),
		feeling    TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	);
	CREATE INDEX IF NOT EXISTS idx_journal_entries_date ON journal_entries(date);`
	if _, err := r.pool.Exec(ctx, ddl); err != nil {
		return fmt.Errorf("migrate journal_entries: %w", err)
	}
	return nil
}

func (r *PostgresRepository) Append(ctx context.Context, e Entry) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO journal_entries (date, drank, amount, feeling) VALUES ($1, $2, $3, $4)`,
		e.Date, e.Drank, e.Amount, string(e.Feeling),
	)
	if err != nil {
		return fmt.Errorf("%w: insert: %v", ErrRemoteUnavailable, err)
	}
	return nil
}

func (r *PostgresRepository) Upsert(ctx context.Context, e Entry) error {
	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx,
			`UPDATE journal_entries SET drank = $2, amount = $3, feeling = $4
			 WHERE position = (SELECT min(position) FROM journal_entries WHERE date = $1)`,
			e.Date, e.Drank, e.Amount, string(e.Feeling),
		)
		if err != nil {
			return err
		}
		if tag.RowsAffected() > 0 {
			return nil
		}
		_, err = tx.Exec(ctx,
			`INSERT INTO journal_entries (date, drank, amount, feeling) VALUES ($1, $2, $3, $4)`,
			e.Date, e.Drank, e.Amount, string(e.Feeling),
		)
		return err
	})
	if err != nil {
		return fmt.Errorf("%w: upsert %s: %v", ErrRemoteUnavailable, e.Date, err)
	}
	return nil
}

func (r *PostgresRepository) LoadAll(ctx context.Context) ([]Entry, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT date, drank, amount, feeling FROM journal_entries ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("%w: query: %v", ErrRemoteUnavailable, err)
	}
	defer rows.Close()

	entries := []Entry{}
	for rows.Next() {
		var e Entry
		var feeling string
		if err := rows.Scan(&e.Date, &e.Drank, &e.Amount, &feeling); err != nil {
			return nil, fmt.Errorf("%w: scan: %v", ErrRemoteUnavailable, err)
		}
		e.Feeling, _ = ParseMood(feeling)
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: rows: %v", ErrRemoteUnavailable, err)
	}
	return entries, nil
}
