// Package postgres calls the introspection procedure over a direct
// database connection instead of the REST gateway. It is a pgxpool-backed
// implementation of fetch.Client.
package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/schemadump/schemadump/internal/errs"
	"github.com/schemadump/schemadump/internal/schema"
)

const (
	defaultMaxConns       = 2
	defaultConnectTimeout = 10 * time.Second

	// SQLSTATE for "function does not exist" — the introspection procedure
	// was never installed on this database.
	pgErrUndefinedFunction = "42883"
)

// Client is a direct-connection implementation of fetch.Client.
// It is safe for concurrent use by multiple goroutines.
type Client struct {
	pool     *pgxpool.Pool
	function string
}

// New connects to PostgreSQL using the provided DSN and returns a Client.
// It calls Ping to validate the connection before returning. The pool is
// deliberately tiny — the tool issues exactly one call per run.
func New(ctx context.Context, dsn, function string) (*Client, error) {
	poolCfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, errs.Wrap(errs.ErrKindConfig, "invalid DSN", err)
	}
	poolCfg.MaxConns = defaultMaxConns
	poolCfg.ConnConfig.ConnectTimeout = defaultConnectTimeout

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, errs.Wrap(errs.ErrKindConnectionFailed, "failed to create connection pool", err)
	}

	c := &Client{pool: pool, function: function}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, mapError(err, "ping failed")
	}
	return c, nil
}

// Close drains the connection pool.
func (c *Client) Close() {
	c.pool.Close()
}

// FetchSchema executes SELECT <function>() and decodes the JSON document it
// returns. A SQL NULL result is a legal null payload.
func (c *Client) FetchSchema(ctx context.Context) (*schema.Info, []byte, error) {
	q := fmt.Sprintf("SELECT %s()", pgx.Identifier{c.function}.Sanitize())

	var raw []byte
	if err := c.pool.QueryRow(ctx, q).Scan(&raw); err != nil {
		return nil, nil, mapError(err, "introspection call failed")
	}

	if raw == nil {
		return nil, nil, nil
	}

	var info schema.Info
	if err := json.Unmarshal(raw, &info); err != nil {
		return nil, raw, errs.Wrap(errs.ErrKindConnectionFailed, "decode introspection payload", err)
	}
	return &info, raw, nil
}

// mapError translates pgx / pgconn native errors into *errs.Error.
func mapError(err error, msg string) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return errs.Wrap(errs.ErrKindConnectionFailed, msg, err)
	}
	if errors.Is(err, pgx.ErrNoRows) {
		// The procedure returns exactly one row; no rows means it misbehaved.
		return errs.Wrap(errs.ErrKindConnectionFailed, msg+": empty result", err)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if pgErr.Code == pgErrUndefinedFunction {
			return errs.Wrap(errs.ErrKindInvalidInput,
				fmt.Sprintf("%s: introspection function not installed (%s)", msg, pgErr.Message), err)
		}
		// Class 08 — connection exceptions
		if len(pgErr.Code) >= 2 && pgErr.Code[:2] == "08" {
			return errs.Wrap(errs.ErrKindConnectionFailed, msg, err)
		}
		return errs.Wrap(errs.ErrKindConnectionFailed,
			fmt.Sprintf("%s: %s", msg, pgErr.Message), err)
	}

	return errs.Wrap(errs.ErrKindConnectionFailed, msg, err)
}
