package database

import (
	"context"
	_ "embed"
	"fmt"
	"net/url"
	"strconv"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
)

//go:embed schema.sql
var schema string

// NewPostgres returns a lazy handle to a Postgres database reached through pgx.
// The schema is applied on the first successful connection.
func NewPostgres(databaseURL string, opts Options) *Handle[*sqlx.DB] {
	opts = opts.withDefaults()
	return NewHandle("postgres", opts.ConnectTimeout, Driver[*sqlx.DB]{
		Connect: func(ctx context.Context) (*sqlx.DB, error) {
			dsn, err := withConnectTimeout(databaseURL, opts.ConnectTimeout)
			if err != nil {
				return nil, err
			}

			db, err := sqlx.ConnectContext(ctx, "pgx", dsn)
			if err != nil {
				return nil, fmt.Errorf("connect database: %w", err)
			}

			db.SetMaxOpenConns(25)
			db.SetMaxIdleConns(5)
			db.SetConnMaxLifetime(5 * time.Minute)
			db.SetConnMaxIdleTime(opts.SocketTimeout)

			if _, err := db.ExecContext(ctx, schema); err != nil {
				db.Close()
				return nil, fmt.Errorf("apply schema: %w", err)
			}
			return db, nil
		},
		Ping: func(ctx context.Context, db *sqlx.DB) error {
			return db.PingContext(ctx)
		},
		Close: func(_ context.Context, db *sqlx.DB) error {
			return db.Close()
		},
	})
}

// withConnectTimeout sets connect_timeout on a URL-style DSN unless the caller already did.
func withConnectTimeout(databaseURL string, timeout time.Duration) (string, error) {
	u, err := url.Parse(databaseURL)
	if err != nil {
		return "", fmt.Errorf("parse database url: %w", err)
	}
	if u.Scheme != "postgres" && u.Scheme != "postgresql" {
		return databaseURL, nil
	}
	q := u.Query()
	if q.Get("connect_timeout") == "" {
		secs := int(timeout.Round(time.Second) / time.Second)
		if secs < 1 {
			secs = 1
		}
		q.Set("connect_timeout", strconv.Itoa(secs))
		u.RawQuery = q.Encode()
	}
	return u.String(), nil
}
