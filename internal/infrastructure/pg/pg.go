package pg

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"optionquotes-service/internal/application"
	infraconfig "optionquotes-service/internal/infrastructure/config"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PoolOptions sizes the pool. Zero values fall back to infraconfig defaults.
type PoolOptions struct {
	MaxConns          int32
	MinConns          int32
	MaxConnIdleTime   time.Duration
	ConnectTimeout    time.Duration
	AcquireTimeout    time.Duration
	QueryTimeout      time.Duration
	HealthCheckPeriod time.Duration
}

func (o PoolOptions) withDefaults() PoolOptions {
	if o.MaxConns <= 0 {
		o.MaxConns = infraconfig.DefaultPGMaxConns
	}
	if o.MinConns < 0 || o.MinConns > o.MaxConns {
		o.MinConns = infraconfig.DefaultPGMinConns
	}
	if o.MaxConnIdleTime <= 0 {
		o.MaxConnIdleTime = infraconfig.DefaultPGMaxConnIdle
	}
	if o.ConnectTimeout <= 0 {
		o.ConnectTimeout = infraconfig.DefaultPGConnectTimeout
	}
	if o.AcquireTimeout <= 0 {
		o.AcquireTimeout = infraconfig.DefaultPGAcquireTimeout
	}
	if o.HealthCheckPeriod <= 0 {
		o.HealthCheckPeriod = infraconfig.DefaultPGHealthCheck
	}
	return o
}

// DB owns the connection pool. Every unit of work acquires through it with a
// bounded wait and releases on return.
type DB struct {
	Pool           *pgxpool.Pool
	acquireTimeout time.Duration
}

func Connect(ctx context.Context, url string, opts PoolOptions) (*DB, error) {
	opts = opts.withDefaults()
	cfg, err := pgxpool.ParseConfig(url)
	if err != nil {
		return nil, fmt.Errorf("parse connection string: %w", err)
	}
	cfg.MaxConns, cfg.MinConns = opts.MaxConns, opts.MinConns
	cfg.MaxConnIdleTime = opts.MaxConnIdleTime
	cfg.HealthCheckPeriod = opts.HealthCheckPeriod
	cfg.ConnConfig.ConnectTimeout = opts.ConnectTimeout
	if opts.QueryTimeout > 0 {
		cfg.ConnConfig.RuntimeParams["statement_timeout"] = strconv.FormatInt(opts.QueryTimeout.Milliseconds(), 10)
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("%w: create pool: %w", application.ErrConnection, err)
	}
	return &DB{Pool: pool, acquireTimeout: opts.AcquireTimeout}, nil
}

func (d *DB) Close() { d.Pool.Close() }

func (d *DB) Ping(ctx context.Context) error {
	conn, err := d.acquire(ctx)
	if err != nil {
		return err
	}
	defer conn.Release()
	if err := conn.Ping(ctx); err != nil {
		return classify("ping", err)
	}
	return nil
}

func (d *DB) acquire(ctx context.Context) (*pgxpool.Conn, error) {
	actx, cancel := context.WithTimeout(ctx, d.acquireTimeout)
	defer cancel()
	conn, err := d.Pool.Acquire(actx)
	if err != nil {
		return nil, fmt.Errorf("%w: acquire within %s: %w", application.ErrConnection, d.acquireTimeout, err)
	}
	return conn, nil
}

// querier is the part of pgx.Tx and *pgxpool.Conn the repos use.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// withQuerier runs fn on the transaction carried by ctx, or on a freshly acquired
// pooled connection that is released afterwards.
func (d *DB) withQuerier(ctx context.Context, fn func(q querier) error) error {
	if tx := txFromCtx(ctx); tx != nil {
		return fn(tx)
	}
	conn, err := d.acquire(ctx)
	if err != nil {
		return err
	}
	defer conn.Release()
	return fn(conn)
}
