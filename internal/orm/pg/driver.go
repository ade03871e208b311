package pg

import (
	"context"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/deicod/blogapi/internal/orm/runtime"
)

// Pool exposes the subset of pgxpool behaviour required by the store.
type Pool interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Ping(ctx context.Context) error
	Close()
}

var _ Pool = (*pgxpool.Pool)(nil)

// DB is the process-wide database handle. It is safe for concurrent use and
// holds no per-request state.
type DB struct {
	Pool     Pool
	Observer runtime.QueryObserver
}

// PoolConfig describes connection pool tuning knobs exposed via configuration.
type PoolConfig struct {
	MaxConns          int32
	MinConns          int32
	MaxConnLifetime   time.Duration
	MaxConnIdleTime   time.Duration
	HealthCheckPeriod time.Duration
}

// Option configures pgx connections.
type Option func(*pgxpool.Config)

// Connect initialises a pgx pool with optional configuration overrides.
func Connect(ctx context.Context, url string, opts ...Option) (*DB, error) {
	cfg, err := newPoolConfig(url, opts...)
	if err != nil {
		return nil, err
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return &DB{Pool: pool}, nil
}

// Close releases the underlying pool.
func (db *DB) Close() {
	if db == nil || db.Pool == nil {
		return
	}
	db.Pool.Close()
}

// Ping verifies a connection can be acquired and used.
func (db *DB) Ping(ctx context.Context) error {
	return db.Pool.Ping(ctx)
}

// UseObserver attaches a query observer to the database handle.
func (db *DB) UseObserver(observer runtime.QueryObserver) {
	if db == nil {
		return
	}
	db.Observer = observer
}

// Select issues a SELECT generated from a runtime spec.
func (db *DB) Select(ctx context.Context, spec runtime.SelectSpec) (pgx.Rows, error) {
	sql, args := runtime.BuildSelectSQL(spec)
	return db.Query(ctx, runtime.OperationSelect, spec.Table, sql, args...)
}

// SelectRow issues a single-row SELECT generated from a runtime spec.
func (db *DB) SelectRow(ctx context.Context, spec runtime.SelectSpec) pgx.Row {
	sql, args := runtime.BuildSelectSQL(spec)
	return db.QueryRow(ctx, runtime.OperationSelect, spec.Table, sql, args...)
}

// Query runs a statement returning rows.
func (db *DB) Query(ctx context.Context, op runtime.QueryOperation, table, sql string, args ...any) (pgx.Rows, error) {
	obs := db.Observer.Observe(ctx, op, table, sql, args)
	rows, err := db.Pool.Query(obs.Context(), sql, args...)
	obs.End(err)
	return rows, err
}

// QueryRow runs a statement returning at most one row. The observation ends
// when the row is scanned.
func (db *DB) QueryRow(ctx context.Context, op runtime.QueryOperation, table, sql string, args ...any) pgx.Row {
	obs := db.Observer.Observe(ctx, op, table, sql, args)
	return &observedRow{Row: db.Pool.QueryRow(obs.Context(), sql, args...), obs: obs}
}

type observedRow struct {
	pgx.Row
	obs  runtime.QueryObservation
	once sync.Once
}

func (r *observedRow) Scan(dest ...any) error {
	err := r.Row.Scan(dest...)
	r.once.Do(func() { r.obs.End(err) })
	return err
}

func newPoolConfig(url string, opts ...Option) (*pgxpool.Config, error) {
	cfg, err := pgxpool.ParseConfig(url)
	if err != nil {
		return nil, err
	}
	applyDefaults(cfg)
	for _, opt := range opts {
		if opt != nil {
			opt(cfg)
		}
	}
	return cfg, nil
}

func applyDefaults(cfg *pgxpool.Config) {
	cfg.MaxConns = 10
	cfg.MinConns = 2
	cfg.MaxConnLifetime = time.Hour
}

// WithMaxConns sets the maximum pool size.
func WithMaxConns(n int32) Option {
	return func(cfg *pgxpool.Config) { cfg.MaxConns = n }
}

// WithMinConns sets the minimum pool size.
func WithMinConns(n int32) Option {
	return func(cfg *pgxpool.Config) { cfg.MinConns = n }
}

// WithMaxConnLifetime configures the maximum connection lifetime.
func WithMaxConnLifetime(d time.Duration) Option {
	return func(cfg *pgxpool.Config) { cfg.MaxConnLifetime = d }
}

// WithMaxConnIdleTime configures how long an idle connection may remain in the pool.
func WithMaxConnIdleTime(d time.Duration) Option {
	return func(cfg *pgxpool.Config) { cfg.MaxConnIdleTime = d }
}

// WithHealthCheckPeriod configures the background health check period.
func WithHealthCheckPeriod(d time.Duration) Option {
	return func(cfg *pgxpool.Config) { cfg.HealthCheckPeriod = d }
}

// WithPoolConfig applies the non-zero settings of pc.
func WithPoolConfig(pc PoolConfig) Option {
	return func(cfg *pgxpool.Config) {
		if pc.MaxConns > 0 {
			cfg.MaxConns = pc.MaxConns
		}
		if pc.MinConns > 0 {
			cfg.MinConns = pc.MinConns
		}
		if pc.MaxConnLifetime > 0 {
			cfg.MaxConnLifetime = pc.MaxConnLifetime
		}
		if pc.MaxConnIdleTime > 0 {
			cfg.MaxConnIdleTime = pc.MaxConnIdleTime
		}
		if pc.HealthCheckPeriod > 0 {
			cfg.HealthCheckPeriod = pc.HealthCheckPeriod
		}
	}
}
