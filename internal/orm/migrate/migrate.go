package migrate

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const (
	defaultDirectory    = "migrations"
	defaultAdvisoryLock = int64(0x626c6f67)

	createTrackingTableSQL = `CREATE TABLE IF NOT EXISTS blogapi_schema_migrations (
    version    text PRIMARY KEY,
    applied_at timestamptz NOT NULL DEFAULT now()
)`
	selectAppliedSQL = "SELECT version FROM blogapi_schema_migrations ORDER BY applied_at, version"
	recordAppliedSQL = "INSERT INTO blogapi_schema_migrations (version) VALUES ($1) ON CONFLICT DO NOTHING"
	advisoryLockSQL  = "SELECT pg_advisory_xact_lock($1)"

	undefinedTable = "42P01"
)

// TxStarter abstracts pgx connections capable of starting a transaction.
type TxStarter interface {
	BeginTx(ctx context.Context, txOptions pgx.TxOptions) (pgx.Tx, error)
}

var _ TxStarter = (*pgx.Conn)(nil)

// Options configures how migrations are discovered and applied.
type Options struct {
	// Directory is the root within the supplied fs.FS holding the .sql files.
	Directory string
	// AdvisoryLockID overrides the pg_advisory_xact_lock key guarding runs.
	AdvisoryLockID int64
}

// Option mutates Options.
type Option func(*Options)

// WithDirectory instructs Plan and Apply to look for migration files under dir.
func WithDirectory(dir string) Option {
	return func(o *Options) {
		if dir != "" {
			o.Directory = dir
		}
	}
}

// WithAdvisoryLock overrides the advisory lock identifier.
func WithAdvisoryLock(id int64) Option {
	return func(o *Options) {
		if id != 0 {
			o.AdvisoryLockID = id
		}
	}
}

func resolveOptions(opts ...Option) Options {
	settings := Options{Directory: defaultDirectory, AdvisoryLockID: defaultAdvisoryLock}
	for _, opt := range opts {
		if opt != nil {
			opt(&settings)
		}
	}
	return settings
}

// FileMigration represents a single SQL migration discovered in a filesystem.
type FileMigration struct {
	// Version is the identifier recorded in blogapi_schema_migrations.
	Version string
	// Name is the base filename (e.g. 0001_init.sql).
	Name string
	// Path is relative to the root of the provided fs.FS.
	Path string
}

// PlanResult lists the migrations already recorded and those still pending.
type PlanResult struct {
	Applied []string
	Pending []FileMigration
}

// SchemaDriftError signals that the database recorded versions which have no
// matching file.
type SchemaDriftError struct {
	Missing []string
}

func (e SchemaDriftError) Error() string {
	return fmt.Sprintf("migrate: applied versions missing locally: %s", strings.Join(e.Missing, ", "))
}

// ParseVersion extracts the version identifier from a migration filename: the
// part of the stem before the first "__", "_" or "-".
func ParseVersion(name string) (string, error) {
	if name == "" {
		return "", errors.New("migrate: empty filename")
	}
	base := strings.TrimSuffix(name, path.Ext(name))
	if base == "" {
		return "", fmt.Errorf("migrate: could not derive version from %q", name)
	}
	for _, sep := range []string{"__", "_", "-"} {
		if idx := strings.Index(base, sep); idx > 0 {
			return base[:idx], nil
		}
	}
	return base, nil
}

// Discover locates .sql migrations within dir and returns them ordered by
// version. A missing directory yields no migrations.
func Discover(ctx context.Context, fsys fs.FS, dir string) ([]FileMigration, error) {
	if fsys == nil {
		return nil, errors.New("migrate: filesystem cannot be nil")
	}
	if dir == "" {
		dir = defaultDirectory
	}
	if _, err := fs.Stat(fsys, dir); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("migrate: inspect %s: %w", dir, err)
	}

	var files []FileMigration
	err := fs.WalkDir(fsys, dir, func(p string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() || !strings.EqualFold(path.Ext(d.Name()), ".sql") {
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		version, err := ParseVersion(d.Name())
		if err != nil {
			return fmt.Errorf("migrate: %s: %w", p, err)
		}
		files = append(files, FileMigration{Version: version, Name: d.Name(), Path: p})
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(files, func(i, j int) bool {
		if files[i].Version == files[j].Version {
			return files[i].Path < files[j].Path
		}
		return files[i].Version < files[j].Version
	})

	seen := make(map[string]string, len(files))
	for _, f := range files {
		if prev, ok := seen[f.Version]; ok {
			return nil, fmt.Errorf("migrate: duplicate version %q in %s and %s", f.Version, prev, f.Path)
		}
		seen[f.Version] = f.Path
	}
	return files, nil
}

// Plan reports pending migrations without applying them.
func Plan(ctx context.Context, conn TxStarter, fsys fs.FS, opts ...Option) (PlanResult, error) {
	if conn == nil {
		return PlanResult{}, errors.New("migrate: nil connection")
	}
	settings := resolveOptions(opts...)
	migrations, err := Discover(ctx, fsys, settings.Directory)
	if err != nil {
		return PlanResult{}, err
	}

	tx, err := lockedTx(ctx, conn, settings)
	if err != nil {
		return PlanResult{}, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	applied, err := appliedVersions(ctx, tx)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == undefinedTable {
			return PlanResult{Pending: migrations}, nil
		}
		return PlanResult{}, err
	}
	return diff(migrations, applied)
}

// Apply executes unapplied migrations in version order and records them. All
// work occurs inside a single transaction guarded by pg_advisory_xact_lock.
func Apply(ctx context.Context, conn TxStarter, fsys fs.FS, opts ...Option) (PlanResult, error) {
	if conn == nil {
		return PlanResult{}, errors.New("migrate: nil connection")
	}
	settings := resolveOptions(opts...)
	migrations, err := Discover(ctx, fsys, settings.Directory)
	if err != nil {
		return PlanResult{}, err
	}

	tx, err := lockedTx(ctx, conn, settings)
	if err != nil {
		return PlanResult{}, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback(ctx)
		}
	}()

	if _, err := tx.Exec(ctx, createTrackingTableSQL); err != nil {
		return PlanResult{}, fmt.Errorf("migrate: ensure tracking table: %w", err)
	}
	applied, err := appliedVersions(ctx, tx)
	if err != nil {
		return PlanResult{}, err
	}
	plan, err := diff(migrations, applied)
	if err != nil {
		return PlanResult{}, err
	}

	for _, mig := range plan.Pending {
		raw, err := fs.ReadFile(fsys, mig.Path)
		if err != nil {
			return PlanResult{}, fmt.Errorf("migrate: %s: %w", mig.Path, err)
		}
		if _, err := tx.Exec(ctx, string(raw)); err != nil {
			return PlanResult{}, wrapExecError(mig.Path, string(raw), err)
		}
		if _, err := tx.Exec(ctx, recordAppliedSQL, mig.Version); err != nil {
			return PlanResult{}, fmt.Errorf("migrate: record %s: %w", mig.Version, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return PlanResult{}, fmt.Errorf("migrate: commit transaction: %w", err)
	}
	committed = true
	return plan, nil
}

func lockedTx(ctx context.Context, conn TxStarter, settings Options) (pgx.Tx, error) {
	tx, err := conn.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, fmt.Errorf("migrate: begin transaction: %w", err)
	}
	if _, err := tx.Exec(ctx, advisoryLockSQL, settings.AdvisoryLockID); err != nil {
		_ = tx.Rollback(ctx)
		return nil, fmt.Errorf("migrate: acquire advisory lock: %w", err)
	}
	return tx, nil
}

func appliedVersions(ctx context.Context, tx pgx.Tx) ([]string, error) {
	rows, err := tx.Query(ctx, selectAppliedSQL)
	if err != nil {
		return nil, fmt.Errorf("migrate: list applied versions: %w", err)
	}
	defer rows.Close()
	var versions []string
	for rows.Next() {
		var version string
		if err := rows.Scan(&version); err != nil {
			return nil, fmt.Errorf("migrate: read applied versions: %w", err)
		}
		versions = append(versions, version)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("migrate: read applied versions: %w", err)
	}
	return versions, nil
}

func diff(migrations []FileMigration, applied []string) (PlanResult, error) {
	known := make(map[string]struct{}, len(migrations))
	for _, mig := range migrations {
		known[mig.Version] = struct{}{}
	}
	appliedSet := make(map[string]struct{}, len(applied))
	var missing []string
	for _, version := range applied {
		appliedSet[version] = struct{}{}
		if _, ok := known[version]; !ok {
			missing = append(missing, version)
		}
	}
	if len(missing) > 0 {
		return PlanResult{}, SchemaDriftError{Missing: missing}
	}
	result := PlanResult{Applied: applied}
	for _, mig := range migrations {
		if _, ok := appliedSet[mig.Version]; !ok {
			result.Pending = append(result.Pending, mig)
		}
	}
	return result, nil
}

func wrapExecError(path, sql string, execErr error) error {
	var pgErr *pgconn.PgError
	if errors.As(execErr, &pgErr) {
		if pgErr.Line > 0 {
			return fmt.Errorf("%s:%d: %w", path, pgErr.Line, execErr)
		}
		if pgErr.Position > 0 {
			line, column := positionToLineColumn(sql, int(pgErr.Position))
			return fmt.Errorf("%s:%d:%d: %w", path, line, column, execErr)
		}
	}
	return fmt.Errorf("%s: %w", path, execErr)
}

// positionToLineColumn converts a 1-indexed character offset into a line and column.
func positionToLineColumn(sql string, position int) (int, int) {
	line, column := 1, 1
	if position <= 0 {
		return line, column
	}
	counted := 0
	for _, r := range sql {
		counted++
		if counted == position {
			break
		}
		if r == '\n' {
			line++
			column = 1
			continue
		}
		column++
	}
	return line, column
}
