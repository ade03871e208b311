package migrate

import (
	"context"
	"errors"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	pgxmock "github.com/pashagolub/pgxmock/v4"

	"github.com/deicod/blogapi/internal/orm/migrations"
)

func newMock(t *testing.T) pgxmock.PgxConnIface {
	t.Helper()
	mock, err := pgxmock.NewConn(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherEqual))
	if err != nil {
		t.Fatalf("pgxmock.NewConn: %v", err)
	}
	t.Cleanup(func() { _ = mock.Close(context.Background()) })
	return mock
}

func TestParseVersion(t *testing.T) {
	cases := map[string]string{
		"0001_init.sql":        "0001",
		"20240101__create.sql": "20240101",
		"feature-a.sql":        "feature",
		"plain.sql":            "plain",
	}
	for name, want := range cases {
		got, err := ParseVersion(name)
		if err != nil {
			t.Fatalf("ParseVersion(%q) unexpected error: %v", name, err)
		}
		if got != want {
			t.Fatalf("ParseVersion(%q) = %q, want %q", name, got, want)
		}
	}
	if _, err := ParseVersion(""); err == nil {
		t.Fatal("ParseVersion with empty string should error")
	}
}

func TestDiscoverOrdersMigrations(t *testing.T) {
	fsys := fstest.MapFS{
		"migrations/002_second.sql": &fstest.MapFile{Data: []byte("-- noop")},
		"migrations/001_first.sql":  &fstest.MapFile{Data: []byte("-- noop")},
		"migrations/readme.txt":     &fstest.MapFile{Data: []byte("ignore")},
	}

	migs, err := Discover(context.Background(), fsys, "migrations")
	if err != nil {
		t.Fatalf("Discover error: %v", err)
	}
	if len(migs) != 2 || migs[0].Name != "001_first.sql" || migs[1].Name != "002_second.sql" {
		t.Fatalf("Discover order wrong: %+v", migs)
	}

	fsys["migrations/003_dup.sql"] = &fstest.MapFile{Data: []byte("-- noop")}
	fsys["migrations/003_dup_again.sql"] = &fstest.MapFile{Data: []byte("-- noop")}
	if _, err := Discover(context.Background(), fsys, "migrations"); err == nil {
		t.Fatal("expected duplicate version error")
	}
}

func TestDiscoverMissingDirectory(t *testing.T) {
	migs, err := Discover(context.Background(), fstest.MapFS{}, "migrations")
	if err != nil || migs != nil {
		t.Fatalf("expected no migrations and no error, got %v %v", migs, err)
	}
}

func TestEmbeddedMigrations(t *testing.T) {
	migs, err := Discover(context.Background(), migrations.FS, migrations.Dir)
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	if len(migs) != 1 || migs[0].Version != "0001" {
		t.Fatalf("unexpected embedded migrations: %+v", migs)
	}
	raw, err := migrations.FS.ReadFile(migs[0].Path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	for _, want := range []string{"CREATE TABLE IF NOT EXISTS users", "email text NOT NULL UNIQUE", "published boolean NOT NULL DEFAULT false", "REFERENCES users (id)"} {
		if !strings.Contains(string(raw), want) {
			t.Fatalf("expected %q in initial migration", want)
		}
	}
}

func TestApplyExecutesPendingMigrations(t *testing.T) {
	mock := newMock(t)
	fsys := fstest.MapFS{
		"migrations/001_first.sql":  &fstest.MapFile{Data: []byte("create table first;")},
		"migrations/010_second.sql": &fstest.MapFile{Data: []byte("create table second;")},
	}

	mock.ExpectBeginTx(pgx.TxOptions{})
	mock.ExpectExec(advisoryLockSQL).WithArgs(defaultAdvisoryLock).WillReturnResult(pgxmock.NewResult("SELECT", 1))
	mock.ExpectExec(createTrackingTableSQL).WillReturnResult(pgxmock.NewResult("CREATE", 0))
	mock.ExpectQuery(selectAppliedSQL).WillReturnRows(mock.NewRows([]string{"version"}).AddRow("001"))
	mock.ExpectExec("create table second;").WillReturnResult(pgxmock.NewResult("CREATE", 0))
	mock.ExpectExec(recordAppliedSQL).WithArgs("010").WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectCommit()

	plan, err := Apply(context.Background(), mock, fsys)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if len(plan.Pending) != 1 || plan.Pending[0].Version != "010" {
		t.Fatalf("unexpected applied set: %+v", plan.Pending)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestApplyReportsSQLPosition(t *testing.T) {
	mock := newMock(t)
	fsys := fstest.MapFS{
		"migrations/001_broken.sql": &fstest.MapFile{Data: []byte("create table ok;\ncreate tabel broken;")},
	}

	mock.ExpectBeginTx(pgx.TxOptions{})
	mock.ExpectExec(advisoryLockSQL).WithArgs(defaultAdvisoryLock).WillReturnResult(pgxmock.NewResult("SELECT", 1))
	mock.ExpectExec(createTrackingTableSQL).WillReturnResult(pgxmock.NewResult("CREATE", 0))
	mock.ExpectQuery(selectAppliedSQL).WillReturnRows(mock.NewRows([]string{"version"}))
	mock.ExpectExec("create table ok;\ncreate tabel broken;").WillReturnError(&pgconn.PgError{Code: "42601", Message: "syntax error", Position: 25})
	mock.ExpectRollback()

	_, err := Apply(context.Background(), mock, fsys)
	if err == nil {
		t.Fatal("expected apply error")
	}
	if !strings.HasPrefix(err.Error(), "migrations/001_broken.sql:2:8:") {
		t.Fatalf("expected file position in error, got %q", err)
	}
}

func TestApplyDetectsDrift(t *testing.T) {
	mock := newMock(t)
	fsys := fstest.MapFS{
		"migrations/001_first.sql": &fstest.MapFile{Data: []byte("create table first;")},
	}

	mock.ExpectBeginTx(pgx.TxOptions{})
	mock.ExpectExec(advisoryLockSQL).WithArgs(defaultAdvisoryLock).WillReturnResult(pgxmock.NewResult("SELECT", 1))
	mock.ExpectExec(createTrackingTableSQL).WillReturnResult(pgxmock.NewResult("CREATE", 0))
	mock.ExpectQuery(selectAppliedSQL).WillReturnRows(mock.NewRows([]string{"version"}).AddRow("001").AddRow("002"))
	mock.ExpectRollback()

	_, err := Apply(context.Background(), mock, fsys)
	var drift SchemaDriftError
	if !errors.As(err, &drift) {
		t.Fatalf("expected drift error, got %v", err)
	}
	if len(drift.Missing) != 1 || drift.Missing[0] != "002" {
		t.Fatalf("unexpected missing versions %v", drift.Missing)
	}
}

func TestPlanWithoutTrackingTable(t *testing.T) {
	mock := newMock(t)

	mock.ExpectBeginTx(pgx.TxOptions{})
	mock.ExpectExec(advisoryLockSQL).WithArgs(int64(7)).WillReturnResult(pgxmock.NewResult("SELECT", 1))
	mock.ExpectQuery(selectAppliedSQL).WillReturnError(&pgconn.PgError{Code: undefinedTable})
	mock.ExpectRollback()

	plan, err := Plan(context.Background(), mock, migrations.FS, WithDirectory(migrations.Dir), WithAdvisoryLock(7))
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}
	if len(plan.Pending) != 1 || len(plan.Applied) != 0 {
		t.Fatalf("unexpected plan %+v", plan)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestPositionToLineColumn(t *testing.T) {
	line, col := positionToLineColumn("select 1;\nselect bogus;", 18)
	if line != 2 || col != 8 {
		t.Fatalf("got %d:%d, want 2:8", line, col)
	}
}
