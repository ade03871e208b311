package config

import (
	"os"
	"path/filepath"
	"sort"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "blogapi.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	t.Setenv(EnvAddr, "")
	t.Setenv(EnvLogLevel, "")
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if diff := cmp.Diff(Default(), cfg); diff != "" {
		t.Fatalf("defaults mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadOverlaysFile(t *testing.T) {
	t.Setenv(EnvAddr, "")
	t.Setenv(EnvLogLevel, "")
	path := writeFile(t, `
server:
  addr: ":8080"
  read_timeout: 3s
  playground: false
database:
  url: postgres://localhost/blog
  pool:
    max_conns: 20
    max_conn_idle_time: 1m
  environments:
    test:
      url: postgres://localhost/blog_test
observability:
  log:
    level: debug
  orm:
    query_logging: true
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Addr != ":8080" || cfg.Server.ReadTimeout != 3*time.Second || cfg.Server.Playground {
		t.Fatalf("unexpected server config: %+v", cfg.Server)
	}
	if cfg.Server.WriteTimeout != 15*time.Second {
		t.Fatalf("expected default write timeout to survive, got %s", cfg.Server.WriteTimeout)
	}
	if cfg.Database.Pool.MaxConns != 20 || cfg.Database.Pool.MaxConnIdleTime != time.Minute {
		t.Fatalf("unexpected pool config: %+v", cfg.Database.Pool)
	}
	if !cfg.Observability.ORM.QueryLogging || !cfg.Observability.ORM.CorrelationIDs {
		t.Fatalf("unexpected orm config: %+v", cfg.Observability.ORM)
	}
	if cfg.Observability.Log.Level != "debug" || cfg.Observability.Log.Format != "json" {
		t.Fatalf("unexpected log config: %+v", cfg.Observability.Log)
	}
}

func TestLoadRejectsInvalidDuration(t *testing.T) {
	path := writeFile(t, "server:\n  read_timeout: soon\n")
	if _, err := Load(path); err == nil {
		t.Fatal("expected duration error")
	}
}

func TestLoadRejectsInvalidYAML(t *testing.T) {
	path := writeFile(t, "server: [unterminated\n")
	if _, err := Load(path); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestEnvironmentOverrides(t *testing.T) {
	t.Setenv(EnvAddr, ":9999")
	t.Setenv(EnvLogLevel, "warn")
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Addr != ":9999" || cfg.Observability.Log.Level != "warn" {
		t.Fatalf("env overrides not applied: %+v", cfg)
	}
}

func TestDatabaseURLResolution(t *testing.T) {
	cfg := Default()
	cfg.Database.URL = "postgres://base"
	cfg.Database.Environments = map[string]EnvironmentDatabase{
		"test":  {URL: "postgres://test"},
		"empty": {},
	}

	t.Setenv(EnvDatabaseURL, "")
	if got := cfg.DatabaseURL("dev"); got != "postgres://base" {
		t.Fatalf("dev: %q", got)
	}
	if got := cfg.DatabaseURL("test"); got != "postgres://test" {
		t.Fatalf("test: %q", got)
	}
	if got := cfg.DatabaseURL("empty"); got != "postgres://base" {
		t.Fatalf("empty: %q", got)
	}

	t.Setenv(EnvDatabaseURL, "postgres://override")
	if got := cfg.DatabaseURL("test"); got != "postgres://override" {
		t.Fatalf("override: %q", got)
	}

	profiles := cfg.Profiles()
	sort.Strings(profiles)
	if diff := cmp.Diff([]string{"empty", "test"}, profiles); diff != "" {
		t.Fatalf("profiles (-want +got):\n%s", diff)
	}
}

func TestProfile(t *testing.T) {
	t.Setenv(EnvProfile, "")
	if got := Profile(""); got != "dev" {
		t.Fatalf("default profile %q", got)
	}
	t.Setenv(EnvProfile, "staging")
	if got := Profile(""); got != "staging" {
		t.Fatalf("env profile %q", got)
	}
	if got := Profile("prod"); got != "prod" {
		t.Fatalf("flag profile %q", got)
	}
}
