package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/deicod/blogapi/internal/config"
	"github.com/deicod/blogapi/internal/observability/logging"
	"github.com/deicod/blogapi/internal/observability/metrics"
	"github.com/deicod/blogapi/internal/observability/tracing"
	"github.com/deicod/blogapi/internal/orm/migrate"
	"github.com/deicod/blogapi/internal/orm/pg"
	"github.com/deicod/blogapi/internal/orm/runtime"
	"github.com/deicod/blogapi/internal/orm/store"
)

type migrationConn interface {
	migrate.TxStarter
	Close(ctx context.Context) error
}

// Indirections replaced in tests.
var (
	connectDB         = pg.Connect
	openMigrationConn = func(ctx context.Context, url string) (migrationConn, error) {
		return pgx.Connect(ctx, url)
	}
	newTraceProvider = tracing.NewProvider
)

// app holds the process-wide collaborators shared by serve and query.
type app struct {
	cfg     config.Config
	profile string
	dsn     string
	logger  *zap.Logger
	tracer  tracing.Tracer
	prom    *metrics.Prometheus
	db      *pg.DB
	client  *store.Client
	closers []func(context.Context) error
}

func loadConfig() (config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return config.Config{}, wrapError("read config", err, fmt.Sprintf("Check %s for YAML or duration syntax errors.", configFileName()), 1)
	}
	return cfg, nil
}

func configFileName() string {
	if configPath != "" {
		return configPath
	}
	return config.DefaultFile
}

// resolveDSN picks the database URL for the profile, rejecting unknown
// profiles when environments are configured.
func resolveDSN(command string, cfg config.Config, envFlag string) (string, string, error) {
	profile := config.Profile(envFlag)
	if envFlag != "" && len(cfg.Database.Environments) > 0 {
		if _, ok := cfg.Database.Environments[profile]; !ok {
			return "", "", unknownValue(command, "--env", envFlag, cfg.Profiles())
		}
	}
	dsn := cfg.DatabaseURL(profile)
	if dsn == "" {
		return "", "", CommandError{
			Message:    fmt.Sprintf("%s: database.url is not configured in %s", command, configFileName()),
			Suggestion: fmt.Sprintf("Set database.url, configure database.environments, or export %s.", config.EnvDatabaseURL),
			ExitCode:   2,
		}
	}
	return profile, dsn, nil
}

// newApp wires logging, tracing, metrics and the store from configuration.
func newApp(cmd *cobra.Command, command, envFlag string) (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	if verbose {
		cfg.Observability.Log.Level = "debug"
	}
	profile, dsn, err := resolveDSN(command, cfg, envFlag)
	if err != nil {
		return nil, err
	}

	obs := cfg.Observability
	logger, err := logging.New(logging.Config{Level: obs.Log.Level, Format: obs.Log.Format, Output: cmd.ErrOrStderr()})
	if err != nil {
		return nil, wrapError(command+": configure logging", err, "Use a level of debug, info, warn or error and a format of json or console.", 2)
	}
	a := &app{cfg: cfg, profile: profile, dsn: dsn, logger: logger}
	a.closers = append(a.closers, func(context.Context) error {
		_ = logger.Sync()
		return nil
	})

	ctx := cmd.Context()
	if obs.Tracing.Endpoint != "" {
		provider, err := newTraceProvider(ctx, tracing.ProviderConfig{
			Endpoint:    obs.Tracing.Endpoint,
			Insecure:    obs.Tracing.Insecure,
			ServiceName: obs.Tracing.ServiceName,
		})
		if err != nil {
			a.close(ctx)
			return nil, wrapError(command+": configure tracing", err, "Check observability.tracing.endpoint.", 1)
		}
		a.tracer = tracing.NewOTelTracer(provider, "")
		a.closers = append(a.closers, provider.Shutdown)
	}
	a.tracer = tracing.WithTracer(a.tracer)
	if obs.Metrics.Enabled {
		a.prom = metrics.NewPrometheus()
	}

	pool := cfg.Database.Pool
	opts := []pg.Option{pg.WithPoolConfig(pg.PoolConfig{
		MaxConns:          pool.MaxConns,
		MinConns:          pool.MinConns,
		MaxConnLifetime:   pool.MaxConnLifetime,
		MaxConnIdleTime:   pool.MaxConnIdleTime,
		HealthCheckPeriod: pool.HealthCheckPeriod,
	})}
	db, err := connectDB(ctx, dsn, opts...)
	if err != nil {
		a.close(ctx)
		return nil, wrapError(fmt.Sprintf("%s: connect database (%s)", command, profile), err, "Verify the database is reachable and credentials are correct.", 1)
	}
	db.UseObserver(a.queryObserver())
	a.db = db
	a.client = store.New(db)
	a.closers = append(a.closers, func(context.Context) error {
		db.Close()
		return nil
	})
	return a, nil
}

func (a *app) queryObserver() runtime.QueryObserver {
	orm := a.cfg.Observability.ORM
	var observer runtime.QueryObserver
	if orm.QueryLogging {
		observer.Logger = logging.QueryLogger(a.logger)
	}
	if orm.EmitSpans {
		observer.Tracer = a.tracer
	}
	if orm.CorrelationIDs {
		observer.Correlator = logging.Correlator
	}
	if a.prom != nil {
		observer.Collector = a.prom
	}
	return observer
}

func (a *app) collector() metrics.Collector {
	if a.prom == nil {
		return metrics.NoopCollector{}
	}
	return a.prom
}

// close releases resources in reverse order of acquisition.
func (a *app) close(ctx context.Context) error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](ctx); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
