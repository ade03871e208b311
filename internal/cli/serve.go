package cli

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/deicod/blogapi/internal/graphql"
	"github.com/deicod/blogapi/internal/graphql/resolvers"
	"github.com/deicod/blogapi/internal/graphql/server"
)

// serverReady observes the bound URL; tests use it to find ephemeral ports.
var serverReady func(url string)

func newServeCmd() *cobra.Command {
	var (
		addr       string
		envName    string
		runMigrate bool
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the GraphQL HTTP server",
		Long: `Start an HTTP server that serves the GraphQL API.

The server exposes:
  - GraphQL endpoint at /graphql (POST, or GET with ?query=)
  - GraphQL Playground at /graphql (GET) when server.playground is enabled
  - Health check at /healthz
  - Prometheus metrics at /metrics when observability.metrics.enabled is set`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			a, err := newApp(cmd, "serve", envName)
			if err != nil {
				return err
			}
			defer a.close(context.Background())

			if runMigrate {
				if err := runMigrations(ctx, cmd.OutOrStdout(), a.dsn, false); err != nil {
					return err
				}
			}

			schema, err := graphql.NewExecutableSchema(graphql.Config{Resolvers: resolvers.New(a.client)})
			if err != nil {
				return wrapError("serve: build schema", err, "", 1)
			}
			var metricsHandler http.Handler
			if a.prom != nil {
				metricsHandler = a.prom.Handler()
			}
			handler, err := server.NewHandler(server.Options{
				Schema:         schema,
				DB:             a.db,
				Logger:         a.logger,
				Tracer:         a.tracer,
				Collector:      a.collector(),
				MetricsHandler: metricsHandler,
				Playground:     a.cfg.Server.Playground,
			})
			if err != nil {
				return wrapError("serve: build handler", err, "", 1)
			}

			listen := a.cfg.Server.Addr
			if addr != "" {
				listen = addr
			}
			logVerbose(cmd, "serve: profile %s listening on %s", a.profile, listen)
			err = server.Serve(ctx, server.ServeOptions{
				Addr:            listen,
				Handler:         handler,
				Logger:          a.logger,
				ReadTimeout:     a.cfg.Server.ReadTimeout,
				WriteTimeout:    a.cfg.Server.WriteTimeout,
				ShutdownTimeout: a.cfg.Server.ShutdownTimeout,
				OnReady:         serverReady,
			})
			if err != nil {
				return wrapError("serve", err, "Check that the address is free and valid.", 1)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "Listen address, overriding server.addr")
	cmd.Flags().StringVar(&envName, "env", "", "Target environment profile (dev, staging, prod)")
	cmd.Flags().BoolVar(&runMigrate, "migrate", false, "Apply pending migrations before serving")
	return cmd
}
