package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/deicod/blogapi/internal/cli/doctor"
	"github.com/deicod/blogapi/internal/config"
	"github.com/deicod/blogapi/internal/orm/migrate"
	"github.com/deicod/blogapi/internal/orm/migrations"
)

func newDoctorCmd() *cobra.Command {
	var envName string
	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Check configuration, database reachability and migration state",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				cfg     config.Config
				profile string
				dsn     string
			)
			checks := []doctor.Check{
				{Name: "config", Run: func(context.Context) (doctor.Result, bool) {
					loaded, err := config.Load(configPath)
					if err != nil {
						return doctor.Result{Status: doctor.StatusError, Details: err.Error()}, true
					}
					cfg = loaded
					return doctor.Result{Status: doctor.StatusOK, Details: "loaded " + configFileName()}, false
				}},
				{Name: "database url", Run: func(context.Context) (doctor.Result, bool) {
					var err error
					profile, dsn, err = resolveDSN("doctor", cfg, envName)
					if err != nil {
						return doctor.Result{Status: doctor.StatusError, Details: err.Error()}, true
					}
					return doctor.Result{Status: doctor.StatusOK, Details: "profile " + profile}, false
				}},
				{Name: "migrations", Run: func(ctx context.Context) (doctor.Result, bool) {
					return checkMigrations(ctx, dsn), false
				}},
			}

			results := doctor.Run(cmd.Context(), checks)
			printer := doctor.NewPrinter(cmd.OutOrStdout())
			printer.PrintHeader("blogapi doctor", configFileName(), profile)
			for _, res := range results {
				printer.PrintCheck(res)
			}
			printer.Summary(results)
			if doctor.HasFailures(results) {
				return CommandError{Message: "doctor: one or more checks failed", ExitCode: 1}
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&envName, "env", "", "Target environment profile (dev, staging, prod)")
	return cmd
}

// checkMigrations connects to dsn and reports pending or drifted migrations.
func checkMigrations(ctx context.Context, dsn string) doctor.Result {
	conn, err := openMigrationConn(ctx, dsn)
	if err != nil {
		return doctor.Result{Status: doctor.StatusError, Details: fmt.Sprintf("connect database: %v", err)}
	}
	defer conn.Close(ctx)

	plan, err := planMigrations(ctx, conn, migrations.FS, migrate.WithDirectory(migrations.Dir))
	if err != nil {
		return doctor.Result{Status: doctor.StatusError, Details: err.Error()}
	}
	if n := len(plan.Pending); n > 0 {
		return doctor.Result{
			Status:  doctor.StatusWarn,
			Details: fmt.Sprintf("%d pending migration(s); run `blogapi migrate`", n),
		}
	}
	return doctor.Result{Status: doctor.StatusOK, Details: fmt.Sprintf("%d applied", len(plan.Applied))}
}
