package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/deicod/blogapi/internal/orm/migrate"
	"github.com/deicod/blogapi/internal/orm/migrations"
)

var migrateModes = []string{"plan", "apply"}

var (
	applyMigrations = migrate.Apply
	planMigrations  = migrate.Plan
)

func newMigrateCmd() *cobra.Command {
	var (
		mode    string
		envName string
	)
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Plan or apply the embedded SQL migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			execMode := strings.ToLower(strings.TrimSpace(mode))
			if execMode == "" {
				execMode = "apply"
			}
			switch execMode {
			case "plan", "apply":
			default:
				return unknownValue("migrate", "--mode", mode, migrateModes)
			}

			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			profile, dsn, err := resolveDSN("migrate", cfg, envName)
			if err != nil {
				return err
			}
			logVerbose(cmd, "migrate: using profile %s", profile)
			out := cmd.OutOrStdout()
			if execMode == "plan" {
				fmt.Fprintf(out, "migrate: plan for %s\n", profile)
			}
			return runMigrations(cmd.Context(), out, dsn, execMode == "plan")
		},
	}
	cmd.Flags().StringVar(&mode, "mode", "apply", "Select plan or apply execution mode")
	cmd.Flags().StringVar(&envName, "env", "", "Target environment profile (dev, staging, prod)")
	return cmd
}

// runMigrations plans against dsn and, unless planOnly, applies what is
// pending. Progress is written to out.
func runMigrations(ctx context.Context, out io.Writer, dsn string, planOnly bool) error {
	conn, err := openMigrationConn(ctx, dsn)
	if err != nil {
		return wrapError("migrate: connect database", err, "Verify the database is reachable and credentials are correct.", 1)
	}
	defer conn.Close(ctx)

	opts := []migrate.Option{migrate.WithDirectory(migrations.Dir)}
	plan, err := planMigrations(ctx, conn, migrations.FS, opts...)
	if err != nil {
		return migrationError("plan migrations", err)
	}
	if len(plan.Pending) == 0 {
		fmt.Fprintln(out, "migrate: database is up-to-date")
		return nil
	}
	if planOnly {
		for _, mig := range plan.Pending {
			fmt.Fprintf(out, "  pending: %s (%s)\n", mig.Version, mig.Name)
		}
		return nil
	}

	fmt.Fprintf(out, "migrate: applying %d migration(s)\n", len(plan.Pending))
	applied, err := applyMigrations(ctx, conn, migrations.FS, opts...)
	if err != nil {
		return migrationError("apply migrations", err)
	}
	for _, mig := range applied.Pending {
		fmt.Fprintf(out, "  applied: %s (%s)\n", mig.Version, mig.Name)
	}
	fmt.Fprintln(out, "migrate: completed successfully")
	return nil
}

func migrationError(step string, err error) error {
	var driftErr migrate.SchemaDriftError
	if errors.As(err, &driftErr) {
		return CommandError{
			Message:    fmt.Sprintf("migrate: schema drift detected for %s", strings.Join(driftErr.Missing, ", ")),
			Cause:      err,
			Suggestion: "Review applied migrations or reconcile the database state before continuing.",
			ExitCode:   1,
		}
	}
	return wrapError("migrate: "+step, err, "Review the SQL error, fix the migration, and re-run `blogapi migrate --mode apply`.", 1)
}
