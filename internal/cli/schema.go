package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/deicod/blogapi/internal/graphql"
)

func newSchemaCmd() *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "schema",
		Short: "Print the GraphQL schema definition",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sdl, err := graphql.SDL()
			if err != nil {
				return wrapError("schema: render SDL", err, "", 1)
			}
			if out == "" {
				_, err := fmt.Fprint(cmd.OutOrStdout(), sdl)
				return err
			}
			if err := os.WriteFile(out, []byte(sdl), 0o644); err != nil {
				return wrapError(fmt.Sprintf("schema: write %s", out), err, "Check that the target directory exists and is writable.", 1)
			}
			logVerbose(cmd, "schema: wrote %s", out)
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "Write the schema to a file instead of stdout")
	return cmd
}
