package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/tidwall/pretty"

	"github.com/deicod/blogapi/internal/graphql"
	"github.com/deicod/blogapi/internal/graphql/resolvers"
	"github.com/deicod/blogapi/internal/graphql/server"
)

func newQueryCmd() *cobra.Command {
	var (
		variables string
		operation string
		envName   string
		compact   bool
	)
	cmd := &cobra.Command{
		Use:   "query <document>",
		Short: "Execute a GraphQL document against the database",
		Long: `Execute a GraphQL query or mutation without starting the HTTP server.

The document may be given inline, as @path to read a file, or as - to read stdin.`,
		Example: `  blogapi query '{ feed { id title } }'
  blogapi query 'mutation($e: String!) { signupUser(email: $e) { id } }' -V '{"e":"alice@example.com"}'`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := readDocument(args[0], cmd.InOrStdin())
			if err != nil {
				return wrapError("query: read document", err, "Pass the document inline, as @file or - for stdin.", 2)
			}
			req := server.Request{Query: doc, OperationName: operation}
			if variables != "" {
				if err := json.Unmarshal([]byte(variables), &req.Variables); err != nil {
					return wrapError("query: parse variables", err, `Pass variables as a JSON object, e.g. -V '{"id": 1}'.`, 2)
				}
			}

			a, err := newApp(cmd, "query", envName)
			if err != nil {
				return err
			}
			defer a.close(context.Background())

			schema, err := graphql.NewExecutableSchema(graphql.Config{Resolvers: resolvers.New(a.client)})
			if err != nil {
				return wrapError("query: build schema", err, "", 1)
			}
			res := server.Execute(cmd.Context(), schema, req)
			raw, err := json.Marshal(res)
			if err != nil {
				return wrapError("query: encode result", err, "", 1)
			}
			if compact {
				raw = append(pretty.Ugly(raw), '\n')
			} else {
				raw = pretty.Pretty(raw)
			}
			if _, err := cmd.OutOrStdout().Write(raw); err != nil {
				return err
			}
			if n := len(res.Errors); n > 0 {
				return CommandError{Message: fmt.Sprintf("query: %d error(s) returned", n), ExitCode: 1}
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&variables, "variables", "V", "", "Variables as a JSON object")
	cmd.Flags().StringVarP(&operation, "operation", "o", "", "Operation name to execute")
	cmd.Flags().StringVar(&envName, "env", "", "Target environment profile (dev, staging, prod)")
	cmd.Flags().BoolVar(&compact, "json", false, "Print compact JSON instead of indented output")
	return cmd
}

func readDocument(arg string, stdin io.Reader) (string, error) {
	var raw []byte
	var err error
	switch {
	case arg == "-":
		raw, err = io.ReadAll(stdin)
	case strings.HasPrefix(arg, "@"):
		raw, err = os.ReadFile(strings.TrimPrefix(arg, "@"))
	default:
		raw = []byte(arg)
	}
	if err != nil {
		return "", err
	}
	doc := strings.TrimSpace(string(raw))
	if doc == "" {
		return "", fmt.Errorf("empty document")
	}
	return doc, nil
}
