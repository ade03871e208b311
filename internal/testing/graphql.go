package testkit

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	stdtesting "testing"

	"github.com/deicod/blogapi/internal/graphql"
	"github.com/deicod/blogapi/internal/graphql/resolvers"
	"github.com/deicod/blogapi/internal/graphql/server"
	"github.com/deicod/blogapi/internal/observability/metrics"
)

// GraphQLHarnessOptions configures the HTTP GraphQL endpoint used in tests.
type GraphQLHarnessOptions struct {
	ORM       resolvers.Store
	Collector metrics.Collector
}

// GraphQLHarness serves the real handler from an httptest server.
type GraphQLHarness struct {
	server *httptest.Server
}

// Response is the decoded GraphQL response body.
type Response struct {
	Data   json.RawMessage `json:"data"`
	Errors []ResponseError `json:"errors"`
}

// ResponseError is a single entry of the errors array.
type ResponseError struct {
	Message string `json:"message"`
	Path    []any  `json:"path"`
}

// NewGraphQLHarness constructs a harness backed by the provided store.
func NewGraphQLHarness(tb stdtesting.TB, opts GraphQLHarnessOptions) *GraphQLHarness {
	tb.Helper()
	if opts.ORM == nil {
		tb.Fatalf("ORM client is required")
	}
	schema, err := graphql.NewExecutableSchema(graphql.Config{Resolvers: resolvers.New(opts.ORM)})
	if err != nil {
		tb.Fatalf("build schema: %v", err)
	}
	handler, err := server.NewHandler(server.Options{Schema: schema, Collector: opts.Collector})
	if err != nil {
		tb.Fatalf("build handler: %v", err)
	}
	srv := httptest.NewServer(handler)
	tb.Cleanup(srv.Close)
	return &GraphQLHarness{server: srv}
}

// URL returns the GraphQL endpoint.
func (h *GraphQLHarness) URL() string {
	return h.server.URL + server.GraphQLPath
}

// Exec posts query with variables and decodes the response.
func (h *GraphQLHarness) Exec(ctx context.Context, query string, variables map[string]any) (*Response, error) {
	if h == nil {
		return nil, fmt.Errorf("graphQL harness is not initialised")
	}
	body, err := json.Marshal(server.Request{Query: query, Variables: variables})
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.URL(), bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := h.server.Client().Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("graphql: unexpected status %s", resp.Status)
	}
	var out Response
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("graphql: decode response: %w", err)
	}
	return &out, nil
}

// MustExec is a convenience wrapper that fails the supplied test if the
// request fails or returns GraphQL errors, decoding data into into.
func (h *GraphQLHarness) MustExec(tb stdtesting.TB, ctx context.Context, query string, variables map[string]any, into any) {
	tb.Helper()
	resp, err := h.Exec(ctx, query, variables)
	if err != nil {
		tb.Fatalf("graphql exec: %v", err)
	}
	if len(resp.Errors) > 0 {
		tb.Fatalf("graphql errors: %+v", resp.Errors)
	}
	if into != nil {
		if err := json.Unmarshal(resp.Data, into); err != nil {
			tb.Fatalf("decode data: %v", err)
		}
	}
}
