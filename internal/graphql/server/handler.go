package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/99designs/gqlgen/graphql/playground"
	"github.com/gin-gonic/gin"
	gql "github.com/graphql-go/graphql"
	"go.uber.org/zap"

	"github.com/deicod/blogapi/internal/observability/metrics"
	"github.com/deicod/blogapi/internal/observability/tracing"
)

const (
	// GraphQLPath serves queries, mutations and the playground.
	GraphQLPath = "/graphql"
	HealthPath  = "/healthz"
	MetricsPath = "/metrics"

	playgroundTitle = "blogapi"
)

// Pinger reports database reachability for the health endpoint.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Options configures the HTTP surface. Only Schema is required.
type Options struct {
	Schema         gql.Schema
	DB             Pinger
	Logger         *zap.Logger
	Tracer         tracing.Tracer
	Collector      metrics.Collector
	MetricsHandler http.Handler
	Playground     bool
}

func (o Options) withDefaults() Options {
	if o.Logger == nil {
		o.Logger = zap.NewNop()
	}
	o.Tracer = tracing.WithTracer(o.Tracer)
	if o.Collector == nil {
		o.Collector = metrics.NoopCollector{}
	}
	return o
}

type errorBody struct {
	Errors []errorMessage `json:"errors"`
}

type errorMessage struct {
	Message string `json:"message"`
}

func badRequest(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, errorBody{Errors: []errorMessage{{Message: msg}}})
}

// NewHandler builds the router serving the GraphQL endpoint, the health check
// and, when configured, metrics.
func NewHandler(opts Options) (http.Handler, error) {
	if opts.Schema.QueryType() == nil {
		return nil, errors.New("server: schema is required")
	}
	opts = opts.withDefaults()
	exec := executor{
		schema:    opts.Schema,
		tracer:    opts.Tracer,
		collector: opts.Collector,
		logger:    opts.Logger,
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(requestID(), accessLog(opts.Logger), recovery(opts.Logger))

	router.POST(GraphQLPath, func(c *gin.Context) {
		var req Request
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "invalid GraphQL request: "+err.Error())
			return
		}
		c.JSON(http.StatusOK, exec.execute(c.Request.Context(), req))
	})

	var play http.HandlerFunc
	if opts.Playground {
		play = playground.Handler(playgroundTitle, GraphQLPath)
	}
	router.GET(GraphQLPath, func(c *gin.Context) {
		if c.Query("query") == "" {
			if play == nil {
				badRequest(c, "query parameter is required")
				return
			}
			play.ServeHTTP(c.Writer, c.Request)
			return
		}
		var req Request
		if err := c.ShouldBindQuery(&req); err != nil {
			badRequest(c, "invalid GraphQL request: "+err.Error())
			return
		}
		if raw := c.Query("variables"); raw != "" {
			if err := json.Unmarshal([]byte(raw), &req.Variables); err != nil {
				badRequest(c, "variables must be a JSON object: "+err.Error())
				return
			}
		}
		c.JSON(http.StatusOK, exec.execute(c.Request.Context(), req))
	})

	router.GET(HealthPath, func(c *gin.Context) {
		if opts.DB != nil {
			if err := opts.DB.Ping(c.Request.Context()); err != nil {
				opts.Logger.Warn("health check failed", zap.Error(err))
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	if opts.MetricsHandler != nil {
		router.GET(MetricsPath, gin.WrapH(opts.MetricsHandler))
	}
	return router, nil
}
