package server

import (
	"context"
	"errors"
	"time"

	gql "github.com/graphql-go/graphql"
	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/parser"
	"go.uber.org/zap"

	"github.com/deicod/blogapi/internal/observability/metrics"
	"github.com/deicod/blogapi/internal/observability/tracing"
)

// Request is a GraphQL request as carried by HTTP or the CLI.
type Request struct {
	Query         string         `json:"query" form:"query" binding:"required"`
	Variables     map[string]any `json:"variables,omitempty" form:"-"`
	OperationName string         `json:"operationName,omitempty" form:"operationName"`
}

// Execute runs req against schema. Field failures are reported in the
// result's errors alongside whatever data could be resolved.
func Execute(ctx context.Context, schema gql.Schema, req Request) *gql.Result {
	return gql.Do(gql.Params{
		Schema:         schema,
		RequestString:  req.Query,
		VariableValues: req.Variables,
		OperationName:  req.OperationName,
		Context:        ctx,
	})
}

// operation names the executed operation for spans and metrics.
type operation struct {
	Kind string
	Name string
}

const invalidOperation = "invalid"

func describeOperation(query, operationName string) operation {
	doc, err := parser.ParseQuery(&ast.Source{Input: query})
	if err != nil || len(doc.Operations) == 0 {
		return operation{Kind: invalidOperation}
	}
	op := doc.Operations[0]
	if operationName != "" {
		op = doc.Operations.ForName(operationName)
		if op == nil {
			return operation{Kind: invalidOperation, Name: operationName}
		}
	}
	return operation{Kind: string(op.Operation), Name: op.Name}
}

// executor wraps Execute with a span, an operation metric and error logging.
type executor struct {
	schema    gql.Schema
	tracer    tracing.Tracer
	collector metrics.Collector
	logger    *zap.Logger
}

func (e executor) execute(ctx context.Context, req Request) *gql.Result {
	op := describeOperation(req.Query, req.OperationName)
	ctx, span := e.tracer.Start(ctx, "graphql."+op.Kind,
		tracing.String("graphql.operation.type", op.Kind),
		tracing.String("graphql.operation.name", op.Name),
	)
	start := time.Now()
	res := Execute(ctx, e.schema, req)
	e.collector.RecordOperation(op.Kind, op.Name, time.Since(start), len(res.Errors))

	var spanErr error
	for _, gqlErr := range res.Errors {
		e.logger.Warn("graphql error",
			zap.String("operation", op.Name),
			zap.String("message", gqlErr.Message),
			zap.Any("path", gqlErr.Path),
		)
		if spanErr == nil {
			spanErr = errors.New(gqlErr.Message)
		}
	}
	span.End(spanErr)
	return res
}
