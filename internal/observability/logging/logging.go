// Package logging builds the process logger and adapts it to the store's
// query events.
package logging

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/deicod/blogapi/internal/orm/runtime"
)

// Config selects the level and encoding of the process logger.
type Config struct {
	Level  string
	Format string
	// Output defaults to stderr.
	Output io.Writer
}

// New returns a logger for cfg.
func New(cfg Config) (*zap.Logger, error) {
	level, err := ParseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}

	var encoder zapcore.Encoder
	switch strings.ToLower(cfg.Format) {
	case "", "json":
		encoder = zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())
	case "console":
		encoder = zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig())
	default:
		return nil, fmt.Errorf("unknown log format %q (want json or console)", cfg.Format)
	}

	var out io.Writer = os.Stderr
	if cfg.Output != nil {
		out = cfg.Output
	}
	core := zapcore.NewCore(encoder, zapcore.Lock(zapcore.AddSync(out)), level)
	return zap.New(core, zap.AddCaller()), nil
}

// ParseLevel maps a level name to a zap level. An empty name means info.
func ParseLevel(name string) (zapcore.Level, error) {
	if name == "" {
		return zapcore.InfoLevel, nil
	}
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(strings.ToLower(name))); err != nil {
		return zapcore.InfoLevel, fmt.Errorf("unknown log level %q", name)
	}
	return level, nil
}

type requestIDKey struct{}

// WithRequestID stores the request id on ctx.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// RequestID returns the id stored by WithRequestID, or "".
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// Correlator exposes request ids to the query observer.
var Correlator = runtime.CorrelationProviderFunc(RequestID)

// QueryLogger writes each store statement at debug level, or at error level
// when it failed.
func QueryLogger(logger *zap.Logger) runtime.QueryLogger {
	return runtime.QueryLoggerFunc(func(_ context.Context, entry runtime.QueryLog) {
		fields := []zap.Field{
			zap.String("table", entry.Table),
			zap.String("operation", string(entry.Operation)),
			zap.String("sql", entry.SQL),
			zap.Int("args", len(entry.Args)),
			zap.Duration("duration", entry.Duration),
		}
		if entry.CorrelationID != "" {
			fields = append(fields, zap.String("request_id", entry.CorrelationID))
		}
		if entry.Err != nil {
			logger.Error("store query failed", append(fields, zap.Error(entry.Err))...)
			return
		}
		logger.Debug("store query", fields...)
	})
}
