package config

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	scoped "github.com/pumped-fn/scoped-go"
	"github.com/pumped-fn/scoped-go/extensions"
)

// ScopeOptions translates the configuration into options for scoped.NewScope.
// Logs are written to w. Metrics are registered with reg, or with the default
// Prometheus registerer when reg is nil. Tracing uses the global OpenTelemetry
// tracer provider.
func (c *Config) ScopeOptions(w io.Writer, reg prometheus.Registerer) ([]scoped.ScopeOption, error) {
	var opts []scoped.ScopeOption

	if c.AllowRemount {
		opts = append(opts, scoped.WithRemount())
	}

	logOpts, err := c.logOptions(w)
	if err != nil {
		return nil, err
	}
	opts = append(opts, logOpts...)

	if c.Metrics.Enabled {
		if reg == nil {
			reg = prometheus.DefaultRegisterer
		}
		metrics, err := extensions.NewMetricsExtension(c.Metrics.Namespace, reg)
		if err != nil {
			return nil, err
		}
		opts = append(opts, scoped.WithExtension(metrics))
	}

	if c.Tracing.Enabled {
		tracing := extensions.NewTracingExtension(otel.GetTracerProvider())
		tracing.Service = c.Tracing.ServiceName
		opts = append(opts, scoped.WithExtension(tracing))
	}

	return opts, nil
}

func (c *Config) logOptions(w io.Writer) ([]scoped.ScopeOption, error) {
	if c.Log.Format == "zap" {
		level, err := zapcore.ParseLevel(c.Log.Level)
		if err != nil {
			return nil, fmt.Errorf("log level: %w", err)
		}
		core := zapcore.NewCore(
			zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()),
			zapcore.AddSync(w),
			level,
		)
		return []scoped.ScopeOption{
			scoped.WithExtension(extensions.NewZapExtension(zap.New(core))),
		}, nil
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(c.Log.Level)); err != nil {
		return nil, fmt.Errorf("log level: %w", err)
	}

	var handler slog.Handler
	switch c.Log.Format {
	case "json":
		handler = slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level})
	case "text":
		handler = slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})
	case "human":
		handler = extensions.NewHumanHandler(w, level)
	default:
		return nil, fmt.Errorf("unknown log format %q", c.Log.Format)
	}

	return []scoped.ScopeOption{
		scoped.WithExtension(extensions.NewLoggingExtension(handler)),
		scoped.WithExtension(extensions.NewGraphDebugExtension(handler)),
	}, nil
}
