package extensions

import (
	"context"
	"log/slog"
	"time"

	scoped "github.com/pumped-fn/scoped-go"
)

// LoggingExtension logs builds, invalidations, disposals and child scopes
// through slog. Successful operations log at DEBUG, failures at ERROR.
type LoggingExtension struct {
	scoped.BaseExtension
	logger *slog.Logger
}

// NewLoggingExtension creates a new logging extension
func NewLoggingExtension(handler slog.Handler) *LoggingExtension {
	return &LoggingExtension{
		BaseExtension: scoped.NewBaseExtension("logging"),
		logger:        slog.New(handler),
	}
}

func (e *LoggingExtension) Wrap(ctx context.Context, next func(context.Context) (any, error), op *scoped.Operation) (any, error) {
	start := time.Now()
	attrs := operationAttrs(op)

	e.logger.DebugContext(ctx, "scope operation starting", attrs...)
	result, err := next(ctx)

	attrs = append(attrs, "duration", time.Since(start))
	if err != nil {
		e.logger.ErrorContext(ctx, "scope operation failed", append(attrs, "error", err.Error())...)
	} else {
		e.logger.DebugContext(ctx, "scope operation completed", attrs...)
	}

	return result, err
}

func (e *LoggingExtension) OnChild(child *scoped.Scope) {
	e.logger.Debug("scope created",
		"scope", child.ID(),
		"parent", child.Parent().ID(),
		"depth", child.Depth(),
	)
}

func operationAttrs(op *scoped.Operation) []any {
	attrs := []any{
		"operation", string(op.Kind),
		"scope", op.Scope.ID(),
	}
	if op.Provider != nil {
		attrs = append(attrs, "provider", op.Provider.String())
	}
	if op.Owner != nil && op.Owner != op.Scope {
		attrs = append(attrs, "owner", op.Owner.ID())
	}
	return attrs
}
