package extensions

import (
	"context"
	"time"

	"go.uber.org/zap"

	scoped "github.com/pumped-fn/scoped-go"
)

// ZapExtension is the zap counterpart of LoggingExtension for hosts that
// already log through a *zap.Logger.
type ZapExtension struct {
	scoped.BaseExtension
	logger *zap.Logger
}

// NewZapExtension creates a zap-backed logging extension. A nil logger is
// replaced by zap.NewNop.
func NewZapExtension(logger *zap.Logger) *ZapExtension {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ZapExtension{
		BaseExtension: scoped.NewBaseExtension("zap"),
		logger:        logger.Named("scoped"),
	}
}

func (e *ZapExtension) Wrap(ctx context.Context, next func(context.Context) (any, error), op *scoped.Operation) (any, error) {
	start := time.Now()
	result, err := next(ctx)

	fields := operationFields(op)
	fields = append(fields, zap.Duration("duration", time.Since(start)))

	if err != nil {
		e.logger.Error("scope operation failed", append(fields, zap.Error(err))...)
	} else {
		e.logger.Debug("scope operation completed", fields...)
	}

	return result, err
}

func (e *ZapExtension) OnChild(child *scoped.Scope) {
	e.logger.Debug("scope created",
		zap.String("scope", child.ID()),
		zap.String("parent", child.Parent().ID()),
		zap.Int("depth", child.Depth()),
	)
}

func operationFields(op *scoped.Operation) []zap.Field {
	fields := []zap.Field{
		zap.String("operation", string(op.Kind)),
		zap.String("scope", op.Scope.ID()),
	}
	if op.Provider != nil {
		fields = append(fields, zap.Stringer("provider", op.Provider))
	}
	if op.Owner != nil && op.Owner != op.Scope {
		fields = append(fields, zap.String("owner", op.Owner.ID()))
	}
	return fields
}
