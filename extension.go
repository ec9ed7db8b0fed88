package scoped

import "context"

// Extension provides hooks into the scope lifecycle
type Extension interface {
	// Name returns the extension's name
	Name() string

	// Order determines extension execution order (lower = earlier)
	Order() int

	// Init is called when the extension is registered to a scope
	Init(scope *Scope) error

	// Wrap intercepts operations (build, invalidate, dispose)
	Wrap(ctx context.Context, next func(context.Context) (any, error), op *Operation) (any, error)

	// OnError handles errors returned by a wrapped operation
	OnError(err error, op *Operation)

	// OnChild is called for every scope created beneath the scope the
	// extension was registered on
	OnChild(child *Scope)
}

// HitObserver is implemented by extensions that want to see reads served
// from an existing slot without running the factory.
type HitObserver interface {
	OnHit(op *Operation)
}

// RemountObserver is implemented by extensions that want to know when a
// disposed scope is brought back with Remount.
type RemountObserver interface {
	OnRemount(scope *Scope)
}

// BaseExtension provides default implementations for Extension methods
type BaseExtension struct {
	name string
}

// NewBaseExtension creates a new base extension with the given name
func NewBaseExtension(name string) BaseExtension {
	return BaseExtension{name: name}
}

func (e *BaseExtension) Name() string {
	return e.name
}

func (e *BaseExtension) Order() int {
	return 100
}

func (e *BaseExtension) Init(scope *Scope) error {
	return nil
}

func (e *BaseExtension) Wrap(ctx context.Context, next func(context.Context) (any, error), op *Operation) (any, error) {
	return next(ctx)
}

func (e *BaseExtension) OnError(err error, op *Operation) {
}

func (e *BaseExtension) OnChild(child *Scope) {
}

// Operation describes what operation is happening
type Operation struct {
	Kind OperationKind
	// Provider is nil for OpDispose.
	Provider AnyProvider
	// Scope is the scope the call was made on.
	Scope *Scope
	// Owner is the scope holding the provider's slot.
	Owner *Scope
}

// OperationKind represents the type of operation
type OperationKind string

const (
	// OpBuild indicates a factory run filling an empty slot
	OpBuild OperationKind = "build"
	// OpInvalidate indicates a slot being cleared
	OpInvalidate OperationKind = "invalidate"
	// OpDispose indicates a scope running its dispose callbacks
	OpDispose OperationKind = "dispose"
)

func wrapOperation(ctx context.Context, exts []Extension, op *Operation, fn func(context.Context) (any, error)) (any, error) {
	next := fn

	// Build the chain inside out so exts[0] is the outermost wrapper
	for i := len(exts) - 1; i >= 0; i-- {
		ext := exts[i]
		currentNext := next
		next = func(ctx context.Context) (any, error) {
			return ext.Wrap(ctx, currentNext, op)
		}
	}

	result, err := next(ctx)
	if err != nil {
		for _, ext := range exts {
			ext.OnError(err, op)
		}
	}
	return result, err
}
