// Package scoped provides hierarchical provider scopes with lazily built,
// cached and observable state.
//
// # Overview
//
// Scoped organizes code around four concepts:
//
//  1. Providers: identity-keyed descriptions of how to build a value
//  2. Scopes: a tree of stores that cache provider state and run cleanup
//  3. Refs: the capability handed to a factory while it builds
//  4. Notifiers: observable cells that usually make up provider state
//
// # Basic Usage
//
//	type Counter struct {
//	    *scoped.Notifier[int]
//	}
//
//	func (c *Counter) Increment() { c.Update(func(n int) int { return n + 1 }) }
//
//	counter := scoped.Value(func(ref *scoped.Ref) *Counter {
//	    return &Counter{Notifier: scoped.NewNotifier(func() int { return 0 })}
//	}, scoped.WithLabel("counter"))
//
//	scope := scoped.NewScope()
//	defer scope.Dispose()
//
//	c, err := scoped.Read(scope, counter)
//	c.Increment()
//
// # Resolution
//
// Read looks for the provider's slot on the scope and then on each ancestor.
// The first scope in the chain that holds a slot owns the state; if none does,
// the scope Read was called on becomes the owner and runs the factory:
//
//	root := scoped.NewScope()
//	child, _ := root.Child()
//
//	scoped.Read(root, counter)  // built and owned by root
//	scoped.Read(child, counter) // same instance, no second build
//
// Reading from a child first keeps the state in the child, so siblings build
// their own instance.
//
// Invalidate clears a slot without notifying anyone; the next Read rebuilds.
//
// # Listening
//
// Listen subscribes to a provider whose value is Observable and removes the
// subscription when the listening scope is disposed:
//
//	scoped.Listen(scope, counter, func(prev, next int) {
//	    fmt.Println(prev, "->", next)
//	}, false)
//
// # Lifecycle
//
// Dispose runs dispose callbacks in registration order. Child scopes register
// their own disposal on the parent, so disposing a scope disposes its whole
// subtree. Every operation on a disposed scope returns an error matching
// ErrUseAfterDispose.
//
// Factories tie resources to the owning scope through their Ref:
//
//	db := scoped.Provide(func(ref *scoped.Ref) (*DB, error) {
//	    conn, err := Open()
//	    if err != nil {
//	        return nil, err
//	    }
//	    ref.OnDispose(conn.Close)
//	    return conn, nil
//	})
//
// Run wraps a blocking block in a short-lived child scope that is disposed on
// every exit path:
//
//	err := scope.Run(ctx, func(ctx context.Context, s *scoped.Scope) error {
//	    return handle(ctx, s)
//	})
//
// Scopes created with WithRemount can be reactivated after disposal with
// Remount. Cached state survives; this is meant for tests and debugging.
//
// # Extensions
//
// Extensions observe builds, invalidations and disposals through Wrap and are
// inherited by child scopes. See the extensions package for logging, metrics,
// tracing and tree rendering.
//
// # Thread Safety
//
// Scopes and notifiers are not safe for concurrent use. All operations run to
// completion on the calling goroutine.
package scoped
