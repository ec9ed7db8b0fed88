package scoped

import (
	"fmt"
	"reflect"
)

// ListenerHandle identifies a listener registered on a Notifier.
type ListenerHandle uint64

// Observable is the contract Listen subscribes through. *Notifier implements
// it, and so does any type embedding one.
type Observable[S any] interface {
	State() S
	AddListener(fn func(S), fireImmediately bool) ListenerHandle
	RemoveListener(h ListenerHandle) bool
}

// Notifier is a lazily initialised observable cell. Embed a *Notifier in a
// domain type to give it state and listeners:
//
//	type Counter struct {
//	    *scoped.Notifier[int]
//	}
//
//	func NewCounter() *Counter {
//	    return &Counter{Notifier: scoped.NewNotifier(func() int { return 0 })}
//	}
//
//	func (c *Counter) Increment() {
//	    c.SetState(c.State() + 1)
//	}
type Notifier[S any] struct {
	state        S
	initialized  bool
	build        func() S
	shouldNotify func(old, next S) bool
	listeners    []listenerEntry[S]
	handleSeq    uint64
}

type listenerEntry[S any] struct {
	handle ListenerHandle
	fn     func(S)
}

// NotifierOption configures a Notifier.
type NotifierOption[S any] func(*Notifier[S])

// WithUpdateShouldNotify replaces the change-detection hook consulted by SetState.
func WithUpdateShouldNotify[S any](fn func(old, next S) bool) NotifierOption[S] {
	return func(n *Notifier[S]) {
		n.shouldNotify = fn
	}
}

// NewNotifier creates a notifier whose initial state is computed by build on
// first access.
func NewNotifier[S any](build func() S, opts ...NotifierOption[S]) *Notifier[S] {
	n := &Notifier[S]{
		build:        build,
		shouldNotify: DefaultUpdateShouldNotify[S],
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// State returns the current state, running build exactly once the first time.
func (n *Notifier[S]) State() S {
	if !n.initialized {
		if n.build != nil {
			n.state = n.build()
		}
		n.initialized = true
	}
	return n.state
}

// SetState replaces the state and, when the change hook agrees, notifies
// listeners in registration order.
func (n *Notifier[S]) SetState(next S) {
	old := n.state
	n.state = next
	n.initialized = true

	if n.shouldNotify(old, next) {
		n.notifyListeners(next)
	}
}

// Update applies fn to the current state and stores the result.
func (n *Notifier[S]) Update(fn func(S) S) {
	n.SetState(fn(n.State()))
}

func (n *Notifier[S]) notifyListeners(state S) {
	entries := make([]listenerEntry[S], len(n.listeners))
	copy(entries, n.listeners)

	for _, entry := range entries {
		if !n.hasListener(entry.handle) {
			continue
		}
		entry.fn(state)
	}
}

// AddListener registers fn and returns the handle that removes it. With
// fireImmediately, fn is called once with the current state before returning.
func (n *Notifier[S]) AddListener(fn func(S), fireImmediately bool) ListenerHandle {
	n.handleSeq++
	h := ListenerHandle(n.handleSeq)
	n.listeners = append(n.listeners, listenerEntry[S]{handle: h, fn: fn})

	if fireImmediately {
		fn(n.State())
	}
	return h
}

// RemoveListener unregisters the listener behind h. It reports false when the
// listener was already removed.
func (n *Notifier[S]) RemoveListener(h ListenerHandle) bool {
	for i, entry := range n.listeners {
		if entry.handle == h {
			n.listeners = append(n.listeners[:i:i], n.listeners[i+1:]...)
			return true
		}
	}
	return false
}

// ListenerCount returns the number of registered listeners.
func (n *Notifier[S]) ListenerCount() int {
	return len(n.listeners)
}

// String formats the state without triggering build.
func (n *Notifier[S]) String() string {
	if !n.initialized {
		return "Notifier(<unbuilt>)"
	}
	return fmt.Sprintf("Notifier(%v)", n.state)
}

func (n *Notifier[S]) hasListener(h ListenerHandle) bool {
	for _, entry := range n.listeners {
		if entry.handle == h {
			return true
		}
	}
	return false
}

// DefaultUpdateShouldNotify reports whether old and next differ. Comparable
// values are compared with ==, maps, slices and channels by reference, and
// functions always count as changed.
func DefaultUpdateShouldNotify[S any](old, next S) (changed bool) {
	a, b := any(old), any(next)
	if a == nil || b == nil {
		return a != b
	}

	va, vb := reflect.ValueOf(a), reflect.ValueOf(b)
	if va.Type() != vb.Type() {
		return true
	}

	switch va.Kind() {
	case reflect.Map, reflect.Chan, reflect.UnsafePointer:
		return va.Pointer() != vb.Pointer()
	case reflect.Slice:
		return va.Pointer() != vb.Pointer() || va.Len() != vb.Len()
	case reflect.Func:
		return true
	}

	if !va.Type().Comparable() {
		return true
	}

	// Structs holding interface fields can still panic on ==.
	defer func() {
		if recover() != nil {
			changed = true
		}
	}()
	return a != b
}
