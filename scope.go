package scoped

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"
)

// Scope is a node in a tree of provider stores. A provider's state lives in
// the first scope of a chain that read it; every descendant of that scope
// shares the cached value while siblings do not.
//
// A Scope is not safe for concurrent use. Factories, listeners and dispose
// callbacks run synchronously on the caller's goroutine.
type Scope struct {
	id           string
	parent       *Scope
	parentHandle DisposeHandle
	ctx          context.Context

	store     *slotStore
	disposers []*disposer
	children  []*Scope
	handleSeq uint64

	mounted     bool
	disposing   bool
	remountable bool

	extensions []Extension
	tags       map[any]any
}

// DisposeHandle identifies a registered dispose callback.
type DisposeHandle uint64

type disposer struct {
	handle  DisposeHandle
	fn      func() error
	removed bool
}

// ScopeOption is a modifier for scopes
type ScopeOption func(*Scope)

// WithScopeTag returns an option that sets a tag on a scope
func WithScopeTag[T any](tag Tag[T], val T) ScopeOption {
	return func(s *Scope) {
		tag.SetOnScope(s, val)
	}
}

// WithExtension returns an option that registers an extension to a scope.
// Child scopes inherit it.
func WithExtension(ext Extension) ScopeOption {
	return func(s *Scope) {
		if err := s.UseExtension(ext); err != nil {
			panic(err)
		}
	}
}

// WithRemount enables Remount on the scope and on every child created from it.
// Intended for tests and debugging sessions.
func WithRemount() ScopeOption {
	return func(s *Scope) {
		s.remountable = true
	}
}

// WithContext sets the context handed to extensions for operations on the scope.
func WithContext(ctx context.Context) ScopeOption {
	return func(s *Scope) {
		s.ctx = ctx
	}
}

// WithPreset stores value in the scope's slot for p, so the factory of p
// never runs for this scope or its descendants until invalidated.
func WithPreset[T any](p *Provider[T], value T) ScopeOption {
	return func(s *Scope) {
		s.store.create(p).store(value)
	}
}

// NewScope creates a new root scope with optional configuration
func NewScope(opts ...ScopeOption) *Scope {
	return newScope(nil, opts)
}

func newScope(parent *Scope, opts []ScopeOption) *Scope {
	s := &Scope{
		id:      uuid.NewString(),
		parent:  parent,
		ctx:     context.Background(),
		store:   newSlotStore(),
		mounted: true,
		tags:    make(map[any]any),
	}

	if parent != nil {
		s.ctx = parent.ctx
		s.remountable = parent.remountable
		s.extensions = append(s.extensions, parent.extensions...)
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// UseExtension registers an extension to the scope
func (s *Scope) UseExtension(ext Extension) error {
	s.extensions = append(s.extensions, ext)
	sort.SliceStable(s.extensions, func(i, j int) bool {
		return s.extensions[i].Order() < s.extensions[j].Order()
	})

	return ext.Init(s)
}

// ID returns the scope's unique identifier.
func (s *Scope) ID() string {
	return s.id
}

// Parent returns the enclosing scope, or nil for a root scope.
func (s *Scope) Parent() *Scope {
	return s.parent
}

// Children returns the live child scopes in creation order.
func (s *Scope) Children() []*Scope {
	out := make([]*Scope, len(s.children))
	copy(out, s.children)
	return out
}

// Depth returns the number of ancestors above the scope.
func (s *Scope) Depth() int {
	depth := 0
	for cur := s.parent; cur != nil; cur = cur.parent {
		depth++
	}
	return depth
}

// Mounted reports whether the scope is still active.
func (s *Scope) Mounted() bool {
	return s.mounted
}

// Context returns the context used for operations started on the scope.
func (s *Scope) Context() context.Context {
	return s.ctx
}

// GetTag retrieves a tag value from the scope
func (s *Scope) GetTag(tag any) (any, bool) {
	val, ok := s.tags[tag]
	return val, ok
}

// SetTag stores a tag value on the scope
func (s *Scope) SetTag(tag any, val any) {
	s.tags[tag] = val
}

func (s *Scope) String() string {
	return fmt.Sprintf("Scope(%s)", s.id)
}

// resolveSlot finds the slot for p on s or its ancestors. On a miss the slot
// is created on s itself.
func (s *Scope) resolveSlot(op string, p AnyProvider) (*Scope, *slot, error) {
	for cur := s; cur != nil; cur = cur.parent {
		if !cur.mounted {
			return nil, nil, useAfterDispose(op, cur)
		}
		if sl, ok := cur.store.lookup(p); ok {
			return cur, sl, nil
		}
	}
	return s, s.store.create(p), nil
}

func (s *Scope) read(ctx context.Context, op string, p AnyProvider, from *Ref) (any, error) {
	owner, sl, err := s.resolveSlot(op, p)
	if err != nil {
		return nil, err
	}

	if from != nil {
		from.recordDependency(p)
	}

	operation := &Operation{
		Kind:     OpBuild,
		Provider: p,
		Scope:    s,
		Owner:    owner,
	}

	if sl.built {
		for _, ext := range s.extensions {
			if obs, ok := ext.(HitObserver); ok {
				obs.OnHit(operation)
			}
		}
		return sl.value, nil
	}

	if sl.building {
		return nil, fmt.Errorf("%w: %s", ErrCircularDependency, p)
	}

	sl.building = true
	sl.deps = nil
	defer func() {
		sl.building = false
	}()

	value, err := wrapOperation(ctx, s.extensions, operation, func(ctx context.Context) (any, error) {
		return p.build(newRef(owner, sl, ctx))
	})
	if err != nil {
		return nil, err
	}

	sl.store(value)
	return value, nil
}

func (s *Scope) invalidate(ctx context.Context, p AnyProvider) error {
	owner, sl, err := s.resolveSlot("invalidate", p)
	if err != nil {
		return err
	}

	if !sl.built {
		return nil
	}

	operation := &Operation{
		Kind:     OpInvalidate,
		Provider: p,
		Scope:    s,
		Owner:    owner,
	}

	_, err = wrapOperation(ctx, s.extensions, operation, func(context.Context) (any, error) {
		sl.clear()
		return nil, nil
	})
	return err
}

// peek returns the cached value for p without building or creating a slot.
func (s *Scope) peek(p AnyProvider) (any, bool) {
	for cur := s; cur != nil; cur = cur.parent {
		if !cur.mounted {
			return nil, false
		}
		if sl, ok := cur.store.lookup(p); ok {
			return sl.value, sl.built
		}
	}
	return nil, false
}

// OnDispose registers fn to run when the scope is disposed. Callbacks run in
// registration order.
func (s *Scope) OnDispose(fn func() error) (DisposeHandle, error) {
	if !s.mounted {
		return 0, useAfterDispose("onDispose", s)
	}
	return s.addDisposer(fn), nil
}

func (s *Scope) addDisposer(fn func() error) DisposeHandle {
	s.handleSeq++
	h := DisposeHandle(s.handleSeq)
	s.disposers = append(s.disposers, &disposer{handle: h, fn: fn})
	return h
}

// RemoveDisposer unregisters a dispose callback. It reports false when the
// handle is unknown or already removed.
func (s *Scope) RemoveDisposer(h DisposeHandle) bool {
	for i, d := range s.disposers {
		if d.handle != h || d.removed {
			continue
		}
		d.removed = true
		// A running dispose walks s.disposers by index; it compacts at the end
		if !s.disposing {
			s.disposers = append(s.disposers[:i:i], s.disposers[i+1:]...)
		}
		return true
	}
	return false
}

// Child creates a scope whose parent is s. Disposing s disposes the child,
// including children created by s's own dispose callbacks while it is being
// disposed.
func (s *Scope) Child(opts ...ScopeOption) (*Scope, error) {
	if !s.mounted {
		return nil, useAfterDispose("child", s)
	}

	child := newScope(s, opts)
	s.link(child)

	for _, ext := range s.extensions {
		ext.OnChild(child)
	}

	return child, nil
}

func (s *Scope) link(child *Scope) {
	child.parentHandle = s.addDisposer(child.Dispose)
	s.children = append(s.children, child)
}

func (s *Scope) unlink(child *Scope) {
	if child.parentHandle != 0 {
		s.RemoveDisposer(child.parentHandle)
		child.parentHandle = 0
	}
	for i, c := range s.children {
		if c == child {
			s.children = append(s.children[:i:i], s.children[i+1:]...)
			return
		}
	}
}

// Dispose runs every dispose callback in registration order and marks the
// scope as disposed. It is a no-op on a disposed scope.
//
// A callback that returns an error stops the run; the error is returned as is
// and the scope stays mounted.
func (s *Scope) Dispose() error {
	if !s.mounted || s.disposing {
		return nil
	}

	s.disposing = true
	defer func() {
		s.disposing = false
	}()

	operation := &Operation{
		Kind:  OpDispose,
		Scope: s,
		Owner: s,
	}

	_, err := wrapOperation(s.ctx, s.extensions, operation, func(context.Context) (any, error) {
		return nil, s.runDisposers()
	})
	if err != nil {
		return err
	}

	s.mounted = false
	if s.parent != nil {
		s.parent.unlink(s)
	}
	return nil
}

// runDisposers re-reads the list on every step, so callbacks and children
// registered by a running callback are run in the same pass.
func (s *Scope) runDisposers() error {
	defer s.compactDisposers()

	for i := 0; i < len(s.disposers); i++ {
		entry := s.disposers[i]
		if entry.removed {
			continue
		}
		if err := entry.fn(); err != nil {
			return err
		}
	}
	return nil
}

func (s *Scope) compactDisposers() {
	live := s.disposers[:0]
	for _, d := range s.disposers {
		if !d.removed {
			live = append(live, d)
		}
	}
	clear(s.disposers[len(live):])
	s.disposers = live
}

// Remount reactivates a disposed scope created with WithRemount. Cached slots
// and dispose callbacks registered before disposal are kept, so reads see the
// previous state instead of rebuilding it.
func (s *Scope) Remount() error {
	if !s.remountable {
		return ErrRemountDisabled
	}
	if s.mounted {
		return nil
	}

	s.mounted = true
	if s.parent != nil && s.parent.mounted && s.parentHandle == 0 {
		s.parent.link(s)
	}

	for _, ext := range s.extensions {
		if obs, ok := ext.(RemountObserver); ok {
			obs.OnRemount(s)
		}
	}
	return nil
}

// SlotInfo describes one slot of a scope.
type SlotInfo struct {
	Index    int
	Provider AnyProvider
	Built    bool
	Value    any
}

// Slots lists the scope's own slots in index order.
func (s *Scope) Slots() []SlotInfo {
	out := make([]SlotInfo, 0, s.store.Size())
	s.store.Range(func(sl *slot) bool {
		out = append(out, SlotInfo{
			Index:    sl.index,
			Provider: sl.provider,
			Built:    sl.built,
			Value:    sl.value,
		})
		return true
	})
	return out
}

// Owner returns the scope holding p's slot as seen from s, or nil when no
// scope in the chain has read p yet.
func (s *Scope) Owner(p AnyProvider) *Scope {
	for cur := s; cur != nil; cur = cur.parent {
		if _, ok := cur.store.lookup(p); ok {
			return cur
		}
	}
	return nil
}
