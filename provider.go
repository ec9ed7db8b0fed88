package scoped

import (
	"fmt"
	"sync/atomic"
)

var providerSeq atomic.Uint64

// Provider describes how to lazily build a value of type T inside a scope.
// Providers are compared by identity and never mutated after Provide returns,
// so one instance can be shared by any number of scope trees.
type Provider[T any] struct {
	id      uint64
	factory func(*Ref) (T, error)
	tags    map[any]any
}

// AnyProvider is the type-erased view of a provider used by the scope store.
type AnyProvider interface {
	ID() uint64
	Label() string
	GetTag(tag any) (any, bool)
	String() string

	build(ref *Ref) (any, error)
}

// ProviderOption configures a provider at construction time.
type ProviderOption func(*providerConfig)

type providerConfig struct {
	tags map[any]any
}

// WithLabel attaches a debug label to a provider.
func WithLabel(label string) ProviderOption {
	return func(c *providerConfig) {
		c.tags[LabelTag] = label
	}
}

// WithTag returns an option that sets a tag on a provider
func WithTag[T any](tag Tag[T], val T) ProviderOption {
	return func(c *providerConfig) {
		c.tags[tag] = val
	}
}

// Provide creates a provider from a factory. The factory runs at most once per
// owning scope until the slot is invalidated.
func Provide[T any](factory func(*Ref) (T, error), opts ...ProviderOption) *Provider[T] {
	cfg := &providerConfig{tags: make(map[any]any)}
	for _, opt := range opts {
		opt(cfg)
	}

	return &Provider[T]{
		id:      providerSeq.Add(1),
		factory: factory,
		tags:    cfg.tags,
	}
}

// Value creates a provider whose factory cannot fail.
func Value[T any](factory func(*Ref) T, opts ...ProviderOption) *Provider[T] {
	return Provide(func(ref *Ref) (T, error) {
		return factory(ref), nil
	}, opts...)
}

func (p *Provider[T]) ID() uint64 {
	return p.id
}

func (p *Provider[T]) Label() string {
	label, _ := LabelTag.Get(p)
	return label
}

func (p *Provider[T]) GetTag(tag any) (any, bool) {
	val, ok := p.tags[tag]
	return val, ok
}

func (p *Provider[T]) String() string {
	if label := p.Label(); label != "" {
		return label
	}
	return fmt.Sprintf("Provider#%d", p.id)
}

func (p *Provider[T]) build(ref *Ref) (any, error) {
	return p.factory(ref)
}
