package di

import (
	"context"
	"reflect"
	"sync/atomic"

	"github.com/sectrean/di-kit-ext/internal/errors"
)

// Scope allows you to resolve services.
//
// A Scope can be injected into constructor functions to allow them to resolve services later.
// It cannot be used within the constructor function itself. It can be stored in a struct or
// used in a closure after the constructor function has returned.
//
// A [Factory] receives a Scope that can be used while the factory runs.
//
// Scope is implemented by *Container.
type Scope interface {
	// Contains returns true if the Scope has a service of the given type.
	//
	// Available options:
	// 	- [WithTag] specifies the tag associated with the service.
	Contains(t reflect.Type, opts ...ResolveOption) bool

	// Resolve returns a service of the given type from the Scope.
	//
	// Available options:
	// 	- [WithTag] specifies the tag associated with the service.
	Resolve(ctx context.Context, t reflect.Type, opts ...ResolveOption) (any, error)
}

// Resolve a service of type Service from the [Scope].
func Resolve[Service any](ctx context.Context, s Scope, opts ...ResolveOption) (Service, error) {
	var val Service
	anyVal, err := s.Resolve(ctx, reflect.TypeFor[Service](), opts...)
	if anyVal != nil {
		val = anyVal.(Service)
	}

	return val, err
}

// MustResolve resolves a service of type Service from the [Scope].
//
// If the service cannot be resolved, this function will panic.
func MustResolve[Service any](ctx context.Context, s Scope, opts ...ResolveOption) Service {
	val, err := Resolve[Service](ctx, s, opts...)
	if err != nil {
		panic(err)
	}
	return val
}

// ResolveAll resolves every registration of type Service from the [Scope], in the order
// they were registered. Registrations of parent scopes come first.
func ResolveAll[Service any](ctx context.Context, s Scope, opts ...ResolveOption) ([]Service, error) {
	return Resolve[[]Service](ctx, s, opts...)
}

// TryResolve resolves a service of type Service from the [Scope] if it is registered.
//
// ok is false if the service is not registered. An error is only returned if the service is
// registered but could not be created.
func TryResolve[Service any](ctx context.Context, s Scope, opts ...ResolveOption) (val Service, ok bool, err error) {
	if !s.Contains(reflect.TypeFor[Service](), opts...) {
		return val, false, nil
	}

	val, err = Resolve[Service](ctx, s, opts...)
	return val, err == nil, err
}

// injectedScope wraps a Container to be injected as a Scope dependency.
type injectedScope struct {
	// key is the service the Scope is getting injected into
	key   serviceKey
	scope Scope
	ready atomic.Bool
}

func (s *injectedScope) setReady() {
	s.ready.Store(true)
}

func (s *injectedScope) Contains(t reflect.Type, opts ...ResolveOption) bool {
	return s.scope.Contains(t, opts...)
}

func (s *injectedScope) Resolve(ctx context.Context, t reflect.Type, opts ...ResolveOption) (any, error) {
	if !s.ready.Load() {
		return nil, errors.Errorf(
			"resolve %v: "+
				"resolve not supported on di.Scope while resolving %s: "+
				"the scope must be stored and used later",
			t, s.key,
		)
	}

	return s.scope.Resolve(ctx, t, opts...)
}

// resolvingScope resolves services while another service is being created.
// It shares the dependency cycle detection of the resolution in progress.
type resolvingScope struct {
	scope   *Container
	visitor resolveVisitor
}

func (s *resolvingScope) Contains(t reflect.Type, opts ...ResolveOption) bool {
	return s.scope.Contains(t, opts...)
}

func (s *resolvingScope) Resolve(ctx context.Context, t reflect.Type, opts ...ResolveOption) (any, error) {
	key := newServiceKey(t, opts)

	val, err := s.scope.resolveKey(ctx, key, s.visitor, false)
	if err != nil {
		return val, errors.Wrapf(err, "resolve %s", key)
	}

	return val, nil
}

var (
	_ Scope = (*injectedScope)(nil)
	_ Scope = (*resolvingScope)(nil)
)
