package di

import (
	"context"
	"reflect"

	"github.com/google/uuid"
	"github.com/sectrean/di-kit-ext/internal/errors"
)

// activator creates service values for one or more registrations.
//
// Registrations created from the same call to [WithService] share an activator,
// so aliases of a singleton resolve to the same instance.
type activator interface {
	ID() uuid.UUID

	// ImplementationType returns the concrete type created, or nil for factories.
	ImplementationType() reflect.Type

	// Dependencies returns the services passed to New, in order.
	Dependencies() []serviceKey

	New(ctx context.Context, s Scope, deps []reflect.Value) (any, error)
}

type funcActivator struct {
	id       uuid.UUID
	t        reflect.Type
	fn       reflect.Value
	deps     []serviceKey
	variadic bool
}

func newFuncActivator(fn any) (*funcActivator, error) {
	fnType := reflect.TypeOf(fn)

	var t reflect.Type
	switch {
	case fnType.NumOut() == 1:
		t = fnType.Out(0)
	case fnType.NumOut() == 2 && fnType.Out(1) == typeError:
		t = fnType.Out(0)
	default:
		return nil, errors.New("function must return Service or (Service, error)")
	}

	if err := validateServiceType(t); err != nil {
		return nil, err
	}

	var deps []serviceKey
	if fnType.NumIn() > 0 {
		deps = make([]serviceKey, fnType.NumIn())
		for i := range fnType.NumIn() {
			deps[i] = serviceKey{Type: fnType.In(i)}
		}
	}

	return &funcActivator{
		id:       uuid.New(),
		t:        t,
		fn:       reflect.ValueOf(fn),
		deps:     deps,
		variadic: fnType.IsVariadic(),
	}, nil
}

func (a *funcActivator) ID() uuid.UUID                    { return a.id }
func (a *funcActivator) ImplementationType() reflect.Type { return a.t }
func (a *funcActivator) Dependencies() []serviceKey       { return a.deps }

func (a *funcActivator) New(_ context.Context, _ Scope, deps []reflect.Value) (any, error) {
	var out []reflect.Value
	if a.variadic {
		out = a.fn.CallSlice(deps)
	} else {
		out = a.fn.Call(deps)
	}

	val := out[0].Interface()

	var err error
	if len(out) == 2 {
		err, _ = out[1].Interface().(error)
	}

	return val, err
}

type valueActivator struct {
	id  uuid.UUID
	t   reflect.Type
	val any
}

func newValueActivator(val any) (*valueActivator, error) {
	t := reflect.TypeOf(val)
	if err := validateServiceType(t); err != nil {
		return nil, err
	}

	return &valueActivator{
		id:  uuid.New(),
		t:   t,
		val: val,
	}, nil
}

func (a *valueActivator) ID() uuid.UUID                    { return a.id }
func (a *valueActivator) ImplementationType() reflect.Type { return a.t }
func (*valueActivator) Dependencies() []serviceKey         { return nil }

func (a *valueActivator) New(context.Context, Scope, []reflect.Value) (any, error) {
	return a.val, nil
}

// typeActivator creates a zero value of its type, allocating for pointer types.
type typeActivator struct {
	id uuid.UUID
	t  reflect.Type
}

func newTypeActivator(t reflect.Type) (*typeActivator, error) {
	if t == nil {
		return nil, errors.New("type is nil")
	}

	if err := validateServiceType(t); err != nil {
		return nil, err
	}

	if t.Kind() == reflect.Interface {
		return nil, errors.New("interface type cannot be constructed")
	}

	return &typeActivator{
		id: uuid.New(),
		t:  t,
	}, nil
}

func (a *typeActivator) ID() uuid.UUID                    { return a.id }
func (a *typeActivator) ImplementationType() reflect.Type { return a.t }
func (*typeActivator) Dependencies() []serviceKey         { return nil }

func (a *typeActivator) New(context.Context, Scope, []reflect.Value) (any, error) {
	if a.t.Kind() == reflect.Ptr {
		return reflect.New(a.t.Elem()).Interface(), nil
	}
	return reflect.Zero(a.t).Interface(), nil
}

type factoryActivator struct {
	id uuid.UUID
	f  Factory
}

func (a *factoryActivator) ID() uuid.UUID                  { return a.id }
func (*factoryActivator) ImplementationType() reflect.Type { return nil }
func (*factoryActivator) Dependencies() []serviceKey       { return nil }

func (a *factoryActivator) New(ctx context.Context, s Scope, _ []reflect.Value) (any, error) {
	return a.f.New(ctx, s)
}

var (
	_ activator = (*funcActivator)(nil)
	_ activator = (*valueActivator)(nil)
	_ activator = (*typeActivator)(nil)
	_ activator = (*factoryActivator)(nil)
)
