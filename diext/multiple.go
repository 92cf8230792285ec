package diext

import (
	"context"
	"reflect"
	"slices"

	"github.com/sectrean/di-kit-ext"
	"github.com/sectrean/di-kit-ext/internal/errors"
)

// MultipleHolder holds one of many implementations of service type S.
// Holders are registered by [AddMultiple] and resolved by [ResolveMultiple].
type MultipleHolder[S any] interface {
	Value() S
}

type multipleHolder[S any] struct {
	value S
}

func (h *multipleHolder[S]) Value() S {
	return h.value
}

// AddMultiple registers one implementation of service type S.
//
// funcOrValue is registered the same way as [di.WithService], as a singleton of its own type.
// A singleton [MultipleHolder] of S is registered that holds the resolved implementation.
// S itself is not registered, so all of the implementations can only be resolved together
// using [ResolveMultiple].
//
// The holder resolves the implementation by its type and tag, so [ErrImplementationConflict]
// is returned if that type is already registered with the same tag. Use [di.WithTag] to add
// several implementations of the same type. Options are applied to the implementation
// registration and cannot change its type or lifetime.
func AddMultiple[S any](c *di.Collection, funcOrValue any, opts ...di.ServiceOption) error {
	serviceType := reflect.TypeFor[S]()

	err := addMultiple[S](c, funcOrValue, opts)
	return errors.Wrapf(err, "diext.AddMultiple %s", serviceType)
}

// WithMultiple returns a [di.ContainerOption] that calls [AddMultiple].
func WithMultiple[S any](funcOrValue any, opts ...di.ServiceOption) di.ContainerOption {
	return di.ApplyFunc(func(c *di.Collection) error {
		return AddMultiple[S](c, funcOrValue, opts...)
	})
}

func addMultiple[S any](c *di.Collection, funcOrValue any, opts []di.ServiceOption) error {
	serviceType := reflect.TypeFor[S]()

	opts = append(slices.Clone(opts), di.Singleton)
	regs, err := di.NewRegistrations(funcOrValue, opts...)
	if err != nil {
		return err
	}

	impl := regs[0]
	implType := impl.ImplementationType()

	switch {
	case len(regs) != 1 || impl.ServiceType() != implType:
		return errors.Errorf("implementation must be registered as %s", implType)
	case implType == serviceType:
		return errors.Wrapf(ErrSelfRegistration, "implementation %s", implType)
	case !implType.AssignableTo(serviceType):
		return errors.Errorf("type %s not assignable to %s", implType, serviceType)
	case c.Contains(implType, di.WithTag(impl.Tag())):
		return errors.Wrapf(ErrImplementationConflict, "implementation %s", impl)
	}

	var resolveOpts []di.ResolveOption
	if impl.Tag() != nil {
		resolveOpts = append(resolveOpts, di.WithTag(impl.Tag()))
	}

	holder, err := di.NewFactoryRegistration(reflect.TypeFor[MultipleHolder[S]](),
		di.FactoryFunc(func(ctx context.Context, s di.Scope) (any, error) {
			val, err := s.Resolve(ctx, implType, resolveOpts...)
			if err != nil {
				return nil, err
			}

			svc, _ := val.(S)
			return &multipleHolder[S]{value: svc}, nil
		}),
		di.Singleton,
		di.IgnoreCloser(),
	)
	if err != nil {
		return err
	}

	c.Add(impl, holder)

	c.Logger().Debug("diext multiple service added",
		"service_type", serviceType,
		"implementation_type", implType,
	)

	return nil
}

// ResolveMultiple resolves every implementation of S added with [AddMultiple], in the order
// they were added. Implementations added to parent scopes come first.
//
// An empty slice is returned if none have been added.
func ResolveMultiple[S any](ctx context.Context, s di.Scope) ([]S, error) {
	holderType := reflect.TypeFor[MultipleHolder[S]]()
	if !s.Contains(holderType) {
		return []S{}, nil
	}

	holders, err := di.ResolveAll[MultipleHolder[S]](ctx, s)
	if err != nil {
		return nil, errors.Wrapf(err, "diext.ResolveMultiple %s", reflect.TypeFor[S]())
	}

	vals := make([]S, len(holders))
	for i, h := range holders {
		vals[i] = h.Value()
	}

	return vals, nil
}
