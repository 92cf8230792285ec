package di

import (
	"context"
	"io"
	"log/slog"
	"reflect"
	"slices"

	"github.com/sectrean/di-kit-ext/internal/errors"
)

// Collection is an ordered, mutable set of service registrations.
//
// A Collection is used while an application is being composed. Services are added with
// [Collection.Apply] or [Collection.Add], and can be inspected with [Collection.FindAll]
// and removed with [Collection.Remove]. [Collection.Build] creates an immutable
// [Container] from the current registrations.
//
// A Collection is not safe for concurrent use.
type Collection struct {
	regs     []*Registration
	applied  map[any]struct{}
	logger   *slog.Logger
	validate bool
}

// NewCollection creates a new [Collection] with the provided options.
//
// Available options:
//   - [WithService] registers a service with a value or constructor function.
//   - [WithFactory] registers a service with a [Factory] function.
//   - [WithType] registers a type constructed by the Container.
//   - [WithModule] applies a group of options.
//   - [WithLogger] sets the logger used by the Collection and the Containers built from it.
//   - [WithDependencyValidation] validates service dependencies when building a Container.
func NewCollection(opts ...ContainerOption) (*Collection, error) {
	c := &Collection{}

	err := c.Apply(opts...)
	if err != nil {
		return nil, errors.Wrap(err, "di.NewCollection")
	}

	return c, nil
}

// Apply applies the options to the Collection in order.
//
// Options that fail are skipped; their errors are joined together.
func (c *Collection) Apply(opts ...ContainerOption) error {
	opts = flattenModules(opts)

	return applyOptions(opts, func(o ContainerOption) error {
		return o.applyCollection(c)
	})
}

// Add appends registrations to the Collection.
func (c *Collection) Add(regs ...*Registration) *Collection {
	for _, r := range regs {
		if r != nil {
			c.regs = append(c.regs, r)
		}
	}
	return c
}

// Remove removes the registration from the Collection.
// Registrations are compared by identity. Removing a registration that is not in the
// Collection does nothing.
func (c *Collection) Remove(r *Registration) *Collection {
	c.regs = slices.DeleteFunc(c.regs, func(existing *Registration) bool {
		return existing == r
	})
	return c
}

// FindAll returns the registrations of type t in the order they were added.
//
// Without options registrations with any tag are returned.
//
// Available options:
//   - [WithTag] only returns registrations with the given tag.
func (c *Collection) FindAll(t reflect.Type, opts ...ResolveOption) []*Registration {
	var found []*Registration

	if len(opts) == 0 {
		for _, r := range c.regs {
			if r.serviceType == t {
				found = append(found, r)
			}
		}
		return found
	}

	key := newServiceKey(t, opts)
	for _, r := range c.regs {
		if r.key() == key {
			found = append(found, r)
		}
	}
	return found
}

// Contains returns true if the Collection has a registration of type t.
//
// Available options:
//   - [WithTag] specifies the tag associated with the service.
func (c *Collection) Contains(t reflect.Type, opts ...ResolveOption) bool {
	return len(c.FindAll(t, opts...)) > 0
}

// Registrations returns a copy of all registrations in the order they were added.
func (c *Collection) Registrations() []*Registration {
	return slices.Clone(c.regs)
}

// Len returns the number of registrations.
func (c *Collection) Len() int {
	return len(c.regs)
}

// Applied returns true if id has been marked with [Collection.MarkApplied].
func (c *Collection) Applied(id any) bool {
	_, ok := c.applied[id]
	return ok
}

// MarkApplied records that the registration work identified by id has been applied
// to this Collection.
func (c *Collection) MarkApplied(id any) {
	if c.applied == nil {
		c.applied = make(map[any]struct{})
	}
	c.applied[id] = struct{}{}
}

// UnmarkApplied removes id from the ids marked with [Collection.MarkApplied].
func (c *Collection) UnmarkApplied(id any) {
	delete(c.applied, id)
}

// Logger returns the logger set with [WithLogger].
// A logger that discards all output is returned if none was set.
func (c *Collection) Logger() *slog.Logger {
	if c.logger == nil {
		return discardLogger
	}
	return c.logger
}

// Build creates a new [Container] from the registrations in the Collection.
//
// The Container keeps a snapshot of the registrations. Changes made to the Collection
// afterwards do not affect it.
func (c *Collection) Build() (*Container, error) {
	ctr, err := c.build(nil)
	if err != nil {
		return nil, errors.Wrap(err, "di.Collection.Build")
	}

	return ctr, nil
}

// ContainerOption is used to configure a [Collection] when calling [NewCollection],
// [NewContainer], [Collection.Apply] or [Container.NewScope].
type ContainerOption interface {
	applyCollection(*Collection) error
}

type containerOption func(*Collection) error

func (o containerOption) applyCollection(c *Collection) error {
	return o(c)
}

// ApplyFunc wraps a function that modifies a [Collection] as a [ContainerOption].
func ApplyFunc(fn func(*Collection) error) ContainerOption {
	return containerOption(func(c *Collection) error {
		if fn == nil {
			return errors.New("apply func: fn is nil")
		}
		return fn(c)
	})
}

// WithService registers the provided function or value.
//
// If a function is provided, it will be called to create the service when resolved.
//
// This function can take any number of arguments which will also be resolved from the Container.
// The function may also accept a [context.Context] or [di.Scope].
//
// The function must return a service, or the service and an error.
// The service will be registered as the return type of the function (struct, pointer, or interface).
//
// If the resolved service implements [Closer], or a compatible Close method signature,
// it will be closed when the Container is closed.
//
// If a value is provided, it will be returned as the service when resolved.
// The value can be a struct or pointer.
// (It will be registered as the actual type even if the variable was declared as an interface.)
//
// See [ServiceOption] for the available options.
func WithService(funcOrValue any, opts ...ServiceOption) ContainerOption {
	return containerOption(func(c *Collection) error {
		regs, err := NewRegistrations(funcOrValue, opts...)
		if err != nil {
			return errors.Wrapf(err, "with service %T", funcOrValue)
		}

		c.Add(regs...)
		return nil
	})
}

// WithFactory registers a [Factory] function for a service of type Service.
//
// The [Scope] passed to fn can be used to resolve other services.
// A factory registration has no implementation type.
func WithFactory[Service any](fn func(ctx context.Context, s Scope) (Service, error), opts ...ServiceOption) ContainerOption {
	t := reflect.TypeFor[Service]()

	return containerOption(func(c *Collection) error {
		if fn == nil {
			return errors.Errorf("with factory %s: fn is nil", t)
		}

		f := FactoryFunc(func(ctx context.Context, s Scope) (any, error) {
			return fn(ctx, s)
		})

		reg, err := NewFactoryRegistration(t, f, opts...)
		if err != nil {
			return errors.Wrapf(err, "with factory %s", t)
		}

		c.Add(reg)
		return nil
	})
}

// WithType registers type T to be constructed by the Container as a zero value.
// Pointer types are allocated, so WithType[*Cache] resolves a new(Cache).
func WithType[T any](opts ...ServiceOption) ContainerOption {
	return WithTypeOf(reflect.TypeFor[T](), opts...)
}

// WithTypeOf is like [WithType] for a [reflect.Type] known at run time.
func WithTypeOf(t reflect.Type, opts ...ServiceOption) ContainerOption {
	return containerOption(func(c *Collection) error {
		regs, err := NewTypeRegistrations(t, opts...)
		if err != nil {
			return errors.Wrapf(err, "with type %v", t)
		}

		c.Add(regs...)
		return nil
	})
}

// WithLogger sets the logger used by the Collection and the Containers built from it.
func WithLogger(logger *slog.Logger) ContainerOption {
	return containerOption(func(c *Collection) error {
		if logger == nil {
			return errors.New("with logger: logger is nil")
		}

		c.logger = logger
		return nil
	})
}

// WithDependencyValidation validates registered services when a Container is built.
//
// This will check that all dependencies are registered and that there are no dependency cycles.
// It will return an error with details if any issues are found.
//
// Scoped services are not validated because dependencies may be registered with a child scope.
// Dependencies resolved inside a [Factory] cannot be validated.
func WithDependencyValidation() ContainerOption {
	return containerOption(func(c *Collection) error {
		c.validate = true
		return nil
	})
}

var discardLogger = slog.New(slog.NewTextHandler(io.Discard, nil))
