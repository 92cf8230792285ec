package di

import (
	"context"
	"fmt"
	"reflect"

	"github.com/google/uuid"
	"github.com/sectrean/di-kit-ext/internal/errors"
	"github.com/sectrean/di-kit-ext/internal/typeutil"
)

// Factory creates a service value when it is resolved.
//
// The [Scope] passed to New can be used to resolve other services while the value is
// being created. Registrations backed by a Factory have no implementation type.
type Factory interface {
	New(ctx context.Context, s Scope) (any, error)
}

// FactoryFunc adapts a function to a [Factory].
type FactoryFunc func(ctx context.Context, s Scope) (any, error)

// New calls f(ctx, s).
func (f FactoryFunc) New(ctx context.Context, s Scope) (any, error) {
	return f(ctx, s)
}

// Registration tells a [Container] how to create a service of a given type.
//
// A Registration is backed either by an implementation type (a constructor function,
// a value, or a type constructed by the Container) or by a [Factory], never both.
// Registrations are immutable; a [Collection] is modified by adding and removing them.
type Registration struct {
	serviceType reflect.Type
	tag         any
	lifetime    Lifetime
	act         activator
	closer      closerFactory
}

// ServiceType returns the type the service is resolved as.
func (r *Registration) ServiceType() reflect.Type {
	return r.serviceType
}

// ImplementationType returns the concrete type created for the service.
// It returns nil if the registration is backed by a [Factory].
func (r *Registration) ImplementationType() reflect.Type {
	return r.act.ImplementationType()
}

// Factory returns the [Factory] for the service, or nil if the registration is backed
// by an implementation type.
func (r *Registration) Factory() Factory {
	if fa, ok := r.act.(*factoryActivator); ok {
		return fa.f
	}
	return nil
}

// Value returns the value registered with [WithService], if any.
func (r *Registration) Value() (any, bool) {
	if va, ok := r.act.(*valueActivator); ok {
		return va.val, true
	}
	return nil, false
}

// Lifetime returns the lifetime of the service.
func (r *Registration) Lifetime() Lifetime {
	return r.lifetime
}

// Tag returns the tag associated with the service, or nil.
func (r *Registration) Tag() any {
	return r.tag
}

// ID identifies how the service is created.
// Registrations that share an ID also share singleton and scoped instances.
func (r *Registration) ID() uuid.UUID {
	return r.act.ID()
}

// As returns a new Registration that exposes the same service as type t.
//
// The new Registration shares the lifetime, tag, closer and instances of r.
func (r *Registration) As(t reflect.Type) (*Registration, error) {
	if err := validateServiceType(t); err != nil {
		return nil, errors.Wrapf(err, "as %s", t)
	}

	implType := r.ImplementationType()
	if implType == nil {
		implType = r.serviceType
	}
	if !implType.AssignableTo(t) {
		return nil, errors.Errorf("as %s: type %s not assignable to %s", t, implType, t)
	}

	alias := *r
	alias.serviceType = t

	return &alias, nil
}

func (r *Registration) key() serviceKey {
	return serviceKey{Type: r.serviceType, Tag: r.tag}
}

func (r *Registration) closerFor(val any) Closer {
	if val == nil || r.closer == nil {
		return nil
	}
	return r.closer(val)
}

func (r *Registration) String() string {
	var source string
	switch a := r.act.(type) {
	case *funcActivator:
		source = a.fn.Type().String()
	case *factoryActivator:
		source = fmt.Sprintf("factory %T", a.f)
	default:
		source = r.ImplementationType().String()
	}

	return fmt.Sprintf("%s (%s, %s)", r.key(), source, r.lifetime)
}

// NewRegistrations creates registrations for a constructor function or value without
// adding them to a [Collection].
//
// It accepts the same arguments as [WithService]. One Registration is returned for each
// [As] option, or a single Registration for the implementation type if there are none.
func NewRegistrations(funcOrValue any, opts ...ServiceOption) ([]*Registration, error) {
	if typeutil.IsNil(funcOrValue) {
		return nil, errors.New("funcOrValue is nil")
	}

	if _, ok := funcOrValue.(ServiceOption); ok {
		return nil, errors.New("unexpected ServiceOption as funcOrValue")
	}

	rc := &registrationConfig{closer: getCloser}

	if reflect.TypeOf(funcOrValue).Kind() == reflect.Func {
		fa, err := newFuncActivator(funcOrValue)
		if err != nil {
			return nil, err
		}
		rc.act = fa
		rc.deps = fa.deps
	} else {
		va, err := newValueActivator(funcOrValue)
		if err != nil {
			return nil, err
		}
		rc.act = va
		rc.value = va
		// The Container does not close values unless asked to with WithCloser.
		rc.closer = nil
	}
	rc.t = rc.act.ImplementationType()

	return rc.apply(opts)
}

// NewTypeRegistrations creates registrations for a type that the [Container] constructs
// as a zero value. Pointer types are allocated with [reflect.New].
//
// It accepts the same options as [WithService].
func NewTypeRegistrations(t reflect.Type, opts ...ServiceOption) ([]*Registration, error) {
	ta, err := newTypeActivator(t)
	if err != nil {
		return nil, err
	}

	rc := &registrationConfig{
		act:    ta,
		t:      t,
		closer: getCloser,
	}

	return rc.apply(opts)
}

// NewFactoryRegistration creates a registration of serviceType backed by f without
// adding it to a [Collection].
//
// The value returned by f must be assignable to serviceType.
func NewFactoryRegistration(serviceType reflect.Type, f Factory, opts ...ServiceOption) (*Registration, error) {
	if f == nil {
		return nil, errors.New("factory is nil")
	}

	if err := validateServiceType(serviceType); err != nil {
		return nil, err
	}

	rc := &registrationConfig{
		act:    &factoryActivator{id: uuid.New(), f: f},
		t:      serviceType,
		closer: getCloser,
	}

	regs, err := rc.apply(opts)
	if err != nil {
		return nil, err
	}

	if len(regs) != 1 {
		return nil, errors.Errorf("factory for %s: expected one service type, got %d", serviceType, len(regs))
	}

	return regs[0], nil
}

// registrationConfig collects service options before registrations are created.
type registrationConfig struct {
	act      activator
	value    *valueActivator
	t        reflect.Type
	aliases  []reflect.Type
	deps     []serviceKey
	lifetime Lifetime
	tag      any
	closer   closerFactory
}

func (rc *registrationConfig) addAlias(alias reflect.Type) error {
	if err := validateServiceType(alias); err != nil {
		return err
	}

	if !rc.t.AssignableTo(alias) {
		return errors.Errorf("type %s not assignable to %s", rc.t, alias)
	}

	rc.aliases = append(rc.aliases, alias)
	return nil
}

func (rc *registrationConfig) apply(opts []ServiceOption) ([]*Registration, error) {
	err := applyOptions(opts, func(opt ServiceOption) error {
		return opt.applyRegistration(rc)
	})
	if err != nil {
		return nil, err
	}

	types := rc.aliases
	if len(types) == 0 {
		types = []reflect.Type{rc.t}
	}

	regs := make([]*Registration, len(types))
	for i, t := range types {
		regs[i] = &Registration{
			serviceType: t,
			tag:         rc.tag,
			lifetime:    rc.lifetime,
			act:         rc.act,
			closer:      rc.closer,
		}
	}

	return regs, nil
}
