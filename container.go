package di

import (
	"context"
	"fmt"
	"log/slog"
	"reflect"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/puzpuzpuz/xsync/v3"
	"github.com/sectrean/di-kit-ext/internal/errors"
)

// Container is a dependency injection container built from a [Collection].
// It is used to resolve services by first resolving their dependencies.
//
// The registrations of a Container cannot change after it is built, so it is safe to
// resolve services from multiple goroutines.
type Container struct {
	parent    *Container
	services  map[serviceKey][]*Registration
	instances *xsync.MapOf[uuid.UUID, *instance]
	logger    *slog.Logger
	closers   []Closer
	closersMu sync.Mutex
	closedMu  sync.RWMutex
	closed    bool
}

var _ Scope = (*Container)(nil)

// NewContainer creates a new [Container] with the provided options.
//
// It is a shortcut for [NewCollection] followed by [Collection.Build].
// See [NewCollection] for the available options.
func NewContainer(opts ...ContainerOption) (*Container, error) {
	coll := &Collection{}

	err := coll.Apply(opts...)
	if err != nil {
		return nil, errors.Wrap(err, "di.NewContainer")
	}

	c, err := coll.build(nil)
	if err != nil {
		return nil, errors.Wrap(err, "di.NewContainer")
	}

	return c, nil
}

func (coll *Collection) build(parent *Container) (*Container, error) {
	logger := coll.logger
	if logger == nil && parent != nil {
		logger = parent.logger
	}
	if logger == nil {
		logger = discardLogger
	}

	c := &Container{
		parent:    parent,
		services:  make(map[serviceKey][]*Registration),
		instances: xsync.NewMapOf[uuid.UUID, *instance](),
		logger:    logger,
	}

	// Aliases of a value share its ID and must only be closed once
	valueClosers := make(map[uuid.UUID]struct{})

	for _, r := range coll.regs {
		key := r.key()
		c.services[key] = append(c.services[key], r)

		// The Container only closes values registered with WithCloser.
		val, ok := r.Value()
		if !ok {
			continue
		}
		if _, seen := valueClosers[r.ID()]; seen {
			continue
		}
		if closer := r.closerFor(val); closer != nil {
			valueClosers[r.ID()] = struct{}{}
			c.closers = append(c.closers, closer)
		}
	}

	if coll.validate {
		err := c.validateDependencies()
		if err != nil {
			return nil, errors.Wrap(err, "dependency validation")
		}
	}

	c.logger.Debug("di container built",
		"registrations", len(coll.regs),
		"child_scope", parent != nil,
	)

	return c, nil
}

// lookup returns the last registration for the key and the Container it belongs to.
func (c *Container) lookup(key serviceKey) (*Registration, *Container) {
	for scope := c; scope != nil; scope = scope.parent {
		regs, ok := scope.services[key]
		if !ok {
			continue
		}

		return regs[len(regs)-1], scope
	}

	return nil, nil
}

func (c *Container) validateDependencies() error {
	var errs errors.MultiError
	problems := make(map[*Registration]string)

	for _, regs := range c.services {
		for _, r := range regs {
			if r.lifetime == Scoped {
				// Scoped services may depend on services registered with a child scope
				continue
			}

			prob := c.validateRegistration(r, problems, make(resolveVisitor))
			if prob != "" {
				errs = errs.Append(errors.Errorf("service %s: %s", r.key(), prob))
			}
		}
	}

	if c.parent != nil {
		// Scoped services of the parent are resolved with this scope
		for _, regs := range c.parent.services {
			for _, r := range regs {
				if r.lifetime != Scoped {
					continue
				}

				prob := c.validateRegistration(r, problems, make(resolveVisitor))
				if prob != "" {
					errs = errs.Append(errors.Errorf("service %s: %s", r.key(), prob))
				}
			}
		}
	}

	return errs.Join()
}

func (c *Container) validateRegistration(r *Registration, problems map[*Registration]string, visitor resolveVisitor) string {
	if prob, ok := problems[r]; ok {
		return prob
	}

	deps := r.act.Dependencies()
	if len(deps) == 0 {
		problems[r] = ""
		return ""
	}

	if !visitor.Enter(r) {
		return ErrDependencyCycle.Error()
	}
	defer visitor.Leave(r)

	fa, _ := r.act.(*funcActivator)

	var probs []string
	for i, depKey := range deps {
		if depKey.Type == typeContext || depKey.Type == typeScope {
			continue
		}

		if depKey.Type.Kind() == reflect.Slice {
			if fa != nil && fa.variadic && i == len(deps)-1 {
				// Variadic dependencies are optional
				continue
			}

			depKey.Type = depKey.Type.Elem()
		}

		depReg, _ := c.lookup(depKey)
		if depReg == nil {
			probs = append(probs, fmt.Sprintf("dependency %s: %s", depKey, ErrServiceNotRegistered))
			continue
		}

		prob := c.validateRegistration(depReg, problems, visitor)
		if prob != "" {
			probs = append(probs, fmt.Sprintf("dependency %s: %s", depKey, prob))
		}
	}

	if len(probs) > 0 {
		joined := strings.Join(probs, "; ")
		problems[r] = joined
		return joined
	}

	return ""
}

// NewScope creates a new [Container] with a child scope.
//
// Services registered with the parent [Container] will be inherited by the child [Container].
// Additional services can be registered with the new scope if needed and they will be isolated from
// the parent and sibling containers.
//
// See [NewCollection] for the available options.
func (c *Container) NewScope(opts ...ContainerOption) (*Container, error) {
	c.closedMu.RLock()
	defer c.closedMu.RUnlock()

	if c.closed {
		return nil, errors.Wrap(ErrContainerClosed, "di.Container.NewScope")
	}

	coll := &Collection{}
	err := coll.Apply(opts...)
	if err != nil {
		return nil, errors.Wrap(err, "di.Container.NewScope")
	}

	scope, err := coll.build(c)
	if err != nil {
		return nil, errors.Wrap(err, "di.Container.NewScope")
	}

	return scope, nil
}

// Contains returns true if the [Container] has a service registered for the given [reflect.Type].
//
// Available options:
//   - [WithTag] specifies a tag associated with the service.
func (c *Container) Contains(t reflect.Type, opts ...ResolveOption) bool {
	// Check if the type is a slice, look for the element type
	if t.Kind() == reflect.Slice {
		t = t.Elem()
	}

	key := newServiceKey(t, opts)
	reg, _ := c.lookup(key)

	return reg != nil
}

// Resolve a service of the given [reflect.Type].
//
// The type must be registered with the [Container]. A slice of a registered type
// resolves every registration of the element type in the order they were added.
// This will return an error if the [Container] has been closed.
//
// Available options:
//   - [WithTag] specifies a tag associated with the service.
func (c *Container) Resolve(ctx context.Context, t reflect.Type, opts ...ResolveOption) (any, error) {
	key := newServiceKey(t, opts)

	c.closedMu.RLock()
	defer c.closedMu.RUnlock()

	if c.closed {
		return nil, errors.Wrapf(ErrContainerClosed, "di.Container.Resolve %s", key)
	}

	val, err := c.resolveKey(ctx, key, make(resolveVisitor), false)
	if err != nil {
		return val, errors.Wrapf(err, "di.Container.Resolve %s", key)
	}

	return val, nil
}

func (c *Container) resolveKey(
	ctx context.Context,
	key serviceKey,
	visitor resolveVisitor,
	optional bool,
) (any, error) {
	if key.Type.Kind() == reflect.Slice {
		return c.resolveSliceKey(ctx, key, visitor, optional)
	}

	reg, owner := c.lookup(key)
	if reg == nil {
		return nil, ErrServiceNotRegistered
	}

	return c.resolveRegistration(ctx, key, reg, owner, visitor)
}

func (c *Container) resolveSliceKey(
	ctx context.Context,
	key serviceKey,
	visitor resolveVisitor,
	optional bool,
) (any, error) {
	elemKey := serviceKey{
		Type: key.Type.Elem(),
		Tag:  key.Tag,
	}

	// Parent registrations come first
	var chain []*Container
	for scope := c; scope != nil; scope = scope.parent {
		chain = append([]*Container{scope}, chain...)
	}

	sliceVal := reflect.MakeSlice(key.Type, 0, 0)
	found := false

	for _, owner := range chain {
		for _, reg := range owner.services[elemKey] {
			val, err := c.resolveRegistration(ctx, elemKey, reg, owner, visitor)
			if err != nil {
				return nil, err
			}
			if val != nil {
				sliceVal = reflect.Append(sliceVal, reflect.ValueOf(val))
			}

			found = true
		}
	}

	if !found && !optional {
		return nil, ErrServiceNotRegistered
	}

	return sliceVal.Interface(), nil
}

func (c *Container) resolveRegistration(
	ctx context.Context,
	key serviceKey,
	reg *Registration,
	owner *Container,
	visitor resolveVisitor,
) (val any, err error) {
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	// Singletons are created by the scope they are registered with.
	// Otherwise, use the current scope.
	scope := c
	switch reg.lifetime {
	case Singleton:
		scope = owner
	case Scoped:
		if c == owner {
			return nil, errors.New("scoped service must be resolved from a child scope")
		}
	}

	var inst *instance
	if reg.lifetime != Transient {
		inst, _ = scope.instances.LoadOrCompute(reg.ID(), newInstance)
		if inst.done.Load() {
			return inst.val, inst.err
		}
	}

	if !visitor.Enter(reg) {
		return nil, ErrDependencyCycle
	}
	defer visitor.Leave(reg)

	deps := reg.act.Dependencies()
	var depVals []reflect.Value

	if len(deps) > 0 {
		fa, _ := reg.act.(*funcActivator)
		depVals = make([]reflect.Value, len(deps))

		for i, depKey := range deps {
			var depVal any
			var depErr error

			switch depKey.Type {
			case typeContext:
				depVal = ctx

			case typeScope:
				injected := &injectedScope{key: key, scope: scope}
				defer injected.setReady()
				depVal = injected

			default:
				// A variadic last parameter is optional
				optional := fa != nil && fa.variadic && i == len(deps)-1

				depVal, depErr = scope.resolveKey(ctx, depKey, visitor, optional)
			}

			if depErr != nil {
				return nil, errors.Wrapf(depErr, "dependency %s", depKey)
			}
			depVals[i] = safeReflectValue(depKey.Type, depVal)
		}
	}

	if inst != nil {
		inst.mu.Lock()
		defer inst.mu.Unlock()

		// Another goroutine may have created the service since the last check
		if inst.done.Load() {
			return inst.val, inst.err
		}

		defer func() {
			inst.val, inst.err = val, err
			inst.done.Store(true)
		}()
	}

	// Factories may resolve other services while they run
	resolver := &resolvingScope{scope: scope, visitor: visitor}

	val, err = reg.act.New(ctx, resolver, depVals)
	if err != nil {
		return val, err
	}

	if val != nil && !reflect.TypeOf(val).AssignableTo(reg.serviceType) {
		return nil, errors.Errorf("value of type %T not assignable to %s", val, reg.serviceType)
	}

	// Value closers are collected when the Container is built
	if _, isValue := reg.act.(*valueActivator); isValue {
		return val, nil
	}

	if closer := reg.closerFor(val); closer != nil {
		scope.closersMu.Lock()
		scope.closers = append(scope.closers, closer)
		scope.closersMu.Unlock()
	}

	return val, nil
}

// CloserCount returns the number of resolved services that will be closed
// when the [Container] is closed.
func (c *Container) CloserCount() int {
	c.closersMu.Lock()
	defer c.closersMu.Unlock()

	return len(c.closers)
}

// Close the [Container] and resolved services.
//
// Services are closed in the reverse order they were resolved/created.
// Errors returned from closing services are joined together.
//
// Close will return an error if called more than once.
func (c *Container) Close(ctx context.Context) error {
	c.closedMu.Lock()
	defer c.closedMu.Unlock()

	if c.closed {
		return errors.Wrap(ErrContainerClosed, "di.Container.Close")
	}
	c.closed = true

	c.closersMu.Lock()
	closers := c.closers
	c.closers = nil
	c.closersMu.Unlock()

	// Close services in LIFO order
	// This is important because of dependencies
	var errs errors.MultiError
	for i := len(closers) - 1; i >= 0; i-- {
		errs = errs.Append(closers[i].Close(ctx))
	}

	c.logger.DebugContext(ctx, "di container closed",
		"closers", len(closers),
		"errors", len(errs),
	)

	return errs.Wrapf("di.Container.Close")
}

// instance holds the result of creating a singleton or scoped service.
type instance struct {
	mu   sync.Mutex
	done atomic.Bool
	val  any
	err  error
}

func newInstance() *instance {
	return &instance{}
}

type resolveVisitor map[uuid.UUID]struct{}

// Enter returns false if the service is already being resolved.
func (v resolveVisitor) Enter(r *Registration) bool {
	if _, exists := v[r.ID()]; exists {
		return false
	}

	v[r.ID()] = struct{}{}
	return true
}

func (v resolveVisitor) Leave(r *Registration) {
	delete(v, r.ID())
}
