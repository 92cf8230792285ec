package diext

import (
	"context"
	"reflect"

	"github.com/sectrean/di-kit-ext"
	"github.com/sectrean/di-kit-ext/internal/errors"
)

// IndirectOption is used to configure [MakeIndirect] and [MakeIndirectOf].
type IndirectOption[S any] interface {
	applyIndirect(*indirectConfig[S]) error
}

type indirectConfig[S any] struct {
	forward func(S) S
}

type indirectOption[S any] func(*indirectConfig[S]) error

func (o indirectOption[S]) applyIndirect(cfg *indirectConfig[S]) error {
	return o(cfg)
}

// WithForwarder sets the function that wraps the implementation before it is returned as
// service type S. The function is usually the constructor of a struct that embeds S.
//
// Without a forwarder the implementation itself is returned as S.
//
// Example:
//
//	type loggerProxy struct{ Logger }
//
//	err := diext.MakeIndirect[Logger](coll, diext.WithForwarder(func(inner Logger) Logger {
//		return &loggerProxy{inner}
//	}))
func WithForwarder[S any](fn func(inner S) S) IndirectOption[S] {
	return indirectOption[S](func(cfg *indirectConfig[S]) error {
		if fn == nil {
			return errors.New("with forwarder: fn is nil")
		}

		cfg.forward = fn
		return nil
	})
}

// MakeIndirect rewrites every registration of service type S in c, including tagged ones.
//
// Each registration is replaced by two registrations with the same lifetime and tag:
//   - the implementation type registered as itself, sharing instances with the original
//     registration, so it can be resolved directly;
//   - a factory for S that resolves the implementation and passes it through the
//     forwarder set with [WithForwarder].
//
// Registrations that are already indirect are skipped, so calling MakeIndirect again is a no-op.
// They keep the forwarder they were created with; a different [WithForwarder] passed to a later
// call only applies to registrations of S added since.
//
// The implementation is resolved by its type and tag, so it must be the only registration with
// that type and tag. Registering the implementation type again after the rewrite overrides it.
//
// [ErrFactoryRegistration] is returned if a registration of S is backed by a [di.Factory],
// [ErrSelfRegistration] if its implementation type is S, and [ErrImplementationConflict] if
// another registration already has the same implementation type and tag. The Collection is
// not changed if an error is returned.
func MakeIndirect[S any](c *di.Collection, opts ...IndirectOption[S]) error {
	_, err := makeIndirect[S](c, opts)
	return errors.Wrapf(err, "diext.MakeIndirect %s", reflect.TypeFor[S]())
}

// Indirect exposes the implementation behind an indirect registration.
// It can be resolved as *Indirect[S, I] after calling [MakeIndirectOf].
type Indirect[S, I any] struct {
	inner   I
	service S
}

// Inner returns the implementation resolved for the service.
func (w *Indirect[S, I]) Inner() I {
	return w.inner
}

// Service returns the implementation as service type S, after it has been passed through
// the forwarder.
func (w *Indirect[S, I]) Service() S {
	return w.service
}

// MakeIndirectOf is like [MakeIndirect], and also registers *Indirect[S, I] for each
// registration of S implemented by I. It is mostly useful for diagnostics and tests.
//
// An error is returned if no registration of S is implemented by I.
func MakeIndirectOf[S, I any](c *di.Collection, opts ...IndirectOption[S]) error {
	serviceType := reflect.TypeFor[S]()
	implType := reflect.TypeFor[I]()

	err := makeIndirectOf[S, I](c, opts)
	return errors.Wrapf(err, "diext.MakeIndirectOf %s %s", serviceType, implType)
}

func makeIndirectOf[S, I any](c *di.Collection, opts []IndirectOption[S]) error {
	implType := reflect.TypeFor[I]()
	wrapperType := reflect.TypeFor[*Indirect[S, I]]()

	factories, err := makeIndirect[S](c, opts)
	if err != nil {
		return err
	}

	found := false
	for _, f := range factories {
		if f.implType != implType {
			continue
		}
		found = true

		if c.Contains(wrapperType, di.WithTag(f.tag)) {
			continue
		}

		reg, err := di.NewFactoryRegistration(wrapperType,
			di.FactoryFunc(func(ctx context.Context, s di.Scope) (any, error) {
				inner, err := f.resolveInner(ctx, s)
				if err != nil {
					return nil, err
				}

				i, _ := inner.(I)
				svc, _ := f.forward(inner).(S)

				return &Indirect[S, I]{inner: i, service: svc}, nil
			}),
			f.lifetime,
			di.WithTag(f.tag),
			di.IgnoreCloser(),
		)
		if err != nil {
			return err
		}

		c.Add(reg)
	}

	if !found {
		return errors.Errorf("no registration of %s is implemented by %s", reflect.TypeFor[S](), implType)
	}

	return nil
}

// makeIndirect rewrites the registrations of S and returns the indirect factories for S,
// including ones created by earlier calls.
func makeIndirect[S any](c *di.Collection, opts []IndirectOption[S]) ([]*indirectFactory, error) {
	serviceType := reflect.TypeFor[S]()

	cfg := &indirectConfig[S]{}
	var errs errors.MultiError
	for _, opt := range opts {
		errs = errs.Append(opt.applyIndirect(cfg))
	}
	if err := errs.Join(); err != nil {
		return nil, err
	}

	regs := c.FindAll(serviceType)

	// Check every registration before changing anything
	type implKey struct {
		t   reflect.Type
		tag any
	}
	seen := make(map[implKey]struct{}, len(regs))
	rewritten := 0

	for _, r := range regs {
		if IsIndirect(r) {
			continue
		}
		rewritten++

		if r.Factory() != nil {
			return nil, errors.Wrapf(ErrFactoryRegistration, "registration %s", r)
		}

		implType := r.ImplementationType()
		if implType == serviceType {
			return nil, errors.Wrapf(ErrSelfRegistration, "registration %s", r)
		}

		key := implKey{t: implType, tag: r.Tag()}
		if _, ok := seen[key]; ok {
			return nil, errors.Wrapf(ErrImplementationConflict, "registration %s", r)
		}
		seen[key] = struct{}{}

		if conflict := conflictingRegistration(c, implType, r); conflict != nil {
			return nil, errors.Wrapf(ErrImplementationConflict, "registration %s conflicts with %s", r, conflict)
		}
	}

	if rewritten == 0 && cfg.forward != nil && len(regs) > 0 {
		c.Logger().Debug("diext forwarder ignored, registrations are already indirect",
			"service_type", serviceType,
		)
	}

	factories := make([]*indirectFactory, 0, len(regs))
	for _, r := range regs {
		if f, ok := r.Factory().(*indirectFactory); ok {
			factories = append(factories, f)
			continue
		}

		f, err := rewrite[S](c, r, cfg.forward)
		if err != nil {
			return nil, err
		}

		factories = append(factories, f)
	}

	return factories, nil
}

func rewrite[S any](c *di.Collection, r *di.Registration, forward func(S) S) (*indirectFactory, error) {
	serviceType := r.ServiceType()
	implType := r.ImplementationType()

	self, err := r.As(implType)
	if err != nil {
		return nil, err
	}

	f := &indirectFactory{
		serviceType: serviceType,
		implType:    implType,
		tag:         r.Tag(),
		lifetime:    r.Lifetime(),
	}
	if forward != nil {
		f.forwardFunc = func(inner any) any {
			svc, _ := inner.(S)
			return forward(svc)
		}
	}

	indirect, err := di.NewFactoryRegistration(serviceType, f,
		r.Lifetime(),
		di.WithTag(r.Tag()),
		// The implementation registration closes the service
		di.IgnoreCloser(),
	)
	if err != nil {
		return nil, err
	}

	c.Remove(r)

	// The implementation may already be registered as itself by the same di.WithService call
	if !c.Contains(implType, di.WithTag(r.Tag())) {
		c.Add(self)
	}
	c.Add(indirect)

	c.Logger().Debug("diext indirect registration",
		"service_type", serviceType,
		"implementation_type", implType,
		"lifetime", r.Lifetime(),
		"tag", r.Tag(),
	)

	return f, nil
}

// conflictingRegistration returns a registration of type t with the tag of r that does not
// share instances with r, or nil.
func conflictingRegistration(c *di.Collection, t reflect.Type, r *di.Registration) *di.Registration {
	for _, existing := range c.FindAll(t, di.WithTag(r.Tag())) {
		if existing.ID() != r.ID() {
			return existing
		}
	}
	return nil
}

// IsIndirect returns true if r is a service registration created by [MakeIndirect].
func IsIndirect(r *di.Registration) bool {
	if r == nil {
		return false
	}

	_, ok := r.Factory().(*indirectFactory)
	return ok
}

// indirectFactory resolves the implementation registered as itself and forwards it as the
// service type.
type indirectFactory struct {
	serviceType reflect.Type
	implType    reflect.Type
	tag         any
	lifetime    di.Lifetime
	forwardFunc func(inner any) any
}

func (f *indirectFactory) New(ctx context.Context, s di.Scope) (any, error) {
	inner, err := f.resolveInner(ctx, s)
	if err != nil {
		return nil, err
	}

	return f.forward(inner), nil
}

func (f *indirectFactory) resolveInner(ctx context.Context, s di.Scope) (any, error) {
	var opts []di.ResolveOption
	if f.tag != nil {
		opts = append(opts, di.WithTag(f.tag))
	}

	return s.Resolve(ctx, f.implType, opts...)
}

func (f *indirectFactory) forward(inner any) any {
	if inner == nil || f.forwardFunc == nil {
		return inner
	}
	return f.forwardFunc(inner)
}

var _ di.Factory = (*indirectFactory)(nil)
