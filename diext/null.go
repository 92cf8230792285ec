package diext

import (
	"reflect"
	"slices"

	"github.com/sectrean/di-kit-ext"
	"github.com/sectrean/di-kit-ext/internal/errors"
	"github.com/sectrean/di-kit-ext/internal/typeutil"
)

// NullService is implemented by null objects: implementations of a service that
// intentionally do nothing.
type NullService interface {
	IsNullService() bool
}

// RegisterUnlessNull registers instance as a singleton value of service type S.
//
// If instance is a [NullService] sentinel, its type is registered as S instead and the
// Container constructs a new zero value of that type when S is resolved. This lets callers
// either provide an instance or ask for the default null implementation using one call.
//
// [ErrNilInstance] is returned if instance is nil.
func RegisterUnlessNull[S any](c *di.Collection, instance S, opts ...di.ServiceOption) error {
	serviceType := reflect.TypeFor[S]()

	err := registerUnlessNull(c, instance, opts)
	return errors.Wrapf(err, "diext.RegisterUnlessNull %s", serviceType)
}

func registerUnlessNull[S any](c *di.Collection, instance S, opts []di.ServiceOption) error {
	if typeutil.IsNil(instance) {
		return ErrNilInstance
	}

	opts = append(slices.Clone(opts), di.As[S]())

	if ns, ok := any(instance).(NullService); ok && ns.IsNullService() {
		t := reflect.TypeOf(instance)

		c.Logger().Debug("diext null service registered as type",
			"service_type", reflect.TypeFor[S](),
			"implementation_type", t,
		)

		return c.Apply(di.WithTypeOf(t, opts...))
	}

	return c.Apply(di.WithService(instance, opts...))
}
