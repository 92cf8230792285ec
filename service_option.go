package di

import (
	"reflect"

	"github.com/sectrean/di-kit-ext/internal/errors"
)

// ServiceOption can be used when calling [WithService], [WithFactory], [WithType],
// [NewRegistrations] or [NewFactoryRegistration].
//
// Available options:
//   - [Lifetime] specifies how services are created when resolved.
//   - [As] registers the service as another type.
//   - [WithTag] specifies the tag associated with a service.
//   - [WithTagged] specifies a tag for a dependency of a constructor function.
//   - [WithCloseFunc] specifies a function to be called when the service is closed.
//   - [IgnoreCloser] specifies that the service should not be closed by the Container.
//     Function services are closed by default if they implement [Closer] or a compatible function signature.
//   - [WithCloser] specifies that the service should be closed by the Container if it implements [Closer] or a compatible function signature.
//     This is the default for function services. Value services are not closed by default.
type ServiceOption interface {
	applyRegistration(*registrationConfig) error
}

type serviceOption func(*registrationConfig) error

func (o serviceOption) applyRegistration(rc *registrationConfig) error {
	return o(rc)
}

// As registers the service as type T. Use when calling [WithService].
//
// The service is registered once for each As option instead of its own type.
// All of the registrations share the same instances.
func As[T any]() ServiceOption {
	return serviceOption(func(rc *registrationConfig) error {
		t := reflect.TypeFor[T]()
		return errors.Wrapf(rc.addAlias(t), "as %s", t)
	})
}
