package di

import (
	"fmt"

	"github.com/sectrean/di-kit-ext/internal/errors"
)

// Lifetime specifies how services are created when resolved.
//
// Available lifetimes:
//   - [Singleton] specifies that a service is created once and subsequent requests return the same instance.
//   - [Transient] specifies that a service is created for each request.
//   - [Scoped] specifies that a service is created once per scope.
//
// A Lifetime can be passed directly as a [ServiceOption]:
//
//	c, err := di.NewContainer(
//		di.WithService(NewService, di.Transient),
//	)
type Lifetime uint8

const (
	// Singleton specifies that a service is created once and subsequent requests to resolve return the same instance.
	//
	// This is the default lifetime for services.
	Singleton Lifetime = iota

	// Transient specifies that a service is created for each request.
	Transient

	// Scoped specifies that a service is created once per scope.
	// Scoped services must be resolved from a child scope created with [Container.NewScope].
	Scoped
)

func (l Lifetime) applyRegistration(rc *registrationConfig) error {
	if rc.value != nil && l != Singleton {
		return errors.Errorf("lifetime %s: value services are always singletons", l)
	}

	rc.lifetime = l
	return nil
}

var _ ServiceOption = Singleton

func (l Lifetime) String() string {
	switch l {
	case Singleton:
		return "Singleton"
	case Transient:
		return "Transient"
	case Scoped:
		return "Scoped"
	default:
		return fmt.Sprintf("Unknown Lifetime %d", l)
	}
}
