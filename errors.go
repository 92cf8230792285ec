package di

import "github.com/sectrean/di-kit-ext/internal/errors"

var (
	// ErrServiceNotRegistered is returned when resolving a service that was never registered.
	ErrServiceNotRegistered = errors.New("service not registered")

	// ErrDependencyCycle is returned when a service depends on itself.
	ErrDependencyCycle = errors.New("dependency cycle detected")

	// ErrContainerClosed is returned when using a [Container] after it has been closed.
	ErrContainerClosed = errors.New("container closed")
)
