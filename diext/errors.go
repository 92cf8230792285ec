package diext

import "github.com/sectrean/di-kit-ext/internal/errors"

var (
	// ErrFactoryRegistration is returned by [MakeIndirect] when a registration is backed by a
	// [di.Factory] and has no implementation type to register.
	ErrFactoryRegistration = errors.New("factory registration cannot be made indirect")

	// ErrSelfRegistration is returned when the implementation type of a registration is the
	// service type itself.
	ErrSelfRegistration = errors.New("implementation type is the service type")

	// ErrImplementationConflict is returned by [MakeIndirect] and [AddMultiple] when another
	// registration already uses the same implementation type and tag, so the implementation
	// could not be resolved unambiguously.
	ErrImplementationConflict = errors.New("implementation type is already registered")

	// ErrNilInstance is returned by [RegisterUnlessNull] when the instance is nil.
	ErrNilInstance = errors.New("instance is nil")

	// ErrIntermediateDisposable is returned by [IntermediateRequired] when the temporary
	// Container had services to close, so the resolved value may not outlive it.
	ErrIntermediateDisposable = errors.New("intermediate container owns services that must be closed")
)
