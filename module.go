package di

import "slices"

// A Module is a collection of container options.
// It can be used to export a re-usable group of related services.
//
// Example:
//
//	var DependencyModule = di.Module{
//		di.WithService(NewDB),
//		di.WithService(NewStore),
//		di.WithService(NewService),
//	}
type Module []ContainerOption

// Modules are flattened before options are applied.
func (Module) applyCollection(*Collection) error { return nil }

// WithModule applies the options in a [Module] when calling [NewContainer],
// [NewCollection] or [Container.NewScope].
//
// Example:
//
//	c, err := di.NewContainer(
//		di.WithModule(DependencyModule), // var DependencyModule di.Module
//		di.WithService(NewHandler), // NewHandler(*slog.Logger, *db.DB) *Handler
//	)
func WithModule(m Module) ContainerOption {
	return m
}

func flattenModules(opts []ContainerOption) []ContainerOption {
	flat := make([]ContainerOption, 0, len(opts))
	for _, opt := range opts {
		if mod, ok := opt.(Module); ok {
			flat = append(flat, flattenModules(slices.Clone(mod))...)
			continue
		}
		flat = append(flat, opt)
	}

	return flat
}
