package diext

import (
	"context"
	"reflect"

	"github.com/sectrean/di-kit-ext"
	"github.com/sectrean/di-kit-ext/internal/errors"
)

// UseIntermediate builds a temporary [di.Container] from the registrations currently in c,
// resolves a service of type T and calls fn with it. The temporary Container is closed after
// fn returns, so the service must not be used after fn returns.
//
// This is useful when a service is needed to decide what else to register.
// The Collection is not changed.
//
// Example:
//
//	err := diext.UseIntermediate(ctx, coll, func(cfg *Config) error {
//		if cfg.CacheEnabled {
//			return coll.Apply(di.WithService(NewMemoryCache, di.As[Cache]()))
//		}
//		return diext.RegisterUnlessNull[Cache](coll, &NullCache{})
//	})
func UseIntermediate[T any](ctx context.Context, c *di.Collection, fn func(T) error) (err error) {
	t := reflect.TypeFor[T]()

	if fn == nil {
		return errors.Errorf("diext.UseIntermediate %s: fn is nil", t)
	}

	tmp, err := c.Build()
	if err != nil {
		return errors.Wrapf(err, "diext.UseIntermediate %s", t)
	}
	defer func() {
		if closeErr := tmp.Close(ctx); closeErr != nil {
			err = errors.Join(err, errors.Wrapf(closeErr, "diext.UseIntermediate %s", t))
		}
	}()

	val, err := di.Resolve[T](ctx, tmp)
	if err != nil {
		return errors.Wrapf(err, "diext.UseIntermediate %s", t)
	}

	return fn(val)
}

// IntermediateRequired builds a temporary [di.Container] from the registrations currently in c,
// resolves a service of type T and returns it after closing the temporary Container.
//
// Returning the service is only safe if nothing resolved for it needs to be closed.
// [ErrIntermediateDisposable] is returned if the temporary Container had anything to close,
// including values registered with [di.WithCloser]. Use [UseIntermediate] for those services.
func IntermediateRequired[T any](ctx context.Context, c *di.Collection) (val T, err error) {
	t := reflect.TypeFor[T]()

	tmp, err := c.Build()
	if err != nil {
		return val, errors.Wrapf(err, "diext.IntermediateRequired %s", t)
	}
	defer func() {
		if closeErr := tmp.Close(ctx); closeErr != nil {
			err = errors.Join(err, errors.Wrapf(closeErr, "diext.IntermediateRequired %s", t))
		}
	}()

	resolved, err := di.Resolve[T](ctx, tmp)
	if err != nil {
		return val, errors.Wrapf(err, "diext.IntermediateRequired %s", t)
	}

	if n := tmp.CloserCount(); n > 0 {
		c.Logger().WarnContext(ctx, "diext intermediate service owns closers",
			"service_type", t,
			"closers", n,
		)
		return val, errors.Wrapf(ErrIntermediateDisposable, "diext.IntermediateRequired %s", t)
	}

	return resolved, nil
}
