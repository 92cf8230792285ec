package di

import (
	"context"
	"reflect"

	"github.com/sectrean/di-kit-ext/internal/errors"
)

// Invoke calls the given function with parameters resolved from the provided Scope.
//
// The function may take any number of parameters which will be resolved from the Scope,
// and may return any number of results.
// An [error] return parameter will be passed along and any other return parameters are ignored.
//
// Available options:
//   - [WithTagged] specifies a tag for a parameter.
func Invoke(ctx context.Context, s Scope, fn any, opts ...InvokeOption) error {
	if fn == nil {
		return errors.New("di.Invoke: fn is nil")
	}

	fnType := reflect.TypeOf(fn)
	if fnType.Kind() != reflect.Func {
		return errors.Errorf("di.Invoke %T: fn must be a function", fn)
	}

	deps := make([]serviceKey, fnType.NumIn())
	for i := range fnType.NumIn() {
		deps[i] = serviceKey{Type: fnType.In(i)}
	}

	config := &invokeConfig{deps: deps}

	err := applyOptions(opts, func(opt InvokeOption) error {
		return opt.applyInvokeConfig(config)
	})
	if err != nil {
		return errors.Wrapf(err, "di.Invoke %T", fn)
	}

	in := make([]reflect.Value, len(config.deps))
	for i, dep := range config.deps {
		var depVal any
		var depErr error

		switch {
		case dep.Type == typeContext:
			depVal = ctx
		case dep.Type == typeScope:
			depVal = s
		case dep.Tag != nil:
			depVal, depErr = s.Resolve(ctx, dep.Type, WithTag(dep.Tag))
		default:
			depVal, depErr = s.Resolve(ctx, dep.Type)
		}

		if depErr != nil {
			return errors.Wrapf(depErr, "di.Invoke %T", fn)
		}
		in[i] = safeReflectValue(dep.Type, depVal)
	}

	if ctx.Err() != nil {
		return errors.Wrapf(ctx.Err(), "di.Invoke %T", fn)
	}

	out := reflect.ValueOf(fn).Call(in)

	// Return the first error return value, if any.
	// Don't wrap the error, return it as-is.
	for i := range fnType.NumOut() {
		if fnType.Out(i) == typeError {
			err, _ := out[i].Interface().(error)
			return err
		}
	}

	return nil
}

// InvokeOption is used to configure the behavior of [Invoke].
//
// Available options:
//   - [WithTagged]
type InvokeOption interface {
	applyInvokeConfig(*invokeConfig) error
}

type invokeConfig struct {
	deps []serviceKey
}
