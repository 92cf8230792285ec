package diext

import (
	"reflect"

	"github.com/google/uuid"
	"github.com/sectrean/di-kit-ext"
	"github.com/sectrean/di-kit-ext/internal/errors"
)

// Action is a named, reusable registration procedure for services of one type.
//
// [Action.Run] applies the action to a [di.Collection] at most once. Whether an action has
// been applied is tracked by the Collection, so the same Action can be shared by modules and
// used with any number of independent Collections.
type Action struct {
	id          uuid.UUID
	name        string
	serviceType reflect.Type
	fn          func(*di.Collection) error
}

// NewAction creates an [Action] that registers services of type T by calling fn.
//
// Example:
//
//	var Caching = diext.NewAction[Cache]("caching", func(c *di.Collection) error {
//		return c.Apply(
//			di.WithService(NewMemoryCache, di.As[Cache]()),
//		)
//	})
func NewAction[T any](name string, fn func(*di.Collection) error) *Action {
	return &Action{
		id:          uuid.New(),
		name:        name,
		serviceType: reflect.TypeFor[T](),
		fn:          fn,
	}
}

// ID uniquely identifies the Action.
func (a *Action) ID() uuid.UUID {
	return a.id
}

// Name returns the name given to [NewAction].
func (a *Action) Name() string {
	return a.name
}

// ServiceType returns the type of service the Action registers.
func (a *Action) ServiceType() reflect.Type {
	return a.serviceType
}

func (a *Action) String() string {
	return a.name + " (" + a.serviceType.String() + ")"
}

// Run applies the Action to c if it has not already been applied to c.
// Running an applied Action again does nothing.
//
// The Action is marked as applied while it runs, so actions that run each other do not
// recurse. The mark is removed if the Action fails, so a failed Run can be retried.
func (a *Action) Run(c *di.Collection) error {
	if c.Applied(a.id) {
		c.Logger().Debug("diext action already applied",
			"action", a.name,
			"service_type", a.serviceType,
		)
		return nil
	}

	c.MarkApplied(a.id)

	if err := a.call(c); err != nil {
		c.UnmarkApplied(a.id)
		return err
	}

	return nil
}

// Rerun applies the Action to c even if it has already been applied.
//
// Rerun is only safe for actions whose work is idempotent, such as actions that remove
// registrations before adding them. Any other action will register its services again.
// Rerun does not mark the Action as applied.
func (a *Action) Rerun(c *di.Collection) error {
	return a.call(c)
}

// Option returns a [di.ContainerOption] that calls [Action.Run].
// It can be used with [di.NewContainer] or in a [di.Module].
func (a *Action) Option() di.ContainerOption {
	return di.ApplyFunc(a.Run)
}

func (a *Action) call(c *di.Collection) error {
	if a.fn == nil {
		return errors.Errorf("diext.Action %s: fn is nil", a.name)
	}

	c.Logger().Debug("diext action running",
		"action", a.name,
		"service_type", a.serviceType,
	)

	err := a.fn(c)
	return errors.Wrapf(err, "diext.Action %s", a.name)
}

// RunAll calls [Action.Run] for each action in order.
// It stops at the first error.
func RunAll(c *di.Collection, actions ...*Action) error {
	for i, a := range actions {
		if a == nil {
			return errors.Errorf("diext.RunAll: action %d is nil", i)
		}

		if err := a.Run(c); err != nil {
			return err
		}
	}

	return nil
}
