/*
Package diext provides registration helpers built on [di.Collection].

The helpers are meant to be used by a composition root while services are being registered:

  - [Action] is a named registration procedure that runs at most once per [di.Collection].
  - [MakeIndirect] rewrites the registrations of a service type so the implementation is
    registered as itself and the service type forwards to it.
  - [AddMultiple] and [ResolveMultiple] register many implementations of one service type
    without making the service type itself resolvable.
  - [RegisterUnlessNull] registers an instance, or lets the Container construct the type of a
    [NullService] sentinel.
  - [UseIntermediate] resolves a service from a temporary Container while registration is
    still in progress.

Example:

	var Logging = diext.NewAction[Logger]("logging", func(c *di.Collection) error {
		return c.Apply(
			di.WithService(NewConsoleLogger, di.As[Logger]()),
		)
	})

	coll, err := di.NewCollection()
	err = diext.RunAll(coll, Logging, Notifications)
	err = diext.MakeIndirect[Logger](coll, diext.WithForwarder(NewLoggerProxy))
	c, err := coll.Build()
*/
package diext
