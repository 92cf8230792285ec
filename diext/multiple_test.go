package diext_test

import (
	"reflect"
	"testing"

	"github.com/sectrean/di-kit-ext"
	"github.com/sectrean/di-kit-ext/diext"
	"github.com/sectrean/di-kit-ext/internal/testtypes"
	"github.com/sectrean/di-kit-ext/internal/testutils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newNotifierCollection(t *testing.T) *di.Collection {
	t.Helper()

	coll, err := di.NewCollection(
		di.WithService(testtypes.NewConsoleLogger, di.As[testtypes.Logger]()),
	)
	require.NoError(t, err)

	require.NoError(t, diext.AddMultiple[testtypes.Notifier](coll, testtypes.NewEmailNotifier))
	require.NoError(t, diext.AddMultiple[testtypes.Notifier](coll, testtypes.NewSMSNotifier))
	require.NoError(t, diext.AddMultiple[testtypes.Notifier](coll, testtypes.PushNotifier{Topic: "news"}))

	return coll
}

func Test_AddMultiple(t *testing.T) {
	t.Run("resolve in order", func(t *testing.T) {
		coll := newNotifierCollection(t)

		c, err := coll.Build()
		require.NoError(t, err)

		got, err := diext.ResolveMultiple[testtypes.Notifier](ctx, c)
		require.NoError(t, err)
		require.Len(t, got, 3)

		assert.IsType(t, &testtypes.EmailNotifier{}, got[0])
		assert.IsType(t, &testtypes.SMSNotifier{}, got[1])
		assert.Equal(t, testtypes.PushNotifier{Topic: "news"}, got[2])

		var msgs []string
		for _, n := range got {
			msgs = append(msgs, n.Notify("hi"))
		}
		assert.Equal(t, []string{"email: hi", "sms: hi", "push news: hi"}, msgs)
	})

	t.Run("service type not registered", func(t *testing.T) {
		coll := newNotifierCollection(t)

		assert.False(t, coll.Contains(testtypes.TypeNotifier))

		c, err := coll.Build()
		require.NoError(t, err)

		got, err := di.Resolve[testtypes.Notifier](ctx, c)
		testutils.LogError(t, err)

		assert.Nil(t, got)
		assert.ErrorIs(t, err, di.ErrServiceNotRegistered)
	})

	t.Run("implementations are singletons", func(t *testing.T) {
		coll := newNotifierCollection(t)

		c, err := coll.Build()
		require.NoError(t, err)

		got, err := diext.ResolveMultiple[testtypes.Notifier](ctx, c)
		require.NoError(t, err)

		email := di.MustResolve[*testtypes.EmailNotifier](ctx, c)
		sms := di.MustResolve[*testtypes.SMSNotifier](ctx, c)

		assert.Same(t, email, got[0])
		assert.Same(t, sms, got[1])

		again, err := diext.ResolveMultiple[testtypes.Notifier](ctx, c)
		require.NoError(t, err)
		assert.Same(t, got[0], again[0])
	})

	t.Run("lifetime option ignored", func(t *testing.T) {
		coll, err := di.NewCollection()
		require.NoError(t, err)

		err = diext.AddMultiple[testtypes.Notifier](coll, testtypes.NewSMSNotifier, di.Transient)
		require.NoError(t, err)

		regs := coll.FindAll(reflect.TypeFor[*testtypes.SMSNotifier]())
		require.Len(t, regs, 1)
		assert.Equal(t, di.Singleton, regs[0].Lifetime())
	})

	t.Run("tagged implementation", func(t *testing.T) {
		coll, err := di.NewCollection()
		require.NoError(t, err)

		err = diext.AddMultiple[testtypes.Notifier](coll, testtypes.NewSMSNotifier, di.WithTag("sms"))
		require.NoError(t, err)

		c, err := coll.Build()
		require.NoError(t, err)

		got, err := diext.ResolveMultiple[testtypes.Notifier](ctx, c)
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Same(t, di.MustResolve[*testtypes.SMSNotifier](ctx, c, di.WithTag("sms")), got[0])
	})

	t.Run("not assignable", func(t *testing.T) {
		coll, err := di.NewCollection()
		require.NoError(t, err)

		err = diext.AddMultiple[testtypes.Notifier](coll, testtypes.NewConsoleLogger)
		testutils.LogError(t, err)

		assert.EqualError(t, err, "diext.AddMultiple testtypes.Notifier: "+
			"type *testtypes.ConsoleLogger not assignable to testtypes.Notifier")
		assert.Equal(t, 0, coll.Len())
	})

	t.Run("implementation is service type", func(t *testing.T) {
		coll, err := di.NewCollection()
		require.NoError(t, err)

		err = diext.AddMultiple[testtypes.Notifier](coll, func() testtypes.Notifier {
			return testtypes.NewSMSNotifier()
		})
		testutils.LogError(t, err)

		assert.ErrorIs(t, err, diext.ErrSelfRegistration)
		assert.Equal(t, 0, coll.Len())
	})

	t.Run("as option", func(t *testing.T) {
		coll, err := di.NewCollection()
		require.NoError(t, err)

		err = diext.AddMultiple[testtypes.Notifier](coll, testtypes.NewSMSNotifier, di.As[testtypes.Notifier]())
		testutils.LogError(t, err)

		assert.EqualError(t, err, "diext.AddMultiple testtypes.Notifier: "+
			"implementation must be registered as *testtypes.SMSNotifier")
	})

	t.Run("same implementation type twice", func(t *testing.T) {
		coll, err := di.NewCollection()
		require.NoError(t, err)

		err = diext.AddMultiple[testtypes.Notifier](coll, testtypes.PushNotifier{Topic: "one"})
		require.NoError(t, err)
		n := coll.Len()

		err = diext.AddMultiple[testtypes.Notifier](coll, testtypes.PushNotifier{Topic: "two"})
		testutils.LogError(t, err)

		assert.ErrorIs(t, err, diext.ErrImplementationConflict)
		assert.Equal(t, n, coll.Len())
	})

	t.Run("implementation type already registered", func(t *testing.T) {
		coll, err := di.NewCollection(
			di.WithService(testtypes.NewSMSNotifier),
		)
		require.NoError(t, err)

		err = diext.AddMultiple[testtypes.Notifier](coll, testtypes.NewSMSNotifier)
		testutils.LogError(t, err)

		assert.ErrorIs(t, err, diext.ErrImplementationConflict)
		assert.Equal(t, 1, coll.Len())
	})

	t.Run("same implementation type with tags", func(t *testing.T) {
		coll, err := di.NewCollection()
		require.NoError(t, err)

		err = diext.AddMultiple[testtypes.Notifier](coll, testtypes.PushNotifier{Topic: "one"}, di.WithTag("one"))
		require.NoError(t, err)
		err = diext.AddMultiple[testtypes.Notifier](coll, testtypes.PushNotifier{Topic: "two"}, di.WithTag("two"))
		require.NoError(t, err)

		c, err := coll.Build()
		require.NoError(t, err)

		got, err := diext.ResolveMultiple[testtypes.Notifier](ctx, c)
		require.NoError(t, err)
		require.Len(t, got, 2)

		assert.Equal(t, "push one: x", got[0].Notify("x"))
		assert.Equal(t, "push two: x", got[1].Notify("x"))
	})

	t.Run("nil", func(t *testing.T) {
		coll, err := di.NewCollection()
		require.NoError(t, err)

		err = diext.AddMultiple[testtypes.Notifier](coll, nil)
		testutils.LogError(t, err)

		assert.EqualError(t, err, "diext.AddMultiple testtypes.Notifier: funcOrValue is nil")
	})
}

func Test_WithMultiple(t *testing.T) {
	c, err := di.NewContainer(
		di.WithService(testtypes.NewConsoleLogger, di.As[testtypes.Logger]()),
		diext.WithMultiple[testtypes.Notifier](testtypes.NewSMSNotifier),
		diext.WithMultiple[testtypes.Notifier](testtypes.NewEmailNotifier),
	)
	require.NoError(t, err)

	got, err := diext.ResolveMultiple[testtypes.Notifier](ctx, c)
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, "sms: a", got[0].Notify("a"))
	assert.Equal(t, "email: b", got[1].Notify("b"))
}

func Test_ResolveMultiple(t *testing.T) {
	t.Run("none added", func(t *testing.T) {
		c, err := di.NewContainer()
		require.NoError(t, err)

		got, err := diext.ResolveMultiple[testtypes.Notifier](ctx, c)
		require.NoError(t, err)

		assert.Empty(t, got)
	})

	t.Run("child scope", func(t *testing.T) {
		c, err := di.NewContainer(
			di.WithService(testtypes.NewConsoleLogger, di.As[testtypes.Logger]()),
			diext.WithMultiple[testtypes.Notifier](testtypes.NewEmailNotifier),
		)
		require.NoError(t, err)

		scope, err := c.NewScope(
			diext.WithMultiple[testtypes.Notifier](testtypes.NewSMSNotifier),
		)
		require.NoError(t, err)

		got, err := diext.ResolveMultiple[testtypes.Notifier](ctx, scope)
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.IsType(t, &testtypes.EmailNotifier{}, got[0])
		assert.IsType(t, &testtypes.SMSNotifier{}, got[1])

		parent, err := diext.ResolveMultiple[testtypes.Notifier](ctx, c)
		require.NoError(t, err)
		require.Len(t, parent, 1)
		assert.Same(t, parent[0], got[0])
	})
}
