package di_test

import (
	"testing"

	"github.com/sectrean/di-kit-ext"
	"github.com/sectrean/di-kit-ext/internal/errors"
	"github.com/sectrean/di-kit-ext/internal/testtypes"
	"github.com/sectrean/di-kit-ext/internal/testutils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_NewCollection(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		coll, err := di.NewCollection()
		require.NoError(t, err)

		assert.Equal(t, 0, coll.Len())
		assert.Empty(t, coll.Registrations())
		assert.NotNil(t, coll.Logger())
	})

	t.Run("errors joined", func(t *testing.T) {
		coll, err := di.NewCollection(
			di.WithService(nil),
			di.WithService(testtypes.NewConsoleLogger),
			di.WithService(1234),
		)
		testutils.LogError(t, err)

		assert.Nil(t, coll)
		assert.EqualError(t, err, "di.NewCollection: with service <nil>: funcOrValue is nil\n"+
			"with service int: invalid service type")
	})
}

func Test_Collection_Apply(t *testing.T) {
	t.Run("in order", func(t *testing.T) {
		coll, err := di.NewCollection()
		require.NoError(t, err)

		err = coll.Apply(
			di.WithService(testtypes.NewSMSNotifier, di.As[testtypes.Notifier]()),
			di.WithService(testtypes.PushNotifier{Topic: "a"}, di.As[testtypes.Notifier]()),
		)
		require.NoError(t, err)

		regs := coll.FindAll(testtypes.TypeNotifier)
		require.Len(t, regs, 2)
		assert.Equal(t, reflectType[*testtypes.SMSNotifier](), regs[0].ImplementationType())
		assert.Equal(t, reflectType[testtypes.PushNotifier](), regs[1].ImplementationType())
	})

	t.Run("apply func", func(t *testing.T) {
		coll, err := di.NewCollection(
			di.ApplyFunc(func(c *di.Collection) error {
				return c.Apply(di.WithService(testtypes.NewConsoleLogger))
			}),
		)
		require.NoError(t, err)

		assert.True(t, coll.Contains(testtypes.TypeConsoleLogger))
	})

	t.Run("apply func error", func(t *testing.T) {
		coll, err := di.NewCollection()
		require.NoError(t, err)

		err = coll.Apply(
			di.ApplyFunc(func(*di.Collection) error { return errors.New("apply failed") }),
			di.ApplyFunc(nil),
		)
		testutils.LogError(t, err)

		assert.EqualError(t, err, "apply failed\napply func: fn is nil")
	})

	t.Run("nested modules", func(t *testing.T) {
		inner := di.Module{
			di.WithService(testtypes.NewConsoleLogger, di.As[testtypes.Logger]()),
		}
		outer := di.Module{
			di.WithModule(inner),
			di.WithService(testtypes.NewEmailNotifier),
		}

		coll, err := di.NewCollection(di.WithModule(outer))
		require.NoError(t, err)

		assert.Equal(t, 2, coll.Len())
		assert.True(t, coll.Contains(testtypes.TypeLogger))
	})
}

func Test_Collection_AddRemove(t *testing.T) {
	coll, err := di.NewCollection()
	require.NoError(t, err)

	regs, err := di.NewRegistrations(testtypes.NewConsoleLogger,
		di.As[testtypes.Logger](),
		di.As[*testtypes.ConsoleLogger](),
	)
	require.NoError(t, err)
	require.Len(t, regs, 2)

	got := coll.Add(regs...).Add(nil)
	assert.Same(t, coll, got)
	assert.Equal(t, 2, coll.Len())

	got = coll.Remove(regs[0])
	assert.Same(t, coll, got)
	assert.Equal(t, 1, coll.Len())
	assert.False(t, coll.Contains(testtypes.TypeLogger))
	assert.True(t, coll.Contains(testtypes.TypeConsoleLogger))

	// Removing a registration that is not in the Collection does nothing
	coll.Remove(regs[0])
	assert.Equal(t, 1, coll.Len())
}

func Test_Collection_FindAll(t *testing.T) {
	coll, err := di.NewCollection(
		di.WithService(testtypes.NewSMSNotifier, di.As[testtypes.Notifier]()),
		di.WithService(testtypes.PushNotifier{Topic: "a"}, di.As[testtypes.Notifier](), di.WithTag("push")),
		di.WithService(testtypes.NewConsoleLogger),
	)
	require.NoError(t, err)

	t.Run("all tags", func(t *testing.T) {
		regs := coll.FindAll(testtypes.TypeNotifier)
		require.Len(t, regs, 2)
		assert.Nil(t, regs[0].Tag())
		assert.Equal(t, "push", regs[1].Tag())
	})

	t.Run("with tag", func(t *testing.T) {
		regs := coll.FindAll(testtypes.TypeNotifier, di.WithTag("push"))
		require.Len(t, regs, 1)
		assert.Equal(t, "push", regs[0].Tag())
	})

	t.Run("without tag", func(t *testing.T) {
		regs := coll.FindAll(testtypes.TypeNotifier, di.WithTag(nil))
		require.Len(t, regs, 1)
		assert.Nil(t, regs[0].Tag())
	})

	t.Run("none", func(t *testing.T) {
		assert.Empty(t, coll.FindAll(testtypes.TypeCache))
		assert.False(t, coll.Contains(testtypes.TypeCache))
	})
}

func Test_Collection_Registrations(t *testing.T) {
	coll, err := di.NewCollection(
		di.WithService(testtypes.NewConsoleLogger),
	)
	require.NoError(t, err)

	regs := coll.Registrations()
	regs[0] = nil

	assert.NotNil(t, coll.Registrations()[0])
}

func Test_Collection_Applied(t *testing.T) {
	coll, err := di.NewCollection()
	require.NoError(t, err)

	assert.False(t, coll.Applied("logging"))

	coll.MarkApplied("logging")
	assert.True(t, coll.Applied("logging"))
	assert.False(t, coll.Applied("caching"))

	other, err := di.NewCollection()
	require.NoError(t, err)
	assert.False(t, other.Applied("logging"))

	coll.UnmarkApplied("logging")
	assert.False(t, coll.Applied("logging"))

	// Unmarking an id that was never marked does nothing
	other.UnmarkApplied("caching")
	assert.False(t, other.Applied("caching"))
}

func Test_Collection_Build(t *testing.T) {
	t.Run("snapshot", func(t *testing.T) {
		coll, err := di.NewCollection(
			di.WithService(testtypes.NewConsoleLogger, di.As[testtypes.Logger]()),
		)
		require.NoError(t, err)

		c, err := coll.Build()
		require.NoError(t, err)

		coll.Remove(coll.FindAll(testtypes.TypeLogger)[0])
		err = coll.Apply(di.WithService(testtypes.NewSMSNotifier))
		require.NoError(t, err)

		assert.True(t, c.Contains(testtypes.TypeLogger))
		assert.False(t, c.Contains(reflectType[*testtypes.SMSNotifier]()))
	})

	t.Run("build twice", func(t *testing.T) {
		coll, err := di.NewCollection(
			di.WithService(testtypes.NewConsoleLogger),
		)
		require.NoError(t, err)

		c1, err := coll.Build()
		require.NoError(t, err)
		c2, err := coll.Build()
		require.NoError(t, err)

		assert.NotSame(t,
			di.MustResolve[*testtypes.ConsoleLogger](ctx, c1),
			di.MustResolve[*testtypes.ConsoleLogger](ctx, c2),
		)
	})

	t.Run("dependency validation", func(t *testing.T) {
		coll, err := di.NewCollection(
			di.WithDependencyValidation(),
			di.WithService(testtypes.NewEmailNotifier),
		)
		require.NoError(t, err)

		c, err := coll.Build()
		testutils.LogError(t, err)

		assert.Nil(t, c)
		assert.ErrorContains(t, err, "di.Collection.Build: dependency validation")
	})
}
