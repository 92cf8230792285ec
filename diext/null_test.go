package diext_test

import (
	"testing"

	"github.com/sectrean/di-kit-ext"
	"github.com/sectrean/di-kit-ext/diext"
	"github.com/sectrean/di-kit-ext/internal/testtypes"
	"github.com/sectrean/di-kit-ext/internal/testutils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// optionalCache is only a null service while it is disabled.
type optionalCache struct {
	testtypes.NullCache
	enabled bool
}

func (c *optionalCache) IsNullService() bool {
	return !c.enabled
}

func Test_RegisterUnlessNull(t *testing.T) {
	t.Run("null service", func(t *testing.T) {
		coll, err := di.NewCollection()
		require.NoError(t, err)

		sentinel := &testtypes.NullCache{}
		err = diext.RegisterUnlessNull[testtypes.Cache](coll, sentinel)
		require.NoError(t, err)

		regs := coll.FindAll(testtypes.TypeCache)
		require.Len(t, regs, 1)
		assert.Equal(t, testtypes.TypeNullCache, regs[0].ImplementationType())

		_, isValue := regs[0].Value()
		assert.False(t, isValue)

		c, err := coll.Build()
		require.NoError(t, err)

		got, err := di.Resolve[testtypes.Cache](ctx, c)
		require.NoError(t, err)

		assert.IsType(t, &testtypes.NullCache{}, got)
		assert.NotSame(t, sentinel, got)
	})

	t.Run("instance", func(t *testing.T) {
		coll, err := di.NewCollection()
		require.NoError(t, err)

		cache := testtypes.NewMemoryCache()
		err = diext.RegisterUnlessNull[testtypes.Cache](coll, cache)
		require.NoError(t, err)

		regs := coll.FindAll(testtypes.TypeCache)
		require.Len(t, regs, 1)

		val, isValue := regs[0].Value()
		assert.True(t, isValue)
		assert.Same(t, cache, val)

		c, err := coll.Build()
		require.NoError(t, err)

		got := di.MustResolve[testtypes.Cache](ctx, c)
		assert.Same(t, cache, got)
	})

	t.Run("not a null service", func(t *testing.T) {
		coll, err := di.NewCollection()
		require.NoError(t, err)

		cache := &optionalCache{enabled: true}
		err = diext.RegisterUnlessNull[testtypes.Cache](coll, cache)
		require.NoError(t, err)

		c, err := coll.Build()
		require.NoError(t, err)

		got := di.MustResolve[testtypes.Cache](ctx, c)
		assert.Same(t, cache, got)
	})

	t.Run("with tag", func(t *testing.T) {
		coll, err := di.NewCollection()
		require.NoError(t, err)

		err = diext.RegisterUnlessNull[testtypes.Cache](coll, &testtypes.NullCache{}, di.WithTag("fallback"))
		require.NoError(t, err)

		assert.False(t, coll.Contains(testtypes.TypeCache, di.WithTag(nil)))
		assert.True(t, coll.Contains(testtypes.TypeCache, di.WithTag("fallback")))
	})

	t.Run("nil", func(t *testing.T) {
		coll, err := di.NewCollection()
		require.NoError(t, err)

		err = diext.RegisterUnlessNull[testtypes.Cache](coll, nil)
		testutils.LogError(t, err)

		assert.ErrorIs(t, err, diext.ErrNilInstance)
		assert.EqualError(t, err, "diext.RegisterUnlessNull testtypes.Cache: instance is nil")
	})

	t.Run("typed nil", func(t *testing.T) {
		coll, err := di.NewCollection()
		require.NoError(t, err)

		var cache *testtypes.NullCache
		err = diext.RegisterUnlessNull[testtypes.Cache](coll, cache)
		testutils.LogError(t, err)

		assert.ErrorIs(t, err, diext.ErrNilInstance)
		assert.Equal(t, 0, coll.Len())
	})
}
