package redis

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/shandysiswandi/orvio/internal/pkg/goerror"
	"github.com/shandysiswandi/orvio/internal/pkg/instrument"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDirectory(t *testing.T) (*Directory, *miniredis.Miniredis) {
	t.Helper()

	srv := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: srv.Addr()})
	t.Cleanup(func() { client.Close() })

	return NewDirectory(client, instrument.NewNoop()), srv
}

func TestDirectory(t *testing.T) {
	ctx := context.Background()

	t.Run("EmptyPool", func(t *testing.T) {
		dir, _ := newTestDirectory(t)

		dev, err := dir.RandomActive(ctx)
		assert.Nil(t, dev)
		require.ErrorIs(t, err, goerror.ErrNotFound)
	})

	t.Run("RegisterAndPick", func(t *testing.T) {
		dir, _ := newTestDirectory(t)

		require.NoError(t, dir.Register(ctx, "device-a", "token-a"))

		dev, err := dir.RandomActive(ctx)
		require.NoError(t, err)
		assert.Equal(t, "device-a", dev.ID)
		assert.Equal(t, "token-a", dev.PushToken)
		assert.True(t, dev.Active)
	})

	t.Run("RegisterRefreshesToken", func(t *testing.T) {
		dir, _ := newTestDirectory(t)

		require.NoError(t, dir.Register(ctx, "device-a", "token-old"))
		require.NoError(t, dir.Register(ctx, "device-a", "token-new"))

		dev, err := dir.RandomActive(ctx)
		require.NoError(t, err)
		assert.Equal(t, "token-new", dev.PushToken)
	})

	t.Run("Deactivate", func(t *testing.T) {
		dir, srv := newTestDirectory(t)

		require.NoError(t, dir.Register(ctx, "device-a", "token-a"))
		require.NoError(t, dir.Deactivate(ctx, "device-a"))

		_, err := dir.RandomActive(ctx)
		require.ErrorIs(t, err, goerror.ErrNotFound)
		assert.False(t, srv.Exists(keyDeviceTokens))
	})
}
