package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/shandysiswandi/orvio/internal/otp/entity"
	"github.com/shandysiswandi/orvio/internal/pkg/instrument"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) (*Store, *miniredis.Miniredis) {
	t.Helper()

	srv := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: srv.Addr()})
	t.Cleanup(func() { client.Close() })

	return NewStore(client, instrument.NewNoop(), 15*time.Minute), srv
}

func TestStoreTickRetryCycle(t *testing.T) {
	store, srv := newTestStore(t)
	ctx := context.Background()
	tid := "tid-cycle"

	out, err := store.Tick(ctx, tid, "111111", "device-a", 2)
	require.NoError(t, err)
	assert.Equal(t, entity.TickOutcomeCreated, out)

	depth, err := srv.Get(keyDepth + tid)
	require.NoError(t, err)
	assert.Equal(t, "1", depth)

	out, err = store.Tick(ctx, tid, "222222", "device-b", 2)
	require.NoError(t, err)
	assert.Equal(t, entity.TickOutcomeContinue, out)

	code, err := srv.Get(keyCode + tid)
	require.NoError(t, err)
	assert.Equal(t, "222222", code)

	out, err = store.Tick(ctx, tid, "333333", "device-c", 2)
	require.NoError(t, err)
	assert.Equal(t, entity.TickOutcomeDepthExceeded, out)

	assert.False(t, srv.Exists(keyCode+tid))
	assert.False(t, srv.Exists(keyDevice+tid))
	assert.False(t, srv.Exists(keyAck+tid))
	assert.False(t, srv.Exists(keyDepth+tid))
}

func TestStoreTickAfterAck(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()
	tid := "tid-acked"

	out, err := store.Tick(ctx, tid, "111111", "device-a", 2)
	require.NoError(t, err)
	require.Equal(t, entity.TickOutcomeCreated, out)

	st, err := store.Acknowledge(ctx, tid, "device-a")
	require.NoError(t, err)
	require.Equal(t, entity.AckStatusAcknowledged, st)

	out, err = store.Tick(ctx, tid, "222222", "device-b", 2)
	require.NoError(t, err)
	assert.Equal(t, entity.TickOutcomeAlreadyAcked, out)
}

func TestStoreTickAfterVerify(t *testing.T) {
	store, srv := newTestStore(t)
	ctx := context.Background()
	tid := "tid-verified"

	out, err := store.Tick(ctx, tid, "111111", "device-a", 2)
	require.NoError(t, err)
	require.Equal(t, entity.TickOutcomeCreated, out)

	res, err := store.Verify(ctx, tid, "111111")
	require.NoError(t, err)
	require.Equal(t, entity.VerifyStatusVerified, res.Status)
	assert.Equal(t, "device-a", res.DeviceID)

	// Depth survives so the pending tick observes the verification once.
	assert.True(t, srv.Exists(keyDepth+tid))

	out, err = store.Tick(ctx, tid, "222222", "device-b", 2)
	require.NoError(t, err)
	assert.Equal(t, entity.TickOutcomeAlreadyVerified, out)
	assert.False(t, srv.Exists(keyDepth+tid))

	// With all state gone a further tick starts a fresh cycle.
	out, err = store.Tick(ctx, tid, "333333", "device-c", 2)
	require.NoError(t, err)
	assert.Equal(t, entity.TickOutcomeCreated, out)
}

func TestStoreAcknowledge(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	t.Run("Expired", func(t *testing.T) {
		st, err := store.Acknowledge(ctx, "tid-missing", "device-a")
		require.NoError(t, err)
		assert.Equal(t, entity.AckStatusExpired, st)
	})

	t.Run("WrongDeviceThenDuplicate", func(t *testing.T) {
		tid := "tid-ack"
		_, err := store.Tick(ctx, tid, "111111", "device-a", 2)
		require.NoError(t, err)

		st, err := store.Acknowledge(ctx, tid, "device-b")
		require.NoError(t, err)
		assert.Equal(t, entity.AckStatusWrongDevice, st)

		st, err = store.Acknowledge(ctx, tid, "device-a")
		require.NoError(t, err)
		assert.Equal(t, entity.AckStatusAcknowledged, st)

		st, err = store.Acknowledge(ctx, tid, "device-a")
		require.NoError(t, err)
		assert.Equal(t, entity.AckStatusDuplicate, st)
	})
}

func TestStoreVerify(t *testing.T) {
	store, srv := newTestStore(t)
	ctx := context.Background()

	t.Run("Expired", func(t *testing.T) {
		res, err := store.Verify(ctx, "tid-missing", "111111")
		require.NoError(t, err)
		assert.Equal(t, entity.VerifyStatusExpired, res.Status)
	})

	t.Run("Mismatch", func(t *testing.T) {
		tid := "tid-mismatch"
		_, err := store.Tick(ctx, tid, "111111", "device-a", 2)
		require.NoError(t, err)

		res, err := store.Verify(ctx, tid, "999999")
		require.NoError(t, err)
		assert.Equal(t, entity.VerifyStatusMismatch, res.Status)

		// A mismatch leaves the transaction alive.
		assert.True(t, srv.Exists(keyCode+tid))
	})
}

func TestStoreResolve(t *testing.T) {
	store, srv := newTestStore(t)
	ctx := context.Background()

	t.Run("VerifiedBeforeDeadline", func(t *testing.T) {
		tid := "tid-resolve-ok"
		_, err := store.Tick(ctx, tid, "111111", "device-a", 2)
		require.NoError(t, err)
		_, err = store.Acknowledge(ctx, tid, "device-a")
		require.NoError(t, err)
		_, err = store.Verify(ctx, tid, "111111")
		require.NoError(t, err)

		verified, err := store.Resolve(ctx, tid)
		require.NoError(t, err)
		assert.True(t, verified)
		assert.False(t, srv.Exists(keyDepth+tid))
	})

	t.Run("AckedNeverVerified", func(t *testing.T) {
		tid := "tid-resolve-miss"
		_, err := store.Tick(ctx, tid, "111111", "device-a", 2)
		require.NoError(t, err)
		_, err = store.Acknowledge(ctx, tid, "device-a")
		require.NoError(t, err)

		verified, err := store.Resolve(ctx, tid)
		require.NoError(t, err)
		assert.False(t, verified)
		assert.False(t, srv.Exists(keyCode+tid))
		assert.False(t, srv.Exists(keyDepth+tid))
	})
}
