package errack_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/go-redis/redismock/v8"
	"github.com/remiges-tech/errack/errack"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return mr, client
}

func TestStatusStore(t *testing.T) {
	mr, client := newTestRedis(t)
	store := errack.NewStatusStore(client)
	ctx := context.Background()

	t.Run("no status yet", func(t *testing.T) {
		_, err := store.LastRun(ctx, "job-errors")
		assert.True(t, errors.Is(err, errack.ErrNoRunStatus))
	})

	t.Run("success is recorded with next run and ttl", func(t *testing.T) {
		started := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
		err := store.RecordSuccess(ctx, "job-errors", errack.Result{
			StartedAt:    started,
			Acknowledged: []int64{1, 2, 3},
			NextRunAt:    started.Add(time.Hour),
		})
		require.NoError(t, err)

		status, err := store.LastRun(ctx, "job-errors")
		require.NoError(t, err)
		assert.Equal(t, errack.OutcomeSuccess, status.Outcome)
		assert.Equal(t, 3, status.Acknowledged)
		assert.True(t, started.Equal(status.At))
		require.NotNil(t, status.NextRun)
		assert.True(t, started.Add(time.Hour).Equal(*status.NextRun))
		assert.Equal(t, store.InstanceID(), status.Instance)
		assert.Empty(t, status.ErrorKind)

		assert.Equal(t, 7*24*time.Hour, mr.TTL(errack.LastRunKey("job-errors")))
	})

	t.Run("failure replaces the previous status", func(t *testing.T) {
		runErr := &errack.PersistenceFailure{Op: errack.OpCommit, Unit: "errack", Err: errors.New("conn reset")}
		require.NoError(t, store.RecordFailure(ctx, "job-errors", runErr, time.Now()))

		status, err := store.LastRun(ctx, "job-errors")
		require.NoError(t, err)
		assert.Equal(t, errack.OutcomeFailed, status.Outcome)
		assert.Equal(t, errack.ErrCodePersistence, status.ErrorKind)
		assert.Contains(t, status.Error, "conn reset")
		assert.Nil(t, status.NextRun)
		assert.Equal(t, 0, status.Acknowledged)
	})
}

func TestStatusStoreWithoutRedis(t *testing.T) {
	store := errack.NewStatusStore(nil)
	ctx := context.Background()

	assert.NoError(t, store.RecordSuccess(ctx, "job-errors", errack.Result{}))
	_, err := store.LastRun(ctx, "job-errors")
	assert.True(t, errors.Is(err, errack.ErrNoRunStatus))
}

func TestStatusStoreRedisErrors(t *testing.T) {
	client, mock := redismock.NewClientMock()
	store := errack.NewStatusStore(client)
	ctx := context.Background()

	mock.ExpectHGetAll(errack.LastRunKey("job-errors")).SetErr(errors.New("redis down"))
	_, err := store.LastRun(ctx, "job-errors")
	assert.Error(t, err)
	assert.False(t, errors.Is(err, errack.ErrNoRunStatus))

	// No expectation is set for HSET, so the mock rejects it.
	err = store.RecordSuccess(ctx, "job-errors", errack.Result{StartedAt: time.Now()})
	assert.Error(t, err)
}
