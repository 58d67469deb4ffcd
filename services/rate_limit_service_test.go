package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func expectCount(mock redismock.ClientMock, key string, count int64, window time.Duration) {
	mock.ExpectTxPipeline()
	mock.ExpectIncr(key).SetVal(count)
	mock.ExpectExpireNX(key, window).SetVal(count == 1)
	mock.ExpectTxPipelineExec()
}

func TestRateLimitService_CheckLimit(t *testing.T) {
	ctx := context.Background()
	window := time.Minute
	key := "feedback:ratelimit:submit:10.0.0.1"

	t.Run("under limit", func(t *testing.T) {
		client, mock := redismock.NewClientMock()
		svc := NewRateLimitService(client)

		expectCount(mock, key, 1, window)

		allowed, retry, err := svc.CheckLimit(ctx, "submit:10.0.0.1", 2, window)
		require.NoError(t, err)
		assert.True(t, allowed)
		assert.Zero(t, retry)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("over limit returns ttl", func(t *testing.T) {
		client, mock := redismock.NewClientMock()
		svc := NewRateLimitService(client)

		expectCount(mock, key, 3, window)
		mock.ExpectTTL(key).SetVal(42 * time.Second)

		allowed, retry, err := svc.CheckLimit(ctx, "submit:10.0.0.1", 2, window)
		require.NoError(t, err)
		assert.False(t, allowed)
		assert.Equal(t, 42*time.Second, retry)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing ttl falls back to window", func(t *testing.T) {
		client, mock := redismock.NewClientMock()
		svc := NewRateLimitService(client)

		expectCount(mock, key, 5, window)
		mock.ExpectTTL(key).SetVal(-1)

		allowed, retry, err := svc.CheckLimit(ctx, "submit:10.0.0.1", 2, window)
		require.NoError(t, err)
		assert.False(t, allowed)
		assert.Equal(t, window, retry)
	})

	t.Run("redis error", func(t *testing.T) {
		client, mock := redismock.NewClientMock()
		svc := NewRateLimitService(client)

		mock.ExpectTxPipeline()
		mock.ExpectIncr(key).SetErr(errors.New("connection refused"))

		_, _, err := svc.CheckLimit(ctx, "submit:10.0.0.1", 2, window)
		assert.Error(t, err)
	})
}
