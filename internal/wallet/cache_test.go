package wallet

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestRedisBalanceCache_Get(t *testing.T) {
	client, mock := redismock.NewClientMock()
	cache := NewRedisBalanceCache(client, time.Minute)
	ctx := context.Background()

	mock.ExpectMGet("wallet:balance:7", "wallet:balance:7:gen").SetVal([]interface{}{"70000", "2"})
	entry, err := cache.Get(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, CacheEntry{Balance: 70000, Hit: true, Generation: 2}, entry)

	mock.ExpectMGet("wallet:balance:8", "wallet:balance:8:gen").SetVal([]interface{}{nil, "5"})
	entry, err = cache.Get(ctx, 8)
	require.NoError(t, err)
	assert.Equal(t, CacheEntry{Generation: 5}, entry)

	mock.ExpectMGet("wallet:balance:9", "wallet:balance:9:gen").SetVal([]interface{}{nil, nil})
	entry, err = cache.Get(ctx, 9)
	require.NoError(t, err)
	assert.Equal(t, CacheEntry{}, entry)

	mock.ExpectMGet("wallet:balance:10", "wallet:balance:10:gen").SetErr(errors.New("connection refused"))
	_, err = cache.Get(ctx, 10)
	assert.Error(t, err)

	mock.ExpectMGet("wallet:balance:11", "wallet:balance:11:gen").SetVal([]interface{}{"not-a-number", nil})
	_, err = cache.Get(ctx, 11)
	assert.Error(t, err)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisBalanceCache_FillAndInvalidate(t *testing.T) {
	client, mock := redismock.NewClientMock()
	cache := NewRedisBalanceCache(client, 5*time.Minute)
	ctx := context.Background()

	mock.ExpectEval(fillScript, []string{"wallet:balance:7", "wallet:balance:7:gen"}, int64(3), int64(50000), int64(300000)).
		SetVal(int64(1))
	require.NoError(t, cache.Fill(ctx, 7, 50000, 3))

	mock.ExpectIncr("wallet:balance:7:gen").SetVal(4)
	mock.ExpectDel("wallet:balance:7").SetVal(1)
	require.NoError(t, cache.Invalidate(ctx, 7))

	mock.ExpectIncr("wallet:balance:8:gen").SetErr(errors.New("connection refused"))
	assert.Error(t, cache.Invalidate(ctx, 8))

	assert.NoError(t, mock.ExpectationsWereMet())
}

// memCache mirrors the generation rules of the Redis cache.
type memCache struct {
	balances    map[int]int64
	generations map[int]int64
}

func newMemCache() *memCache {
	return &memCache{balances: map[int]int64{}, generations: map[int]int64{}}
}

func (c *memCache) Get(_ context.Context, userID int) (CacheEntry, error) {
	b, ok := c.balances[userID]
	return CacheEntry{Balance: b, Hit: ok, Generation: c.generations[userID]}, nil
}

func (c *memCache) Fill(_ context.Context, userID int, balance, generation int64) error {
	if c.generations[userID] == generation {
		c.balances[userID] = balance
	}
	return nil
}

func (c *memCache) Invalidate(_ context.Context, userID int) error {
	c.generations[userID]++
	delete(c.balances, userID)
	return nil
}

func TestGetBalance_WriteDuringReadIsNotCached(t *testing.T) {
	cache := newMemCache()
	repo := new(MockRepository)
	// A payment commits between the reader's database load and its cache fill.
	repo.On("GetBalance", mock.Anything, 7).Return(int64(50000), nil).Once().
		Run(func(mock.Arguments) { _ = cache.Invalidate(context.Background(), 7) })
	repo.On("GetBalance", mock.Anything, 7).Return(int64(45000), nil).Once()
	svc, _ := newTestService(repo, cache, nil)
	ctx := context.Background()

	b, err := svc.GetBalance(ctx, patron, 7)
	require.NoError(t, err)
	assert.Equal(t, int64(50000), b.MoneyBalance)
	assert.NotContains(t, cache.balances, 7, "stale balance must not be cached")

	b, err = svc.GetBalance(ctx, patron, 7)
	require.NoError(t, err)
	assert.Equal(t, int64(45000), b.MoneyBalance)
	assert.Equal(t, int64(45000), cache.balances[7])

	b, err = svc.GetBalance(ctx, patron, 7)
	require.NoError(t, err)
	assert.Equal(t, int64(45000), b.MoneyBalance)
	repo.AssertExpectations(t)
}
