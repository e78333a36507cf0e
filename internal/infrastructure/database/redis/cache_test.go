package redis

import (
	"context"
	stderrors "errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/turtacn/lipinski-analyzer/internal/infrastructure/monitoring/logging"
	pkgerrors "github.com/turtacn/lipinski-analyzer/pkg/errors"
)

type testStruct struct {
	Name string `json:"name"`
	Age  int    `json:"age"`
}

type CacheTestSuite struct {
	suite.Suite
	client *Client
	mr     *miniredis.Miniredis
	cache  Cache
}

func (s *CacheTestSuite) SetupTest() {
	s.client, s.mr = newTestClient(s.T())
	s.cache = NewRedisCache(s.client, logging.NewNopLogger(), WithPrefix("test:"), WithDefaultTTL(time.Hour))
}

func (s *CacheTestSuite) TestSetGet_RoundTrip() {
	ctx := context.Background()
	val := testStruct{Name: "John", Age: 30}

	s.Require().NoError(s.cache.Set(ctx, "key1", val, 0))

	var dest testStruct
	s.Require().NoError(s.cache.Get(ctx, "key1", &dest))
	s.Equal(val, dest)

	raw, err := s.client.Get(ctx, "test:key1").Result()
	s.Require().NoError(err)
	s.JSONEq(`{"name":"John","age":30}`, raw)
}

func (s *CacheTestSuite) TestSet_TTLIsJittered() {
	ctx := context.Background()
	s.Require().NoError(s.cache.Set(ctx, "k", 1, 0))

	ttl := s.mr.TTL("test:k")
	s.GreaterOrEqual(ttl, 54*time.Minute)
	s.LessOrEqual(ttl, 66*time.Minute)
}

func (s *CacheTestSuite) TestGet_CacheMiss() {
	var dest testStruct
	err := s.cache.Get(context.Background(), "absent", &dest)
	s.Equal(ErrCacheMiss, err)
	s.True(pkgerrors.IsNotFound(err))
}

func (s *CacheTestSuite) TestGet_CorruptValue() {
	ctx := context.Background()
	s.Require().NoError(s.client.Set(ctx, "test:bad", "{not json", 0).Err())

	var dest testStruct
	err := s.cache.Get(ctx, "bad", &dest)
	s.True(pkgerrors.IsCode(err, pkgerrors.ErrCodeSerialization))
}

func (s *CacheTestSuite) TestGetOrSet_Hit() {
	ctx := context.Background()
	val := testStruct{Name: "John", Age: 30}
	s.Require().NoError(s.cache.Set(ctx, "key1", val, 0))

	var dest testStruct
	err := s.cache.GetOrSet(ctx, "key1", &dest, time.Minute, func(context.Context) (interface{}, error) {
		s.Fail("loader must not run on a hit")
		return nil, nil
	})
	s.Require().NoError(err)
	s.Equal(val, dest)
}

func (s *CacheTestSuite) TestGetOrSet_MissLoadsAndStores() {
	ctx := context.Background()
	var calls int32
	loader := func(context.Context) (interface{}, error) {
		atomic.AddInt32(&calls, 1)
		time.Sleep(50 * time.Millisecond)
		return testStruct{Name: "Jane", Age: 41}, nil
	}

	var wg sync.WaitGroup
	results := make([]testStruct, 8)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			s.NoError(s.cache.GetOrSet(ctx, "shared", &results[i], time.Minute, loader))
		}(i)
	}
	wg.Wait()

	for _, r := range results {
		s.Equal("Jane", r.Name)
	}
	s.Equal(int32(1), atomic.LoadInt32(&calls), "concurrent misses share one load")

	var stored testStruct
	s.Require().NoError(s.cache.Get(ctx, "shared", &stored))
	s.Equal(41, stored.Age)
}

func (s *CacheTestSuite) TestGetOrSet_LoaderError() {
	boom := stderrors.New("boom")
	var dest testStruct
	err := s.cache.GetOrSet(context.Background(), "k", &dest, 0, func(context.Context) (interface{}, error) {
		return nil, boom
	})
	s.ErrorIs(err, boom)
}

func (s *CacheTestSuite) TestGetOrSet_SlowLoaderStillStores() {
	cache := NewRedisCache(s.client, nil, WithPrefix("test:"), WithOperationTimeout(50*time.Millisecond))
	var dest testStruct
	err := cache.GetOrSet(context.Background(), "slow", &dest, time.Minute, func(context.Context) (interface{}, error) {
		time.Sleep(120 * time.Millisecond)
		return testStruct{Name: "Slow", Age: 7}, nil
	})
	s.Require().NoError(err)
	s.Equal("Slow", dest.Name)
	s.True(s.mr.Exists("test:slow"), "the write gets its own timeout")
}

func TestCacheSuite(t *testing.T) {
	suite.Run(t, new(CacheTestSuite))
}

func TestCache_BackendErrors(t *testing.T) {
	db, mock := redismock.NewClientMock()
	cache := NewRedisCache(newClient(db, logging.NewNopLogger()), nil, WithPrefix("test:"))
	ctx := context.Background()

	mock.ExpectGet("test:k").SetErr(stderrors.New("connection reset"))
	var dest int
	err := cache.Get(ctx, "k", &dest)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.ErrCodeCacheError))

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCache_SetRejectsUnserializable(t *testing.T) {
	client, _ := newTestClient(t)
	cache := NewRedisCache(client, nil)

	err := cache.Set(context.Background(), "k", make(chan int), 0)
	assert.Equal(t, ErrSerializationFailed, err)
}

//Personal.AI order the ending
