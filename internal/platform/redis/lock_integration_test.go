//go:build integration

package redis_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"custodian/internal/platform/config"
	"custodian/internal/platform/redis"
	"custodian/pkg/testutil/containers"
)

type LockIntegrationSuite struct {
	suite.Suite
	redis  *containers.RedisContainer
	client *redis.Client
}

func TestLockIntegrationSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(LockIntegrationSuite))
}

func (s *LockIntegrationSuite) SetupSuite() {
	s.redis = containers.GetManager().GetRedis(s.T())
	client, err := redis.New(context.Background(), config.Redis{URL: s.redis.URL, PoolSize: 4})
	s.Require().NoError(err)
	s.client = client
}

func (s *LockIntegrationSuite) TearDownSuite() {
	if s.client != nil {
		_ = s.client.Close()
	}
}

func (s *LockIntegrationSuite) SetupTest() {
	s.Require().NoError(s.redis.FlushAll(context.Background()))
}

func (s *LockIntegrationSuite) TestHoldersNeverOverlap() {
	ctx := context.Background()
	// two locks on the same key stand in for two processes
	locks := []*redis.Lock{
		redis.NewLock(s.client, "custodian:test:sweep", time.Minute),
		redis.NewLock(s.client, "custodian:test:sweep", time.Minute),
	}

	var inside, maxInside atomic.Int32
	var wg sync.WaitGroup
	for i := range 6 {
		lock := locks[i%2]
		wg.Go(func() {
			release, err := lock.Acquire(ctx)
			s.NoError(err)
			n := inside.Add(1)
			for {
				m := maxInside.Load()
				if n <= m || maxInside.CompareAndSwap(m, n) {
					break
				}
			}
			time.Sleep(20 * time.Millisecond)
			inside.Add(-1)
			release()
		})
	}
	wg.Wait()
	s.Equal(int32(1), maxInside.Load())
}

func (s *LockIntegrationSuite) TestAcquireHonoursContext() {
	ctx := context.Background()
	lock := redis.NewLock(s.client, "custodian:test:busy", time.Minute)
	release, err := lock.Acquire(ctx)
	s.Require().NoError(err)
	defer release()

	waitCtx, cancel := context.WithTimeout(ctx, 300*time.Millisecond)
	defer cancel()
	_, err = redis.NewLock(s.client, "custodian:test:busy", time.Minute).Acquire(waitCtx)
	s.ErrorIs(err, context.DeadlineExceeded)
}

func (s *LockIntegrationSuite) TestExpiredHolderCannotReleaseNewOwner() {
	ctx := context.Background()
	key := "custodian:test:ttl"
	stale, err := redis.NewLock(s.client, key, 200*time.Millisecond).Acquire(ctx)
	s.Require().NoError(err)

	time.Sleep(400 * time.Millisecond)
	fresh, err := redis.NewLock(s.client, key, time.Minute).Acquire(ctx)
	s.Require().NoError(err)
	defer fresh()

	stale()
	exists, err := s.client.Exists(ctx, key).Result()
	s.Require().NoError(err)
	s.Equal(int64(1), exists)
}

func (s *LockIntegrationSuite) TestHealth() {
	s.NoError(s.client.Health(context.Background()))
}
