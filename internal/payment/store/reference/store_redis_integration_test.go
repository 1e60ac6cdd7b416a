//go:build integration

package reference_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/suite"

	"certpay/internal/payment/store/reference"
	"certpay/pkg/testutil/containers"
)

type RedisRegistrySuite struct {
	suite.Suite
	redis    *containers.RedisContainer
	registry *reference.RedisRegistry
}

func TestRedisRegistrySuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(RedisRegistrySuite))
}

func (s *RedisRegistrySuite) SetupSuite() {
	s.redis = containers.NewRedisContainer(s.T())
	s.registry = reference.NewRedis(s.redis.Client)
}

func (s *RedisRegistrySuite) TearDownSuite() {
	if s.redis != nil {
		_ = s.redis.Client.Close()
		_ = s.redis.Container.Terminate(context.Background())
	}
}

func (s *RedisRegistrySuite) SetupTest() {
	s.Require().NoError(s.redis.FlushAll(context.Background()))
}

func (s *RedisRegistrySuite) TestContainsAndTryCommit() {
	ctx := context.Background()

	found, err := s.registry.Contains(ctx, "REF123456")
	s.Require().NoError(err)
	s.False(found)

	committed, err := s.registry.TryCommit(ctx, "REF123456")
	s.Require().NoError(err)
	s.True(committed)

	found, err = s.registry.Contains(ctx, "REF123456")
	s.Require().NoError(err)
	s.True(found)

	committed, err = s.registry.TryCommit(ctx, "REF123456")
	s.Require().NoError(err)
	s.False(committed)
}

// TestConcurrentTryCommit relies on SETNX being a single atomic command.
func (s *RedisRegistrySuite) TestConcurrentTryCommit() {
	ctx := context.Background()
	const goroutines = 50

	var wg sync.WaitGroup
	var wins atomic.Int32

	for range goroutines {
		wg.Add(1)
		go func() {
			defer wg.Done()
			committed, err := s.registry.TryCommit(ctx, "REF777777")
			s.NoError(err)
			if committed {
				wins.Add(1)
			}
		}()
	}
	wg.Wait()

	s.Equal(int32(1), wins.Load())
}
