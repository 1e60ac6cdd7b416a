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

type PostgresRegistrySuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	registry *reference.PostgresRegistry
}

func TestPostgresRegistrySuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresRegistrySuite))
}

func (s *PostgresRegistrySuite) SetupSuite() {
	s.postgres = containers.NewPostgresContainer(s.T())
	s.registry = reference.NewPostgres(s.postgres.DB)
}

func (s *PostgresRegistrySuite) TearDownSuite() {
	if s.postgres != nil {
		_ = s.postgres.DB.Close()
		_ = s.postgres.Container.Terminate(context.Background())
	}
}

func (s *PostgresRegistrySuite) SetupTest() {
	s.Require().NoError(s.postgres.TruncateAll(context.Background()))
}

func (s *PostgresRegistrySuite) TestContainsAndTryCommit() {
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
	s.False(committed, "a committed reference cannot be committed again")
}

// TestConcurrentTryCommit verifies that concurrent commits of the same
// reference result in exactly one success, enforced by the primary key.
func (s *PostgresRegistrySuite) TestConcurrentTryCommit() {
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

	s.Equal(int32(1), wins.Load(), "exactly one commit may win")
}
