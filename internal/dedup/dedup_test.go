package dedup

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTryClaimOnce(t *testing.T) {
	s := NewMemoryClaimStore(5 * time.Minute)
	ctx := context.Background()

	claimed, err := s.TryClaim(ctx, "code-abc")
	require.NoError(t, err)
	assert.True(t, claimed)

	claimed, err = s.TryClaim(ctx, "code-abc")
	require.NoError(t, err)
	assert.False(t, claimed, "second claim of the same code must fail")
}

func TestDistinctCodes(t *testing.T) {
	s := NewMemoryClaimStore(5 * time.Minute)
	ctx := context.Background()

	claimed, err := s.TryClaim(ctx, "code-1")
	require.NoError(t, err)
	assert.True(t, claimed)

	claimed, err = s.TryClaim(ctx, "code-2")
	require.NoError(t, err)
	assert.True(t, claimed)
}

func TestClaimableAgainAfterSweep(t *testing.T) {
	s := NewMemoryClaimStore(5 * time.Minute).(*memoryClaimStore)
	ctx := context.Background()

	base := time.Now()
	s.now = func() time.Time { return base }
	claimed, err := s.TryClaim(ctx, "code-abc")
	require.NoError(t, err)
	require.True(t, claimed)

	s.now = func() time.Time { return base.Add(6 * time.Minute) }
	claimed, err = s.TryClaim(ctx, "code-abc")
	require.NoError(t, err)
	assert.True(t, claimed, "code should be claimable again once swept")
}

func TestConcurrentClaimsSingleWinner(t *testing.T) {
	s := NewMemoryClaimStore(5 * time.Minute)
	ctx := context.Background()

	const goroutines = 32
	var wg sync.WaitGroup
	var mu sync.Mutex
	winners := 0

	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			claimed, err := s.TryClaim(ctx, "contested")
			require.NoError(t, err)
			if claimed {
				mu.Lock()
				winners++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, winners)
}
