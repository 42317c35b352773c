package token

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRevokeIsIdempotent(t *testing.T) {
	store := NewMemoryRevocationStore(24 * time.Hour)
	ctx := context.Background()

	require.NoError(t, store.Revoke(ctx, "tok-1"))
	require.NoError(t, store.Revoke(ctx, "tok-1"))

	revoked, err := store.IsRevoked(ctx, "tok-1")
	require.NoError(t, err)
	assert.True(t, revoked)
}

func TestIsRevokedUnknownToken(t *testing.T) {
	store := NewMemoryRevocationStore(24 * time.Hour)

	revoked, err := store.IsRevoked(context.Background(), "never-seen")
	require.NoError(t, err)
	assert.False(t, revoked)
}

func TestRevocationEntriesExpire(t *testing.T) {
	store := NewMemoryRevocationStore(24 * time.Hour).(*memoryRevocationStore)
	ctx := context.Background()

	base := time.Now()
	store.now = func() time.Time { return base }
	require.NoError(t, store.Revoke(ctx, "tok-1"))

	// Still revoked just inside the TTL.
	store.now = func() time.Time { return base.Add(23 * time.Hour) }
	revoked, err := store.IsRevoked(ctx, "tok-1")
	require.NoError(t, err)
	assert.True(t, revoked)

	// Swept once the TTL has passed.
	store.now = func() time.Time { return base.Add(25 * time.Hour) }
	revoked, err = store.IsRevoked(ctx, "tok-1")
	require.NoError(t, err)
	assert.False(t, revoked)
}
