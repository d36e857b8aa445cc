package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sevenpm/date-backend/internal/repository"
)

func TestBlockExpiry(t *testing.T) {
	ctx := context.Background()
	dbase := setupTestDB(t)
	repo := repository.NewBlockRepository(dbase)

	now := time.Now().UTC()
	require.NoError(t, repo.Upsert(ctx, "blocker", "blocked", now.Add(30*24*time.Hour)))

	// inside the cooldown window
	blocked, err := repo.IsBlocked(ctx, "blocker", "blocked", now.Add(29*24*time.Hour))
	require.NoError(t, err)
	assert.True(t, blocked)

	// strictly after expiry
	blocked, err = repo.IsBlocked(ctx, "blocker", "blocked", now.Add(31*24*time.Hour))
	require.NoError(t, err)
	assert.False(t, blocked)

	// blocks are private: the other direction is unaffected
	blocked, err = repo.IsBlocked(ctx, "blocked", "blocker", now)
	require.NoError(t, err)
	assert.False(t, blocked)
}

func TestBlockReUpsertRefreshesExpiry(t *testing.T) {
	ctx := context.Background()
	dbase := setupTestDB(t)
	repo := repository.NewBlockRepository(dbase)

	now := time.Now().UTC()
	require.NoError(t, repo.Upsert(ctx, "blocker", "blocked", now.Add(time.Hour)))
	require.NoError(t, repo.Upsert(ctx, "blocker", "blocked", now.Add(48*time.Hour)))

	blocked, err := repo.IsBlocked(ctx, "blocker", "blocked", now.Add(24*time.Hour))
	require.NoError(t, err)
	assert.True(t, blocked)

	active, err := repo.ActiveBlockedIDs(ctx, "blocker", now)
	require.NoError(t, err)
	assert.Len(t, active, 1)
}
