package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/sevenpm/date-backend/internal/db"
	"github.com/sevenpm/date-backend/internal/repository"
)

// setup in-memory DB
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	database, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		NowFunc: func() time.Time { return time.Now().UTC().Truncate(time.Millisecond) },
	})
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	if err := db.Migrate(database); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	return database
}

func TestCreateDecisionFirstWriteWins(t *testing.T) {
	ctx := context.Background()
	dbase := setupTestDB(t)
	repo := repository.NewDecisionRepository(dbase)

	sessionID := uuid.New().String()

	// first decision: connect
	err := repo.CreateDecision(ctx, sessionID, "user-a", true)
	assert.NoError(t, err)

	// duplicate decision with the opposite verdict must be a no-op
	err = repo.CreateDecision(ctx, sessionID, "user-a", false)
	assert.NoError(t, err)

	d, err := repo.GetForUser(ctx, sessionID, "user-a")
	require.NoError(t, err)
	assert.True(t, d.Connect)

	decisions, err := repo.GetForSession(ctx, sessionID)
	require.NoError(t, err)
	assert.Len(t, decisions, 1)
}

func TestGetForSessionBothSides(t *testing.T) {
	ctx := context.Background()
	dbase := setupTestDB(t)
	repo := repository.NewDecisionRepository(dbase)

	sessionID := uuid.New().String()
	require.NoError(t, repo.CreateDecision(ctx, sessionID, "user-a", true))
	require.NoError(t, repo.CreateDecision(ctx, sessionID, "user-b", false))
	// a different session must not leak in
	require.NoError(t, repo.CreateDecision(ctx, uuid.New().String(), "user-a", true))

	decisions, err := repo.GetForSession(ctx, sessionID)
	require.NoError(t, err)
	assert.Len(t, decisions, 2)
}

func TestRSVPIdempotent(t *testing.T) {
	ctx := context.Background()
	dbase := setupTestDB(t)
	repo := repository.NewRSVPRepository(dbase)

	inserted, err := repo.Upsert(ctx, "user-a", "2026-08-30")
	require.NoError(t, err)
	assert.True(t, inserted)

	inserted, err = repo.Upsert(ctx, "user-a", "2026-08-30")
	require.NoError(t, err)
	assert.False(t, inserted, "repeat opt-in is a no-op")

	confirmed, err := repo.Confirmed(ctx, "user-a", "2026-08-30")
	require.NoError(t, err)
	assert.True(t, confirmed)

	count, err := repo.CountForDate(ctx, "2026-08-30")
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}
