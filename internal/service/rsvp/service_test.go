package rsvp_test

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/sevenpm/date-backend/internal/app"
	"github.com/sevenpm/date-backend/internal/cache"
	"github.com/sevenpm/date-backend/internal/config"
	"github.com/sevenpm/date-backend/internal/db"
	"github.com/sevenpm/date-backend/internal/service/rsvp"
)

func setupService(t *testing.T) (*rsvp.Service, *miniredis.Miniredis) {
	t.Helper()

	dbName := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	gdb, err := gorm.Open(sqlite.Open(dbName), &gorm.Config{
		NowFunc:                func() time.Time { return time.Now().UTC().Truncate(time.Millisecond) },
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)

	sqlDB, err := gdb.DB()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, db.Migrate(gdb))

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	cfg := config.New()
	cfg.Redis.Addr = mr.Addr()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	appCtx := app.New(cfg, gdb, cache.NewRedisCache(cfg), logger)

	return rsvp.NewRSVPService(appCtx), mr
}

// TestOptInIdempotent: opting in twice on the same day is one confirmation
// and one lobby slot.
func TestOptInIdempotent(t *testing.T) {
	ctx := context.Background()
	svc, _ := setupService(t)

	first, err := svc.OptIn(ctx, "alice")
	require.NoError(t, err)
	second, err := svc.OptIn(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, first, second)

	confirmed, count, err := svc.Status(ctx, "alice")
	require.NoError(t, err)
	assert.True(t, confirmed)
	assert.Equal(t, int64(1), count)
}

func TestStatusUnconfirmed(t *testing.T) {
	ctx := context.Background()
	svc, _ := setupService(t)

	_, err := svc.OptIn(ctx, "alice")
	require.NoError(t, err)

	confirmed, count, err := svc.Status(ctx, "bob")
	require.NoError(t, err)
	assert.False(t, confirmed)
	assert.Equal(t, int64(1), count, "lobby count is global")
}

// TestStatusLobbyCountCached: the first Status populates Redis, later
// opt-ins nudge the cached value, and a later Status serves it without
// touching the DB count again.
func TestStatusLobbyCountCached(t *testing.T) {
	ctx := context.Background()
	svc, mr := setupService(t)

	_, err := svc.OptIn(ctx, "alice")
	require.NoError(t, err)

	_, count, err := svc.Status(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	_, err = svc.OptIn(ctx, "bob")
	require.NoError(t, err)

	_, count, err = svc.Status(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	// The cached count expires rather than living forever.
	mr.FastForward(2 * time.Hour)
	_, count, err = svc.Status(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, int64(2), count, "cache miss reconciles with the DB")
}
