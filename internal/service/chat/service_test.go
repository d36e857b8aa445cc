package chat_test

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
	svcErr "github.com/sevenpm/date-backend/internal/errors"
	"github.com/sevenpm/date-backend/internal/relay"
	"github.com/sevenpm/date-backend/internal/service/chat"
)

//
// Test helpers
//

func setupService(t *testing.T) (*chat.Service, *gorm.DB) {
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
	hub := relay.NewHub(logger)

	// Pushes are off in tests; a nil notifier is a no-op.
	return chat.NewChatService(appCtx, hub, nil), gdb
}

// seedSession inserts a session between alice and bob. expired controls
// whether the chat window is already over.
func seedSession(t *testing.T, gdb *gorm.DB, id string, expired bool) {
	t.Helper()

	now := time.Now().UTC()
	expiresAt := now.Add(5 * time.Minute)
	if expired {
		expiresAt = now.Add(-time.Minute)
	}
	session := &db.ChatSession{
		ID:        id,
		UserAID:   "alice",
		UserBID:   "bob",
		EventDate: db.EventDate(now),
		StartedAt: now.Add(-2 * time.Minute),
		ExpiresAt: expiresAt,
	}
	require.NoError(t, gdb.Create(session).Error)
}

//
// Tests
//

func TestSendAndList(t *testing.T) {
	ctx := context.Background()
	svc, gdb := setupService(t)
	seedSession(t, gdb, "s1", false)

	for i, body := range []string{"hey", "hi there", "how's the lobby"} {
		sender := "alice"
		if i%2 == 1 {
			sender = "bob"
		}
		msg, err := svc.Send(ctx, "s1", sender, body)
		require.NoError(t, err)
		assert.Equal(t, sender, msg.SenderID)
		time.Sleep(2 * time.Millisecond) // distinct timestamps for ordering
	}

	messages, next, err := svc.List(ctx, "s1", "bob", nil, 0)
	require.NoError(t, err)
	assert.Nil(t, next)
	require.Len(t, messages, 3)

	// Ascending creation order.
	assert.Equal(t, "hey", messages[0].Body)
	assert.Equal(t, "hi there", messages[1].Body)
	assert.Equal(t, "how's the lobby", messages[2].Body)
}

// TestListPagination pages through five messages in chunks of three and
// checks the pages are disjoint and complete.
func TestListPagination(t *testing.T) {
	ctx := context.Background()
	svc, gdb := setupService(t)
	seedSession(t, gdb, "s1", false)

	for i := 0; i < 5; i++ {
		_, err := svc.Send(ctx, "s1", "alice", fmt.Sprintf("msg-%d", i))
		require.NoError(t, err)
		time.Sleep(2 * time.Millisecond)
	}

	first, token, err := svc.List(ctx, "s1", "alice", nil, 3)
	require.NoError(t, err)
	require.Len(t, first, 3)
	require.NotNil(t, token)

	second, token, err := svc.List(ctx, "s1", "alice", token, 3)
	require.NoError(t, err)
	require.Len(t, second, 2)
	assert.Nil(t, token)

	seen := map[string]bool{}
	for _, m := range append(first, second...) {
		assert.False(t, seen[m.ID], "duplicate message across pages")
		seen[m.ID] = true
	}
	assert.Len(t, seen, 5)
}

func TestSendAfterSessionEnded(t *testing.T) {
	ctx := context.Background()
	svc, gdb := setupService(t)
	seedSession(t, gdb, "s1", true)

	_, err := svc.Send(ctx, "s1", "alice", "too late")
	var apiErr *svcErr.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 409, apiErr.Status)
}

func TestSendValidation(t *testing.T) {
	ctx := context.Background()
	svc, gdb := setupService(t)
	seedSession(t, gdb, "s1", false)

	_, err := svc.Send(ctx, "s1", "alice", "   ")
	var apiErr *svcErr.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 400, apiErr.Status)

	long := make([]byte, 2001)
	for i := range long {
		long[i] = 'x'
	}
	_, err = svc.Send(ctx, "s1", "alice", string(long))
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 400, apiErr.Status)
}

func TestSendAndListRequireParticipant(t *testing.T) {
	ctx := context.Background()
	svc, gdb := setupService(t)
	seedSession(t, gdb, "s1", false)

	var apiErr *svcErr.APIError

	_, err := svc.Send(ctx, "s1", "mallory", "let me in")
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 403, apiErr.Status)

	_, _, err = svc.List(ctx, "s1", "mallory", nil, 0)
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 403, apiErr.Status)
}
