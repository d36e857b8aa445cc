package profile_test

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
	"github.com/sevenpm/date-backend/internal/service/profile"
)

func setupService(t *testing.T) *profile.Service {
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

	// Photo uploads disabled in tests.
	return profile.NewProfileService(appCtx, nil)
}

func validInput() profile.ProfileInput {
	return profile.ProfileInput{
		Name:                "Alice",
		Age:                 30,
		Gender:              "female",
		HomeLocation:        "Carlsbad",
		InterestedLocations: []string{"Oceanside"},
		DesiredGenders:      []string{"male"},
		DesiredAgeMin:       28,
		DesiredAgeMax:       40,
	}
}

// TestUpsertAddsHomeToInterestSet: the home location always joins the
// interest set so same-town users can find each other.
func TestUpsertAddsHomeToInterestSet(t *testing.T) {
	ctx := context.Background()
	svc := setupService(t)

	saved, err := svc.Upsert(ctx, "alice", validInput())
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"Oceanside", "Carlsbad"}, []string(saved.InterestedLocations))

	loaded, err := svc.Get(ctx, "alice")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"Oceanside", "Carlsbad"}, []string(loaded.InterestedLocations))
	assert.True(t, loaded.Discoverable, "discoverable defaults on")
}

// TestUpsertReplaces: the second save fully overwrites the first.
func TestUpsertReplaces(t *testing.T) {
	ctx := context.Background()
	svc := setupService(t)

	_, err := svc.Upsert(ctx, "alice", validInput())
	require.NoError(t, err)

	in := validInput()
	in.Bio = "new in town"
	in.DesiredAgeMax = 45
	hidden := false
	in.Discoverable = &hidden
	_, err = svc.Upsert(ctx, "alice", in)
	require.NoError(t, err)

	loaded, err := svc.Get(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "new in town", loaded.Bio)
	assert.Equal(t, 45, loaded.DesiredAgeMax)
	assert.False(t, loaded.Discoverable)
}

func TestUpsertValidation(t *testing.T) {
	ctx := context.Background()
	svc := setupService(t)

	cases := []struct {
		name string
		mut  func(*profile.ProfileInput)
	}{
		{"empty name", func(in *profile.ProfileInput) { in.Name = "  " }},
		{"underage", func(in *profile.ProfileInput) { in.Age = 17 }},
		{"missing gender", func(in *profile.ProfileInput) { in.Gender = "" }},
		{"missing home", func(in *profile.ProfileInput) { in.HomeLocation = "" }},
		{"no desired genders", func(in *profile.ProfileInput) { in.DesiredGenders = nil }},
		{"inverted age range", func(in *profile.ProfileInput) { in.DesiredAgeMin = 40; in.DesiredAgeMax = 30 }},
		{"underage range", func(in *profile.ProfileInput) { in.DesiredAgeMin = 16 }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in := validInput()
			tc.mut(&in)
			_, err := svc.Upsert(ctx, "alice", in)
			var apiErr *svcErr.APIError
			require.ErrorAs(t, err, &apiErr)
			assert.Equal(t, 400, apiErr.Status)
		})
	}
}

func TestPresignUploadDisabled(t *testing.T) {
	ctx := context.Background()
	svc := setupService(t)

	_, _, _, err := svc.PresignPhotoUpload(ctx, "alice", "image/jpeg")
	assert.Error(t, err)

	// But photo listing degrades to empty rather than failing.
	urls, err := svc.PhotoURLs(ctx, "alice")
	require.NoError(t, err)
	assert.Empty(t, urls)
}
