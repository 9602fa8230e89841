//go:build integration

package postgres

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
	postgrescontainer "github.com/testcontainers/testcontainers-go/modules/postgres"

	"example.com/runtracker/internal/domain"
)

func TestRepositoriesAgainstPostgres(t *testing.T) {
	ctx := context.Background()

	pg, err := postgrescontainer.RunContainer(ctx,
		postgrescontainer.WithDatabase("runtracker"),
		postgrescontainer.WithUsername("runtracker"),
		postgrescontainer.WithPassword("runtracker"),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = pg.Terminate(ctx) })

	connStr, err := pg.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	require.NoError(t, waitForDatabase(ctx, connStr))

	runMigrations(t, ctx, connStr)

	pool, err := pgxpool.New(ctx, connStr)
	require.NoError(t, err)
	t.Cleanup(func() { pool.Close() })

	users := NewUserRepository(pool)
	runs := NewRunRepository(pool)

	user, err := users.Create(ctx, domain.User{
		FirstName: "Igor",
		LastName:  "Davydenko",
		BirthDate: time.Date(1985, time.June, 1, 0, 0, 0, 0, time.UTC),
		Sex:       true,
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	})
	require.NoError(t, err)
	require.NotZero(t, user.ID)

	t.Run("user round trip", func(t *testing.T) {
		found, err := users.FindByID(ctx, user.ID)
		require.NoError(t, err)
		require.NotNil(t, found)
		require.Equal(t, "Igor", found.FirstName)
		require.True(t, found.BirthDate.Equal(user.BirthDate))

		missing, err := users.FindByID(ctx, user.ID+1000)
		require.NoError(t, err)
		require.Nil(t, missing)

		found.FirstName = "Oleg"
		found.UpdatedAt = time.Now().UTC()
		updated, err := users.Update(ctx, *found)
		require.NoError(t, err)
		require.NotNil(t, updated)
		require.Equal(t, "Oleg", updated.FirstName)

		ghost, err := users.Update(ctx, domain.User{ID: user.ID + 1000})
		require.NoError(t, err)
		require.Nil(t, ghost)

		all, err := users.FindAll(ctx)
		require.NoError(t, err)
		require.Len(t, all, 1)
	})

	start := time.Date(2024, time.January, 1, 8, 0, 0, 0, time.UTC)

	t.Run("one active run per user", func(t *testing.T) {
		created, err := runs.Create(ctx, domain.Run{
			UserID:         user.ID,
			StartTime:      start,
			StartLatitude:  55.75,
			StartLongitude: 37.61,
		})
		require.NoError(t, err)
		require.NotZero(t, created.ID)

		// The partial unique index rejects a second open run.
		_, err = runs.Create(ctx, domain.Run{
			UserID:         user.ID,
			StartTime:      start.Add(time.Minute),
			StartLatitude:  55.75,
			StartLongitude: 37.61,
		})
		require.ErrorIs(t, err, domain.ErrActiveRunExists)

		active, err := runs.FindActiveByUser(ctx, user.ID)
		require.NoError(t, err)
		require.NotNil(t, active)
		require.Equal(t, created.ID, active.ID)

		finish := start.Add(time.Hour)
		created.FinishTime = &finish
		created.FinishLatitude = ptrFloat(55.76)
		created.FinishLongitude = ptrFloat(37.62)
		created.Distance = ptrFloat(1337.5)
		finished, err := runs.Update(ctx, *created)
		require.NoError(t, err)
		require.NotNil(t, finished.FinishTime)
		require.Equal(t, 1337.5, *finished.Distance)

		active, err = runs.FindActiveByUser(ctx, user.ID)
		require.NoError(t, err)
		require.Nil(t, active)

		// With the first run closed a new one may open.
		_, err = runs.Create(ctx, domain.Run{
			UserID:         user.ID,
			StartTime:      start.Add(2 * time.Hour),
			StartLatitude:  55.75,
			StartLongitude: 37.61,
		})
		require.NoError(t, err)
	})

	t.Run("window bounds", func(t *testing.T) {
		all, err := runs.FindByUserInWindow(ctx, user.ID, nil, nil)
		require.NoError(t, err)
		require.Len(t, all, 2)

		from := start
		to := start
		both, err := runs.FindByUserInWindow(ctx, user.ID, &from, &to)
		require.NoError(t, err)
		require.Len(t, both, 1)
		require.True(t, both[0].StartTime.Equal(start))

		lower := start.Add(time.Hour)
		after, err := runs.FindByUserInWindow(ctx, user.ID, &lower, nil)
		require.NoError(t, err)
		require.Len(t, after, 1)
		require.True(t, after[0].StartTime.Equal(start.Add(2*time.Hour)))

		upper := start.Add(2 * time.Hour)
		before, err := runs.FindByUserInWindow(ctx, user.ID, nil, &upper)
		require.NoError(t, err)
		require.Len(t, before, 1)
		require.True(t, before[0].StartTime.Equal(start))
	})

	t.Run("delete user", func(t *testing.T) {
		deleted, err := users.Delete(ctx, user.ID)
		require.NoError(t, err)
		require.True(t, deleted)

		deleted, err = users.Delete(ctx, user.ID)
		require.NoError(t, err)
		require.False(t, deleted)
	})
}

func runMigrations(t *testing.T, ctx context.Context, connStr string) {
	pool, err := pgxpool.New(ctx, connStr)
	require.NoError(t, err)
	defer pool.Close()

	path := resolvePath(t, "../../../migrations/0001_init.up.sql")
	contents, err := os.ReadFile(path)
	require.NoError(t, err)

	_, err = pool.Exec(ctx, string(contents))
	require.NoError(t, err)
}

func resolvePath(t *testing.T, rel string) string {
	t.Helper()
	_, file, _, ok := runtime.Caller(0)
	require.True(t, ok)
	return filepath.Join(filepath.Dir(file), rel)
}

func waitForDatabase(ctx context.Context, connStr string) error {
	deadline := time.Now().Add(30 * time.Second)
	for {
		pool, err := pgxpool.New(ctx, connStr)
		if err == nil {
			err = pool.Ping(ctx)
			pool.Close()
			if err == nil {
				return nil
			}
		}
		if time.Now().After(deadline) {
			return err
		}
		time.Sleep(time.Second)
	}
}

func ptrFloat(v float64) *float64 { return &v }
