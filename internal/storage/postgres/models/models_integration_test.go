//go:build integration

package models

import (
	"context"
	"fmt"
	"io"
	"os/exec"
	"testing"
	"time"

	"watchlist/proj/internal/domain/filters"
	"watchlist/proj/internal/domain/models"
	"watchlist/proj/internal/lib/id"
	"watchlist/proj/internal/lib/logger"
	"watchlist/proj/internal/storage"
	"watchlist/proj/internal/storage/postgres"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func skipIfNoDocker(t *testing.T) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if exec.CommandContext(ctx, "docker", "info").Run() != nil {
		t.Skip("Skipping test: Docker not available")
	}
}

func setupDB(t *testing.T) *Models {
	t.Helper()
	skipIfNoDocker(t)
	ctx := context.Background()
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "postgres:16-alpine",
			ExposedPorts: []string{"5432/tcp"},
			Env: map[string]string{
				"POSTGRES_USER":     "watchlist",
				"POSTGRES_PASSWORD": "watchlist",
				"POSTGRES_DB":       "watchlist",
			},
			WaitingFor: wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(time.Minute),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := container.Terminate(context.Background()); err != nil {
			t.Logf("Warning: failed to terminate container: %v", err)
		}
	})
	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "5432")
	require.NoError(t, err)
	dsn := fmt.Sprintf("postgres://watchlist:watchlist@%s:%s/watchlist?sslmode=disable", host, port.Port())
	db, err := postgres.New(ctx, logger.New(io.Discard, false), dsn, 5, time.Minute, 10)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return New(db)
}

func newMovie(ownerID, title string, rating *int32) *models.Movie {
	return &models.Movie{
		ID:        id.NewUUID(),
		Title:     title,
		Rating:    rating,
		UserID:    ownerID,
		CreatedAt: time.Now().UTC(),
	}
}

func ptr[T any](v T) *T { return &v }

func TestMovieModel(t *testing.T) {
	m := setupDB(t)
	ctx := context.Background()
	const alice, bob = "alice", "bob"

	dune, err := m.MovieModel.Insert(ctx, newMovie(alice, "Dune", ptr[int32](9)))
	require.NoError(t, err)
	_, err = m.MovieModel.Insert(ctx, newMovie(alice, "Heat", nil))
	require.NoError(t, err)
	_, err = m.MovieModel.Insert(ctx, newMovie(bob, "Alien", ptr[int32](7)))
	require.NoError(t, err)

	t.Run("owner scoped get", func(t *testing.T) {
		_, err := m.MovieModel.Get(ctx, dune.ID, bob)
		assert.ErrorIs(t, err, storage.ErrNotFound)
		got, err := m.MovieModel.Get(ctx, dune.ID, alice)
		require.NoError(t, err)
		assert.Equal(t, "Dune", got.Title)
	})

	t.Run("list newest first with filters", func(t *testing.T) {
		list, err := m.MovieModel.List(ctx, alice, filters.MovieFilter{})
		require.NoError(t, err)
		require.Len(t, list, 2)
		assert.Equal(t, "Heat", list[0].Title)
		rated, err := m.MovieModel.List(ctx, alice, filters.MovieFilter{MinRating: ptr[int32](8)})
		require.NoError(t, err)
		require.Len(t, rated, 1)
		assert.Equal(t, dune.ID, rated[0].ID)
	})

	t.Run("partial update and toggle", func(t *testing.T) {
		updated, err := m.MovieModel.Update(ctx, dune.ID, alice, models.MoviePatch{Notes: ptr("re-watch")})
		require.NoError(t, err)
		assert.Equal(t, "Dune", updated.Title)
		assert.Equal(t, int32(9), *updated.Rating)
		toggled, err := m.MovieModel.ToggleWatched(ctx, dune.ID, alice)
		require.NoError(t, err)
		assert.True(t, toggled.Watched)
		_, err = m.MovieModel.ToggleWatched(ctx, dune.ID, bob)
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})

	t.Run("stats", func(t *testing.T) {
		stats, err := m.MovieModel.Stats(ctx, alice)
		require.NoError(t, err)
		assert.Equal(t, 2, stats.Total)
		assert.Equal(t, 1, stats.Watched)
		require.NotNil(t, stats.AverageRating)
		assert.InDelta(t, 9.0, *stats.AverageRating, 0.001)
		empty, err := m.MovieModel.Stats(ctx, "nobody")
		require.NoError(t, err)
		assert.Zero(t, empty.Total)
		assert.Nil(t, empty.AverageRating)
	})

	t.Run("delete", func(t *testing.T) {
		_, err := m.MovieModel.Delete(ctx, dune.ID, bob)
		assert.ErrorIs(t, err, storage.ErrNotFound)
		deleted, err := m.MovieModel.Delete(ctx, dune.ID, alice)
		require.NoError(t, err)
		assert.Equal(t, dune.ID, deleted.ID)
		_, err = m.MovieModel.Get(ctx, dune.ID, alice)
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})
}

func TestUserAndSessionModels(t *testing.T) {
	m := setupDB(t)
	ctx := context.Background()
	now := time.Now().UTC()
	user := &models.User{ID: id.NewUUID(), Name: "Alice", Email: "alice@example.com", PasswordHash: []byte("hash"), CreatedAt: now, UpdatedAt: now}
	_, err := m.UserModel.InsertUser(ctx, user)
	require.NoError(t, err)
	dup := *user
	dup.ID = id.NewUUID()
	_, err = m.UserModel.InsertUser(ctx, &dup)
	assert.ErrorIs(t, err, storage.ErrConflict)

	got, err := m.UserModel.GetUserByEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)

	sessionID, err := id.Generate("ses")
	require.NoError(t, err)
	session := &models.Session{ID: sessionID, TokenHash: "h1", UserID: user.ID, ExpiresAt: now.Add(time.Hour), CreatedAt: now, UpdatedAt: now}
	_, err = m.SessionModel.InsertSession(ctx, session)
	require.NoError(t, err)
	require.NoError(t, m.SessionModel.ExtendSession(ctx, session.ID, now.Add(2*time.Hour)))
	stored, err := m.SessionModel.GetSessionByToken(ctx, "h1")
	require.NoError(t, err)
	assert.WithinDuration(t, now.Add(2*time.Hour), stored.ExpiresAt, time.Second)
	require.NoError(t, m.SessionModel.DeleteSessionByToken(ctx, "h1"))
	assert.ErrorIs(t, m.SessionModel.DeleteSessionByToken(ctx, "h1"), storage.ErrNotFound)
}
