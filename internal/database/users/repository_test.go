package users

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Akshat120/Book-Review-API/internal/config"
	"github.com/Akshat120/Book-Review-API/internal/database"
)

func setupTestDB(t *testing.T) *Repository {
	t.Helper()
	db, err := database.NewDatabase(config.Database{
		Driver:       database.DriverSQLite,
		Path:         filepath.Join(t.TempDir(), "users.db"),
		MaxOpenConns: 1,
		LogLevel:     "silent",
	})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return NewRepository(db.DB)
}

func TestRepository_CreateUser(t *testing.T) {
	repo := setupTestDB(t)

	user, err := repo.CreateUser(context.Background(), "Test User", "testuser", "$2a$hash")

	require.NoError(t, err)
	assert.NotZero(t, user.ID)
	assert.Equal(t, "Test User", user.Name)
	assert.Equal(t, "testuser", user.Username)
	assert.Equal(t, "$2a$hash", user.PasswordHash)
	assert.False(t, user.CreatedAt.IsZero())
}

func TestRepository_CreateUser_DuplicateUsername(t *testing.T) {
	repo := setupTestDB(t)
	ctx := context.Background()

	_, err := repo.CreateUser(ctx, "First", "taken", "hash")
	require.NoError(t, err)

	_, err = repo.CreateUser(ctx, "Second", "taken", "hash")

	require.Error(t, err)
	assert.ErrorIs(t, err, database.ErrConstraintViolation)
}

func TestRepository_FindUserByUsername(t *testing.T) {
	repo := setupTestDB(t)
	ctx := context.Background()

	created, err := repo.CreateUser(ctx, "Test User", "testuser", "hash")
	require.NoError(t, err)

	user, err := repo.FindUserByUsername(ctx, "testuser")

	require.NoError(t, err)
	assert.Equal(t, created.ID, user.ID)
	assert.Equal(t, "hash", user.PasswordHash)
}

func TestRepository_FindUserByUsername_NotFound(t *testing.T) {
	repo := setupTestDB(t)

	_, err := repo.FindUserByUsername(context.Background(), "nonexistent")

	assert.ErrorIs(t, err, database.ErrNotFound)
}

func TestRepository_GetUserByID(t *testing.T) {
	repo := setupTestDB(t)
	ctx := context.Background()

	created, err := repo.CreateUser(ctx, "Test User", "testuser", "hash")
	require.NoError(t, err)

	user, err := repo.GetUserByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "testuser", user.Username)

	_, err = repo.GetUserByID(ctx, 999)
	assert.ErrorIs(t, err, database.ErrNotFound)
}
