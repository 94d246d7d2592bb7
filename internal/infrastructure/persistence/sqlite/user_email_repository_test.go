package sqlite

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oncallhq/pagerbot/internal/domain/repository"
)

func setupUserEmailTest(t *testing.T) *UserEmailRepository {
	t.Helper()

	db, err := NewDB(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	err = db.Migrate(context.Background())
	require.NoError(t, err)

	return NewUserEmailRepository(db.DB)
}

func TestUserEmailRepository_SetAndGet(t *testing.T) {
	repo := setupUserEmailTest(t)
	ctx := context.Background()

	err := repo.Set(ctx, "U1", "alice@example.com")
	require.NoError(t, err)

	email, err := repo.Get(ctx, "U1")
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", email)
}

func TestUserEmailRepository_SetReplaces(t *testing.T) {
	repo := setupUserEmailTest(t)
	ctx := context.Background()

	require.NoError(t, repo.Set(ctx, "U1", "alice@example.com"))
	require.NoError(t, repo.Set(ctx, "U1", "alice@corp.example.com"))

	email, err := repo.Get(ctx, "U1")
	require.NoError(t, err)
	assert.Equal(t, "alice@corp.example.com", email)
}

func TestUserEmailRepository_GetMissing(t *testing.T) {
	repo := setupUserEmailTest(t)

	_, err := repo.Get(context.Background(), "U404")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestUserEmailRepository_Delete(t *testing.T) {
	repo := setupUserEmailTest(t)
	ctx := context.Background()

	require.NoError(t, repo.Set(ctx, "U1", "alice@example.com"))
	require.NoError(t, repo.Delete(ctx, "U1"))

	_, err := repo.Get(ctx, "U1")
	assert.ErrorIs(t, err, repository.ErrNotFound)

	// Deleting an absent entry is not an error
	require.NoError(t, repo.Delete(ctx, "U1"))
}

func TestDB_MigrateIsIdempotent(t *testing.T) {
	db, err := NewDB(":memory:")
	require.NoError(t, err)
	defer db.Close()

	require.NoError(t, db.Migrate(context.Background()))
	require.NoError(t, db.Migrate(context.Background()))
}
