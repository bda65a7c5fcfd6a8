package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prn-tf/vidfeed/internal/domain"
	"github.com/prn-tf/vidfeed/internal/repository"
)

func newTestDB(t *testing.T) *DB {
	t.Helper()
	ctx := context.Background()

	db, err := NewDB(ctx, DefaultConfig(MemoryPath), zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, db.Migrate(ctx))
	return db
}

func createUser(t *testing.T, repo repository.UserRepository, username string) *domain.User {
	t.Helper()
	user := domain.NewUser(username, username+"@example.com", "hash")
	require.NoError(t, repo.Create(context.Background(), user))
	return user
}

func TestMigrate_Idempotent(t *testing.T) {
	db := newTestDB(t)
	require.NoError(t, db.Migrate(context.Background()))

	var version int
	require.NoError(t, db.db.QueryRow(`SELECT MAX(version) FROM schema_migrations`).Scan(&version))
	assert.Equal(t, 1, version)
}

func TestMigrationStatus(t *testing.T) {
	ctx := context.Background()
	db, err := NewDB(ctx, DefaultConfig(MemoryPath), zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	before, err := db.MigrationStatus(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, before.Current)
	assert.Equal(t, 1, before.Latest)
	assert.True(t, before.Pending())

	require.NoError(t, db.Migrate(ctx))

	after, err := db.MigrationStatus(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, after.Current)
	assert.False(t, after.Pending())
}

func TestUserRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewUserRepository(newTestDB(t))

	user := createUser(t, repo, "alice")

	t.Run("get by id", func(t *testing.T) {
		got, err := repo.GetByID(ctx, user.ID)
		require.NoError(t, err)
		assert.Equal(t, user.Username, got.Username)
		assert.Equal(t, user.Email, got.Email)
		assert.True(t, got.IsActive)
		assert.True(t, user.AcceptedTermsAt.Equal(got.AcceptedTermsAt))
	})

	t.Run("get by username ignores case", func(t *testing.T) {
		got, err := repo.GetByUsername(ctx, "ALICE")
		require.NoError(t, err)
		assert.Equal(t, user.ID, got.ID)
	})

	t.Run("not found", func(t *testing.T) {
		_, err := repo.GetByID(ctx, uuid.New())
		assert.ErrorIs(t, err, repository.ErrNotFound)
	})

	t.Run("duplicate username", func(t *testing.T) {
		dup := domain.NewUser("Alice", "other@example.com", "hash")
		assert.ErrorIs(t, repo.Create(ctx, dup), repository.ErrAlreadyExists)
	})

	t.Run("duplicate email", func(t *testing.T) {
		dup := domain.NewUser("alice2", "ALICE@example.com", "hash")
		assert.ErrorIs(t, repo.Create(ctx, dup), repository.ErrAlreadyExists)
	})

	t.Run("exists", func(t *testing.T) {
		ok, err := repo.ExistsByUsername(ctx, "alice")
		require.NoError(t, err)
		assert.True(t, ok)

		ok, err = repo.ExistsByEmail(ctx, "nobody@example.com")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("update", func(t *testing.T) {
		user.IsActive = false
		user.UpdatedAt = time.Now().UTC()
		require.NoError(t, repo.Update(ctx, user))

		got, err := repo.GetByID(ctx, user.ID)
		require.NoError(t, err)
		assert.False(t, got.IsActive)

		missing := domain.NewUser("ghost", "ghost@example.com", "hash")
		assert.ErrorIs(t, repo.Update(ctx, missing), repository.ErrNotFound)
	})
}

func TestPostRepository(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	users := NewUserRepository(db)
	posts := NewPostRepository(db)

	creator := createUser(t, users, "creator")

	base := time.Date(2024, time.January, 15, 10, 0, 0, 0, time.UTC)
	var created []*domain.Post
	for i := 0; i < 5; i++ {
		post := domain.NewPost(creator.ID, uuid.NewString(), "http://localhost:4566/videos/x", "post")
		post.CreatedAt = base.Add(time.Duration(i) * time.Minute)
		require.NoError(t, posts.Create(ctx, post))
		created = append(created, post)
	}

	t.Run("list newest first", func(t *testing.T) {
		page, err := posts.ListRecent(ctx, repository.ListOptions{Offset: 0, Limit: 2})
		require.NoError(t, err)
		require.Len(t, page, 2)
		assert.Equal(t, created[4].ID, page[0].ID)
		assert.Equal(t, created[3].ID, page[1].ID)
		assert.Equal(t, "creator", page[0].CreatorUsername)
	})

	t.Run("offset", func(t *testing.T) {
		page, err := posts.ListRecent(ctx, repository.ListOptions{Offset: 4, Limit: 2})
		require.NoError(t, err)
		require.Len(t, page, 1)
		assert.Equal(t, created[0].ID, page[0].ID)
	})

	t.Run("past the end", func(t *testing.T) {
		page, err := posts.ListRecent(ctx, repository.ListOptions{Offset: 10, Limit: 2})
		require.NoError(t, err)
		assert.Empty(t, page)
	})

	t.Run("get by id", func(t *testing.T) {
		got, err := posts.GetByID(ctx, created[2].ID)
		require.NoError(t, err)
		assert.Equal(t, created[2].VideoKey, got.VideoKey)
		assert.True(t, created[2].CreatedAt.Equal(got.CreatedAt))

		_, err = posts.GetByID(ctx, uuid.New())
		assert.ErrorIs(t, err, repository.ErrNotFound)
	})

	t.Run("same video twice", func(t *testing.T) {
		dup := domain.NewPost(creator.ID, created[0].VideoKey, "", "again")
		assert.ErrorIs(t, posts.Create(ctx, dup), repository.ErrAlreadyExists)
	})

	t.Run("unknown creator", func(t *testing.T) {
		orphan := domain.NewPost(uuid.New(), uuid.NewString(), "", "orphan")
		assert.ErrorIs(t, posts.Create(ctx, orphan), repository.ErrNotFound)
	})
}
