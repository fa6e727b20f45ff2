package repository_test

import (
	"context"
	"log"
	"os"
	"testing"

	"go-event-registration/config"
	"go-event-registration/internal/database"
	"go-event-registration/internal/model"
	"go-event-registration/internal/repository"
	apperrors "go-event-registration/pkg/app_errors"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testDB *pgxpool.Pool

func TestMain(m *testing.M) {
	cfg := config.LoadTestConfig()

	var err error
	testDB, err = database.InitDatabase(&cfg.Database)
	if err != nil {
		log.Printf("test database unavailable, skipping repository tests: %v", err)
		os.Exit(0)
	}

	ddl, err := os.ReadFile("../../migrations/schema.sql")
	if err != nil {
		log.Fatalf("Failed to read schema: %v", err)
	}
	if _, err := testDB.Exec(context.Background(), string(ddl)); err != nil {
		log.Fatalf("Failed to apply schema: %v", err)
	}

	code := m.Run()

	testDB.Close()
	os.Exit(code)
}

func truncateUsers(t *testing.T) {
	t.Helper()

	_, err := testDB.Exec(context.Background(),
		"TRUNCATE registrations, events, users RESTART IDENTITY CASCADE")
	require.NoError(t, err)
}

func TestUserRepository_Create(t *testing.T) {
	truncateUsers(t)

	repo := repository.NewUserRepository(testDB)
	ctx := context.Background()

	created, err := repo.Create(ctx, &model.User{
		Name:  "Alice",
		Email: "alice@test.com",
		Role:  model.UserRoleParticipant,
	})

	require.NoError(t, err)
	assert.NotZero(t, created.ID)
	assert.Equal(t, "alice@test.com", created.Email)
	assert.Equal(t, model.UserRoleParticipant, created.Role)

	// email 唯一
	_, err = repo.Create(ctx, &model.User{
		Name:  "Alice Again",
		Email: "alice@test.com",
		Role:  model.UserRoleParticipant,
	})
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}

func TestUserRepository_Find(t *testing.T) {
	truncateUsers(t)

	repo := repository.NewUserRepository(testDB)
	ctx := context.Background()

	created, err := repo.Create(ctx, &model.User{
		Name:  "Bob",
		Email: "bob@test.com",
		Role:  model.UserRoleAdmin,
	})
	require.NoError(t, err)

	t.Run("by id", func(t *testing.T) {
		found, err := repo.FindByID(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, created.Email, found.Email)
		assert.True(t, found.IsAdmin())
	})

	t.Run("by email", func(t *testing.T) {
		found, err := repo.FindByEmail(ctx, "bob@test.com")
		require.NoError(t, err)
		assert.Equal(t, created.ID, found.ID)
	})

	t.Run("not found", func(t *testing.T) {
		_, err := repo.FindByID(ctx, 9999)
		assert.ErrorIs(t, err, apperrors.ErrUserNotFound)

		_, err = repo.FindByEmail(ctx, "nobody@test.com")
		assert.ErrorIs(t, err, apperrors.ErrUserNotFound)
	})
}

func TestUserRepository_List(t *testing.T) {
	truncateUsers(t)

	repo := repository.NewUserRepository(testDB)
	ctx := context.Background()

	_, err := repo.Create(ctx, &model.User{Name: "A", Email: "a@test.com", Role: model.UserRoleParticipant})
	require.NoError(t, err)
	_, err = repo.Create(ctx, &model.User{Name: "B", Email: "b@test.com", Role: model.UserRoleAdmin})
	require.NoError(t, err)

	users, err := repo.List(ctx)

	require.NoError(t, err)
	assert.Len(t, users, 2)
}
