package ledger_test

import (
	"context"
	"errors"
	"log"
	"os"
	"sync"
	"testing"
	"time"

	"go-event-registration/config"
	"go-event-registration/internal/database"
	"go-event-registration/internal/ledger"
	apperrors "go-event-registration/pkg/app_errors"

	"github.com/google/uuid"
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
		log.Printf("test database unavailable, skipping ledger tests: %v", err)
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

func createEventFixture(t *testing.T, capacity, registeredCount int) int {
	t.Helper()
	ctx := context.Background()

	_, err := testDB.Exec(ctx, "TRUNCATE registrations, events, users RESTART IDENTITY CASCADE")
	require.NoError(t, err)

	var userID int
	err = testDB.QueryRow(ctx,
		"INSERT INTO users (name, email, role) VALUES ('Admin', 'admin@test.com', 'admin') RETURNING id",
	).Scan(&userID)
	require.NoError(t, err)

	start := time.Now().UTC().Add(24 * time.Hour)
	var eventID int
	err = testDB.QueryRow(ctx, `
		INSERT INTO events (event_id, title, description, start_date, end_date, location,
			capacity, registered_count, status, price, created_by_id)
		VALUES ($1, 'Ledger Test', '', $2, $3, 'Taipei', $4, $5, 'published', 0, $6)
		RETURNING id
	`, uuid.New(), start, start.Add(time.Hour), capacity, registeredCount, userID).Scan(&eventID)
	require.NoError(t, err)

	return eventID
}

func getCount(t *testing.T, eventID int) int {
	t.Helper()

	var count int
	err := testDB.QueryRow(context.Background(),
		"SELECT registered_count FROM events WHERE id = $1", eventID).Scan(&count)
	require.NoError(t, err)

	return count
}

func TestCapacityLedger_Reserve(t *testing.T) {
	l := ledger.NewCapacityLedger()
	ctx := context.Background()

	t.Run("reserves until full then rejects", func(t *testing.T) {
		eventID := createEventFixture(t, 2, 0)

		for i := 0; i < 2; i++ {
			tx, err := testDB.Begin(ctx)
			require.NoError(t, err)
			require.NoError(t, l.Reserve(ctx, tx, eventID))
			require.NoError(t, tx.Commit(ctx))
		}
		assert.Equal(t, 2, getCount(t, eventID))

		tx, err := testDB.Begin(ctx)
		require.NoError(t, err)
		err = l.Reserve(ctx, tx, eventID)
		assert.ErrorIs(t, err, apperrors.ErrEventFull)
		require.NoError(t, tx.Rollback(ctx))

		assert.Equal(t, 2, getCount(t, eventID))
	})

	t.Run("rolled back reservation does not count", func(t *testing.T) {
		eventID := createEventFixture(t, 5, 0)

		tx, err := testDB.Begin(ctx)
		require.NoError(t, err)
		require.NoError(t, l.Reserve(ctx, tx, eventID))
		require.NoError(t, tx.Rollback(ctx))

		assert.Equal(t, 0, getCount(t, eventID))
	})
}

func TestCapacityLedger_Release(t *testing.T) {
	l := ledger.NewCapacityLedger()
	ctx := context.Background()

	t.Run("releases one seat", func(t *testing.T) {
		eventID := createEventFixture(t, 5, 3)

		tx, err := testDB.Begin(ctx)
		require.NoError(t, err)
		require.NoError(t, l.Release(ctx, tx, eventID))
		require.NoError(t, tx.Commit(ctx))

		assert.Equal(t, 2, getCount(t, eventID))
	})

	t.Run("clamps at zero without error", func(t *testing.T) {
		eventID := createEventFixture(t, 5, 0)

		tx, err := testDB.Begin(ctx)
		require.NoError(t, err)
		require.NoError(t, l.Release(ctx, tx, eventID))
		require.NoError(t, tx.Commit(ctx))

		assert.Equal(t, 0, getCount(t, eventID))
	})
}

// 每個 goroutine 各開一筆交易搶名額，條件式 UPDATE 必須擋下超賣
func TestCapacityLedger_ConcurrentReserve(t *testing.T) {
	l := ledger.NewCapacityLedger()
	ctx := context.Background()

	const capacity = 5
	const attempts = 20

	eventID := createEventFixture(t, capacity, 0)

	var wg sync.WaitGroup
	var mu sync.Mutex
	successCount := 0

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			tx, err := testDB.Begin(ctx)
			if err != nil {
				return
			}

			if err := l.Reserve(ctx, tx, eventID); err != nil {
				_ = tx.Rollback(ctx)
				if !errors.Is(err, apperrors.ErrEventFull) {
					t.Errorf("unexpected reserve error: %v", err)
				}
				return
			}

			if err := tx.Commit(ctx); err != nil {
				return
			}

			mu.Lock()
			successCount++
			mu.Unlock()
		}()
	}

	wg.Wait()

	assert.Equal(t, capacity, successCount)
	assert.Equal(t, capacity, getCount(t, eventID))
}
