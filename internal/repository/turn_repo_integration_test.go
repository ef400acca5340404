package repository

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
)

var (
	testDBOnce sync.Once
	testDBPool *pgxpool.Pool
	testDBErr  error
)

func integrationTestPool(t *testing.T) *pgxpool.Pool {
	t.Helper()

	testDBOnce.Do(func() {
		_ = godotenv.Load(".env")
		_ = godotenv.Load(filepath.Join("..", "..", ".env"))

		dbURL := os.Getenv("DB_URL")
		if dbURL == "" {
			testDBErr = fmt.Errorf("DB_URL is not set")
			return
		}

		cfg, err := pgxpool.ParseConfig(dbURL)
		if err != nil {
			testDBErr = err
			return
		}

		testDBPool, testDBErr = pgxpool.NewWithConfig(context.Background(), cfg)
		if testDBErr != nil {
			return
		}
		testDBErr = testDBPool.Ping(context.Background())
	})

	if testDBErr != nil {
		t.Skipf("skipping integration test: %v", testDBErr)
	}
	return testDBPool
}

func cleanupTestTurns(t *testing.T, ctx context.Context, pool *pgxpool.Pool, userID string) {
	t.Helper()
	if _, err := pool.Exec(ctx, `DELETE FROM chat_turns WHERE user_id = $1`, userID); err != nil {
		t.Errorf("cleanup: %v", err)
	}
}

func TestChatTurnRepositoryRoundTrip(t *testing.T) {
	ctx := context.Background()
	pool := integrationTestPool(t)
	repo := NewChatTurnRepository(pool)

	userID := fmt.Sprintf("it-user-%d", time.Now().UnixNano())
	t.Cleanup(func() { cleanupTestTurns(t, ctx, pool, userID) })

	first, err := repo.Create(ctx, userID, "hello", "hi there")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if first.ID == 0 || first.CreatedAt.IsZero() {
		t.Fatalf("expected store-assigned id and timestamp, got %+v", first)
	}

	second, err := repo.Create(ctx, userID, "how are you", "doing well")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if second.CreatedAt.Before(first.CreatedAt) {
		t.Fatal("created_at must be non-decreasing in insertion order")
	}

	turns, err := repo.ListByUser(ctx, userID)
	if err != nil {
		t.Fatalf("ListByUser: %v", err)
	}
	if len(turns) != 2 || turns[0].UserMessage != "hello" || turns[1].UserMessage != "how are you" {
		t.Fatalf("expected ascending transcript, got %+v", turns)
	}
}

func TestListRecentReturnsTailAscending(t *testing.T) {
	ctx := context.Background()
	pool := integrationTestPool(t)
	repo := NewChatTurnRepository(pool)

	userID := fmt.Sprintf("it-user-%d", time.Now().UnixNano())
	t.Cleanup(func() { cleanupTestTurns(t, ctx, pool, userID) })

	for i := 1; i <= 3; i++ {
		if _, err := repo.Create(ctx, userID, fmt.Sprintf("q%d", i), fmt.Sprintf("a%d", i)); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}

	turns, err := repo.ListRecent(ctx, userID, 2)
	if err != nil {
		t.Fatalf("ListRecent: %v", err)
	}
	if len(turns) != 2 {
		t.Fatalf("expected 2 turns, got %d", len(turns))
	}
	if turns[0].UserMessage != "q2" || turns[1].UserMessage != "q3" {
		t.Fatalf("expected the newest two turns oldest-first, got %+v", turns)
	}
}

func TestCountSinceHonorsWindowStart(t *testing.T) {
	ctx := context.Background()
	pool := integrationTestPool(t)
	repo := NewChatTurnRepository(pool)

	userID := fmt.Sprintf("it-user-%d", time.Now().UnixNano())
	t.Cleanup(func() { cleanupTestTurns(t, ctx, pool, userID) })

	if _, err := repo.Create(ctx, userID, "q", "a"); err != nil {
		t.Fatalf("Create: %v", err)
	}

	count, err := repo.CountSince(ctx, userID, time.Now().Add(-time.Minute))
	if err != nil {
		t.Fatalf("CountSince: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 turn inside the window, got %d", count)
	}

	count, err = repo.CountSince(ctx, userID, time.Now().Add(time.Minute))
	if err != nil {
		t.Fatalf("CountSince: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected 0 turns after the window start, got %d", count)
	}
}
