package repository

import (
	"context"
	"errors"
	"io"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/daily-task-list/backend/internal/common/crypto"
	"github.com/daily-task-list/backend/internal/common/db"
	"github.com/daily-task-list/backend/internal/common/logger"
	"github.com/daily-task-list/backend/internal/task/domain"
)

func TestPgRepository_MalformedIDs(t *testing.T) {
	// The id is checked before the pool or the schema is touched.
	repo := NewPgRepository(nil, nil, nil)

	for _, id := range []domain.ID{"", "abc123", "507f1f77bcf86cd799439011"} {
		if err := repo.SetCompleted(context.Background(), id, true); !errors.Is(err, ErrInvalidTaskID) {
			t.Errorf("SetCompleted(%q): expected ErrInvalidTaskID, got %v", id, err)
		}
		if err := repo.Delete(context.Background(), id); !errors.Is(err, ErrInvalidTaskID) {
			t.Errorf("Delete(%q): expected ErrInvalidTaskID, got %v", id, err)
		}
	}
}

// Runs only when DATABASE_URL points at a reachable server. Rows are scoped
// to a fresh user id and removed afterwards.
func TestPgRepository_Integration(t *testing.T) {
	url := os.Getenv("DATABASE_URL")
	if url == "" {
		t.Skip("DATABASE_URL not set; skipping integration test")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := db.NewPool(ctx, logger.NewWithWriter(io.Discard, "test", "error"), url)
	if err != nil {
		t.Fatalf("pool: %v", err)
	}
	defer pool.Close()
	if err := db.NewPoolPinger(pool).Ping(ctx); err != nil {
		t.Fatalf("postgres not reachable: %v", err)
	}

	repo := NewPgRepository(pool, db.NewSchemaGuard(pool), crypto.NewUUIDGenerator())
	userID := "u-" + uuid.NewString()
	defer pool.Exec(context.Background(), `DELETE FROM tasks WHERE user_id = $1`, userID)

	due := "2024-06-30"
	first, err := repo.Create(ctx, domain.Task{Title: "first", UserID: userID, Priority: "High"})
	if err != nil {
		t.Fatalf("create first: %v", err)
	}
	if _, err := uuid.Parse(string(first.ID)); err != nil {
		t.Errorf("expected uuid id, got %q", first.ID)
	}
	second, err := repo.Create(ctx, domain.Task{Title: "second", UserID: userID, Priority: "Low", DueDate: &due})
	if err != nil {
		t.Fatalf("create second: %v", err)
	}

	tasks, err := repo.ListByUserID(ctx, userID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(tasks) != 2 || tasks[0].ID != first.ID || tasks[1].ID != second.ID {
		t.Fatalf("expected tasks in insertion order, got %+v", tasks)
	}
	if tasks[0].DueDate != nil {
		t.Errorf("expected nil due date, got %q", *tasks[0].DueDate)
	}
	if d := tasks[1].DueDate; d == nil || *d != due {
		t.Errorf("expected due date %q, got %v", due, d)
	}

	empty, err := repo.ListByUserID(ctx, "u-"+uuid.NewString())
	if err != nil || empty == nil || len(empty) != 0 {
		t.Errorf("expected empty non-nil list, got %v %v", empty, err)
	}

	if err := repo.SetCompleted(ctx, first.ID, true); err != nil {
		t.Fatalf("set completed: %v", err)
	}
	tasks, _ = repo.ListByUserID(ctx, userID)
	if len(tasks) == 0 || !tasks[0].Completed {
		t.Errorf("expected first task completed, got %+v", tasks)
	}

	unknown := domain.ID(uuid.NewString())
	if err := repo.SetCompleted(ctx, unknown, true); !errors.Is(err, ErrTaskNotFound) {
		t.Errorf("SetCompleted unknown: expected ErrTaskNotFound, got %v", err)
	}
	if err := repo.Delete(ctx, unknown); !errors.Is(err, ErrTaskNotFound) {
		t.Errorf("Delete unknown: expected ErrTaskNotFound, got %v", err)
	}

	if err := repo.Delete(ctx, first.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := repo.Delete(ctx, first.ID); !errors.Is(err, ErrTaskNotFound) {
		t.Errorf("second delete: expected ErrTaskNotFound, got %v", err)
	}
}
