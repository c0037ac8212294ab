package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4/pgxpool"

	"github.com/daily-task-list/backend/internal/common/constants"
	"github.com/daily-task-list/backend/internal/common/crypto"
	"github.com/daily-task-list/backend/internal/common/db"
	"github.com/daily-task-list/backend/internal/task/domain"
)

type PgRepository struct {
	pool   *pgxpool.Pool
	schema *db.SchemaGuard
	ids    crypto.IDGenerator
}

func NewPgRepository(pool *pgxpool.Pool, schema *db.SchemaGuard, ids crypto.IDGenerator) *PgRepository {
	return &PgRepository{pool: pool, schema: schema, ids: ids}
}

func (r *PgRepository) Create(ctx context.Context, task domain.Task) (domain.Task, error) {
	if err := r.schema.Ensure(ctx); err != nil {
		return domain.Task{}, err
	}

	id, err := r.ids.NewID()
	if err != nil {
		return domain.Task{}, err
	}
	task.ID = domain.ID(id)

	start := time.Now()
	_, err = r.pool.Exec(
		ctx,
		`INSERT INTO tasks (id, user_id, title, completed, priority, due_date) VALUES ($1, $2, $3, $4, $5, $6)`,
		string(task.ID),
		task.UserID,
		task.Title,
		task.Completed,
		task.Priority,
		task.DueDate,
	)
	if err := db.HandleExecError(err, "create task", constants.TasksCollection, start); err != nil {
		return domain.Task{}, err
	}
	return task, nil
}

func (r *PgRepository) ListByUserID(ctx context.Context, userID string) ([]domain.Task, error) {
	if err := r.schema.Ensure(ctx); err != nil {
		return nil, err
	}

	start := time.Now()
	rows, err := r.pool.Query(
		ctx,
		`SELECT id::text, title, completed, user_id, priority, due_date FROM tasks WHERE user_id = $1 ORDER BY id`,
		userID,
	)
	if err := db.HandleExecError(err, "list tasks", constants.TasksCollection, start); err != nil {
		return nil, err
	}
	defer rows.Close()

	tasks := make([]domain.Task, 0)
	for rows.Next() {
		var t domain.Task
		if err := rows.Scan(&t.ID, &t.Title, &t.Completed, &t.UserID, &t.Priority, &t.DueDate); err != nil {
			return nil, db.HandleExecError(err, "scan task", constants.TasksCollection, start)
		}
		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, db.HandleExecError(err, "list tasks", constants.TasksCollection, start)
	}

	return tasks, nil
}

func (r *PgRepository) SetCompleted(ctx context.Context, id domain.ID, completed bool) error {
	if _, err := uuid.Parse(string(id)); err != nil {
		return ErrInvalidTaskID
	}
	if err := r.schema.Ensure(ctx); err != nil {
		return err
	}

	start := time.Now()
	tag, err := r.pool.Exec(ctx, `UPDATE tasks SET completed = $2 WHERE id = $1`, string(id), completed)
	if err := db.HandleExecError(err, "update task", constants.TasksCollection, start); err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrTaskNotFound
	}
	return nil
}

func (r *PgRepository) Delete(ctx context.Context, id domain.ID) error {
	if _, err := uuid.Parse(string(id)); err != nil {
		return ErrInvalidTaskID
	}
	if err := r.schema.Ensure(ctx); err != nil {
		return err
	}

	start := time.Now()
	tag, err := r.pool.Exec(ctx, `DELETE FROM tasks WHERE id = $1`, string(id))
	if err := db.HandleExecError(err, "delete task", constants.TasksCollection, start); err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrTaskNotFound
	}
	return nil
}
