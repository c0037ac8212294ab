package db

import (
	"context"
	"sync"
	"time"

	"github.com/jackc/pgconn"
)

type Execer interface {
	Exec(ctx context.Context, sql string, arguments ...interface{}) (pgconn.CommandTag, error)
}

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id UUID PRIMARY KEY,
		username TEXT NOT NULL,
		password_hash TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS tasks (
		id UUID PRIMARY KEY,
		user_id TEXT NOT NULL,
		title TEXT NOT NULL,
		completed BOOLEAN NOT NULL DEFAULT FALSE,
		priority TEXT NOT NULL,
		due_date TEXT NULL
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_users_username ON users (username)`,
	`CREATE INDEX IF NOT EXISTS idx_tasks_user_id ON tasks (user_id)`,
}

// SchemaGuard creates the tables on first use. A failed attempt is retried
// on the next call, so a server that was down at startup is provisioned once
// it becomes reachable.
type SchemaGuard struct {
	execer  Execer
	mu      sync.Mutex
	applied bool
}

func NewSchemaGuard(execer Execer) *SchemaGuard {
	return &SchemaGuard{execer: execer}
}

func (g *SchemaGuard) Ensure(ctx context.Context) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.applied {
		return nil
	}

	for _, stmt := range schemaStatements {
		start := time.Now()
		_, err := g.execer.Exec(ctx, stmt)
		if err := HandleExecError(err, "ensure schema", "schema", start); err != nil {
			return err
		}
	}

	g.applied = true
	return nil
}
