package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"

	"github.com/daily-task-list/backend/internal/common/clock"
	"github.com/daily-task-list/backend/internal/common/constants"
	"github.com/daily-task-list/backend/internal/common/crypto"
	"github.com/daily-task-list/backend/internal/common/db"
	"github.com/daily-task-list/backend/internal/user/domain"
)

type PgRepository struct {
	pool   *pgxpool.Pool
	schema *db.SchemaGuard
	ids    crypto.IDGenerator
	clock  clock.Clock
}

func NewPgRepository(pool *pgxpool.Pool, schema *db.SchemaGuard, ids crypto.IDGenerator, clk clock.Clock) *PgRepository {
	return &PgRepository{pool: pool, schema: schema, ids: ids, clock: clk}
}

func (r *PgRepository) Create(ctx context.Context, user domain.User) (domain.User, error) {
	if err := r.schema.Ensure(ctx); err != nil {
		return domain.User{}, err
	}

	id, err := r.ids.NewID()
	if err != nil {
		return domain.User{}, err
	}
	user.ID = domain.ID(id)
	user.CreatedAt = r.clock.Now().UTC()

	start := time.Now()
	_, err = r.pool.Exec(
		ctx,
		`INSERT INTO users (id, username, password_hash, created_at) VALUES ($1, $2, $3, $4)`,
		string(user.ID),
		user.Username,
		user.PasswordHash,
		user.CreatedAt,
	)
	if err != nil && db.IsUniqueViolation(err) {
		db.MeasureQueryDuration("create user", constants.UsersCollection, start)
		return domain.User{}, ErrUsernameAlreadyExists
	}
	if err := db.HandleExecError(err, "create user", constants.UsersCollection, start); err != nil {
		return domain.User{}, err
	}
	return user, nil
}

func (r *PgRepository) FindByUsername(ctx context.Context, username string) (domain.User, error) {
	if err := r.schema.Ensure(ctx); err != nil {
		return domain.User{}, err
	}

	start := time.Now()
	row := r.pool.QueryRow(
		ctx,
		`SELECT id::text, username, password_hash, created_at FROM users WHERE username = $1 LIMIT 1`,
		username,
	)

	var user domain.User
	err := row.Scan(&user.ID, &user.Username, &user.PasswordHash, &user.CreatedAt)
	if err := db.HandleQueryError(err, ErrUserNotFound, "find user by username", constants.UsersCollection, start); err != nil {
		return domain.User{}, err
	}
	return user, nil
}
