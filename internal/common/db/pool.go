package db

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"

	"github.com/daily-task-list/backend/internal/common/constants"
	"github.com/daily-task-list/backend/internal/common/logger"
)

// NewPool connects to PostgreSQL, retrying transient failures. When the
// server stays unreachable the pool is returned in lazy mode so the API can
// start and report the store as unavailable until it comes back.
func NewPool(ctx context.Context, log *logger.Logger, databaseURL string) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database url: %w", err)
	}

	cfg.MaxConns = constants.DBPoolMaxConns
	cfg.MinConns = constants.DBPoolMinConns
	cfg.MaxConnLifetime = constants.DBPoolConnMaxLifetime
	cfg.MaxConnIdleTime = constants.DBPoolConnMaxIdleTime
	cfg.HealthCheckPeriod = constants.DBPoolHealthCheckPeriod
	cfg.ConnConfig.ConnectTimeout = constants.StoreConnectTimeout
	cfg.ConnConfig.RuntimeParams = map[string]string{
		"application_name": constants.ServiceName,
	}

	var pool *pgxpool.Pool
	retryCfg := RetryConfig{
		MaxAttempts:  constants.StoreConnectMaxAttempts,
		InitialDelay: constants.StoreConnectRetryDelay,
		MaxDelay:     constants.StoreConnectRetryDelay * 4,
		Multiplier:   2.0,
	}
	err = RetryWithBackoff(ctx, log, retryCfg, func() error {
		var connectErr error
		pool, connectErr = pgxpool.ConnectConfig(ctx, cfg)
		return connectErr
	})
	if err == nil {
		log.Infof("database connection pool initialized: max=%d, min=%d", cfg.MaxConns, cfg.MinConns)
		StartPoolMetrics(ctx, pool, constants.DBPoolMetricsInterval)
		return pool, nil
	}

	log.Warnf("database unreachable, continuing with lazy pool: %v", err)
	cfg.LazyConnect = true
	cfg.MinConns = 0
	pool, lazyErr := pgxpool.ConnectConfig(ctx, cfg)
	if lazyErr != nil {
		return nil, fmt.Errorf("failed to create lazy pool: %w", lazyErr)
	}
	StartPoolMetrics(ctx, pool, constants.DBPoolMetricsInterval)
	return pool, nil
}

// PoolPinger adapts a pool to the readiness check.
type PoolPinger struct {
	pool *pgxpool.Pool
}

func NewPoolPinger(pool *pgxpool.Pool) *PoolPinger {
	return &PoolPinger{pool: pool}
}

func (p *PoolPinger) Ping(ctx context.Context) error {
	start := time.Now()
	err := p.pool.Ping(ctx)
	return HandleExecError(err, "ping", "pool", start)
}
