package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/daily-task-list/backend/internal/common/clock"
	"github.com/daily-task-list/backend/internal/common/config"
	"github.com/daily-task-list/backend/internal/common/constants"
	commoncrypto "github.com/daily-task-list/backend/internal/common/crypto"
	"github.com/daily-task-list/backend/internal/common/db"
	commonhttp "github.com/daily-task-list/backend/internal/common/http"
	"github.com/daily-task-list/backend/internal/common/logger"
	"github.com/daily-task-list/backend/internal/common/mongodb"
	"github.com/daily-task-list/backend/internal/common/resilience"
	"github.com/daily-task-list/backend/internal/common/server"
	identityhttp "github.com/daily-task-list/backend/internal/identity/http"
	identityservice "github.com/daily-task-list/backend/internal/identity/service"
	taskhttp "github.com/daily-task-list/backend/internal/task/http"
	taskrepo "github.com/daily-task-list/backend/internal/task/repository"
	taskservice "github.com/daily-task-list/backend/internal/task/service"
	userrepo "github.com/daily-task-list/backend/internal/user/repository"
)

// Store bundles the repositories of one driver with its health check and
// its release function.
type Store struct {
	Driver string
	Users  userrepo.Repository
	Tasks  taskrepo.Repository
	Pinger commonhttp.Pinger
	Close  func(ctx context.Context) error
}

type App struct {
	Log             *logger.Logger
	Config          config.AppConfig
	Store           Store
	Breaker         *resilience.CircuitBreaker
	IdentityService *identityservice.IdentityService
	TaskService     *taskservice.TaskService
	RateLimiter     commonhttp.PathRateLimiter

	hooks []server.ShutdownHook
}

// NewApp loads configuration from the environment, opens the configured
// store and wires the services. An unreachable store does not fail startup.
func NewApp(ctx context.Context) (*App, error) {
	log, err := initializeLogger()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Errorf("failed to load config: %v", err)
		return nil, err
	}

	storeCtx, cancelStore := context.WithCancel(ctx)
	store, err := OpenStore(storeCtx, log, cfg.Store)
	if err != nil {
		cancelStore()
		return nil, err
	}

	app := Assemble(log, cfg, store, commoncrypto.NewBcryptHasher())
	app.hooks = append(app.hooks, func(ctx context.Context) error {
		cancelStore()
		return nil
	})

	if cfg.RateLimitEnabled {
		app.configureRateLimiter(ctx)
	}

	return app, nil
}

// Assemble wires the breaker and the services around an already opened
// store.
func Assemble(log *logger.Logger, cfg config.AppConfig, store Store, hasher commoncrypto.PasswordHasher) *App {
	breaker := resilience.NewCircuitBreaker(resilience.CircuitBreakerConfig{
		Threshold:  cfg.Store.BreakerThreshold,
		Timeout:    cfg.Store.OperationTimeout,
		ResetAfter: cfg.Store.BreakerReset,
		Name:       "store",
		Logger:     log,
	})

	app := &App{
		Log:             log,
		Config:          cfg,
		Store:           store,
		Breaker:         breaker,
		IdentityService: identityservice.NewIdentityService(store.Users, hasher, breaker, log),
		TaskService:     taskservice.NewTaskService(store.Tasks, breaker, log),
	}
	if store.Close != nil {
		app.hooks = append(app.hooks, store.Close)
	}
	return app
}

// OpenStore builds the repositories for cfg.Driver.
func OpenStore(ctx context.Context, log *logger.Logger, cfg config.StoreConfig) (Store, error) {
	switch cfg.Driver {
	case config.DriverMongo:
		client, database, err := mongodb.Connect(ctx, log, cfg.MongoURI, cfg.MongoDatabase)
		if err != nil {
			return Store{}, err
		}
		return Store{
			Driver: cfg.Driver,
			Users:  userrepo.NewMongoRepository(database, clock.NewRealClock()),
			Tasks:  taskrepo.NewMongoRepository(database),
			Pinger: mongodb.NewPinger(client),
			Close: func(ctx context.Context) error {
				log.Infof("closing mongo client")
				return client.Disconnect(ctx)
			},
		}, nil

	case config.DriverPostgres:
		pool, err := db.NewPool(ctx, log, cfg.DatabaseURL)
		if err != nil {
			return Store{}, err
		}
		schema := db.NewSchemaGuard(pool)
		ids := commoncrypto.NewUUIDGenerator()
		return Store{
			Driver: cfg.Driver,
			Users:  userrepo.NewPgRepository(pool, schema, ids, clock.NewRealClock()),
			Tasks:  taskrepo.NewPgRepository(pool, schema, ids),
			Pinger: db.NewPoolPinger(pool),
			Close: func(ctx context.Context) error {
				log.Infof("closing database pool")
				pool.Close()
				return nil
			},
		}, nil
	}

	return Store{}, fmt.Errorf("%w: %q", config.ErrUnknownStoreDriver, cfg.Driver)
}

// configureRateLimiter prefers the shared Redis limiter and falls back to
// the in-process one when Redis is not configured or not reachable.
func (a *App) configureRateLimiter(ctx context.Context) {
	redisCfg := a.Config.Redis
	if client := commonhttp.NewRedisClient(ctx, redisCfg.Addr, redisCfg.Password, redisCfg.DB, a.Log); client != nil {
		a.RateLimiter = commonhttp.NewRedisRateLimiter(
			client,
			constants.RedisRateLimitWindow,
			constants.RedisRateLimitAuthMax,
			constants.RedisRateLimitGeneralMax,
			a.Log,
		)
		a.hooks = append(a.hooks, closeRedis(client))
		return
	}

	limiter := commonhttp.NewStrictRateLimiter()
	a.RateLimiter = limiter
	a.hooks = append(a.hooks, func(ctx context.Context) error {
		limiter.Stop()
		return nil
	})
}

func closeRedis(client *redis.Client) server.ShutdownHook {
	return func(ctx context.Context) error {
		return client.Close()
	}
}

// Handler returns the routed API wrapped in the shared middleware chain.
func (a *App) Handler() http.Handler {
	mux := http.NewServeMux()

	info := commonhttp.ServiceInfo{Name: constants.ServiceName, Version: a.Config.Version}
	mux.HandleFunc("GET /{$}", commonhttp.RootHandler(info, a.Store.Pinger, a.Log))
	mux.HandleFunc("GET /ping", commonhttp.PingHandler)
	mux.HandleFunc("GET /readyz", commonhttp.ReadinessHandler(a.Store.Pinger, a.Log))
	mux.Handle("GET /metrics", promhttp.Handler())

	identityhttp.NewHandler(a.IdentityService, a.Config.RequestTimeout, a.Log).RegisterRoutes(mux)
	taskhttp.NewHandler(a.TaskService, a.Config.RequestTimeout, a.Log).RegisterRoutes(mux)

	mux.HandleFunc("/", commonhttp.NotFoundHandler)

	return commonhttp.BuildBaseHandler(a.Log, commonhttp.BaseHandlerOptions{
		CORSOrigins: a.Config.CORSOrigins,
		RateLimiter: a.RateLimiter,
	}, mux)
}

// ShutdownHooks releases the rate limiter and the store in reverse order of
// acquisition.
func (a *App) ShutdownHooks() []server.ShutdownHook {
	hooks := make([]server.ShutdownHook, 0, len(a.hooks))
	for i := len(a.hooks) - 1; i >= 0; i-- {
		hooks = append(hooks, a.hooks[i])
	}
	return hooks
}

func initializeLogger() (*logger.Logger, error) {
	return logger.New(os.Getenv("LOG_DIR"), constants.ServiceName, os.Getenv("LOG_LEVEL"))
}
