package constants

import "time"

const (
	ServiceName = "daily-task-list"

	UsersCollection = "users"
	TasksCollection = "tasks"

	DefaultTaskPriority = "Medium"

	BcryptCost            = 12
	DefaultMaxRequestSize = 1 << 20

	DefaultHTTPPort      = "5000"
	DefaultStoreDriver   = "mongo"
	DefaultMongoURI      = "mongodb://localhost:27017/daily_task_list"
	DefaultMongoDatabase = "daily_task_list"
	DefaultCORSOrigins   = "*"
	DefaultAppVersion    = "dev"

	DefaultRequestTimeout        = 5 * time.Second
	DefaultStoreOperationTimeout = 5 * time.Second
	DefaultBreakerThreshold      = 5
	DefaultBreakerReset          = 10 * time.Second

	StoreConnectTimeout         = 5 * time.Second
	StoreServerSelectionTimeout = 3 * time.Second
	StoreConnectMaxAttempts     = 3
	StoreConnectRetryDelay      = time.Second
	StorePingTimeout            = 2 * time.Second

	DBPoolMaxConns          = 25
	DBPoolMinConns          = 2
	DBPoolConnMaxLifetime   = time.Hour
	DBPoolConnMaxIdleTime   = 30 * time.Minute
	DBPoolHealthCheckPeriod = time.Minute
	DBPoolMetricsInterval   = 30 * time.Second

	MongoMaxPoolSize = 50

	RateLimitAuthRequestsPerSecond    = 2
	RateLimitAuthBurst                = 10
	RateLimitGeneralRequestsPerSecond = 50
	RateLimitGeneralBurst             = 100
	RateLimitCleanupInterval          = 5 * time.Minute
	RedisRateLimitWindow              = time.Minute
	RedisRateLimitAuthMax             = 60
	RedisRateLimitGeneralMax          = 3000
	RedisDialTimeout                  = 2 * time.Second

	ServerReadHeaderTimeout = 10 * time.Second
	ServerReadTimeout       = 30 * time.Second
	ServerWriteTimeout      = 30 * time.Second
	ServerIdleTimeout       = 120 * time.Second

	ShutdownTimeout = 30 * time.Second
	DrainTimeout    = 10 * time.Second

	LoggerMaxSize    = 100
	LoggerMaxBackups = 3
	LoggerMaxAge     = 28
)

type TraceIDKeyType string

const TraceIDKey TraceIDKeyType = "trace_id"
