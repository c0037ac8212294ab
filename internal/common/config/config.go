package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/daily-task-list/backend/internal/common/constants"
)

const (
	DriverMongo    = "mongo"
	DriverPostgres = "postgres"
)

var (
	ErrMissingRequiredEnv = errors.New("missing required environment variable")
	ErrUnknownStoreDriver = errors.New("unknown store driver")
)

type StoreConfig struct {
	Driver           string
	MongoURI         string
	MongoDatabase    string
	DatabaseURL      string
	OperationTimeout time.Duration
	BreakerThreshold int32
	BreakerReset     time.Duration
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type AppConfig struct {
	HTTPPort         string
	Version          string
	CORSOrigins      []string
	RequestTimeout   time.Duration
	RateLimitEnabled bool
	Store            StoreConfig
	Redis            RedisConfig
}

// LoadEnvFile reads a .env file into the process environment. A missing
// file is not an error; variables already set are never overridden.
func LoadEnvFile(paths ...string) error {
	if err := godotenv.Load(paths...); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to load env file: %w", err)
	}
	return nil
}

func Load() (AppConfig, error) {
	store, err := loadStoreConfig()
	if err != nil {
		return AppConfig{}, err
	}

	port := getEnv("APP_PORT", "")
	if port == "" {
		port = getEnv("PORT", constants.DefaultHTTPPort)
	}

	return AppConfig{
		HTTPPort:         port,
		Version:          getEnv("APP_VERSION", constants.DefaultAppVersion),
		CORSOrigins:      splitList(getEnv("CORS_ORIGINS", constants.DefaultCORSOrigins)),
		RequestTimeout:   getDurationEnv("REQUEST_TIMEOUT", constants.DefaultRequestTimeout),
		RateLimitEnabled: getBoolEnv("RATE_LIMIT_ENABLED", true),
		Store:            store,
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", ""),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getIntEnv("REDIS_DB", 0),
		},
	}, nil
}

func loadStoreConfig() (StoreConfig, error) {
	driver := strings.ToLower(strings.TrimSpace(getEnv("STORE_DRIVER", constants.DefaultStoreDriver)))

	cfg := StoreConfig{
		Driver:           driver,
		OperationTimeout: getDurationEnv("STORE_OPERATION_TIMEOUT", constants.DefaultStoreOperationTimeout),
		BreakerThreshold: int32(getIntEnv("STORE_BREAKER_THRESHOLD", constants.DefaultBreakerThreshold)),
		BreakerReset:     getDurationEnv("STORE_BREAKER_RESET", constants.DefaultBreakerReset),
	}

	switch driver {
	case DriverMongo:
		cfg.MongoURI = getEnv("MONGO_URI", constants.DefaultMongoURI)
		cfg.MongoDatabase = getEnv("MONGO_DATABASE", databaseFromURI(cfg.MongoURI))
	case DriverPostgres:
		databaseURL, err := mustEnv("DATABASE_URL")
		if err != nil {
			return StoreConfig{}, err
		}
		cfg.DatabaseURL = databaseURL
	default:
		return StoreConfig{}, fmt.Errorf("%w: %q", ErrUnknownStoreDriver, driver)
	}

	if cfg.BreakerThreshold <= 0 {
		cfg.BreakerThreshold = constants.DefaultBreakerThreshold
	}

	return cfg, nil
}

func databaseFromURI(uri string) string {
	u, err := url.Parse(uri)
	if err != nil {
		return constants.DefaultMongoDatabase
	}
	name := strings.Trim(u.Path, "/")
	if name == "" {
		return constants.DefaultMongoDatabase
	}
	return name
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return fallback
}

func mustEnv(key string) (string, error) {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return "", fmt.Errorf("%w: %s", ErrMissingRequiredEnv, key)
	}
	return v, nil
}

func getDurationEnv(key string, fallback time.Duration) time.Duration {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

func getIntEnv(key string, fallback int) int {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return fallback
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return i
}

func getBoolEnv(key string, fallback bool) bool {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}
