package config

import (
	"os"
	"strconv"
	"time"
)

// Config is the process configuration, loaded once at startup from the
// environment. The core layers never read env vars themselves.
type Config struct {
	Environment string
	Port        string

	// Storage
	StorageDriver  string // mongo | postgres | sqlite | memory
	MongoURI       string
	MongoDatabase  string
	DatabaseURL    string
	DatabasePath   string
	MigrationsPath string

	// Cache
	CacheBackend  string // memory | redis
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// Telemetry
	OTLPEndpoint string
	MetricsPort  string

	EnforceHTTPS bool

	RateLimitEnabled bool
	RateLimits       map[string]RateLimit

	CacheEnabled  bool
	ResponseCache map[string]ResponseCache
}

type RateLimit struct {
	Requests int
	Window   time.Duration
}

type ResponseCache struct {
	TTL     time.Duration
	Enabled bool
}

func Load() *Config {
	return &Config{
		Environment: getenv("APP_ENV", "development"),
		Port:        getenv("PORT", "8080"),

		StorageDriver:  getenv("STORAGE_DRIVER", "mongo"),
		MongoURI:       getenv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDatabase:  getenv("MONGO_DATABASE", "todoapi"),
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		DatabasePath:   getenv("DATABASE_PATH", "database.db"),
		MigrationsPath: os.Getenv("MIGRATIONS_PATH"),

		CacheBackend:  getenv("CACHE_BACKEND", "memory"),
		RedisAddr:     getenv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       getint("REDIS_DB", 0),

		OTLPEndpoint: getenv("OTLP_ENDPOINT", "localhost:4317"),
		MetricsPort:  getenv("METRICS_PORT", "9091"),

		EnforceHTTPS: getbool("ENFORCE_HTTPS", false),

		RateLimitEnabled: getbool("RATE_LIMIT_ENABLED", true),
		RateLimits: map[string]RateLimit{
			"GET /todos":     {Requests: 100, Window: time.Minute},
			"POST /todos":    {Requests: 20, Window: time.Minute},
			"PUT /todos/:id": {Requests: 20, Window: time.Minute},
			"default":        {Requests: 60, Window: time.Minute},
		},

		CacheEnabled: getbool("CACHE_ENABLED", true),
		ResponseCache: map[string]ResponseCache{
			"/todos":       {TTL: 3 * time.Second, Enabled: true},
			"/todos/stats": {TTL: 3 * time.Second, Enabled: true},
			"default":      {TTL: time.Second, Enabled: false},
		},
	}
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func getenv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}

	return fallback
}

func getint(key string, fallback int) int {
	value, err := strconv.Atoi(os.Getenv(key))

	if err != nil {
		return fallback
	}

	return value
}

func getbool(key string, fallback bool) bool {
	value, err := strconv.ParseBool(os.Getenv(key))

	if err != nil {
		return fallback
	}

	return value
}
