package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// DraftBackend selects the DraftStore implementation built at startup.
type DraftBackend string

const (
	DraftBackendRedis  DraftBackend = "redis"
	DraftBackendSQLite DraftBackend = "sqlite"
	DraftBackendMemory DraftBackend = "memory"
)

// Config holds all process configuration, read once from the environment.
type Config struct {
	MongoURI  string
	MongoDB   string
	RedisAddr string
	HTTPPort  string

	JWTSecret string
	TokenTTL  time.Duration

	DraftBackend    DraftBackend
	DraftSQLitePath string
	DraftTTL        time.Duration // 0 keeps drafts until submission
	AutosaveDelay   time.Duration

	InsightCacheTTL time.Duration

	LogMode     string
	CORSOrigins string
}

// Load reads the configuration from environment variables, applying defaults.
func Load() *Config {
	return &Config{
		MongoURI:  getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDB:   getEnv("MONGO_DB", "secureview"),
		RedisAddr: redisAddr(getEnv("REDIS_URI", "localhost:6379")),
		HTTPPort:  getEnv("PORT", "8080"),

		JWTSecret: getEnv("JWT_SECRET", "super-secret-key-change-in-production"),
		TokenTTL:  getEnvDuration("TOKEN_TTL", 60*time.Minute),

		DraftBackend:    DraftBackend(strings.ToLower(getEnv("DRAFT_BACKEND", string(DraftBackendRedis)))),
		DraftSQLitePath: getEnv("DRAFT_SQLITE_PATH", "drafts.db"),
		DraftTTL:        getEnvDuration("DRAFT_TTL", 0),
		AutosaveDelay:   getEnvDuration("AUTOSAVE_DELAY", 1500*time.Millisecond),

		InsightCacheTTL: getEnvDuration("INSIGHT_CACHE_TTL", 5*time.Minute),

		LogMode:     getEnv("LOG_MODE", "dev"),
		CORSOrigins: getEnv("CORS_ALLOWED_ORIGINS", "*"),
	}
}

// redisAddr strips the redis:// scheme some hosts put in REDIS_URI.
func redisAddr(v string) string {
	return strings.TrimPrefix(v, "redis://")
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

// getEnvDuration accepts Go durations ("2s") or bare milliseconds ("1500").
func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	val := strings.TrimSpace(os.Getenv(key))
	if val == "" {
		return defaultVal
	}
	if d, err := time.ParseDuration(val); err == nil {
		return d
	}
	if ms, err := strconv.Atoi(val); err == nil {
		return time.Duration(ms) * time.Millisecond
	}
	return defaultVal
}
