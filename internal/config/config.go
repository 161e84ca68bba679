package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	infraconfig "optionquotes-service/internal/infrastructure/config"
)

type Config struct {
	// Common
	Env      string `yaml:"env"`
	LogLevel string `yaml:"log_level"`
	// API
	Port           string        `yaml:"port"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
	// Postgres
	DatabaseURL      string        `yaml:"database_url"`
	PGMaxConns       int           `yaml:"pg_max_conns"`
	PGMinConns       int           `yaml:"pg_min_conns"`
	PGMaxConnIdle    time.Duration `yaml:"pg_max_conn_idle"`
	PGConnectTimeout time.Duration `yaml:"pg_connect_timeout"`
	PGAcquireTimeout time.Duration `yaml:"pg_acquire_timeout"`
	PGQueryTimeout   time.Duration `yaml:"pg_query_timeout"`
	// Redis (idempotency)
	IdempotencyBackend string        `yaml:"idempotency_backend"`
	RedisAddr          string        `yaml:"redis_addr"`
	RedisPassword      string        `yaml:"redis_password"`
	RedisDB            int           `yaml:"redis_db"`
	IdempotencyTTL     time.Duration `yaml:"idempotency_ttl"`
	// Upstream quotes API
	Provider       string `yaml:"provider"`
	QuotesAPIBase  string `yaml:"quotes_api_base"`
	QuotesAPIToken string `yaml:"quotes_api_token"`
	// Collector
	CollectSymbols        []string      `yaml:"collect_symbols"`
	CollectExpirationDays int           `yaml:"collect_expiration_days"`
	CollectPoll           time.Duration `yaml:"collect_poll"`
	RetentionKeep         time.Duration `yaml:"retention_keep"`
	CleanBeforeInsert     bool          `yaml:"clean_before_insert"`
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func atoiDef(s string, def int) int {
	i, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return i
}

func intEnv(key string, def int) int {
	return atoiDef(getEnv(key, strconv.Itoa(def)), def)
}

func durMS(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	ms, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return time.Duration(ms) * time.Millisecond
}

func boolEnv(key string, def bool) bool {
	b, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return def
	}
	return b
}

func listEnv(key string, def []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	var out []string
	for _, p := range strings.Split(v, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func defaults() Config {
	return Config{
		Env:                   "local",
		LogLevel:              "info",
		Port:                  infraconfig.DefaultHTTPPort,
		RequestTimeout:        3 * time.Second,
		PGMaxConns:            infraconfig.DefaultPGMaxConns,
		PGMinConns:            infraconfig.DefaultPGMinConns,
		PGMaxConnIdle:         infraconfig.DefaultPGMaxConnIdle,
		PGConnectTimeout:      infraconfig.DefaultPGConnectTimeout,
		PGAcquireTimeout:      infraconfig.DefaultPGAcquireTimeout,
		PGQueryTimeout:        60 * time.Second,
		IdempotencyBackend:    "redis",
		RedisAddr:             "localhost:6379",
		IdempotencyTTL:        infraconfig.DefaultIdempotencyTTL,
		Provider:              "fake",
		QuotesAPIBase:         "https://api.marketdata.example.com",
		CollectSymbols:        []string{"SPX", "SPXW"},
		CollectExpirationDays: infraconfig.DefaultExpirationDays,
		CollectPoll:           infraconfig.DefaultCollectPoll,
		RetentionKeep:         infraconfig.DefaultRetentionKeep,
		CleanBeforeInsert:     true,
	}
}

// applyEnv overrides c with any environment variables that are set.
func applyEnv(c *Config) {
	c.Env = getEnv("ENV", c.Env)
	c.LogLevel = getEnv("LOG_LEVEL", c.LogLevel)
	c.Port = getEnv("PORT", c.Port)
	c.RequestTimeout = durMS("REQUEST_TIMEOUT_MS", c.RequestTimeout)
	c.DatabaseURL = getEnv("DATABASE_URL", c.DatabaseURL)
	c.PGMaxConns = intEnv("PG_MAX_CONNS", c.PGMaxConns)
	c.PGMinConns = intEnv("PG_MIN_CONNS", c.PGMinConns)
	c.PGMaxConnIdle = durMS("PG_MAX_IDLE_MS", c.PGMaxConnIdle)
	c.PGConnectTimeout = durMS("PG_CONNECT_TIMEOUT_MS", c.PGConnectTimeout)
	c.PGAcquireTimeout = durMS("PG_ACQUIRE_TIMEOUT_MS", c.PGAcquireTimeout)
	c.PGQueryTimeout = durMS("PG_QUERY_TIMEOUT_MS", c.PGQueryTimeout)
	c.IdempotencyBackend = getEnv("IDEMPOTENCY_BACKEND", c.IdempotencyBackend)
	c.RedisAddr = getEnv("REDIS_ADDR", c.RedisAddr)
	c.RedisPassword = getEnv("REDIS_PASSWORD", c.RedisPassword)
	c.RedisDB = intEnv("REDIS_DB", c.RedisDB)
	c.IdempotencyTTL = durMS("IDEMPOTENCY_TTL_MS", c.IdempotencyTTL)
	c.Provider = getEnv("PROVIDER", c.Provider)
	c.QuotesAPIBase = getEnv("QUOTES_API_BASE", c.QuotesAPIBase)
	c.QuotesAPIToken = getEnv("QUOTES_API_TOKEN", c.QuotesAPIToken)
	c.CollectSymbols = listEnv("COLLECT_SYMBOLS", c.CollectSymbols)
	c.CollectExpirationDays = intEnv("COLLECT_EXPIRATION_DAYS", c.CollectExpirationDays)
	c.CollectPoll = durMS("COLLECT_POLL_MS", c.CollectPoll)
	c.RetentionKeep = durMS("RETENTION_KEEP_MS", c.RetentionKeep)
	c.CleanBeforeInsert = boolEnv("CLEAN_BEFORE_INSERT", c.CleanBeforeInsert)
}

// Load reads environment variables and applies defaults.
func Load() Config {
	c := defaults()
	applyEnv(&c)
	return c
}
