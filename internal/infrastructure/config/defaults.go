package config

import "time"

const (
	DefaultHTTPPort         = "8080"
	DefaultShutdownTimeout  = 10 * time.Second
	DefaultCollectPoll      = 5 * time.Minute
	DefaultRetentionKeep    = 30 * time.Minute
	DefaultExpirationDays   = 7
	DefaultPGMaxConns       = 10
	DefaultPGMinConns       = 1
	DefaultPGMaxConnIdle    = 2 * time.Minute
	DefaultPGConnectTimeout = 5 * time.Second
	DefaultPGAcquireTimeout = 3 * time.Second
	DefaultPGHealthCheck    = 30 * time.Second
	DefaultIdempotencyTTL   = 24 * time.Hour
)
