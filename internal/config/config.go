// Standingsync - Alliance Standings Synchronization for EVE Online
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/standingsync

// Package config loads and validates standingsync configuration.
//
// Configuration Loading Order (Koanf v2):
//  1. Defaults: built-in values from defaultConfig()
//  2. Config File: optional YAML file (CONFIG_PATH, config.yaml, /etc/standingsync/config.yaml)
//  3. Environment Variables: explicit mappings in envTransformFunc
//
// Config is immutable after LoadWithKoanf() and safe for concurrent reads.
package config

import "time"

// Config holds all application configuration.
type Config struct {
	ESI      ESIConfig      `koanf:"esi"`
	SSO      SSOConfig      `koanf:"sso"`
	Sync     SyncConfig     `koanf:"sync"`
	Dispatch DispatchConfig `koanf:"dispatch"`
	NATS     NATSConfig     `koanf:"nats"`
	Database DatabaseConfig `koanf:"database"`
	Security SecurityConfig `koanf:"security"`
	Audit    AuditConfig    `koanf:"audit"`
	Server   ServerConfig   `koanf:"server"`
	Logging  LoggingConfig  `koanf:"logging"`
}

// ESIConfig configures the EVE Swagger Interface client.
type ESIConfig struct {
	// BaseURL is the ESI root, including the route version.
	BaseURL string `koanf:"base_url"`

	// UserAgent identifies this service to CCP. ESI asks for contact details here.
	UserAgent string `koanf:"user_agent"`

	Timeout time.Duration `koanf:"timeout"`

	// RequestsPerSecond and Burst feed the client-side token bucket.
	RequestsPerSecond float64 `koanf:"requests_per_second"`
	Burst             int     `koanf:"burst"`

	// MaxRetries bounds retries on 420/429/5xx responses.
	MaxRetries     int           `koanf:"max_retries"`
	RetryBaseDelay time.Duration `koanf:"retry_base_delay"`

	// BreakerFailureThreshold is the number of consecutive failures that opens
	// the circuit. BreakerTimeout is how long it stays open.
	BreakerFailureThreshold uint32        `koanf:"breaker_failure_threshold"`
	BreakerTimeout          time.Duration `koanf:"breaker_timeout"`

	// CacheEnabled turns on the ETag response cache. CacheDir empty keeps the
	// cache in memory.
	CacheEnabled bool          `koanf:"cache_enabled"`
	CacheDir     string        `koanf:"cache_dir"`
	CacheTTL     time.Duration `koanf:"cache_ttl"`
}

// SSOConfig holds the EVE SSO application credentials used to refresh tokens.
type SSOConfig struct {
	ClientID     string `koanf:"client_id"`
	ClientSecret string `koanf:"client_secret"`
	TokenURL     string `koanf:"token_url"`
}

// SyncConfig holds the policy knobs for manager and character syncs.
type SyncConfig struct {
	// Interval between regular sync cycles (one manager sync per alliance).
	Interval time.Duration `koanf:"interval"`

	// WarRefreshInterval between war registry refresh sweeps.
	WarRefreshInterval time.Duration `koanf:"war_refresh_interval"`

	// MinStanding is the effective standing a follower needs to stay synced.
	MinStanding float64 `koanf:"min_standing"`

	// AddWarTargets injects war targets with standing -10 into follower contacts.
	AddWarTargets bool `koanf:"add_war_targets"`

	// ReplaceContacts removes follower contacts that are not in the target set.
	ReplaceContacts bool `koanf:"replace_contacts"`

	// WarTargetsLabelName is the follower contact label applied to war targets.
	WarTargetsLabelName string `koanf:"war_targets_label_name"`

	// DeleteBatchSize and WriteBatchSize bound the contact ids per ESI call.
	DeleteBatchSize int `koanf:"delete_batch_size"`
	WriteBatchSize  int `koanf:"write_batch_size"`

	// CheckESIStatus skips a scheduling cycle while ESI is offline or in VIP mode.
	CheckESIStatus bool `koanf:"check_esi_status"`
}

// DispatchConfig configures the Watermill work queue.
type DispatchConfig struct {
	// Transport is "memory" (in-process gochannel) or "nats" (JetStream).
	Transport string `koanf:"transport"`

	// Workers is the number of character sync shards processed in parallel.
	Workers int `koanf:"workers"`

	RetryCount           int           `koanf:"retry_count"`
	RetryInitialInterval time.Duration `koanf:"retry_initial_interval"`
	RetryMaxInterval     time.Duration `koanf:"retry_max_interval"`

	// ThrottlePerSecond limits handled messages per second (0 = unlimited).
	ThrottlePerSecond int `koanf:"throttle_per_second"`

	PoisonQueueTopic string        `koanf:"poison_queue_topic"`
	CloseTimeout     time.Duration `koanf:"close_timeout"`

	// OutputBuffer is the gochannel buffer size per subscriber.
	OutputBuffer int64 `koanf:"output_buffer"`
}

// NATSConfig configures the JetStream transport.
type NATSConfig struct {
	URL string `koanf:"url"`

	// EmbeddedServer starts an in-process NATS server with JetStream.
	EmbeddedServer bool `koanf:"embedded_server"`

	StoreDir  string `koanf:"store_dir"`
	MaxMemory int64  `koanf:"max_memory"`
	MaxStore  int64  `koanf:"max_store"`

	DurableName      string        `koanf:"durable_name"`
	QueueGroup       string        `koanf:"queue_group"`
	SubscribersCount int           `koanf:"subscribers_count"`
	AckWait          time.Duration `koanf:"ack_wait"`
}

// DatabaseConfig configures DuckDB.
type DatabaseConfig struct {
	Path      string `koanf:"path"`
	MaxMemory string `koanf:"max_memory"`
	Threads   int    `koanf:"threads"`
}

// SecurityConfig holds secrets and authorization settings.
type SecurityConfig struct {
	// EncryptionSecret derives the key that encrypts stored refresh tokens.
	EncryptionSecret string `koanf:"encryption_secret"`

	// CasbinModelPath and CasbinPolicyPath override the embedded RBAC model
	// and policy.
	CasbinModelPath  string `koanf:"casbin_model_path"`
	CasbinPolicyPath string `koanf:"casbin_policy_path"`
}

// AuditConfig controls the audit trail of registrations and sync triggers.
type AuditConfig struct {
	Enabled       bool `koanf:"enabled"`
	RetentionDays int  `koanf:"retention_days"`
	LogToStdout   bool `koanf:"log_to_stdout"`
}

// ServerConfig configures the ops HTTP server.
type ServerConfig struct {
	Host    string        `koanf:"host"`
	Port    int           `koanf:"port"`
	Timeout time.Duration `koanf:"timeout"`

	// RateLimitRequests per RateLimitWindow apply to manual sync triggers.
	RateLimitRequests int           `koanf:"rate_limit_requests"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`

	// APIToken, when set, is required as a bearer token on /api/v1.
	APIToken string `koanf:"api_token"`

	Environment string `koanf:"environment"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	// Level is the minimum log level: trace, debug, info, warn, error.
	Level string `koanf:"level"`

	// Format is the output format: json or console.
	Format string `koanf:"format"`

	// Caller includes caller file and line number in logs.
	Caller bool `koanf:"caller"`
}

// IsProduction reports whether the server runs in production mode.
func (c *Config) IsProduction() bool {
	return c.Server.Environment == "production"
}
