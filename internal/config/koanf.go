// Standingsync - Alliance Standings Synchronization for EVE Online
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/standingsync

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists the paths where config files are searched in order of priority.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/standingsync/config.yaml",
	"/etc/standingsync/config.yml",
}

// ConfigPathEnvVar is the environment variable that can override the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

// defaultConfig returns a Config with every default applied.
func defaultConfig() *Config {
	return &Config{
		ESI: ESIConfig{
			BaseURL:                 "https://esi.evetech.net/latest",
			UserAgent:               "standingsync/1.0 (+https://github.com/tomtom215/standingsync)",
			Timeout:                 30 * time.Second,
			RequestsPerSecond:       20,
			Burst:                   10,
			MaxRetries:              3,
			RetryBaseDelay:          time.Second,
			BreakerFailureThreshold: 5,
			BreakerTimeout:          time.Minute,
			CacheEnabled:            true,
			CacheDir:                "",
			CacheTTL:                time.Hour,
		},
		SSO: SSOConfig{
			TokenURL: "https://login.eveonline.com/v2/oauth/token",
		},
		Sync: SyncConfig{
			Interval:            30 * time.Minute,
			WarRefreshInterval:  time.Hour,
			MinStanding:         0.1,
			AddWarTargets:       false,
			ReplaceContacts:     true,
			WarTargetsLabelName: "WAR TARGETS",
			DeleteBatchSize:     20,
			WriteBatchSize:      100,
			CheckESIStatus:      true,
		},
		Dispatch: DispatchConfig{
			Transport:            "memory",
			Workers:              4,
			RetryCount:           3,
			RetryInitialInterval: time.Second,
			RetryMaxInterval:     30 * time.Second,
			ThrottlePerSecond:    0,
			PoisonQueueTopic:     "standingsync.poison",
			CloseTimeout:         30 * time.Second,
			OutputBuffer:         1024,
		},
		NATS: NATSConfig{
			URL:              "nats://127.0.0.1:4222",
			EmbeddedServer:   true,
			StoreDir:         "/data/nats/jetstream",
			MaxMemory:        256 << 20,
			MaxStore:         1 << 30,
			DurableName:      "standingsync",
			QueueGroup:       "standingsync-workers",
			SubscribersCount: 1,
			AckWait:          5 * time.Minute,
		},
		Database: DatabaseConfig{
			Path:      "/data/standingsync.duckdb",
			MaxMemory: "512MB",
			Threads:   0,
		},
		Audit: AuditConfig{
			Enabled:       true,
			RetentionDays: 90,
			LogToStdout:   false,
		},
		Server: ServerConfig{
			Host:              "127.0.0.1",
			Port:              8740,
			Timeout:           30 * time.Second,
			RateLimitRequests: 30,
			RateLimitWindow:   time.Minute,
			Environment:       "development",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
	}
}

// LoadWithKoanf loads configuration from defaults, an optional YAML file
// and environment variables (ENV > File > Defaults), then validates it.
func LoadWithKoanf() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if configPath := findConfigFile(); configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	// STANDINGSSYNC_CHAR_MIN_STANDING -> sync.min_standing, DUCKDB_PATH -> database.path
	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// findConfigFile returns the first existing config file, or "".
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}

	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// envMappings maps environment variable names (lower-cased) to koanf paths.
// The STANDINGSSYNC_* names are the settings operators already know.
var envMappings = map[string]string{
	// Sync policy
	"standingssync_char_min_standing":     "sync.min_standing",
	"standingssync_add_war_targets":       "sync.add_war_targets",
	"standingssync_replace_contacts":      "sync.replace_contacts",
	"standingssync_war_targets_label_name": "sync.war_targets_label_name",
	"sync_interval":                       "sync.interval",
	"war_refresh_interval":                "sync.war_refresh_interval",
	"sync_delete_batch_size":              "sync.delete_batch_size",
	"sync_write_batch_size":               "sync.write_batch_size",
	"sync_check_esi_status":               "sync.check_esi_status",

	// ESI client
	"esi_base_url":          "esi.base_url",
	"esi_user_agent":        "esi.user_agent",
	"esi_timeout":           "esi.timeout",
	"esi_rate_limit":        "esi.requests_per_second",
	"esi_rate_burst":        "esi.burst",
	"esi_max_retries":       "esi.max_retries",
	"esi_retry_delay":       "esi.retry_base_delay",
	"esi_breaker_threshold": "esi.breaker_failure_threshold",
	"esi_breaker_timeout":   "esi.breaker_timeout",
	"esi_cache_enabled":     "esi.cache_enabled",
	"esi_cache_dir":         "esi.cache_dir",
	"esi_cache_ttl":         "esi.cache_ttl",

	// EVE SSO
	"eve_client_id":     "sso.client_id",
	"eve_client_secret": "sso.client_secret",
	"eve_token_url":     "sso.token_url",

	// Dispatch
	"dispatch_transport":      "dispatch.transport",
	"dispatch_workers":        "dispatch.workers",
	"dispatch_retry_count":    "dispatch.retry_count",
	"dispatch_retry_interval": "dispatch.retry_initial_interval",
	"dispatch_retry_max":      "dispatch.retry_max_interval",
	"dispatch_throttle":       "dispatch.throttle_per_second",
	"dispatch_poison_topic":   "dispatch.poison_queue_topic",
	"dispatch_close_timeout":  "dispatch.close_timeout",

	// NATS
	"nats_url":          "nats.url",
	"nats_embedded":     "nats.embedded_server",
	"nats_store_dir":    "nats.store_dir",
	"nats_max_memory":   "nats.max_memory",
	"nats_max_store":    "nats.max_store",
	"nats_durable_name": "nats.durable_name",
	"nats_queue_group":  "nats.queue_group",
	"nats_subscribers":  "nats.subscribers_count",
	"nats_ack_wait":     "nats.ack_wait",

	// Database
	"duckdb_path":       "database.path",
	"duckdb_max_memory": "database.max_memory",
	"duckdb_threads":    "database.threads",

	// Security
	"token_encryption_secret": "security.encryption_secret",
	"casbin_model_path":       "security.casbin_model_path",
	"casbin_policy_path":      "security.casbin_policy_path",

	// Audit
	"audit_enabled":        "audit.enabled",
	"audit_retention_days": "audit.retention_days",
	"audit_log_to_stdout":  "audit.log_to_stdout",

	// Server
	"http_host":           "server.host",
	"http_port":           "server.port",
	"http_timeout":        "server.timeout",
	"rate_limit_requests": "server.rate_limit_requests",
	"rate_limit_window":   "server.rate_limit_window",
	"environment":         "server.environment",
	"api_token":           "server.api_token",

	// Logging
	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",
}

// envTransformFunc transforms environment variable names to koanf config paths.
// Unmapped variables return "" and are skipped, so unrelated environment
// variables never leak into the configuration.
func envTransformFunc(key string) string {
	if mapped, ok := envMappings[strings.ToLower(key)]; ok {
		return mapped
	}
	return ""
}
