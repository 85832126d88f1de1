// Standingsync - Alliance Standings Synchronization for EVE Online
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/standingsync

package config

import (
	"fmt"
	"strings"
)

const (
	// minEncryptionSecretLength is enforced on the token encryption secret.
	minEncryptionSecretLength = 32

	// ESI accepts at most 20 ids per contact delete and 100 per add/edit.
	maxDeleteBatchSize = 20
	maxWriteBatchSize  = 100
)

// Validate checks that required configuration is present and valid.
func (c *Config) Validate() error {
	if err := c.validateESI(); err != nil {
		return err
	}
	if err := c.validateSync(); err != nil {
		return err
	}
	if err := c.validateDispatch(); err != nil {
		return err
	}
	if err := c.validateDatabase(); err != nil {
		return err
	}
	if err := c.validateSecurity(); err != nil {
		return err
	}
	if c.Audit.Enabled && c.Audit.RetentionDays < 1 {
		return fmt.Errorf("AUDIT_RETENTION_DAYS must be at least 1, got %d", c.Audit.RetentionDays)
	}
	if err := c.validateServer(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateESI() error {
	if err := validateURL("ESI_BASE_URL", c.ESI.BaseURL, httpSchemes); err != nil {
		return err
	}
	if strings.TrimSpace(c.ESI.UserAgent) == "" {
		return fmt.Errorf("ESI_USER_AGENT is required")
	}
	if c.ESI.Timeout <= 0 {
		return fmt.Errorf("ESI_TIMEOUT must be positive, got %v", c.ESI.Timeout)
	}
	if c.ESI.RequestsPerSecond <= 0 {
		return fmt.Errorf("ESI_RATE_LIMIT must be positive, got %v", c.ESI.RequestsPerSecond)
	}
	if c.ESI.Burst < 1 {
		return fmt.Errorf("ESI_RATE_BURST must be at least 1, got %d", c.ESI.Burst)
	}
	if c.ESI.MaxRetries < 0 {
		return fmt.Errorf("ESI_MAX_RETRIES must not be negative, got %d", c.ESI.MaxRetries)
	}
	if c.ESI.BreakerFailureThreshold == 0 {
		return fmt.Errorf("ESI_BREAKER_THRESHOLD must be at least 1")
	}
	if c.ESI.CacheEnabled && c.ESI.CacheTTL <= 0 {
		return fmt.Errorf("ESI_CACHE_TTL must be positive when the cache is enabled")
	}
	if c.SSO.TokenURL != "" {
		if err := validateURL("EVE_TOKEN_URL", c.SSO.TokenURL, httpSchemes); err != nil {
			return err
		}
	}
	return nil
}

func (c *Config) validateSync() error {
	s := c.Sync
	if s.MinStanding < -10 || s.MinStanding > 10 {
		return fmt.Errorf("STANDINGSSYNC_CHAR_MIN_STANDING must be between -10 and 10, got %v", s.MinStanding)
	}
	if s.Interval <= 0 {
		return fmt.Errorf("SYNC_INTERVAL must be positive, got %v", s.Interval)
	}
	if s.WarRefreshInterval <= 0 {
		return fmt.Errorf("WAR_REFRESH_INTERVAL must be positive, got %v", s.WarRefreshInterval)
	}
	if s.DeleteBatchSize < 1 || s.DeleteBatchSize > maxDeleteBatchSize {
		return fmt.Errorf("SYNC_DELETE_BATCH_SIZE must be between 1 and %d, got %d", maxDeleteBatchSize, s.DeleteBatchSize)
	}
	if s.WriteBatchSize < 1 || s.WriteBatchSize > maxWriteBatchSize {
		return fmt.Errorf("SYNC_WRITE_BATCH_SIZE must be between 1 and %d, got %d", maxWriteBatchSize, s.WriteBatchSize)
	}
	if s.AddWarTargets && strings.TrimSpace(s.WarTargetsLabelName) == "" {
		return fmt.Errorf("STANDINGSSYNC_WAR_TARGETS_LABEL_NAME must not be empty when war targets are added")
	}
	return nil
}

func (c *Config) validateDispatch() error {
	d := c.Dispatch
	switch d.Transport {
	case "memory":
	case "nats":
		if !c.NATS.EmbeddedServer {
			if err := validateURL("NATS_URL", c.NATS.URL, natsSchemes); err != nil {
				return err
			}
		}
		if c.NATS.DurableName == "" {
			return fmt.Errorf("NATS_DURABLE_NAME is required for the nats transport")
		}
		if c.NATS.SubscribersCount < 1 {
			return fmt.Errorf("NATS_SUBSCRIBERS must be at least 1, got %d", c.NATS.SubscribersCount)
		}
	default:
		return fmt.Errorf("DISPATCH_TRANSPORT must be 'memory' or 'nats', got %q", d.Transport)
	}
	if d.Workers < 1 {
		return fmt.Errorf("DISPATCH_WORKERS must be at least 1, got %d", d.Workers)
	}
	if d.RetryCount < 0 {
		return fmt.Errorf("DISPATCH_RETRY_COUNT must not be negative, got %d", d.RetryCount)
	}
	if d.ThrottlePerSecond < 0 {
		return fmt.Errorf("DISPATCH_THROTTLE must not be negative, got %d", d.ThrottlePerSecond)
	}
	if d.PoisonQueueTopic == "" {
		return fmt.Errorf("DISPATCH_POISON_TOPIC is required")
	}
	return nil
}

func (c *Config) validateDatabase() error {
	if c.Database.Path == "" {
		return fmt.Errorf("DUCKDB_PATH is required")
	}
	if c.Database.Threads < 0 {
		return fmt.Errorf("DUCKDB_THREADS must not be negative, got %d", c.Database.Threads)
	}
	return nil
}

func (c *Config) validateSecurity() error {
	secret := c.Security.EncryptionSecret
	if secret == "" {
		return fmt.Errorf("TOKEN_ENCRYPTION_SECRET is required")
	}
	if len(secret) < minEncryptionSecretLength {
		return fmt.Errorf("TOKEN_ENCRYPTION_SECRET must be at least %d characters", minEncryptionSecretLength)
	}
	if c.IsProduction() && (c.SSO.ClientID == "" || c.SSO.ClientSecret == "") {
		return fmt.Errorf("EVE_CLIENT_ID and EVE_CLIENT_SECRET are required in production")
	}
	return nil
}

func (c *Config) validateServer() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("HTTP_PORT must be between 1 and 65535, got %d", c.Server.Port)
	}
	if c.Server.Timeout <= 0 {
		return fmt.Errorf("HTTP_TIMEOUT must be positive, got %v", c.Server.Timeout)
	}
	if c.Server.RateLimitRequests < 1 {
		return fmt.Errorf("RATE_LIMIT_REQUESTS must be at least 1, got %d", c.Server.RateLimitRequests)
	}
	if c.Server.RateLimitWindow <= 0 {
		return fmt.Errorf("RATE_LIMIT_WINDOW must be positive, got %v", c.Server.RateLimitWindow)
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch strings.ToLower(c.Logging.Level) {
	case "trace", "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("LOG_LEVEL must be one of trace, debug, info, warn, error; got %q", c.Logging.Level)
	}
	switch c.Logging.Format {
	case "json", "console":
	default:
		return fmt.Errorf("LOG_FORMAT must be json or console, got %q", c.Logging.Format)
	}
	return nil
}
